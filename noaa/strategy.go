package noaa

import (
	"net/http"
	"time"
)

// A FetchStrategy describes how persistently to talk to the upstream
// servers.
type FetchStrategy struct {
	MaximumRetries int           // total attempts before giving up
	RetrySleep     time.Duration // pause between attempts
	FetchTimeout   time.Duration // per-request timeout
}

func (fs FetchStrategy) client() *http.Client {
	return &http.Client{Timeout: fs.FetchTimeout}
}

// attempts returns the number of tries to make, at least one.
func (fs FetchStrategy) attempts() int {
	if fs.MaximumRetries < 1 {
		return 1
	}
	return fs.MaximumRetries
}
