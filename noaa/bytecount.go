package noaa

import "fmt"

// ByteCount formats byte totals and rates for log output.
type ByteCount int64

func (bytes ByteCount) String() string {
	switch {
	case bytes < 2<<10:
		return fmt.Sprintf("%dB", int64(bytes))
	case bytes < 2<<20:
		return fmt.Sprintf("%dKiB", int64(bytes)>>10)
	case bytes < 2<<30:
		return fmt.Sprintf("%dMiB", int64(bytes)>>20)
	default:
		return fmt.Sprintf("%dGiB", int64(bytes)>>30)
	}
}
