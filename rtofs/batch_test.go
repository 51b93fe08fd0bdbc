package rtofs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestRunBatch(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 11, d, 0, 0, 0, 0, time.UTC)
	}

	var ran int32
	boom := errors.New("boom")

	jobs := []Job{
		{Date: day(1), Run: func() error { atomic.AddInt32(&ran, 1); return nil }},
		{Date: day(2), Run: func() error { atomic.AddInt32(&ran, 1); return boom }},
		{Date: day(3), Run: func() error { atomic.AddInt32(&ran, 1); return nil }},
	}

	failures := RunBatch(jobs, 2)

	if got := atomic.LoadInt32(&ran); got != 3 {
		t.Errorf("ran %d jobs, want 3", got)
	}
	if len(failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(failures))
	}
	if failures[day(2)] == nil {
		t.Error("failure not keyed by its date")
	}
}

func TestRunBatchBoundsParallelism(t *testing.T) {
	var inFlight, peak int32

	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{
			Date: time.Date(2025, 11, i+1, 0, 0, 0, 0, time.UTC),
			Run: func() error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			},
		}
	}

	RunBatch(jobs, 2)

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("peak parallelism %d, want <= 2", p)
	}
}
