package rtofs

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// A Job is one unit of independent per-date work, typically an external
// tool invocation over that date's archive pair.
type Job struct {
	Date time.Time
	Run  func() error
}

// RunBatch runs the jobs with at most parallel of them in flight at once.
// Jobs share no state, so a failed date only loses that date: siblings run
// to completion and the failures come back keyed by date.
func RunBatch(jobs []Job, parallel int) map[time.Time]error {
	if parallel < 1 {
		parallel = 1
	}

	sem := make(chan int, parallel)
	results := make(chan struct {
		date time.Time
		err  error
	})

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()

			sem <- 1
			defer func() { <-sem }()

			err := job.Run()
			if err != nil {
				log.Error().Err(err).Time("date", job.Date).Msg("job failed")
			}
			results <- struct {
				date time.Time
				err  error
			}{job.Date, err}
		}(job)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	failures := map[time.Time]error{}
	for r := range results {
		if r.err != nil {
			failures[r.date] = r.err
		}
	}
	return failures
}
