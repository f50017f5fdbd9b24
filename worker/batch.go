package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	hl7 "github.com/gohl7/hl7v2"
)

// Batch validates a corpus and returns results in submission order. Small
// corpora run sequentially; larger ones fan out across workers. Cancellation
// stops processing; jobs not reached stay nil in Results.
func Batch(ctx context.Context, validate ValidateFunc, mode hl7.Mode, corpus []string, workers int) *BatchResult {
	if len(corpus) == 0 {
		return &BatchResult{Results: []*JobResult{}}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(corpus) <= 2 || workers == 1 {
		return batchSequential(ctx, validate, mode, corpus)
	}
	return batchParallel(ctx, validate, mode, corpus, workers)
}

func batchSequential(ctx context.Context, validate ValidateFunc, mode hl7.Mode, corpus []string) *BatchResult {
	batch := &BatchResult{
		Results:   make([]*JobResult, 0, len(corpus)),
		TotalJobs: len(corpus),
	}
	for i, raw := range corpus {
		if ctx.Err() != nil {
			return batch
		}
		start := time.Now()
		result, err := validate(ctx, raw, mode)
		jr := &JobResult{
			ID:       fmt.Sprintf("msg-%d", i),
			Result:   result,
			Err:      err,
			Duration: time.Since(start),
		}
		batch.Results = append(batch.Results, jr)
		batch.CompletedJobs++
		batch.TotalDuration += jr.Duration
		if err != nil {
			batch.FailedJobs++
		}
	}
	return batch
}

func batchParallel(ctx context.Context, validate ValidateFunc, mode hl7.Mode, corpus []string, workers int) *BatchResult {
	if workers > len(corpus) {
		workers = len(corpus)
	}

	type indexedJob struct {
		index int
		raw   string
	}
	jobs := make(chan indexedJob, len(corpus))
	results := make([]*JobResult, len(corpus))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				start := time.Now()
				result, err := validate(ctx, job.raw, mode)
				results[job.index] = &JobResult{
					ID:       fmt.Sprintf("msg-%d", job.index),
					Result:   result,
					Err:      err,
					Duration: time.Since(start),
				}
			}
		}()
	}

	for i, raw := range corpus {
		jobs <- indexedJob{index: i, raw: raw}
	}
	close(jobs)
	wg.Wait()

	batch := &BatchResult{Results: results, TotalJobs: len(corpus)}
	for _, r := range results {
		if r == nil {
			continue
		}
		batch.CompletedJobs++
		batch.TotalDuration += r.Duration
		if r.Err != nil {
			batch.FailedJobs++
		}
	}
	return batch
}
