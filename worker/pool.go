// Package worker runs message validation across a pool of goroutines. A
// long-lived Pool accepts jobs as they arrive; Batch is the one-shot helper
// for validating a whole corpus.
package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	hl7 "github.com/gohl7/hl7v2"
)

// ValidateFunc processes one raw message.
type ValidateFunc func(ctx context.Context, raw string, mode hl7.Mode) (*hl7.ValidationResult, error)

// Pool manages worker goroutines for streaming validation.
type Pool struct {
	workers    int
	validate   ValidateFunc
	jobsChan   chan Job
	resultChan chan *JobResult
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	totalDuration atomic.Int64
}

// NewPool starts a pool. Workers <= 0 defaults to one per CPU.
func NewPool(validate ValidateFunc, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		workers:    workers,
		validate:   validate,
		jobsChan:   make(chan Job, workers*2),
		resultChan: make(chan *JobResult, workers*2),
		ctx:        ctx,
		cancel:     cancel,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues a job, blocking while the queue is full. It reports false
// once the pool is closed.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// TrySubmit queues a job without blocking.
func (p *Pool) TrySubmit(job Job) bool {
	if p.closed.Load() {
		return false
	}
	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	default:
		return false
	}
}

// Results is the stream of finished jobs.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// Close stops the pool, discarding any undelivered results.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.cancel()
	close(p.jobsChan)

	// Drain so workers blocked on the result channel can exit.
	done := make(chan struct{})
	go func() {
		for range p.resultChan {
		}
		close(done)
	}()
	p.wg.Wait()
	close(p.resultChan)
	<-done
}

// CloseAndWait lets queued jobs finish and returns everything produced.
func (p *Pool) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}
	close(p.jobsChan)

	go func() {
		p.wg.Wait()
		close(p.resultChan)
	}()

	batch := &BatchResult{}
	for result := range p.resultChan {
		batch.Results = append(batch.Results, result)
		if result.Err != nil {
			batch.FailedJobs++
		}
	}
	batch.TotalJobs = int(p.jobsSubmitted.Load())
	batch.CompletedJobs = int(p.jobsCompleted.Load())
	batch.TotalDuration = time.Duration(p.totalDuration.Load())
	p.cancel()
	return batch
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	AvgDuration   time.Duration
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	completed := p.jobsCompleted.Load()
	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(p.totalDuration.Load() / int64(completed))
	}
	return Stats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: completed,
		AvgDuration:   avg,
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobsChan {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result := p.process(job)
		p.jobsCompleted.Add(1)
		p.totalDuration.Add(int64(result.Duration))

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

func (p *Pool) process(job Job) *JobResult {
	start := time.Now()
	result := &JobResult{ID: job.ID}

	mode := job.Mode
	if !mode.IsValid() {
		mode = hl7.ModeStrict
	}
	result.Result, result.Err = p.validate(p.ctx, job.Raw, mode)
	result.Duration = time.Since(start)
	return result
}
