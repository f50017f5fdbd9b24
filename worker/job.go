package worker

import (
	"time"

	hl7 "github.com/gohl7/hl7v2"
)

// Job is one message-validation work item.
type Job struct {
	// ID correlates the job with its result.
	ID string

	// Raw is the wire-format message text.
	Raw string

	// Mode selects strict or compatibility grading.
	Mode hl7.Mode
}

// JobResult is the outcome of one job.
type JobResult struct {
	// ID matches the Job that produced this result.
	ID string

	// Result is the validation outcome, nil when Err is set.
	Result *hl7.ValidationResult

	// Err is set when the message could not be processed at all.
	Err error

	// Duration is the processing time for this job.
	Duration time.Duration
}

// BatchResult aggregates the results of a batch.
type BatchResult struct {
	// Results holds every job result, in submission order for batch calls.
	Results []*JobResult

	// TotalJobs is the number of jobs submitted.
	TotalJobs int

	// CompletedJobs counts jobs that finished, including failed ones.
	CompletedJobs int

	// FailedJobs counts jobs that errored before producing a result.
	FailedJobs int

	// TotalDuration sums per-job processing time.
	TotalDuration time.Duration
}

// HasErrors reports whether any job failed or any result carries errors.
func (br *BatchResult) HasErrors() bool {
	for _, r := range br.Results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			return true
		}
		if r.Result != nil && r.Result.HasErrors() {
			return true
		}
	}
	return false
}

// ErrorCount totals validation errors across all results.
func (br *BatchResult) ErrorCount() int {
	count := 0
	for _, r := range br.Results {
		if r != nil && r.Result != nil {
			count += r.Result.ErrorCount()
		}
	}
	return count
}
