package hl7v2

import (
	"sync/atomic"
	"time"
)

// Metrics tracks engine activity using lock-free atomic operations.
// All methods are safe for concurrent use.
type Metrics struct {
	// Parse counts
	parsesTotal  atomic.Uint64
	parsesFailed atomic.Uint64

	// Validation counts
	validationsTotal atomic.Uint64
	validationsValid atomic.Uint64

	// Generation counts
	generationsTotal  atomic.Uint64
	generationsFailed atomic.Uint64

	// Analysis counts
	analysesTotal    atomic.Uint64
	messagesAnalyzed atomic.Uint64

	// Timing (stored as nanoseconds)
	validationTimeTotal atomic.Uint64
	validationTimeMin   atomic.Uint64
	validationTimeMax   atomic.Uint64

	// Issue counts by severity
	errorsTotal   atomic.Uint64
	warningsTotal atomic.Uint64
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	// Initialize min to max uint64 so first value becomes the minimum
	m.validationTimeMin.Store(^uint64(0))
	return m
}

// RecordParse records a parse attempt.
func (m *Metrics) RecordParse(ok bool) {
	m.parsesTotal.Add(1)
	if !ok {
		m.parsesFailed.Add(1)
	}
}

// RecordValidation records a completed validation.
func (m *Metrics) RecordValidation(duration time.Duration, valid bool) {
	m.validationsTotal.Add(1)
	if valid {
		m.validationsValid.Add(1)
	}

	ns := uint64(duration.Nanoseconds())
	m.validationTimeTotal.Add(ns)

	// Update min (CAS loop)
	for {
		old := m.validationTimeMin.Load()
		if ns >= old {
			break
		}
		if m.validationTimeMin.CompareAndSwap(old, ns) {
			break
		}
	}

	// Update max (CAS loop)
	for {
		old := m.validationTimeMax.Load()
		if ns <= old {
			break
		}
		if m.validationTimeMax.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordGeneration records a generation attempt.
func (m *Metrics) RecordGeneration(ok bool) {
	m.generationsTotal.Add(1)
	if !ok {
		m.generationsFailed.Add(1)
	}
}

// RecordAnalysis records a corpus analysis covering n messages.
func (m *Metrics) RecordAnalysis(n int) {
	m.analysesTotal.Add(1)
	if n > 0 {
		m.messagesAnalyzed.Add(uint64(n))
	}
}

// RecordIssues records issue severities from one validation.
func (m *Metrics) RecordIssues(issues []Issue) {
	for _, issue := range issues {
		switch {
		case issue.IsError():
			m.errorsTotal.Add(1)
		case issue.IsWarning():
			m.warningsTotal.Add(1)
		}
	}
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	ParsesTotal       uint64        `json:"parsesTotal"`
	ParsesFailed      uint64        `json:"parsesFailed"`
	ValidationsTotal  uint64        `json:"validationsTotal"`
	ValidationsValid  uint64        `json:"validationsValid"`
	GenerationsTotal  uint64        `json:"generationsTotal"`
	GenerationsFailed uint64        `json:"generationsFailed"`
	AnalysesTotal     uint64        `json:"analysesTotal"`
	MessagesAnalyzed  uint64        `json:"messagesAnalyzed"`
	ErrorsTotal       uint64        `json:"errorsTotal"`
	WarningsTotal     uint64        `json:"warningsTotal"`
	AvgValidationTime time.Duration `json:"avgValidationTime"`
	MinValidationTime time.Duration `json:"minValidationTime"`
	MaxValidationTime time.Duration `json:"maxValidationTime"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	s := Snapshot{
		ParsesTotal:       m.parsesTotal.Load(),
		ParsesFailed:      m.parsesFailed.Load(),
		ValidationsTotal:  m.validationsTotal.Load(),
		ValidationsValid:  m.validationsValid.Load(),
		GenerationsTotal:  m.generationsTotal.Load(),
		GenerationsFailed: m.generationsFailed.Load(),
		AnalysesTotal:     m.analysesTotal.Load(),
		MessagesAnalyzed:  m.messagesAnalyzed.Load(),
		ErrorsTotal:       m.errorsTotal.Load(),
		WarningsTotal:     m.warningsTotal.Load(),
	}

	total := m.validationsTotal.Load()
	if total > 0 {
		s.AvgValidationTime = time.Duration(m.validationTimeTotal.Load() / total)
	}
	if min := m.validationTimeMin.Load(); min != ^uint64(0) {
		s.MinValidationTime = time.Duration(min)
	}
	s.MaxValidationTime = time.Duration(m.validationTimeMax.Load())

	return s
}

// Reset zeroes all metrics.
func (m *Metrics) Reset() {
	m.parsesTotal.Store(0)
	m.parsesFailed.Store(0)
	m.validationsTotal.Store(0)
	m.validationsValid.Store(0)
	m.generationsTotal.Store(0)
	m.generationsFailed.Store(0)
	m.analysesTotal.Store(0)
	m.messagesAnalyzed.Store(0)
	m.validationTimeTotal.Store(0)
	m.validationTimeMin.Store(^uint64(0))
	m.validationTimeMax.Store(0)
	m.errorsTotal.Store(0)
	m.warningsTotal.Store(0)
}
