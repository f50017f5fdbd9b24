// Package analysis aggregates field population statistics from message
// corpora, scores their statistical confidence, and matches them against
// known vendor fingerprints.
package analysis

import (
	"sort"
)

// FieldFrequency counts how often one field position was populated across a
// corpus. Counts only ever grow as messages are added.
type FieldFrequency struct {
	// Populated counts messages where the field was non-empty after
	// trimming.
	Populated int `json:"populated"`

	// Total counts messages where the segment was observed at all.
	Total int `json:"total"`
}

// Rate returns the population rate in [0,1], or 0 when nothing was observed.
func (f FieldFrequency) Rate() float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Populated) / float64(f.Total)
}

// add folds another frequency in. Addition is commutative and associative,
// so merge order never changes the result.
func (f FieldFrequency) add(other FieldFrequency) FieldFrequency {
	return FieldFrequency{
		Populated: f.Populated + other.Populated,
		Total:     f.Total + other.Total,
	}
}

// FieldPatterns is the population fingerprint of a message corpus: for each
// segment code, per-position field frequencies.
type FieldPatterns struct {
	// Standard is the HL7 version the corpus declared (MSH-12).
	Standard string `json:"standard"`

	// MessageType is the corpus target type (e.g. "ADT^A01").
	MessageType string `json:"messageType"`

	// Segments maps segment code to position to frequency.
	Segments map[string]map[int]FieldFrequency `json:"segments"`

	// MessageCount is how many messages contributed to the counts.
	MessageCount int `json:"messageCount"`

	// SkippedCount is how many corpus messages failed to parse and were
	// excluded from the counts.
	SkippedCount int `json:"skippedCount"`
}

// NewFieldPatterns creates an empty pattern set for a message type.
func NewFieldPatterns(messageType string) *FieldPatterns {
	return &FieldPatterns{
		MessageType: messageType,
		Segments:    make(map[string]map[int]FieldFrequency),
	}
}

// observe records one field occurrence.
func (p *FieldPatterns) observe(segment string, position int, populated bool) {
	fields, ok := p.Segments[segment]
	if !ok {
		fields = make(map[int]FieldFrequency)
		p.Segments[segment] = fields
	}
	f := fields[position]
	f.Total++
	if populated {
		f.Populated++
	}
	fields[position] = f
}

// Frequency returns the frequency recorded for one field position.
func (p *FieldPatterns) Frequency(segment string, position int) FieldFrequency {
	return p.Segments[segment][position]
}

// Merge folds another pattern set into this one. The operation is
// commutative and associative over the counts, so a corpus may be folded in
// any order or degree of parallelism. The standard is kept when consistent
// and dropped when the two sides disagree.
func (p *FieldPatterns) Merge(other *FieldPatterns) {
	if other == nil {
		return
	}
	if p.Standard == "" {
		p.Standard = other.Standard
	} else if other.Standard != "" && other.Standard != p.Standard {
		p.Standard = ""
	}
	for segment, fields := range other.Segments {
		for position, f := range fields {
			dst, ok := p.Segments[segment]
			if !ok {
				dst = make(map[int]FieldFrequency)
				p.Segments[segment] = dst
			}
			dst[position] = dst[position].add(f)
		}
	}
	p.MessageCount += other.MessageCount
	p.SkippedCount += other.SkippedCount
}

// SegmentCodes returns the observed segment codes in sorted order.
func (p *FieldPatterns) SegmentCodes() []string {
	codes := make([]string, 0, len(p.Segments))
	for code := range p.Segments {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
