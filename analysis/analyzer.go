package analysis

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	hl7 "github.com/gohl7/hl7v2"
	"github.com/gohl7/hl7v2/message"
	"github.com/gohl7/hl7v2/parser"
	"github.com/gohl7/hl7v2/registry"
)

// Analyzer accumulates field population statistics from raw message corpora.
type Analyzer struct {
	defs    registry.Provider
	parser  *parser.Parser
	workers int
	log     *slog.Logger
}

// New creates an Analyzer using one worker per CPU.
func New(defs registry.Provider) *Analyzer {
	return &Analyzer{
		defs:    defs,
		parser:  parser.New(defs),
		workers: runtime.NumCPU(),
		log:     slog.Default(),
	}
}

// SetWorkers bounds the parallelism of corpus analysis.
func (a *Analyzer) SetWorkers(n int) {
	if n > 0 {
		a.workers = n
	}
}

// SetLogger replaces the analyzer's logger.
func (a *Analyzer) SetLogger(log *slog.Logger) {
	if log != nil {
		a.log = log
	}
}

// AnalyzeCorpus parses every message in the corpus and accumulates, for each
// (segment, position) pair, how often the field was populated. Messages that
// fail to parse, or whose type differs from the target, are skipped and
// counted rather than aborting the batch. Each message is analyzed
// independently and the per-message results are folded with Merge, so the
// outcome does not depend on worker count. Cancellation aborts the whole
// batch with an AnalysisError; no partial statistic is returned.
func (a *Analyzer) AnalyzeCorpus(ctx context.Context, corpus []string, messageType string) (*FieldPatterns, error) {
	total := NewFieldPatterns(messageType)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	processed := 0
	for _, raw := range corpus {
		raw := raw
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part := a.analyzeOne(raw, messageType)
			mu.Lock()
			total.Merge(part)
			processed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &hl7.AnalysisError{Err: err, Processed: processed}
	}
	if err := ctx.Err(); err != nil {
		return nil, &hl7.AnalysisError{Err: err, Processed: processed}
	}

	a.log.Debug("corpus analyzed",
		"messageType", messageType,
		"messages", total.MessageCount,
		"skipped", total.SkippedCount,
		"segments", len(total.Segments))
	return total, nil
}

// analyzeOne turns a single raw message into a partial pattern set.
func (a *Analyzer) analyzeOne(raw, messageType string) *FieldPatterns {
	part := NewFieldPatterns(messageType)

	msg, err := a.parser.Parse(raw)
	if err != nil {
		part.SkippedCount++
		return part
	}
	if messageType != "" && msg.MessageType() != messageType {
		part.SkippedCount++
		return part
	}

	part.Standard = msg.Version()
	part.MessageCount++
	for _, seg := range msg.Segments() {
		a.observeSegment(part, seg)
	}
	return part
}

// observeSegment records every field position of one segment. Positions come
// from the segment definition when known, so absent defined fields count
// toward Total; unknown segments contribute only their observed positions.
func (a *Analyzer) observeSegment(p *FieldPatterns, seg *message.Segment) {
	if def, ok := a.defs.Segment(seg.Code()); ok {
		for _, fd := range def.Fields {
			populated := strings.TrimSpace(seg.FieldRaw(fd.Position)) != ""
			p.observe(seg.Code(), fd.Position, populated)
		}
		return
	}
	for _, pos := range seg.Positions() {
		populated := strings.TrimSpace(seg.FieldRaw(pos)) != ""
		p.observe(seg.Code(), pos, populated)
	}
}

// AnalyzeSegment analyzes one standalone segment line for ad-hoc
// comparison. Standard delimiters are assumed.
func (a *Analyzer) AnalyzeSegment(line string) (*FieldPatterns, error) {
	line = strings.TrimRight(line, "\r\n")
	if len(line) < 3 {
		return nil, hl7.NewParseError(hl7.ErrEmptyMessage, "segment line too short", 1)
	}

	code := line[:3]
	part := NewFieldPatterns("")

	rest := ""
	if len(line) > 4 {
		rest = line[4:]
	}
	tokens := strings.Split(rest, "|")

	// The header's first two positions are the delimiters themselves.
	start := 1
	if code == "MSH" {
		part.observe(code, 1, true)
		part.observe(code, 2, true)
		start = 3
	}
	for i, tok := range tokens {
		part.observe(code, start+i, strings.TrimSpace(tok) != "")
	}
	part.MessageCount = 1
	return part, nil
}
