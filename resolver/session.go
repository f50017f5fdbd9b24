package resolver

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// Override is one locked value. Clear means the field is intentionally left
// empty rather than resolved.
type Override struct {
	Value string
	Clear bool
}

type patternLock struct {
	pattern  string
	compiled glob.Glob
	override Override
}

// Session holds user-locked field values for a generation session. Locks are
// keyed by SEGMENT.POSITION paths; friendly aliases and glob patterns over
// paths are also accepted. A Session is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	locks    map[string]Override
	patterns []patternLock
}

// Aliases maps friendly names onto field paths.
var aliases = map[string]string{
	"patient.mrn":        "PID.3",
	"patient.name":       "PID.5",
	"patient.dob":        "PID.7",
	"patient.sex":        "PID.8",
	"patient.address":    "PID.11",
	"patient.phone":      "PID.13",
	"patient.account":    "PID.18",
	"visit.class":        "PV1.2",
	"visit.location":     "PV1.3",
	"visit.number":       "PV1.19",
	"sending.app":        "MSH.3",
	"sending.facility":   "MSH.4",
	"receiving.app":      "MSH.5",
	"receiving.facility": "MSH.6",
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{locks: make(map[string]Override)}
}

// CanonicalPath resolves aliases and normalizes case. An unknown alias is
// returned upper-cased as-is, assumed to already be a field path.
func CanonicalPath(path string) string {
	if mapped, ok := aliases[strings.ToLower(strings.TrimSpace(path))]; ok {
		return mapped
	}
	return strings.ToUpper(strings.TrimSpace(path))
}

// Lock pins a field to a fixed value for the rest of the session.
func (s *Session) Lock(path, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[CanonicalPath(path)] = Override{Value: value}
}

// Clear pins a field to the empty value: the resolver chain will not fill it.
func (s *Session) Clear(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks[CanonicalPath(path)] = Override{Clear: true}
}

// LockPattern pins every field whose path matches a glob pattern, for
// example "PID.*" or "MSH.[34]".
func (s *Session) LockPattern(pattern, value string) error {
	compiled, err := glob.Compile(strings.ToUpper(pattern))
	if err != nil {
		return fmt.Errorf("bad lock pattern %q: %w", pattern, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, patternLock{
		pattern:  pattern,
		compiled: compiled,
		override: Override{Value: value},
	})
	return nil
}

// Unlock removes an exact lock. Pattern locks are not affected.
func (s *Session) Unlock(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, CanonicalPath(path))
}

// Lookup returns the override for a field path. Exact locks shadow pattern
// locks; among patterns the earliest registered wins.
func (s *Session) Lookup(path string) (Override, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	canonical := CanonicalPath(path)
	if o, ok := s.locks[canonical]; ok {
		return o, true
	}
	for _, p := range s.patterns {
		if p.compiled.Match(canonical) {
			return p.override, true
		}
	}
	return Override{}, false
}

// Len reports how many exact locks the session holds.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.locks)
}
