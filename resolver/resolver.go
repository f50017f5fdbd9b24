// Package resolver produces field values for synthetic message generation.
// A chain of priority-ordered resolvers is consulted strictly in order for
// each field; the first resolver that commits a value wins. The chain ends
// in a fallback that can always produce a kind-appropriate value, so
// resolution never fails for a defined field.
package resolver

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	hl7 "github.com/gohl7/hl7v2"
	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/dataset"
	"github.com/gohl7/hl7v2/definition"
	"github.com/gohl7/hl7v2/registry"
)

// Context carries everything a resolver may consult. One Context serves one
// whole generation call; the random source and session state make resolution
// deterministic for a fixed seed.
type Context struct {
	// Rand is the seeded random source. All randomness must come from
	// here so a fixed seed reproduces the message byte for byte.
	Rand *rand.Rand

	// Defs is the definition repository.
	Defs registry.Provider

	// Session holds user-locked field overrides, possibly nil.
	Session *Session

	// Delims are the delimiters the message is being composed with.
	Delims datatype.Delimiters

	// Now is the message timestamp. The composer derives it from the
	// seeded source so generated output is reproducible.
	Now time.Time

	// Header identity for the message being generated.
	MessageCode  string // e.g. "ADT"
	TriggerEvent string // e.g. "A01"
	StructureID  string // e.g. "ADT_A01"
	ControlID    string
	HL7Version   string

	// SetIndex is the 1-based instance number of the segment being
	// generated, used for Set ID fields of repeating segments.
	SetIndex int
}

// Resolver is one band in the chain. Resolve either commits a value for the
// field or defers to lower-priority bands by returning false.
type Resolver interface {
	Name() string
	Priority() int
	Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool)
}

// Chain is an ordered resolver list. Order is fixed at construction;
// resolution is strictly sequential because later bands must observe that an
// earlier band (a session lock, say) already committed.
type Chain struct {
	resolvers []Resolver
}

// NewChain builds a chain sorted by descending priority. The sort is stable
// so equal-priority resolvers keep their given order.
func NewChain(resolvers ...Resolver) *Chain {
	sorted := make([]Resolver, len(resolvers))
	copy(sorted, resolvers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() > sorted[j].Priority()
	})
	return &Chain{resolvers: sorted}
}

// Default builds the standard chain: session overrides, header fields, table
// codes, composite coherence, datasets, generic coded fallback, and the
// always-succeeding random fallback.
func Default(defs registry.Provider, lib *dataset.Library) *Chain {
	return NewChain(
		&overrideResolver{},
		&headerResolver{},
		&tableResolver{},
		&codedElementResolver{},
		&identifierResolver{},
		&rangeResolver{},
		&demographicResolver{lib: lib},
		&clinicalResolver{lib: lib},
		&genericCodedResolver{},
		&randomResolver{},
	)
}

// Resolve runs the chain for one field. The returned value may be empty when
// a session lock explicitly clears the field. An error here means the chain
// was built without a terminal fallback.
func (c *Chain) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, error) {
	for _, r := range c.resolvers {
		if v, ok := r.Resolve(rc, segment, fd); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: no resolver produced a value for %s", hl7.ErrResolutionFailed, fd.Path(segment))
}

// Resolvers returns the chain contents in evaluation order.
func (c *Chain) Resolvers() []Resolver {
	out := make([]Resolver, len(c.resolvers))
	copy(out, c.resolvers)
	return out
}
