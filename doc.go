// Package hl7v2 provides parsing, validation, and synthetic generation of
// HL7 v2 messages, plus statistical vendor fingerprinting from sample traffic.
//
// The root package holds the shared vocabulary: validation issues and
// results, typed errors, engine options, and metrics. Functional areas live
// in subpackages:
//
//   - datatype: field/component trees, delimiters, escaping, primitive kinds
//   - definition: the five reference definition kinds
//   - registry: immutable lookup index over loaded definitions
//   - specs: embedded core definition set
//   - message: the parsed message model
//   - parser: wire text to ParsedMessage
//   - validator: structural and content conformance
//   - resolver: priority-ordered field value resolution for synthesis
//   - composer: trigger-event-driven message generation
//   - analysis: field population statistics, confidence, vendor detection
//   - engine: the facade wiring everything together
//
// # Quick Start
//
//	import (
//	    hl7 "github.com/gohl7/hl7v2"
//	    "github.com/gohl7/hl7v2/engine"
//	)
//
//	eng, err := engine.New(hl7.V25)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msg, err := eng.Parse(raw)
//	result := eng.Validate(ctx, msg)
//	for _, issue := range result.Errors() {
//	    fmt.Println(issue.Diagnostics)
//	}
//
// # Generation
//
//	out, err := eng.Generate(ctx, "ADT^A01", engine.GenerateOptions{Seed: 42})
//
// Generation walks the trigger event's message structure and resolves every
// field through a fixed priority chain: session overrides, header fields,
// table-driven codes, composite-coherence resolvers, reference datasets, and
// a random fallback that always produces a value. With a fixed seed the
// output is byte-identical across runs.
package hl7v2
