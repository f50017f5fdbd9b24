package validator

import (
	"fmt"

	hl7 "github.com/gohl7/hl7v2"
	"github.com/gohl7/hl7v2/definition"
	"github.com/gohl7/hl7v2/message"
)

// validateStructure walks the message-structure node tree against the
// actually-parsed segment sequence. Segment order defines group membership,
// so matching is a single ordered scan with no backtracking: each node
// greedily consumes the segments it can claim, bounded by its cardinality.
func (v *Validator) validateStructure(msg *message.ParsedMessage, result *hl7.ValidationResult, mode hl7.Mode) {
	st, ok := v.defs.StructureForEvent(msg.TriggerEvent())
	if !ok {
		result.AddIssue(hl7.Graded(mode, hl7.IssueTypeStructure).
			Diagnostics(fmt.Sprintf("no message structure defined for %q", msg.MessageType())).
			At("MSH.9").
			Rule("structure-known").
			Build())
		result.RecordRule(false)
		return
	}
	result.RecordRule(true)

	cur := &segmentCursor{segments: msg.Segments()}
	v.matchNodes(st.Nodes, cur, result, mode, st.ID)

	// Whatever the tree did not claim is out of place.
	for ; cur.index < len(cur.segments); cur.index++ {
		seg := cur.segments[cur.index]
		result.AddIssue(hl7.Graded(mode, hl7.IssueTypeStructure).
			Diagnostics(fmt.Sprintf("segment %s not expected at this point in %s", seg.Code(), st.ID)).
			At(seg.Code()).
			Segment(cur.index).
			Rule("structure-sequence").
			Build())
		result.RecordRule(false)
	}
}

// segmentCursor is a forward-only position in the parsed segment list.
type segmentCursor struct {
	segments []*message.Segment
	index    int
}

func (c *segmentCursor) currentCode() (string, bool) {
	if c.index >= len(c.segments) {
		return "", false
	}
	return c.segments[c.index].Code(), true
}

func (v *Validator) matchNodes(nodes []definition.StructureNode, cur *segmentCursor, result *hl7.ValidationResult, mode hl7.Mode, path string) {
	for i := range nodes {
		node := &nodes[i]
		min, max := node.Cardinality.Bounds()

		count := 0
		for cur.nodeMatches(node) {
			if node.IsGroup() {
				v.matchNodes(node.Children, cur, result, mode, path+"/"+node.Group)
			} else {
				cur.index++
			}
			count++
		}
		// Overflow occurrences were consumed above so the scan stays
		// aligned; checkNodeCount flags them once with the real count.

		v.checkNodeCount(node, count, min, max, result, mode, path)
	}
}

func (v *Validator) checkNodeCount(node *definition.StructureNode, count, min, max int, result *hl7.ValidationResult, mode hl7.Mode, path string) {
	name := node.Segment
	if node.IsGroup() {
		name = "group " + node.Group
	}

	if node.Usage == definition.UsageRequired && count < min {
		// Product decision: compatibility mode downgrades a missing
		// required segment to a warning; strict mode errors.
		result.AddIssue(hl7.Graded(mode, hl7.IssueTypeRequired).
			Diagnostics(fmt.Sprintf("required %s is missing from %s", name, path)).
			At(node.Segment).
			Rule("structure-required").
			Build())
		result.RecordRule(false)
	} else {
		result.RecordRule(true)
	}

	if max >= 0 && count > max {
		result.AddIssue(hl7.Graded(mode, hl7.IssueTypeCardinality).
			Diagnostics(fmt.Sprintf("%s occurs %d times, at most %d allowed", name, count, max)).
			At(node.Segment).
			Rule("structure-cardinality").
			Build())
		result.RecordRule(false)
	} else {
		result.RecordRule(true)
	}
}

// nodeMatches reports whether the segment under the cursor could begin an
// occurrence of this node.
func (c *segmentCursor) nodeMatches(node *definition.StructureNode) bool {
	code, ok := c.currentCode()
	if !ok {
		return false
	}
	return nodeCanStartWith(node, code)
}

// nodeCanStartWith reports whether code is a legal first segment for node.
// For a group that means any child up to and including its first required
// child; optional leading children may be skipped entirely.
func nodeCanStartWith(node *definition.StructureNode, code string) bool {
	if !node.IsGroup() {
		return node.Segment == code
	}
	for i := range node.Children {
		child := &node.Children[i]
		if nodeCanStartWith(child, code) {
			return true
		}
		if child.Usage == definition.UsageRequired {
			break
		}
	}
	return false
}
