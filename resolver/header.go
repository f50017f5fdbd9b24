package resolver

import (
	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
)

// headerResolver fills the MSH fields whose values come from the generation
// context rather than from reference data: delimiters, message timestamp,
// message type, control ID, processing ID, and version. The sending and
// receiving identity fields are left to lower bands.
type headerResolver struct{}

func (headerResolver) Name() string  { return "message-header" }
func (headerResolver) Priority() int { return 90 }

func (headerResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	if segment != "MSH" {
		return nil, false
	}
	switch fd.Position {
	case 1:
		return datatype.NewLeaf(string(rc.Delims.Field)), true
	case 2:
		return datatype.NewLeaf(rc.Delims.Encoding()), true
	case 7:
		return datatype.NewLeaf(datatype.FormatDTM(rc.Now)), true
	case 9:
		return datatype.NewComposite(
			datatype.NewLeaf(rc.MessageCode),
			datatype.NewLeaf(rc.TriggerEvent),
			datatype.NewLeaf(rc.StructureID),
		), true
	case 10:
		return datatype.NewLeaf(rc.ControlID), true
	case 11:
		return datatype.NewLeaf("P"), true
	case 12:
		return datatype.NewLeaf(rc.HL7Version), true
	}
	return nil, false
}
