package resolver

import (
	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
)

// tableResolver picks a code for primitive coded fields with a populated
// bound table. Composite table-bound fields are handled by the coherence
// band below it.
type tableResolver struct{}

func (tableResolver) Name() string  { return "table-code" }
func (tableResolver) Priority() int { return 80 }

func (tableResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	if fd.Table == "" {
		return nil, false
	}
	dt, ok := rc.Defs.DataType(fd.DataType)
	if !ok || dt.IsComposite() {
		return nil, false
	}
	if dt.Kind != definition.KindCodedStrict && dt.Kind != definition.KindCodedLoose {
		return nil, false
	}
	tbl, ok := rc.Defs.Table(fd.Table)
	if !ok || len(tbl.Entries) == 0 {
		return nil, false
	}
	entry := tbl.Entries[rc.Rand.Intn(len(tbl.Entries))]
	return datatype.NewLeaf(entry.Code), true
}
