package resolver

import (
	"fmt"
	"time"

	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
)

// genericCodedResolver handles table-bound fields the earlier bands passed
// over, typically composites whose first component carries the table.
type genericCodedResolver struct{}

func (genericCodedResolver) Name() string  { return "generic-coded" }
func (genericCodedResolver) Priority() int { return 40 }

func (genericCodedResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	table := fd.Table
	if table == "" {
		if dt, ok := rc.Defs.DataType(fd.DataType); ok && dt.IsComposite() {
			table = dt.Components[0].Table
		}
	}
	if table == "" {
		return nil, false
	}
	tbl, ok := rc.Defs.Table(table)
	if !ok || len(tbl.Entries) == 0 {
		return nil, false
	}
	entry := tbl.Entries[rc.Rand.Intn(len(tbl.Entries))]
	return datatype.NewLeaf(entry.Code), true
}

// randomResolver is the terminal band. It produces a kind-appropriate value
// for any field so the chain as a whole never fails.
type randomResolver struct{}

func (randomResolver) Name() string  { return "random" }
func (randomResolver) Priority() int { return 0 }

func (randomResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	dt, ok := rc.Defs.DataType(fd.DataType)
	if !ok {
		return datatype.NewLeaf(randomToken(rc)), true
	}
	kind := dt.Kind
	if dt.IsComposite() {
		if inner, ok := rc.Defs.DataType(dt.Components[0].DataType); ok {
			kind = inner.Kind
		}
	}
	return datatype.NewLeaf(randomForKind(rc, kind)), true
}

func randomForKind(rc *Context, kind definition.PrimitiveKind) string {
	switch kind {
	case definition.KindNumeric:
		return fmt.Sprintf("%d", rc.Rand.Intn(1000))
	case definition.KindSequence:
		if rc.SetIndex > 0 {
			return fmt.Sprintf("%d", rc.SetIndex)
		}
		return "1"
	case definition.KindDate:
		return datatype.FormatDT(randomPast(rc))
	case definition.KindTime:
		return fmt.Sprintf("%02d%02d%02d", rc.Rand.Intn(24), rc.Rand.Intn(60), rc.Rand.Intn(60))
	case definition.KindTimestamp:
		return datatype.FormatDTM(randomPast(rc))
	case definition.KindCodedStrict, definition.KindCodedLoose:
		letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
		return string(letters[rc.Rand.Intn(len(letters))])
	default:
		return randomToken(rc)
	}
}

func randomToken(rc *Context) string {
	return fmt.Sprintf("VAL%04d", rc.Rand.Intn(10000))
}

// randomPast returns a time up to a year before the message timestamp.
func randomPast(rc *Context) time.Time {
	return rc.Now.Add(-time.Duration(rc.Rand.Intn(365*24)) * time.Hour)
}
