package resolver

import (
	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
)

// overrideResolver applies session locks. It sits at the top of the chain so
// every other band sees locked fields as already committed.
type overrideResolver struct{}

func (overrideResolver) Name() string  { return "session-override" }
func (overrideResolver) Priority() int { return 100 }

func (overrideResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	if rc.Session == nil {
		return nil, false
	}
	o, ok := rc.Session.Lookup(fd.Path(segment))
	if !ok {
		return nil, false
	}
	if o.Clear {
		return datatype.NewLeaf(""), true
	}
	return datatype.ParseValue(o.Value, rc.Delims), true
}
