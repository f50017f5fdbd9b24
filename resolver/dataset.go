package resolver

import (
	"strconv"
	"time"

	"github.com/gohl7/hl7v2/dataset"
	"github.com/gohl7/hl7v2/datatype"
	"github.com/gohl7/hl7v2/definition"
)

// demographicResolver fills person-shaped composites (names, addresses,
// phone numbers) and birth dates from the embedded demographic datasets.
type demographicResolver struct {
	lib *dataset.Library
}

func (demographicResolver) Name() string  { return "demographics" }
func (demographicResolver) Priority() int { return 60 }

func (r *demographicResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	if r.lib == nil {
		return nil, false
	}
	switch fd.DataType {
	case "XPN":
		p := r.lib.Person(rc.Rand)
		return datatype.NewComposite(
			datatype.NewLeaf(p.FamilyName),
			datatype.NewLeaf(p.GivenName),
		), true
	case "XCN":
		p := r.lib.Person(rc.Rand)
		id := strconv.Itoa(1000 + rc.Rand.Intn(9000))
		return datatype.NewComposite(
			datatype.NewLeaf(id),
			datatype.NewLeaf(p.FamilyName),
			datatype.NewLeaf(p.GivenName),
		), true
	case "XAD":
		a := r.lib.Address(rc.Rand)
		return datatype.NewComposite(
			datatype.NewLeaf(a.Street),
			datatype.NewLeaf(""),
			datatype.NewLeaf(a.City),
			datatype.NewLeaf(a.State),
			datatype.NewLeaf(a.Zip),
		), true
	case "XTN":
		return datatype.NewLeaf(r.lib.Phone(rc.Rand)), true
	}

	// Birth dates get a plausible adult age instead of an arbitrary date.
	if segment == "PID" && fd.Position == 7 {
		age := 18 + rc.Rand.Intn(72)
		days := rc.Rand.Intn(365)
		born := rc.Now.AddDate(-age, 0, -days)
		return datatype.NewLeaf(datatype.FormatDT(born)), true
	}
	return nil, false
}

// clinicalResolver fills diagnosis and allergen fields from the embedded
// clinical reference datasets. Like the coherence band, it commits whole
// coded elements so code and description always match.
type clinicalResolver struct {
	lib *dataset.Library
}

func (clinicalResolver) Name() string  { return "clinical" }
func (clinicalResolver) Priority() int { return 60 }

func (r *clinicalResolver) Resolve(rc *Context, segment string, fd definition.FieldDefinition) (*datatype.Value, bool) {
	if r.lib == nil {
		return nil, false
	}
	switch {
	case segment == "DG1" && fd.DataType == "CE":
		d := r.lib.Diagnosis(rc.Rand)
		return datatype.NewComposite(
			datatype.NewLeaf(d.Code),
			datatype.NewLeaf(d.Description),
			datatype.NewLeaf("I10"),
		), true
	case segment == "AL1" && fd.DataType == "CWE" && fd.Table == "":
		m := r.lib.Medication(rc.Rand)
		return datatype.NewComposite(
			datatype.NewLeaf(m.Name),
			datatype.NewLeaf(m.Name+" "+m.Strength),
		), true
	case segment == "DG1" && fd.DataType == "DTM":
		// Diagnosis timestamps fall within the month before the message.
		back := time.Duration(rc.Rand.Intn(30*24)) * time.Hour
		return datatype.NewLeaf(datatype.FormatDTM(rc.Now.Add(-back))), true
	}
	return nil, false
}
