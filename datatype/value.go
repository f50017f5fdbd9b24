package datatype

import "strings"

// Value is a node in a field's component tree. A leaf holds unescaped text;
// a composite holds ordered child components. Fields decompose into
// components on the component separator, and components into subcomponents
// on the subcomponent separator.
type Value struct {
	text       string
	components []*Value
}

// NewLeaf creates a leaf value holding text (unescaped form).
func NewLeaf(text string) *Value {
	return &Value{text: text}
}

// NewComposite creates a composite value from ordered components.
func NewComposite(components ...*Value) *Value {
	return &Value{components: components}
}

// IsLeaf returns true for leaf values.
func (v *Value) IsLeaf() bool {
	return len(v.components) == 0
}

// Text returns the leaf text, or the first leaf's text for a composite.
// This mirrors the HL7 convention that the first component carries the
// primary value.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	if v.IsLeaf() {
		return v.text
	}
	return v.components[0].Text()
}

// Component returns the 1-based component. A leaf behaves as a
// single-component composite: Component(1) returns the leaf itself.
func (v *Value) Component(position int) *Value {
	if v == nil || position < 1 {
		return nil
	}
	if v.IsLeaf() {
		if position == 1 {
			return v
		}
		return nil
	}
	if position > len(v.components) {
		return nil
	}
	return v.components[position-1]
}

// ComponentText returns the text of the 1-based component, or "" when absent.
func (v *Value) ComponentText(position int) string {
	return v.Component(position).Text()
}

// ComponentCount returns the number of components; 1 for a leaf.
func (v *Value) ComponentCount() int {
	if v == nil {
		return 0
	}
	if v.IsLeaf() {
		return 1
	}
	return len(v.components)
}

// IsEmpty returns true when every leaf under v is empty after trimming.
func (v *Value) IsEmpty() bool {
	if v == nil {
		return true
	}
	if v.IsLeaf() {
		return strings.TrimSpace(v.text) == ""
	}
	for _, c := range v.components {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// ParseValue decomposes one field repetition into its component tree using
// the message's declared delimiters. Escaped delimiter characters inside
// leaves are restored to their literal form.
func ParseValue(raw string, d Delimiters) *Value {
	return parseAt(raw, d, 0)
}

// separator depth: 0 splits on the component separator, 1 on the
// subcomponent separator, below that everything is a leaf.
func parseAt(raw string, d Delimiters, depth int) *Value {
	var sep byte
	switch depth {
	case 0:
		sep = d.Component
	case 1:
		sep = d.Subcomponent
	default:
		return NewLeaf(Unescape(raw, d))
	}

	if strings.IndexByte(raw, sep) < 0 {
		if depth == 0 && strings.IndexByte(raw, d.Subcomponent) >= 0 {
			// Subcomponents without components still nest one level down
			return NewComposite(parseAt(raw, d, 1))
		}
		return NewLeaf(Unescape(raw, d))
	}

	parts := strings.Split(raw, string(sep))
	children := make([]*Value, len(parts))
	for i, p := range parts {
		children[i] = parseAt(p, d, depth+1)
	}
	return NewComposite(children...)
}

// Format renders the value back to wire form, escaping leaf text and
// trimming only trailing empty components. Interior empties are preserved
// so component positions stay stable.
func (v *Value) Format(d Delimiters) string {
	return v.formatAt(d, 0)
}

func (v *Value) formatAt(d Delimiters, depth int) string {
	if v == nil {
		return ""
	}
	if v.IsLeaf() {
		return Escape(v.text, d)
	}

	var sep byte
	switch depth {
	case 0:
		sep = d.Component
	default:
		sep = d.Subcomponent
	}

	parts := make([]string, len(v.components))
	for i, c := range v.components {
		parts[i] = c.formatAt(d, depth+1)
	}

	// Trim trailing empty components only
	last := len(parts)
	for last > 0 && parts[last-1] == "" {
		last--
	}
	return strings.Join(parts[:last], string(sep))
}

// Equal reports structural equality after formatting with the standard
// delimiters. Trailing empty components compare equal to their absence.
func (v *Value) Equal(other *Value) bool {
	d := Standard()
	return v.Format(d) == other.Format(d)
}
