package hl7v2

// Version represents an HL7 v2.x standard version.
type Version string

// Supported HL7 v2 versions.
const (
	// V23 is HL7 v2.3
	V23 Version = "2.3"
	// V231 is HL7 v2.3.1
	V231 Version = "2.3.1"
	// V24 is HL7 v2.4
	V24 Version = "2.4"
	// V25 is HL7 v2.5
	V25 Version = "2.5"
	// V251 is HL7 v2.5.1
	V251 Version = "2.5.1"
)

// String returns the version string as it appears in MSH-12.
func (v Version) String() string {
	return string(v)
}

// IsValid returns true if this is a supported HL7 v2 version.
func (v Version) IsValid() bool {
	switch v {
	case V23, V231, V24, V25, V251:
		return true
	default:
		return false
	}
}

// Mode selects how conformance deviations are graded.
type Mode string

const (
	// ModeStrict reports every structural or content deviation as an error.
	ModeStrict Mode = "strict"
	// ModeCompatibility reports the same deviations as warnings. Absence or
	// malformation of the header segment remains fatal in both modes.
	ModeCompatibility Mode = "compatibility"
)

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// IsValid returns true if this is a recognized validation mode.
func (m Mode) IsValid() bool {
	return m == ModeStrict || m == ModeCompatibility
}
