package datatype

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gohl7/hl7v2/definition"
)

// ValidateKind checks a primitive value against its kind's format rule.
// Coded kinds validate shape only; table membership is the validator's job
// because it needs the repository.
func ValidateKind(kind definition.PrimitiveKind, raw string) error {
	if raw == "" {
		return nil
	}

	switch kind {
	case definition.KindString, "":
		return nil

	case definition.KindNumeric:
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("not a valid number: %q", raw)
		}
		return nil

	case definition.KindSequence:
		d, err := decimal.NewFromString(raw)
		if err != nil || !d.IsInteger() || d.IsNegative() {
			return fmt.Errorf("not a valid sequence ID: %q", raw)
		}
		return nil

	case definition.KindDate:
		return validateDate(raw)

	case definition.KindTime:
		return validateTime(raw)

	case definition.KindTimestamp:
		return validateTimestamp(raw)

	case definition.KindCodedStrict, definition.KindCodedLoose:
		if strings.ContainsAny(raw, " \t\r\n") {
			return fmt.Errorf("coded value contains whitespace: %q", raw)
		}
		return nil

	default:
		return fmt.Errorf("unknown primitive kind %q", kind)
	}
}

// dateLayouts are the prefix-truncatable DT encodings.
var dateLayouts = []string{"2006", "200601", "20060102"}

func validateDate(raw string) error {
	for _, layout := range dateLayouts {
		if len(raw) == len(layout) {
			if _, err := time.Parse(layout, raw); err == nil {
				return nil
			}
			return fmt.Errorf("not a valid date: %q", raw)
		}
	}
	return fmt.Errorf("date has invalid length %d: %q", len(raw), raw)
}

// timeLayouts are the prefix-truncatable TM encodings, fractional seconds
// and offsets excluded (handled by splitTimestamp).
var timeLayouts = []string{"15", "1504", "150405"}

func validateTime(raw string) error {
	base, frac, offset := splitTimestamp(raw)
	if err := validateFraction(frac); err != nil {
		return fmt.Errorf("invalid time %q: %w", raw, err)
	}
	if err := validateOffset(offset); err != nil {
		return fmt.Errorf("invalid time %q: %w", raw, err)
	}
	for _, layout := range timeLayouts {
		if len(base) == len(layout) {
			if _, err := time.Parse(layout, base); err == nil {
				return nil
			}
			break
		}
	}
	return fmt.Errorf("not a valid time: %q", raw)
}

// timestampLayouts are the prefix-truncatable DTM encodings.
var timestampLayouts = []string{"2006", "200601", "20060102", "2006010215", "200601021504", "20060102150405"}

func validateTimestamp(raw string) error {
	base, frac, offset := splitTimestamp(raw)
	if err := validateFraction(frac); err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	if err := validateOffset(offset); err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	for _, layout := range timestampLayouts {
		if len(base) == len(layout) {
			if _, err := time.Parse(layout, base); err == nil {
				return nil
			}
			break
		}
	}
	return fmt.Errorf("not a valid timestamp: %q", raw)
}

// splitTimestamp separates a DTM/TM value into its fixed-width base, an
// optional ".ssss" fraction, and an optional "+/-ZZZZ" offset.
func splitTimestamp(raw string) (base, frac, offset string) {
	base = raw
	if i := strings.IndexAny(base, "+-"); i >= 0 {
		offset = base[i:]
		base = base[:i]
	}
	if i := strings.IndexByte(base, '.'); i >= 0 {
		frac = base[i:]
		base = base[:i]
	}
	return base, frac, offset
}

func validateFraction(frac string) error {
	if frac == "" {
		return nil
	}
	digits := frac[1:]
	if len(digits) == 0 || len(digits) > 4 {
		return fmt.Errorf("fraction must be 1-4 digits")
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return fmt.Errorf("fraction contains non-digit")
		}
	}
	return nil
}

func validateOffset(offset string) error {
	if offset == "" {
		return nil
	}
	if len(offset) != 5 {
		return fmt.Errorf("offset must be sign plus 4 digits")
	}
	for i := 1; i < 5; i++ {
		if offset[i] < '0' || offset[i] > '9' {
			return fmt.Errorf("offset contains non-digit")
		}
	}
	return nil
}

// FormatDT renders t as a full-precision DT value.
func FormatDT(t time.Time) string {
	return t.Format("20060102")
}

// FormatDTM renders t as a full-precision DTM value.
func FormatDTM(t time.Time) string {
	return t.Format("20060102150405")
}

// FormatNM renders a decimal in canonical NM form.
func FormatNM(d decimal.Decimal) string {
	return d.String()
}
