package datatype

import (
	"fmt"
	"strings"
)

// Escape encodes delimiter characters and non-printable bytes in text so it
// can be embedded in a field without being read as structure. The encoding
// is fully reversible: Unescape(Escape(s, d), d) == s for every string.
func Escape(text string, d Delimiters) string {
	if !needsEscape(text, d) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 8)
	esc := d.Escape

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case d.Field:
			writeSequence(&b, esc, "F")
		case d.Component:
			writeSequence(&b, esc, "S")
		case d.Subcomponent:
			writeSequence(&b, esc, "T")
		case d.Repetition:
			writeSequence(&b, esc, "R")
		case d.Escape:
			writeSequence(&b, esc, "E")
		case '\r', '\n':
			writeSequence(&b, esc, fmt.Sprintf("X%02X", c))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape decodes escape sequences produced by Escape, plus any \Xhh..\
// hex sequence. A dangling or unrecognized sequence is left verbatim so
// lenient parsing never loses data.
func Unescape(text string, d Delimiters) string {
	esc := d.Escape
	if strings.IndexByte(text, esc) < 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != esc {
			b.WriteByte(c)
			continue
		}

		end := strings.IndexByte(text[i+1:], esc)
		if end < 0 {
			// Dangling escape character
			b.WriteByte(c)
			continue
		}
		seq := text[i+1 : i+1+end]

		if decoded, ok := decodeSequence(seq, d); ok {
			b.WriteString(decoded)
			i += end + 1
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func decodeSequence(seq string, d Delimiters) (string, bool) {
	switch seq {
	case "F":
		return string(d.Field), true
	case "S":
		return string(d.Component), true
	case "T":
		return string(d.Subcomponent), true
	case "R":
		return string(d.Repetition), true
	case "E":
		return string(d.Escape), true
	}

	// \Xhh..\ hex-encoded bytes
	if len(seq) >= 3 && seq[0] == 'X' && len(seq)%2 == 1 {
		hex := seq[1:]
		out := make([]byte, 0, len(hex)/2)
		for i := 0; i < len(hex); i += 2 {
			var v byte
			if _, err := fmt.Sscanf(hex[i:i+2], "%02X", &v); err != nil {
				return "", false
			}
			out = append(out, v)
		}
		return string(out), true
	}

	return "", false
}

func writeSequence(b *strings.Builder, esc byte, body string) {
	b.WriteByte(esc)
	b.WriteString(body)
	b.WriteByte(esc)
}

func needsEscape(text string, d Delimiters) bool {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\r' || c == '\n' || d.IsDelimiter(c) {
			return true
		}
	}
	return false
}
