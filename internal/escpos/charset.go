// internal/escpos/charset.go
package escpos

import (
	"golang.org/x/text/encoding/charmap"
)

// CodeTable pairs an ESC t table number with the matching single byte encoding
type CodeTable struct {
	Name    string
	Number  byte
	charmap *charmap.Charmap
}

var (
	CodePagePC437 = CodeTable{Name: "PC437", Number: 0, charmap: charmap.CodePage437}
	CodePagePC858 = CodeTable{Name: "PC858", Number: 19, charmap: charmap.CodePage858}
)

// CodeTableFor picks the table for a normalized base language. Latin languages other
// than English get PC858 for accented letters and the euro sign.
func CodeTableFor(lang string) CodeTable {
	switch lang {
	case "es", "pt":
		return CodePagePC858
	default:
		return CodePagePC437
	}
}

// Select returns the ESC t n command for the table
func (ct CodeTable) Select() []byte {
	return SelectCodeTable(ct.Number)
}

// Encode converts s to printer bytes, one byte per rune. Unmappable runes become '?'.
// Control characters never reach the printer: whitespace controls become a space and
// the rest '?', so text can not smuggle in commands and every rune keeps one column.
func (ct CodeTable) Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if isControl(r) {
			out = append(out, controlReplacement(r))
			continue
		}
		if r < 0x80 {
			out = append(out, byte(r))
			continue
		}
		if b, ok := ct.charmap.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

// CanEncode reports whether every rune of s exists in the table
func (ct CodeTable) CanEncode(s string) bool {
	for _, r := range s {
		if isControl(r) {
			return false
		}
		if r < 0x80 {
			continue
		}
		if _, ok := ct.charmap.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}

// isControl reports C0, DEL and C1 control runes
func isControl(r rune) bool {
	return r < 0x20 || (r >= 0x7F && r < 0xA0)
}

func controlReplacement(r rune) byte {
	switch r {
	case '\t', '\n', '\r', '\v', '\f':
		return ' '
	}
	return '?'
}
