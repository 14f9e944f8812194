// internal/format/format.go
package format

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// DefaultLanguage is used for unsupported language tags
const DefaultLanguage = "en"

var supportedLanguages = map[string]bool{
	"en": true,
	"es": true,
	"pt": true,
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"BRL": "R$",
	"MXN": "$",
	"ARS": "$",
	"CLP": "$",
	"COP": "$",
	"PEN": "S/",
	"CAD": "$",
	"AUD": "$",
	"JPY": "¥",
}

// NormalizeLanguage reduces a BCP-47 tag to a supported base language
func NormalizeLanguage(tag string) (string, bool) {
	if strings.TrimSpace(tag) == "" {
		return DefaultLanguage, true
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return DefaultLanguage, false
	}
	base, _ := parsed.Base()
	if supportedLanguages[base.String()] {
		return base.String(), true
	}
	return DefaultLanguage, false
}

// Formatter renders amounts for one language and currency
type Formatter struct {
	language     string
	code         string
	symbol       string
	scale        int32
	decimalSep   string
	thousandsSep string
	knownSymbol  bool
}

// New builds a Formatter. encodable reports whether the printer code table can print a
// string; a nil func accepts everything.
func New(lang, currencyCode string, encodable func(string) bool) *Formatter {
	lang, _ = NormalizeLanguage(lang)
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if code == "" {
		code = "USD"
	}

	f := &Formatter{
		language:     lang,
		code:         code,
		scale:        2,
		decimalSep:   ".",
		thousandsSep: ",",
	}
	if lang != "en" {
		f.decimalSep, f.thousandsSep = ",", "."
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		f.symbol = code + " "
		return f
	}
	scale, _ := currency.Standard.Rounding(unit)
	f.scale = int32(scale)

	symbol, ok := currencySymbols[code]
	if ok && (encodable == nil || encodable(symbol)) {
		f.symbol = symbol
		f.knownSymbol = true
	} else {
		f.symbol = code + " "
	}
	return f
}

// Language returns the normalized base language
func (f *Formatter) Language() string { return f.language }

// HasSymbol is false when the currency fell back to its literal code
func (f *Formatter) HasSymbol() bool { return f.knownSymbol }

// Amount renders d with the currency scale and locale separators, without symbol
func (f *Formatter) Amount(d decimal.Decimal) string {
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(f.scale)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	out := groupThousands(intPart, f.thousandsSep)
	if fracPart != "" {
		out += f.decimalSep + fracPart
	}
	if neg {
		return "-" + out
	}
	return out
}

// Money renders d with the currency symbol, e.g. "$1,234.50" or "-$2.50"
func (f *Formatter) Money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + f.symbol + f.Amount(d.Abs())
	}
	return f.symbol + f.Amount(d)
}

// Percent renders a percentage without trailing zeros, e.g. "10%" or "7,5%"
func (f *Formatter) Percent(d decimal.Decimal) string {
	s := d.String()
	if f.decimalSep != "." {
		s = strings.Replace(s, ".", f.decimalSep, 1)
	}
	return s + "%"
}

// Quantity renders an item quantity without trailing zeros
func (f *Formatter) Quantity(d decimal.Decimal) string {
	s := d.String()
	if f.decimalSep != "." {
		s = strings.Replace(s, ".", f.decimalSep, 1)
	}
	return s
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Width counts printable characters, one per rune
func Width(s string) int {
	return utf8.RuneCountInString(s)
}

// PadLine places label and value at opposite ends of a width-column line. When they do
// not fit the result keeps a single separating space and exceeds width.
func PadLine(label, value string, width int) string {
	gap := width - Width(label) - Width(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

// AlignRight pads s on the left to width columns
func AlignRight(s string, width int) string {
	if gap := width - Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

// Wrap breaks text into lines of at most width runes. Words longer than width are split;
// spaces at break points are the only characters consumed.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	var current []rune
	flush := func() {
		lines = append(lines, strings.TrimRight(string(current), " "))
		current = current[:0]
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > 0 {
			space := 0
			if len(current) > 0 {
				space = 1
			}
			room := width - len(current) - space
			if len(runes) <= room {
				if space == 1 {
					current = append(current, ' ')
				}
				current = append(current, runes...)
				runes = nil
				continue
			}
			if len(current) > 0 && len(runes) <= width {
				flush()
				continue
			}
			if len(current) > 0 {
				if room <= 0 {
					flush()
					continue
				}
				current = append(current, ' ')
				current = append(current, runes[:room]...)
				runes = runes[room:]
				flush()
				continue
			}
			current = append(current, runes[:width]...)
			runes = runes[width:]
			flush()
		}
	}
	if len(current) > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}
