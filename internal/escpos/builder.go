// internal/escpos/builder.go
package escpos

import (
	"bytes"
	"strings"

	"receipt-bridge/internal/format"
)

// Builder accumulates an ESC/POS command stream for a fixed column width
type Builder struct {
	buf     bytes.Buffer
	columns int
	table   CodeTable
}

// NewBuilder creates a builder for columns characters per line using table for text
func NewBuilder(columns int, table CodeTable) *Builder {
	return &Builder{columns: columns, table: table}
}

// Columns returns the line width in characters
func (b *Builder) Columns() int { return b.columns }

// Init resets the printer and selects the code table
func (b *Builder) Init() *Builder {
	b.buf.Write(Initialize())
	b.buf.Write(b.table.Select())
	return b
}

func (b *Builder) Align(a Alignment) *Builder {
	b.buf.Write(Align(a))
	return b
}

func (b *Builder) Bold(on bool) *Builder {
	b.buf.Write(Bold(on))
	return b
}

func (b *Builder) Size(n byte) *Builder {
	b.buf.Write(CharacterSize(n))
	return b
}

// Line writes one text line. Callers keep it within the column width.
func (b *Builder) Line(text string) *Builder {
	b.buf.Write(b.table.Encode(text))
	b.buf.WriteByte(LF)
	return b
}

// Wrapped writes text word wrapped to width columns
func (b *Builder) Wrapped(text string, width int) *Builder {
	for _, line := range strings.Split(text, "\n") {
		for _, wrapped := range format.Wrap(line, width) {
			b.Line(wrapped)
		}
	}
	return b
}

// Indented wraps text to the column width with every line prefixed by indent
func (b *Builder) Indented(indent, text string) *Builder {
	for _, line := range format.Wrap(text, b.columns-format.Width(indent)) {
		b.Line(indent + line)
	}
	return b
}

// KeyValue writes label and value on one justified line. If they cannot share a line
// the label is written alone and the value right aligned below it.
func (b *Builder) KeyValue(label, value string) *Builder {
	if format.Width(label)+format.Width(value)+1 <= b.columns {
		return b.Line(format.PadLine(label, value, b.columns))
	}
	b.Wrapped(label, b.columns)
	for _, line := range format.Wrap(value, b.columns) {
		b.Line(format.AlignRight(line, b.columns))
	}
	return b
}

// Separator writes a full width rule of ch
func (b *Builder) Separator(ch rune) *Builder {
	return b.Line(strings.Repeat(string(ch), b.columns))
}

// Raw appends pre-encoded bytes
func (b *Builder) Raw(data []byte) *Builder {
	b.buf.Write(data)
	return b
}

func (b *Builder) Feed(lines int) *Builder {
	if lines <= 0 {
		return b
	}
	if lines > 255 {
		lines = 255
	}
	b.buf.Write(FeedLines(byte(lines)))
	return b
}

func (b *Builder) Cut() *Builder {
	b.buf.Write(Cut(false))
	return b
}

func (b *Builder) OpenDrawer(pin int) *Builder {
	b.buf.Write(DrawerKick(pin))
	return b
}

// Bytes returns a copy of the accumulated stream
func (b *Builder) Bytes() []byte {
	return clone(b.buf.Bytes())
}
