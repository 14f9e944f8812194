package escpos

import (
	"fmt"
	"strings"
	"time"

	"receipt-bridge/internal/format"
	"receipt-bridge/internal/model"
)

// TestPage renders a short page that shows the configured transport and column ruler
func TestPage(profile *model.PrinterProfile, lang string, printedAt time.Time) []byte {
	lang, _ = format.NormalizeLanguage(lang)
	paper := profile.PaperWidth
	if paper == "" {
		paper = model.DefaultPaperWidth
	}
	columns := paper.Columns()

	b := NewBuilder(columns, CodeTableFor(lang)).Init()
	b.Align(AlignCenter).Bold(true).Size(SizeDouble)
	b.Wrapped("TEST PRINT", columns/2)
	b.Size(SizeNormal).Bold(false)
	b.Separator('-')
	b.Align(AlignLeft)
	b.KeyValue("Role:", string(profile.Role))
	b.KeyValue("Transport:", string(profile.Transport))
	b.KeyValue("Address:", profile.Address())
	b.KeyValue("Paper:", fmt.Sprintf("%s / %d cols", paper, columns))
	b.KeyValue("Time:", printedAt.Format("2006-01-02 15:04:05"))
	b.Separator('-')

	var ruler strings.Builder
	for i := 1; i <= columns; i++ {
		ruler.WriteByte(byte('0' + i%10))
	}
	b.Line(ruler.String())
	b.Align(AlignCenter).Wrapped(LabelsFor(lang).ThankYou, columns)

	return b.Feed(DefaultFeedLines).Cut().Bytes()
}
