// internal/escpos/compiler.go
package escpos

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"receipt-bridge/internal/format"
	"receipt-bridge/internal/model"
)

// LogoRasterizer turns a logo reference into a complete raster image command. It returns
// nil when the logo cannot be produced.
type LogoRasterizer interface {
	Rasterize(ctx context.Context, source string, maxWidth int) []byte
}

// Compiler renders receipts into ESC/POS byte streams
type Compiler struct {
	logos     LogoRasterizer
	logger    *zap.Logger
	feedLines int
}

// NewCompiler creates a compiler. logos may be nil, in which case logos are skipped.
func NewCompiler(logos LogoRasterizer, feedLines int, logger *zap.Logger) *Compiler {
	if feedLines <= 0 {
		feedLines = DefaultFeedLines
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{
		logos:     logos,
		logger:    logger.With(zap.String("component", "escpos-compiler")),
		feedLines: feedLines,
	}
}

// Options carries printer settings that are not part of the receipt document
type Options struct {
	DrawerPin int
}

// Compile renders r. The output depends only on r, opts and the logo rasterizer's answer.
func (c *Compiler) Compile(ctx context.Context, r *model.Receipt, opts Options) []byte {
	lang, supported := format.NormalizeLanguage(r.Language)
	if !supported {
		c.logger.Warn("Unsupported receipt language, using English labels",
			zap.String("language", r.Language),
		)
	}

	paper := r.PaperWidth
	if paper == "" {
		paper = model.DefaultPaperWidth
	}

	table := CodeTableFor(lang)
	fm := format.New(lang, r.Currency, table.CanEncode)
	if r.Currency != "" && !fm.HasSymbol() {
		c.logger.Warn("No printable symbol for currency, using code",
			zap.String("currency", r.Currency),
		)
	}

	rc := &receiptCompiler{
		b:      NewBuilder(paper.Columns(), table),
		fm:     fm,
		labels: LabelsFor(lang),
	}

	rc.b.Init()
	rc.header(ctx, c, r, paper)
	rc.orderInfo(&r.Order)
	rc.items(r.Items)
	rc.totals(&r.Summary)
	rc.payments(r.Payments, r.Change)
	rc.footer(r.Footer, r.Coupon)

	rc.b.Feed(c.feedLines)
	if r.ShouldCut() {
		rc.b.Cut()
	}
	if r.OpenCashDrawer {
		rc.b.OpenDrawer(opts.DrawerPin)
	}
	return rc.b.Bytes()
}

type receiptCompiler struct {
	b      *Builder
	fm     *format.Formatter
	labels Labels
}

func (rc *receiptCompiler) header(ctx context.Context, c *Compiler, r *model.Receipt, paper model.PaperWidth) {
	b := rc.b
	b.Align(AlignCenter)

	if logo := strings.TrimSpace(r.Store.Logo); logo != "" && c.logos != nil {
		if raster := c.logos.Rasterize(ctx, logo, paper.LogoWidth()); raster != nil {
			b.Raw(raster)
		} else {
			c.logger.Warn("Logo could not be rasterized, printing without it")
		}
	}

	if name := strings.TrimSpace(r.Store.Name); name != "" {
		b.Bold(true).Size(SizeDouble)
		b.Wrapped(name, b.Columns()/2)
		b.Size(SizeNormal).Bold(false)
	}
	if r.Store.Address != "" {
		b.Wrapped(r.Store.Address, b.Columns())
	}
	if r.Store.Phone != "" {
		b.Wrapped(rc.labels.Phone+": "+r.Store.Phone, b.Columns())
	}
	if r.Store.TaxID != "" {
		b.Wrapped(rc.labels.TaxID+": "+r.Store.TaxID, b.Columns())
	}
	if r.Store.HeaderText != "" {
		b.Wrapped(r.Store.HeaderText, b.Columns())
	}
}

func (rc *receiptCompiler) orderInfo(o *model.OrderInfo) {
	b := rc.b
	b.Separator('-')
	b.Align(AlignLeft)

	if o.Number != "" {
		b.KeyValue(rc.labels.Order+":", "#"+strings.TrimPrefix(o.Number, "#"))
	}
	if o.Date != "" {
		b.KeyValue(rc.labels.Date+":", o.Date)
	}
	if o.Cashier != "" {
		b.KeyValue(rc.labels.Cashier+":", o.Cashier)
	}
	if o.Customer != "" {
		b.KeyValue(rc.labels.Customer+":", o.Customer)
	}
}

func (rc *receiptCompiler) items(items []model.LineItem) {
	b := rc.b
	if len(items) == 0 {
		return
	}
	b.Separator('-')

	for _, item := range items {
		b.Wrapped(rc.fm.Quantity(item.Quantity)+"x "+item.Name, b.Columns())

		total := rc.fm.Money(item.Total)
		if item.Quantity.GreaterThan(decimal.NewFromInt(1)) {
			b.KeyValue("  @ "+rc.fm.Money(item.UnitPrice), total)
		} else {
			b.Line(format.AlignRight(total, b.Columns()))
		}

		for _, modifier := range item.Modifiers {
			if strings.TrimSpace(modifier) == "" {
				continue
			}
			b.Indented("  + ", modifier)
		}
	}
}

func (rc *receiptCompiler) totals(s *model.Summary) {
	b := rc.b
	b.Separator('-')

	b.KeyValue(rc.labels.Subtotal, rc.fm.Money(s.Subtotal))

	if s.Discount.IsPositive() {
		label := rc.labels.Discount
		if s.DiscountPercent != nil && s.DiscountPercent.IsPositive() {
			label += " (" + rc.fm.Percent(*s.DiscountPercent) + ")"
		}
		b.KeyValue(label, "-"+rc.fm.Money(s.Discount))
	}

	if !s.Tax.IsZero() || s.TaxRate != nil {
		label := rc.labels.Tax
		if s.TaxRate != nil {
			label += " (" + rc.fm.Percent(*s.TaxRate) + ")"
		}
		b.KeyValue(label, rc.fm.Money(s.Tax))
	}

	b.Bold(true).Size(SizeDoubleHeight)
	b.KeyValue(rc.labels.Total, rc.fm.Money(s.Total))
	b.Size(SizeNormal).Bold(false)
}

func (rc *receiptCompiler) payments(payments []model.Payment, change decimal.Decimal) {
	b := rc.b
	if len(payments) == 0 && !change.IsPositive() {
		return
	}
	b.Line("")

	for _, p := range payments {
		b.KeyValue(rc.labels.PaymentLabel(p.Method)+":", rc.fm.Money(p.Amount))
	}
	if change.IsPositive() {
		b.KeyValue(rc.labels.Change+":", rc.fm.Money(change))
	}
}

func (rc *receiptCompiler) footer(text string, coupon *model.Coupon) {
	b := rc.b
	b.Line("")
	b.Align(AlignCenter)

	if strings.TrimSpace(text) == "" {
		text = rc.labels.ThankYou
	}
	b.Wrapped(text, b.Columns())

	if coupon == nil || (coupon.Title == "" && len(coupon.Lines) == 0) {
		return
	}
	b.Line("")
	b.Separator('=')
	if coupon.Title != "" {
		b.Bold(true)
		b.Wrapped(coupon.Title, b.Columns())
		b.Bold(false)
	}
	for _, line := range coupon.Lines {
		b.Wrapped(line, b.Columns())
	}
	b.Separator('=')
}
