// internal/model/receipt.go
package model

import (
	"github.com/shopspring/decimal"
)

// ReceiptSchemaVersion is the current receipt document version
const ReceiptSchemaVersion = 1

// Receipt is the document handed to the ESC/POS compiler
type Receipt struct {
	Version  int        `json:"version"`
	Store    StoreInfo  `json:"store"`
	Order    OrderInfo  `json:"order"`
	Items    []LineItem `json:"items"`
	Summary  Summary    `json:"summary"`
	Payments []Payment  `json:"payments"`

	Change decimal.Decimal `json:"change"`
	Footer string          `json:"footer,omitempty"`
	Coupon *Coupon         `json:"coupon,omitempty"`

	Language   string     `json:"language,omitempty"`
	Currency   string     `json:"currency,omitempty"`
	PaperWidth PaperWidth `json:"paperWidth,omitempty"`

	CutPaper       *bool `json:"cutPaper,omitempty"`
	OpenCashDrawer bool  `json:"openCashDrawer"`
}

// StoreInfo identifies the merchant
type StoreInfo struct {
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	TaxID      string `json:"taxId,omitempty"`
	Logo       string `json:"logo,omitempty"`
	HeaderText string `json:"headerText,omitempty"`
}

// OrderInfo carries order metadata printed under the header
type OrderInfo struct {
	Number   string `json:"number,omitempty"`
	Date     string `json:"date,omitempty"`
	Cashier  string `json:"cashier,omitempty"`
	Customer string `json:"customer,omitempty"`
}

type LineItem struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
	Modifiers []string        `json:"modifiers,omitempty"`
}

// Summary holds the monetary totals. The compiler prints the values as given.
type Summary struct {
	Subtotal        decimal.Decimal  `json:"subtotal"`
	Discount        decimal.Decimal  `json:"discount"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
	Tax             decimal.Decimal  `json:"tax"`
	TaxRate         *decimal.Decimal `json:"taxRate,omitempty"`
	Total           decimal.Decimal  `json:"total"`
}

type Payment struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// Coupon is an optional promotional block printed after the footer
type Coupon struct {
	Title string   `json:"title,omitempty"`
	Lines []string `json:"lines,omitempty"`
}

// ShouldCut defaults to true when the flag is absent
func (r *Receipt) ShouldCut() bool {
	return r.CutPaper == nil || *r.CutPaper
}
