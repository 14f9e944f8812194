// internal/escpos/labels.go
package escpos

import "strings"

// Labels holds the fixed receipt captions for one language
type Labels struct {
	Phone    string
	TaxID    string
	Order    string
	Date     string
	Cashier  string
	Customer string
	Subtotal string
	Discount string
	Tax      string
	Total    string
	Change   string
	ThankYou string
	Payments map[string]string
}

var labelsByLanguage = map[string]Labels{
	"en": {
		Phone:    "Tel",
		TaxID:    "Tax ID",
		Order:    "Order",
		Date:     "Date",
		Cashier:  "Cashier",
		Customer: "Customer",
		Subtotal: "Subtotal",
		Discount: "Discount",
		Tax:      "Tax",
		Total:    "TOTAL",
		Change:   "Change",
		ThankYou: "Thank you for your purchase!",
		Payments: map[string]string{
			"cash":     "CASH",
			"card":     "CARD",
			"credit":   "CREDIT",
			"debit":    "DEBIT",
			"transfer": "TRANSFER",
		},
	},
	"es": {
		Phone:    "Tel",
		TaxID:    "NIF",
		Order:    "Orden",
		Date:     "Fecha",
		Cashier:  "Cajero",
		Customer: "Cliente",
		Subtotal: "Subtotal",
		Discount: "Descuento",
		Tax:      "Impuesto",
		Total:    "TOTAL",
		Change:   "Cambio",
		ThankYou: "¡Gracias por su compra!",
		Payments: map[string]string{
			"cash":     "EFECTIVO",
			"card":     "TARJETA",
			"credit":   "CRÉDITO",
			"debit":    "DÉBITO",
			"transfer": "TRANSFERENCIA",
		},
	},
	"pt": {
		Phone:    "Tel",
		TaxID:    "CNPJ",
		Order:    "Pedido",
		Date:     "Data",
		Cashier:  "Caixa",
		Customer: "Cliente",
		Subtotal: "Subtotal",
		Discount: "Desconto",
		Tax:      "Imposto",
		Total:    "TOTAL",
		Change:   "Troco",
		ThankYou: "Obrigado pela preferência!",
		Payments: map[string]string{
			"cash":     "DINHEIRO",
			"card":     "CARTÃO",
			"credit":   "CRÉDITO",
			"debit":    "DÉBITO",
			"transfer": "TRANSFERÊNCIA",
			"pix":      "PIX",
		},
	},
}

// LabelsFor returns the labels for a base language, English when unknown
func LabelsFor(lang string) Labels {
	if l, ok := labelsByLanguage[lang]; ok {
		return l
	}
	return labelsByLanguage["en"]
}

// PaymentLabel localizes a payment method tag, upper-casing unknown tags
func (l Labels) PaymentLabel(method string) string {
	key := strings.ToLower(strings.TrimSpace(method))
	if label, ok := l.Payments[key]; ok {
		return label
	}
	return strings.ToUpper(strings.TrimSpace(method))
}
