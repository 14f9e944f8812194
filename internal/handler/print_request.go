// internal/handler/print_request.go
package handler

import (
	"encoding/base64"
	"strings"

	"receipt-bridge/internal/model"
	"receipt-bridge/pkg/printerr"
)

// ReceiptPayload is the accepted wire shape of a receipt.
// Older POS builds send logoUrl instead of logo and a single modifier string per item.
type ReceiptPayload struct {
	model.Receipt
	Store   StorePayload  `json:"store"`
	Items   []ItemPayload `json:"items"`
	Logo    string        `json:"logo,omitempty"`
	LogoURL string        `json:"logoUrl,omitempty"`
}

// StorePayload accepts logoUrl as an alias of logo
type StorePayload struct {
	model.StoreInfo
	LogoURL string `json:"logoUrl,omitempty"`
}

// ItemPayload accepts modifier as a single-entry form of modifiers
type ItemPayload struct {
	model.LineItem
	Modifier string `json:"modifier,omitempty"`
}

// ToReceipt folds alias fields into the versioned document
func (p *ReceiptPayload) ToReceipt() (*model.Receipt, error) {
	r := p.Receipt

	switch {
	case r.Version == 0:
		r.Version = model.ReceiptSchemaVersion
	case r.Version > model.ReceiptSchemaVersion || r.Version < 0:
		return nil, printerr.Newf(printerr.CodeValidation, "unsupported receipt version %d", r.Version)
	}

	r.Store = p.Store.StoreInfo
	if strings.TrimSpace(r.Store.Logo) == "" {
		r.Store.Logo = firstNonBlank(p.Store.LogoURL, p.Logo, p.LogoURL)
	}

	r.Items = make([]model.LineItem, 0, len(p.Items))
	for _, item := range p.Items {
		line := item.LineItem
		if m := strings.TrimSpace(item.Modifier); m != "" && !contains(line.Modifiers, m) {
			line.Modifiers = append([]string{m}, line.Modifiers...)
		}
		r.Items = append(r.Items, line)
	}

	return &r, nil
}

// RawPrintRequest carries a pre-encoded ESC/POS buffer
type RawPrintRequest struct {
	Data string     `json:"data" binding:"required"`
	Role model.Role `json:"role,omitempty"`
}

// Decode returns the raw bytes. Standard and unpadded base64 are accepted.
func (r *RawPrintRequest) Decode() ([]byte, error) {
	data := strings.TrimSpace(r.Data)
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(data, "="))
	}
	if err != nil {
		return nil, printerr.Wrap(printerr.CodeValidation, err, "data must be base64 encoded")
	}
	if len(decoded) == 0 {
		return nil, printerr.New(printerr.CodeValidation, "data is empty")
	}
	return decoded, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
