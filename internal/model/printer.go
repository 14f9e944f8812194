// internal/model/printer.go
package model

// DiscoveredPrinter is an ephemeral discovery result, never persisted
type DiscoveredPrinter struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	IsDefault bool              `json:"isDefault"`
	Transport TransportKind     `json:"transport"`
	Details   map[string]string `json:"details,omitempty"`
}

// Key is the identity used to merge results from several scanners
func (p *DiscoveredPrinter) Key() string {
	return string(p.Transport) + "|" + p.ID
}
