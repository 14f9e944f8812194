// 📁 internal/discovery/serial/scanner.go - Serial port scanner
package serial

import (
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
)

// Scanner lists serial ports that may host an ESC/POS printer
type Scanner struct {
	list   func() ([]*enumerator.PortDetails, error)
	logger *zap.Logger
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{
		list:   enumerator.GetDetailedPortsList,
		logger: logger.With(zap.String("scanner", "serial")),
	}
}

func (s *Scanner) GetScannerType() string {
	return string(model.TransportSerial)
}

// IsAvailable is always true, every platform exposes a port list
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan lists serial ports. Ports are not probed: opening one can reset attached hardware.
func (s *Scanner) Scan(ctx context.Context) ([]model.DiscoveredPrinter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ports, err := s.list()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	printers := make([]model.DiscoveredPrinter, 0, len(ports))
	for _, port := range ports {
		if port == nil || port.Name == "" {
			continue
		}
		printers = append(printers, printerFrom(port))
	}

	s.logger.Debug("Serial scan completed", zap.Int("ports_found", len(printers)))
	return printers, nil
}

func printerFrom(port *enumerator.PortDetails) model.DiscoveredPrinter {
	name := port.Name
	if product := strings.TrimSpace(port.Product); product != "" {
		name = fmt.Sprintf("%s (%s)", product, port.Name)
	}

	details := map[string]string{}
	if port.IsUSB {
		details["vendorId"] = "0x" + strings.ToUpper(port.VID)
		details["productId"] = "0x" + strings.ToUpper(port.PID)
		if port.SerialNumber != "" {
			details["serialNumber"] = port.SerialNumber
		}
	}

	return model.DiscoveredPrinter{
		ID:        port.Name,
		Name:      name,
		Transport: model.TransportSerial,
		Details:   details,
	}
}
