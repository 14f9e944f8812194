// 📁 internal/discovery/ble/scanner.go - BLE printer scanner
package ble

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"receipt-bridge/internal/model"
	"receipt-bridge/internal/protocol"
)

// Scanner runs a time-boxed scan for peripherals advertising a known printer service
type Scanner struct {
	adapter protocol.BLEAdapter
	window  time.Duration
	enabled bool
	logger  *zap.Logger
}

// NewScanner creates a BLE scanner. adapter may be nil when Bluetooth is disabled.
func NewScanner(adapter protocol.BLEAdapter, window time.Duration, logger *zap.Logger) *Scanner {
	return &Scanner{
		adapter: adapter,
		window:  window,
		enabled: adapter != nil,
		logger:  logger.With(zap.String("scanner", "ble")),
	}
}

func (s *Scanner) GetScannerType() string {
	return string(model.TransportBLE)
}

func (s *Scanner) IsAvailable() bool {
	return s.enabled
}

// Scan collects matching peripherals until the scan window closes
func (s *Scanner) Scan(ctx context.Context) ([]model.DiscoveredPrinter, error) {
	if s.window > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.window)
		defer cancel()
	}

	var (
		mu    sync.Mutex
		found = make(map[string]model.DiscoveredPrinter)
		order []string
	)

	err := s.adapter.Scan(ctx, func(p protocol.BLEPeripheral) {
		if len(p.Services) == 0 || p.ID == "" {
			return
		}

		mu.Lock()
		defer mu.Unlock()

		key := strings.ToUpper(p.ID)
		existing, seen := found[key]
		if !seen {
			order = append(order, key)
		}
		// names often arrive in a later scan response
		if seen && p.Name == "" {
			p.Name = existing.Name
		}
		found[key] = printerFrom(p)
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	printers := make([]model.DiscoveredPrinter, 0, len(order))
	for _, key := range order {
		printers = append(printers, found[key])
	}
	s.logger.Debug("BLE scan window closed", zap.Int("printers_found", len(printers)))
	return printers, nil
}

func printerFrom(p protocol.BLEPeripheral) model.DiscoveredPrinter {
	name := p.Name
	if name == "" {
		name = p.ID
	}
	return model.DiscoveredPrinter{
		ID:        p.ID,
		Name:      name,
		Transport: model.TransportBLE,
		Details: map[string]string{
			"rssi":        strconv.Itoa(p.RSSI),
			"serviceUuid": p.Services[0],
		},
	}
}
