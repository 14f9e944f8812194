// 📁 internal/discovery/usb/scanner.go - USB printer scanner
package usb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
)

// Scanner enumerates USB printers from device descriptors without opening them
type Scanner struct {
	logger       *zap.Logger
	knownDevices *DeviceDatabase
	enumerate    func(match func(*gousb.DeviceDesc) bool) ([]*gousb.DeviceDesc, error)
}

// NewScanner creates a new USB scanner
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{
		logger:       logger.With(zap.String("scanner", "usb")),
		knownDevices: NewDeviceDatabase(),
		enumerate:    enumerateDescriptors,
	}
}

// GetScannerType returns scanner type identifier
func (s *Scanner) GetScannerType() string {
	return string(model.TransportUSB)
}

// IsAvailable checks if USB scanning is available on this system
func (s *Scanner) IsAvailable() bool {
	switch runtime.GOOS {
	case "windows", "linux", "darwin":
		return true
	default:
		return false
	}
}

// Scan performs USB printer discovery
func (s *Scanner) Scan(ctx context.Context) ([]model.DiscoveredPrinter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	descs, err := s.enumerate(s.shouldExamineDevice)
	if err != nil {
		return nil, fmt.Errorf("device enumeration failed: %w", err)
	}

	printers := make([]model.DiscoveredPrinter, 0, len(descs))
	for _, desc := range descs {
		printers = append(printers, s.printerFrom(desc))
	}

	s.logger.Debug("USB scan completed", zap.Int("printers_found", len(printers)))
	return printers, nil
}

// shouldExamineDevice accepts known receipt printer vendors and any printer class device
func (s *Scanner) shouldExamineDevice(desc *gousb.DeviceDesc) bool {
	if s.knownDevices.IsKnownVendor(desc.Vendor) {
		return true
	}
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	// most printers declare their class per interface
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

func (s *Scanner) printerFrom(desc *gousb.DeviceDesc) model.DiscoveredPrinter {
	vendorID := fmt.Sprintf("0x%04X", uint16(desc.Vendor))
	productID := fmt.Sprintf("0x%04X", uint16(desc.Product))

	return model.DiscoveredPrinter{
		ID:        fmt.Sprintf("%04x:%04x@%d-%d", uint16(desc.Vendor), uint16(desc.Product), desc.Bus, desc.Address),
		Name:      s.knownDevices.DisplayName(desc.Vendor, desc.Product),
		Transport: model.TransportUSB,
		Details: map[string]string{
			"vendorId":  vendorID,
			"productId": productID,
			"location":  fmt.Sprintf("USB-Bus%d-Port%d", desc.Bus, desc.Address),
		},
	}
}

// enumerateDescriptors collects matching descriptors. The filter never opens a device,
// so no permissions beyond enumeration are needed.
func enumerateDescriptors(match func(*gousb.DeviceDesc) bool) (descs []*gousb.DeviceDesc, err error) {
	defer func() {
		// gousb panics when libusb cannot initialise
		if r := recover(); r != nil {
			err = fmt.Errorf("libusb unavailable: %v", r)
		}
	}()

	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	_, err = usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if match(desc) {
			descs = append(descs, desc)
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}
	return descs, nil
}
