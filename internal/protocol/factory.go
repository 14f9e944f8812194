// internal/protocol/factory.go
package protocol

import (
	"fmt"

	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/model"
)

// NewDefaultRegistry builds every transport this host supports.
// ble may be nil when Bluetooth is disabled.
func NewDefaultRegistry(cfg *config.Config, logger *zap.Logger, ble *BLETransport) *Registry {
	registry := NewRegistry(
		NewStreamTransport(model.TransportNetwork, networkDialer(&cfg.Print, logger), logger),
		NewStreamTransport(model.TransportSerial, serialDialer(&cfg.Serial, logger), logger),
		NewStreamTransport(model.TransportUSB, usbDialer(&cfg.USB, logger), logger),
		NewSpoolerTransport(NewRawPrinter(&cfg.Print, logger), logger),
	)
	if ble != nil {
		registry.Register(ble)
	}
	return registry
}

func networkDialer(cfg *config.PrintConfig, logger *zap.Logger) Dialer {
	return func(profile *model.PrinterProfile) (Connection, error) {
		if profile.Host == "" {
			return nil, fmt.Errorf("host is required")
		}
		port := profile.Port
		if port == 0 {
			port = model.DefaultNetworkPort
		}
		return NewTCPConnection(&TCPConfig{
			Host:           profile.Host,
			Port:           port,
			ConnectTimeout: cfg.ConnectTimeout,
			WriteTimeout:   cfg.WriteTimeout,
		}, logger), nil
	}
}

func serialDialer(cfg *config.SerialConfig, logger *zap.Logger) Dialer {
	return func(profile *model.PrinterProfile) (Connection, error) {
		if profile.SerialPort == "" {
			return nil, fmt.Errorf("serial port is required")
		}
		baud := profile.BaudRate
		if baud == 0 {
			baud = cfg.BaudRate
		}
		return NewSerialConnection(&SerialConfig{
			Port:     profile.SerialPort,
			BaudRate: baud,
			DataBits: cfg.DataBits,
			StopBits: cfg.StopBits,
			Parity:   cfg.Parity,
			Timeout:  cfg.Timeout,
		}, logger), nil
	}
}

func usbDialer(cfg *config.USBConfig, logger *zap.Logger) Dialer {
	return func(profile *model.PrinterProfile) (Connection, error) {
		if _, err := parseHexID(profile.VendorID); err != nil {
			return nil, fmt.Errorf("invalid vendor ID %q: %w", profile.VendorID, err)
		}
		if _, err := parseHexID(profile.ProductID); err != nil {
			return nil, fmt.Errorf("invalid product ID %q: %w", profile.ProductID, err)
		}
		return NewUSBConnection(&USBConfig{
			VendorID:  profile.VendorID,
			ProductID: profile.ProductID,
			Timeout:   cfg.Timeout,
		}, logger), nil
	}
}
