// internal/service/discovery_service.go
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/discovery"
	bleScanner "receipt-bridge/internal/discovery/ble"
	serialScanner "receipt-bridge/internal/discovery/serial"
	"receipt-bridge/internal/discovery/spooler"
	"receipt-bridge/internal/discovery/tcp"
	usbScanner "receipt-bridge/internal/discovery/usb"
	"receipt-bridge/internal/model"
	"receipt-bridge/internal/protocol"
	"receipt-bridge/internal/utils"
	"receipt-bridge/pkg/printerr"
)

// ScanAllTypes requests every available scanner
const ScanAllTypes = "all"

// DiscoveryService lists printers. It never touches stored profiles.
type DiscoveryService struct {
	scannerManager *discovery.ScannerManager
	logger         *utils.ServiceLogger
}

// NewDiscoveryService creates a discovery service over manager
func NewDiscoveryService(manager *discovery.ScannerManager, logger *zap.Logger) *DiscoveryService {
	ds := &DiscoveryService{
		scannerManager: manager,
		logger:         utils.NewServiceLogger(logger, "discovery-service"),
	}

	ds.logger.Info("Discovery scanners initialized",
		zap.Strings("available_scanners", manager.GetAvailableScanners()),
	)
	return ds
}

// NewScannerManager registers every scanner. adapter may be nil when Bluetooth is off.
func NewScannerManager(cfg *config.Config, adapter protocol.BLEAdapter, observer discovery.ScanObserver, logger *zap.Logger) *discovery.ScannerManager {
	manager := discovery.NewScannerManager(cfg.Discovery.Timeout, observer, logger)

	manager.RegisterScanner(spooler.NewScanner(logger))
	manager.RegisterScanner(bleScanner.NewScanner(adapter, cfg.Bluetooth.ScanTimeout, logger))
	manager.RegisterScanner(serialScanner.NewScanner(logger))
	manager.RegisterScanner(usbScanner.NewScanner(logger))
	manager.RegisterScanner(tcp.NewScanner(tcp.Config{
		Enabled:      cfg.Discovery.NetworkScan,
		Targets:      cfg.Discovery.NetworkTargets,
		Port:         cfg.Discovery.NetworkPort,
		ProbeTimeout: cfg.Discovery.ProbeTimeout,
		Concurrency:  cfg.Discovery.Concurrency,
	}, logger))

	return manager
}

// ListPrinters scans with scannerType, or with all scanners when it is empty or "all"
func (ds *DiscoveryService) ListPrinters(ctx context.Context, scannerType string) ([]model.DiscoveredPrinter, error) {
	scannerType = strings.ToLower(strings.TrimSpace(scannerType))

	var (
		printers []model.DiscoveredPrinter
		err      error
	)
	if scannerType == "" || scannerType == ScanAllTypes {
		printers, err = ds.scannerManager.ScanAll(ctx)
	} else {
		if !model.TransportKind(scannerType).Valid() {
			return nil, printerr.Newf(printerr.CodeValidation, "unknown printer type %q", scannerType).
				WithDetails(map[string]interface{}{"available": ds.scannerManager.GetAvailableScanners()})
		}
		printers, err = ds.scannerManager.ScanByType(ctx, scannerType)
	}
	if err != nil {
		return nil, printerr.Transport(err, "printer discovery failed")
	}

	ds.logger.Debug("Printers discovered",
		zap.String("type", scannerType),
		zap.Int("count", len(printers)),
	)
	return printers, nil
}

// Scanners returns the scanner types usable on this host
func (ds *DiscoveryService) Scanners() []string {
	return ds.scannerManager.GetAvailableScanners()
}
