package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/discovery"
	"receipt-bridge/internal/model"
	"receipt-bridge/pkg/printerr"
)

type fixedScanner struct {
	kind     model.TransportKind
	printers []model.DiscoveredPrinter
}

func (s *fixedScanner) Scan(context.Context) ([]model.DiscoveredPrinter, error) {
	return s.printers, nil
}
func (s *fixedScanner) GetScannerType() string { return string(s.kind) }
func (s *fixedScanner) IsAvailable() bool      { return true }

func testDiscoveryService() *DiscoveryService {
	manager := discovery.NewScannerManager(time.Second, nil, zap.NewNop())
	manager.RegisterScanner(&fixedScanner{kind: model.TransportSpooler, printers: []model.DiscoveredPrinter{
		{ID: "POS-80", Name: "POS-80", Transport: model.TransportSpooler, IsDefault: true},
	}})
	manager.RegisterScanner(&fixedScanner{kind: model.TransportBLE, printers: []model.DiscoveredPrinter{
		{ID: "AA:BB:CC:DD:EE:FF", Name: "MTP-II", Transport: model.TransportBLE},
	}})
	return NewDiscoveryService(manager, zap.NewNop())
}

func TestListPrintersAll(t *testing.T) {
	svc := testDiscoveryService()

	for _, scannerType := range []string{"", "all", " ALL "} {
		printers, err := svc.ListPrinters(context.Background(), scannerType)
		require.NoError(t, err)
		require.Len(t, printers, 2)
		assert.Equal(t, "POS-80", printers[0].ID)
	}
}

func TestListPrintersByType(t *testing.T) {
	svc := testDiscoveryService()

	printers, err := svc.ListPrinters(context.Background(), "ble")
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.Equal(t, model.TransportBLE, printers[0].Transport)
}

func TestListPrintersUnknownType(t *testing.T) {
	svc := testDiscoveryService()

	_, err := svc.ListPrinters(context.Background(), "parallel")
	require.Error(t, err)
	assert.Equal(t, printerr.CodeValidation, printerr.CodeOf(err))
}

func TestNewScannerManagerRegistersEveryScanner(t *testing.T) {
	cfg := &config.Config{
		Bluetooth: config.BluetoothConfig{ScanTimeout: time.Second},
		Discovery: config.DiscoveryConfig{Timeout: time.Second},
	}
	manager := NewScannerManager(cfg, nil, nil, zap.NewNop())

	available := manager.GetAvailableScanners()
	assert.NotContains(t, available, string(model.TransportBLE))
	assert.NotContains(t, available, string(model.TransportNetwork))
}
