package serial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
)

func TestScanListsPorts(t *testing.T) {
	s := NewScanner(zap.NewNop())
	s.list = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0416", PID: "5011", SerialNumber: "A1", Product: "POS58 Printer"},
			{Name: "/dev/ttyS0"},
			{Name: ""},
		}, nil
	}

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, printers, 2)

	assert.Equal(t, model.DiscoveredPrinter{
		ID:        "/dev/ttyUSB0",
		Name:      "POS58 Printer (/dev/ttyUSB0)",
		Transport: model.TransportSerial,
		Details:   map[string]string{"vendorId": "0x0416", "productId": "0x5011", "serialNumber": "A1"},
	}, printers[0])
	assert.Equal(t, "/dev/ttyS0", printers[1].Name)
	assert.Empty(t, printers[1].Details)
}

func TestScanPropagatesEnumeratorError(t *testing.T) {
	s := NewScanner(zap.NewNop())
	s.list = func() ([]*enumerator.PortDetails, error) { return nil, errors.New("udev unavailable") }

	_, err := s.Scan(context.Background())
	assert.Error(t, err)
}
