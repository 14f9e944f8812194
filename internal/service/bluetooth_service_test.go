package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/protocol"
	"receipt-bridge/pkg/printerr"
)

type nopLink struct{ closed bool }

func (l *nopLink) WriteChunk([]byte) error { return nil }
func (l *nopLink) MTU() (uint16, bool)     { return 0, false }
func (l *nopLink) Disconnect() error {
	l.closed = true
	return nil
}

type singleAdapter struct{ link *nopLink }

func (a *singleAdapter) Scan(context.Context, func(protocol.BLEPeripheral)) error { return nil }

func (a *singleAdapter) Connect(_ context.Context, _ string, candidates []protocol.GATTPair) (protocol.BLELink, protocol.GATTPair, string, error) {
	return a.link, candidates[0], "MTP-II", nil
}

func TestBluetoothServiceDisabled(t *testing.T) {
	svc := NewBluetoothService(nil, zap.NewNop())

	assert.False(t, svc.Enabled())
	assert.False(t, svc.Status().Connected)

	_, err := svc.Connect(context.Background(), protocol.BLEConnectRequest{DeviceID: "AA"})
	assert.Equal(t, printerr.CodeConfiguration, printerr.CodeOf(err))
	assert.Equal(t, printerr.CodeConfiguration, printerr.CodeOf(svc.Disconnect()))
}

func TestBluetoothServiceConnectLifecycle(t *testing.T) {
	link := &nopLink{}
	transport := protocol.NewBLETransport(&singleAdapter{link: link}, config.BluetoothConfig{ChunkSize: 20}, zap.NewNop())
	svc := NewBluetoothService(transport, zap.NewNop())

	status, err := svc.Connect(context.Background(), protocol.BLEConnectRequest{DeviceID: "AA:BB"})
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, "MTP-II", status.DeviceName)
	assert.Equal(t, protocol.DefaultBLEChunkSize, status.ChunkSize)
	assert.Equal(t, status, svc.Status())

	require.NoError(t, svc.Disconnect())
	assert.True(t, link.closed)
	assert.False(t, svc.Status().Connected)
	require.NoError(t, svc.Disconnect())
}
