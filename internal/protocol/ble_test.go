package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/model"
	"receipt-bridge/pkg/printerr"
)

type fakeLink struct {
	chunks       [][]byte
	mtu          uint16
	failAt       int
	disconnected bool
}

func (l *fakeLink) WriteChunk(p []byte) error {
	if l.failAt > 0 && len(l.chunks)+1 == l.failAt {
		return errors.New("gatt write failed")
	}
	l.chunks = append(l.chunks, append([]byte(nil), p...))
	return nil
}

func (l *fakeLink) MTU() (uint16, bool) { return l.mtu, l.mtu > 0 }

func (l *fakeLink) Disconnect() error {
	l.disconnected = true
	return nil
}

type fakeAdapter struct {
	link       *fakeLink
	err        error
	deviceID   string
	candidates []GATTPair
	seen       []BLEPeripheral
}

func (a *fakeAdapter) Scan(_ context.Context, onFound func(BLEPeripheral)) error {
	for _, p := range a.seen {
		onFound(p)
	}
	return a.err
}

func (a *fakeAdapter) Connect(_ context.Context, deviceID string, candidates []GATTPair) (BLELink, GATTPair, string, error) {
	a.deviceID, a.candidates = deviceID, candidates
	if a.err != nil {
		return nil, GATTPair{}, "", a.err
	}
	return a.link, candidates[0], "MTP-II", nil
}

func bleConfig() config.BluetoothConfig {
	return config.BluetoothConfig{ChunkSize: 20, ChunkDelay: time.Millisecond, ConnectTimeout: time.Second, NegotiateMTU: true}
}

func bleProfile(id string) *model.PrinterProfile {
	return &model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportBLE, DeviceID: id}
}

func sequence(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func TestBLESendSplitsIntoOrderedChunks(t *testing.T) {
	link := &fakeLink{}
	transport := NewBLETransport(&fakeAdapter{link: link}, bleConfig(), zap.NewNop())

	_, err := transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)

	data := sequence(100)
	require.NoError(t, transport.Send(context.Background(), bleProfile("aa:bb:cc:dd:ee:ff"), data))

	require.Len(t, link.chunks, 5)
	var joined []byte
	for _, c := range link.chunks {
		assert.LessOrEqual(t, len(c), 20)
		joined = append(joined, c...)
	}
	assert.Equal(t, data, joined)
}

func TestBLESendUsesNegotiatedMTU(t *testing.T) {
	link := &fakeLink{mtu: 185}
	transport := NewBLETransport(&fakeAdapter{link: link}, bleConfig(), zap.NewNop())

	status, err := transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, 182, status.ChunkSize)

	require.NoError(t, transport.Send(context.Background(), bleProfile("dev-1"), sequence(400)))
	require.Len(t, link.chunks, 3)
	assert.Len(t, link.chunks[0], 182)
	assert.Len(t, link.chunks[2], 36)
}

func TestBLESendKeepsDefaultWhenNegotiationDisabled(t *testing.T) {
	cfg := bleConfig()
	cfg.NegotiateMTU = false
	link := &fakeLink{mtu: 247}
	transport := NewBLETransport(&fakeAdapter{link: link}, cfg, zap.NewNop())

	_, err := transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "dev-1"})
	require.NoError(t, err)
	require.NoError(t, transport.Send(context.Background(), bleProfile("dev-1"), sequence(41)))

	assert.Len(t, link.chunks, 3)
}

func TestBLESendRequiresConnection(t *testing.T) {
	transport := NewBLETransport(&fakeAdapter{link: &fakeLink{}}, bleConfig(), zap.NewNop())

	err := transport.Send(context.Background(), bleProfile("dev-1"), []byte("x"))
	require.Error(t, err)
	assert.Equal(t, printerr.CodeTransport, printerr.CodeOf(err))
	assert.Contains(t, err.Error(), "BLE printer not connected")
}

func TestBLESendRejectsOtherDevice(t *testing.T) {
	transport := NewBLETransport(&fakeAdapter{link: &fakeLink{}}, bleConfig(), zap.NewNop())
	_, err := transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "dev-1"})
	require.NoError(t, err)

	err = transport.Send(context.Background(), bleProfile("dev-2"), []byte("x"))
	assert.Equal(t, printerr.CodeTransport, printerr.CodeOf(err))
}

func TestBLESendStopsAtFailedChunk(t *testing.T) {
	link := &fakeLink{failAt: 3}
	transport := NewBLETransport(&fakeAdapter{link: link}, bleConfig(), zap.NewNop())
	_, err := transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "dev-1"})
	require.NoError(t, err)

	err = transport.Send(context.Background(), bleProfile("dev-1"), sequence(100))
	require.Error(t, err)
	assert.Len(t, link.chunks, 2)
}

func TestBLEConnectCandidates(t *testing.T) {
	adapter := &fakeAdapter{link: &fakeLink{}}
	transport := NewBLETransport(adapter, bleConfig(), zap.NewNop())

	_, err := transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "dev-1"})
	require.NoError(t, err)
	assert.Equal(t, KnownPrinterServices, adapter.candidates)

	status, err := transport.Connect(context.Background(), BLEConnectRequest{
		DeviceID:           "dev-1",
		ServiceUUID:        "0000FF00-0000-1000-8000-00805F9B34FB",
		CharacteristicUUID: "0000FF02-0000-1000-8000-00805F9B34FB",
	})
	require.NoError(t, err)
	assert.Equal(t, []GATTPair{{
		Service:        "0000ff00-0000-1000-8000-00805f9b34fb",
		Characteristic: "0000ff02-0000-1000-8000-00805f9b34fb",
	}}, adapter.candidates)
	assert.Equal(t, "MTP-II", status.DeviceName)
	assert.True(t, status.Connected)

	_, err = transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "dev-1", ServiceUUID: "abc"})
	assert.Equal(t, printerr.CodeValidation, printerr.CodeOf(err))

	_, err = transport.Connect(context.Background(), BLEConnectRequest{})
	assert.Equal(t, printerr.CodeValidation, printerr.CodeOf(err))
}

func TestBLEConnectFailureLeavesDisconnected(t *testing.T) {
	adapter := &fakeAdapter{err: errors.New("device not found")}
	transport := NewBLETransport(adapter, bleConfig(), zap.NewNop())

	_, err := transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "dev-1"})
	assert.Equal(t, printerr.CodeTransport, printerr.CodeOf(err))
	assert.False(t, transport.Status().Connected)
}

func TestBLEDisconnectClearsState(t *testing.T) {
	link := &fakeLink{}
	transport := NewBLETransport(&fakeAdapter{link: link}, bleConfig(), zap.NewNop())
	_, err := transport.Connect(context.Background(), BLEConnectRequest{DeviceID: "dev-1"})
	require.NoError(t, err)

	require.NoError(t, transport.Disconnect())
	assert.True(t, link.disconnected)
	assert.Equal(t, BLEStatus{}, transport.Status())

	require.NoError(t, transport.Disconnect())
	assert.Error(t, transport.Send(context.Background(), bleProfile("dev-1"), []byte("x")))
}

func TestWriteChunksHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	link := &fakeLink{}
	err := writeChunks(ctx, link, sequence(50), 20, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, link.chunks)
}
