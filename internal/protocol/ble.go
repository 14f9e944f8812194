// internal/protocol/ble.go
package protocol

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/model"
	"receipt-bridge/internal/utils"
	"receipt-bridge/pkg/printerr"
)

const (
	// DefaultBLEChunkSize is the ATT payload of the minimum 23 byte MTU
	DefaultBLEChunkSize = 20
	maxBLEChunkSize     = 512
)

// GATTPair names a printer service and the characteristic that accepts job bytes
type GATTPair struct {
	Service        string `json:"serviceUuid"`
	Characteristic string `json:"characteristicUuid"`
}

// KnownPrinterServices lists the GATT services thermal printers commonly expose
var KnownPrinterServices = []GATTPair{
	{Service: "000018f0-0000-1000-8000-00805f9b34fb", Characteristic: "00002af1-0000-1000-8000-00805f9b34fb"},
	{Service: "e7810a71-73ae-499d-8c15-faa9aef0c3f2", Characteristic: "bef8d6c9-9c21-4c9e-b632-bd58c1009f9f"},
	{Service: "49535343-fe7d-4ae5-8fa9-9fafd205e455", Characteristic: "49535343-8841-43f4-a8d4-ecbe34729bb3"},
}

// BLEPeripheral is one advertisement seen during a scan
type BLEPeripheral struct {
	ID       string
	Name     string
	RSSI     int
	Services []string
}

// BLELink is an open GATT connection bound to a writable characteristic
type BLELink interface {
	WriteChunk(p []byte) error
	// MTU reports the negotiated ATT MTU when the platform exposes it
	MTU() (uint16, bool)
	Disconnect() error
}

// BLEAdapter is the radio used for scanning and connecting
type BLEAdapter interface {
	Scan(ctx context.Context, onFound func(BLEPeripheral)) error
	Connect(ctx context.Context, deviceID string, candidates []GATTPair) (BLELink, GATTPair, string, error)
}

// BLEConnectRequest selects the peripheral to bind.
// Empty UUIDs mean the allow-list is tried in order.
type BLEConnectRequest struct {
	DeviceID           string `json:"deviceId" binding:"required"`
	ServiceUUID        string `json:"serviceUuid,omitempty"`
	CharacteristicUUID string `json:"characteristicUuid,omitempty"`
}

// BLEStatus describes the current link
type BLEStatus struct {
	Connected          bool       `json:"connected"`
	DeviceID           string     `json:"deviceId,omitempty"`
	DeviceName         string     `json:"deviceName,omitempty"`
	ServiceUUID        string     `json:"serviceUuid,omitempty"`
	CharacteristicUUID string     `json:"characteristicUuid,omitempty"`
	ChunkSize          int        `json:"chunkSize,omitempty"`
	ConnectedAt        *time.Time `json:"connectedAt,omitempty"`
}

// BLETransport writes jobs to the one connected BLE printer in paced chunks
type BLETransport struct {
	adapter BLEAdapter
	cfg     config.BluetoothConfig
	logger  *zap.Logger

	mu     sync.Mutex
	link   BLELink
	status BLEStatus
}

// NewBLETransport creates a BLE transport on adapter
func NewBLETransport(adapter BLEAdapter, cfg config.BluetoothConfig, logger *zap.Logger) *BLETransport {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultBLEChunkSize
	}
	return &BLETransport{
		adapter: adapter,
		cfg:     cfg,
		logger:  logger.With(zap.String("transport", string(model.TransportBLE))),
	}
}

func (t *BLETransport) Kind() model.TransportKind {
	return model.TransportBLE
}

// Adapter exposes the radio for discovery scans
func (t *BLETransport) Adapter() BLEAdapter {
	return t.adapter
}

// Connect binds the transport to a peripheral, replacing any existing link
func (t *BLETransport) Connect(ctx context.Context, req BLEConnectRequest) (BLEStatus, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return BLEStatus{}, printerr.New(printerr.CodeValidation, "deviceId is required")
	}

	candidates := KnownPrinterServices
	if req.ServiceUUID != "" || req.CharacteristicUUID != "" {
		if req.ServiceUUID == "" || req.CharacteristicUUID == "" {
			return BLEStatus{}, printerr.New(printerr.CodeValidation, "serviceUuid and characteristicUuid must be given together")
		}
		candidates = []GATTPair{{Service: strings.ToLower(req.ServiceUUID), Characteristic: strings.ToLower(req.CharacteristicUUID)}}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.disconnectLocked()

	if t.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.ConnectTimeout)
		defer cancel()
	}

	plog := utils.NewPrinterLogger(t.logger, string(model.TransportBLE), deviceID)

	link, pair, name, err := t.adapter.Connect(ctx, deviceID, candidates)
	plog.LogConnection("connect", err)
	if err != nil {
		return BLEStatus{}, printerr.Transport(err, "could not connect to BLE printer")
	}

	now := time.Now().UTC()
	t.link = link
	t.status = BLEStatus{
		Connected:          true,
		DeviceID:           deviceID,
		DeviceName:         name,
		ServiceUUID:        pair.Service,
		CharacteristicUUID: pair.Characteristic,
		ConnectedAt:        &now,
	}
	t.status.ChunkSize = t.chunkSizeLocked()

	plog.Info("BLE printer connected",
		zap.String("service_uuid", pair.Service),
		zap.Int("chunk_size", t.status.ChunkSize),
	)
	return t.status, nil
}

// Disconnect drops the current link, if any
func (t *BLETransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disconnectLocked()
}

func (t *BLETransport) disconnectLocked() error {
	if t.link == nil {
		return nil
	}

	err := t.link.Disconnect()
	utils.NewPrinterLogger(t.logger, string(model.TransportBLE), t.status.DeviceID).LogConnection("disconnect", err)

	t.link = nil
	t.status = BLEStatus{}
	if err != nil {
		return printerr.Transport(err, "BLE disconnect failed")
	}
	return nil
}

// Status reports the connected device
func (t *BLETransport) Status() BLEStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Send writes data in chunks to the connected characteristic.
// The profile must name the device bound by Connect.
func (t *BLETransport) Send(ctx context.Context, profile *model.PrinterProfile, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.link == nil || !strings.EqualFold(t.status.DeviceID, strings.TrimSpace(profile.DeviceID)) {
		return printerr.New(printerr.CodeTransport, "BLE printer not connected")
	}

	plog := utils.NewPrinterLogger(t.logger, string(model.TransportBLE), t.status.DeviceID)
	chunk := t.chunkSizeLocked()

	var limiter *rate.Limiter
	if t.cfg.ChunkDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(t.cfg.ChunkDelay), 1)
	}

	start := time.Now()
	err := writeChunks(ctx, t.link, data, chunk, limiter)
	plog.LogWrite(len(data), time.Since(start), err)
	if err != nil {
		return printerr.Transport(err, "BLE write failed")
	}
	return nil
}

func (t *BLETransport) chunkSizeLocked() int {
	if t.cfg.NegotiateMTU && t.link != nil {
		if mtu, ok := t.link.MTU(); ok && mtu > 3 {
			return min(int(mtu)-3, maxBLEChunkSize)
		}
	}
	return t.cfg.ChunkSize
}

func writeChunks(ctx context.Context, link BLELink, data []byte, size int, limiter *rate.Limiter) error {
	for off := 0; off < len(data); off += size {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		end := min(off+size, len(data))
		if err := link.WriteChunk(data[off:end]); err != nil {
			return err
		}
	}
	return nil
}
