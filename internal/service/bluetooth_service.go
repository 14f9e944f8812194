// internal/service/bluetooth_service.go
package service

import (
	"context"

	"go.uber.org/zap"

	"receipt-bridge/internal/protocol"
	"receipt-bridge/internal/utils"
	"receipt-bridge/pkg/printerr"
)

// BluetoothService manages the single BLE printer link
type BluetoothService struct {
	transport *protocol.BLETransport
	logger    *utils.ServiceLogger
}

// NewBluetoothService wraps transport, which is nil when Bluetooth is disabled
func NewBluetoothService(transport *protocol.BLETransport, logger *zap.Logger) *BluetoothService {
	return &BluetoothService{
		transport: transport,
		logger:    utils.NewServiceLogger(logger, "bluetooth-service"),
	}
}

// Enabled reports whether a BLE radio is configured
func (bs *BluetoothService) Enabled() bool {
	return bs.transport != nil
}

// Connect binds the BLE transport to a printer
func (bs *BluetoothService) Connect(ctx context.Context, req protocol.BLEConnectRequest) (protocol.BLEStatus, error) {
	if err := bs.ensureEnabled(); err != nil {
		return protocol.BLEStatus{}, err
	}

	status, err := bs.transport.Connect(ctx, req)
	if err != nil {
		bs.logger.Warn("BLE connect failed", zap.String("device_id", req.DeviceID), zap.Error(err))
		return protocol.BLEStatus{}, err
	}
	return status, nil
}

// Disconnect drops the BLE link. Disconnecting with no link is not an error.
func (bs *BluetoothService) Disconnect() error {
	if err := bs.ensureEnabled(); err != nil {
		return err
	}
	return bs.transport.Disconnect()
}

// Status reports the BLE link; a disabled radio reports not connected
func (bs *BluetoothService) Status() protocol.BLEStatus {
	if bs.transport == nil {
		return protocol.BLEStatus{}
	}
	return bs.transport.Status()
}

func (bs *BluetoothService) ensureEnabled() error {
	if bs.transport == nil {
		return printerr.New(printerr.CodeConfiguration, "bluetooth is disabled")
	}
	return nil
}
