package protocol

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"tinygo.org/x/bluetooth"
)

// TinyGoAdapter drives the host Bluetooth radio
type TinyGoAdapter struct {
	adapter *bluetooth.Adapter

	enableOnce sync.Once
	enableErr  error

	// the radio runs one scan at a time
	scanMu sync.Mutex
}

// NewTinyGoAdapter wraps the default host adapter
func NewTinyGoAdapter() *TinyGoAdapter {
	return &TinyGoAdapter{adapter: bluetooth.DefaultAdapter}
}

func (a *TinyGoAdapter) enable() error {
	a.enableOnce.Do(func() {
		if err := a.adapter.Enable(); err != nil {
			a.enableErr = fmt.Errorf("enable bluetooth adapter: %w", err)
		}
	})
	return a.enableErr
}

// Scan reports advertisements until ctx ends. Expiry of ctx is a normal end.
func (a *TinyGoAdapter) Scan(ctx context.Context, onFound func(BLEPeripheral)) error {
	_, err := a.scan(ctx, func(r bluetooth.ScanResult) bool {
		onFound(peripheralFrom(r))
		return false
	})
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// scan runs until match returns true or ctx ends
func (a *TinyGoAdapter) scan(ctx context.Context, match func(bluetooth.ScanResult) bool) (bluetooth.ScanResult, error) {
	if err := a.enable(); err != nil {
		return bluetooth.ScanResult{}, err
	}

	a.scanMu.Lock()
	defer a.scanMu.Unlock()

	var (
		found   bluetooth.ScanResult
		matched bool
		once    sync.Once
	)
	stop := func() { once.Do(func() { _ = a.adapter.StopScan() }) }

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()

	err := a.adapter.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		if matched || !match(r) {
			return
		}
		found, matched = r, true
		stop()
	})
	if err != nil {
		return bluetooth.ScanResult{}, fmt.Errorf("bluetooth scan: %w", err)
	}
	if !matched {
		return bluetooth.ScanResult{}, ctx.Err()
	}
	return found, nil
}

// Connect scans for deviceID, connects and binds the first matching service
func (a *TinyGoAdapter) Connect(ctx context.Context, deviceID string, candidates []GATTPair) (BLELink, GATTPair, string, error) {
	result, err := a.scan(ctx, func(r bluetooth.ScanResult) bool {
		return strings.EqualFold(r.Address.String(), deviceID)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, GATTPair{}, "", fmt.Errorf("device %s not found: %w", deviceID, err)
		}
		return nil, GATTPair{}, "", err
	}

	device, err := a.adapter.Connect(result.Address, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, GATTPair{}, "", fmt.Errorf("connect %s: %w", deviceID, err)
	}

	for _, pair := range candidates {
		char, err := findCharacteristic(device, pair)
		if err != nil {
			continue
		}
		return &tinyGoLink{device: device, char: char}, pair, result.LocalName(), nil
	}

	_ = device.Disconnect()
	return nil, GATTPair{}, "", fmt.Errorf("device %s exposes no known printer service", deviceID)
}

func findCharacteristic(device bluetooth.Device, pair GATTPair) (bluetooth.DeviceCharacteristic, error) {
	svcUUID, err := bluetooth.ParseUUID(pair.Service)
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, err
	}
	charUUID, err := bluetooth.ParseUUID(pair.Characteristic)
	if err != nil {
		return bluetooth.DeviceCharacteristic{}, err
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{svcUUID})
	if err != nil || len(services) == 0 {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("service %s not found", pair.Service)
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{charUUID})
	if err != nil || len(chars) == 0 {
		return bluetooth.DeviceCharacteristic{}, fmt.Errorf("characteristic %s not found", pair.Characteristic)
	}
	return chars[0], nil
}

func peripheralFrom(r bluetooth.ScanResult) BLEPeripheral {
	p := BLEPeripheral{
		ID:   r.Address.String(),
		Name: r.LocalName(),
		RSSI: int(r.RSSI),
	}
	for _, pair := range KnownPrinterServices {
		if uuid, err := bluetooth.ParseUUID(pair.Service); err == nil && r.HasServiceUUID(uuid) {
			p.Services = append(p.Services, pair.Service)
		}
	}
	return p
}

type tinyGoLink struct {
	device bluetooth.Device
	char   bluetooth.DeviceCharacteristic
}

func (l *tinyGoLink) WriteChunk(p []byte) error {
	_, err := l.char.WriteWithoutResponse(p)
	return err
}

func (l *tinyGoLink) MTU() (uint16, bool) {
	m, ok := any(&l.char).(interface{ GetMTU() (uint16, error) })
	if !ok {
		return 0, false
	}
	mtu, err := m.GetMTU()
	return mtu, err == nil && mtu > 0
}

func (l *tinyGoLink) Disconnect() error {
	return l.device.Disconnect()
}
