package tcp

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
)

func TestExpandTargets(t *testing.T) {
	addrs, err := expandTargets([]string{"10.0.0.8", "printer.local:9101", "192.168.5.0/30", "10.0.0.8"}, 9100)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"10.0.0.8:9100",
		"printer.local:9101",
		"192.168.5.0:9100",
		"192.168.5.1:9100",
		"192.168.5.2:9100",
		"192.168.5.3:9100",
	}, addrs)

	_, err = expandTargets([]string{"10.0.0.0/8"}, 9100)
	assert.Error(t, err)

	_, err = expandTargets([]string{"10.0.0.0/33"}, 9100)
	assert.Error(t, err)
}

func TestScanFindsListeningPrinter(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	closed, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	closedAddr := closed.Addr().String()
	closed.Close()

	s := NewScanner(Config{
		Enabled:      true,
		Targets:      []string{ln.Addr().String(), closedAddr},
		ProbeTimeout: 300 * time.Millisecond,
	}, zap.NewNop())
	require.True(t, s.IsAvailable())

	printers, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, printers, 1)
	assert.Equal(t, ln.Addr().String(), printers[0].ID)
	assert.Equal(t, "127.0.0.1", printers[0].Name)
	assert.Equal(t, model.TransportNetwork, printers[0].Transport)
}

func TestScannerDisabledByDefault(t *testing.T) {
	s := NewScanner(Config{Targets: []string{"10.0.0.8"}}, zap.NewNop())
	assert.False(t, s.IsAvailable())
	assert.Equal(t, "network", s.GetScannerType())
}
