package protocol

import (
	"context"
	"time"

	"go.uber.org/zap"

	"receipt-bridge/internal/model"
	"receipt-bridge/internal/utils"
	"receipt-bridge/pkg/printerr"
)

// Dialer builds an unopened connection for a profile
type Dialer func(profile *model.PrinterProfile) (Connection, error)

// StreamTransport sends a job over a fresh connection: open, one write, close
type StreamTransport struct {
	kind   model.TransportKind
	dial   Dialer
	logger *zap.Logger
}

// NewStreamTransport creates a transport of kind backed by dial
func NewStreamTransport(kind model.TransportKind, dial Dialer, logger *zap.Logger) *StreamTransport {
	return &StreamTransport{kind: kind, dial: dial, logger: logger}
}

func (t *StreamTransport) Kind() model.TransportKind {
	return t.kind
}

// Send opens a connection to the profile target, writes data and closes
func (t *StreamTransport) Send(ctx context.Context, profile *model.PrinterProfile, data []byte) error {
	plog := utils.NewPrinterLogger(t.logger, string(t.kind), profile.Address())

	conn, err := t.dial(profile)
	if err != nil {
		return printerr.Wrap(printerr.CodeConfiguration, err, "invalid printer address")
	}

	if err := conn.Open(ctx); err != nil {
		plog.LogConnection("open", err)
		return printerr.Transport(err, "could not connect to printer")
	}
	defer func() {
		if err := conn.Close(); err != nil {
			plog.LogConnection("close", err)
		}
	}()

	start := time.Now()
	err = conn.Write(ctx, data)
	plog.LogWrite(len(data), time.Since(start), err)
	if err != nil {
		return printerr.Transport(err, "printer write failed")
	}
	return nil
}
