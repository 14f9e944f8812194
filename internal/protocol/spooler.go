// internal/protocol/spooler.go
package protocol

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"receipt-bridge/internal/model"
	"receipt-bridge/internal/utils"
	"receipt-bridge/pkg/printerr"
)

// RawPrinter submits a file of raw printer bytes to a named OS print queue
type RawPrinter interface {
	PrintRaw(ctx context.Context, printerName, path string) error
}

// SpoolerTransport prints through the operating system spooler.
// Each job is staged in its own temp file which is removed on every exit path.
type SpoolerTransport struct {
	printer RawPrinter
	tempDir string
	logger  *zap.Logger
}

// NewSpoolerTransport creates a spooler transport backed by printer
func NewSpoolerTransport(printer RawPrinter, logger *zap.Logger) *SpoolerTransport {
	return &SpoolerTransport{printer: printer, logger: logger}
}

func (t *SpoolerTransport) Kind() model.TransportKind {
	return model.TransportSpooler
}

// Send stages data in a temp file and hands it to the OS raw print path
func (t *SpoolerTransport) Send(ctx context.Context, profile *model.PrinterProfile, data []byte) error {
	name := strings.TrimSpace(profile.PrinterName)
	if name == "" {
		return printerr.New(printerr.CodeConfiguration, "no printer selected")
	}

	plog := utils.NewPrinterLogger(t.logger, string(model.TransportSpooler), name)

	path, err := stageJob(t.tempDir, data)
	if err != nil {
		return printerr.Wrap(printerr.CodeInternal, err, "could not stage print job")
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			plog.Warn("Failed to remove spool file", zap.String("path", path), zap.Error(err))
		}
	}()

	start := time.Now()
	err = t.printer.PrintRaw(ctx, name, path)
	plog.LogWrite(len(data), time.Since(start), err)
	if err != nil {
		return printerr.Transport(err, "spooler rejected the job")
	}
	return nil
}

func stageJob(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, "receipt-*.prn")
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close spool file: %w", err)
	}
	return path, nil
}
