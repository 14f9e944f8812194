//go:build !windows

package protocol

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/phin1x/go-ipp"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
)

const cupsRawMimeType = "application/vnd.cups-raw"

// maxPendingIPP bounds IPP submissions still running after their job gave up.
// go-ipp requests carry no context, so a hung cupsd keeps them alive.
const maxPendingIPP = 2

var errIPPBusy = errors.New("ipp: earlier submissions still pending")

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

type ippSubmitter func(doc ipp.Document, printer string) error

// cupsPrinter submits raw jobs to CUPS over IPP and falls back to lp
type cupsPrinter struct {
	submit  ippSubmitter
	run     commandRunner
	pending chan struct{}
	logger  *zap.Logger
}

// NewRawPrinter returns the CUPS backed raw printer
func NewRawPrinter(cfg *config.PrintConfig, logger *zap.Logger) RawPrinter {
	client := ipp.NewCUPSClient(cfg.CupsHost, cfg.CupsPort, cfg.CupsUser, "", false)
	return newCupsPrinter(func(doc ipp.Document, printer string) error {
		_, err := client.PrintJob(doc, printer, map[string]interface{}{})
		return err
	}, runCommand, logger)
}

func newCupsPrinter(submit ippSubmitter, run commandRunner, logger *zap.Logger) *cupsPrinter {
	return &cupsPrinter{
		submit:  submit,
		run:     run,
		pending: make(chan struct{}, maxPendingIPP),
		logger:  logger,
	}
}

func (p *cupsPrinter) PrintRaw(ctx context.Context, printerName, path string) error {
	ippErr := p.printIPP(ctx, printerName, path)
	if ippErr == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	p.logger.Warn("IPP submission failed, falling back to lp",
		zap.String("printer", printerName),
		zap.Error(ippErr),
	)

	out, err := p.run(ctx, "lp", "-d", printerName, "-o", "raw", path)
	if err != nil {
		return errors.Join(ippErr, fmt.Errorf("lp: %w: %s", err, strings.TrimSpace(string(out))))
	}
	return nil
}

func (p *cupsPrinter) printIPP(ctx context.Context, printerName, path string) error {
	select {
	case p.pending <- struct{}{}:
	default:
		return errIPPBusy
	}
	release := func() { <-p.pending }

	f, err := os.Open(path)
	if err != nil {
		release()
		return err
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		release()
		return err
	}

	doc := ipp.Document{
		Document: f,
		Size:     int(st.Size()),
		Name:     filepath.Base(path),
		MimeType: cupsRawMimeType,
	}

	// the submission owns f; an unlinked spool file stays readable while open
	done := make(chan error, 1)
	go func() {
		defer release()
		defer f.Close()
		done <- p.submit(doc, printerName)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("ipp: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
