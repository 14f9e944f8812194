//go:build !windows

package protocol

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/phin1x/go-ipp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func spoolFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.prn")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestCupsPrinterSubmitsRawDocument(t *testing.T) {
	var (
		gotDoc     ipp.Document
		gotBody    []byte
		gotPrinter string
	)
	p := newCupsPrinter(
		func(doc ipp.Document, printer string) error {
			gotDoc, gotPrinter = doc, printer
			gotBody, _ = io.ReadAll(doc.Document)
			return nil
		},
		func(context.Context, string, ...string) ([]byte, error) {
			t.Fatal("lp must not run when IPP succeeds")
			return nil, nil
		},
		zap.NewNop(),
	)

	require.NoError(t, p.PrintRaw(context.Background(), "TM-m30", spoolFile(t, []byte{0x1B, 0x40})))

	assert.Equal(t, "TM-m30", gotPrinter)
	assert.Equal(t, cupsRawMimeType, gotDoc.MimeType)
	assert.Equal(t, 2, gotDoc.Size)
	assert.Equal(t, []byte{0x1B, 0x40}, gotBody)
}

func TestCupsPrinterFallsBackToLp(t *testing.T) {
	var args []string
	p := newCupsPrinter(
		func(ipp.Document, string) error { return errors.New("connection refused") },
		func(_ context.Context, name string, a ...string) ([]byte, error) {
			args = append([]string{name}, a...)
			return []byte("request id is TM-m30-12"), nil
		},
		zap.NewNop(),
	)
	path := spoolFile(t, []byte("x"))

	require.NoError(t, p.PrintRaw(context.Background(), "TM-m30; rm -rf /", path))
	assert.Equal(t, []string{"lp", "-d", "TM-m30; rm -rf /", "-o", "raw", path}, args)
}

func TestCupsPrinterReportsBothFailures(t *testing.T) {
	p := newCupsPrinter(
		func(ipp.Document, string) error { return errors.New("ipp down") },
		func(context.Context, string, ...string) ([]byte, error) {
			return []byte("lp: The printer or class does not exist."), errors.New("exit status 1")
		},
		zap.NewNop(),
	)

	err := p.PrintRaw(context.Background(), "missing", spoolFile(t, []byte("x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ipp down")
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCupsPrinterHungSubmissionsAreBounded(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	var (
		reads   = make(chan []byte, maxPendingIPP+1)
		lpCalls int
	)
	p := newCupsPrinter(
		func(doc ipp.Document, _ string) error {
			<-release
			body, _ := io.ReadAll(doc.Document)
			reads <- body
			return nil
		},
		func(context.Context, string, ...string) ([]byte, error) {
			lpCalls++
			return nil, nil
		},
		zap.NewNop(),
	)

	for i := 0; i < maxPendingIPP; i++ {
		path := spoolFile(t, []byte("job"))
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		err := p.PrintRaw(ctx, "TM-m30", path)
		cancel()
		require.ErrorIs(t, err, context.DeadlineExceeded)
		// the caller removes its spool file as soon as it gives up
		require.NoError(t, os.Remove(path))
	}
	assert.Len(t, p.pending, maxPendingIPP)

	// with cupsd hung, further jobs go straight to lp instead of piling up
	require.NoError(t, p.PrintRaw(context.Background(), "TM-m30", spoolFile(t, []byte("next"))))
	assert.Equal(t, 1, lpCalls)
	assert.Len(t, p.pending, maxPendingIPP)

	release <- struct{}{}
	assert.Equal(t, []byte("job"), <-reads, "unlinked spool file is still readable")
	require.Eventually(t, func() bool { return len(p.pending) < maxPendingIPP }, time.Second, 5*time.Millisecond)
}
