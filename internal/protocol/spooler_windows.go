//go:build windows

package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"receipt-bridge/internal/config"
)

var (
	winspool             = windows.NewLazySystemDLL("winspool.drv")
	procOpenPrinter      = winspool.NewProc("OpenPrinterW")
	procClosePrinter     = winspool.NewProc("ClosePrinter")
	procStartDocPrinter  = winspool.NewProc("StartDocPrinterW")
	procEndDocPrinter    = winspool.NewProc("EndDocPrinter")
	procStartPagePrinter = winspool.NewProc("StartPagePrinter")
	procEndPagePrinter   = winspool.NewProc("EndPagePrinter")
	procWritePrinter     = winspool.NewProc("WritePrinter")
)

// docInfo1 mirrors DOC_INFO_1
type docInfo1 struct {
	DocName    *uint16
	OutputFile *uint16
	Datatype   *uint16
}

// winspoolPrinter writes RAW documents through winspool and falls back to a share copy
type winspoolPrinter struct {
	logger *zap.Logger
}

// NewRawPrinter returns the winspool backed raw printer
func NewRawPrinter(_ *config.PrintConfig, logger *zap.Logger) RawPrinter {
	return &winspoolPrinter{logger: logger}
}

func (p *winspoolPrinter) PrintRaw(ctx context.Context, printerName, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rawErr := writeRaw(printerName, data)
	if rawErr == nil {
		return nil
	}

	p.logger.Warn("Raw spooler write failed, falling back to share copy",
		zap.String("printer", printerName),
		zap.Error(rawErr),
	)

	if err := copyToShare(ctx, path, printerName); err != nil {
		return errors.Join(rawErr, err)
	}
	return nil
}

func writeRaw(printerName string, data []byte) error {
	if len(data) == 0 {
		return errors.New("empty job")
	}

	name, err := windows.UTF16PtrFromString(printerName)
	if err != nil {
		return err
	}
	docName, _ := windows.UTF16PtrFromString("Receipt")
	datatype, _ := windows.UTF16PtrFromString("RAW")

	var handle windows.Handle
	if r, _, e := procOpenPrinter.Call(uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(&handle)), 0); r == 0 {
		return fmt.Errorf("OpenPrinter: %w", e)
	}
	defer procClosePrinter.Call(uintptr(handle))

	info := docInfo1{DocName: docName, Datatype: datatype}
	if r, _, e := procStartDocPrinter.Call(uintptr(handle), 1, uintptr(unsafe.Pointer(&info))); r == 0 {
		return fmt.Errorf("StartDocPrinter: %w", e)
	}
	defer procEndDocPrinter.Call(uintptr(handle))

	if r, _, e := procStartPagePrinter.Call(uintptr(handle)); r == 0 {
		return fmt.Errorf("StartPagePrinter: %w", e)
	}
	defer procEndPagePrinter.Call(uintptr(handle))

	var written uint32
	r, _, e := procWritePrinter.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(unsafe.Pointer(&written)),
	)
	if r == 0 {
		return fmt.Errorf("WritePrinter: %w", e)
	}
	if int(written) != len(data) {
		return fmt.Errorf("WritePrinter: wrote %d of %d bytes", written, len(data))
	}
	return nil
}

// copyToShare copies the job to the printer's local share, which prints it unprocessed
func copyToShare(ctx context.Context, path, printerName string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := ctx.Err(); err != nil {
		return err
	}

	dst, err := os.OpenFile(`\\localhost\`+printerName, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open printer share: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy to printer share: %w", err)
	}
	return dst.Close()
}
