// 📁 internal/discovery/spooler/scanner.go - OS print queue scanner
package spooler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"receipt-bridge/internal/model"
)

const powerShellQuery = "Get-CimInstance Win32_Printer | Select-Object Name,Default | ConvertTo-Json -Compress"

// Runner executes a command and returns its standard output
type Runner func(ctx context.Context, env []string, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.Output()
}

// Scanner lists installed OS printers
type Scanner struct {
	goos     string
	run      Runner
	lookPath func(string) (string, error)
	logger   *zap.Logger
}

// NewScanner creates a spooler scanner for the running OS
func NewScanner(logger *zap.Logger) *Scanner {
	return &Scanner{
		goos:     runtime.GOOS,
		run:      execRunner,
		lookPath: exec.LookPath,
		logger:   logger.With(zap.String("scanner", "spooler")),
	}
}

func (s *Scanner) GetScannerType() string {
	return string(model.TransportSpooler)
}

// IsAvailable reports whether the enumeration tool is installed
func (s *Scanner) IsAvailable() bool {
	_, err := s.lookPath(s.tool())
	return err == nil
}

func (s *Scanner) tool() string {
	if s.goos == "windows" {
		return "powershell"
	}
	return "lpstat"
}

// Scan lists the print queues
func (s *Scanner) Scan(ctx context.Context) ([]model.DiscoveredPrinter, error) {
	if s.goos == "windows" {
		out, err := s.run(ctx, nil, "powershell", "-NoProfile", "-NonInteractive", "-Command", powerShellQuery)
		if err != nil {
			return nil, fmt.Errorf("powershell printer query: %w", err)
		}
		return ParsePowerShell(out)
	}

	out, err := s.run(ctx, []string{"LC_ALL=C"}, "lpstat", "-p", "-d")
	if err != nil {
		// lpstat exits non-zero when no queue exists
		if strings.Contains(string(out), "No destinations") || len(out) == 0 {
			s.logger.Debug("No print queues", zap.Error(err))
			return []model.DiscoveredPrinter{}, nil
		}
		return nil, fmt.Errorf("lpstat: %w", err)
	}
	return ParseLpstat(string(out)), nil
}
