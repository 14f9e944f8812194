// 📁 internal/discovery/scanner.go - Printer scanner manager
package discovery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"receipt-bridge/internal/model"
)

// PrinterScanner enumerates printers reachable over one transport
type PrinterScanner interface {
	Scan(ctx context.Context) ([]model.DiscoveredPrinter, error)
	GetScannerType() string
	IsAvailable() bool
}

// ScanObserver receives per scanner result counts
type ScanObserver interface {
	ObserveDiscovery(scanner string, found int)
}

// ScannerManager runs registered scanners and merges their results
type ScannerManager struct {
	mu       sync.RWMutex
	scanners map[string]PrinterScanner
	timeout  time.Duration
	observer ScanObserver
	logger   *zap.Logger
}

// NewScannerManager creates a new scanner manager. A zero timeout leaves scans bounded by the caller.
func NewScannerManager(timeout time.Duration, observer ScanObserver, logger *zap.Logger) *ScannerManager {
	return &ScannerManager{
		scanners: make(map[string]PrinterScanner),
		timeout:  timeout,
		observer: observer,
		logger:   logger,
	}
}

// RegisterScanner registers a printer scanner
func (sm *ScannerManager) RegisterScanner(scanner PrinterScanner) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	scannerType := scanner.GetScannerType()
	sm.scanners[scannerType] = scanner
	sm.logger.Debug("Scanner registered", zap.String("type", scannerType))
}

// ScanAll runs every available scanner concurrently.
// A failing scanner is logged and skipped so the others still report.
func (sm *ScannerManager) ScanAll(ctx context.Context) ([]model.DiscoveredPrinter, error) {
	return sm.scan(ctx, sm.available())
}

// ScanByType runs the scanner registered for scannerType
func (sm *ScannerManager) ScanByType(ctx context.Context, scannerType string) ([]model.DiscoveredPrinter, error) {
	sm.mu.RLock()
	scanner, exists := sm.scanners[scannerType]
	sm.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("scanner type not found: %s", scannerType)
	}
	if !scanner.IsAvailable() {
		return []model.DiscoveredPrinter{}, nil
	}
	return sm.scan(ctx, []PrinterScanner{scanner})
}

// GetAvailableScanners returns the available scanner types, sorted
func (sm *ScannerManager) GetAvailableScanners() []string {
	var available []string
	for _, scanner := range sm.available() {
		available = append(available, scanner.GetScannerType())
	}
	sort.Strings(available)
	return available
}

func (sm *ScannerManager) available() []PrinterScanner {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var list []PrinterScanner
	for scannerType, scanner := range sm.scanners {
		if !scanner.IsAvailable() {
			sm.logger.Debug("Scanner not available, skipping", zap.String("type", scannerType))
			continue
		}
		list = append(list, scanner)
	}
	return list
}

func (sm *ScannerManager) scan(ctx context.Context, scanners []PrinterScanner) ([]model.DiscoveredPrinter, error) {
	if sm.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sm.timeout)
		defer cancel()
	}

	results := make([][]model.DiscoveredPrinter, len(scanners))
	g, gctx := errgroup.WithContext(ctx)

	for i, scanner := range scanners {
		g.Go(func() error {
			start := time.Now()
			found, err := scanner.Scan(gctx)
			if err != nil {
				sm.logger.Warn("Scanner failed",
					zap.String("type", scanner.GetScannerType()),
					zap.Error(err),
				)
				return nil
			}

			results[i] = found
			if sm.observer != nil {
				sm.observer.ObserveDiscovery(scanner.GetScannerType(), len(found))
			}
			sm.logger.Debug("Scanner completed",
				zap.String("type", scanner.GetScannerType()),
				zap.Int("printers_found", len(found)),
				zap.Duration("duration", time.Since(start)),
			)
			return nil
		})
	}
	_ = g.Wait()

	var all []model.DiscoveredPrinter
	for _, r := range results {
		all = append(all, r...)
	}
	return Normalize(all), nil
}

// Normalize deduplicates printers by transport and id and sorts them:
// defaults first, then by transport, then by name.
func Normalize(printers []model.DiscoveredPrinter) []model.DiscoveredPrinter {
	seen := make(map[string]int, len(printers))
	unique := make([]model.DiscoveredPrinter, 0, len(printers))

	for _, p := range printers {
		key := p.Key()
		if idx, ok := seen[key]; ok {
			if p.IsDefault {
				unique[idx].IsDefault = true
			}
			continue
		}
		seen[key] = len(unique)
		unique = append(unique, p)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if a.Transport != b.Transport {
			return a.Transport < b.Transport
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return unique
}
