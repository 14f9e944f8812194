// 📁 internal/discovery/tcp/scanner.go - Raw socket printer probe
package tcp

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"receipt-bridge/internal/model"
)

// maxHosts bounds how many addresses one CIDR target may expand to
const maxHosts = 1024

// Config for TCP scanner
type Config struct {
	Enabled      bool
	Targets      []string
	Port         int
	ProbeTimeout time.Duration
	Concurrency  int
}

// Scanner probes configured hosts for an open raw print port
type Scanner struct {
	logger *zap.Logger
	config Config
}

// NewScanner creates a new TCP scanner
func NewScanner(config Config, logger *zap.Logger) *Scanner {
	if config.Port == 0 {
		config.Port = model.DefaultNetworkPort
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = 500 * time.Millisecond
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 32
	}
	return &Scanner{
		logger: logger.With(zap.String("scanner", "network")),
		config: config,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return string(model.TransportNetwork)
}

// IsAvailable is true only when probing is switched on and has targets
func (s *Scanner) IsAvailable() bool {
	return s.config.Enabled && len(s.config.Targets) > 0
}

// Scan probes every target address in parallel
func (s *Scanner) Scan(ctx context.Context) ([]model.DiscoveredPrinter, error) {
	addrs, err := expandTargets(s.config.Targets, s.config.Port)
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		found []model.DiscoveredPrinter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for _, addr := range addrs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if !s.probe(gctx, addr) {
				return nil
			}
			host, port, _ := net.SplitHostPort(addr)
			mu.Lock()
			found = append(found, model.DiscoveredPrinter{
				ID:        addr,
				Name:      host,
				Transport: model.TransportNetwork,
				Details:   map[string]string{"host": host, "port": port},
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	s.logger.Debug("Network probe completed",
		zap.Int("addresses", len(addrs)),
		zap.Int("printers_found", len(found)),
	)
	return found, nil
}

func (s *Scanner) probe(ctx context.Context, addr string) bool {
	dialer := net.Dialer{Timeout: s.config.ProbeTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// expandTargets turns hosts, host:port pairs and CIDR ranges into dial addresses
func expandTargets(targets []string, port int) ([]string, error) {
	seen := make(map[string]bool)
	var addrs []string
	add := func(a string) {
		if !seen[a] {
			seen[a] = true
			addrs = append(addrs, a)
		}
	}

	defaultPort := strconv.Itoa(port)
	for _, raw := range targets {
		target := strings.TrimSpace(raw)
		if target == "" {
			continue
		}

		if strings.Contains(target, "/") {
			prefix, err := netip.ParsePrefix(target)
			if err != nil {
				return nil, fmt.Errorf("invalid network target %q: %w", target, err)
			}
			prefix = prefix.Masked()
			if bits := prefix.Addr().BitLen() - prefix.Bits(); bits > 10 {
				return nil, fmt.Errorf("network target %q exceeds %d hosts", target, maxHosts)
			}
			for a := prefix.Addr(); prefix.Contains(a); a = a.Next() {
				add(net.JoinHostPort(a.String(), defaultPort))
			}
			continue
		}

		if host, p, err := net.SplitHostPort(target); err == nil {
			add(net.JoinHostPort(host, p))
			continue
		}
		add(net.JoinHostPort(target, defaultPort))
	}
	return addrs, nil
}
