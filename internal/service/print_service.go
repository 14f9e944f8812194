// internal/service/print_service.go
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/escpos"
	"receipt-bridge/internal/events"
	"receipt-bridge/internal/metrics"
	"receipt-bridge/internal/model"
	"receipt-bridge/internal/protocol"
	"receipt-bridge/internal/utils"
	"receipt-bridge/pkg/printerr"
)

// Job kinds reported in results, metrics and events
const (
	JobReceipt = "receipt"
	JobDrawer  = "drawer"
	JobRaw     = "raw"
	JobTest    = "test"
)

// JobResult describes a dispatched job
type JobResult struct {
	JobID      string              `json:"jobId"`
	Role       model.Role          `json:"role"`
	Transport  model.TransportKind `json:"transport"`
	Bytes      int                 `json:"bytes"`
	DurationMs int64               `json:"durationMs"`
}

// PrintService compiles jobs and hands them to the transport of the role's profile.
// Jobs for the same physical printer never interleave.
type PrintService struct {
	profiles   *ProfileService
	compiler   *escpos.Compiler
	transports *protocol.Registry
	config     *config.PrintConfig
	metrics    *metrics.PrintMetrics
	bus        *events.Bus
	locks      *targetLocks
	now        func() time.Time
	logger     *utils.ServiceLogger
}

// NewPrintService creates a print service. m and bus may be nil.
func NewPrintService(
	profiles *ProfileService,
	compiler *escpos.Compiler,
	transports *protocol.Registry,
	cfg *config.PrintConfig,
	m *metrics.PrintMetrics,
	bus *events.Bus,
	logger *zap.Logger,
) *PrintService {
	return &PrintService{
		profiles:   profiles,
		compiler:   compiler,
		transports: transports,
		config:     cfg,
		metrics:    m,
		bus:        bus,
		locks:      newTargetLocks(),
		now:        time.Now,
		logger:     utils.NewServiceLogger(logger, "print-service"),
	}
}

// PrintReceipt compiles r for the role's printer and sends it
func (s *PrintService) PrintReceipt(ctx context.Context, role model.Role, r *model.Receipt) (*JobResult, error) {
	if r == nil {
		return nil, printerr.New(printerr.CodeValidation, "receipt document is required")
	}
	profile, err := s.profiles.Get(role)
	if err != nil {
		return nil, err
	}

	doc := *r
	if doc.PaperWidth == "" {
		doc.PaperWidth = profile.PaperWidth
	}
	if strings.TrimSpace(doc.Language) == "" {
		doc.Language = s.config.DefaultLanguage
	}
	if strings.TrimSpace(doc.Currency) == "" {
		doc.Currency = s.config.DefaultCurrency
	}

	data := s.compiler.Compile(ctx, &doc, escpos.Options{DrawerPin: profile.DrawerPin})
	return s.dispatch(ctx, JobReceipt, &profile, data)
}

// OpenDrawer sends only the drawer kick pulse
func (s *PrintService) OpenDrawer(ctx context.Context, role model.Role) (*JobResult, error) {
	profile, err := s.profiles.Get(role)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, JobDrawer, &profile, escpos.DrawerKick(profile.DrawerPin))
}

// PrintRaw sends data verbatim
func (s *PrintService) PrintRaw(ctx context.Context, role model.Role, data []byte) (*JobResult, error) {
	if len(data) == 0 {
		return nil, printerr.New(printerr.CodeValidation, "raw data is empty")
	}
	profile, err := s.profiles.Get(role)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	return s.dispatch(ctx, JobRaw, &profile, buf)
}

// PrintTest prints the diagnostic page for the role's printer
func (s *PrintService) PrintTest(ctx context.Context, role model.Role) (*JobResult, error) {
	profile, err := s.profiles.Get(role)
	if err != nil {
		return nil, err
	}
	data := escpos.TestPage(&profile, s.config.DefaultLanguage, s.now())
	return s.dispatch(ctx, JobTest, &profile, data)
}

func (s *PrintService) dispatch(ctx context.Context, kind string, profile *model.PrinterProfile, data []byte) (*JobResult, error) {
	jobID := uuid.NewString()
	opLog := utils.NewOperationLogger(s.logger.Logger, kind, jobID)
	opLog.Start(
		zap.String("role", string(profile.Role)),
		zap.String("transport", string(profile.Transport)),
		zap.String("target", profile.Address()),
		zap.Int("bytes", len(data)),
	)

	err := s.send(ctx, profile, data)
	elapsed := opLog.Elapsed()
	s.record(jobID, kind, profile, len(data), elapsed, err)

	if err != nil {
		opLog.Error(err)
		return nil, err
	}
	opLog.Success()

	return &JobResult{
		JobID:      jobID,
		Role:       profile.Role,
		Transport:  profile.Transport,
		Bytes:      len(data),
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

func (s *PrintService) send(ctx context.Context, profile *model.PrinterProfile, data []byte) error {
	transport, err := s.transports.Get(profile.Transport)
	if err != nil {
		return err
	}

	// queueing behind another job is bounded separately from the send itself
	waitCtx, cancelWait := context.WithTimeout(ctx, s.config.SendTimeout)
	release, err := s.locks.acquire(waitCtx, profile.TargetKey())
	cancelWait()
	if err != nil {
		return printerr.Transport(err, "printer is busy with another job")
	}
	defer release()

	sendCtx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
	defer cancel()

	if err := transport.Send(sendCtx, profile, data); err != nil {
		return printerr.Transport(err, "print job failed")
	}
	return nil
}

func (s *PrintService) record(jobID, kind string, profile *model.PrinterProfile, bytes int, elapsed time.Duration, err error) {
	s.metrics.ObservePrint(string(profile.Transport), kind, err == nil, bytes, elapsed)

	if s.bus == nil {
		return
	}
	job := events.PrintJob{
		JobID:     jobID,
		Kind:      kind,
		Role:      string(profile.Role),
		Transport: string(profile.Transport),
		Success:   err == nil,
		Bytes:     bytes,
		Duration:  elapsed,
	}
	if err != nil {
		job.Error = publicMessage(err)
	}
	s.bus.Publish(job.Event())
}

// publicMessage is the error text safe to show outside the process
func publicMessage(err error) string {
	typed := printerr.As(err)
	if typed == nil {
		return printerr.MetadataFor(printerr.CodeInternal).PublicMessage
	}
	if printerr.MetadataFor(typed.Code()).DetailsAllowed && typed.Message() != "" {
		return typed.Message()
	}
	return printerr.MetadataFor(typed.Code()).PublicMessage
}

// targetLocks hands out one slot per physical printer
type targetLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newTargetLocks() *targetLocks {
	return &targetLocks{slots: make(map[string]chan struct{})}
}

func (l *targetLocks) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
