package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/escpos"
	"receipt-bridge/internal/events"
	"receipt-bridge/internal/metrics"
	"receipt-bridge/internal/model"
	"receipt-bridge/internal/protocol"
	"receipt-bridge/pkg/printerr"
)

type printFixture struct {
	svc       *PrintService
	profiles  *ProfileService
	transport *recordingTransport
	bus       *events.Bus
	reg       *prometheus.Registry
}

func newPrintFixture(t *testing.T, transport *recordingTransport, sendTimeout time.Duration) *printFixture {
	t.Helper()

	profiles := NewProfileService(&memoryRepo{}, zap.NewNop())
	reg := prometheus.NewRegistry()
	bus := events.NewBus(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx)

	cfg := &config.PrintConfig{
		SendTimeout:     sendTimeout,
		DefaultLanguage: "en",
		DefaultCurrency: "USD",
		DrawerPin:       2,
	}
	svc := NewPrintService(
		profiles,
		escpos.NewCompiler(nil, 4, zap.NewNop()),
		protocol.NewRegistry(transport),
		cfg,
		metrics.NewPrintMetrics(reg),
		bus,
		zap.NewNop(),
	)
	return &printFixture{svc: svc, profiles: profiles, transport: transport, bus: bus, reg: reg}
}

func (f *printFixture) configure(t *testing.T, profile model.PrinterProfile) {
	t.Helper()
	_, err := f.profiles.Update(context.Background(), profile)
	require.NoError(t, err)
}

func sampleReceipt() *model.Receipt {
	return &model.Receipt{
		Store: model.StoreInfo{Name: "Shop"},
		Items: []model.LineItem{{
			Name:      "Tea",
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.RequireFromString("3.00"),
			Total:     decimal.RequireFromString("3.00"),
		}},
		Summary: model.Summary{
			Subtotal: decimal.RequireFromString("3.00"),
			Total:    decimal.RequireFromString("3.00"),
		},
	}
}

func TestPrintReceiptCompilesAndSends(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork}, time.Second)
	f.configure(t, model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportNetwork, Host: "10.0.0.5", PaperWidth: model.Paper58mm})

	jobs, unsubscribe := f.bus.Subscribe(events.TypePrintJob, 4)
	defer unsubscribe()

	result, err := f.svc.PrintReceipt(context.Background(), model.RoleReceipt, sampleReceipt())
	require.NoError(t, err)

	sent := f.transport.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, len(sent[0]), result.Bytes)
	assert.Equal(t, model.TransportNetwork, result.Transport)
	assert.NotEmpty(t, result.JobID)

	expected := sampleReceipt()
	expected.PaperWidth = model.Paper58mm
	expected.Language = "en"
	expected.Currency = "USD"
	want := escpos.NewCompiler(nil, 4, zap.NewNop()).Compile(context.Background(), expected, escpos.Options{DrawerPin: 2})
	assert.Equal(t, want, sent[0])

	select {
	case ev := <-jobs:
		assert.Equal(t, result.JobID, ev.Data["jobId"])
		assert.Equal(t, JobReceipt, ev.Data["kind"])
		assert.Equal(t, true, ev.Data["success"])
	case <-time.After(time.Second):
		t.Fatal("print_job event not published")
	}
}

func TestPrintReceiptKeepsDocumentPaperWidth(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork}, time.Second)
	f.configure(t, model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportNetwork, Host: "10.0.0.5", PaperWidth: model.Paper58mm})

	doc := sampleReceipt()
	doc.PaperWidth = model.Paper80mm
	_, err := f.svc.PrintReceipt(context.Background(), model.RoleReceipt, doc)
	require.NoError(t, err)

	sep := bytes.Repeat([]byte("-"), 48)
	assert.True(t, bytes.Contains(f.transport.sent()[0], sep))
	assert.Equal(t, model.Paper80mm, doc.PaperWidth, "caller document is not modified")
}

func TestPrintWithoutProfileIsConfigurationError(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork}, time.Second)

	_, err := f.svc.PrintReceipt(context.Background(), model.RoleKitchen, sampleReceipt())
	require.Error(t, err)
	assert.Equal(t, printerr.CodeConfiguration, printerr.CodeOf(err))
	assert.Empty(t, f.transport.sent())
}

func TestPrintWithUnregisteredTransport(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork}, time.Second)
	f.configure(t, model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportSpooler, PrinterName: "POS"})

	_, err := f.svc.PrintTest(context.Background(), model.RoleReceipt)
	require.Error(t, err)
	assert.Equal(t, printerr.CodeConfiguration, printerr.CodeOf(err))
}

func TestOpenDrawerSendsOnlyKick(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork}, time.Second)
	f.configure(t, model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportNetwork, Host: "10.0.0.5", DrawerPin: 5})

	result, err := f.svc.OpenDrawer(context.Background(), model.RoleReceipt)
	require.NoError(t, err)

	require.Len(t, f.transport.sent(), 1)
	assert.Equal(t, escpos.DrawerKick(5), f.transport.sent()[0])
	assert.Equal(t, 5, result.Bytes)
}

func TestPrintRaw(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork}, time.Second)
	f.configure(t, model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportNetwork, Host: "10.0.0.5"})

	_, err := f.svc.PrintRaw(context.Background(), model.RoleReceipt, nil)
	assert.Equal(t, printerr.CodeValidation, printerr.CodeOf(err))

	raw := []byte{0x1B, 0x40, 'h', 'i', 0x0A}
	_, err = f.svc.PrintRaw(context.Background(), model.RoleReceipt, raw)
	require.NoError(t, err)

	raw[2] = 'X'
	assert.Equal(t, []byte{0x1B, 0x40, 'h', 'i', 0x0A}, f.transport.sent()[0])
}

func TestPrintTestPage(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork}, time.Second)
	f.configure(t, model.PrinterProfile{Role: model.RoleKitchen, Transport: model.TransportNetwork, Host: "10.0.0.7"})

	_, err := f.svc.PrintTest(context.Background(), model.RoleKitchen)
	require.NoError(t, err)
	assert.Contains(t, string(f.transport.sent()[0]), "10.0.0.7:9100")
}

func TestTransportFailureIsReported(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork, err: errRefused}, time.Second)
	f.configure(t, model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportNetwork, Host: "10.0.0.5"})

	jobs, unsubscribe := f.bus.Subscribe(events.TypePrintJob, 4)
	defer unsubscribe()

	_, err := f.svc.OpenDrawer(context.Background(), model.RoleReceipt)
	require.Error(t, err)
	assert.Equal(t, printerr.CodeTransport, printerr.CodeOf(err))

	select {
	case ev := <-jobs:
		assert.Equal(t, false, ev.Data["success"])
		assert.Equal(t, "print job failed", ev.Data["error"])
	case <-time.After(time.Second):
		t.Fatal("failure event not published")
	}

	mfs, err := f.reg.Gather()
	require.NoError(t, err)
	var failures float64
	for _, mf := range mfs {
		if mf.GetName() != "receipt_bridge_print_jobs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == "failure" {
					failures += m.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 1.0, failures)
}

func TestHungPrinterTimesOut(t *testing.T) {
	f := newPrintFixture(t, &recordingTransport{kind: model.TransportNetwork, block: true}, 100*time.Millisecond)
	f.configure(t, model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportNetwork, Host: "10.0.0.5"})

	start := time.Now()
	_, err := f.svc.OpenDrawer(context.Background(), model.RoleReceipt)
	require.Error(t, err)
	assert.Equal(t, printerr.CodeTimeout, printerr.CodeOf(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestJobsForSamePrinterDoNotInterleave(t *testing.T) {
	transport := &recordingTransport{kind: model.TransportNetwork, delay: 20 * time.Millisecond}
	f := newPrintFixture(t, transport, 5*time.Second)
	f.configure(t, model.PrinterProfile{Role: model.RoleReceipt, Transport: model.TransportNetwork, Host: "10.0.0.5"})
	f.configure(t, model.PrinterProfile{Role: model.RoleKitchen, Transport: model.TransportNetwork, Host: "10.0.0.5"})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		role := model.RoleReceipt
		if i%2 == 1 {
			role = model.RoleKitchen
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.OpenDrawer(context.Background(), role)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, transport.sent(), 6)
	assert.False(t, transport.overlap, "sends to one printer overlapped")
}

func TestTargetLockHonorsContext(t *testing.T) {
	locks := newTargetLocks()
	release, err := locks.acquire(context.Background(), "network://a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locks.acquire(ctx, "network://a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := locks.acquire(context.Background(), "network://b")
	require.NoError(t, err)
	other()

	release()
	again, err := locks.acquire(context.Background(), "network://a")
	require.NoError(t, err)
	again()
}
