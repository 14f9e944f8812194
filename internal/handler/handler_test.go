package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/discovery"
	"receipt-bridge/internal/escpos"
	"receipt-bridge/internal/events"
	"receipt-bridge/internal/middleware"
	"receipt-bridge/internal/model"
	"receipt-bridge/internal/protocol"
	"receipt-bridge/internal/repository"
	"receipt-bridge/internal/service"
)

type captureTransport struct {
	kind model.TransportKind
	err  error

	mu   sync.Mutex
	jobs [][]byte
}

func (t *captureTransport) Kind() model.TransportKind { return t.kind }

func (t *captureTransport) Send(_ context.Context, _ *model.PrinterProfile, data []byte) error {
	if t.err != nil {
		return t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs = append(t.jobs, data)
	return nil
}

func (t *captureTransport) last() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.jobs) == 0 {
		return nil
	}
	return t.jobs[len(t.jobs)-1]
}

type listScanner struct {
	printers []model.DiscoveredPrinter
}

func (s *listScanner) Scan(context.Context) ([]model.DiscoveredPrinter, error) { return s.printers, nil }
func (s *listScanner) GetScannerType() string                                 { return string(model.TransportSpooler) }
func (s *listScanner) IsAvailable() bool                                      { return true }

type testServer struct {
	engine   *gin.Engine
	network  *captureTransport
	bus      *events.Bus
	profiles *service.ProfileService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	cfg := &config.Config{
		App:      config.AppConfig{Name: "receipt-bridge", Version: "test"},
		Print:    config.PrintConfig{SendTimeout: time.Second, DefaultLanguage: "en", DefaultCurrency: "USD", DrawerPin: 2},
		Security: config.SecurityConfig{MaxRequestBodyBytes: 1 << 20},
	}

	repo := repository.NewProfileRepository(filepath.Join(t.TempDir(), "printers.yaml"), logger)
	profiles := service.NewProfileService(repo, logger)

	network := &captureTransport{kind: model.TransportNetwork}
	bus := events.NewBus(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go bus.Run(ctx)

	printService := service.NewPrintService(
		profiles,
		escpos.NewCompiler(nil, 4, logger),
		protocol.NewRegistry(network),
		&cfg.Print,
		nil,
		bus,
		logger,
	)

	manager := discovery.NewScannerManager(time.Second, nil, logger)
	manager.RegisterScanner(&listScanner{printers: []model.DiscoveredPrinter{
		{ID: "POS-80", Name: "POS-80", Transport: model.TransportSpooler, IsDefault: true},
	}})
	discoveryService := service.NewDiscoveryService(manager, logger)
	bluetoothService := service.NewBluetoothService(nil, logger)

	health := NewHealthHandler(profiles, discoveryService, bluetoothService, cfg, logger)
	printers := NewPrinterHandler(discoveryService, profiles, logger)
	prints := NewPrintHandler(printService, logger)
	ble := NewBluetoothHandler(bluetoothService, logger)

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware(), middleware.BodyLimitMiddleware(cfg.Security.MaxRequestBodyBytes))
	engine.GET("/health", health.HealthCheck)
	engine.GET("/ready", health.ReadinessCheck)
	engine.GET("/live", health.LivenessCheck)
	api := engine.Group("/api/v1")
	api.GET("/printers", printers.ListPrinters)
	api.GET("/config", printers.GetConfig)
	api.POST("/config", printers.UpdateConfig)
	api.POST("/print", prints.PrintReceipt)
	api.POST("/print/test", prints.PrintTest)
	api.POST("/print-raw", prints.PrintRaw)
	api.POST("/drawer", prints.OpenDrawer)
	api.POST("/ble/connect", ble.Connect)
	api.POST("/ble/disconnect", ble.Disconnect)
	api.GET("/ble/status", ble.Status)

	return &testServer{engine: engine, network: network, bus: bus, profiles: profiles}
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     *struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) configureNetwork(t *testing.T) {
	t.Helper()
	rec, _ := s.do(t, http.MethodPost, "/api/v1/config", map[string]interface{}{
		"transport":  "network",
		"host":       "10.0.0.5",
		"paperWidth": 80,
		"drawerPin":  2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
