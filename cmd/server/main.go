// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "receipt-bridge/docs"
	"receipt-bridge/internal/config"
	"receipt-bridge/internal/escpos"
	"receipt-bridge/internal/events"
	"receipt-bridge/internal/handler"
	"receipt-bridge/internal/metrics"
	"receipt-bridge/internal/protocol"
	"receipt-bridge/internal/raster"
	"receipt-bridge/internal/repository"
	"receipt-bridge/internal/routes"
	"receipt-bridge/internal/service"
	"receipt-bridge/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server

	// background workers stop when ctx is cancelled
	ctx    context.Context
	cancel context.CancelFunc

	bus       *events.Bus
	wsHandler *handler.WebSocketHandler

	// Metrics
	registry    *prometheus.Registry
	printMetric *metrics.PrintMetrics

	// Transports
	bleAdapter   protocol.BLEAdapter
	bleTransport *protocol.BLETransport
	transports   *protocol.Registry

	// Services
	profileService   *service.ProfileService
	printService     *service.PrintService
	discoveryService *service.DiscoveryService
	bluetoothService *service.BluetoothService
}

// @title Receipt Bridge API
// @version 1.0.0
// @description Local print bridge for thermal receipt printers

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8084
// @BasePath /
func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "receipt-bridge")
	serviceLogger.LogServiceStart(cfg.App.Version,
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.GetServerAddr()),
		zap.String("profile_path", cfg.Storage.ProfilePath),
		zap.Bool("bluetooth", cfg.Bluetooth.Enabled),
	)

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	app.initializeMetrics()
	app.initializeTransports()

	if err := app.initializeServices(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initializeServer()

	return app, nil
}

// initializeMetrics registers the print collectors next to the runtime ones
func (app *Application) initializeMetrics() {
	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.printMetric = metrics.NewPrintMetrics(app.registry)
}

// initializeTransports builds the transport registry. BLE is only wired when enabled.
func (app *Application) initializeTransports() {
	if app.config.Bluetooth.Enabled {
		adapter := protocol.NewTinyGoAdapter()
		app.bleAdapter = adapter
		app.bleTransport = protocol.NewBLETransport(adapter, app.config.Bluetooth, app.logger)
	}

	app.transports = protocol.NewDefaultRegistry(app.config, app.logger, app.bleTransport)

	app.logger.Info("Transports initialized successfully",
		zap.Any("kinds", app.transports.Kinds()),
	)
}

// initializeServices creates service instances
func (app *Application) initializeServices() error {
	repo := repository.NewProfileRepository(app.config.Storage.ProfilePath, app.logger)

	app.profileService = service.NewProfileService(repo, app.logger)
	loadCtx, cancel := context.WithTimeout(app.ctx, 10*time.Second)
	defer cancel()
	if err := app.profileService.Load(loadCtx); err != nil {
		return fmt.Errorf("failed to load printer profiles: %w", err)
	}

	app.bus = events.NewBus(app.logger)
	go app.bus.Run(app.ctx)

	rasterizer := raster.NewRasterizer(app.config.Print.LogoFetchTimeout, app.logger)
	compiler := escpos.NewCompiler(rasterizer, app.config.Print.FeedLines, app.logger)

	app.printService = service.NewPrintService(
		app.profileService,
		compiler,
		app.transports,
		&app.config.Print,
		app.printMetric,
		app.bus,
		app.logger,
	)

	manager := service.NewScannerManager(app.config, app.bleAdapter, app.printMetric, app.logger)
	app.discoveryService = service.NewDiscoveryService(manager, app.logger)
	app.bluetoothService = service.NewBluetoothService(app.bleTransport, app.logger)

	app.wsHandler = handler.NewWebSocketHandler(app.bus, &app.config.Security, app.logger)
	go app.wsHandler.Run(app.ctx)

	app.logger.Info("Services initialized successfully",
		zap.Int("configured_roles", len(app.profileService.Snapshot())),
	)
	return nil
}

// initializeServer sets up the HTTP server
func (app *Application) initializeServer() {
	var metricsHandler http.Handler
	if app.config.Metrics.Enabled {
		metricsHandler = promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{Registry: app.registry})
	}

	router := routes.NewRouter(
		app.config,
		app.logger,
		app.profileService,
		app.printService,
		app.discoveryService,
		app.bluetoothService,
		app.wsHandler,
		metricsHandler,
	)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.waitForShutdown()
	return nil
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "receipt-bridge")
	serviceLogger.LogServiceStop("shutdown signal received")

	timeout := app.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// stops the event bus and closes websocket clients
	app.cancel()

	if app.bluetoothService.Enabled() {
		if err := app.bluetoothService.Disconnect(); err != nil {
			app.logger.Warn("BLE disconnect error", zap.Error(err))
		}
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}
