// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/handler"
	"receipt-bridge/internal/middleware"
	"receipt-bridge/internal/service"
	"receipt-bridge/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config           *config.Config
	logger           *zap.Logger
	profileService   *service.ProfileService
	printService     *service.PrintService
	discoveryService *service.DiscoveryService
	bluetoothService *service.BluetoothService
	wsHandler        *handler.WebSocketHandler
	metricsHandler   http.Handler
}

// NewRouter creates a new router instance. metricsHandler may be nil.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	profileService *service.ProfileService,
	printService *service.PrintService,
	discoveryService *service.DiscoveryService,
	bluetoothService *service.BluetoothService,
	wsHandler *handler.WebSocketHandler,
	metricsHandler http.Handler,
) *Router {
	return &Router{
		config:           config,
		logger:           logger,
		profileService:   profileService,
		printService:     printService,
		discoveryService: discoveryService,
		bluetoothService: bluetoothService,
		wsHandler:        wsHandler,
		metricsHandler:   metricsHandler,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	if r.config.IsDevelopment() || r.config.IsDebugEnabled() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	r.addMiddleware(router)
	r.addRoutes(router)

	return router
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(r.logger))

	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger))

	router.Use(middleware.CORSMiddleware(&r.config.Security))
	router.Use(middleware.BodyLimitMiddleware(r.config.Security.MaxRequestBodyBytes))

	r.logger.Debug("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	healthHandler := handler.NewHealthHandler(r.profileService, r.discoveryService, r.bluetoothService, r.config, r.logger)
	printerHandler := handler.NewPrinterHandler(r.discoveryService, r.profileService, r.logger)
	printHandler := handler.NewPrintHandler(r.printService, r.logger)
	bluetoothHandler := handler.NewBluetoothHandler(r.bluetoothService, r.logger)

	r.addHealthRoutes(router, healthHandler)

	apiV1 := router.Group("/api/v1")
	r.addPrinterRoutes(apiV1, printerHandler)
	r.addPrintRoutes(apiV1, printHandler)
	r.addBluetoothRoutes(apiV1, bluetoothHandler)

	r.addWebSocketRoutes(router, r.wsHandler)

	if r.metricsHandler != nil && r.config.Metrics.Enabled {
		router.GET(r.config.Metrics.Path, gin.WrapH(r.metricsHandler))
	}

	r.addDocumentationRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		utils.ErrorResponse(c, http.StatusNotFound, "route not found", nil)
	})

	r.logger.Info("All routes configured successfully")
}

// addHealthRoutes sets up health check routes
func (r *Router) addHealthRoutes(router *gin.Engine, handler *handler.HealthHandler) {
	health := router.Group("")
	{
		health.GET("/health", handler.HealthCheck)
		health.GET("/ready", handler.ReadinessCheck)
		health.GET("/live", handler.LivenessCheck)
	}
}

// addPrinterRoutes sets up discovery and configuration routes
func (r *Router) addPrinterRoutes(api *gin.RouterGroup, handler *handler.PrinterHandler) {
	api.GET("/printers", handler.ListPrinters)
	api.GET("/config", handler.GetConfig)
	api.POST("/config", handler.UpdateConfig)
}

// addPrintRoutes sets up job dispatch routes
func (r *Router) addPrintRoutes(api *gin.RouterGroup, handler *handler.PrintHandler) {
	api.POST("/print", handler.PrintReceipt)
	api.POST("/print/test", handler.PrintTest)
	api.POST("/print-raw", handler.PrintRaw)
	api.POST("/drawer", handler.OpenDrawer)
}

// addBluetoothRoutes sets up BLE link routes
func (r *Router) addBluetoothRoutes(api *gin.RouterGroup, handler *handler.BluetoothHandler) {
	ble := api.Group("/ble")
	{
		ble.POST("/connect", handler.Connect)
		ble.POST("/disconnect", handler.Disconnect)
		ble.GET("/status", handler.Status)
	}
}

// addWebSocketRoutes sets up WebSocket routes
func (r *Router) addWebSocketRoutes(router *gin.Engine, handler *handler.WebSocketHandler) {
	ws := router.Group("/ws")
	{
		ws.GET("/events", handler.HandleEventConnection)
	}
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
