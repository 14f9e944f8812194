// internal/handler/health_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"receipt-bridge/internal/config"
	"receipt-bridge/internal/model"
	"receipt-bridge/internal/service"
	"receipt-bridge/internal/utils"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	profiles  *service.ProfileService
	discovery *service.DiscoveryService
	bluetooth *service.BluetoothService
	config    *config.Config
	startedAt time.Time
	logger    *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	profiles *service.ProfileService,
	discovery *service.DiscoveryService,
	bluetooth *service.BluetoothService,
	config *config.Config,
	logger *zap.Logger,
) *HealthHandler {
	return &HealthHandler{
		profiles:  profiles,
		discovery: discovery,
		bluetooth: bluetooth,
		config:    config,
		startedAt: time.Now(),
		logger:    utils.NewServiceLogger(logger, "health-handler"),
	}
}

// HealthCheck reports service status and the active receipt printer
// @Summary Health check
// @Description Always 200 while the service is running. printerProfile is the receipt role profile, or null.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is running"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	profiles := h.profiles.Snapshot()

	health := &HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}
	if receipt, ok := profiles[model.RoleReceipt]; ok {
		health.PrinterProfile = &receipt
	}

	roles := make([]string, 0, len(profiles))
	for role := range profiles {
		roles = append(roles, string(role))
	}
	if len(roles) > 0 {
		health.Checks["printer_profiles"] = CheckResult{
			Status: "configured",
			Data:   map[string]interface{}{"roles": sortedStrings(roles)},
		}
	} else {
		health.Checks["printer_profiles"] = CheckResult{
			Status:  "not_configured",
			Message: "No printer configured yet",
		}
	}

	switch {
	case !h.bluetooth.Enabled():
		health.Checks["bluetooth"] = CheckResult{Status: "disabled"}
	case h.bluetooth.Status().Connected:
		status := h.bluetooth.Status()
		health.Checks["bluetooth"] = CheckResult{
			Status: "connected",
			Data:   map[string]interface{}{"deviceId": status.DeviceID, "deviceName": status.DeviceName},
		}
	default:
		health.Checks["bluetooth"] = CheckResult{Status: "idle"}
	}

	health.Checks["discovery"] = CheckResult{
		Status: "ok",
		Data:   map[string]interface{}{"scanners": h.discovery.Scanners()},
	}

	c.JSON(http.StatusOK, health)
}

// ReadinessCheck reports whether any printer is configured
// @Summary Readiness check
// @Description Ready once at least one printer profile is active
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is ready"
// @Failure 503 {object} object{status=string,reason=string} "Service is not ready"
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if len(h.profiles.Snapshot()) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "no printer configured",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck reports that the process responds
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status         string                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	Service        string                 `json:"service"`
	Version        string                 `json:"version"`
	Uptime         string                 `json:"uptime"`
	PrinterProfile *model.PrinterProfile  `json:"printerProfile"`
	Checks         map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
