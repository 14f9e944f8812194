// internal/handler/printer_handler.go
package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
	"receipt-bridge/internal/service"
	"receipt-bridge/internal/utils"
)

// PrinterHandler serves discovery and printer configuration
type PrinterHandler struct {
	discoveryService *service.DiscoveryService
	profileService   *service.ProfileService
	logger           *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(discoveryService *service.DiscoveryService, profileService *service.ProfileService, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		discoveryService: discoveryService,
		profileService:   profileService,
		logger:           utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// ListPrinters discovers printers
// @Summary List printers
// @Description Enumerate OS spooler queues, BLE, serial, USB and (when enabled) network printers
// @Tags Printers
// @Produce json
// @Param type query string false "Scanner type" Enums(all, spooler, ble, serial, usb, network) default(all)
// @Success 200 {object} utils.APIResponse{data=PrinterListResponse} "Printers discovered"
// @Failure 400 {object} utils.APIResponse "Unknown scanner type"
// @Router /api/v1/printers [get]
func (h *PrinterHandler) ListPrinters(c *gin.Context) {
	printers, err := h.discoveryService.ListPrinters(c.Request.Context(), c.DefaultQuery("type", service.ScanAllTypes))
	if err != nil {
		h.logger.Warn("Printer discovery failed", zap.Error(err))
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printers discovered", PrinterListResponse{
		Count:    len(printers),
		Printers: printers,
	})
}

// GetConfig returns the active printer profiles
// @Summary Get printer configuration
// @Tags Printers
// @Produce json
// @Param role query string false "Only this role" Enums(receipt, kitchen)
// @Success 200 {object} utils.APIResponse{data=ConfigResponse} "Printer configuration"
// @Failure 412 {object} utils.APIResponse "Role not configured"
// @Router /api/v1/config [get]
func (h *PrinterHandler) GetConfig(c *gin.Context) {
	if c.Query("role") != "" {
		role, err := roleParam(c, "")
		if err != nil {
			utils.AppErrorResponse(c, err)
			return
		}
		profile, err := h.profileService.Get(role)
		if err != nil {
			utils.AppErrorResponse(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "Printer configuration", ConfigResponse{Profiles: []model.PrinterProfile{profile}})
		return
	}

	snapshot := h.profileService.Snapshot()
	profiles := make([]model.PrinterProfile, 0, len(snapshot))
	for _, profile := range snapshot {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Role < profiles[j].Role })

	utils.SuccessResponse(c, http.StatusOK, "Printer configuration", ConfigResponse{Profiles: profiles})
}

// UpdateConfig validates, persists and activates a printer profile
// @Summary Set printer configuration
// @Description The profile takes effect for the next print request. role may be given in the body or the query.
// @Tags Printers
// @Accept json
// @Produce json
// @Param role query string false "Role when absent from the body" Enums(receipt, kitchen)
// @Param profile body model.PrinterProfile true "Printer profile"
// @Success 200 {object} utils.APIResponse{data=model.PrinterProfile} "Effective profile"
// @Failure 400 {object} utils.APIResponse "Invalid profile"
// @Router /api/v1/config [post]
func (h *PrinterHandler) UpdateConfig(c *gin.Context) {
	var profile model.PrinterProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		utils.ValidationErrorResponse(c, "invalid printer profile", err)
		return
	}

	role, err := roleParam(c, string(model.RoleReceipt))
	if profile.Role != "" {
		role, err = model.ParseRole(string(profile.Role))
	}
	if err != nil {
		utils.ValidationErrorResponse(c, "invalid printer role", err)
		return
	}
	profile.Role = role

	effective, err := h.profileService.Update(c.Request.Context(), profile)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer configuration saved", effective)
}

// PrinterListResponse is the discovery result
type PrinterListResponse struct {
	Count    int                       `json:"count"`
	Printers []model.DiscoveredPrinter `json:"printers"`
}

// ConfigResponse lists active profiles ordered by role
type ConfigResponse struct {
	Profiles []model.PrinterProfile `json:"profiles"`
}
