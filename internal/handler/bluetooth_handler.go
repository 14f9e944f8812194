// internal/handler/bluetooth_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"receipt-bridge/internal/protocol"
	"receipt-bridge/internal/service"
	"receipt-bridge/internal/utils"
)

// BluetoothHandler manages the BLE printer link
type BluetoothHandler struct {
	bluetoothService *service.BluetoothService
	logger           *utils.ServiceLogger
}

// NewBluetoothHandler creates a new bluetooth handler
func NewBluetoothHandler(bluetoothService *service.BluetoothService, logger *zap.Logger) *BluetoothHandler {
	return &BluetoothHandler{
		bluetoothService: bluetoothService,
		logger:           utils.NewServiceLogger(logger, "bluetooth-handler"),
	}
}

// Connect binds the BLE transport to a printer
// @Summary Connect BLE printer
// @Description Scans for deviceId and binds the first allow-listed printer service, or the given UUID pair
// @Tags Bluetooth
// @Accept json
// @Produce json
// @Param request body protocol.BLEConnectRequest true "Device to connect"
// @Success 200 {object} utils.APIResponse{data=protocol.BLEStatus} "Connected"
// @Failure 400 {object} utils.APIResponse "Invalid request"
// @Failure 412 {object} utils.APIResponse "Bluetooth disabled"
// @Failure 502 {object} utils.APIResponse "Connect failed"
// @Router /api/v1/ble/connect [post]
func (h *BluetoothHandler) Connect(c *gin.Context) {
	var req protocol.BLEConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, "invalid connect request", err)
		return
	}

	status, err := h.bluetoothService.Connect(c.Request.Context(), req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "BLE printer connected", status)
}

// Disconnect drops the BLE link
// @Summary Disconnect BLE printer
// @Tags Bluetooth
// @Produce json
// @Success 200 {object} utils.APIResponse{data=protocol.BLEStatus} "Disconnected"
// @Failure 412 {object} utils.APIResponse "Bluetooth disabled"
// @Router /api/v1/ble/disconnect [post]
func (h *BluetoothHandler) Disconnect(c *gin.Context) {
	if err := h.bluetoothService.Disconnect(); err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "BLE printer disconnected", h.bluetoothService.Status())
}

// Status reports the BLE link
// @Summary BLE link status
// @Tags Bluetooth
// @Produce json
// @Success 200 {object} utils.APIResponse{data=protocol.BLEStatus} "Link status"
// @Router /api/v1/ble/status [get]
func (h *BluetoothHandler) Status(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "BLE status", h.bluetoothService.Status())
}
