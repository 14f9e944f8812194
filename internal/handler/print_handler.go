// internal/handler/print_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"receipt-bridge/internal/model"
	"receipt-bridge/internal/service"
	"receipt-bridge/internal/utils"
)

// PrintHandler dispatches print, drawer and raw jobs
type PrintHandler struct {
	printService *service.PrintService
	logger       *utils.ServiceLogger
}

// NewPrintHandler creates a new print handler
func NewPrintHandler(printService *service.PrintService, logger *zap.Logger) *PrintHandler {
	return &PrintHandler{
		printService: printService,
		logger:       utils.NewServiceLogger(logger, "print-handler"),
	}
}

// PrintReceipt compiles a receipt and sends it to the role's printer
// @Summary Print receipt
// @Tags Print
// @Accept json
// @Produce json
// @Param role query string false "Printer role" Enums(receipt, kitchen) default(receipt)
// @Param receipt body ReceiptPayload true "Receipt document"
// @Success 200 {object} utils.APIResponse{data=service.JobResult} "Receipt printed"
// @Failure 400 {object} utils.APIResponse "Invalid receipt"
// @Failure 412 {object} utils.APIResponse "No printer configured"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Failure 504 {object} utils.APIResponse "Printer timed out"
// @Router /api/v1/print [post]
func (h *PrintHandler) PrintReceipt(c *gin.Context) {
	role, err := roleParam(c, string(model.RoleReceipt))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	var payload ReceiptPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.ValidationErrorResponse(c, "invalid receipt document", err)
		return
	}
	receipt, err := payload.ToReceipt()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result, err := h.printService.PrintReceipt(c.Request.Context(), role, receipt)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Receipt printed", result)
}

// OpenDrawer pulses the cash drawer connected to the role's printer
// @Summary Open cash drawer
// @Tags Print
// @Produce json
// @Param role query string false "Printer role" Enums(receipt, kitchen) default(receipt)
// @Success 200 {object} utils.APIResponse{data=service.JobResult} "Drawer opened"
// @Failure 412 {object} utils.APIResponse "No printer configured"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Router /api/v1/drawer [post]
func (h *PrintHandler) OpenDrawer(c *gin.Context) {
	role, err := roleParam(c, string(model.RoleReceipt))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result, err := h.printService.OpenDrawer(c.Request.Context(), role)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Drawer opened", result)
}

// PrintRaw sends a base64 ESC/POS buffer verbatim
// @Summary Print raw bytes
// @Tags Print
// @Accept json
// @Produce json
// @Param request body RawPrintRequest true "Base64 encoded buffer"
// @Success 200 {object} utils.APIResponse{data=service.JobResult} "Raw data sent"
// @Failure 400 {object} utils.APIResponse "Invalid data"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Router /api/v1/print-raw [post]
func (h *PrintHandler) PrintRaw(c *gin.Context) {
	var req RawPrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorResponse(c, "invalid raw print request", err)
		return
	}

	role, err := roleParam(c, string(req.Role))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}
	data, err := req.Decode()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result, err := h.printService.PrintRaw(c.Request.Context(), role, data)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Raw data sent", result)
}

// PrintTest prints a diagnostic page
// @Summary Print test page
// @Tags Print
// @Produce json
// @Param role query string false "Printer role" Enums(receipt, kitchen) default(receipt)
// @Success 200 {object} utils.APIResponse{data=service.JobResult} "Test page printed"
// @Failure 412 {object} utils.APIResponse "No printer configured"
// @Failure 502 {object} utils.APIResponse "Printer unreachable"
// @Router /api/v1/print/test [post]
func (h *PrintHandler) PrintTest(c *gin.Context) {
	role, err := roleParam(c, string(model.RoleReceipt))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	result, err := h.printService.PrintTest(c.Request.Context(), role)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Test page printed", result)
}
