package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// ReceiptHandler handles receipt lookups. Receipts are read-only over HTTP;
// they are generated as part of payment execution.
type ReceiptHandler struct {
	Service *services.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(service *services.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{Service: service}
}

func (h *ReceiptHandler) authorize(c *gin.Context, receipt *models.Receipt) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleAdmin && receipt.UserID != userID {
		utils.Forbidden(c, "You are not authorized to view this receipt")
		return false
	}
	return true
}

// GetReceipt fetches one receipt by id.
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.authorize(c, receipt) {
		return
	}
	utils.Success(c, "Receipt fetched successfully", receipt)
}

// GetReceiptByNumber fetches one receipt by its receipt number.
func (h *ReceiptHandler) GetReceiptByNumber(c *gin.Context) {
	receipt, err := h.Service.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.authorize(c, receipt) {
		return
	}
	utils.Success(c, "Receipt fetched successfully", receipt)
}

// GetReceiptForPayment fetches the receipt belonging to a payment.
func (h *ReceiptHandler) GetReceiptForPayment(c *gin.Context) {
	receipt, err := h.Service.GetByPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.authorize(c, receipt) {
		return
	}
	utils.Success(c, "Receipt fetched successfully", receipt)
}

// GetReceiptsForUser lists the authenticated user's receipts.
func (h *ReceiptHandler) GetReceiptsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	receipts, err := h.Service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Receipts fetched successfully", receipts)
}

// GetReceiptsForAppointment lists the receipts linked to an appointment.
func (h *ReceiptHandler) GetReceiptsForAppointment(c *gin.Context) {
	receipts, err := h.Service.ListForAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Receipts fetched successfully", receipts)
}
