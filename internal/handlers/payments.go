package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// PaymentHandler handles payment related requests.
type PaymentHandler struct {
	Service *services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: service}
}

// CreatePaymentRequest represents the request body for opening a payment intent.
type CreatePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Currency      string          `json:"currency" binding:"required,len=3"`
	Description   string          `json:"description"`
	ReturnURL     string          `json:"returnUrl" binding:"required,url"`
	CancelURL     string          `json:"cancelUrl" binding:"required,url"`
	Method        string          `json:"method"`
	AppointmentID *string         `json:"appointmentId"`
}

// CreatePayment opens a payment intent with the gateway and returns the
// approval redirect URL alongside the local payment record.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	method := req.Method
	if method == "" {
		method = "paypal"
	}

	payment, err := h.Service.Create(c.Request.Context(), services.CreatePaymentInput{
		UserID:        userID,
		AppointmentID: req.AppointmentID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
		ReturnURL:     req.ReturnURL,
		CancelURL:     req.CancelURL,
		Method:        method,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Payment created successfully", payment)
}

// ExecutePaymentRequest represents the request body for finalizing a payment
// after the payer approved it on the gateway side.
type ExecutePaymentRequest struct {
	PaymentID string `json:"paymentId" binding:"required"` // gateway payment id
	PayerID   string `json:"payerId" binding:"required"`
}

// ExecutePayment finalizes an approved payment and generates its receipt.
func (h *PaymentHandler) ExecutePayment(c *gin.Context) {
	var req ExecutePaymentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	payment, err := h.Service.Execute(c.Request.Context(), req.PaymentID, req.PayerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Payment completed successfully", payment)
}

// CancelPayment marks a not-yet-completed payment as cancelled. The path
// parameter is the gateway payment id, matching the id the payer comes back
// with on the cancel redirect.
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	payment, err := h.Service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Payment cancelled successfully", payment)
}

// GetPayment fetches a single payment. Accessible by its owner or an admin.
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RoleAdmin && payment.UserID != userID {
		utils.Forbidden(c, "You are not authorized to view this payment")
		return
	}

	utils.Success(c, "Payment fetched successfully", payment)
}

// GetPaymentsForUser lists the authenticated user's payments.
func (h *PaymentHandler) GetPaymentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	payments, err := h.Service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Payments fetched successfully", payments)
}

// GetPaymentsForAppointment lists the payments linked to an appointment.
func (h *PaymentHandler) GetPaymentsForAppointment(c *gin.Context) {
	payments, err := h.Service.ListForAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Payments fetched successfully", payments)
}
