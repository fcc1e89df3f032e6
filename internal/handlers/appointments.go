package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Service *services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Service: service}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	DoctorID        string           `json:"doctorId" binding:"required,uuid"`
	PatientID       string           `json:"patientId" binding:"required,uuid"`
	StartTime       time.Time        `json:"startTime" binding:"required"`
	EndTime         *time.Time       `json:"endTime"`
	Reason          string           `json:"reason" binding:"required"`
	Notes           string           `json:"notes"`
	ConsultationFee *decimal.Decimal `json:"consultationFee"`
}

// CreateAppointment handles creating a new appointment.
// Typically initiated by a patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	requestingUserID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in token")
		return
	}
	// Patients may only book for themselves; doctors/admins may book on a
	// patient's behalf.
	requestingUserRole, _ := middleware.GetUserRoleFromContext(c)
	if requestingUserRole == models.RolePatient && requestingUserID != req.PatientID {
		utils.Forbidden(c, "Patients can only book appointments for themselves.")
		return
	}

	view, err := h.Service.Create(c.Request.Context(), services.CreateAppointmentInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
		Notes:     req.Notes,
		Fee:       req.ConsultationFee,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", view)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in user (patient or doctor).
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var views []models.AppointmentView
	var err error
	switch userRole {
	case models.RolePatient:
		views, err = h.Service.ListForPatient(c.Request.Context(), userID)
	case models.RoleDoctor:
		views, err = h.Service.ListForDoctor(c.Request.Context(), userID)
	case models.RoleAdmin:
		views, err = h.Service.ListAll(c.Request.Context())
	default:
		utils.Forbidden(c, "User role not permitted to view appointments")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", views)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by involved patient, doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	view, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	isPatientInvolved := userID == view.PatientID
	isDoctorInvolved := userID == view.DoctorID
	if userRole != models.RoleAdmin && !isPatientInvolved && !isDoctorInvolved {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", view)
}

// UpdateAppointmentStatusRequest represents the request body for updating an appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"` // Optional notes for status change (e.g., cancellation reason)
}

// UpdateAppointmentStatus handles updating the status of an appointment.
// Restricted to doctors and admins; patients cancel through the cancel endpoint.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// CancelAppointment handles a patient cancelling their own appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appointment)
}
