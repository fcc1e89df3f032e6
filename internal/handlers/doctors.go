package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
	"hospital-app-server/internal/utils"
)

// DoctorHandler handles the doctor directory and admin-side profile management.
type DoctorHandler struct {
	DB *gorm.DB
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db}
}

// GetDoctors lists the doctor directory. Optional query filters:
// ?specialization=... and ?available=true.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	query := h.DB.Model(&models.DoctorProfile{}).Preload("User")
	if spec := c.Query("specialization"); spec != "" {
		query = query.Where("specialization = ?", spec)
	}
	if c.Query("available") == "true" {
		query = query.Where("available = ?", true)
	}

	var profiles []models.DoctorProfile
	if err := query.Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors")
		return
	}

	views := make([]models.DoctorView, len(profiles))
	for i, p := range profiles {
		views[i] = p.View(&p.User)
	}

	utils.Success(c, "Doctors fetched successfully", views)
}

// GetDoctorByID fetches one doctor directory entry.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	doctorID := c.Param("id")

	var profile models.DoctorProfile
	err := h.DB.Preload("User").Where("user_id = ?", doctorID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	utils.Success(c, "Doctor fetched successfully", profile.View(&profile.User))
}

// CreateDoctorRequest represents the request body for registering a doctor (admin).
type CreateDoctorRequest struct {
	FirstName       string          `json:"firstName" binding:"required"`
	LastName        string          `json:"lastName" binding:"required"`
	Email           string          `json:"email" binding:"required,email"`
	Password        string          `json:"password" binding:"required,min=8"`
	Specialization  string          `json:"specialization" binding:"required"`
	LicenseNumber   string          `json:"licenseNumber"`
	ConsultationFee decimal.Decimal `json:"consultationFee" binding:"required"`
	Bio             string          `json:"bio"`
}

// CreateDoctor creates a doctor account and its profile in one transaction (admin).
func (h *DoctorHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error")
		return
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      models.RoleDoctor,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password")
		return
	}

	profile := models.DoctorProfile{
		Specialization:  req.Specialization,
		LicenseNumber:   req.LicenseNumber,
		ConsultationFee: req.ConsultationFee,
		Available:       true,
		Bio:             req.Bio,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(&profile).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create doctor")
		return
	}

	utils.Created(c, "Doctor created successfully", profile.View(&user))
}

// UpdateDoctorRequest represents the request body for updating a doctor profile (admin).
type UpdateDoctorRequest struct {
	Specialization  string           `json:"specialization"`
	LicenseNumber   string           `json:"licenseNumber"`
	ConsultationFee *decimal.Decimal `json:"consultationFee"`
	Available       *bool            `json:"available"`
	Bio             string           `json:"bio"`
}

// UpdateDoctor updates a doctor's profile fields (admin).
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var profile models.DoctorProfile
	err := h.DB.Preload("User").Where("user_id = ?", doctorID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	if req.Specialization != "" {
		profile.Specialization = req.Specialization
	}
	if req.LicenseNumber != "" {
		profile.LicenseNumber = req.LicenseNumber
	}
	if req.ConsultationFee != nil {
		profile.ConsultationFee = *req.ConsultationFee
	}
	if req.Available != nil {
		profile.Available = *req.Available
	}
	if req.Bio != "" {
		profile.Bio = req.Bio
	}

	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor profile")
		return
	}

	utils.Success(c, "Doctor updated successfully", profile.View(&profile.User))
}

// DeleteDoctor removes a doctor's profile and account (admin).
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var profile models.DoctorProfile
	err := h.DB.Where("user_id = ?", doctorID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error")
		}
		return
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&profile).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", doctorID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete doctor")
		return
	}

	utils.Success(c, "Doctor deleted successfully", nil)
}
