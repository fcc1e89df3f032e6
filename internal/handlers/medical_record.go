package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/middleware"
	"hospital-app-server/internal/models"
	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// MedicalRecordHandler handles medical record related requests.
type MedicalRecordHandler struct {
	Service *services.MedicalRecordService
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(service *services.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{Service: service}
}

// CreateMedicalRecordRequest represents the request body for creating a medical record.
type CreateMedicalRecordRequest struct {
	PatientID  string                   `json:"patientId" binding:"required,uuid"`
	RecordType models.MedicalRecordType `json:"recordType" binding:"required"`
	RecordDate *time.Time               `json:"recordDate"`
	Title      string                   `json:"title" binding:"required"`
	Department string                   `json:"department"`
	Summary    string                   `json:"summary" binding:"required"`
	Details    string                   `json:"details"`
}

// CreateMedicalRecord handles creating a new medical record.
// Only accessible by doctors; the author is the authenticated doctor.
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	var req CreateMedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Doctor ID not found in token")
		return
	}

	recordDate := time.Now()
	if req.RecordDate != nil {
		recordDate = *req.RecordDate
	}

	record, err := h.Service.CreateRecord(c.Request.Context(), services.CreateRecordInput{
		PatientID:  req.PatientID,
		DoctorID:   doctorID,
		RecordType: req.RecordType,
		RecordDate: recordDate,
		Title:      req.Title,
		Department: req.Department,
		Summary:    req.Summary,
		Details:    req.Details,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Medical record created successfully", record)
}

// canAccessRecord checks whether the requester is the record's patient, its
// authoring doctor, or an admin.
func canAccessRecord(c *gin.Context, record *models.MedicalRecord) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleAdmin {
		return true
	}
	if userRole == models.RoleDoctor {
		return true
	}
	return record.PatientID == userID
}

// GetMedicalRecordByID handles fetching a single record with its children.
func (h *MedicalRecordHandler) GetMedicalRecordByID(c *gin.Context) {
	record, err := h.Service.GetRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !canAccessRecord(c, record) {
		utils.Forbidden(c, "You are not authorized to view this medical record")
		return
	}
	utils.Success(c, "Medical record fetched successfully", record)
}

// GetMedicalRecordsForPatient handles fetching medical records for a specific patient.
// Accessible by the patient themselves, doctors, or admins.
func (h *MedicalRecordHandler) GetMedicalRecordsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RolePatient && userID != patientID {
		utils.Forbidden(c, "Patients can only view their own medical records")
		return
	}

	recordType := models.MedicalRecordType(c.Query("recordType"))
	records, err := h.Service.ListForPatient(c.Request.Context(), patientID, recordType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Medical records fetched successfully", records)
}

// UpdateMedicalRecordRequest represents the request body for updating a record.
type UpdateMedicalRecordRequest struct {
	Title      string `json:"title"`
	Department string `json:"department"`
	Summary    string `json:"summary"`
	Details    string `json:"details"`
}

// UpdateMedicalRecord handles updating a record's own fields.
func (h *MedicalRecordHandler) UpdateMedicalRecord(c *gin.Context) {
	var req UpdateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	record, err := h.Service.UpdateRecord(c.Request.Context(), c.Param("id"), services.UpdateRecordInput{
		Title:      req.Title,
		Department: req.Department,
		Summary:    req.Summary,
		Details:    req.Details,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Medical record updated successfully", record)
}

// DeleteMedicalRecord handles deleting a record and all of its children.
func (h *MedicalRecordHandler) DeleteMedicalRecord(c *gin.Context) {
	if err := h.Service.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Medical record deleted successfully", nil)
}

// -- Diagnoses --

// DiagnosisRequest represents the request body for adding a diagnosis.
type DiagnosisRequest struct {
	Code        string     `json:"code" binding:"required"`
	Description string     `json:"description"`
	OnsetDate   *time.Time `json:"onsetDate"`
}

// AddDiagnosis attaches a diagnosis to a medical record.
func (h *MedicalRecordHandler) AddDiagnosis(c *gin.Context) {
	var req DiagnosisRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	diagnosis, err := h.Service.AddDiagnosis(c.Request.Context(), c.Param("id"), models.Diagnosis{
		Code:        req.Code,
		Description: req.Description,
		OnsetDate:   req.OnsetDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Diagnosis added successfully", diagnosis)
}

// ListDiagnoses lists a record's diagnoses.
func (h *MedicalRecordHandler) ListDiagnoses(c *gin.Context) {
	diagnoses, err := h.Service.ListDiagnoses(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Diagnoses fetched successfully", diagnoses)
}

// DeleteDiagnosis removes one diagnosis.
func (h *MedicalRecordHandler) DeleteDiagnosis(c *gin.Context) {
	if err := h.Service.DeleteDiagnosis(c.Request.Context(), c.Param("diagnosisId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Diagnosis deleted successfully", nil)
}

// -- Treatments --

// TreatmentRequest represents the request body for adding or updating a treatment.
type TreatmentRequest struct {
	TreatmentType string     `json:"treatmentType" binding:"required"`
	Details       string     `json:"details"`
	StartDate     *time.Time `json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
}

func (r *TreatmentRequest) model() models.Treatment {
	return models.Treatment{
		TreatmentType: r.TreatmentType,
		Details:       r.Details,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
	}
}

// AddTreatment attaches a treatment to a medical record.
func (h *MedicalRecordHandler) AddTreatment(c *gin.Context) {
	var req TreatmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	treatment, err := h.Service.AddTreatment(c.Request.Context(), c.Param("id"), req.model())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Treatment added successfully", treatment)
}

// UpdateTreatment replaces a treatment's fields.
func (h *MedicalRecordHandler) UpdateTreatment(c *gin.Context) {
	var req TreatmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	treatment, err := h.Service.UpdateTreatment(c.Request.Context(), c.Param("treatmentId"), req.model())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Treatment updated successfully", treatment)
}

// ListTreatments lists a record's treatments.
func (h *MedicalRecordHandler) ListTreatments(c *gin.Context) {
	treatments, err := h.Service.ListTreatments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Treatments fetched successfully", treatments)
}

// DeleteTreatment removes one treatment.
func (h *MedicalRecordHandler) DeleteTreatment(c *gin.Context) {
	if err := h.Service.DeleteTreatment(c.Request.Context(), c.Param("treatmentId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Treatment deleted successfully", nil)
}

// -- Prescriptions --

// PrescriptionRequest represents the request body for adding or updating a prescription.
type PrescriptionRequest struct {
	DrugName     string `json:"drugName" binding:"required"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	DurationDays int    `json:"durationDays" binding:"required"`
}

func (r *PrescriptionRequest) model() models.Prescription {
	return models.Prescription{
		DrugName:     r.DrugName,
		Dosage:       r.Dosage,
		Frequency:    r.Frequency,
		DurationDays: r.DurationDays,
	}
}

// AddPrescription attaches a prescription to a medical record.
func (h *MedicalRecordHandler) AddPrescription(c *gin.Context) {
	var req PrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prescription, err := h.Service.AddPrescription(c.Request.Context(), c.Param("id"), req.model())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Prescription added successfully", prescription)
}

// UpdatePrescription replaces a prescription's fields.
func (h *MedicalRecordHandler) UpdatePrescription(c *gin.Context) {
	var req PrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prescription, err := h.Service.UpdatePrescription(c.Request.Context(), c.Param("prescriptionId"), req.model())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescription updated successfully", prescription)
}

// ListPrescriptions lists a record's prescriptions.
func (h *MedicalRecordHandler) ListPrescriptions(c *gin.Context) {
	prescriptions, err := h.Service.ListPrescriptions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}

// DeletePrescription removes one prescription.
func (h *MedicalRecordHandler) DeletePrescription(c *gin.Context) {
	if err := h.Service.DeletePrescription(c.Request.Context(), c.Param("prescriptionId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Prescription deleted successfully", nil)
}

// -- Lab results --

// LabResultRequest represents the request body for adding a lab result.
type LabResultRequest struct {
	TestName       string     `json:"testName" binding:"required"`
	ResultValue    string     `json:"resultValue" binding:"required"`
	Unit           string     `json:"unit"`
	ReferenceRange string     `json:"referenceRange"`
	PerformedAt    *time.Time `json:"performedAt"`
}

// AddLabResult attaches a lab result to a medical record.
func (h *MedicalRecordHandler) AddLabResult(c *gin.Context) {
	var req LabResultRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	labResult, err := h.Service.AddLabResult(c.Request.Context(), c.Param("id"), models.LabResult{
		TestName:       req.TestName,
		ResultValue:    req.ResultValue,
		Unit:           req.Unit,
		ReferenceRange: req.ReferenceRange,
		PerformedAt:    req.PerformedAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Lab result added successfully", labResult)
}

// ListLabResults lists a record's lab results.
func (h *MedicalRecordHandler) ListLabResults(c *gin.Context) {
	labResults, err := h.Service.ListLabResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Lab results fetched successfully", labResults)
}

// DeleteLabResult removes one lab result.
func (h *MedicalRecordHandler) DeleteLabResult(c *gin.Context) {
	if err := h.Service.DeleteLabResult(c.Request.Context(), c.Param("labResultId")); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Lab result deleted successfully", nil)
}

// -- Attachments --

// UploadMedicalRecordAttachment stores an uploaded file under a record
// (multipart form, field "file").
func (h *MedicalRecordHandler) UploadMedicalRecordAttachment(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "Missing file upload: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerError(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalServerError(c, "Failed to read uploaded file")
		return
	}

	attachment, err := h.Service.AddAttachment(
		c.Request.Context(),
		c.Param("id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Attachment uploaded successfully", attachment)
}

// GetMedicalRecordAttachment streams an attachment's file content.
func (h *MedicalRecordHandler) GetMedicalRecordAttachment(c *gin.Context) {
	attachment, err := h.Service.GetAttachment(c.Request.Context(), c.Param("attachmentId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+attachment.FileName+`"`)
	c.Data(http.StatusOK, attachment.FileType, attachment.FileData)
}
