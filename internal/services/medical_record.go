package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hospital-app-server/internal/models"
)

// MedicalRecordService owns the medical-record aggregate and its clinical
// sub-records (diagnoses, treatments, prescriptions, lab results,
// attachments).
type MedicalRecordService struct {
	db *gorm.DB
}

// NewMedicalRecordService creates a new MedicalRecordService.
func NewMedicalRecordService(db *gorm.DB) *MedicalRecordService {
	return &MedicalRecordService{db: db}
}

// CreateRecordInput carries the fields for a new medical record. DoctorID is
// the authenticated author and must belong to a user with the doctor role.
type CreateRecordInput struct {
	PatientID  string
	DoctorID   string
	RecordType models.MedicalRecordType
	RecordDate time.Time
	Title      string
	Department string
	Summary    string
	Details    string
}

// CreateRecord creates a medical record after verifying both parties. Only
// a user with the doctor role may author records; no fallback identity is
// materialized for unknown author ids.
func (s *MedicalRecordService) CreateRecord(ctx context.Context, in CreateRecordInput) (*models.MedicalRecord, error) {
	var doctor models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND role = ?", in.DoctorID, models.RoleDoctor).
		First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, in.DoctorID)
		}
		return nil, err
	}

	var patient models.User
	err = s.db.WithContext(ctx).
		Where("id = ? AND role = ?", in.PatientID, models.RolePatient).
		First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: patient %s", ErrNotFound, in.PatientID)
		}
		return nil, err
	}

	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidArgument)
	}
	recordDate := in.RecordDate
	if recordDate.IsZero() {
		recordDate = time.Now()
	}

	record := models.MedicalRecord{
		PatientID:  in.PatientID,
		DoctorID:   in.DoctorID,
		RecordType: in.RecordType,
		RecordDate: recordDate,
		Title:      in.Title,
		Department: in.Department,
		Summary:    in.Summary,
		Details:    in.Details,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRecord fetches a record with its children preloaded.
func (s *MedicalRecordService) GetRecord(ctx context.Context, recordID string) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	err := s.db.WithContext(ctx).
		Preload("Diagnoses").
		Preload("Treatments").
		Preload("Prescriptions").
		Preload("LabResults").
		First(&record, "id = ?", recordID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: medical record %s", ErrNotFound, recordID)
		}
		return nil, err
	}
	return &record, nil
}

// ListForPatient returns a patient's records, newest first. A non-empty
// recordType narrows the listing to that record type.
func (s *MedicalRecordService) ListForPatient(ctx context.Context, patientID string, recordType models.MedicalRecordType) ([]models.MedicalRecord, error) {
	query := s.db.WithContext(ctx).Where("patient_id = ?", patientID)
	if recordType != "" {
		query = query.Where("record_type = ?", recordType)
	}

	var records []models.MedicalRecord
	err := query.Order("created_at desc").Find(&records).Error
	return records, err
}

// UpdateRecordInput carries the updatable record fields; empty values leave
// the current ones in place.
type UpdateRecordInput struct {
	Title      string
	Department string
	Summary    string
	Details    string
}

// UpdateRecord updates the record's own fields (never its children).
func (s *MedicalRecordService) UpdateRecord(ctx context.Context, recordID string, in UpdateRecordInput) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: medical record %s", ErrNotFound, recordID)
		}
		return nil, err
	}

	if in.Title != "" {
		record.Title = in.Title
	}
	if in.Department != "" {
		record.Department = in.Department
	}
	if in.Summary != "" {
		record.Summary = in.Summary
	}
	if in.Details != "" {
		record.Details = in.Details
	}

	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteRecord deletes a record and, through the cascade, all of its children.
func (s *MedicalRecordService) DeleteRecord(ctx context.Context, recordID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.MedicalRecord
		if err := tx.First(&record, "id = ?", recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: medical record %s", ErrNotFound, recordID)
			}
			return err
		}

		// Children are removed explicitly so the cascade does not depend on
		// the database honoring the FK constraint (AutoMigrate on older
		// MySQL setups can miss it).
		for _, child := range []interface{}{
			&models.Diagnosis{}, &models.Treatment{}, &models.Prescription{},
			&models.LabResult{}, &models.MedicalRecordAttachment{},
		} {
			if err := tx.Where("medical_record_id = ?", recordID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&record).Error
	})
}

func (s *MedicalRecordService) recordExists(ctx context.Context, recordID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.MedicalRecord{}).Where("id = ?", recordID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: medical record %s", ErrNotFound, recordID)
	}
	return nil
}

// -- Diagnoses --

// AddDiagnosis attaches a diagnosis to a record.
func (s *MedicalRecordService) AddDiagnosis(ctx context.Context, recordID string, d models.Diagnosis) (*models.Diagnosis, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	if d.Code == "" {
		return nil, fmt.Errorf("%w: diagnosis code is required", ErrInvalidArgument)
	}
	d.MedicalRecordID = recordID
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDiagnoses returns a record's diagnoses, newest first.
func (s *MedicalRecordService) ListDiagnoses(ctx context.Context, recordID string) ([]models.Diagnosis, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	var out []models.Diagnosis
	err := s.db.WithContext(ctx).
		Where("medical_record_id = ?", recordID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// DeleteDiagnosis removes one diagnosis.
func (s *MedicalRecordService) DeleteDiagnosis(ctx context.Context, diagnosisID string) error {
	res := s.db.WithContext(ctx).Delete(&models.Diagnosis{}, "id = ?", diagnosisID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: diagnosis %s", ErrNotFound, diagnosisID)
	}
	return nil
}

// -- Treatments --

func validateTreatment(t *models.Treatment) error {
	if t.TreatmentType == "" {
		return fmt.Errorf("%w: treatment type is required", ErrInvalidArgument)
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return fmt.Errorf("%w: treatment end date precedes start date", ErrInvalidArgument)
	}
	return nil
}

// AddTreatment attaches a treatment to a record after validating date order.
func (s *MedicalRecordService) AddTreatment(ctx context.Context, recordID string, t models.Treatment) (*models.Treatment, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	if err := validateTreatment(&t); err != nil {
		return nil, err
	}
	t.MedicalRecordID = recordID
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTreatment replaces a treatment's fields after re-validating.
func (s *MedicalRecordService) UpdateTreatment(ctx context.Context, treatmentID string, in models.Treatment) (*models.Treatment, error) {
	var t models.Treatment
	if err := s.db.WithContext(ctx).First(&t, "id = ?", treatmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: treatment %s", ErrNotFound, treatmentID)
		}
		return nil, err
	}

	t.TreatmentType = in.TreatmentType
	t.Details = in.Details
	t.StartDate = in.StartDate
	t.EndDate = in.EndDate
	if err := validateTreatment(&t); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTreatments returns a record's treatments, newest first.
func (s *MedicalRecordService) ListTreatments(ctx context.Context, recordID string) ([]models.Treatment, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	var out []models.Treatment
	err := s.db.WithContext(ctx).
		Where("medical_record_id = ?", recordID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// DeleteTreatment removes one treatment.
func (s *MedicalRecordService) DeleteTreatment(ctx context.Context, treatmentID string) error {
	res := s.db.WithContext(ctx).Delete(&models.Treatment{}, "id = ?", treatmentID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: treatment %s", ErrNotFound, treatmentID)
	}
	return nil
}

// -- Prescriptions --

func validatePrescription(p *models.Prescription) error {
	if p.DrugName == "" {
		return fmt.Errorf("%w: drug name is required", ErrInvalidArgument)
	}
	if p.DurationDays <= 0 {
		return fmt.Errorf("%w: prescription duration must be a positive number of days", ErrInvalidArgument)
	}
	return nil
}

// AddPrescription attaches a prescription to a record after validating the
// duration.
func (s *MedicalRecordService) AddPrescription(ctx context.Context, recordID string, p models.Prescription) (*models.Prescription, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	if err := validatePrescription(&p); err != nil {
		return nil, err
	}
	p.MedicalRecordID = recordID
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePrescription replaces a prescription's fields after re-validating.
func (s *MedicalRecordService) UpdatePrescription(ctx context.Context, prescriptionID string, in models.Prescription) (*models.Prescription, error) {
	var p models.Prescription
	if err := s.db.WithContext(ctx).First(&p, "id = ?", prescriptionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: prescription %s", ErrNotFound, prescriptionID)
		}
		return nil, err
	}

	p.DrugName = in.DrugName
	p.Dosage = in.Dosage
	p.Frequency = in.Frequency
	p.DurationDays = in.DurationDays
	if err := validatePrescription(&p); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPrescriptions returns a record's prescriptions, newest first.
func (s *MedicalRecordService) ListPrescriptions(ctx context.Context, recordID string) ([]models.Prescription, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	var out []models.Prescription
	err := s.db.WithContext(ctx).
		Where("medical_record_id = ?", recordID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// DeletePrescription removes one prescription.
func (s *MedicalRecordService) DeletePrescription(ctx context.Context, prescriptionID string) error {
	res := s.db.WithContext(ctx).Delete(&models.Prescription{}, "id = ?", prescriptionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: prescription %s", ErrNotFound, prescriptionID)
	}
	return nil
}

// -- Lab results --

// AddLabResult attaches a lab result to a record.
func (s *MedicalRecordService) AddLabResult(ctx context.Context, recordID string, l models.LabResult) (*models.LabResult, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	if l.TestName == "" {
		return nil, fmt.Errorf("%w: test name is required", ErrInvalidArgument)
	}
	l.MedicalRecordID = recordID
	if err := s.db.WithContext(ctx).Create(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLabResults returns a record's lab results, newest first.
func (s *MedicalRecordService) ListLabResults(ctx context.Context, recordID string) ([]models.LabResult, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	var out []models.LabResult
	err := s.db.WithContext(ctx).
		Where("medical_record_id = ?", recordID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// DeleteLabResult removes one lab result.
func (s *MedicalRecordService) DeleteLabResult(ctx context.Context, labResultID string) error {
	res := s.db.WithContext(ctx).Delete(&models.LabResult{}, "id = ?", labResultID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: lab result %s", ErrNotFound, labResultID)
	}
	return nil
}

// -- Attachments --

// AddAttachment stores an uploaded file under a record.
func (s *MedicalRecordService) AddAttachment(ctx context.Context, recordID, fileName, fileType string, data []byte) (*models.MedicalRecordAttachment, error) {
	if err := s.recordExists(ctx, recordID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: attachment file is empty", ErrInvalidArgument)
	}
	attachment := models.MedicalRecordAttachment{
		MedicalRecordID: recordID,
		FileName:        fileName,
		FileType:        fileType,
		FileData:        data,
	}
	if err := s.db.WithContext(ctx).Create(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// GetAttachment fetches one attachment with its file data.
func (s *MedicalRecordService) GetAttachment(ctx context.Context, attachmentID string) (*models.MedicalRecordAttachment, error) {
	var attachment models.MedicalRecordAttachment
	if err := s.db.WithContext(ctx).First(&attachment, "id = ?", attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: attachment %s", ErrNotFound, attachmentID)
		}
		return nil, err
	}
	return &attachment, nil
}
