package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hospital-app-server/internal/models"
)

// AppointmentService owns the appointment lifecycle: booking, status
// transitions and listings enriched with doctor display data.
type AppointmentService struct {
	db *gorm.DB
}

// NewAppointmentService creates a new AppointmentService.
func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db}
}

// CreateAppointmentInput carries the booking parameters. Fee is optional;
// when nil the doctor's standard consultation fee applies.
type CreateAppointmentInput struct {
	PatientID string
	DoctorID  string
	StartTime time.Time
	EndTime   *time.Time
	Reason    string
	Notes     string
	Fee       *decimal.Decimal
}

// Create books a new appointment in PENDING state after checking that the
// doctor exists and is currently taking appointments.
func (s *AppointmentService) Create(ctx context.Context, in CreateAppointmentInput) (*models.AppointmentView, error) {
	var doctor models.User
	err := s.db.WithContext(ctx).
		Preload("DoctorProfile").
		Where("id = ? AND role = ?", in.DoctorID, models.RoleDoctor).
		First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, in.DoctorID)
		}
		return nil, err
	}
	if doctor.DoctorProfile == nil {
		return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, in.DoctorID)
	}
	if !doctor.DoctorProfile.Available {
		return nil, fmt.Errorf("%w: doctor %s is not accepting appointments", ErrInvalidState, in.DoctorID)
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

	if in.StartTime.Before(time.Now()) {
		return nil, fmt.Errorf("%w: appointment time must be in the future", ErrInvalidArgument)
	}

	fee := doctor.DoctorProfile.ConsultationFee
	if in.Fee != nil {
		fee = *in.Fee
	}

	appointment := models.Appointment{
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Status:          models.AppointmentPending,
		ConsultationFee: fee,
		Reason:          in.Reason,
		Notes:           in.Notes,
	}

	if err := s.db.WithContext(ctx).Create(&appointment).Error; err != nil {
		return nil, err
	}

	view := s.enrich(ctx, appointment)
	return &view, nil
}

// UpdateStatus applies a status transition. The target status string is
// matched case-insensitively against the enumeration; transitions outside
// the table are rejected.
func (s *AppointmentService) UpdateStatus(ctx context.Context, appointmentID, rawStatus, notes string) (*models.Appointment, error) {
	newStatus, ok := models.ParseAppointmentStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: unknown appointment status %q", ErrInvalidArgument, rawStatus)
	}

	var appointment models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appointment, "id = ?", appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: appointment %s", ErrNotFound, appointmentID)
			}
			return err
		}

		if !appointment.Status.CanTransitionTo(newStatus) {
			return fmt.Errorf("%w: cannot move appointment from %s to %s",
				ErrInvalidState, appointment.Status, newStatus)
		}

		appointment.Status = newStatus
		if notes != "" {
			appointment.Notes = notes
		}
		return tx.Save(&appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Cancel cancels an appointment on behalf of its own patient. Requests from
// anyone else fail without touching the record.
func (s *AppointmentService) Cancel(ctx context.Context, appointmentID, requestingPatientID string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appointment, "id = ?", appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: appointment %s", ErrNotFound, appointmentID)
			}
			return err
		}

		if appointment.PatientID != requestingPatientID {
			return fmt.Errorf("%w: appointment belongs to another patient", ErrInvalidState)
		}
		if !appointment.Status.CanTransitionTo(models.AppointmentCancelled) {
			return fmt.Errorf("%w: cannot cancel appointment in status %s",
				ErrInvalidState, appointment.Status)
		}

		appointment.Status = models.AppointmentCancelled
		return tx.Save(&appointment).Error
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

// Get fetches one appointment enriched with doctor display fields.
func (s *AppointmentService) Get(ctx context.Context, appointmentID string) (*models.AppointmentView, error) {
	var appointment models.Appointment
	if err := s.db.WithContext(ctx).First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, appointmentID)
		}
		return nil, err
	}
	view := s.enrich(ctx, appointment)
	return &view, nil
}

// ListForPatient returns a patient's appointments, newest start time first.
func (s *AppointmentService) ListForPatient(ctx context.Context, patientID string) ([]models.AppointmentView, error) {
	return s.list(ctx, "patient_id = ?", patientID)
}

// ListForDoctor returns a doctor's appointments, newest start time first.
func (s *AppointmentService) ListForDoctor(ctx context.Context, doctorID string) ([]models.AppointmentView, error) {
	return s.list(ctx, "doctor_id = ?", doctorID)
}

// ListAll returns every appointment (admin view).
func (s *AppointmentService) ListAll(ctx context.Context) ([]models.AppointmentView, error) {
	return s.list(ctx, "")
}

func (s *AppointmentService) list(ctx context.Context, cond string, args ...interface{}) ([]models.AppointmentView, error) {
	var appointments []models.Appointment
	query := s.db.WithContext(ctx).Order("start_time desc")
	if cond != "" {
		query = query.Where(cond, args...)
	}
	if err := query.Find(&appointments).Error; err != nil {
		return nil, err
	}

	views := make([]models.AppointmentView, len(appointments))
	for i, a := range appointments {
		views[i] = s.enrich(ctx, a)
	}
	return views, nil
}

// enrich joins doctor display fields onto the appointment. A dangling doctor
// id (data anomaly) degrades to placeholders instead of failing the listing.
func (s *AppointmentService) enrich(ctx context.Context, a models.Appointment) models.AppointmentView {
	view := models.AppointmentView{
		Appointment:          a,
		DoctorName:           "Unknown",
		DoctorSpecialization: "Unknown",
	}

	var doctor models.User
	err := s.db.WithContext(ctx).
		Preload("DoctorProfile").
		First(&doctor, "id = ?", a.DoctorID).Error
	if err != nil {
		return view
	}

	view.DoctorName = doctor.FullName()
	if doctor.DoctorProfile != nil {
		view.DoctorSpecialization = doctor.DoctorProfile.Specialization
	}
	return view
}
