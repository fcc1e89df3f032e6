package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"hospital-app-server/internal/models"
)

func TestCreateAppointmentDefaultsFeeFromDoctorProfile(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	doctor := createTestDoctor(t, db, "doc@example.com", "150.00", true)
	patient := createTestPatient(t, db, "pat@example.com")

	view, err := svc.Create(context.Background(), CreateAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: futureTime(24),
		Reason:    "Chest pain",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if view.Status != models.AppointmentPending {
		t.Errorf("status = %s, want PENDING", view.Status)
	}
	if !view.ConsultationFee.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("fee = %s, want 150.00", view.ConsultationFee)
	}
	if view.DoctorName != "Greg House" {
		t.Errorf("doctor name = %q, want %q", view.DoctorName, "Greg House")
	}
	if view.DoctorSpecialization != "Cardiology" {
		t.Errorf("specialization = %q, want Cardiology", view.DoctorSpecialization)
	}
}

func TestCreateAppointmentExplicitFeeWins(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	doctor := createTestDoctor(t, db, "doc@example.com", "150.00", true)
	patient := createTestPatient(t, db, "pat@example.com")

	fee := decimal.RequireFromString("99.50")
	view, err := svc.Create(context.Background(), CreateAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: futureTime(24),
		Fee:       &fee,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !view.ConsultationFee.Equal(fee) {
		t.Errorf("fee = %s, want 99.50", view.ConsultationFee)
	}
}

func TestCreateAppointmentUnavailableDoctor(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	doctor := createTestDoctor(t, db, "doc@example.com", "150.00", false)
	patient := createTestPatient(t, db, "pat@example.com")

	_, err := svc.Create(context.Background(), CreateAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: futureTime(24),
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}

	var count int64
	db.Model(&models.Appointment{}).Count(&count)
	if count != 0 {
		t.Errorf("appointment count = %d, want 0", count)
	}
}

func TestCreateAppointmentUnknownDoctor(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	patient := createTestPatient(t, db, "pat@example.com")

	_, err := svc.Create(context.Background(), CreateAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  "00000000-0000-0000-0000-000000000000",
		StartTime: futureTime(24),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateAppointmentRejectsPastTime(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	doctor := createTestDoctor(t, db, "doc@example.com", "150.00", true)
	patient := createTestPatient(t, db, "pat@example.com")

	_, err := svc.Create(context.Background(), CreateAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: futureTime(-2),
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestUpdateAppointmentStatus(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	doctor := createTestDoctor(t, db, "doc@example.com", "150.00", true)
	patient := createTestPatient(t, db, "pat@example.com")

	view, err := svc.Create(context.Background(), CreateAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: futureTime(24),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Status strings match case-insensitively.
	updated, err := svc.UpdateStatus(context.Background(), view.ID, "confirmed", "")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.AppointmentConfirmed {
		t.Errorf("status = %s, want CONFIRMED", updated.Status)
	}

	updated, err = svc.UpdateStatus(context.Background(), view.ID, "COMPLETED", "seen and discharged")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Notes != "seen and discharged" {
		t.Errorf("notes = %q, want %q", updated.Notes, "seen and discharged")
	}

	// COMPLETED is terminal.
	_, err = svc.UpdateStatus(context.Background(), view.ID, "CANCELLED", "")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestUpdateAppointmentStatusUnknownStatus(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	_, err := svc.UpdateStatus(context.Background(), "whatever", "RESCHEDULED", "")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestCancelAppointmentOwnerOnly(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	doctor := createTestDoctor(t, db, "doc@example.com", "150.00", true)
	patient := createTestPatient(t, db, "pat@example.com")
	otherPatient := createTestPatient(t, db, "other@example.com")

	view, err := svc.Create(context.Background(), CreateAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		StartTime: futureTime(24),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Cancel(context.Background(), view.ID, otherPatient.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel by stranger: err = %v, want ErrInvalidState", err)
	}

	cancelled, err := svc.Cancel(context.Background(), view.ID, patient.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.AppointmentCancelled {
		t.Errorf("status = %s, want CANCELLED", cancelled.Status)
	}

	// Cancelling twice fails: CANCELLED is terminal.
	_, err = svc.Cancel(context.Background(), view.ID, patient.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double cancel: err = %v, want ErrInvalidState", err)
	}
}

func TestGetAppointmentUnknownDoctorDegrades(t *testing.T) {
	db := openTestDB(t)
	svc := NewAppointmentService(db)

	appointment := models.Appointment{
		PatientID: "p-1",
		DoctorID:  "gone",
		StartTime: futureTime(24),
		Status:    models.AppointmentPending,
	}
	if err := db.Create(&appointment).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	view, err := svc.Get(context.Background(), appointment.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.DoctorName != "Unknown" || view.DoctorSpecialization != "Unknown" {
		t.Errorf("dangling doctor should degrade to Unknown, got %q/%q", view.DoctorName, view.DoctorSpecialization)
	}
}
