package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-app-server/internal/models"
)

var testDBSeq atomic.Int64

// openTestDB gives each test its own in-memory database with the full schema.
// Each database gets a unique name so pooled connections see the same tables
// without tests sharing state.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createTestPatient(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	patient := &models.User{
		FirstName: "Pat",
		LastName:  "Smith",
		Email:     email,
		Role:      models.RolePatient,
	}
	if err := patient.SetPassword("password123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := db.Create(patient).Error; err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return patient
}

func createTestDoctor(t *testing.T, db *gorm.DB, email string, fee string, available bool) *models.User {
	t.Helper()

	doctor := &models.User{
		FirstName: "Greg",
		LastName:  "House",
		Email:     email,
		Role:      models.RoleDoctor,
	}
	if err := doctor.SetPassword("password123"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := db.Create(doctor).Error; err != nil {
		t.Fatalf("create doctor: %v", err)
	}

	profile := &models.DoctorProfile{
		UserID:          doctor.ID,
		Specialization:  "Cardiology",
		LicenseNumber:   "LIC-" + doctor.ID[:8],
		ConsultationFee: decimal.RequireFromString(fee),
		Available:       available,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create doctor profile: %v", err)
	}
	doctor.DoctorProfile = profile
	return doctor
}

func futureTime(hours int) time.Time {
	return time.Now().Add(time.Duration(hours) * time.Hour)
}
