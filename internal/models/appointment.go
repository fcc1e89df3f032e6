package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCancelled AppointmentStatus = "CANCELLED"
	AppointmentCompleted AppointmentStatus = "COMPLETED"
)

// appointmentTransitions is the allowed transition table. CANCELLED and
// COMPLETED are terminal; re-booking a cancelled appointment means creating
// a new one.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentPending:   {AppointmentConfirmed, AppointmentCancelled, AppointmentCompleted},
	AppointmentConfirmed: {AppointmentCompleted, AppointmentCancelled},
}

// CanTransitionTo reports whether moving from s to next is a legal status change.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transition.
func (s AppointmentStatus) IsTerminal() bool {
	return len(appointmentTransitions[s]) == 0
}

// ParseAppointmentStatus matches a status string case-insensitively against
// the known enumeration.
func ParseAppointmentStatus(raw string) (AppointmentStatus, bool) {
	switch AppointmentStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case AppointmentPending:
		return AppointmentPending, true
	case AppointmentConfirmed:
		return AppointmentConfirmed, true
	case AppointmentCancelled:
		return AppointmentCancelled, true
	case AppointmentCompleted:
		return AppointmentCompleted, true
	}
	return "", false
}

// Appointment represents a scheduled patient/doctor meeting
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string            `gorm:"size:36;index;not null" json:"doctorId"`
	StartTime       time.Time         `json:"startTime"`
	EndTime         *time.Time        `json:"endTime,omitempty"`
	Status          AppointmentStatus `gorm:"size:20;default:'PENDING'" json:"status"`
	ConsultationFee decimal.Decimal   `gorm:"type:decimal(10,2)" json:"consultationFee"`
	Reason          string            `gorm:"size:255" json:"reason"`
	Notes           string            `gorm:"type:text" json:"notes"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}

// AppointmentView enriches an appointment with doctor display fields for
// responses. The join is read-side only; nothing here is stored redundantly.
type AppointmentView struct {
	Appointment
	DoctorName           string `json:"doctorName"`
	DoctorSpecialization string `json:"doctorSpecialization"`
}
