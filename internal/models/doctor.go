package models

import (
	"github.com/shopspring/decimal"
)

// DoctorProfile holds the doctor-specific attributes of a user with the
// doctor role. The users table plus this profile is the single source of
// truth for doctor identity; no separate doctor account table exists.
type DoctorProfile struct {
	BaseModel
	UserID          string          `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization  string          `gorm:"size:100" json:"specialization"`
	LicenseNumber   string          `gorm:"size:50" json:"licenseNumber"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2)" json:"consultationFee"`
	Available       bool            `gorm:"default:true" json:"available"`
	Bio             string          `gorm:"type:text" json:"bio,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// DoctorView is the directory entry returned to clients: user display
// fields joined with the profile.
type DoctorView struct {
	ID              string          `json:"id"`
	Email           string          `json:"email"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Specialization  string          `json:"specialization"`
	LicenseNumber   string          `json:"licenseNumber"`
	ConsultationFee decimal.Decimal `json:"consultationFee"`
	Available       bool            `json:"available"`
	Bio             string          `json:"bio,omitempty"`
}

// View joins the profile with its user for API responses.
func (p *DoctorProfile) View(u *User) DoctorView {
	return DoctorView{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Specialization:  p.Specialization,
		LicenseNumber:   p.LicenseNumber,
		ConsultationFee: p.ConsultationFee,
		Available:       p.Available,
		Bio:             p.Bio,
	}
}
