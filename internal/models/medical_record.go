package models

import (
	"time"
)

// MedicalRecordType represents the type of medical record
type MedicalRecordType string

const (
	RecordTypeConsultation     MedicalRecordType = "ConsultationNote"
	RecordTypeLabResult        MedicalRecordType = "LabResult"
	RecordTypeImagingReport    MedicalRecordType = "ImagingReport"
	RecordTypeVaccination      MedicalRecordType = "VaccinationRecord"
	RecordTypeAllergy          MedicalRecordType = "AllergyRecord"
	RecordTypeDischargeSummary MedicalRecordType = "DischargeSummary"
)

// MedicalRecord is the aggregate root for a patient's clinical entry. It
// exclusively owns its Diagnosis/Treatment/Prescription/LabResult/Attachment
// children: deleting the record cascades to them.
type MedicalRecord struct {
	BaseModel
	PatientID  string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID   string            `gorm:"size:36;index;not null" json:"doctorId"`
	RecordType MedicalRecordType `gorm:"size:50" json:"recordType"`
	RecordDate time.Time         `json:"recordDate"`
	Title      string            `gorm:"size:255;not null" json:"title"`
	Department string            `gorm:"size:100" json:"department"`
	Summary    string            `gorm:"type:text" json:"summary"`
	Details    string            `gorm:"type:text" json:"details"`

	// Relations
	Patient       User                      `gorm:"foreignKey:PatientID" json:"-"`
	Doctor        User                      `gorm:"foreignKey:DoctorID" json:"-"`
	Diagnoses     []Diagnosis               `gorm:"foreignKey:MedicalRecordID;constraint:OnDelete:CASCADE" json:"diagnoses,omitempty"`
	Treatments    []Treatment               `gorm:"foreignKey:MedicalRecordID;constraint:OnDelete:CASCADE" json:"treatments,omitempty"`
	Prescriptions []Prescription            `gorm:"foreignKey:MedicalRecordID;constraint:OnDelete:CASCADE" json:"prescriptions,omitempty"`
	LabResults    []LabResult               `gorm:"foreignKey:MedicalRecordID;constraint:OnDelete:CASCADE" json:"labResults,omitempty"`
	Attachments   []MedicalRecordAttachment `gorm:"foreignKey:MedicalRecordID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// Diagnosis is a coded diagnosis under a medical record.
type Diagnosis struct {
	BaseModel
	MedicalRecordID string     `gorm:"size:36;index;not null" json:"medicalRecordId"`
	Code            string     `gorm:"size:20;not null" json:"code"`
	Description     string     `gorm:"size:255" json:"description"`
	OnsetDate       *time.Time `json:"onsetDate,omitempty"`
}

// Treatment is a treatment entry under a medical record. End date, when
// present, must not precede the start date (enforced at write time).
type Treatment struct {
	BaseModel
	MedicalRecordID string     `gorm:"size:36;index;not null" json:"medicalRecordId"`
	TreatmentType   string     `gorm:"size:100;not null" json:"treatmentType"`
	Details         string     `gorm:"type:text" json:"details"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
}

// Prescription is a drug prescription under a medical record. DurationDays
// must be a positive integer (enforced at write time).
type Prescription struct {
	BaseModel
	MedicalRecordID string `gorm:"size:36;index;not null" json:"medicalRecordId"`
	DrugName        string `gorm:"size:150;not null" json:"drugName"`
	Dosage          string `gorm:"size:100" json:"dosage"`
	Frequency       string `gorm:"size:100" json:"frequency"`
	DurationDays    int    `gorm:"not null" json:"durationDays"`
}

// LabResult is a laboratory result under a medical record.
type LabResult struct {
	BaseModel
	MedicalRecordID string     `gorm:"size:36;index;not null" json:"medicalRecordId"`
	TestName        string     `gorm:"size:150;not null" json:"testName"`
	ResultValue     string     `gorm:"size:100" json:"resultValue"`
	Unit            string     `gorm:"size:30" json:"unit,omitempty"`
	ReferenceRange  string     `gorm:"size:100" json:"referenceRange,omitempty"`
	PerformedAt     *time.Time `json:"performedAt,omitempty"`
}

// MedicalRecordAttachment represents a file attached to a medical record
type MedicalRecordAttachment struct {
	BaseModel
	MedicalRecordID string `gorm:"size:36;index;not null" json:"medicalRecordId"`
	FileName        string `gorm:"not null" json:"fileName"`          // Original name of the file
	FileType        string `gorm:"not null" json:"fileType"`          // MIME type of the file
	FileData        []byte `gorm:"type:longblob;not null" json:"-"`   // File content as binary data
}
