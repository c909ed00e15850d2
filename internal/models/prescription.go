package models

import (
	"time"
)

// Prescription is issued by a doctor when completing a consultation.
// At most one prescription exists per consultation; rows are never mutated
// after creation.
type Prescription struct {
	BaseModel
	ConsultationID string     `gorm:"size:36;uniqueIndex" json:"consultationId"`
	PatientID      string     `gorm:"size:36;index" json:"patientId"`
	PatientName    string     `gorm:"size:200" json:"patientName"`
	DoctorID       string     `gorm:"size:36;index" json:"doctorId"`
	DoctorName     string     `gorm:"size:200" json:"doctorName"`
	Diagnosis      string     `gorm:"type:text" json:"diagnosis"`
	Notes          string     `gorm:"type:text" json:"notes,omitempty"`
	FollowUpDate   *time.Time `json:"followUpDate,omitempty"`
	IssuedAt       time.Time  `json:"issuedAt"`
	Signature      string     `gorm:"size:255" json:"signature"`

	Medications []Medication `gorm:"foreignKey:PrescriptionID" json:"medications"`

	Consultation Consultation `gorm:"foreignKey:ConsultationID" json:"-"`
}

// Medication is one line item on a prescription.
type Medication struct {
	BaseModel
	PrescriptionID string `gorm:"size:36;index" json:"prescriptionId"`
	Name           string `gorm:"size:200;not null" json:"name"`
	Dosage         string `gorm:"size:100" json:"dosage"`
	Frequency      string `gorm:"size:100" json:"frequency"`
	Duration       string `gorm:"size:100" json:"duration"`
	Instructions   string `gorm:"size:255" json:"instructions,omitempty"`
}
