package models

import (
	"time"
)

// PatientStatus marks whether a patient account is in active use
type PatientStatus string

const (
	PatientActive   PatientStatus = "active"
	PatientInactive PatientStatus = "inactive"
)

// PatientProfile holds patient details and the self-reported health summary.
type PatientProfile struct {
	BaseModel
	UserID            string        `gorm:"size:36;uniqueIndex" json:"userId"`
	Location          string        `gorm:"size:255" json:"location,omitempty"`
	Status            PatientStatus `gorm:"size:20;default:'active'" json:"status"`
	JoinedAt          time.Time     `json:"joinedAt"`
	HeightCm          float64       `json:"heightCm,omitempty"`
	WeightKg          float64       `json:"weightKg,omitempty"`
	BloodType         string        `gorm:"size:10" json:"bloodType,omitempty"`
	Allergies         string        `gorm:"type:text" json:"allergies,omitempty"`
	ChronicConditions string        `gorm:"type:text" json:"chronicConditions,omitempty"`
	Medications       string        `gorm:"type:text" json:"medications,omitempty"`
	EmergencyName     string        `gorm:"size:200" json:"emergencyName,omitempty"`
	EmergencyRelation string        `gorm:"size:100" json:"emergencyRelation,omitempty"`
	EmergencyPhone    string        `gorm:"size:50" json:"emergencyPhone,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
