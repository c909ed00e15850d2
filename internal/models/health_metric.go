package models

import (
	"time"
)

// HealthMetric is a patient-recorded measurement (blood pressure, weight,
// glucose and so on) shown on the patient's health dashboard.
type HealthMetric struct {
	BaseModel
	PatientID  string    `gorm:"size:36;index" json:"patientId"`
	Type       string    `gorm:"size:50;index" json:"type"`
	Value      float64   `json:"value"`
	Unit       string    `gorm:"size:20" json:"unit"`
	RecordedAt time.Time `json:"recordedAt"`
	Notes      string    `gorm:"size:255" json:"notes,omitempty"`

	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}
