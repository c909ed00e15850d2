package models

import (
	"time"
)

// ConsultationStatus represents the lifecycle status of a consultation.
// Transitions are owned by the consultation service; nothing else writes status.
type ConsultationStatus string

const (
	ConsultationPending   ConsultationStatus = "pending"
	ConsultationUpcoming  ConsultationStatus = "upcoming"
	ConsultationCompleted ConsultationStatus = "completed"
	ConsultationCancelled ConsultationStatus = "cancelled"
)

// ConsultationType represents the channel used for the encounter
type ConsultationType string

const (
	TypeVideo ConsultationType = "video"
	TypeAudio ConsultationType = "audio"
	TypeChat  ConsultationType = "chat"
)

// PaymentStatus represents the settlement state of the booking charge
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Consultation represents a scheduled medical encounter between one doctor
// and one patient. DoctorName, DoctorSpecialty and PatientName are copied at
// booking time and are not kept in sync with later profile edits.
type Consultation struct {
	BaseModel
	DoctorID        string             `gorm:"size:36;index" json:"doctorId"`
	PatientID       string             `gorm:"size:36;index" json:"patientId"`
	DoctorName      string             `gorm:"size:200" json:"doctorName"`
	DoctorSpecialty string             `gorm:"size:100" json:"doctorSpecialty"`
	PatientName     string             `gorm:"size:200" json:"patientName"`
	Status          ConsultationStatus `gorm:"size:20;default:'pending';index" json:"status"`
	ScheduledAt     time.Time          `gorm:"index" json:"scheduledAt"`
	Type            ConsultationType   `gorm:"size:10" json:"type"`
	Price           float64            `json:"price"`
	PaymentStatus   PaymentStatus      `gorm:"size:20;default:'pending'" json:"paymentStatus"`
	RoomID          string             `gorm:"size:64" json:"roomId"`
	Symptoms        string             `gorm:"type:text" json:"symptoms,omitempty"`
	Notes           string             `gorm:"type:text" json:"notes,omitempty"`
	Version         int                `gorm:"default:1" json:"version"`

	// Relations
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// Terminal reports whether the consultation has reached a final status.
func (c *Consultation) Terminal() bool {
	return c.Status == ConsultationCompleted || c.Status == ConsultationCancelled
}

// Participant reports whether the given user takes part in this consultation.
func (c *Consultation) Participant(userID string) bool {
	return userID == c.DoctorID || userID == c.PatientID
}
