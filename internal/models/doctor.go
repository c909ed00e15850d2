package models

// VerificationStatus represents a doctor's admin-review state. Only approved
// doctors appear in the directory and can be booked.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// DoctorProfile holds the practice details attached to a user with the doctor role.
type DoctorProfile struct {
	BaseModel
	UserID          string             `gorm:"size:36;uniqueIndex" json:"userId"`
	Specialty       string             `gorm:"size:100" json:"specialty"`
	Bio             string             `gorm:"type:text" json:"bio,omitempty"`
	Location        string             `gorm:"size:255" json:"location,omitempty"`
	ExperienceYears int                `json:"experienceYears"`
	Rating          float64            `json:"rating"`
	Price           float64            `json:"price"`
	Availability    string             `gorm:"size:255" json:"availability,omitempty"`
	LicenseDocument string             `gorm:"size:512" json:"licenseDocument,omitempty"`
	Status          VerificationStatus `gorm:"size:20;default:'pending';index" json:"status"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
