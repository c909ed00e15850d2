package models

// Message represents a chat message inside a consultation's channel.
type Message struct {
	BaseModel
	ConsultationID string `gorm:"size:36;index" json:"consultationId"`
	SenderID       string `gorm:"size:36;index" json:"senderId"`
	SenderRole     Role   `gorm:"size:20" json:"senderRole"`
	Content        string `gorm:"type:text" json:"content"`
	IsRead         bool   `gorm:"default:false" json:"isRead"`

	// Relations
	Consultation Consultation `gorm:"foreignKey:ConsultationID" json:"-"`
	Sender       User         `gorm:"foreignKey:SenderID" json:"-"`
}
