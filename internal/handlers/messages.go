package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telecare-server/internal/consultation"
	"telecare-server/internal/middleware"
	"telecare-server/internal/models"
	"telecare-server/internal/utils"
)

// MessageHandler handles in-consultation chat endpoints. Clients poll for
// new messages rather than holding a socket open.
type MessageHandler struct {
	DB         *gorm.DB
	JoinWindow time.Duration
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB, joinWindow time.Duration) *MessageHandler {
	return &MessageHandler{DB: db, JoinWindow: joinWindow}
}

// loadConsultationFor fetches the consultation and checks the caller is one
// of its participants.
func (h *MessageHandler) loadConsultationFor(c *gin.Context) (*models.Consultation, string, models.Role, bool) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	consultationID := c.Param("id")

	var cons models.Consultation
	if err := h.DB.First(&cons, "id = ?", consultationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Consultation not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, "", "", false
	}
	if !cons.Participant(userID) {
		utils.Forbidden(c, "You are not a participant of this consultation")
		return nil, "", "", false
	}
	return &cons, userID, role, true
}

// SendMessageRequest represents the request body for sending a chat message.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

// SendMessage handles posting a message to a consultation's channel. The
// channel is open while the join gate admits the sender and stays open for
// follow-up questions after completion.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	cons, userID, role, ok := h.loadConsultationFor(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	open := cons.Status == models.ConsultationCompleted
	if !open {
		open, _ = consultation.JoinDecision(time.Now(), cons, role, h.JoinWindow)
	}
	if !open {
		utils.Forbidden(c, "The consultation channel is not open yet")
		return
	}

	message := models.Message{
		ConsultationID: cons.ID,
		SenderID:       userID,
		SenderRole:     role,
		Content:        req.Content,
	}
	if err := h.DB.Create(&message).Error; err != nil {
		utils.InternalServerError(c, "Failed to send message: "+err.Error())
		return
	}

	utils.Created(c, "Message sent", message)
}

// GetMessages handles fetching the full message history of a consultation.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	cons, _, _, ok := h.loadConsultationFor(c)
	if !ok {
		return
	}

	var messages []models.Message
	if err := h.DB.Where("consultation_id = ?", cons.ID).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	utils.Success(c, "Messages fetched successfully", messages)
}

// GetNewMessages handles the polling endpoint: messages created after the
// ?since timestamp, excluding the caller's own.
func (h *MessageHandler) GetNewMessages(c *gin.Context) {
	cons, userID, _, ok := h.loadConsultationFor(c)
	if !ok {
		return
	}

	since, err := time.Parse(time.RFC3339, c.Query("since"))
	if err != nil {
		utils.BadRequest(c, "since must be an RFC 3339 timestamp")
		return
	}

	var messages []models.Message
	if err := h.DB.Where("consultation_id = ? AND sender_id <> ? AND created_at > ?", cons.ID, userID, since).
		Order("created_at ASC").Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	utils.Success(c, "New messages fetched successfully", messages)
}

// MarkRead handles marking every message addressed to the caller in a
// consultation as read.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	cons, userID, _, ok := h.loadConsultationFor(c)
	if !ok {
		return
	}

	if err := h.DB.Model(&models.Message{}).
		Where("consultation_id = ? AND sender_id <> ? AND is_read = ?", cons.ID, userID, false).
		Update("is_read", true).Error; err != nil {
		utils.InternalServerError(c, "Failed to mark messages read: "+err.Error())
		return
	}

	utils.Success(c, "Messages marked as read", nil)
}

// UnreadCount handles counting unread messages addressed to the caller
// across all of their consultations.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var count int64
	err := h.DB.Model(&models.Message{}).
		Joins("JOIN consultations ON consultations.id = messages.consultation_id").
		Where("(consultations.patient_id = ? OR consultations.doctor_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to count unread messages: "+err.Error())
		return
	}

	utils.Success(c, "Unread count fetched successfully", gin.H{"count": count})
}
