package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telecare-server/internal/consultation"
	"telecare-server/internal/middleware"
	"telecare-server/internal/models"
	"telecare-server/internal/rooms"
	"telecare-server/internal/utils"
)

// ConsultationHandler handles the consultation lifecycle endpoints.
type ConsultationHandler struct {
	DB         *gorm.DB
	Service    *consultation.Service
	Issuer     *rooms.TokenIssuer
	JoinWindow time.Duration
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(db *gorm.DB, svc *consultation.Service, issuer *rooms.TokenIssuer, joinWindow time.Duration) *ConsultationHandler {
	return &ConsultationHandler{DB: db, Service: svc, Issuer: issuer, JoinWindow: joinWindow}
}

func actorFromContext(c *gin.Context) consultation.Actor {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	return consultation.Actor{ID: userID, Role: role}
}

// BookConsultationRequest represents the request body for booking.
type BookConsultationRequest struct {
	DoctorID    string `json:"doctorId" binding:"required"`
	ScheduledAt string `json:"scheduledAt" binding:"required"`
	Type        string `json:"type" binding:"required,oneof=video audio chat"`
	Symptoms    string `json:"symptoms"`
}

// Book handles a patient booking a consultation. The wallet is debited for
// the doctor's price plus the platform fee in the same request.
func (h *ConsultationHandler) Book(c *gin.Context) {
	actor := actorFromContext(c)

	var req BookConsultationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		utils.BadRequest(c, "scheduledAt must be an RFC 3339 timestamp")
		return
	}

	cons, err := h.Service.Book(consultation.BookingRequest{
		DoctorID:    req.DoctorID,
		PatientID:   actor.ID,
		ScheduledAt: scheduledAt,
		Type:        models.ConsultationType(req.Type),
		Symptoms:    req.Symptoms,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Consultation booked successfully", cons)
}

// GetConsultations handles listing consultations scoped to the caller's role.
// Patients and doctors see their own; admins see everything.
func (h *ConsultationHandler) GetConsultations(c *gin.Context) {
	actor := actorFromContext(c)

	query := h.DB.Order("scheduled_at DESC")
	switch actor.Role {
	case models.RolePatient:
		query = query.Where("patient_id = ?", actor.ID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", actor.ID)
	case models.RoleAdmin:
		// no scoping
	default:
		utils.Forbidden(c, "Unknown role")
		return
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var consultations []models.Consultation
	if err := query.Find(&consultations).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch consultations: "+err.Error())
		return
	}

	utils.Success(c, "Consultations fetched successfully", consultations)
}

// GetConsultationByID handles fetching one consultation. Restricted to its
// participants and admins.
func (h *ConsultationHandler) GetConsultationByID(c *gin.Context) {
	actor := actorFromContext(c)
	consultationID := c.Param("id")

	var cons models.Consultation
	if err := h.DB.First(&cons, "id = ?", consultationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Consultation not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if actor.Role != models.RoleAdmin && !cons.Participant(actor.ID) {
		utils.Forbidden(c, "You do not have access to this consultation")
		return
	}

	utils.Success(c, "Consultation fetched successfully", cons)
}

// Accept handles the assigned doctor confirming a pending consultation.
func (h *ConsultationHandler) Accept(c *gin.Context) {
	actor := actorFromContext(c)

	cons, err := h.Service.Accept(c.Param("id"), actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Consultation accepted", cons)
}

// CompleteConsultationRequest represents the request body for completing a
// consultation, with an optional prescription written in the same call.
type CompleteConsultationRequest struct {
	Notes        string               `json:"notes"`
	Prescription *PrescriptionPayload `json:"prescription"`
}

// PrescriptionPayload is the prescription content supplied at completion.
type PrescriptionPayload struct {
	Diagnosis    string              `json:"diagnosis" binding:"required"`
	Medications  []MedicationPayload `json:"medications" binding:"required,min=1,dive"`
	Notes        string              `json:"notes"`
	FollowUpDate string              `json:"followUpDate"`
	Signature    string              `json:"signature"`
}

// MedicationPayload is one prescribed medication line.
type MedicationPayload struct {
	Name         string `json:"name" binding:"required"`
	Dosage       string `json:"dosage" binding:"required"`
	Frequency    string `json:"frequency" binding:"required"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions"`
}

// Complete handles the assigned doctor marking an upcoming consultation as
// completed, optionally issuing a prescription.
func (h *ConsultationHandler) Complete(c *gin.Context) {
	actor := actorFromContext(c)

	var req CompleteConsultationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var rx *consultation.PrescriptionInput
	if req.Prescription != nil {
		rx = &consultation.PrescriptionInput{
			Diagnosis: req.Prescription.Diagnosis,
			Notes:     req.Prescription.Notes,
			Signature: req.Prescription.Signature,
		}
		if req.Prescription.FollowUpDate != "" {
			followUp, err := time.Parse(time.RFC3339, req.Prescription.FollowUpDate)
			if err != nil {
				utils.BadRequest(c, "followUpDate must be an RFC 3339 timestamp")
				return
			}
			rx.FollowUpDate = &followUp
		}
		for _, m := range req.Prescription.Medications {
			rx.Medications = append(rx.Medications, consultation.MedicationInput{
				Name:         m.Name,
				Dosage:       m.Dosage,
				Frequency:    m.Frequency,
				Duration:     m.Duration,
				Instructions: m.Instructions,
			})
		}
	}

	cons, err := h.Service.Complete(c.Param("id"), actor, rx)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if req.Notes != "" {
		cons.Notes = req.Notes
		if err := h.DB.Model(&models.Consultation{}).Where("id = ?", cons.ID).Update("notes", req.Notes).Error; err != nil {
			utils.InternalServerError(c, "Failed to save consultation notes: "+err.Error())
			return
		}
	}

	utils.Success(c, "Consultation completed", cons)
}

// Cancel handles a participant or admin cancelling a consultation. Paid
// bookings are refunded in full.
func (h *ConsultationHandler) Cancel(c *gin.Context) {
	actor := actorFromContext(c)

	cons, err := h.Service.Cancel(c.Param("id"), actor)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, "Consultation cancelled", cons)
}

// JoinResponse carries the room credentials handed out when the join gate opens.
type JoinResponse struct {
	RoomID string `json:"roomId"`
	Token  string `json:"token"`
	Type   string `json:"type"`
}

// Join handles a participant requesting room credentials. Doctors may join
// any upcoming consultation they own; patients are admitted from five
// minutes before the scheduled start.
func (h *ConsultationHandler) Join(c *gin.Context) {
	actor := actorFromContext(c)
	consultationID := c.Param("id")

	var cons models.Consultation
	if err := h.DB.First(&cons, "id = ?", consultationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Consultation not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !cons.Participant(actor.ID) {
		utils.Forbidden(c, "You are not a participant of this consultation")
		return
	}

	ok, reason := consultation.JoinDecision(time.Now(), &cons, actor.Role, h.JoinWindow)
	if !ok {
		utils.Forbidden(c, reason)
		return
	}

	token, err := h.Issuer.Issue(cons.RoomID, actor.ID, actor.Role)
	if err != nil {
		utils.InternalServerError(c, "Failed to issue room token: "+err.Error())
		return
	}

	utils.Success(c, "Join granted", JoinResponse{
		RoomID: cons.RoomID,
		Token:  token,
		Type:   string(cons.Type),
	})
}
