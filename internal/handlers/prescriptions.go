package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telecare-server/internal/middleware"
	"telecare-server/internal/models"
	"telecare-server/internal/utils"
)

// PrescriptionHandler handles read access to issued prescriptions.
// Prescriptions are written only as part of completing a consultation.
type PrescriptionHandler struct {
	DB *gorm.DB
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(db *gorm.DB) *PrescriptionHandler {
	return &PrescriptionHandler{DB: db}
}

// GetMyPrescriptions handles a patient listing their own prescriptions.
func (h *PrescriptionHandler) GetMyPrescriptions(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var prescriptions []models.Prescription
	if err := h.DB.Preload("Medications").Where("patient_id = ?", userID).
		Order("issued_at DESC").Find(&prescriptions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}

// GetByConsultation handles fetching the prescription issued for a
// consultation. Restricted to the consultation's participants and admins.
func (h *PrescriptionHandler) GetByConsultation(c *gin.Context) {
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
		return
	}
	if role != models.RoleAdmin && !cons.Participant(userID) {
		utils.Forbidden(c, "You do not have access to this consultation")
		return
	}

	var prescription models.Prescription
	if err := h.DB.Preload("Medications").Where("consultation_id = ?", consultationID).
		First(&prescription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "No prescription issued for this consultation")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Prescription fetched successfully", prescription)
}

// GetPrescriptionByID handles fetching a single prescription by ID. Patients
// see their own, doctors the ones they issued, admins everything.
func (h *PrescriptionHandler) GetPrescriptionByID(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var prescription models.Prescription
	if err := h.DB.Preload("Medications").First(&prescription, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Prescription not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	switch role {
	case models.RoleAdmin:
	case models.RolePatient:
		if prescription.PatientID != userID {
			utils.Forbidden(c, "You do not have access to this prescription")
			return
		}
	case models.RoleDoctor:
		if prescription.DoctorID != userID {
			utils.Forbidden(c, "You do not have access to this prescription")
			return
		}
	default:
		utils.Forbidden(c, "Unknown role")
		return
	}

	utils.Success(c, "Prescription fetched successfully", prescription)
}
