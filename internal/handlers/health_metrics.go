package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telecare-server/internal/middleware"
	"telecare-server/internal/models"
	"telecare-server/internal/utils"
)

// HealthMetricHandler handles patients logging their own vitals over time.
type HealthMetricHandler struct {
	DB *gorm.DB
}

// NewHealthMetricHandler creates a new HealthMetricHandler.
func NewHealthMetricHandler(db *gorm.DB) *HealthMetricHandler {
	return &HealthMetricHandler{DB: db}
}

// CreateHealthMetricRequest represents the request body for logging a metric.
type CreateHealthMetricRequest struct {
	Type       string  `json:"type" binding:"required"`
	Value      float64 `json:"value" binding:"required"`
	Unit       string  `json:"unit" binding:"required"`
	RecordedAt string  `json:"recordedAt"`
	Notes      string  `json:"notes"`
}

// CreateHealthMetric handles a patient logging a vital reading. RecordedAt
// defaults to now when omitted.
func (h *HealthMetricHandler) CreateHealthMetric(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req CreateHealthMetricRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	recordedAt := time.Now()
	if req.RecordedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.RecordedAt)
		if err != nil {
			utils.BadRequest(c, "recordedAt must be an RFC 3339 timestamp")
			return
		}
		recordedAt = parsed
	}

	metric := models.HealthMetric{
		PatientID:  userID,
		Type:       req.Type,
		Value:      req.Value,
		Unit:       req.Unit,
		RecordedAt: recordedAt,
		Notes:      req.Notes,
	}
	if err := h.DB.Create(&metric).Error; err != nil {
		utils.InternalServerError(c, "Failed to save metric: "+err.Error())
		return
	}

	utils.Created(c, "Metric recorded successfully", metric)
}

// GetHealthMetrics handles listing the caller's metrics, newest first,
// optionally filtered by ?type=.
func (h *HealthMetricHandler) GetHealthMetrics(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	query := h.DB.Where("patient_id = ?", userID).Order("recorded_at DESC")
	if metricType := c.Query("type"); metricType != "" {
		query = query.Where("type = ?", metricType)
	}

	var metrics []models.HealthMetric
	if err := query.Find(&metrics).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch metrics: "+err.Error())
		return
	}

	utils.Success(c, "Metrics fetched successfully", metrics)
}
