package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"telecare-server/internal/models"
	"telecare-server/internal/utils"
)

// AnalyticsHandler handles the admin dashboard aggregates.
type AnalyticsHandler struct {
	DB *gorm.DB
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{DB: db}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// MonthlyRevenue is one month's platform turnover, keyed "M/YYYY".
type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// GetOverview handles the admin dashboard overview: consultation counts per
// status, doctor counts per verification status, patient totals, transaction
// totals and monthly revenue from consultation payments.
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	var consultationCounts []statusCount
	if err := h.DB.Model(&models.Consultation{}).
		Select("status, COUNT(*) AS count").Group("status").
		Scan(&consultationCounts).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate consultations: "+err.Error())
		return
	}

	var doctorCounts []statusCount
	if err := h.DB.Model(&models.DoctorProfile{}).
		Select("status, COUNT(*) AS count").Group("status").
		Scan(&doctorCounts).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate doctors: "+err.Error())
		return
	}

	var patientCounts []statusCount
	if err := h.DB.Model(&models.PatientProfile{}).
		Select("status, COUNT(*) AS count").Group("status").
		Scan(&patientCounts).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate patients: "+err.Error())
		return
	}

	type txTotals struct {
		Count       int64   `json:"count"`
		CreditTotal float64 `json:"creditTotal"`
		DebitTotal  float64 `json:"debitTotal"`
	}
	var totals txTotals
	if err := h.DB.Model(&models.Transaction{}).
		Select("COUNT(*) AS count, " +
			"COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE 0 END), 0) AS credit_total, " +
			"COALESCE(SUM(CASE WHEN type = 'debit' THEN amount ELSE 0 END), 0) AS debit_total").
		Scan(&totals).Error; err != nil {
		utils.InternalServerError(c, "Failed to aggregate transactions: "+err.Error())
		return
	}

	revenue, err := h.revenueByMonth()
	if err != nil {
		utils.InternalServerError(c, "Failed to aggregate revenue: "+err.Error())
		return
	}

	utils.Success(c, "Analytics fetched successfully", gin.H{
		"consultations":  consultationCounts,
		"doctors":        doctorCounts,
		"patients":       patientCounts,
		"transactions":   totals,
		"revenueByMonth": revenue,
	})
}

// revenueByMonth sums consultation payments grouped by calendar month.
// Refunded amounts stay included; a refund shows up as wallet credit, not as
// a reversal of the original payment row.
func (h *AnalyticsHandler) revenueByMonth() ([]MonthlyRevenue, error) {
	var rows []MonthlyRevenue
	err := h.DB.Model(&models.Transaction{}).
		Select("DATE_FORMAT(created_at, '%c/%Y') AS month, COALESCE(SUM(amount), 0) AS revenue").
		Where("type = ? AND consultation_id <> ''", models.TransactionDebit).
		Group("month").
		Order("MIN(created_at) ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
