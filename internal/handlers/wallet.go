package handlers

import (
	"github.com/gin-gonic/gin"

	"telecare-server/internal/middleware"
	"telecare-server/internal/models"
	"telecare-server/internal/utils"
	"telecare-server/internal/wallet"
)

// WalletHandler handles the patient wallet endpoints. The balance is always
// derived from the transaction ledger, never stored.
type WalletHandler struct {
	Ledger *wallet.Ledger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger *wallet.Ledger) *WalletHandler {
	return &WalletHandler{Ledger: ledger}
}

// GetBalance handles fetching the caller's current wallet balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	balance, err := h.Ledger.Balance(userID)
	if err != nil {
		utils.InternalServerError(c, "Failed to compute balance: "+err.Error())
		return
	}

	utils.Success(c, "Balance fetched successfully", gin.H{"balance": balance})
}

// GetHistory handles fetching the caller's transaction history, newest first.
// Doctors see the payments made for their consultations.
func (h *WalletHandler) GetHistory(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	var (
		transactions []models.Transaction
		err          error
	)
	if role == models.RoleDoctor {
		transactions, err = h.Ledger.DoctorHistory(userID)
	} else {
		transactions, err = h.Ledger.History(userID)
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch transactions: "+err.Error())
		return
	}

	utils.Success(c, "Transactions fetched successfully", transactions)
}

// AddFundsRequest represents the request body for topping up a wallet.
type AddFundsRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// AddFunds handles a patient topping up their wallet.
func (h *WalletHandler) AddFunds(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req AddFundsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	tx, err := h.Ledger.AddFunds(userID, req.Amount)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, "Funds added successfully", tx)
}
