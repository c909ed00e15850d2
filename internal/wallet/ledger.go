// Package wallet implements the patient wallet as an append-only ledger of
// credit and debit entries. The balance is always derived by folding over
// the full history; no running total is ever stored.
package wallet

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"telecare-server/internal/apperr"
	"telecare-server/internal/models"
)

// Store is the persistence contract the ledger depends on.
type Store interface {
	Create(t *models.Transaction) error
	ByPatient(patientID string) ([]models.Transaction, error)
	ByDoctor(doctorID string) ([]models.Transaction, error)
}

// Ledger appends entries and derives balances.
type Ledger struct {
	store  Store
	logger zerolog.Logger
}

// NewLedger creates a Ledger backed by the given store.
func NewLedger(store Store, logger zerolog.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

// AddFunds appends a credit entry for a wallet top-up.
func (l *Ledger) AddFunds(patientID string, amount float64) (*models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}

	t := &models.Transaction{
		Type:        models.TransactionCredit,
		Amount:      amount,
		Description: "Added funds via credit card",
		PatientID:   patientID,
	}
	if err := l.store.Create(t); err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("patient_id", patientID).
		Float64("amount", amount).
		Msg("wallet funds added")
	return t, nil
}

// PayForConsultation appends a debit entry tied to the consultation and
// doctor. A debit that would drive the balance negative is rejected.
func (l *Ledger) PayForConsultation(patientID, consultationID, doctorID, doctorName string, amount float64) (*models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}

	balance, err := l.Balance(patientID)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, fmt.Errorf("%w: balance %.2f is less than charge %.2f", apperr.ErrInsufficientFunds, balance, amount)
	}

	t := &models.Transaction{
		Type:           models.TransactionDebit,
		Amount:         amount,
		Description:    fmt.Sprintf("Payment for Dr. %s consultation", doctorName),
		PatientID:      patientID,
		DoctorID:       doctorID,
		ConsultationID: consultationID,
	}
	if err := l.store.Create(t); err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("patient_id", patientID).
		Str("consultation_id", consultationID).
		Float64("amount", amount).
		Msg("consultation payment recorded")
	return t, nil
}

// Refund appends a credit entry compensating a cancelled consultation's charge.
func (l *Ledger) Refund(patientID, consultationID string, amount float64) (*models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}

	t := &models.Transaction{
		Type:           models.TransactionCredit,
		Amount:         amount,
		Description:    "Refund for cancelled consultation",
		PatientID:      patientID,
		ConsultationID: consultationID,
	}
	if err := l.store.Create(t); err != nil {
		return nil, err
	}

	l.logger.Info().
		Str("patient_id", patientID).
		Str("consultation_id", consultationID).
		Float64("amount", amount).
		Msg("consultation refund recorded")
	return t, nil
}

// Balance folds the patient's full transaction history, credits positive and
// debits negative. O(n) per call, which is the right trade at this scale.
func (l *Ledger) Balance(patientID string) (float64, error) {
	history, err := l.store.ByPatient(patientID)
	if err != nil {
		return 0, err
	}

	var balance float64
	for i := range history {
		balance += history[i].Signed()
	}
	return balance, nil
}

// History returns the patient's ledger entries.
func (l *Ledger) History(patientID string) ([]models.Transaction, error) {
	return l.store.ByPatient(patientID)
}

// DoctorHistory returns the entries tied to a doctor's consultations.
func (l *Ledger) DoctorHistory(doctorID string) ([]models.Transaction, error) {
	return l.store.ByDoctor(doctorID)
}

func validAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive finite number", apperr.ErrValidation)
	}
	return nil
}
