package wallet

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecare-server/internal/apperr"
	"telecare-server/internal/models"
)

type fakeStore struct {
	entries []models.Transaction
}

func (f *fakeStore) Create(t *models.Transaction) error {
	f.entries = append(f.entries, *t)
	return nil
}

func (f *fakeStore) ByPatient(patientID string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, e := range f.entries {
		if e.PatientID == patientID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) ByDoctor(doctorID string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, e := range f.entries {
		if e.DoctorID == doctorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestLedger() (*Ledger, *fakeStore) {
	store := &fakeStore{}
	return NewLedger(store, zerolog.Nop()), store
}

func TestAddFunds(t *testing.T) {
	ledger, store := newTestLedger()

	tx, err := ledger.AddFunds("pat-1", 50)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCredit, tx.Type)
	assert.Equal(t, 50.0, tx.Amount)
	require.Len(t, store.entries, 1)

	balance, err := ledger.Balance("pat-1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, balance)
}

func TestAddFundsRejectsBadAmounts(t *testing.T) {
	ledger, store := newTestLedger()

	for _, amount := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err := ledger.AddFunds("pat-1", amount)
		assert.ErrorIs(t, err, apperr.ErrValidation, "amount %v", amount)
	}
	assert.Empty(t, store.entries)
}

func TestPayForConsultationRejectsOverdraft(t *testing.T) {
	ledger, store := newTestLedger()

	_, err := ledger.AddFunds("pat-1", 100)
	require.NoError(t, err)

	_, err = ledger.PayForConsultation("pat-1", "cons-1", "doc-1", "Sarah Chen", 126)
	require.ErrorIs(t, err, apperr.ErrInsufficientFunds)

	// The rejected debit leaves no trace.
	assert.Len(t, store.entries, 1)
	balance, err := ledger.Balance("pat-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)
}

func TestBalanceFoldsHistory(t *testing.T) {
	ledger, _ := newTestLedger()

	_, err := ledger.AddFunds("pat-1", 200)
	require.NoError(t, err)
	_, err = ledger.PayForConsultation("pat-1", "cons-1", "doc-1", "Sarah Chen", 126)
	require.NoError(t, err)
	_, err = ledger.Refund("pat-1", "cons-1", 126)
	require.NoError(t, err)
	_, err = ledger.PayForConsultation("pat-1", "cons-2", "doc-2", "Ada Nwosu", 84)
	require.NoError(t, err)

	balance, err := ledger.Balance("pat-1")
	require.NoError(t, err)
	assert.InDelta(t, 116.0, balance, 1e-9)

	// Another patient's wallet is untouched.
	other, err := ledger.Balance("pat-2")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestHistoriesAreScoped(t *testing.T) {
	ledger, _ := newTestLedger()

	_, err := ledger.AddFunds("pat-1", 500)
	require.NoError(t, err)
	_, err = ledger.PayForConsultation("pat-1", "cons-1", "doc-1", "Sarah Chen", 126)
	require.NoError(t, err)

	history, err := ledger.History("pat-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	doctorHistory, err := ledger.DoctorHistory("doc-1")
	require.NoError(t, err)
	require.Len(t, doctorHistory, 1)
	assert.Equal(t, "cons-1", doctorHistory[0].ConsultationID)
}
