package models

// TransactionType signs a ledger entry
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Transaction is an append-only wallet ledger entry. Balances are always
// derived by folding over the history, never stored as a running total.
type Transaction struct {
	BaseModel
	Type           TransactionType `gorm:"size:10;not null" json:"type"`
	Amount         float64         `gorm:"not null" json:"amount"`
	Description    string          `gorm:"size:255" json:"description"`
	PatientID      string          `gorm:"size:36;index" json:"patientId"`
	DoctorID       string          `gorm:"size:36;index" json:"doctorId,omitempty"`
	ConsultationID string          `gorm:"size:36;index" json:"consultationId,omitempty"`
}

// Signed returns the amount with the sign implied by the entry type.
func (t *Transaction) Signed() float64 {
	if t.Type == TransactionDebit {
		return -t.Amount
	}
	return t.Amount
}
