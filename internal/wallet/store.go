package wallet

import (
	"gorm.io/gorm"

	"telecare-server/internal/models"
)

// GormStore is the MySQL-backed transaction store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)

func (s *GormStore) Create(t *models.Transaction) error {
	return s.db.Create(t).Error
}

func (s *GormStore) ByPatient(patientID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.Where("patient_id = ?", patientID).Order("created_at desc").Find(&transactions).Error
	return transactions, err
}

func (s *GormStore) ByDoctor(doctorID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.db.Where("doctor_id = ?", doctorID).Order("created_at desc").Find(&transactions).Error
	return transactions, err
}
