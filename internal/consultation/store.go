package consultation

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"telecare-server/internal/apperr"
	"telecare-server/internal/models"
)

// Store is the consultation persistence contract.
type Store interface {
	Create(c *models.Consultation) error
	GetByID(id string) (*models.Consultation, error)
	Delete(id string) error
	// ApplyTransition writes the consultation's mutable fields guarded by
	// the version it was read at. A stale version yields ErrConflict.
	ApplyTransition(c *models.Consultation, fromVersion int) error
	ListOverduePending(before time.Time) ([]models.Consultation, error)
}

// Directory resolves the users a booking refers to.
type Directory interface {
	Doctor(userID string) (*models.User, *models.DoctorProfile, error)
	Patient(userID string) (*models.User, error)
}

// PrescriptionStore persists prescriptions issued at completion.
type PrescriptionStore interface {
	CreatePrescription(p *models.Prescription) error
	ExistsForConsultation(consultationID string) (bool, error)
}

// Ledger is the slice of the wallet the lifecycle needs: the pay-on-book
// debit and the cancellation refund.
type Ledger interface {
	PayForConsultation(patientID, consultationID, doctorID, doctorName string, amount float64) (*models.Transaction, error)
	Refund(patientID, consultationID string, amount float64) (*models.Transaction, error)
}

// GormStore is the MySQL-backed consultation store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ Store = (*GormStore)(nil)
var _ Directory = (*GormStore)(nil)
var _ PrescriptionStore = (*GormStore)(nil)

func (s *GormStore) Create(c *models.Consultation) error {
	return s.db.Create(c).Error
}

func (s *GormStore) GetByID(id string) (*models.Consultation, error) {
	var c models.Consultation
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) Delete(id string) error {
	return s.db.Delete(&models.Consultation{}, "id = ?", id).Error
}

func (s *GormStore) ApplyTransition(c *models.Consultation, fromVersion int) error {
	res := s.db.Model(&models.Consultation{}).
		Where("id = ? AND version = ?", c.ID, fromVersion).
		Updates(map[string]interface{}{
			"status":         c.Status,
			"payment_status": c.PaymentStatus,
			"notes":          c.Notes,
			"version":        fromVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrConflict
	}
	c.Version = fromVersion + 1
	return nil
}

func (s *GormStore) ListOverduePending(before time.Time) ([]models.Consultation, error) {
	var consultations []models.Consultation
	err := s.db.
		Where("status = ? AND scheduled_at < ?", models.ConsultationPending, before).
		Find(&consultations).Error
	return consultations, err
}

func (s *GormStore) Doctor(userID string) (*models.User, *models.DoctorProfile, error) {
	var user models.User
	if err := s.db.Where("id = ? AND role = ?", userID, models.RoleDoctor).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.ErrNotFound
		}
		return nil, nil, err
	}
	var profile models.DoctorProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperr.ErrNotFound
		}
		return nil, nil, err
	}
	return &user, &profile, nil
}

func (s *GormStore) Patient(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ? AND role = ?", userID, models.RolePatient).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreatePrescription(p *models.Prescription) error {
	return s.db.Create(p).Error
}

func (s *GormStore) ExistsForConsultation(consultationID string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Prescription{}).
		Where("consultation_id = ?", consultationID).
		Count(&count).Error
	return count > 0, err
}
