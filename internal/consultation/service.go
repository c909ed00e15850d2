// Package consultation owns the consultation lifecycle: booking with the
// pay-on-book charge, the accept/complete/cancel transitions, and the
// access gate for the chat/video channel. Every status write goes through
// this service and is guarded by an optimistic version check.
package consultation

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"telecare-server/internal/apperr"
	"telecare-server/internal/models"
	"telecare-server/internal/rooms"
)

// Actor identifies who is requesting a transition.
type Actor struct {
	ID   string
	Role models.Role
}

// BookingRequest carries the patient's booking input.
type BookingRequest struct {
	DoctorID    string
	PatientID   string
	ScheduledAt time.Time
	Type        models.ConsultationType
	Symptoms    string
}

// PrescriptionInput is the optional prescription attached on completion.
type PrescriptionInput struct {
	Diagnosis    string
	Medications  []MedicationInput
	Notes        string
	FollowUpDate *time.Time
	Signature    string
}

// MedicationInput is one prescription line item.
type MedicationInput struct {
	Name         string
	Dosage       string
	Frequency    string
	Duration     string
	Instructions string
}

// Service validates and applies consultation state transitions.
type Service struct {
	store         Store
	directory     Directory
	prescriptions PrescriptionStore
	ledger        Ledger
	feeRate       float64
	logger        zerolog.Logger
}

// NewService creates a Service. feeRate is the platform's cut added on top
// of the doctor's price at booking (0.05 charges 105% of the listed price).
func NewService(store Store, directory Directory, prescriptions PrescriptionStore, ledger Ledger, feeRate float64, logger zerolog.Logger) *Service {
	return &Service{
		store:         store,
		directory:     directory,
		prescriptions: prescriptions,
		ledger:        ledger,
		feeRate:       feeRate,
		logger:        logger,
	}
}

// ChargedAmount returns the total debited for a booking at the given price.
func (s *Service) ChargedAmount(price float64) float64 {
	return math.Round(price*(1+s.feeRate)*100) / 100
}

// Book creates a pending consultation and settles its charge synchronously.
// The debit lands before any doctor commitment exists; a decline or cancel
// later settles a full refund.
func (s *Service) Book(req BookingRequest) (*models.Consultation, error) {
	switch req.Type {
	case models.TypeVideo, models.TypeAudio, models.TypeChat:
	default:
		return nil, fmt.Errorf("%w: unknown consultation type %q", apperr.ErrValidation, req.Type)
	}
	if !req.ScheduledAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: scheduled time must be in the future", apperr.ErrValidation)
	}

	doctor, profile, err := s.directory.Doctor(req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("doctor %s: %w", req.DoctorID, err)
	}
	if profile.Status != models.VerificationApproved {
		return nil, fmt.Errorf("%w: doctor is not approved for consultations", apperr.ErrValidation)
	}
	patient, err := s.directory.Patient(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("patient %s: %w", req.PatientID, err)
	}

	c := &models.Consultation{
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		DoctorName:      doctor.FullName(),
		DoctorSpecialty: profile.Specialty,
		PatientName:     patient.FullName(),
		Status:          models.ConsultationPending,
		ScheduledAt:     req.ScheduledAt,
		Type:            req.Type,
		Price:           profile.Price,
		PaymentStatus:   models.PaymentPending,
		RoomID:          rooms.NewRoomID(),
		Symptoms:        req.Symptoms,
		Version:         1,
	}
	if err := s.store.Create(c); err != nil {
		return nil, err
	}

	charged := s.ChargedAmount(c.Price)
	if _, err := s.ledger.PayForConsultation(c.PatientID, c.ID, c.DoctorID, c.DoctorName, charged); err != nil {
		// Pay-on-book: no payment, no booking.
		if delErr := s.store.Delete(c.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("consultation_id", c.ID).Msg("failed to remove unpaid consultation")
		}
		return nil, err
	}

	c.PaymentStatus = models.PaymentCompleted
	if err := s.store.ApplyTransition(c, c.Version); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("consultation_id", c.ID).
		Str("doctor_id", c.DoctorID).
		Str("patient_id", c.PatientID).
		Float64("charged", charged).
		Msg("consultation booked")
	return c, nil
}

// Accept moves a pending consultation to upcoming. Only the assigned doctor
// (or an admin) may accept. The scheduled time is deliberately not
// re-validated: a doctor may accept a booking whose time has elapsed.
func (s *Service) Accept(id string, actor Actor) (*models.Consultation, error) {
	c, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDoctor(c, actor); err != nil {
		return nil, err
	}
	if c.Status != models.ConsultationPending {
		return nil, fmt.Errorf("%w: cannot accept a %s consultation", apperr.ErrIllegalTransition, c.Status)
	}

	from := c.Version
	c.Status = models.ConsultationUpcoming
	if err := s.store.ApplyTransition(c, from); err != nil {
		return nil, err
	}

	s.logger.Info().Str("consultation_id", c.ID).Str("doctor_id", actor.ID).Msg("consultation accepted")
	return c, nil
}

// Complete moves an upcoming consultation to its terminal completed status,
// optionally issuing a prescription. The version guard makes the transition
// race-safe, so a second Complete always fails and can never produce a
// second prescription.
func (s *Service) Complete(id string, actor Actor, rx *PrescriptionInput) (*models.Consultation, error) {
	c, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeDoctor(c, actor); err != nil {
		return nil, err
	}
	if c.Status != models.ConsultationUpcoming {
		return nil, fmt.Errorf("%w: cannot complete a %s consultation", apperr.ErrIllegalTransition, c.Status)
	}
	if rx != nil {
		if rx.Diagnosis == "" || len(rx.Medications) == 0 {
			return nil, fmt.Errorf("%w: a prescription needs a diagnosis and at least one medication", apperr.ErrValidation)
		}
		exists, err := s.prescriptions.ExistsForConsultation(c.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: consultation already has a prescription", apperr.ErrConflict)
		}
	}

	from := c.Version
	c.Status = models.ConsultationCompleted
	if err := s.store.ApplyTransition(c, from); err != nil {
		return nil, err
	}

	if rx != nil {
		p := &models.Prescription{
			ConsultationID: c.ID,
			PatientID:      c.PatientID,
			PatientName:    c.PatientName,
			DoctorID:       c.DoctorID,
			DoctorName:     c.DoctorName,
			Diagnosis:      rx.Diagnosis,
			Notes:          rx.Notes,
			FollowUpDate:   rx.FollowUpDate,
			IssuedAt:       time.Now(),
			Signature:      rx.Signature,
		}
		for _, m := range rx.Medications {
			p.Medications = append(p.Medications, models.Medication{
				Name:         m.Name,
				Dosage:       m.Dosage,
				Frequency:    m.Frequency,
				Duration:     m.Duration,
				Instructions: m.Instructions,
			})
		}
		if err := s.prescriptions.CreatePrescription(p); err != nil {
			return nil, fmt.Errorf("consultation completed but prescription failed: %w", err)
		}
	}

	s.logger.Info().
		Str("consultation_id", c.ID).
		Bool("prescription", rx != nil).
		Msg("consultation completed")
	return c, nil
}

// Cancel declines or cancels a consultation and refunds the charge.
// Doctors may decline their own pending consultations; patients may cancel
// their own pending or upcoming ones; admins may cancel either.
func (s *Service) Cancel(id string, actor Actor) (*models.Consultation, error) {
	c, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin:
		if c.Terminal() {
			return nil, fmt.Errorf("%w: cannot cancel a %s consultation", apperr.ErrIllegalTransition, c.Status)
		}
	case models.RoleDoctor:
		if actor.ID != c.DoctorID {
			return nil, fmt.Errorf("%w: not the assigned doctor", apperr.ErrForbidden)
		}
		if c.Status != models.ConsultationPending {
			return nil, fmt.Errorf("%w: doctors may only decline pending consultations", apperr.ErrIllegalTransition)
		}
	case models.RolePatient:
		if actor.ID != c.PatientID {
			return nil, fmt.Errorf("%w: not the booking patient", apperr.ErrForbidden)
		}
		if c.Status != models.ConsultationPending && c.Status != models.ConsultationUpcoming {
			return nil, fmt.Errorf("%w: cannot cancel a %s consultation", apperr.ErrIllegalTransition, c.Status)
		}
	default:
		return nil, fmt.Errorf("%w: role %q cannot cancel consultations", apperr.ErrForbidden, actor.Role)
	}

	from := c.Version
	c.Status = models.ConsultationCancelled
	if err := s.store.ApplyTransition(c, from); err != nil {
		return nil, err
	}

	if c.PaymentStatus == models.PaymentCompleted {
		if _, err := s.ledger.Refund(c.PatientID, c.ID, s.ChargedAmount(c.Price)); err != nil {
			return nil, fmt.Errorf("consultation cancelled but refund failed: %w", err)
		}
	}

	s.logger.Info().
		Str("consultation_id", c.ID).
		Str("actor_id", actor.ID).
		Str("actor_role", string(actor.Role)).
		Msg("consultation cancelled")
	return c, nil
}

// ExpireOverduePending cancels pending consultations whose scheduled time
// has passed without the doctor accepting, refunding each. Returns how many
// were cancelled.
func (s *Service) ExpireOverduePending(now time.Time) (int, error) {
	overdue, err := s.store.ListOverduePending(now)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for i := range overdue {
		c := &overdue[i]
		from := c.Version
		c.Status = models.ConsultationCancelled
		if err := s.store.ApplyTransition(c, from); err != nil {
			// A concurrent accept or cancel won the race; skip it.
			s.logger.Warn().Err(err).Str("consultation_id", c.ID).Msg("skipping overdue consultation")
			continue
		}
		if c.PaymentStatus == models.PaymentCompleted {
			if _, err := s.ledger.Refund(c.PatientID, c.ID, s.ChargedAmount(c.Price)); err != nil {
				s.logger.Error().Err(err).Str("consultation_id", c.ID).Msg("refund for expired consultation failed")
				continue
			}
		}
		cancelled++
		s.logger.Info().Str("consultation_id", c.ID).Msg("expired unaccepted consultation")
	}
	return cancelled, nil
}

func (s *Service) authorizeDoctor(c *models.Consultation, actor Actor) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role != models.RoleDoctor || actor.ID != c.DoctorID {
		return fmt.Errorf("%w: not the assigned doctor", apperr.ErrForbidden)
	}
	return nil
}
