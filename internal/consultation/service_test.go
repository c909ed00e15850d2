package consultation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecare-server/internal/apperr"
	"telecare-server/internal/models"
)

type fakeStore struct {
	consultations map[string]*models.Consultation
}

func newFakeStore() *fakeStore {
	return &fakeStore{consultations: map[string]*models.Consultation{}}
}

func (f *fakeStore) Create(c *models.Consultation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	clone := *c
	f.consultations[c.ID] = &clone
	return nil
}

func (f *fakeStore) GetByID(id string) (*models.Consultation, error) {
	c, ok := f.consultations[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (f *fakeStore) Delete(id string) error {
	delete(f.consultations, id)
	return nil
}

func (f *fakeStore) ApplyTransition(c *models.Consultation, fromVersion int) error {
	cur, ok := f.consultations[c.ID]
	if !ok || cur.Version != fromVersion {
		return apperr.ErrConflict
	}
	cur.Status = c.Status
	cur.PaymentStatus = c.PaymentStatus
	cur.Notes = c.Notes
	cur.Version = fromVersion + 1
	c.Version = cur.Version
	return nil
}

func (f *fakeStore) ListOverduePending(before time.Time) ([]models.Consultation, error) {
	var out []models.Consultation
	for _, c := range f.consultations {
		if c.Status == models.ConsultationPending && c.ScheduledAt.Before(before) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	doctors  map[string]*models.DoctorProfile
	users    map[string]*models.User
	patients map[string]bool
}

func (f *fakeDirectory) Doctor(userID string) (*models.User, *models.DoctorProfile, error) {
	profile, ok := f.doctors[userID]
	if !ok {
		return nil, nil, apperr.ErrNotFound
	}
	return f.users[userID], profile, nil
}

func (f *fakeDirectory) Patient(userID string) (*models.User, error) {
	if !f.patients[userID] {
		return nil, apperr.ErrNotFound
	}
	return f.users[userID], nil
}

type fakePrescriptions struct {
	created []*models.Prescription
}

func (f *fakePrescriptions) CreatePrescription(p *models.Prescription) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	f.created = append(f.created, p)
	return nil
}

func (f *fakePrescriptions) ExistsForConsultation(consultationID string) (bool, error) {
	for _, p := range f.created {
		if p.ConsultationID == consultationID {
			return true, nil
		}
	}
	return false, nil
}

// fakeLedger tracks one patient balance and every entry appended.
type fakeLedger struct {
	balances map[string]float64
	entries  []models.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[string]float64{}}
}

func (f *fakeLedger) PayForConsultation(patientID, consultationID, doctorID, doctorName string, amount float64) (*models.Transaction, error) {
	if f.balances[patientID] < amount {
		return nil, apperr.ErrInsufficientFunds
	}
	f.balances[patientID] -= amount
	t := models.Transaction{Type: models.TransactionDebit, Amount: amount, PatientID: patientID, DoctorID: doctorID, ConsultationID: consultationID}
	f.entries = append(f.entries, t)
	return &t, nil
}

func (f *fakeLedger) Refund(patientID, consultationID string, amount float64) (*models.Transaction, error) {
	f.balances[patientID] += amount
	t := models.Transaction{Type: models.TransactionCredit, Amount: amount, PatientID: patientID, ConsultationID: consultationID}
	f.entries = append(f.entries, t)
	return &t, nil
}

const (
	testDoctorID  = "doc-1"
	testPatientID = "pat-1"
)

type fixture struct {
	svc    *Service
	store  *fakeStore
	rx     *fakePrescriptions
	ledger *fakeLedger
}

func newFixture(t *testing.T, balance float64) *fixture {
	t.Helper()

	doctor := &models.User{FirstName: "Sarah", LastName: "Chen", Role: models.RoleDoctor}
	doctor.ID = testDoctorID
	patient := &models.User{FirstName: "James", LastName: "Okello", Role: models.RolePatient}
	patient.ID = testPatientID

	dir := &fakeDirectory{
		doctors: map[string]*models.DoctorProfile{
			testDoctorID: {Specialty: "Cardiology", Price: 120, Status: models.VerificationApproved},
		},
		users:    map[string]*models.User{testDoctorID: doctor, testPatientID: patient},
		patients: map[string]bool{testPatientID: true},
	}

	store := newFakeStore()
	rx := &fakePrescriptions{}
	ledger := newFakeLedger()
	ledger.balances[testPatientID] = balance

	svc := NewService(store, dir, rx, ledger, 0.05, zerolog.Nop())
	return &fixture{svc: svc, store: store, rx: rx, ledger: ledger}
}

func (fx *fixture) book(t *testing.T) *models.Consultation {
	t.Helper()
	c, err := fx.svc.Book(BookingRequest{
		DoctorID:    testDoctorID,
		PatientID:   testPatientID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Type:        models.TypeVideo,
		Symptoms:    "persistent cough",
	})
	require.NoError(t, err)
	return c
}

func TestBookChargesPriceWithPlatformFee(t *testing.T) {
	fx := newFixture(t, 200)

	c := fx.book(t)

	assert.Equal(t, models.ConsultationPending, c.Status)
	assert.Equal(t, models.PaymentCompleted, c.PaymentStatus)
	assert.Equal(t, 120.0, c.Price)
	assert.Equal(t, "Sarah Chen", c.DoctorName)
	assert.Equal(t, "Cardiology", c.DoctorSpecialty)
	assert.True(t, len(c.RoomID) > len("room_"))

	// One debit for 120 * 1.05, nothing else.
	require.Len(t, fx.ledger.entries, 1)
	assert.Equal(t, models.TransactionDebit, fx.ledger.entries[0].Type)
	assert.Equal(t, 126.0, fx.ledger.entries[0].Amount)
	assert.InDelta(t, 74.0, fx.ledger.balances[testPatientID], 1e-9)
}

func TestBookInsufficientFundsLeavesNothingBehind(t *testing.T) {
	fx := newFixture(t, 100)

	_, err := fx.svc.Book(BookingRequest{
		DoctorID:    testDoctorID,
		PatientID:   testPatientID,
		ScheduledAt: time.Now().Add(time.Hour),
		Type:        models.TypeChat,
	})
	require.ErrorIs(t, err, apperr.ErrInsufficientFunds)

	assert.Empty(t, fx.store.consultations)
	assert.Empty(t, fx.ledger.entries)
	assert.Equal(t, 100.0, fx.ledger.balances[testPatientID])
}

func TestBookRejectsPastTimeAndBadType(t *testing.T) {
	fx := newFixture(t, 500)

	_, err := fx.svc.Book(BookingRequest{
		DoctorID:    testDoctorID,
		PatientID:   testPatientID,
		ScheduledAt: time.Now().Add(-time.Minute),
		Type:        models.TypeVideo,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = fx.svc.Book(BookingRequest{
		DoctorID:    testDoctorID,
		PatientID:   testPatientID,
		ScheduledAt: time.Now().Add(time.Hour),
		Type:        "carrier-pigeon",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestBookRejectsUnapprovedDoctor(t *testing.T) {
	doctor := &models.User{FirstName: "Ada", LastName: "Nwosu", Role: models.RoleDoctor}
	doctor.ID = "doc-pending"
	dir := &fakeDirectory{
		doctors:  map[string]*models.DoctorProfile{"doc-pending": {Price: 80, Status: models.VerificationPending}},
		users:    map[string]*models.User{"doc-pending": doctor},
		patients: map[string]bool{testPatientID: true},
	}
	svc := NewService(newFakeStore(), dir, &fakePrescriptions{}, newFakeLedger(), 0.05, zerolog.Nop())

	_, err := svc.Book(BookingRequest{
		DoctorID:    "doc-pending",
		PatientID:   testPatientID,
		ScheduledAt: time.Now().Add(time.Hour),
		Type:        models.TypeVideo,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAcceptOnlyFromPending(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)
	doctor := Actor{ID: testDoctorID, Role: models.RoleDoctor}

	accepted, err := fx.svc.Accept(c.ID, doctor)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationUpcoming, accepted.Status)

	_, err = fx.svc.Accept(c.ID, doctor)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
}

func TestAcceptRequiresAssignedDoctor(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)

	_, err := fx.svc.Accept(c.ID, Actor{ID: "someone-else", Role: models.RoleDoctor})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = fx.svc.Accept(c.ID, Actor{ID: testPatientID, Role: models.RolePatient})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Admins may accept on the doctor's behalf.
	_, err = fx.svc.Accept(c.ID, Actor{ID: "admin-1", Role: models.RoleAdmin})
	assert.NoError(t, err)
}

func TestCompleteIssuesAtMostOnePrescription(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)
	doctor := Actor{ID: testDoctorID, Role: models.RoleDoctor}

	_, err := fx.svc.Accept(c.ID, doctor)
	require.NoError(t, err)

	rx := &PrescriptionInput{
		Diagnosis: "Acute bronchitis",
		Medications: []MedicationInput{
			{Name: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", Duration: "7 days"},
		},
	}
	done, err := fx.svc.Complete(c.ID, doctor, rx)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationCompleted, done.Status)
	require.Len(t, fx.rx.created, 1)
	assert.Equal(t, c.ID, fx.rx.created[0].ConsultationID)
	assert.Equal(t, testPatientID, fx.rx.created[0].PatientID)
	assert.Equal(t, testDoctorID, fx.rx.created[0].DoctorID)
	require.Len(t, fx.rx.created[0].Medications, 1)

	// A second completion fails on status and never writes another prescription.
	_, err = fx.svc.Complete(c.ID, doctor, rx)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
	assert.Len(t, fx.rx.created, 1)
}

func TestCompleteValidatesPrescription(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)
	doctor := Actor{ID: testDoctorID, Role: models.RoleDoctor}
	_, err := fx.svc.Accept(c.ID, doctor)
	require.NoError(t, err)

	_, err = fx.svc.Complete(c.ID, doctor, &PrescriptionInput{Diagnosis: "Flu"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = fx.svc.Complete(c.ID, doctor, &PrescriptionInput{
		Medications: []MedicationInput{{Name: "Paracetamol"}},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// A failed validation must not complete the consultation.
	cur, err := fx.store.GetByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationUpcoming, cur.Status)
}

func TestCompleteWithoutPrescription(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)
	doctor := Actor{ID: testDoctorID, Role: models.RoleDoctor}
	_, err := fx.svc.Accept(c.ID, doctor)
	require.NoError(t, err)

	done, err := fx.svc.Complete(c.ID, doctor, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationCompleted, done.Status)
	assert.Empty(t, fx.rx.created)
}

func TestCancelRefundsPaidBooking(t *testing.T) {
	fx := newFixture(t, 200)
	c := fx.book(t)

	cancelled, err := fx.svc.Cancel(c.ID, Actor{ID: testPatientID, Role: models.RolePatient})
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationCancelled, cancelled.Status)

	// Debit then matching refund; balance restored.
	require.Len(t, fx.ledger.entries, 2)
	assert.Equal(t, models.TransactionCredit, fx.ledger.entries[1].Type)
	assert.Equal(t, 126.0, fx.ledger.entries[1].Amount)
	assert.InDelta(t, 200.0, fx.ledger.balances[testPatientID], 1e-9)
}

func TestDoctorDeclinesOnlyPending(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)
	doctor := Actor{ID: testDoctorID, Role: models.RoleDoctor}

	_, err := fx.svc.Accept(c.ID, doctor)
	require.NoError(t, err)

	_, err = fx.svc.Cancel(c.ID, doctor)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)

	// The patient can still cancel an upcoming consultation.
	_, err = fx.svc.Cancel(c.ID, Actor{ID: testPatientID, Role: models.RolePatient})
	assert.NoError(t, err)
}

func TestCancelTerminalRejected(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)
	admin := Actor{ID: "admin-1", Role: models.RoleAdmin}

	_, err := fx.svc.Cancel(c.ID, admin)
	require.NoError(t, err)

	_, err = fx.svc.Cancel(c.ID, admin)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
}

func TestStaleVersionConflicts(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)

	stale := *c
	stale.Status = models.ConsultationUpcoming
	err := fx.store.ApplyTransition(&stale, c.Version-1)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestExpireOverduePendingRefunds(t *testing.T) {
	fx := newFixture(t, 500)
	c := fx.book(t)

	// Force the stored copy into the past without touching the clock.
	fx.store.consultations[c.ID].ScheduledAt = time.Now().Add(-time.Hour)

	cancelled, err := fx.svc.ExpireOverduePending(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	cur, err := fx.store.GetByID(c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ConsultationCancelled, cur.Status)
	assert.InDelta(t, 500.0, fx.ledger.balances[testPatientID], 1e-9)

	// Nothing left to expire on the next run.
	cancelled, err = fx.svc.ExpireOverduePending(time.Now())
	require.NoError(t, err)
	assert.Zero(t, cancelled)
}

func TestChargedAmountRounding(t *testing.T) {
	fx := newFixture(t, 0)

	assert.Equal(t, 126.0, fx.svc.ChargedAmount(120))
	assert.Equal(t, 104.99, fx.svc.ChargedAmount(99.99))
	assert.Equal(t, 1.05, fx.svc.ChargedAmount(1))
}
