package consultation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"telecare-server/internal/models"
)

func upcomingAt(scheduled time.Time) *models.Consultation {
	return &models.Consultation{
		Status:      models.ConsultationUpcoming,
		ScheduledAt: scheduled,
	}
}

func TestJoinDecisionDoctor(t *testing.T) {
	scheduled := time.Date(2023, time.October, 15, 10, 0, 0, 0, time.UTC)
	c := upcomingAt(scheduled)

	// Doctors enter any upcoming consultation regardless of the clock.
	for _, now := range []time.Time{
		scheduled.Add(-48 * time.Hour),
		scheduled.Add(-time.Minute),
		scheduled.Add(3 * time.Hour),
	} {
		ok, reason := JoinDecision(now, c, models.RoleDoctor, DefaultJoinWindow)
		assert.True(t, ok, "doctor at %v", now)
		assert.Empty(t, reason)
	}
}

func TestJoinDecisionPatientWindow(t *testing.T) {
	scheduled := time.Date(2023, time.October, 15, 10, 0, 0, 0, time.UTC)
	c := upcomingAt(scheduled)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"day before", time.Date(2023, time.October, 14, 9, 0, 0, 0, time.UTC), false},
		{"six minutes early", scheduled.Add(-6 * time.Minute), false},
		{"four minutes early", time.Date(2023, time.October, 15, 9, 56, 0, 0, time.UTC), true},
		{"exactly on window edge", scheduled.Add(-DefaultJoinWindow), true},
		{"at scheduled time", scheduled, true},
		{"hours after, still upcoming", scheduled.Add(5 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := JoinDecision(tt.now, c, models.RolePatient, DefaultJoinWindow)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestJoinDecisionNonUpcomingStatuses(t *testing.T) {
	scheduled := time.Now().Add(-time.Hour)
	for _, status := range []models.ConsultationStatus{
		models.ConsultationPending,
		models.ConsultationCompleted,
		models.ConsultationCancelled,
	} {
		c := &models.Consultation{Status: status, ScheduledAt: scheduled}
		for _, role := range []models.Role{models.RoleDoctor, models.RolePatient} {
			ok, reason := JoinDecision(time.Now(), c, role, DefaultJoinWindow)
			assert.False(t, ok, "%s/%s", status, role)
			assert.Equal(t, "consultation is not upcoming", reason)
		}
	}
}

func TestJoinDecisionUnknownRoleAndNil(t *testing.T) {
	c := upcomingAt(time.Now())

	ok, _ := JoinDecision(time.Now(), c, models.RoleAdmin, DefaultJoinWindow)
	assert.False(t, ok)

	ok, reason := JoinDecision(time.Now(), nil, models.RolePatient, DefaultJoinWindow)
	assert.False(t, ok)
	assert.Equal(t, "consultation not found", reason)
}

func TestCanJoinUsesDefaultWindow(t *testing.T) {
	c := upcomingAt(time.Now().Add(4 * time.Minute))
	assert.True(t, CanJoin(time.Now(), c, models.RolePatient))

	far := upcomingAt(time.Now().Add(30 * time.Minute))
	assert.False(t, CanJoin(time.Now(), far, models.RolePatient))
}
