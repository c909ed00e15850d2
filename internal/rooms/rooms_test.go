package rooms

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telecare-server/internal/models"
)

func TestNewRoomID(t *testing.T) {
	id := NewRoomID()
	assert.True(t, strings.HasPrefix(id, "room_"))
	assert.Len(t, id, len("room_")+8)

	// Allocations are unique.
	assert.NotEqual(t, id, NewRoomID())
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("room_abc12345", "pat-1", models.RolePatient)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "room_abc12345", claims.RoomID)
	assert.Equal(t, "pat-1", claims.ParticipantID)
	assert.Equal(t, models.RolePatient, claims.Role)
	assert.Equal(t, "pat-1", claims.Subject)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue("room_x", "doc-1", models.RoleDoctor)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("room_x", "pat-1", models.RolePatient)
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	_, err := issuer.Validate("not-a-token")
	assert.Error(t, err)
}
