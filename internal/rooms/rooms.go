// Package rooms is the boundary to the real-time video/chat subsystem.
// The server only knows that a room exists and who may join it: rooms are
// opaque channel identifiers allocated at booking, and join tokens are
// short-lived signed credentials the client presents to the media service.
package rooms

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"telecare-server/internal/models"
)

// NewRoomID allocates an opaque room identifier. Once attached to a
// consultation it never changes.
func NewRoomID() string {
	return "room_" + strings.SplitN(uuid.New().String(), "-", 2)[0]
}

// JoinClaims carry the room grant inside a signed token.
type JoinClaims struct {
	RoomID        string      `json:"room_id"`
	ParticipantID string      `json:"participant_id"`
	Role          models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates room join tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given signing secret and
// token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a join token for one participant in one room. Callers are
// responsible for checking the access gate first.
func (i *TokenIssuer) Issue(roomID, participantID string, role models.Role) (string, error) {
	now := time.Now()
	claims := &JoinClaims{
		RoomID:        roomID,
		ParticipantID: participantID,
		Role:          role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   participantID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign room token: %w", err)
	}
	return signed, nil
}

// Validate parses a join token and returns its claims.
func (i *TokenIssuer) Validate(tokenString string) (*JoinClaims, error) {
	claims := &JoinClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse room token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid room token")
	}
	return claims, nil
}
