package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenManager generates and validates session tokens. A fresh token is
// issued on every sign-in and sign-up; profile updates re-use the token.
type TokenManager interface {
	GenerateSessionToken(userID uuid.UUID) (token string, expiresAt time.Time, err error)
	ParseSessionToken(token string) (uuid.UUID, error)
}
