package model

import (
	"context"
	"time"
)

// SessionDuration is the validity window of a session from creation.
const SessionDuration = 24 * time.Hour

// SessionStore persists the single active session slot of a device.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	// Get returns ErrNoActiveSession when the slot is empty.
	Get(ctx context.Context) (Session, error)
	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context) error
}

// Session binds a user snapshot to an opaque token. The embedded user is a
// value copy taken at creation or at the last profile update.
type Session struct {
	User      UserProfile
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the session is past its validity window.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
