package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PhoneEmailDomain is the placeholder domain for phone-only signups, which
// still need an email as the backend identity key.
const PhoneEmailDomain = "agrimitra.local"

// PhoneEmail synthesizes the placeholder email for a phone-only signup.
func PhoneEmail(phone string) string {
	return strings.TrimPrefix(phone, "+") + "@" + PhoneEmailDomain
}

// UserStore defines persistence operations for user profiles.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (UserProfile, error)
	GetByPhone(ctx context.Context, phone string) (UserProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (UserProfile, error)
	Create(ctx context.Context, user UserProfile) (UserProfile, error)
	Update(ctx context.Context, user UserProfile) (UserProfile, error)
}

// UserProfile is the canonical profile shape shared by both backends.
// Field aliasing between camelCase and snake_case spellings lives in the
// wire package only.
type UserProfile struct {
	ID         uuid.UUID
	Email      string
	Name       string
	Phone      string
	Location   string
	LandSize   string
	Experience string
	Language   string
	Crops      []string
	Avatar     string
	AgriCreds  int
	JoinDate   time.Time
}

// NewProfile carries the free-form profile fields supplied at signup.
type NewProfile struct {
	Name       string
	Phone      string
	Location   string
	LandSize   string
	Experience string
	Language   string
	Crops      []string
	Avatar     string
}

// ProfileUpdate is a partial profile change. Nil fields are left untouched;
// set fields replace the stored value wholesale (shallow merge).
type ProfileUpdate struct {
	Name       *string
	Phone      *string
	Location   *string
	LandSize   *string
	Experience *string
	Language   *string
	Crops      []string
	Avatar     *string

	// AvatarData, when present, is uploaded to the avatar store and the
	// resulting URL replaces Avatar.
	AvatarData        []byte
	AvatarContentType string
}

// Apply merges the update into user and returns the result.
func (p ProfileUpdate) Apply(user UserProfile) UserProfile {
	if p.Name != nil {
		user.Name = *p.Name
	}
	if p.Phone != nil {
		user.Phone = *p.Phone
	}
	if p.Location != nil {
		user.Location = *p.Location
	}
	if p.LandSize != nil {
		user.LandSize = *p.LandSize
	}
	if p.Experience != nil {
		user.Experience = *p.Experience
	}
	if p.Language != nil {
		user.Language = *p.Language
	}
	if p.Crops != nil {
		user.Crops = p.Crops
	}
	if p.Avatar != nil {
		user.Avatar = *p.Avatar
	}
	return user
}
