// Package wire maps the canonical profile model onto the JSON shape the UI
// consumes. The UI historically read profile fields under both camelCase
// and snake_case spellings, so the encoded shape carries both aliases with
// equal values. The aliasing lives here and nowhere else; canonical code
// uses model.UserProfile.
package wire

import (
	"time"

	"github.com/google/uuid"

	"github.com/agrimitra/agrimitra-auth/internal/model"
)

// User is the dual-spelling profile shape. Both spellings of every aliased
// field are populated on encode; decode prefers the camelCase spelling and
// falls back to snake_case.
type User struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Phone      string   `json:"phone"`
	Location   string   `json:"location"`
	Experience string   `json:"experience"`
	Language   string   `json:"language"`
	Crops      []string `json:"crops"`

	LandSize      string `json:"landSize"`
	LandSizeSnake string `json:"land_size"`

	Avatar    string `json:"avatar"`
	AvatarURL string `json:"avatar_url"`

	AgriCreds      int `json:"agriCreds"`
	AgriCredsSnake int `json:"agri_creds"`

	JoinDate      string `json:"joinDate"`
	JoinDateSnake string `json:"join_date"`
}

// FromProfile builds the wire shape from the canonical model.
func FromProfile(p model.UserProfile) User {
	joined := p.JoinDate.UTC().Format(time.RFC3339)
	return User{
		ID:             p.ID.String(),
		Email:          p.Email,
		Name:           p.Name,
		Phone:          p.Phone,
		Location:       p.Location,
		Experience:     p.Experience,
		Language:       p.Language,
		Crops:          p.Crops,
		LandSize:       p.LandSize,
		LandSizeSnake:  p.LandSize,
		Avatar:         p.Avatar,
		AvatarURL:      p.Avatar,
		AgriCreds:      p.AgriCreds,
		AgriCredsSnake: p.AgriCreds,
		JoinDate:       joined,
		JoinDateSnake:  joined,
	}
}

// ToProfile rebuilds the canonical model from the wire shape.
func (u User) ToProfile() (model.UserProfile, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return model.UserProfile{}, err
	}

	joined := pick(u.JoinDate, u.JoinDateSnake)
	var joinedAt time.Time
	if joined != "" {
		joinedAt, err = time.Parse(time.RFC3339, joined)
		if err != nil {
			return model.UserProfile{}, err
		}
	}

	creds := u.AgriCreds
	if creds == 0 {
		creds = u.AgriCredsSnake
	}

	return model.UserProfile{
		ID:         id,
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		Location:   u.Location,
		LandSize:   pick(u.LandSize, u.LandSizeSnake),
		Experience: u.Experience,
		Language:   u.Language,
		Crops:      u.Crops,
		Avatar:     pick(u.Avatar, u.AvatarURL),
		AgriCreds:  creds,
		JoinDate:   joinedAt,
	}, nil
}

func pick(camel, snake string) string {
	if camel != "" {
		return camel
	}
	return snake
}

// Session is the wire shape of an active session.
type Session struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// FromSession builds the wire shape from the canonical session.
func FromSession(s model.Session) Session {
	return Session{
		User:      FromProfile(s.User),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

// ToSession rebuilds the canonical session from the wire shape.
func (s Session) ToSession() (model.Session, error) {
	user, err := s.User.ToProfile()
	if err != nil {
		return model.Session{}, err
	}

	var expiresAt time.Time
	if s.ExpiresAt != "" {
		expiresAt, err = time.Parse(time.RFC3339, s.ExpiresAt)
		if err != nil {
			return model.Session{}, err
		}
	}

	return model.Session{User: user, Token: s.Token, ExpiresAt: expiresAt}, nil
}
