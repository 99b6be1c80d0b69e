package localstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/agrimitra/agrimitra-auth/internal/model"
	"github.com/agrimitra/agrimitra-auth/internal/wire"
)

// Durable keys. The whole user directory lives under one key, the single
// active session under another, and OTP records one key per phone.
const (
	usersKey     = "users"
	otpKeyPrefix = "otp_"
)

var _ model.UserStore = (*UserDirectory)(nil)

// UserDirectory implements UserStore over the local document store.
type UserDirectory struct {
	store *Store
}

// NewUserDirectory creates a user directory on the given store.
func NewUserDirectory(store *Store) *UserDirectory {
	return &UserDirectory{store: store}
}

func (d *UserDirectory) load() ([]model.UserProfile, error) {
	var users []model.UserProfile
	if _, err := d.store.Get(usersKey, &users); err != nil {
		return nil, fmt.Errorf("failed to load user directory: %w", err)
	}
	return users, nil
}

func (d *UserDirectory) find(match func(model.UserProfile) bool) (model.UserProfile, error) {
	users, err := d.load()
	if err != nil {
		return model.UserProfile{}, err
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return model.UserProfile{}, model.ErrNotFound
}

func (d *UserDirectory) GetByEmail(_ context.Context, email string) (model.UserProfile, error) {
	return d.find(func(u model.UserProfile) bool { return strings.EqualFold(u.Email, email) })
}

func (d *UserDirectory) GetByPhone(_ context.Context, phone string) (model.UserProfile, error) {
	return d.find(func(u model.UserProfile) bool { return u.Phone == phone })
}

func (d *UserDirectory) GetByID(_ context.Context, id uuid.UUID) (model.UserProfile, error) {
	return d.find(func(u model.UserProfile) bool { return u.ID == id })
}

func (d *UserDirectory) Create(_ context.Context, user model.UserProfile) (model.UserProfile, error) {
	users, err := d.load()
	if err != nil {
		return model.UserProfile{}, err
	}
	users = append(users, user)
	if err := d.store.Put(usersKey, users); err != nil {
		return model.UserProfile{}, fmt.Errorf("failed to save user directory: %w", err)
	}
	return user, nil
}

func (d *UserDirectory) Update(_ context.Context, user model.UserProfile) (model.UserProfile, error) {
	users, err := d.load()
	if err != nil {
		return model.UserProfile{}, err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = user
			if err := d.store.Put(usersKey, users); err != nil {
				return model.UserProfile{}, fmt.Errorf("failed to save user directory: %w", err)
			}
			return user, nil
		}
	}
	return model.UserProfile{}, model.ErrNotFound
}

var _ model.SessionStore = (*SessionSlot)(nil)

// SessionSlot implements the single persisted session slot of a device.
// The key is injectable so the local and remote backends each get their
// own slot on one device. The document is persisted in the wire shape,
// the same JSON the UI holds in its own storage.
type SessionSlot struct {
	store *Store
	key   string
}

// NewSessionSlot creates a session slot persisted under key.
func NewSessionSlot(store *Store, key string) *SessionSlot {
	return &SessionSlot{store: store, key: key}
}

func (s *SessionSlot) Save(_ context.Context, session model.Session) error {
	if err := s.store.Put(s.key, wire.FromSession(session)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionSlot) Get(_ context.Context) (model.Session, error) {
	var doc wire.Session
	ok, err := s.store.Get(s.key, &doc)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if !ok {
		return model.Session{}, model.ErrNoActiveSession
	}

	session, err := doc.ToSession()
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return session, nil
}

func (s *SessionSlot) Clear(_ context.Context) error {
	if err := s.store.Delete(s.key); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

var _ model.OTPRecordStore = (*OTPRecords)(nil)

// OTPRecords implements OTPRecordStore with one document per phone.
type OTPRecords struct {
	store *Store
}

// NewOTPRecords creates an OTP record store on the given store.
func NewOTPRecords(store *Store) *OTPRecords {
	return &OTPRecords{store: store}
}

func otpKey(phone string) string {
	return otpKeyPrefix + phone
}

func (r *OTPRecords) Upsert(_ context.Context, record model.OTPRecord) error {
	if err := r.store.Put(otpKey(record.Phone), record); err != nil {
		return fmt.Errorf("failed to save OTP record: %w", err)
	}
	return nil
}

func (r *OTPRecords) GetByPhone(_ context.Context, phone string) (model.OTPRecord, error) {
	var record model.OTPRecord
	ok, err := r.store.Get(otpKey(phone), &record)
	if err != nil {
		return model.OTPRecord{}, fmt.Errorf("failed to load OTP record: %w", err)
	}
	if !ok {
		return model.OTPRecord{}, model.ErrOTPNotFound
	}
	return record, nil
}

func (r *OTPRecords) MarkUsed(ctx context.Context, phone string) error {
	record, err := r.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	record.Used = true
	return r.Upsert(ctx, record)
}

func (r *OTPRecords) Delete(_ context.Context, phone string) error {
	if err := r.store.Delete(otpKey(phone)); err != nil {
		return fmt.Errorf("failed to delete OTP record: %w", err)
	}
	return nil
}
