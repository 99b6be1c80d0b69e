// Package remote implements the auth backend against the hosted Postgres
// database: the users table for profiles and credentials, the
// otp_verifications table for OTP records, and object storage for avatars.
// Unlike the local stand-in, it verifies passwords.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/agrimitra/agrimitra-auth/internal/backend"
	"github.com/agrimitra/agrimitra-auth/internal/logger"
	"github.com/agrimitra/agrimitra-auth/internal/model"
	"github.com/agrimitra/agrimitra-auth/internal/otp"
	"github.com/agrimitra/agrimitra-auth/internal/sms"
)

// CredentialStore persists password hashes alongside user rows.
type CredentialStore interface {
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error
	GetPasswordHash(ctx context.Context, email string) (uuid.UUID, []byte, error)
}

var _ model.Backend = (*Backend)(nil)

// Backend is the hosted auth backend.
type Backend struct {
	users    model.UserStore
	creds    CredentialStore
	sessions model.SessionStore
	otp      *otp.Service
	sms      *sms.Sender
	tokens   model.TokenManager
	avatars  model.AvatarStore
	notifier *backend.Notifier
	logger   *logger.Logger
	now      func() time.Time
}

// New creates a remote backend over the given stores. avatars may be nil
// when object storage is not configured; avatar uploads then fail cleanly.
func New(
	users model.UserStore,
	creds CredentialStore,
	sessions model.SessionStore,
	otpService *otp.Service,
	smsSender *sms.Sender,
	tokens model.TokenManager,
	avatars model.AvatarStore,
	logger *logger.Logger,
) *Backend {
	return &Backend{
		users:    users,
		creds:    creds,
		sessions: sessions,
		otp:      otpService,
		sms:      smsSender,
		tokens:   tokens,
		avatars:  avatars,
		notifier: backend.NewNotifier(),
		logger:   logger,
		now:      time.Now,
	}
}

func (b *Backend) newSession(ctx context.Context, user model.UserProfile) (model.Session, error) {
	token, expiresAt, err := b.tokens.GenerateSessionToken(user.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	session := model.Session{User: user, Token: token, ExpiresAt: expiresAt}
	if err := b.sessions.Save(ctx, session); err != nil {
		return model.Session{}, fmt.Errorf("failed to persist session: %w", err)
	}
	return session, nil
}

// SignUp creates an account keyed by email with a bcrypt-hashed password.
func (b *Backend) SignUp(ctx context.Context, email, password string, profile model.NewProfile) (model.AuthResult, error) {
	b.logger.Debug("remote backend: signing up", "email", email)

	_, err := b.users.GetByEmail(ctx, email)
	if err == nil {
		return model.AuthResult{}, model.ErrDuplicateAccount
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.AuthResult{}, fmt.Errorf("failed to check existing account: %w", err)
	}

	user := model.UserProfile{
		ID:         uuid.New(),
		Email:      email,
		Name:       profile.Name,
		Phone:      profile.Phone,
		Location:   profile.Location,
		LandSize:   profile.LandSize,
		Experience: profile.Experience,
		Language:   profile.Language,
		Crops:      profile.Crops,
		Avatar:     profile.Avatar,
		AgriCreds:  0,
		JoinDate:   b.now(),
	}

	user, err = b.users.Create(ctx, user)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to create account: %w", err)
	}

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return model.AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := b.creds.SetPasswordHash(ctx, user.ID, hash); err != nil {
			return model.AuthResult{}, err
		}
	}

	session, err := b.newSession(ctx, user)
	if err != nil {
		return model.AuthResult{}, err
	}

	b.logger.Info("remote backend: account created", "email", email, "user_id", user.ID)
	b.notifier.Publish(&user)
	return model.AuthResult{User: user, Session: session}, nil
}

// SignIn verifies the password and creates a fresh session.
func (b *Backend) SignIn(ctx context.Context, email, password string) (model.AuthResult, error) {
	b.logger.Debug("remote backend: signing in", "email", email)

	id, hash, err := b.creds.GetPasswordHash(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.AuthResult{}, model.ErrNotFound
		}
		return model.AuthResult{}, err
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return model.AuthResult{}, model.ErrInvalidCredentials
	}

	user, err := b.users.GetByID(ctx, id)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to get account: %w", err)
	}

	session, err := b.newSession(ctx, user)
	if err != nil {
		return model.AuthResult{}, err
	}

	b.notifier.Publish(&user)
	return model.AuthResult{User: user, Session: session}, nil
}

// SignOut clears the session slot. Signing out twice is not an error.
func (b *Backend) SignOut(ctx context.Context) error {
	if err := b.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	b.notifier.Publish(nil)
	return nil
}

// CurrentUser returns the signed-in user, re-read from the users table so
// the caller sees the latest persisted profile, or nil when no session is
// active or the session has expired.
func (b *Backend) CurrentUser(ctx context.Context) (*model.UserProfile, error) {
	session, err := b.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoActiveSession) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Expired(b.now()) {
		if err := b.sessions.Clear(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear expired session: %w", err)
		}
		return nil, nil
	}

	user, err := b.users.GetByID(ctx, session.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &user, nil
}

// UpdateProfile shallow-merges update into the users row and re-issues the
// session with the same token and a refreshed user snapshot.
func (b *Backend) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.AuthResult, error) {
	session, err := b.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, model.ErrNoActiveSession) {
			return model.AuthResult{}, model.ErrNoActiveSession
		}
		return model.AuthResult{}, fmt.Errorf("failed to load session: %w", err)
	}
	if session.Expired(b.now()) {
		return model.AuthResult{}, model.ErrNoActiveSession
	}

	if len(update.AvatarData) > 0 {
		if b.avatars == nil {
			return model.AuthResult{}, fmt.Errorf("avatar storage is not configured")
		}
		key := session.User.ID.String() + avatarExt(update.AvatarContentType)
		url, err := b.avatars.Upload(ctx, key, bytes.NewReader(update.AvatarData), int64(len(update.AvatarData)), update.AvatarContentType)
		if err != nil {
			return model.AuthResult{}, err
		}
		update.Avatar = &url
	}

	user, err := b.users.GetByID(ctx, session.User.ID)
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to get account: %w", err)
	}

	user, err = b.users.Update(ctx, update.Apply(user))
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to update account: %w", err)
	}

	session.User = user
	if err := b.sessions.Save(ctx, session); err != nil {
		return model.AuthResult{}, fmt.Errorf("failed to refresh session: %w", err)
	}

	b.notifier.Publish(&user)
	return model.AuthResult{User: user, Session: session}, nil
}

// SendOTP issues a fresh code for phone and hands it to the delivery
// channel.
func (b *Backend) SendOTP(ctx context.Context, phone string) error {
	code, err := b.otp.Issue(ctx, phone)
	if err != nil {
		return fmt.Errorf("failed to issue OTP: %w", err)
	}

	result := b.sms.SendOTP(ctx, phone, code)
	if !result.Delivered {
		return fmt.Errorf("%w: %s", model.ErrDeliveryFailure, result.Err)
	}
	return nil
}

// VerifyOTP checks code without consuming it.
func (b *Backend) VerifyOTP(ctx context.Context, phone, code string) error {
	outcome, err := b.otp.Verify(ctx, phone, code)
	if err != nil {
		return err
	}
	switch outcome {
	case otp.OutcomeNotFound:
		return model.ErrOTPNotFound
	case otp.OutcomeExpired:
		return model.ErrOTPExpired
	case otp.OutcomeMismatch:
		return model.ErrOTPMismatch
	default:
		return nil
	}
}

// SignUpWithPhone verifies the code, creates the account under a
// synthesized email, and only then consumes the code.
func (b *Backend) SignUpWithPhone(ctx context.Context, phone, code string, profile model.NewProfile) (model.AuthResult, error) {
	if err := b.VerifyOTP(ctx, phone, code); err != nil {
		return model.AuthResult{}, err
	}

	_, err := b.users.GetByPhone(ctx, phone)
	if err == nil {
		return model.AuthResult{}, model.ErrDuplicateAccount
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.AuthResult{}, fmt.Errorf("failed to check existing account: %w", err)
	}

	profile.Phone = phone
	result, err := b.SignUp(ctx, model.PhoneEmail(phone), "", profile)
	if err != nil {
		return model.AuthResult{}, err
	}

	if err := b.otp.Consume(ctx, phone); err != nil {
		return model.AuthResult{}, err
	}
	return result, nil
}

// SignInWithPhone verifies the code, signs the matching account in, and
// only then consumes the code.
func (b *Backend) SignInWithPhone(ctx context.Context, phone, code string) (model.AuthResult, error) {
	if err := b.VerifyOTP(ctx, phone, code); err != nil {
		return model.AuthResult{}, err
	}

	user, err := b.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.AuthResult{}, model.ErrNotFound
		}
		return model.AuthResult{}, fmt.Errorf("failed to get account: %w", err)
	}

	session, err := b.newSession(ctx, user)
	if err != nil {
		return model.AuthResult{}, err
	}

	if err := b.otp.Consume(ctx, phone); err != nil {
		return model.AuthResult{}, err
	}

	b.notifier.Publish(&user)
	return model.AuthResult{User: user, Session: session}, nil
}

// OnAuthStateChange registers fn for session changes.
func (b *Backend) OnAuthStateChange(fn func(*model.UserProfile)) (func(), error) {
	return b.notifier.Subscribe(fn), nil
}

func avatarExt(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
