package service

import (
	"context"
	"time"

	"github.com/agrimitra/agrimitra-auth/internal/logger"
	"github.com/agrimitra/agrimitra-auth/internal/model"
)

// Auth is the single entry point the UI depends on. It hides which backend
// serves a call: every operation runs against the primary backend and, when
// the primary fails with anything outside the domain error taxonomy, is
// transparently retried against the secondary. Domain errors (wrong OTP,
// duplicate account, no session) pass through untouched; they are answers,
// not outages.
type Auth struct {
	primary   model.Backend
	secondary model.Backend
	timeout   time.Duration
	logger    *logger.Logger
}

// NewAuth creates the façade. secondary may be nil when the primary is
// already the local backend; there is nothing further to fall back to.
func NewAuth(primary, secondary model.Backend, timeout time.Duration, logger *logger.Logger) *Auth {
	return &Auth{
		primary:   primary,
		secondary: secondary,
		timeout:   timeout,
		logger:    logger,
	}
}

// call runs op against the primary with a per-attempt timeout, falling back
// to the secondary on non-domain failure.
func call[T any](ctx context.Context, a *Auth, op string, fn func(context.Context, model.Backend) (T, error)) (T, error) {
	attempt := func(b model.Backend) (T, error) {
		actx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		return fn(actx, b)
	}

	v, err := attempt(a.primary)
	if err == nil || model.IsDomainError(err) || a.secondary == nil {
		return v, err
	}

	a.logger.Error("auth facade: primary backend failed, falling back",
		"operation", op,
		"error", err.Error())
	return attempt(a.secondary)
}

func (a *Auth) SignUp(ctx context.Context, email, password string, profile model.NewProfile) (model.AuthResult, error) {
	return call(ctx, a, "sign_up", func(ctx context.Context, b model.Backend) (model.AuthResult, error) {
		return b.SignUp(ctx, email, password, profile)
	})
}

func (a *Auth) SignIn(ctx context.Context, email, password string) (model.AuthResult, error) {
	return call(ctx, a, "sign_in", func(ctx context.Context, b model.Backend) (model.AuthResult, error) {
		return b.SignIn(ctx, email, password)
	})
}

func (a *Auth) SignOut(ctx context.Context) error {
	_, err := call(ctx, a, "sign_out", func(ctx context.Context, b model.Backend) (struct{}, error) {
		return struct{}{}, b.SignOut(ctx)
	})
	return err
}

func (a *Auth) CurrentUser(ctx context.Context) (*model.UserProfile, error) {
	return call(ctx, a, "current_user", func(ctx context.Context, b model.Backend) (*model.UserProfile, error) {
		return b.CurrentUser(ctx)
	})
}

func (a *Auth) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.AuthResult, error) {
	return call(ctx, a, "update_profile", func(ctx context.Context, b model.Backend) (model.AuthResult, error) {
		return b.UpdateProfile(ctx, update)
	})
}

func (a *Auth) SendOTP(ctx context.Context, phone string) error {
	_, err := call(ctx, a, "send_otp", func(ctx context.Context, b model.Backend) (struct{}, error) {
		return struct{}{}, b.SendOTP(ctx, phone)
	})
	return err
}

func (a *Auth) VerifyOTP(ctx context.Context, phone, code string) error {
	_, err := call(ctx, a, "verify_otp", func(ctx context.Context, b model.Backend) (struct{}, error) {
		return struct{}{}, b.VerifyOTP(ctx, phone, code)
	})
	return err
}

func (a *Auth) SignUpWithPhone(ctx context.Context, phone, code string, profile model.NewProfile) (model.AuthResult, error) {
	return call(ctx, a, "sign_up_with_phone", func(ctx context.Context, b model.Backend) (model.AuthResult, error) {
		return b.SignUpWithPhone(ctx, phone, code, profile)
	})
}

func (a *Auth) SignInWithPhone(ctx context.Context, phone, code string) (model.AuthResult, error) {
	return call(ctx, a, "sign_in_with_phone", func(ctx context.Context, b model.Backend) (model.AuthResult, error) {
		return b.SignInWithPhone(ctx, phone, code)
	})
}

// OnAuthStateChange subscribes to the primary backend's session changes,
// falling back to the secondary when the primary cannot register the
// subscription.
func (a *Auth) OnAuthStateChange(fn func(*model.UserProfile)) (func(), error) {
	unsubscribe, err := a.primary.OnAuthStateChange(fn)
	if err == nil || a.secondary == nil {
		return unsubscribe, err
	}

	a.logger.Error("auth facade: primary subscription failed, falling back",
		"error", err.Error())
	return a.secondary.OnAuthStateChange(fn)
}
