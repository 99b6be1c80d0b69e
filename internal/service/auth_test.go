package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimitra/agrimitra-auth/internal/model"
	"github.com/agrimitra/agrimitra-auth/internal/testutil"
)

// brokenBackend fails every call the way an unreachable remote would.
type brokenBackend struct {
	calls int
}

var errNetwork = errors.New("connection refused")

func (b *brokenBackend) SignUp(context.Context, string, string, model.NewProfile) (model.AuthResult, error) {
	b.calls++
	return model.AuthResult{}, errNetwork
}
func (b *brokenBackend) SignIn(context.Context, string, string) (model.AuthResult, error) {
	b.calls++
	return model.AuthResult{}, errNetwork
}
func (b *brokenBackend) SignOut(context.Context) error {
	b.calls++
	return errNetwork
}
func (b *brokenBackend) CurrentUser(context.Context) (*model.UserProfile, error) {
	b.calls++
	return nil, errNetwork
}
func (b *brokenBackend) UpdateProfile(context.Context, model.ProfileUpdate) (model.AuthResult, error) {
	b.calls++
	return model.AuthResult{}, errNetwork
}
func (b *brokenBackend) SendOTP(context.Context, string) error {
	b.calls++
	return errNetwork
}
func (b *brokenBackend) VerifyOTP(context.Context, string, string) error {
	b.calls++
	return errNetwork
}
func (b *brokenBackend) SignUpWithPhone(context.Context, string, string, model.NewProfile) (model.AuthResult, error) {
	b.calls++
	return model.AuthResult{}, errNetwork
}
func (b *brokenBackend) SignInWithPhone(context.Context, string, string) (model.AuthResult, error) {
	b.calls++
	return model.AuthResult{}, errNetwork
}
func (b *brokenBackend) OnAuthStateChange(func(*model.UserProfile)) (func(), error) {
	b.calls++
	return nil, errNetwork
}

// recordingBackend answers every call and remembers it was reached.
type recordingBackend struct {
	calls []string
	user  model.UserProfile
	err   error
}

func (r *recordingBackend) result() (model.AuthResult, error) {
	if r.err != nil {
		return model.AuthResult{}, r.err
	}
	return model.AuthResult{
		User:    r.user,
		Session: model.Session{User: r.user, Token: "tok", ExpiresAt: time.Now().Add(model.SessionDuration)},
	}, nil
}

func (r *recordingBackend) SignUp(context.Context, string, string, model.NewProfile) (model.AuthResult, error) {
	r.calls = append(r.calls, "sign_up")
	return r.result()
}
func (r *recordingBackend) SignIn(context.Context, string, string) (model.AuthResult, error) {
	r.calls = append(r.calls, "sign_in")
	return r.result()
}
func (r *recordingBackend) SignOut(context.Context) error {
	r.calls = append(r.calls, "sign_out")
	return r.err
}
func (r *recordingBackend) CurrentUser(context.Context) (*model.UserProfile, error) {
	r.calls = append(r.calls, "current_user")
	if r.err != nil {
		return nil, r.err
	}
	u := r.user
	return &u, nil
}
func (r *recordingBackend) UpdateProfile(context.Context, model.ProfileUpdate) (model.AuthResult, error) {
	r.calls = append(r.calls, "update_profile")
	return r.result()
}
func (r *recordingBackend) SendOTP(context.Context, string) error {
	r.calls = append(r.calls, "send_otp")
	return r.err
}
func (r *recordingBackend) VerifyOTP(context.Context, string, string) error {
	r.calls = append(r.calls, "verify_otp")
	return r.err
}
func (r *recordingBackend) SignUpWithPhone(context.Context, string, string, model.NewProfile) (model.AuthResult, error) {
	r.calls = append(r.calls, "sign_up_with_phone")
	return r.result()
}
func (r *recordingBackend) SignInWithPhone(context.Context, string, string) (model.AuthResult, error) {
	r.calls = append(r.calls, "sign_in_with_phone")
	return r.result()
}
func (r *recordingBackend) OnAuthStateChange(func(*model.UserProfile)) (func(), error) {
	r.calls = append(r.calls, "on_auth_state_change")
	if r.err != nil {
		return nil, r.err
	}
	return func() {}, nil
}

func TestAuth_FallsBackOnEveryOperation(t *testing.T) {
	ctx := context.Background()
	primary := &brokenBackend{}
	secondary := &recordingBackend{user: model.UserProfile{ID: uuid.New(), Name: "Asha"}}
	a := NewAuth(primary, secondary, time.Second, testutil.MakeNoopLogger())

	result, err := a.SignUp(ctx, "a@b.c", "pw", model.NewProfile{})
	require.NoError(t, err)
	assert.Equal(t, "Asha", result.User.Name)

	_, err = a.SignIn(ctx, "a@b.c", "pw")
	require.NoError(t, err)

	require.NoError(t, a.SignOut(ctx))

	user, err := a.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)

	_, err = a.UpdateProfile(ctx, model.ProfileUpdate{})
	require.NoError(t, err)

	require.NoError(t, a.SendOTP(ctx, "+911"))
	require.NoError(t, a.VerifyOTP(ctx, "+911", "123456"))

	_, err = a.SignUpWithPhone(ctx, "+911", "123456", model.NewProfile{})
	require.NoError(t, err)
	_, err = a.SignInWithPhone(ctx, "+911", "123456")
	require.NoError(t, err)

	unsubscribe, err := a.OnAuthStateChange(func(*model.UserProfile) {})
	require.NoError(t, err)
	unsubscribe()

	assert.Equal(t, []string{
		"sign_up", "sign_in", "sign_out", "current_user", "update_profile",
		"send_otp", "verify_otp", "sign_up_with_phone", "sign_in_with_phone",
		"on_auth_state_change",
	}, secondary.calls)
	assert.Equal(t, 10, primary.calls)
}

func TestAuth_DomainErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	primary := &recordingBackend{err: model.ErrDuplicateAccount}
	secondary := &recordingBackend{}
	a := NewAuth(primary, secondary, time.Second, testutil.MakeNoopLogger())

	_, err := a.SignUp(ctx, "a@b.c", "pw", model.NewProfile{})
	require.ErrorIs(t, err, model.ErrDuplicateAccount)

	// A domain answer from the primary must not trigger a second attempt.
	assert.Empty(t, secondary.calls)
}

func TestAuth_OTPMismatchPassesThrough(t *testing.T) {
	ctx := context.Background()
	primary := &recordingBackend{err: model.ErrOTPMismatch}
	secondary := &recordingBackend{}
	a := NewAuth(primary, secondary, time.Second, testutil.MakeNoopLogger())

	err := a.VerifyOTP(ctx, "+911", "000000")
	require.ErrorIs(t, err, model.ErrOTPMismatch)
	assert.Empty(t, secondary.calls)
}

func TestAuth_NoSecondary(t *testing.T) {
	ctx := context.Background()
	primary := &brokenBackend{}
	a := NewAuth(primary, nil, time.Second, testutil.MakeNoopLogger())

	_, err := a.SignIn(ctx, "a@b.c", "pw")
	require.ErrorIs(t, err, errNetwork)
}

func TestAuth_PrimarySuccessSkipsSecondary(t *testing.T) {
	ctx := context.Background()
	primary := &recordingBackend{user: model.UserProfile{ID: uuid.New()}}
	secondary := &recordingBackend{}
	a := NewAuth(primary, secondary, time.Second, testutil.MakeNoopLogger())

	_, err := a.SignIn(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Empty(t, secondary.calls)
}
