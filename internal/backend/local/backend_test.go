package local

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrimitra/agrimitra-auth/internal/localstore"
	"github.com/agrimitra/agrimitra-auth/internal/model"
	"github.com/agrimitra/agrimitra-auth/internal/otp"
	"github.com/agrimitra/agrimitra-auth/internal/sms"
	"github.com/agrimitra/agrimitra-auth/internal/testutil"
	"github.com/agrimitra/agrimitra-auth/internal/token"
)

type fixture struct {
	backend *Backend
	console *sms.Console
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	store, err := localstore.New(dir)
	require.NoError(t, err)

	log := testutil.MakeNoopLogger()
	console := sms.NewConsole(log)
	sender := sms.NewSenderWithProvider(console, time.Second, log)

	backend := New(
		localstore.NewUserDirectory(store),
		localstore.NewSessionSlot(store, "session"),
		otp.NewService(localstore.NewOTPRecords(store), log),
		sender,
		token.NewJWT("test-secret"),
		filepath.Join(dir, "avatars"),
		log,
	)
	return &fixture{backend: backend, console: console}
}

func TestBackend_SignUp_ThenSignIn_SameID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.backend.SignUp(ctx, "asha@example.com", "pw", model.NewProfile{Name: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", created.User.Name)
	assert.Equal(t, 0, created.User.AgriCreds)
	assert.False(t, created.User.JoinDate.IsZero())
	assert.NotEmpty(t, created.Session.Token)

	signedIn, err := f.backend.SignIn(ctx, "asha@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, signedIn.User.ID)
	// A fresh session token is issued on every sign-in.
	assert.NotEqual(t, created.Session.Token, signedIn.Session.Token)
}

func TestBackend_SignUp_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.backend.SignUp(ctx, "asha@example.com", "pw", model.NewProfile{})
	require.NoError(t, err)

	_, err = f.backend.SignUp(ctx, "asha@example.com", "pw", model.NewProfile{})
	require.ErrorIs(t, err, model.ErrDuplicateAccount)
}

func TestBackend_SignIn_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.backend.SignIn(ctx, "nobody@example.com", "pw")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestBackend_SignOut_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.backend.SignUp(ctx, "asha@example.com", "pw", model.NewProfile{})
	require.NoError(t, err)

	require.NoError(t, f.backend.SignOut(ctx))
	require.NoError(t, f.backend.SignOut(ctx))

	user, err := f.backend.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestBackend_CurrentUser_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.backend.SignUp(ctx, "asha@example.com", "pw", model.NewProfile{})
	require.NoError(t, err)

	f.backend.SetClock(func() time.Time { return time.Now().Add(model.SessionDuration + time.Minute) })

	user, err := f.backend.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestBackend_UpdateProfile_ShallowMerge(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.backend.SignUp(ctx, "asha@example.com", "pw", model.NewProfile{
		Name:     "Asha",
		Location: "Pune",
		LandSize: "2.5 acres",
		Crops:    []string{"rice", "wheat"},
	})
	require.NoError(t, err)

	name := "Asha K"
	updated, err := f.backend.UpdateProfile(ctx, model.ProfileUpdate{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Asha K", updated.User.Name)
	assert.Equal(t, "Pune", updated.User.Location)
	assert.Equal(t, "2.5 acres", updated.User.LandSize)
	assert.Equal(t, []string{"rice", "wheat"}, updated.User.Crops)
	// The session keeps its token across profile updates.
	assert.Equal(t, created.Session.Token, updated.Session.Token)

	user, err := f.backend.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Asha K", user.Name)
}

func TestBackend_UpdateProfile_NoSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	name := "X"
	_, err := f.backend.UpdateProfile(ctx, model.ProfileUpdate{Name: &name})
	require.ErrorIs(t, err, model.ErrNoActiveSession)
}

// captureOTP returns the last code surfaced on the development channel.
func captureOTP(t *testing.T, f *fixture, send func() error) string {
	t.Helper()

	var code string
	unsubscribe := f.console.Subscribe(func(n sms.Notification) { code = n.Code })
	defer unsubscribe()

	require.NoError(t, send())
	require.NotEmpty(t, code)
	return code
}

func TestBackend_PhoneSignUpFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phone := "+919876500000"

	code := captureOTP(t, f, func() error { return f.backend.SendOTP(ctx, phone) })

	require.NoError(t, f.backend.VerifyOTP(ctx, phone, code))

	result, err := f.backend.SignUpWithPhone(ctx, phone, code, model.NewProfile{Name: "Asha"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", result.User.Name)
	assert.Equal(t, phone, result.User.Phone)
	assert.Equal(t, "919876500000@agrimitra.local", result.User.Email)
	assert.NotEmpty(t, result.Session.Token)

	// The code is consumed by the completed signup.
	err = f.backend.VerifyOTP(ctx, phone, code)
	require.ErrorIs(t, err, model.ErrOTPNotFound)
}

func TestBackend_VerifyOTP_WrongThenRight(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phone := "+919876500001"

	code := captureOTP(t, f, func() error { return f.backend.SendOTP(ctx, phone) })

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	err := f.backend.VerifyOTP(ctx, phone, wrong)
	require.ErrorIs(t, err, model.ErrOTPMismatch)
	assert.Contains(t, err.Error(), "invalid OTP")

	require.NoError(t, f.backend.VerifyOTP(ctx, phone, code))
}

func TestBackend_SignUpWithPhone_DuplicateKeepsCode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phone := "+919876500002"

	code := captureOTP(t, f, func() error { return f.backend.SendOTP(ctx, phone) })
	_, err := f.backend.SignUpWithPhone(ctx, phone, code, model.NewProfile{})
	require.NoError(t, err)

	// Second signup against the same phone: the conflict must not burn
	// the freshly issued code, so a sign-in with it still succeeds.
	code = captureOTP(t, f, func() error { return f.backend.SendOTP(ctx, phone) })
	_, err = f.backend.SignUpWithPhone(ctx, phone, code, model.NewProfile{})
	require.ErrorIs(t, err, model.ErrDuplicateAccount)

	result, err := f.backend.SignInWithPhone(ctx, phone, code)
	require.NoError(t, err)
	assert.Equal(t, phone, result.User.Phone)
}

func TestBackend_SignInWithPhone_UnknownPhone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phone := "+919876500003"

	code := captureOTP(t, f, func() error { return f.backend.SendOTP(ctx, phone) })

	_, err := f.backend.SignInWithPhone(ctx, phone, code)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestBackend_OnAuthStateChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var events []*model.UserProfile
	unsubscribe, err := f.backend.OnAuthStateChange(func(u *model.UserProfile) {
		events = append(events, u)
	})
	require.NoError(t, err)
	defer unsubscribe()

	_, err = f.backend.SignUp(ctx, "asha@example.com", "pw", model.NewProfile{Name: "Asha"})
	require.NoError(t, err)
	require.NoError(t, f.backend.SignOut(ctx))

	require.Len(t, events, 2)
	require.NotNil(t, events[0])
	assert.Equal(t, "Asha", events[0].Name)
	assert.Nil(t, events[1])
}
