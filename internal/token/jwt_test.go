package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agrimitra/agrimitra-auth/internal/model"
)

func TestJWT_SessionToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	token, expiresAt, err := j.GenerateSessionToken(u)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(model.SessionDuration), expiresAt, 5*time.Second)

	got, err := j.ParseSessionToken(token)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestJWT_SessionToken_UniquePerIssue(t *testing.T) {
	j := NewJWT("secret")
	u := uuid.New()

	first, _, err := j.GenerateSessionToken(u)
	require.NoError(t, err)
	second, _, err := j.GenerateSessionToken(u)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestJWT_WrongSecret(t *testing.T) {
	u := uuid.New()

	token, _, err := NewJWT("secret").GenerateSessionToken(u)
	require.NoError(t, err)

	_, err = NewJWT("other").ParseSessionToken(token)
	require.Error(t, err)
}

func TestJWT_Garbage(t *testing.T) {
	_, err := NewJWT("secret").ParseSessionToken("not-a-token")
	require.Error(t, err)
}
