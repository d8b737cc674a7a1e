package fideauth_test

import (
	"testing"
	"time"

	fideauth "github.com/fastfide/go-fideauth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeValidate(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	valid := fideauth.Envelope{
		Session: fideauth.Session{
			SubjectID:    "abcdef1234567890",
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    now.Add(time.Hour),
		},
		PersistedAt: now.Add(-time.Hour),
	}

	t.Run("fresh envelope passes", func(t *testing.T) {
		assert.NoError(t, valid.Validate(now))
	})

	t.Run("max age exceeded even with future credential expiry", func(t *testing.T) {
		envelope := valid
		envelope.PersistedAt = now.Add(-25 * time.Hour)
		envelope.Session.ExpiresAt = now.Add(time.Hour)

		err := envelope.Validate(now)
		assert.ErrorIs(t, err, fideauth.ErrEnvelopeTooOld)
	})

	t.Run("credential expired", func(t *testing.T) {
		envelope := valid
		envelope.Session.ExpiresAt = now.Add(-time.Minute)

		err := envelope.Validate(now)
		assert.ErrorIs(t, err, fideauth.ErrCredentialExpired)
	})

	t.Run("missing access token", func(t *testing.T) {
		envelope := valid
		envelope.Session.AccessToken = ""

		assert.ErrorIs(t, envelope.Validate(now), fideauth.ErrCredentialMissing)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		envelope := valid
		envelope.Session.RefreshToken = ""

		assert.ErrorIs(t, envelope.Validate(now), fideauth.ErrCredentialMissing)
	})
}

func TestSessionTimeToLive(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	session := fideauth.Session{ExpiresAt: now.Add(200 * time.Second)}

	assert.Equal(t, 200*time.Second, session.TimeToLive(now))
	assert.Negative(t, session.TimeToLive(now.Add(300*time.Second)))
}

func TestSessionEnsureExpiry(t *testing.T) {
	t.Run("backfills from jwt exp claim", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		raw := signedTestToken(t, exp)

		session := fideauth.Session{AccessToken: raw}
		session.EnsureExpiry()

		assert.Equal(t, exp.Unix(), session.ExpiresAt.Unix())
	})

	t.Run("keeps explicit expiry", func(t *testing.T) {
		explicit := time.Unix(42, 0)
		session := fideauth.Session{AccessToken: "whatever", ExpiresAt: explicit}
		session.EnsureExpiry()

		assert.Equal(t, explicit, session.ExpiresAt)
	})

	t.Run("non jwt credential stays zero", func(t *testing.T) {
		session := fideauth.Session{AccessToken: "opaque-credential"}
		session.EnsureExpiry()

		assert.True(t, session.ExpiresAt.IsZero())
	})
}

func signedTestToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "abcdef1234567890",
		"exp": exp.Unix(),
	})
	raw, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return raw
}
