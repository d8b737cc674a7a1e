package fideauth_test

import (
	"strings"
	"testing"
	"time"

	fideauth "github.com/fastfide/go-fideauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken_RoundTrip(t *testing.T) {
	issuedAt := time.Unix(1000, 0)

	tests := []struct {
		name       string
		subjectRef string
	}{
		{name: "uuid prefix", subjectRef: "abcdef12"},
		{name: "short id", subjectRef: "u1"},
		{name: "numeric ref", subjectRef: "12345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := fideauth.EncodeToken(tt.subjectRef, issuedAt)

			decoded, err := fideauth.DecodeToken(raw)
			require.NoError(t, err)

			assert.Equal(t, tt.subjectRef, decoded.SubjectRef)
			assert.Equal(t, issuedAt.Unix(), decoded.IssuedAt.Unix())
			assert.NotEmpty(t, decoded.Nonce)
		})
	}
}

func TestEncodeToken_UniqueNonce(t *testing.T) {
	issuedAt := time.Now()
	a := fideauth.EncodeToken("abcdef12", issuedAt)
	b := fideauth.EncodeToken("abcdef12", issuedAt)
	assert.NotEqual(t, a, b)
}

func TestDecodeToken_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "no separators", raw: "abcdef12"},
		{name: "two parts", raw: "abcdef12:nonce"},
		{name: "four parts", raw: "abcdef12:nonce:1000:extra"},
		{name: "non numeric timestamp", raw: "abcdef12:nonce:tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fideauth.DecodeToken(tt.raw)
			require.Error(t, err)
			assert.True(t, fideauth.IsTokenMalformed(err))
		})
	}
}

func TestSubjectPrefix(t *testing.T) {
	assert.Equal(t, "abcdef12", fideauth.SubjectPrefix("abcdef1234567890"))
	assert.Equal(t, "short", fideauth.SubjectPrefix("short"))
	assert.Equal(t, "3f2b8a91", fideauth.SubjectPrefix("3f2b8a91-77cd-4b6e-9f10-0a1b2c3d4e5f"))
}

func TestIsExpiredAt(t *testing.T) {
	issuedAt := time.Unix(1000, 0)

	t.Run("inside window", func(t *testing.T) {
		now := issuedAt.Add(24*time.Hour - time.Second)
		assert.False(t, fideauth.IsExpiredAt(issuedAt, now, 24))
	})

	t.Run("outside window", func(t *testing.T) {
		now := issuedAt.Add(24*time.Hour + time.Second)
		assert.True(t, fideauth.IsExpiredAt(issuedAt, now, 24))
	})

	t.Run("exactly at boundary", func(t *testing.T) {
		now := issuedAt.Add(24 * time.Hour)
		assert.False(t, fideauth.IsExpiredAt(issuedAt, now, 24))
	})

	t.Run("monotonic in elapsed time", func(t *testing.T) {
		first := issuedAt.Add(25 * time.Hour)
		for i := 0; i < 10; i++ {
			now := first.Add(time.Duration(i) * time.Hour)
			assert.True(t, fideauth.IsExpiredAt(issuedAt, now, 24))
		}
	})
}

func TestResetToken_RoundTrip(t *testing.T) {
	issuedAt := time.Unix(2000, 0)
	raw := fideauth.EncodeResetToken("pepe.rone@example.com", issuedAt)

	// reset tokens carry the full email and no nonce
	assert.Equal(t, 1, strings.Count(raw, ":"))

	token, err := fideauth.DecodeResetToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "pepe.rone@example.com", token.Email)
	assert.Equal(t, issuedAt.Unix(), token.IssuedAt.Unix())
}

func TestDecodeResetToken_Malformed(t *testing.T) {
	for _, raw := range []string{"", "user@example.com", "a:b:c", "user@example.com:soon"} {
		_, err := fideauth.DecodeResetToken(raw)
		require.Error(t, err, raw)
		assert.True(t, fideauth.IsTokenMalformed(err), raw)
	}
}

func TestValidateResetToken(t *testing.T) {
	t.Run("fresh token passes", func(t *testing.T) {
		raw := fideauth.EncodeResetToken("a@b.com", time.Now().Add(-30*time.Minute))
		token, err := fideauth.ValidateResetToken(raw)
		require.NoError(t, err)
		assert.Equal(t, "a@b.com", token.Email)
	})

	t.Run("enforces the tighter redemption window", func(t *testing.T) {
		// two hours old: inside the emailed 24h copy, outside the 1h check
		raw := fideauth.EncodeResetToken("a@b.com", time.Now().Add(-2*time.Hour))
		_, err := fideauth.ValidateResetToken(raw)
		require.Error(t, err)
		assert.True(t, fideauth.IsTokenExpired(err))
	})
}
