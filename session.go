package fideauth

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// EnvelopeMaxAge bounds how long a persisted envelope is trusted for
// restoration, independent of the credential's own expiry.
const EnvelopeMaxAge = 24 * time.Hour

// ErrEnvelopeTooOld means the envelope sat in durable storage past its
// maximum age.
var ErrEnvelopeTooOld = errors.New("session envelope exceeds maximum age")

// ErrCredentialExpired means the embedded credential's own expiry passed.
var ErrCredentialExpired = errors.New("session credential has expired")

// ErrCredentialMissing means one or both credential fields are absent.
var ErrCredentialMissing = errors.New("session envelope is missing credentials")

// Session is one authenticated run. Owned exclusively by SessionManager;
// mutated only through its persist, restore, and refresh operations.
type Session struct {
	SubjectID     string    `json:"subject_id"`
	AccessToken   string    `json:"access_token"`
	RefreshToken  string    `json:"refresh_token"`
	ExpiresAt     time.Time `json:"expires_at"`
	IssuedAt      time.Time `json:"issued_at"`
	LastRefreshAt time.Time `json:"last_refresh_at,omitempty"`
}

// TimeToLive reports the remaining credential lifetime as of now.
func (s *Session) TimeToLive(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}

// EnsureExpiry backfills ExpiresAt from the access credential's exp claim
// when the provider did not report an explicit expiry. The claim is read
// without signature verification; the provider remains the authority on
// whether the credential is actually accepted.
func (s *Session) EnsureExpiry() {
	if !s.ExpiresAt.IsZero() || s.AccessToken == "" {
		return
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken, claims); err != nil {
		return
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}

	s.ExpiresAt = exp.Time
}

// Envelope is the durable, timestamped serialized form of a Session.
type Envelope struct {
	Session     Session   `json:"session"`
	PersistedAt time.Time `json:"persisted_at"`
}

// Validate reports whether the envelope may be trusted for restoration as
// of now: within max age, credential not expired, both credentials present.
func (e Envelope) Validate(now time.Time) error {
	if now.Sub(e.PersistedAt) > EnvelopeMaxAge {
		return ErrEnvelopeTooOld
	}

	if e.Session.AccessToken == "" || e.Session.RefreshToken == "" {
		return ErrCredentialMissing
	}

	if !e.Session.ExpiresAt.IsZero() && !e.Session.ExpiresAt.After(now) {
		return ErrCredentialExpired
	}

	return nil
}

func encodeEnvelope(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to serialize session envelope")
	}
	return data, nil
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, goerrors.Wrap(err, ErrStorageCorrupt.Category, ErrStorageCorrupt.Message).
			WithTextCode(ErrStorageCorrupt.TextCode)
	}
	return e, nil
}
