package fideauth

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// tokenSeparator joins token components. Subject ids are UUIDs, so a
	// truncated ref never contains it.
	tokenSeparator = ":"

	// SubjectRefLength is how many leading characters of a subject id go
	// into a signup-confirmation token.
	SubjectRefLength = 8

	// SignupConfirmationValidityHours bounds email-confirmation redemption.
	SignupConfirmationValidityHours = 24

	// PasswordResetValidityHours is the window communicated to the user in
	// the reset email.
	PasswordResetValidityHours = 24

	// PasswordResetRedeemWindowHours is the window the redemption client
	// actually enforces. It disagrees with the emailed copy on purpose; the
	// mismatch is inherited behavior, kept until product decides otherwise.
	PasswordResetRedeemWindowHours = 1
)

// DecodedToken is the reversed form of a signup-confirmation token.
type DecodedToken struct {
	SubjectRef string
	Nonce      string
	IssuedAt   time.Time
}

// ResetToken is the reversed form of a password-reset token. Reset tokens
// carry the full email and no nonce, a different shape than signup
// confirmation. The two shapes are deliberately not unified.
type ResetToken struct {
	Email    string
	IssuedAt time.Time
}

// SubjectPrefix truncates a subject id to the ref embedded in tokens.
func SubjectPrefix(subjectID string) string {
	if len(subjectID) <= SubjectRefLength {
		return subjectID
	}
	return subjectID[:SubjectRefLength]
}

// EncodeToken joins subjectRef, a fresh random nonce, and the issuance
// timestamp into one reversible opaque string.
func EncodeToken(subjectRef string, issuedAt time.Time) string {
	return strings.Join([]string{
		subjectRef,
		uuid.NewString(),
		strconv.FormatInt(issuedAt.Unix(), 10),
	}, tokenSeparator)
}

// DecodeToken reverses a signup-confirmation token. It fails with
// ErrTokenMalformed unless the token splits into exactly three parts with a
// numeric timestamp.
func DecodeToken(raw string) (DecodedToken, error) {
	parts := strings.Split(raw, tokenSeparator)
	if len(parts) != 3 {
		return DecodedToken{}, ErrTokenMalformed
	}

	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return DecodedToken{}, ErrTokenMalformed
	}

	return DecodedToken{
		SubjectRef: parts[0],
		Nonce:      parts[1],
		IssuedAt:   time.Unix(ts, 0),
	}, nil
}

// EncodeResetToken joins the full email and the issuance timestamp.
func EncodeResetToken(email string, issuedAt time.Time) string {
	return fmt.Sprintf("%s%s%d", email, tokenSeparator, issuedAt.Unix())
}

// DecodeResetToken reverses a password-reset token.
func DecodeResetToken(raw string) (ResetToken, error) {
	parts := strings.Split(raw, tokenSeparator)
	if len(parts) != 2 {
		return ResetToken{}, ErrTokenMalformed
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ResetToken{}, ErrTokenMalformed
	}

	return ResetToken{
		Email:    parts[0],
		IssuedAt: time.Unix(ts, 0),
	}, nil
}

// IsExpiredAt reports whether a token issued at issuedAt is past its
// validity window as of now. Pure; monotonic in elapsed time.
func IsExpiredAt(issuedAt, now time.Time, validityHours int) bool {
	return now.Sub(issuedAt) > time.Duration(validityHours)*time.Hour
}

// IsExpired evaluates IsExpiredAt against the wall clock.
func IsExpired(issuedAt time.Time, validityHours int) bool {
	return IsExpiredAt(issuedAt, time.Now(), validityHours)
}

// ValidateResetToken decodes raw and enforces the redemption window the
// client applies before requesting the privileged password update.
func ValidateResetToken(raw string) (ResetToken, error) {
	return validateResetTokenAt(raw, time.Now())
}

func validateResetTokenAt(raw string, now time.Time) (ResetToken, error) {
	token, err := DecodeResetToken(raw)
	if err != nil {
		return ResetToken{}, err
	}

	if IsExpiredAt(token.IssuedAt, now, PasswordResetRedeemWindowHours) {
		return ResetToken{}, ErrTokenExpired
	}

	return token, nil
}
