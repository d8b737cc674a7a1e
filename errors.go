package fideauth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeTokenMalformed       = "TOKEN_MALFORMED"
	TextCodeTokenExpired         = "TOKEN_EXPIRED"
	TextCodeSubjectNotFound      = "SUBJECT_NOT_FOUND"
	TextCodeDirectoryUnavailable = "DIRECTORY_UNAVAILABLE"
	TextCodeDispatchFailed       = "DISPATCH_FAILED"
	TextCodeStorageCorrupt       = "STORAGE_CORRUPT"
)

// ErrTokenMalformed is returned when a verification token cannot be reversed
// into its expected components.
var ErrTokenMalformed = goerrors.New("verification token is malformed", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned when a token's validity window has closed.
var ErrTokenExpired = goerrors.New("verification token has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrSubjectNotFound is returned when no directory entry matches the
// resolved identity.
var ErrSubjectNotFound = goerrors.New("no matching subject in identity directory", goerrors.CategoryNotFound).
	WithTextCode(TextCodeSubjectNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrDirectoryUnavailable is returned when the identity provider's
// administrative API call itself failed.
var ErrDirectoryUnavailable = goerrors.New("identity directory unavailable", goerrors.CategoryInternal).
	WithTextCode(TextCodeDirectoryUnavailable).
	WithCode(goerrors.CodeInternal)

// ErrDispatchFailed is returned when the notification collaborator failed.
var ErrDispatchFailed = goerrors.New("notification dispatch failed", goerrors.CategoryInternal).
	WithTextCode(TextCodeDispatchFailed).
	WithCode(goerrors.CodeInternal)

// ErrStorageCorrupt means a persisted envelope could not be parsed. Callers
// treat it as absence, never as a fatal condition.
var ErrStorageCorrupt = goerrors.New("persisted session envelope is corrupt", goerrors.CategoryInternal).
	WithTextCode(TextCodeStorageCorrupt).
	WithCode(goerrors.CodeInternal)

// ErrKeyNotFound is returned by stores when a key has no value.
var ErrKeyNotFound = errors.New("storage key not found")

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("value cannot be an empty string")

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("password does not match hash")

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// IsTokenMalformed will check for token decode failures.
func IsTokenMalformed(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

// IsTokenExpired will check for closed validity windows.
func IsTokenExpired(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsSubjectNotFound will check for unresolvable subjects.
func IsSubjectNotFound(err error) bool {
	return hasTextCode(err, TextCodeSubjectNotFound)
}

// IsDirectoryUnavailable will check for failed directory calls.
func IsDirectoryUnavailable(err error) bool {
	return hasTextCode(err, TextCodeDirectoryUnavailable)
}

// IsDispatchFailed will check for failed notification dispatches.
func IsDispatchFailed(err error) bool {
	return hasTextCode(err, TextCodeDispatchFailed)
}

// IsStorageCorrupt will check for unparseable envelopes.
func IsStorageCorrupt(err error) bool {
	return hasTextCode(err, TextCodeStorageCorrupt)
}
