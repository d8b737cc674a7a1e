package fideauth

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Subject is a single identity-directory record. The directory itself lives
// with the identity provider; we only ever read these through Directory.
type Subject struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	EmailConfirmed bool   `json:"email_confirmed"`
	UserType       string `json:"user_type,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	BusinessName   string `json:"business_name,omitempty"`
}

// Directory wraps the identity provider's administrative API: list subjects
// and perform privileged mutations on a single subject.
type Directory interface {
	ListSubjects(ctx context.Context) ([]Subject, error)
	ConfirmEmail(ctx context.Context, subjectID string) error
	SetPassword(ctx context.Context, subjectID, newPassword string) error
}

// Message is one outbound notification.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Notifier delivers a redemption link to the user. Delivery failures surface
// as ErrDispatchFailed; there is no state to roll back on failure.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// IdentityClient is the identity provider's session surface as seen by the
// SessionManager: query, set, refresh, and observe the ambient session.
type IdentityClient interface {
	CurrentSession(ctx context.Context) (*Session, error)
	SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error)
	RefreshSession(ctx context.Context) (*Session, error)
	// OnSessionChange registers fn for session-changed notifications and
	// returns an unsubscribe func. fn receives nil on sign-out.
	OnSessionChange(fn func(event string, session *Session)) (unsubscribe func())
}

// TokenValidator validates a provider-issued credential without tying the
// caller to a signing implementation.
type TokenValidator interface {
	Validate(tokenString string) error
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) error

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) error {
	if f == nil {
		return ErrTokenMalformed
	}
	return f(tokenString)
}

// Config holds the options the verification flows need at runtime.
type Config interface {
	GetBaseURL() string
	GetDirectoryURL() string
	GetServiceKey() string
	GetSenderName() string
	GetSenderAddress() string
}

type clock func() time.Time

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] FIDEAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] FIDEAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] FIDEAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] FIDEAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
