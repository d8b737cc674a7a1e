package fideauth

import (
	"context"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// PasswordResetMessage asks for a reset link to be minted and emailed.
type PasswordResetMessage struct {
	Email    string `json:"email"`
	UserType string `json:"user_type,omitempty"`
	Locale   string `json:"locale,omitempty"`
}

func (m PasswordResetMessage) Type() string { return "verification.password_reset" }

// IssuePasswordResetHandler mints a reset token keyed on the full email and
// dispatches the redemption link. The message goes out unconditionally, no
// directory existence check first, so responses never differ for known and
// unknown accounts.
type IssuePasswordResetHandler struct {
	notifier Notifier
	baseURL  string
	logger   Logger
	now      clock
}

// NewIssuePasswordResetHandler creates a handler with sane defaults.
func NewIssuePasswordResetHandler(notifier Notifier, baseURL string) *IssuePasswordResetHandler {
	return &IssuePasswordResetHandler{
		notifier: notifier,
		baseURL:  baseURL,
		logger:   defLogger{},
		now:      time.Now,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *IssuePasswordResetHandler) WithLogger(logger Logger) *IssuePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *IssuePasswordResetHandler) WithClock(now func() time.Time) *IssuePasswordResetHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *IssuePasswordResetHandler) Execute(ctx context.Context, event PasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset issuance",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *IssuePasswordResetHandler) execute(ctx context.Context, event PasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token := EncodeResetToken(event.Email, h.now())
	link := resetPasswordURL(h.baseURL, token, event.Email)

	copies := localeCopy(event.Locale)

	html, text, err := renderEmail(copies.resetIntro, copies.resetAction, copies.validity, copies.ignore, link)
	if err != nil {
		return err
	}

	if err := h.notifier.Send(ctx, Message{
		To:      event.Email,
		Subject: copies.resetSubject,
		HTML:    html,
		Text:    text,
	}); err != nil {
		h.logger.Error("password reset dispatch failed for %s: %v", event.Email, err)
		return wrapDispatchErr(err)
	}

	h.logger.Info("password reset sent to %s", event.Email)
	return nil
}

func resetPasswordURL(base, token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return base + "/reset-password-custom?" + q.Encode()
}
