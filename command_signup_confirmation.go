package fideauth

import (
	"context"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// SignupConfirmationMessage asks for a confirmation link to be minted and
// emailed to a freshly registered account.
type SignupConfirmationMessage struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
	UserType     string `json:"user_type"`
	UserID       string `json:"user_id"`
	Locale       string `json:"locale,omitempty"`
}

func (m SignupConfirmationMessage) Type() string { return "verification.signup_confirmation" }

// IssueSignupConfirmationHandler mints a confirmation token keyed on an
// 8-character prefix of the user id, builds the redemption URL, and hands
// the message to the Notifier. It never touches the identity directory.
type IssueSignupConfirmationHandler struct {
	notifier Notifier
	baseURL  string
	logger   Logger
	now      clock
}

// NewIssueSignupConfirmationHandler creates a handler with sane defaults.
func NewIssueSignupConfirmationHandler(notifier Notifier, baseURL string) *IssueSignupConfirmationHandler {
	return &IssueSignupConfirmationHandler{
		notifier: notifier,
		baseURL:  baseURL,
		logger:   defLogger{},
		now:      time.Now,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *IssueSignupConfirmationHandler) WithLogger(logger Logger) *IssueSignupConfirmationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *IssueSignupConfirmationHandler) WithClock(now func() time.Time) *IssueSignupConfirmationHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *IssueSignupConfirmationHandler) Execute(ctx context.Context, event SignupConfirmationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup confirmation issuance",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *IssueSignupConfirmationHandler) execute(ctx context.Context, event SignupConfirmationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token := EncodeToken(SubjectPrefix(event.UserID), h.now())
	link := confirmEmailURL(h.baseURL, token, event.Email)

	copies := localeCopy(event.Locale)
	intro := sprintfIntro(copies.confirmIntro, displayName(event.UserType, event.FirstName, event.BusinessName, event.Email))

	html, text, err := renderEmail(intro, copies.confirmAction, copies.validity, copies.ignore, link)
	if err != nil {
		return err
	}

	if err := h.notifier.Send(ctx, Message{
		To:      event.Email,
		Subject: copies.confirmSubject,
		HTML:    html,
		Text:    text,
	}); err != nil {
		h.logger.Error("signup confirmation dispatch failed for %s: %v", event.Email, err)
		return wrapDispatchErr(err)
	}

	h.logger.Info("signup confirmation sent to %s", event.Email)
	return nil
}

func confirmEmailURL(base, token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return base + "/confirm-email?" + q.Encode()
}

func wrapDispatchErr(err error) error {
	if IsDispatchFailed(err) {
		return err
	}
	return goerrors.Wrap(err, ErrDispatchFailed.Category, ErrDispatchFailed.Message).
		WithTextCode(ErrDispatchFailed.TextCode)
}
