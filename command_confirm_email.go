package fideauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// EmailConfirmationMessage redeems an emailed confirmation token.
type EmailConfirmationMessage struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (m EmailConfirmationMessage) Type() string { return "verification.confirm_email" }

// RedeemEmailConfirmationHandler decodes and validates the token, resolves
// the subject by email plus id prefix, and marks the email confirmed.
//
// Redemption does not consume the token: a valid token can be redeemed any
// number of times until its window closes. Inherited behavior, kept on
// purpose; harden only with a tracked consumed-token set and a product
// decision, since a failing second redemption is observable.
type RedeemEmailConfirmationHandler struct {
	dir    Directory
	logger Logger
	now    clock
}

// NewRedeemEmailConfirmationHandler creates a handler with sane defaults.
func NewRedeemEmailConfirmationHandler(dir Directory) *RedeemEmailConfirmationHandler {
	return &RedeemEmailConfirmationHandler{
		dir:    dir,
		logger: defLogger{},
		now:    time.Now,
	}
}

// WithLogger overrides the logger used by the handler.
func (h *RedeemEmailConfirmationHandler) WithLogger(logger Logger) *RedeemEmailConfirmationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *RedeemEmailConfirmationHandler) WithClock(now func() time.Time) *RedeemEmailConfirmationHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *RedeemEmailConfirmationHandler) Execute(ctx context.Context, event EmailConfirmationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email confirmation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RedeemEmailConfirmationHandler) execute(ctx context.Context, event EmailConfirmationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	token, err := DecodeToken(event.Token)
	if err != nil {
		return err
	}

	if IsExpiredAt(token.IssuedAt, h.now(), SignupConfirmationValidityHours) {
		return ErrTokenExpired
	}

	subject, err := findSubjectByEmailAndPrefix(ctx, h.dir, event.Email, token.SubjectRef)
	if err != nil {
		return err
	}

	if err := h.dir.ConfirmEmail(ctx, subject.ID); err != nil {
		if IsSubjectNotFound(err) {
			return err
		}
		return wrapDirectoryErr(err)
	}

	h.logger.Info("email confirmed for subject %s", subject.ID)
	return nil
}
