package fideauth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// AdminPasswordUpdateMessage asks for a privileged password change on the
// subject matching Email.
type AdminPasswordUpdateMessage struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

func (m AdminPasswordUpdateMessage) Type() string { return "verification.admin_password_update" }

// AdminPasswordUpdateHandler resolves the subject by exact email and sets
// the new password through the directory's privileged mutation.
//
// This handler performs no token validation: the redemption client decodes
// and expiry-checks the reset token locally (ValidateResetToken) before
// calling here. That asymmetry with the email-confirmation path is
// inherited behavior; callers must not invoke this without a validated
// token in hand.
type AdminPasswordUpdateHandler struct {
	dir    Directory
	logger Logger
}

// NewAdminPasswordUpdateHandler creates a handler with sane defaults.
func NewAdminPasswordUpdateHandler(dir Directory) *AdminPasswordUpdateHandler {
	return &AdminPasswordUpdateHandler{
		dir:    dir,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *AdminPasswordUpdateHandler) WithLogger(logger Logger) *AdminPasswordUpdateHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *AdminPasswordUpdateHandler) Execute(ctx context.Context, event AdminPasswordUpdateMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *AdminPasswordUpdateHandler) execute(ctx context.Context, event AdminPasswordUpdateMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	subject, err := findSubjectByEmail(ctx, h.dir, event.Email)
	if err != nil {
		return err
	}

	if err := h.dir.SetPassword(ctx, subject.ID, event.NewPassword); err != nil {
		if IsSubjectNotFound(err) {
			return err
		}
		return wrapDirectoryErr(err)
	}

	h.logger.Info("password updated for subject %s", subject.ID)
	return nil
}
