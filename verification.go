package fideauth

import (
	"context"
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// User types known to the verification flows.
const (
	UserTypeMerchant = "merchant"
	UserTypeCustomer = "customer"
)

// Wire values of the request type discriminator.
const (
	RequestTypeSignupConfirmation  = "signup_confirmation"
	RequestTypeConfirmEmail        = "confirm_email"
	RequestTypePasswordReset       = "password_reset"
	RequestTypeAdminPasswordUpdate = "admin_password_update"
)

// VerificationRequest is the closed union of verification operations. Each
// variant is one of the four message types; Router matches them
// exhaustively, so adding a variant is a compile-time checked change.
type VerificationRequest interface {
	Type() string
	verificationRequest()
}

func (SignupConfirmationMessage) verificationRequest()  {}
func (EmailConfirmationMessage) verificationRequest()   {}
func (PasswordResetMessage) verificationRequest()       {}
func (AdminPasswordUpdateMessage) verificationRequest() {}

// Router composes the four command handlers. Stateless; operations are
// independently invocable and share no coordination.
type Router struct {
	signup        *IssueSignupConfirmationHandler
	confirmEmail  *RedeemEmailConfirmationHandler
	passwordReset *IssuePasswordResetHandler
	passwordSet   *AdminPasswordUpdateHandler
}

// NewRouter wires handlers over the given collaborators.
func NewRouter(dir Directory, notifier Notifier, baseURL string) *Router {
	return &Router{
		signup:        NewIssueSignupConfirmationHandler(notifier, baseURL),
		confirmEmail:  NewRedeemEmailConfirmationHandler(dir),
		passwordReset: NewIssuePasswordResetHandler(notifier, baseURL),
		passwordSet:   NewAdminPasswordUpdateHandler(dir),
	}
}

// WithLogger propagates the logger to every handler.
func (r *Router) WithLogger(logger Logger) *Router {
	r.signup.WithLogger(logger)
	r.confirmEmail.WithLogger(logger)
	r.passwordReset.WithLogger(logger)
	r.passwordSet.WithLogger(logger)
	return r
}

// Dispatch executes the handler for the request variant.
func (r *Router) Dispatch(ctx context.Context, req VerificationRequest) error {
	switch req := req.(type) {
	case SignupConfirmationMessage:
		return r.signup.Execute(ctx, req)
	case EmailConfirmationMessage:
		return r.confirmEmail.Execute(ctx, req)
	case PasswordResetMessage:
		return r.passwordReset.Execute(ctx, req)
	case AdminPasswordUpdateMessage:
		return r.passwordSet.Execute(ctx, req)
	default:
		return goerrors.New(
			fmt.Sprintf("unknown verification request type %q", req.Type()),
			goerrors.CategoryBadInput,
		)
	}
}

// verificationPayload is the wire form at the server boundary.
type verificationPayload struct {
	Kind         string `json:"type"`
	Email        string `json:"email"`
	UserID       string `json:"user_id,omitempty"`
	Token        string `json:"token,omitempty"`
	NewPassword  string `json:"new_password,omitempty"`
	UserType     string `json:"user_type,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	BusinessName string `json:"business_name,omitempty"`
	Locale       string `json:"locale,omitempty"`
}

func (p verificationPayload) validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&p.Kind, validation.Required, validation.In(
			RequestTypeSignupConfirmation,
			RequestTypeConfirmEmail,
			RequestTypePasswordReset,
			RequestTypeAdminPasswordUpdate,
		)),
		validation.Field(&p.Email, validation.Required, is.Email),
	}

	switch p.Kind {
	case RequestTypeSignupConfirmation:
		rules = append(rules, validation.Field(&p.UserID, validation.Required))
	case RequestTypeConfirmEmail:
		rules = append(rules, validation.Field(&p.Token, validation.Required))
	case RequestTypeAdminPasswordUpdate:
		rules = append(rules, validation.Field(&p.NewPassword, validation.Required))
	}

	return validation.ValidateStruct(&p, rules...)
}

// ParseVerificationRequest decodes and validates the boundary payload into
// its typed variant.
func ParseVerificationRequest(body []byte) (VerificationRequest, error) {
	var p verificationPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid verification request body")
	}

	if err := p.validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid verification request").
			WithMetadata(map[string]any{"type": p.Kind})
	}

	switch p.Kind {
	case RequestTypeSignupConfirmation:
		return SignupConfirmationMessage{
			Email:        p.Email,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			BusinessName: p.BusinessName,
			UserType:     p.UserType,
			UserID:       p.UserID,
			Locale:       p.Locale,
		}, nil
	case RequestTypeConfirmEmail:
		return EmailConfirmationMessage{Email: p.Email, Token: p.Token}, nil
	case RequestTypePasswordReset:
		return PasswordResetMessage{Email: p.Email, UserType: p.UserType, Locale: p.Locale}, nil
	case RequestTypeAdminPasswordUpdate:
		return AdminPasswordUpdateMessage{Email: p.Email, NewPassword: p.NewPassword}, nil
	}

	// unreachable, the validator pins Kind to the known set
	return nil, goerrors.New("unknown verification request type", goerrors.CategoryBadInput)
}
