package fideauth

import (
	"context"
	"errors"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// JWKSValidator validates provider-issued access credentials against the
// identity provider's published JWK set. Plug it into
// SessionManager.WithTokenValidator to reject tampered envelopes before
// handing their credentials back to the provider.
type JWKSValidator struct {
	jwks *keyfunc.JWKS
}

// NewJWKSValidator fetches the JWK set at jwksURL and keeps it refreshed in
// the background until ctx is cancelled.
func NewJWKSValidator(ctx context.Context, jwksURL string) (*JWKSValidator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch identity provider JWK set")
	}

	return &JWKSValidator{jwks: jwks}, nil
}

// Validate satisfies the TokenValidator interface.
func (v *JWKSValidator) Validate(tokenString string) error {
	_, err := jwt.Parse(tokenString, v.jwks.Keyfunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
	return nil
}
