package accounts

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
)

// IDTokenVerifier verifies an externally issued ID token and returns the
// verified email address of its subject.
type IDTokenVerifier interface {
	Verify(ctx context.Context, raw string) (string, error)
}

type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier verifies ID tokens from issuer addressed to clientID,
// checking signatures against keys.
func NewOIDCVerifier(issuer, clientID string, keys oidc.KeySet) IDTokenVerifier {
	return &oidcVerifier{
		verifier: oidc.NewVerifier(issuer, keys, &oidc.Config{ClientID: clientID}),
	}
}

func (v *oidcVerifier) Verify(ctx context.Context, raw string) (string, error) {
	token, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
	}
	if err := token.Claims(&claims); err != nil {
		return "", fmt.Errorf("%w: decode claims: %w", ErrUnauthenticated, err)
	}

	if claims.Email == "" {
		return "", fmt.Errorf("%w: id token has no email", ErrUnauthenticated)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return "", fmt.Errorf("%w: email not verified", ErrUnauthenticated)
	}

	return NormalizeEmail(claims.Email), nil
}
