// Package accounts implements sign-up, password sign-in, and revocable
// sessions. Session tokens are HS256 JWTs whose id claim names a session
// row; deleting the row revokes the token. OIDC ID tokens from a configured
// issuer are accepted as an alternative credential.
package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is a sign-in identity. PasswordHash is never serialized.
type Account struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is an issued sign-in session.
type Session struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"accountId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Identity is the authenticated caller of a request. SessionID is uuid.Nil
// when the caller authenticated with an OIDC ID token.
type Identity struct {
	Account   Account   `json:"account"`
	SessionID uuid.UUID `json:"sessionId"`
}

// SignUpCommand carries the data for a new account.
type SignUpCommand struct {
	Email    string
	Name     string
	Password string
}

// Credentials is a password sign-in request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (c SignUpCommand) validate() error {
	email := NormalizeEmail(c.Email)
	if email == "" || !strings.Contains(email, "@") {
		return errorf("valid email required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errorf("name required")
	}
	if len(c.Password) < MinPasswordLength {
		return errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
