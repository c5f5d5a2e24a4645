package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Tokens signs and verifies session tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// Claims are the verified contents of a session token.
type Claims struct {
	AccountID uuid.UUID
	SessionID uuid.UUID
	ExpiresAt time.Time
}

// NewTokens creates a token signer using HMAC-SHA256 with secret.
func NewTokens(secret, issuer string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// TTL returns the lifetime of issued tokens.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the session, valid from now until now plus TTL.
func (t *Tokens) Issue(accountID, sessionID uuid.UUID, now time.Time) (string, time.Time, error) {
	expires := now.Add(t.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   accountID.String(),
		ID:        sessionID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expires, nil
}

// Parse verifies the signature, issuer, and expiry of raw.
// Every failure wraps ErrUnauthenticated.
func (t *Tokens) Parse(raw string) (Claims, error) {
	var registered jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(
		raw,
		&registered,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	accountID, err := uuid.Parse(registered.Subject)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: invalid subject", ErrUnauthenticated)
	}
	sessionID, err := uuid.Parse(registered.ID)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: invalid session id", ErrUnauthenticated)
	}

	return Claims{
		AccountID: accountID,
		SessionID: sessionID,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
