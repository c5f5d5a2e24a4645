package accounts

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for account and session operations.
type System interface {
	Handler() *Handler

	SignUp(ctx context.Context, cmd SignUpCommand) (*Account, error)
	// DeleteAccount removes an account and its sessions.
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	// SignIn checks the credentials and opens a session.
	SignIn(ctx context.Context, creds Credentials) (*Session, error)
	// SignOut deletes the session, revoking its token.
	SignOut(ctx context.Context, sessionID uuid.UUID) error
	// Current resolves a session token or ID token to the caller's identity.
	Current(ctx context.Context, token string) (*Identity, error)
}
