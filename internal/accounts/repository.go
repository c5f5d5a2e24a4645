package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/pkg/query"
	"github.com/JaimeStill/snapgram/pkg/repository"
)

type repo struct {
	db       *sql.DB
	tokens   *Tokens
	verifier IDTokenVerifier
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an account repository implementing the System interface.
// verifier may be nil, in which case only session tokens are accepted.
func New(
	db *sql.DB,
	tokens *Tokens,
	verifier IDTokenVerifier,
	logger *slog.Logger,
) System {
	return &repo{
		db:       db,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger.With("system", "accounts"),
		now:      time.Now,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.tokens.TTL())
}

func (r *repo) SignUp(ctx context.Context, cmd SignUpCommand) (*Account, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO accounts(email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, password_hash, created_at`

	a, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Account, error) {
		return repository.QueryOne(ctx, tx, q, []any{NormalizeEmail(cmd.Email), cmd.Name, hash}, scanAccount)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("account created", "id", a.ID)
	return &a, nil
}

func (r *repo) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM accounts WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("account deleted", "id", id)
	return nil
}

func (r *repo) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	a, err := r.findByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(a.PasswordHash, creds.Password) {
		return nil, ErrInvalidCredentials
	}

	now := r.now()
	sessionID := uuid.New()

	token, expires, err := r.tokens.Issue(a.ID, sessionID, now)
	if err != nil {
		return nil, err
	}

	err = repository.ExecExpectOne(
		ctx, r.db,
		"INSERT INTO sessions(id, account_id, created_at, expires_at) VALUES ($1, $2, $3, $4)",
		sessionID, a.ID, now, expires,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	r.logger.Info("session created", "account", a.ID, "session", sessionID)
	return &Session{
		ID:        sessionID,
		AccountID: a.ID,
		Token:     token,
		ExpiresAt: expires,
	}, nil
}

func (r *repo) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}

	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM sessions WHERE id = $1", sessionID)
	if err != nil {
		return repository.MapError(err, ErrUnauthenticated, ErrDuplicate)
	}

	r.logger.Info("session deleted", "session", sessionID)
	return nil
}

func (r *repo) Current(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := r.tokens.Parse(token)
	if err != nil {
		if r.verifier == nil {
			return nil, err
		}
		return r.external(ctx, token)
	}

	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE s.id = $1 AND s.account_id = $2 AND s.expires_at > $3",
		sessionProjection.Columns(),
		sessionProjection.From(),
	)

	identity, err := repository.QueryOne(ctx, r.db, q, []any{claims.SessionID, claims.AccountID, r.now()}, scanIdentity)
	if err != nil {
		return nil, repository.MapError(err, ErrUnauthenticated, ErrDuplicate)
	}

	return &identity, nil
}

func (r *repo) external(ctx context.Context, token string) (*Identity, error) {
	email, err := r.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	a, err := r.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: no account for %s", ErrUnauthenticated, email)
		}
		return nil, err
	}

	return &Identity{Account: *a}, nil
}

func (r *repo) findByEmail(ctx context.Context, email string) (*Account, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrNotFound
	}

	q, args := query.NewBuilder(projection).BuildSingle("Email", email)

	a, err := repository.QueryOne(ctx, r.db, q, args, scanAccount)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &a, nil
}
