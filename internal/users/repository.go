package users

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/internal/accounts"
	"github.com/JaimeStill/snapgram/internal/avatars"
	"github.com/JaimeStill/snapgram/internal/media"
	"github.com/JaimeStill/snapgram/pkg/pagination"
	"github.com/JaimeStill/snapgram/pkg/query"
	"github.com/JaimeStill/snapgram/pkg/repository"
)

type repo struct {
	db         *sql.DB
	accounts   accounts.System
	media      media.System
	avatarBase string
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a user repository implementing the System interface.
// avatarBase is the public address of the avatar routes.
func New(
	db *sql.DB,
	accts accounts.System,
	images media.System,
	avatarBase string,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		accounts:   accts,
		media:      images,
		avatarBase: avatarBase,
		logger:     logger.With("system", "users"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	acct, err := r.accounts.SignUp(ctx, accounts.SignUpCommand{
		Email:    cmd.Email,
		Name:     cmd.Name,
		Password: cmd.Password,
	})
	if err != nil {
		return nil, err
	}

	avatar := avatars.URL(r.avatarBase, cmd.Name)

	u, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (User, error) {
		var id uuid.UUID
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users(account_id, name, username, email, image_url, image_id)
			VALUES ($1, $2, $3, $4, $5, '')
			RETURNING id`,
			acct.ID, strings.TrimSpace(cmd.Name), NormalizeUsername(cmd.Username), acct.Email, avatar,
		).Scan(&id)
		if err != nil {
			return User{}, err
		}
		return find(ctx, tx, "ID", id)
	})
	if err != nil {
		if delErr := r.accounts.DeleteAccount(ctx, acct.ID); delErr != nil {
			r.logger.Warn("compensating account delete failed", "account", acct.ID, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("user registered", "id", u.ID, "account", u.AccountID, "username", u.Username)
	return &u, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := find(ctx, r.db, "ID", id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) FindByAccount(ctx context.Context, accountID uuid.UUID) (*User, error) {
	u, err := find(ctx, r.db, "AccountID", accountID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) List(ctx context.Context, limit int) ([]User, error) {
	if limit < 1 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	q, args := query.NewBuilder(projection, defaultSort...).BuildLimit(limit)

	users, err := repository.QueryMany(ctx, r.db, q, args, scanUser)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return users, nil
}

func (r *repo) Search(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[User], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "Name", "Username")

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	users, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanUser)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	result := pagination.NewPageResult(users, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Update(ctx context.Context, cmd UpdateCommand) (*User, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	u, err := media.Replace(ctx, r.media, cmd.Current, cmd.Image, func(img media.Image) (User, error) {
		return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (User, error) {
			err := repository.ExecExpectOne(ctx, tx, `
				UPDATE users
				SET name = $2, bio = $3, image_url = $4, image_id = $5, updated_at = now()
				WHERE id = $1`,
				cmd.ID, strings.TrimSpace(cmd.Name), cmd.Bio, img.URL, img.ID,
			)
			if err != nil {
				return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
			}
			return find(ctx, tx, "ID", cmd.ID)
		})
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("user updated", "id", u.ID, "image", u.Image.ID)
	return &u, nil
}

func find(ctx context.Context, q repository.Querier, field string, value uuid.UUID) (User, error) {
	stmt, args := query.NewBuilder(projection).BuildSingle(field, value)

	u, err := repository.QueryOne(ctx, q, stmt, args, scanUser)
	if err != nil {
		return User{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return u, nil
}
