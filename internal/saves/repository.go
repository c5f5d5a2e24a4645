package saves

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/internal/posts"
	"github.com/JaimeStill/snapgram/pkg/pagination"
	"github.com/JaimeStill/snapgram/pkg/query"
	"github.com/JaimeStill/snapgram/pkg/repository"
)

type repo struct {
	db         *sql.DB
	posts      posts.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a save repository implementing the System interface.
func New(db *sql.DB, postSys posts.System, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		posts:      postSys,
		logger:     logger.With("system", "saves"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Save(ctx context.Context, cmd CreateCommand) (*Save, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO saves(user_id, post_id)
		VALUES ($1, $2)
		RETURNING id, user_id, post_id, created_at`

	s, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Save, error) {
		return repository.QueryOne(ctx, tx, q, []any{cmd.User, cmd.Post}, scanSave)
	})
	if err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, ErrUnknownReference
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("post saved", "id", s.ID, "user", s.User, "post", s.Post)
	return &s, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errorf("save id required")
	}

	if err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM saves WHERE id = $1", id); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("save deleted", "id", id)
	return nil
}

func (r *repo) ListByUser(
	ctx context.Context,
	user uuid.UUID,
	page pagination.PageRequest,
) (*pagination.PageResult[SavedPost], error) {
	if user == uuid.Nil {
		return nil, errorf("user required")
	}
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereEquals("User", user)

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count saves: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	saved, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSave)
	if err != nil {
		return nil, fmt.Errorf("query saves: %w", err)
	}

	items, err := r.attachPosts(ctx, saved)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

// attachPosts loads the posts referenced by saved.
func (r *repo) attachPosts(ctx context.Context, saved []Save) ([]SavedPost, error) {
	ids := make([]uuid.UUID, 0, len(saved))
	seen := make(map[uuid.UUID]bool, len(saved))
	for _, s := range saved {
		if !seen[s.Post] {
			seen[s.Post] = true
			ids = append(ids, s.Post)
		}
	}

	found, err := r.posts.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load saved posts: %w", err)
	}

	return pair(saved, found), nil
}

// pair joins saves to their posts, keeping save order.
// Saves whose post is missing are dropped.
func pair(saved []Save, found []posts.Post) []SavedPost {
	byID := make(map[uuid.UUID]posts.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	items := make([]SavedPost, 0, len(saved))
	for _, s := range saved {
		p, ok := byID[s.Post]
		if !ok {
			continue
		}
		items = append(items, SavedPost{Save: s, Details: p})
	}
	return items
}
