package posts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/internal/media"
	"github.com/JaimeStill/snapgram/pkg/pagination"
	"github.com/JaimeStill/snapgram/pkg/query"
	"github.com/JaimeStill/snapgram/pkg/repository"
)

var feedPagination = pagination.Config{
	DefaultPageSize: PageSize,
	MaxPageSize:     PageSize,
}

type repo struct {
	db       *sql.DB
	profiles Profiles
	media    media.System
	logger   *slog.Logger
}

// New creates a post repository implementing the System interface.
func New(db *sql.DB, profiles Profiles, images media.System, logger *slog.Logger) System {
	return &repo{
		db:       db,
		profiles: profiles,
		media:    images,
		logger:   logger.With("system", "posts"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.profiles, r.logger, maxUploadSize)
}

func (r *repo) List(ctx context.Context, req pagination.CursorRequest) (*pagination.CursorResult[Post], error) {
	req.Normalize(feedPagination)

	var after any
	if req.After != "" {
		id, err := uuid.Parse(req.After)
		if err != nil {
			return nil, errorf("invalid cursor %q", req.After)
		}
		after = id
	}

	q, args := query.
		NewBuilder(projection, feedSort...).
		WhereCursor("UpdatedAt", "ID", true, after).
		BuildLimit(req.Limit)

	posts, err := repository.QueryMany(ctx, r.db, q, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	result := pagination.NewCursorResult(posts, req.Limit, func(p Post) string {
		return p.ID.String()
	})
	return &result, nil
}

func (r *repo) Search(ctx context.Context, term string) ([]Post, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errorf("search term required")
	}

	q, args := query.
		NewBuilder(projection, feedSort...).
		WhereMatch("Caption", &term).
		Build()

	posts, err := repository.QueryMany(ctx, r.db, q, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return posts, nil
}

func (r *repo) ListByCreator(ctx context.Context, creator uuid.UUID) ([]Post, error) {
	if creator == uuid.Nil {
		return nil, errorf("creator required")
	}

	q, args := query.
		NewBuilder(projection, createdSort...).
		WhereEquals("Creator", creator).
		Build()

	posts, err := repository.QueryMany(ctx, r.db, q, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("query creator posts: %w", err)
	}
	return posts, nil
}

func (r *repo) Recent(ctx context.Context) ([]Post, error) {
	q, args := query.
		NewBuilder(projection, createdSort...).
		BuildLimit(RecentLimit)

	posts, err := repository.QueryMany(ctx, r.db, q, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	return posts, nil
}

func (r *repo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Post, error) {
	if len(ids) == 0 {
		return []Post{}, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}

	q, args := query.
		NewBuilder(projection, createdSort...).
		WhereIn("ID", values).
		Build()

	posts, err := repository.QueryMany(ctx, r.db, q, args, scanPost)
	if err != nil {
		return nil, fmt.Errorf("query posts by id: %w", err)
	}
	return posts, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Post, error) {
	p, err := find(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Post, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	tags, err := encodeJSON(NormalizeTags(cmd.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	p, err := media.Create(ctx, r.media, cmd.Image, func(img media.Image) (Post, error) {
		return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Post, error) {
			var id uuid.UUID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO posts(creator, caption, location, image_url, image_id, tags, likes)
				VALUES ($1, $2, $3, $4, $5, $6::jsonb, '[]'::jsonb)
				RETURNING id`,
				cmd.Creator, cmd.Caption, cmd.Location, img.URL, img.ID, tags,
			).Scan(&id)
			if err != nil {
				return Post{}, r.mapError(err)
			}
			return find(ctx, tx, id)
		})
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("post created", "id", p.ID, "creator", p.Creator, "image", p.Image.ID)
	return &p, nil
}

func (r *repo) Update(ctx context.Context, cmd UpdateCommand) (*Post, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}

	tags, err := encodeJSON(NormalizeTags(cmd.Tags))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	p, err := media.Replace(ctx, r.media, cmd.Current, cmd.Image, func(img media.Image) (Post, error) {
		return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Post, error) {
			err := repository.ExecExpectOne(ctx, tx, `
				UPDATE posts
				SET caption = $2, location = $3, image_url = $4, image_id = $5, tags = $6::jsonb, updated_at = now()
				WHERE id = $1`,
				cmd.ID, cmd.Caption, cmd.Location, img.URL, img.ID, tags,
			)
			if err != nil {
				return Post{}, r.mapError(err)
			}
			return find(ctx, tx, cmd.ID)
		})
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("post updated", "id", p.ID, "image", p.Image.ID)
	return &p, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID, imageID string) error {
	if id == uuid.Nil || imageID == "" {
		return nil
	}

	err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM posts WHERE id = $1 AND image_id = $2",
		id, imageID,
	)
	if err != nil {
		return r.mapError(err)
	}

	r.media.Release(ctx, imageID)

	r.logger.Info("post deleted", "id", id, "image", imageID)
	return nil
}

func (r *repo) Like(ctx context.Context, id uuid.UUID, likes []uuid.UUID) (*Post, error) {
	if id == uuid.Nil {
		return nil, errorf("post id required")
	}

	encoded, err := encodeJSON(UniqueLikes(likes))
	if err != nil {
		return nil, fmt.Errorf("encode likes: %w", err)
	}

	p, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Post, error) {
		err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE posts SET likes = $2::jsonb, updated_at = now() WHERE id = $1",
			id, encoded,
		)
		if err != nil {
			return Post{}, r.mapError(err)
		}
		return find(ctx, tx, id)
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repo) mapError(err error) error {
	if repository.IsForeignKeyViolation(err) {
		return ErrUnknownUser
	}
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func find(ctx context.Context, q repository.Querier, id uuid.UUID) (Post, error) {
	stmt, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, q, stmt, args, scanPost)
	if err != nil {
		return Post{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return p, nil
}
