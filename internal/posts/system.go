package posts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/internal/users"
	"github.com/JaimeStill/snapgram/pkg/pagination"
)

// Profiles finds the profile an authenticated account acts as.
type Profiles interface {
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*users.User, error)
}

// System defines the public contract for post domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// List returns one page of the feed, most recently updated first.
	List(ctx context.Context, req pagination.CursorRequest) (*pagination.CursorResult[Post], error)
	// Search returns posts whose caption matches term.
	Search(ctx context.Context, term string) ([]Post, error)
	// ListByCreator returns every post by creator, newest first.
	ListByCreator(ctx context.Context, creator uuid.UUID) ([]Post, error)
	// Recent returns the RecentLimit most recently created posts.
	Recent(ctx context.Context) ([]Post, error)
	// ListByIDs returns the posts with the given ids, newest first. Missing ids are skipped.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]Post, error)

	Find(ctx context.Context, id uuid.UUID) (*Post, error)
	Create(ctx context.Context, cmd CreateCommand) (*Post, error)
	Update(ctx context.Context, cmd UpdateCommand) (*Post, error)
	// Delete removes the post and then its image blob. A nil id or empty
	// imageID is a no-op.
	Delete(ctx context.Context, id uuid.UUID, imageID string) error
	// Like replaces the post's like-set with likes.
	Like(ctx context.Context, id uuid.UUID, likes []uuid.UUID) (*Post, error)
}
