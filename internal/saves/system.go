package saves

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/pkg/pagination"
)

// System defines the public contract for save operations.
type System interface {
	Handler() *Handler

	Save(ctx context.Context, cmd CreateCommand) (*Save, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByUser returns a page of the user's saves, newest first, each
	// with its post.
	ListByUser(ctx context.Context, user uuid.UUID, page pagination.PageRequest) (*pagination.PageResult[SavedPost], error)
}
