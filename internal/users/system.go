package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/pkg/pagination"
)

// System defines the public contract for profile operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Register creates the account and its profile. The profile starts with
	// an initials avatar. If the profile cannot be stored the account is
	// deleted.
	Register(ctx context.Context, cmd RegisterCommand) (*User, error)
	Find(ctx context.Context, id uuid.UUID) (*User, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*User, error)
	// List returns up to limit users, newest first.
	List(ctx context.Context, limit int) ([]User, error)
	Search(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[User], error)
	Update(ctx context.Context, cmd UpdateCommand) (*User, error)
}
