// Package saves records posts a user has bookmarked. Saves are plain
// records: saving twice creates two records, and unsaving deletes one by id.
package saves

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/internal/posts"
)

// Save links a user to a post.
type Save struct {
	ID        uuid.UUID `json:"id"`
	User      uuid.UUID `json:"user"`
	Post      uuid.UUID `json:"post"`
	CreatedAt time.Time `json:"createdAt"`
}

// SavedPost is a save with the post it references.
type SavedPost struct {
	Save
	Details posts.Post `json:"details"`
}

// CreateCommand is the body of a save request.
type CreateCommand struct {
	User uuid.UUID `json:"user"`
	Post uuid.UUID `json:"post"`
}

func (c CreateCommand) validate() error {
	if c.User == uuid.Nil {
		return errorf("user required")
	}
	if c.Post == uuid.Nil {
		return errorf("post required")
	}
	return nil
}
