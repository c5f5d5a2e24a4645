// Package posts implements the post domain: image posts with captions,
// tags, and likes, plus the feed, search, and per-creator queries.
package posts

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/internal/media"
)

// PageSize is the number of posts in one page of the feed.
const PageSize = 9

// RecentLimit is the number of posts returned by Recent.
const RecentLimit = 20

// Post is an image post. The embedded Image serializes as imageUrl and imageId.
// Creator fields are read from the creator's profile and are never written.
type Post struct {
	ID       uuid.UUID `json:"id"`
	Creator  uuid.UUID `json:"creator"`
	Caption  string    `json:"caption"`
	Location string    `json:"location"`
	media.Image
	Tags      []string    `json:"tags"`
	Likes     []uuid.UUID `json:"likes"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	CreatorName     string `json:"creatorName"`
	CreatorUsername string `json:"creatorUsername"`
	CreatorImageURL string `json:"creatorImageUrl"`
}

// CreateCommand carries the data for a new post. Tags is the raw
// comma-separated tag string.
type CreateCommand struct {
	Creator  uuid.UUID
	Caption  string
	Location string
	Tags     string
	Image    media.Upload
}

// UpdateCommand carries a post edit. Current is the image the post references
// before the edit. A nil Image keeps Current.
type UpdateCommand struct {
	ID       uuid.UUID
	Caption  string
	Location string
	Tags     string
	Current  media.Image
	Image    *media.Upload
}

// NormalizeTags removes all whitespace from raw, splits it on commas, and
// drops empty segments. Blank input yields an empty, non-nil slice.
func NormalizeTags(raw string) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	tags := make([]string, 0)
	for tag := range strings.SplitSeq(stripped, ",") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// UniqueLikes removes duplicate ids, keeping the first occurrence of each.
func UniqueLikes(likes []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(likes))
	unique := make([]uuid.UUID, 0, len(likes))

	for _, id := range likes {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func (c CreateCommand) validate() error {
	if c.Creator == uuid.Nil {
		return errorf("creator required")
	}
	if strings.TrimSpace(c.Caption) == "" {
		return errorf("caption required")
	}
	if strings.TrimSpace(c.Location) == "" {
		return errorf("location required")
	}
	if len(c.Image.Data) == 0 {
		return errorf("image required")
	}
	return nil
}

func (c UpdateCommand) validate() error {
	if c.ID == uuid.Nil {
		return errorf("post id required")
	}
	if strings.TrimSpace(c.Caption) == "" {
		return errorf("caption required")
	}
	if c.Image != nil && len(c.Image.Data) == 0 {
		return errorf("image is empty")
	}
	return nil
}
