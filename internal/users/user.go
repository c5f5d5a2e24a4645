// Package users manages user profiles. A profile belongs to exactly one
// account and carries the public name, username, bio, and avatar image.
package users

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/internal/media"
)

const (
	// DefaultListLimit is the number of users returned when no limit is given.
	DefaultListLimit = 10
	// MaxListLimit caps the user listing.
	MaxListLimit = 100
)

// User is a profile.
type User struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"accountId"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	media.Image
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterCommand creates an account and its profile.
type RegisterCommand struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateCommand edits a profile. A nil Image keeps Current.
type UpdateCommand struct {
	ID      uuid.UUID
	Name    string
	Bio     string
	Current media.Image
	Image   *media.Upload
}

// NormalizeUsername trims and lower-cases a username.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validUsername(username string) bool {
	if len(username) < 2 || len(username) > 30 {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}
	return true
}

func (c RegisterCommand) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errorf("name required")
	}
	if !validUsername(NormalizeUsername(c.Username)) {
		return errorf("username must be 2-30 letters, digits, '.' or '_'")
	}
	return nil
}

func (c UpdateCommand) validate() error {
	if c.ID == uuid.Nil {
		return errorf("user id required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errorf("name required")
	}
	if c.Image != nil && len(c.Image.Data) == 0 {
		return errorf("image is empty")
	}
	return nil
}
