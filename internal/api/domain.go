package api

import (
	"github.com/JaimeStill/snapgram/internal/accounts"
	"github.com/JaimeStill/snapgram/internal/posts"
	"github.com/JaimeStill/snapgram/internal/saves"
	"github.com/JaimeStill/snapgram/internal/users"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Accounts accounts.System
	Users    users.System
	Posts    posts.System
	Saves    saves.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, avatarBase string) *Domain {
	db := runtime.Database.Connection()

	accountsSystem := accounts.New(
		db,
		runtime.Tokens,
		runtime.Verifier,
		runtime.Logger,
	)

	usersSystem := users.New(
		db,
		accountsSystem,
		runtime.Media,
		avatarBase,
		runtime.Logger,
		runtime.Pagination,
	)

	postsSystem := posts.New(db, usersSystem, runtime.Media, runtime.Logger)

	savesSystem := saves.New(db, postsSystem, runtime.Logger, runtime.Pagination)

	return &Domain{
		Accounts: accountsSystem,
		Users:    usersSystem,
		Posts:    postsSystem,
		Saves:    savesSystem,
	}
}
