package accounts

import (
	"github.com/JaimeStill/snapgram/pkg/query"
	"github.com/JaimeStill/snapgram/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "accounts", "a").
	Project("id", "ID").
	Project("email", "Email").
	Project("name", "Name").
	Project("password_hash", "PasswordHash").
	Project("created_at", "CreatedAt")

var sessionProjection = query.
	NewProjectionMap("public", "sessions", "s").
	Project("id", "SessionID").
	Join("public", "accounts", "a", "JOIN", "s.account_id = a.id").
	Project("id", "ID").
	Project("email", "Email").
	Project("name", "Name").
	Project("password_hash", "PasswordHash").
	Project("created_at", "CreatedAt")

func scanAccount(s repository.Scanner) (Account, error) {
	var a Account
	err := s.Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.PasswordHash,
		&a.CreatedAt,
	)
	return a, err
}

func scanIdentity(s repository.Scanner) (Identity, error) {
	var i Identity
	err := s.Scan(
		&i.SessionID,
		&i.Account.ID,
		&i.Account.Email,
		&i.Account.Name,
		&i.Account.PasswordHash,
		&i.Account.CreatedAt,
	)
	return i, err
}
