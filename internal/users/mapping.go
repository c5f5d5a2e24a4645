package users

import (
	"github.com/JaimeStill/snapgram/pkg/query"
	"github.com/JaimeStill/snapgram/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "users", "u").
	Project("id", "ID").
	Project("account_id", "AccountID").
	Project("name", "Name").
	Project("username", "Username").
	Project("email", "Email").
	Project("bio", "Bio").
	Project("image_url", "ImageURL").
	Project("image_id", "ImageID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "ID", Descending: true},
}

func scanUser(s repository.Scanner) (User, error) {
	var u User
	err := s.Scan(
		&u.ID,
		&u.AccountID,
		&u.Name,
		&u.Username,
		&u.Email,
		&u.Bio,
		&u.Image.URL,
		&u.Image.ID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}
