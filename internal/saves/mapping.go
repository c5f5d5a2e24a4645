package saves

import (
	"github.com/JaimeStill/snapgram/pkg/query"
	"github.com/JaimeStill/snapgram/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "saves", "s").
	Project("id", "ID").
	Project("user_id", "User").
	Project("post_id", "Post").
	Project("created_at", "CreatedAt")

var defaultSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "ID", Descending: true},
}

func scanSave(s repository.Scanner) (Save, error) {
	var sv Save
	err := s.Scan(&sv.ID, &sv.User, &sv.Post, &sv.CreatedAt)
	return sv, err
}
