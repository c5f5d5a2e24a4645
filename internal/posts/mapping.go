package posts

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/snapgram/pkg/query"
	"github.com/JaimeStill/snapgram/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "posts", "p").
	Project("id", "ID").
	Project("creator", "Creator").
	Project("caption", "Caption").
	Project("location", "Location").
	Project("image_url", "ImageURL").
	Project("image_id", "ImageID").
	Project("tags", "Tags").
	Project("likes", "Likes").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "users", "u", "LEFT JOIN", "p.creator = u.id").
	Project("name", "CreatorName").
	Project("username", "CreatorUsername").
	Project("image_url", "CreatorImageURL")

var (
	feedSort = []query.SortField{
		{Field: "UpdatedAt", Descending: true},
		{Field: "ID", Descending: true},
	}
	createdSort = []query.SortField{
		{Field: "CreatedAt", Descending: true},
		{Field: "ID", Descending: true},
	}
)

func scanPost(s repository.Scanner) (Post, error) {
	var (
		p               Post
		tags, likes     []byte
		name, username  *string
		creatorImageURL *string
	)

	err := s.Scan(
		&p.ID,
		&p.Creator,
		&p.Caption,
		&p.Location,
		&p.Image.URL,
		&p.Image.ID,
		&tags,
		&likes,
		&p.CreatedAt,
		&p.UpdatedAt,
		&name,
		&username,
		&creatorImageURL,
	)
	if err != nil {
		return p, err
	}

	if p.Tags, err = decodeTags(tags); err != nil {
		return p, err
	}
	if p.Likes, err = decodeLikes(likes); err != nil {
		return p, err
	}

	p.CreatorName = deref(name)
	p.CreatorUsername = deref(username)
	p.CreatorImageURL = deref(creatorImageURL)
	return p, nil
}

func decodeTags(raw []byte) ([]string, error) {
	tags := make([]string, 0)
	if len(raw) == 0 {
		return tags, nil
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

func decodeLikes(raw []byte) ([]uuid.UUID, error) {
	likes := make([]uuid.UUID, 0)
	if len(raw) == 0 {
		return likes, nil
	}
	if err := json.Unmarshal(raw, &likes); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	return likes, nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
