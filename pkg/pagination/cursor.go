package pagination

import (
	"net/url"
	"strconv"
)

// CursorRequest asks for the page of records that follows the record whose
// id is After. An empty After requests the first page.
type CursorRequest struct {
	After string `json:"after,omitempty"`
	Limit int    `json:"limit"`
}

// Normalize clamps Limit to the configured bounds.
func (r *CursorRequest) Normalize(cfg Config) {
	if r.Limit < 1 {
		r.Limit = cfg.DefaultPageSize
	}
	if r.Limit > cfg.MaxPageSize {
		r.Limit = cfg.MaxPageSize
	}
}

// CursorRequestFromQuery parses the cursor and limit query parameters.
func CursorRequestFromQuery(values url.Values, cfg Config) CursorRequest {
	limit, _ := strconv.Atoi(values.Get("limit"))

	req := CursorRequest{
		After: values.Get("cursor"),
		Limit: limit,
	}

	req.Normalize(cfg)
	return req
}

// CursorResult holds one page of keyset-paginated data.
// Cursor is the id of the last record when the page was full and is empty
// when no further page can exist.
type CursorResult[T any] struct {
	Data   []T    `json:"data"`
	Cursor string `json:"cursor,omitempty"`
}

// NewCursorResult builds a CursorResult, deriving the next cursor from the
// final record through id.
func NewCursorResult[T any](data []T, limit int, id func(T) string) CursorResult[T] {
	if data == nil {
		data = []T{}
	}

	result := CursorResult[T]{Data: data}
	if limit > 0 && len(data) >= limit {
		result.Cursor = id(data[len(data)-1])
	}

	return result
}
