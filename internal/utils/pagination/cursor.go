// Package pagination implements opaque keyset cursors.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

// Cursor points just past the last item of a page.
// CreatedUnix is in milliseconds; ID breaks ties between equal timestamps.
type Cursor struct {
	ID          string `json:"id"`
	CreatedUnix int64  `json:"created_unix,omitempty"`
}

// IsZero reports whether c is the start of the listing.
func (c Cursor) IsZero() bool { return c.ID == "" && c.CreatedUnix == 0 }

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a token produced by Encode. Empty token → first page.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, errInvalidToken
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.ID == "" {
		return Cursor{}, errInvalidToken
	}
	return c, nil
}

var errInvalidToken = svcErr.ValidationFailed("page_token", "invalid pagination token")

// ClampLimit applies the default page size to limit <= 0 and caps it at maxLimit.
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		limit = def
	}
	if limit <= 0 {
		limit = 1
	}
	return min(limit, maxLimit)
}

// Page trims a result fetched with limit+1 rows down to limit and returns
// the token for the next page, or nil when items was the last page.
func Page[T any](items []T, limit int, cursorOf func(T) Cursor) ([]T, *string, error) {
	if len(items) <= limit {
		return items, nil, nil
	}
	items = items[:limit]
	token, err := Encode(cursorOf(items[limit-1]))
	if err != nil {
		return nil, nil, err
	}
	return items, &token, nil
}
