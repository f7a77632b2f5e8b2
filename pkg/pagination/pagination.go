package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many items any page can request.
	MaxLimit = 100

	cursorPrefix = "after|"
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer returns the normalization result plus one to detect the next page.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor builds an opaque cursor pointing just past the item with key.
func EncodeCursor(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + key))
}

// ParseCursor decodes the cursor back into the key of the last item seen.
// An empty cursor yields an empty key.
func ParseCursor(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("decode cursor: %w", err)
	}
	key, ok := strings.CutPrefix(string(decoded), cursorPrefix)
	if !ok || key == "" {
		return "", fmt.Errorf("invalid cursor format")
	}
	return key, nil
}

// Page cuts one page out of an ordered list. key must be unique per item;
// the returned cursor is empty on the last page.
func Page[T any](items []T, params Params, key func(T) string) ([]T, string, error) {
	after, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	start := 0
	if after != "" {
		start = -1
		for i, item := range items {
			if key(item) == after {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return nil, "", fmt.Errorf("cursor %q no longer matches any item", after)
		}
	}

	rest := items[start:]
	pageSize := NormalizeLimit(params.Limit)
	if len(rest) < LimitWithBuffer(params.Limit) {
		return rest, "", nil
	}
	page := rest[:pageSize]
	return page, EncodeCursor(key(page[len(page)-1])), nil
}
