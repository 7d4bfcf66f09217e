package ops

import (
	"strings"

	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/tags"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// TagInput is the shared tag argument: either a raw comma-separated string or
// pre-split hard/soft arrays, never both.
type TagInput struct {
	Tags string   `json:"tags,omitempty"`
	Hard []string `json:"hard,omitempty"`
	Soft []string `json:"soft,omitempty"`
}

// ResolveTags turns either input form into parsed tags.
// Rules:
// - raw string and arrays together → ErrAmbiguousInput
// - neither → empty result
func ResolveTags(in TagInput) ([]tags.Tag, error) {
	hasRaw := strings.TrimSpace(in.Tags) != ""
	hasArrays := len(in.Hard) > 0 || len(in.Soft) > 0

	if hasRaw && hasArrays {
		return nil, errors.NewAmbiguousInput()
	}
	if hasArrays {
		return tags.FromArrays(tags.Arrays{Hard: in.Hard, Soft: in.Soft}), nil
	}
	return tags.Parse(in.Tags), nil
}

// requireLines rejects an empty batch.
func requireLines(lines []string) error {
	if len(lines) == 0 {
		return errors.NewInvalidRequest("lines is required")
	}
	return nil
}

// paginate clamps limit/offset to the list bounds.
func paginate(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit, max(offset, 0)
}
