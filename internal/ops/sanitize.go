package ops

import (
	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/sanitize"
	"github.com/hpungsan/quip/internal/tags"
)

// SanitizeInput contains parameters for the Sanitize operation.
type SanitizeInput struct {
	TagInput
}

// SanitizeOutput contains the result of the Sanitize operation.
// Hard and Soft hold the safe tags, still partitioned by kind.
type SanitizeOutput struct {
	SafeTags    []string              `json:"safe_tags"`
	Suggestions []sanitize.Suggestion `json:"suggestions"`
	Hard        []string              `json:"hard"`
	Soft        []string              `json:"soft"`
}

// Sanitize splits tags into safe tags and flagged tags with alternatives.
func Sanitize(s *sanitize.Sanitizer, input SanitizeInput) (*SanitizeOutput, error) {
	if s == nil {
		return nil, errors.NewInternal(nil)
	}

	parsed, err := ResolveTags(input.TagInput)
	if err != nil {
		return nil, err
	}

	result := s.SanitizeTagList(tags.Texts(parsed))

	safe := make([]tags.Tag, 0, len(result.SafeTags))
	for _, t := range parsed {
		if s.SanitizeTag(t.Text) == nil {
			safe = append(safe, t)
		}
	}
	arrays := tags.Split(safe)

	return &SanitizeOutput{
		SafeTags:    result.SafeTags,
		Suggestions: result.Suggestions,
		Hard:        arrays.Hard,
		Soft:        arrays.Soft,
	}, nil
}
