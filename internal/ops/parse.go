package ops

import (
	"github.com/hpungsan/quip/internal/tags"
)

// ParseInput contains parameters for the Parse operation.
type ParseInput struct {
	TagInput
}

// ParseOutput contains the result of the Parse operation.
type ParseOutput struct {
	Tags       []tags.Tag `json:"tags"`
	Hard       []string   `json:"hard"`
	Soft       []string   `json:"soft"`
	Normalized string     `json:"normalized"` // canonical string form, hard tags marked with '@'
}

// Parse classifies tags as hard or soft.
func Parse(input ParseInput) (*ParseOutput, error) {
	parsed, err := ResolveTags(input.TagInput)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		parsed = []tags.Tag{}
	}

	arrays := tags.Split(parsed)
	return &ParseOutput{
		Tags:       parsed,
		Hard:       arrays.Hard,
		Soft:       arrays.Soft,
		Normalized: tags.Join(parsed),
	}, nil
}
