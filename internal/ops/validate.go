package ops

import (
	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/sanitize"
)

// ValidateInput contains parameters for the Validate operation.
type ValidateInput struct {
	Tag string `json:"tag"`
}

// ValidateOutput contains the result of the Validate operation.
type ValidateOutput struct {
	Tag string `json:"tag"`
	sanitize.Validation
}

// Validate checks a single tag as it is typed.
func Validate(s *sanitize.Sanitizer, input ValidateInput) (*ValidateOutput, error) {
	if s == nil {
		return nil, errors.NewInternal(nil)
	}
	return &ValidateOutput{
		Tag:        input.Tag,
		Validation: s.ValidateTagInput(input.Tag),
	}, nil
}
