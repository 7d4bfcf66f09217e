package ops

import (
	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/enforce"
	"github.com/hpungsan/quip/internal/tags"
)

// EnforceInput contains parameters for the Enforce operation.
// Only the hard tags of TagInput are used.
type EnforceInput struct {
	TagInput
	Lines    []string `json:"lines"`
	Required int      `json:"required,omitempty"` // default: config required_hard_lines
}

// EnforceOutput contains the result of the Enforce operation.
type EnforceOutput struct {
	Lines    []string `json:"lines"`
	Hard     []string `json:"hard"`
	Changed  bool     `json:"changed"`
	Coverage []int    `json:"coverage"` // hard tags present per output line
}

// Enforce injects missing hard tags into lines when too few lines carry them.
func Enforce(cfg *config.Config, input EnforceInput) (*EnforceOutput, error) {
	if err := requireLines(input.Lines); err != nil {
		return nil, err
	}

	parsed, err := ResolveTags(input.TagInput)
	if err != nil {
		return nil, err
	}
	hard := tags.Split(parsed).Hard

	required := input.Required
	if required <= 0 && cfg != nil {
		required = cfg.RequiredHardLines
	}

	out := enforce.EnsureHardTags(input.Lines, hard, required)
	return &EnforceOutput{
		Lines:    out,
		Hard:     hard,
		Changed:  changed(input.Lines, out),
		Coverage: enforce.Coverage(out, hard),
	}, nil
}

func changed(before, after []string) bool {
	for i := range before {
		if before[i] != after[i] {
			return true
		}
	}
	return false
}
