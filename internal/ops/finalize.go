package ops

import (
	"context"

	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/history"
	"github.com/hpungsan/quip/internal/sanitize"
)

// FinalizeInput contains parameters for the Finalize operation.
type FinalizeInput struct {
	TagInput
	Lines       []string `json:"lines"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Required    int      `json:"required,omitempty"`
	Record      bool     `json:"record,omitempty"` // add accepted lines to history
}

// UnsafeLine flags a generated line containing unsafe text.
type UnsafeLine struct {
	Index       int                   `json:"index"`
	Line        string                `json:"line"`
	Suggestions []sanitize.Suggestion `json:"suggestions"`
}

// FinalizeOutput contains the result of the Finalize operation.
// Lines is the enforced batch; Accepted holds the lines that are neither
// unsafe nor duplicates, in order.
type FinalizeOutput struct {
	Lines            []string     `json:"lines"`
	Changed          bool         `json:"changed"`
	Unsafe           []UnsafeLine `json:"unsafe"`
	DuplicateIndices []int        `json:"duplicate_indices"`
	Accepted         []string     `json:"accepted"`
	Recorded         int          `json:"recorded"`
}

// Finalize runs a generated batch through the post-generation checks:
// enforce hard tags, flag unsafe text, drop duplicates, and optionally record
// what is left.
func Finalize(ctx context.Context, cfg *config.Config, s *sanitize.Sanitizer, d *history.Detector, input FinalizeInput) (*FinalizeOutput, error) {
	if s == nil || d == nil {
		return nil, errors.NewInternal(nil)
	}

	enforced, err := Enforce(cfg, EnforceInput{
		TagInput: input.TagInput,
		Lines:    input.Lines,
		Required: input.Required,
	})
	if err != nil {
		return nil, err
	}
	lines := enforced.Lines

	rejected := make(map[int]bool)
	unsafe := make([]UnsafeLine, 0)
	for i, line := range lines {
		if found := s.SanitizeText(line); len(found) > 0 {
			unsafe = append(unsafe, UnsafeLine{Index: i, Line: line, Suggestions: found})
			rejected[i] = true
		}
	}

	dupes := d.CheckForDuplicates(ctx, lines, input.Category, input.Subcategory)
	for _, i := range dupes.DuplicateIndices {
		rejected[i] = true
	}

	accepted := make([]string, 0, len(lines))
	for i, line := range lines {
		if !rejected[i] {
			accepted = append(accepted, line)
		}
	}

	recorded := 0
	if input.Record && len(accepted) > 0 {
		recorded = d.AddToHistory(ctx, accepted, input.Category, input.Subcategory)
	}

	return &FinalizeOutput{
		Lines:            lines,
		Changed:          enforced.Changed,
		Unsafe:           unsafe,
		DuplicateIndices: dupes.DuplicateIndices,
		Accepted:         accepted,
		Recorded:         recorded,
	}, nil
}
