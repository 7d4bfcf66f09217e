package ops

import (
	"context"

	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/history"
)

// CheckDuplicatesInput contains parameters for the CheckDuplicates operation.
type CheckDuplicatesInput struct {
	Lines       []string `json:"lines"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
}

// CheckDuplicatesOutput contains the result of the CheckDuplicates operation.
type CheckDuplicatesOutput struct {
	HasDuplicates    bool     `json:"has_duplicates"`
	DuplicateIndices []int    `json:"duplicate_indices"`
	Duplicates       []string `json:"duplicates"`
	Threshold        float64  `json:"threshold"`
}

// CheckDuplicates reports lines too similar to history in the same category
// and subcategory. History is not modified.
func CheckDuplicates(ctx context.Context, d *history.Detector, input CheckDuplicatesInput) (*CheckDuplicatesOutput, error) {
	if d == nil {
		return nil, errors.NewInternal(nil)
	}
	if err := requireLines(input.Lines); err != nil {
		return nil, err
	}

	result := d.CheckForDuplicates(ctx, input.Lines, input.Category, input.Subcategory)

	dupes := make([]string, 0, len(result.DuplicateIndices))
	for _, i := range result.DuplicateIndices {
		dupes = append(dupes, input.Lines[i])
	}

	return &CheckDuplicatesOutput{
		HasDuplicates:    result.HasDuplicates,
		DuplicateIndices: result.DuplicateIndices,
		Duplicates:       dupes,
		Threshold:        d.Threshold(),
	}, nil
}
