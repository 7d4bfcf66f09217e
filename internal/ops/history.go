package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/history"
)

// AddHistoryInput contains parameters for the AddHistory operation.
type AddHistoryInput struct {
	Lines       []string `json:"lines"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
}

// AddHistoryOutput contains the result of the AddHistory operation.
type AddHistoryOutput struct {
	Added   int    `json:"added"`
	Message string `json:"message"`
}

// AddHistory records accepted lines. Lines that normalize to nothing are skipped.
func AddHistory(ctx context.Context, d *history.Detector, input AddHistoryInput) (*AddHistoryOutput, error) {
	if d == nil {
		return nil, errors.NewInternal(nil)
	}
	if err := requireLines(input.Lines); err != nil {
		return nil, err
	}

	added := d.AddToHistory(ctx, input.Lines, input.Category, input.Subcategory)
	return &AddHistoryOutput{
		Added:   added,
		Message: fmt.Sprintf("Recorded %d line(s) in %s", added, scopeLabel(input.Category, input.Subcategory)),
	}, nil
}

// ClearHistoryOutput contains the result of the ClearHistory operation.
type ClearHistoryOutput struct {
	Cleared int    `json:"cleared"`
	Message string `json:"message"`
}

// ClearHistory removes every history entry.
func ClearHistory(ctx context.Context, d *history.Detector) (*ClearHistoryOutput, error) {
	if d == nil {
		return nil, errors.NewInternal(nil)
	}

	n := len(d.List(ctx, "", ""))
	d.ClearHistory(ctx)
	return &ClearHistoryOutput{
		Cleared: n,
		Message: fmt.Sprintf("Cleared %d history entries", n),
	}, nil
}

// ListHistoryInput contains parameters for the ListHistory operation.
type ListHistoryInput struct {
	Category    string `json:"category,omitempty"`    // empty matches all
	Subcategory string `json:"subcategory,omitempty"` // empty matches all
	Limit       int    `json:"limit,omitempty"`       // default: 20, max: 100
	Offset      int    `json:"offset,omitempty"`      // default: 0
}

// ListHistoryOutput contains the result of the ListHistory operation.
type ListHistoryOutput struct {
	Items      []history.Entry `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// ListHistory pages through history, newest first.
func ListHistory(ctx context.Context, d *history.Detector, input ListHistoryInput) (*ListHistoryOutput, error) {
	if d == nil {
		return nil, errors.NewInternal(nil)
	}

	limit, offset := paginate(input.Limit, input.Offset)

	entries := d.List(ctx, strings.TrimSpace(input.Category), strings.TrimSpace(input.Subcategory))
	total := len(entries)

	start := min(offset, total)
	end := min(start+limit, total)
	items := entries[start:end]

	return &ListHistoryOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
		Sort: "timestamp_desc",
	}, nil
}

func scopeLabel(category, subcategory string) string {
	if category == "" && subcategory == "" {
		return "(uncategorized)"
	}
	return category + "/" + subcategory
}
