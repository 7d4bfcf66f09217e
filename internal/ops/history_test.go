package ops

import (
	"context"
	"fmt"
	"testing"

	"github.com/hpungsan/quip/internal/errors"
)

func TestCheckDuplicates(t *testing.T) {
	_, _, d := testEnv(t)
	ctx := context.Background()

	if _, err := AddHistory(ctx, d, AddHistoryInput{
		Lines:    []string{"When Monday hits and the coffee is gone"},
		Category: "work", Subcategory: "office",
	}); err != nil {
		t.Fatalf("AddHistory failed: %v", err)
	}

	out, err := CheckDuplicates(ctx, d, CheckDuplicatesInput{
		Lines:    []string{"Totally new", "when monday hits and the coffee is gone!"},
		Category: "work", Subcategory: "office",
	})
	if err != nil {
		t.Fatalf("CheckDuplicates failed: %v", err)
	}
	if !out.HasDuplicates {
		t.Fatal("HasDuplicates = false, want true")
	}
	if len(out.DuplicateIndices) != 1 || out.DuplicateIndices[0] != 1 {
		t.Errorf("DuplicateIndices = %v, want [1]", out.DuplicateIndices)
	}
	if out.Duplicates[0] != "when monday hits and the coffee is gone!" {
		t.Errorf("Duplicates = %v", out.Duplicates)
	}
	if out.Threshold != 0.85 {
		t.Errorf("Threshold = %v, want 0.85", out.Threshold)
	}

	// Other category never matches.
	out, err = CheckDuplicates(ctx, d, CheckDuplicatesInput{
		Lines:    []string{"when monday hits and the coffee is gone"},
		Category: "pets", Subcategory: "office",
	})
	if err != nil {
		t.Fatalf("CheckDuplicates failed: %v", err)
	}
	if out.HasDuplicates {
		t.Error("duplicate detected across categories")
	}
}

func TestCheckDuplicates_NoLines(t *testing.T) {
	_, _, d := testEnv(t)

	_, err := CheckDuplicates(context.Background(), d, CheckDuplicatesInput{Category: "c"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestAddHistory_SkipsBlank(t *testing.T) {
	_, _, d := testEnv(t)

	out, err := AddHistory(context.Background(), d, AddHistoryInput{
		Lines:    []string{"one", "   ", "two"},
		Category: "c", Subcategory: "s",
	})
	if err != nil {
		t.Fatalf("AddHistory failed: %v", err)
	}
	if out.Added != 2 {
		t.Errorf("Added = %d, want 2", out.Added)
	}
	if out.Message != "Recorded 2 line(s) in c/s" {
		t.Errorf("Message = %q", out.Message)
	}
}

func TestListHistory_Pagination(t *testing.T) {
	_, _, d := testEnv(t)
	ctx := context.Background()

	lines := make([]string, 25)
	for i := range lines {
		lines[i] = fmt.Sprintf("caption number %d", i)
	}
	if _, err := AddHistory(ctx, d, AddHistoryInput{Lines: lines, Category: "c", Subcategory: "s"}); err != nil {
		t.Fatalf("AddHistory failed: %v", err)
	}
	if _, err := AddHistory(ctx, d, AddHistoryInput{Lines: []string{"elsewhere"}, Category: "other", Subcategory: "s"}); err != nil {
		t.Fatalf("AddHistory failed: %v", err)
	}

	tests := []struct {
		name        string
		input       ListHistoryInput
		wantItems   int
		wantLimit   int
		wantTotal   int
		wantHasMore bool
	}{
		{name: "defaults", input: ListHistoryInput{}, wantItems: 20, wantLimit: 20, wantTotal: 26, wantHasMore: true},
		{name: "second page", input: ListHistoryInput{Offset: 20}, wantItems: 6, wantLimit: 20, wantTotal: 26, wantHasMore: false},
		{name: "category filter", input: ListHistoryInput{Category: "c", Limit: 10}, wantItems: 10, wantLimit: 10, wantTotal: 25, wantHasMore: true},
		{name: "limit clamped", input: ListHistoryInput{Limit: 1000}, wantItems: 26, wantLimit: 100, wantTotal: 26, wantHasMore: false},
		{name: "offset past end", input: ListHistoryInput{Offset: 500}, wantItems: 0, wantLimit: 20, wantTotal: 26, wantHasMore: false},
		{name: "negative offset", input: ListHistoryInput{Offset: -5, Limit: 5}, wantItems: 5, wantLimit: 5, wantTotal: 26, wantHasMore: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ListHistory(ctx, d, tt.input)
			if err != nil {
				t.Fatalf("ListHistory failed: %v", err)
			}
			if len(out.Items) != tt.wantItems {
				t.Errorf("len(Items) = %d, want %d", len(out.Items), tt.wantItems)
			}
			if out.Pagination.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", out.Pagination.Limit, tt.wantLimit)
			}
			if out.Pagination.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", out.Pagination.Total, tt.wantTotal)
			}
			if out.Pagination.HasMore != tt.wantHasMore {
				t.Errorf("HasMore = %v, want %v", out.Pagination.HasMore, tt.wantHasMore)
			}
			if out.Items == nil {
				t.Error("Items is nil, want empty slice")
			}
			if out.Sort != "timestamp_desc" {
				t.Errorf("Sort = %q", out.Sort)
			}
		})
	}
}

func TestClearHistory(t *testing.T) {
	_, _, d := testEnv(t)
	ctx := context.Background()

	if _, err := AddHistory(ctx, d, AddHistoryInput{Lines: []string{"a b c", "d e f"}}); err != nil {
		t.Fatalf("AddHistory failed: %v", err)
	}

	out, err := ClearHistory(ctx, d)
	if err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if out.Cleared != 2 {
		t.Errorf("Cleared = %d, want 2", out.Cleared)
	}

	list, _ := ListHistory(ctx, d, ListHistoryInput{})
	if list.Pagination.Total != 0 {
		t.Errorf("Total after clear = %d, want 0", list.Pagination.Total)
	}
}
