package ops

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/db"
	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/history"
	"github.com/hpungsan/quip/internal/kv"
	"github.com/hpungsan/quip/internal/sanitize"
)

// testEnv wires a sanitizer and a sqlite-backed detector in a temp dir.
func testEnv(t *testing.T) (*config.Config, *sanitize.Sanitizer, *history.Detector) {
	t.Helper()

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	s, err := sanitize.NewDefault()
	if err != nil {
		t.Fatalf("sanitize.NewDefault failed: %v", err)
	}

	return config.DefaultConfig(), s, newDetector(database)
}

func newDetector(database *sql.DB) *history.Detector {
	return history.NewDetector(kv.NewSQLite(database))
}

func TestResolveTags(t *testing.T) {
	tests := []struct {
		name     string
		input    TagInput
		wantLen  int
		wantCode errors.ErrorCode
	}{
		{name: "raw string", input: TagInput{Tags: `@Alex, coffee, "Reid"`}, wantLen: 3},
		{name: "arrays", input: TagInput{Hard: []string{"Alex"}, Soft: []string{"coffee", " "}}, wantLen: 2},
		{name: "neither", input: TagInput{}, wantLen: 0},
		{name: "whitespace raw with arrays", input: TagInput{Tags: "  ", Hard: []string{"Alex"}}, wantLen: 1},
		{name: "both forms", input: TagInput{Tags: "coffee", Soft: []string{"tea"}}, wantCode: errors.ErrAmbiguousInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTags(tt.input)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("ResolveTags() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveTags() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestParse(t *testing.T) {
	out, err := Parse(ParseInput{TagInput{Tags: `@Alex, coffee, “Reid”, , monday`}})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !reflect.DeepEqual(out.Hard, []string{"Alex", "Reid"}) {
		t.Errorf("Hard = %v", out.Hard)
	}
	if !reflect.DeepEqual(out.Soft, []string{"coffee", "monday"}) {
		t.Errorf("Soft = %v", out.Soft)
	}
	if out.Normalized != "@Alex, coffee, @Reid, monday" {
		t.Errorf("Normalized = %q", out.Normalized)
	}
}

func TestParse_Empty(t *testing.T) {
	out, err := Parse(ParseInput{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if out.Tags == nil || out.Hard == nil || out.Soft == nil {
		t.Errorf("expected empty, non-nil slices: %+v", out)
	}
}

func TestSanitize(t *testing.T) {
	_, s, _ := testEnv(t)

	out, err := Sanitize(s, SanitizeInput{TagInput{Tags: "@Alex, punches like a girl, coffee, @heroin chic"}})
	if err != nil {
		t.Fatalf("Sanitize failed: %v", err)
	}

	if !reflect.DeepEqual(out.SafeTags, []string{"Alex", "coffee"}) {
		t.Errorf("SafeTags = %v", out.SafeTags)
	}
	if len(out.Suggestions) != 2 {
		t.Fatalf("len(Suggestions) = %d, want 2", len(out.Suggestions))
	}
	if !reflect.DeepEqual(out.Hard, []string{"Alex"}) || !reflect.DeepEqual(out.Soft, []string{"coffee"}) {
		t.Errorf("Hard = %v, Soft = %v", out.Hard, out.Soft)
	}
}

func TestSanitize_Ambiguous(t *testing.T) {
	_, s, _ := testEnv(t)

	_, err := Sanitize(s, SanitizeInput{TagInput{Tags: "a", Hard: []string{"b"}}})
	if !errors.Is(err, errors.ErrAmbiguousInput) {
		t.Errorf("error = %v, want AMBIGUOUS_INPUT", err)
	}
}

func TestValidate(t *testing.T) {
	_, s, _ := testEnv(t)

	out, err := Validate(s, ValidateInput{Tag: "man up"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if out.IsValid || out.Warning == "" || len(out.Suggestions) == 0 {
		t.Errorf("Validate(man up) = %+v", out)
	}

	out, err = Validate(s, ValidateInput{Tag: "brunch"})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !out.IsValid {
		t.Errorf("Validate(brunch) = %+v", out)
	}
}

func TestEnforce(t *testing.T) {
	cfg, _, _ := testEnv(t)

	out, err := Enforce(cfg, EnforceInput{
		TagInput: TagInput{Tags: "@Alex, @Reid, coffee"},
		Lines:    []string{"Monday is a mood", "Nobody asked", "Alex Reid"},
	})
	if err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}

	want := []string{"Monday is Reid Alex a mood", "Nobody asked Reid Alex", "Alex Reid"}
	if !reflect.DeepEqual(out.Lines, want) {
		t.Errorf("Lines = %v, want %v", out.Lines, want)
	}
	if !out.Changed {
		t.Error("Changed = false, want true")
	}
	if !reflect.DeepEqual(out.Coverage, []int{2, 2, 2}) {
		t.Errorf("Coverage = %v", out.Coverage)
	}
}

func TestEnforce_RequiredOverride(t *testing.T) {
	cfg, _, _ := testEnv(t)

	out, err := Enforce(cfg, EnforceInput{
		TagInput: TagInput{Hard: []string{"Alex", "Reid"}},
		Lines:    []string{"Alex and Reid", "Monday is a mood"},
		Required: 1,
	})
	if err != nil {
		t.Fatalf("Enforce failed: %v", err)
	}
	if out.Changed {
		t.Errorf("one covered line satisfies required=1, got %v", out.Lines)
	}
}

func TestEnforce_NoLines(t *testing.T) {
	cfg, _, _ := testEnv(t)

	_, err := Enforce(cfg, EnforceInput{TagInput: TagInput{Tags: "@Alex"}})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestPickStyle(t *testing.T) {
	a, err := PickStyle(PickStyleInput{Index: 7})
	if err != nil {
		t.Fatalf("PickStyle failed: %v", err)
	}
	b, _ := PickStyle(PickStyleInput{Index: 7})
	if a.Style != b.Style || a.Bucket != b.Bucket {
		t.Error("PickStyle is not deterministic")
	}

	length := 50
	c, err := PickStyle(PickStyleInput{Index: 0, Length: &length})
	if err != nil {
		t.Fatalf("PickStyle failed: %v", err)
	}
	if c.Bucket.Name != "medium" {
		t.Errorf("Bucket = %q, want medium", c.Bucket.Name)
	}

	tooLong := 10000
	if _, err := PickStyle(PickStyleInput{Length: &tooLong}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("error = %v, want INVALID_REQUEST", err)
	}
}

func TestNilDependencies(t *testing.T) {
	ctx := context.Background()
	lines := []string{"x"}

	checks := map[string]error{}
	_, checks["sanitize"] = Sanitize(nil, SanitizeInput{})
	_, checks["validate"] = Validate(nil, ValidateInput{})
	_, checks["dedupe"] = CheckDuplicates(ctx, nil, CheckDuplicatesInput{Lines: lines})
	_, checks["add"] = AddHistory(ctx, nil, AddHistoryInput{Lines: lines})
	_, checks["clear"] = ClearHistory(ctx, nil)
	_, checks["list"] = ListHistory(ctx, nil, ListHistoryInput{})
	_, checks["finalize"] = Finalize(ctx, nil, nil, nil, FinalizeInput{Lines: lines})

	for name, err := range checks {
		if !errors.Is(err, errors.ErrInternal) {
			t.Errorf("%s: error = %v, want INTERNAL", name, err)
		}
	}
}
