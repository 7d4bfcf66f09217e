package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/ops"
)

// setupTestDeps builds deps on a sqlite history in a temp dir.
func setupTestDeps(t *testing.T) *deps {
	t.Helper()
	d, cleanup, err := setup(context.Background(), config.DefaultConfig(), t.TempDir())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	t.Cleanup(cleanup)
	return d
}

// runCLI runs the app with optional piped stdin and returns captured stdout.
func runCLI(t *testing.T, d *deps, stdin *string, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(d)

	// Capture stdout
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	if stdin != nil {
		oldStdin := os.Stdin
		stdinR, stdinW, err := os.Pipe()
		if err != nil {
			t.Fatalf("pipe: %v", err)
		}
		os.Stdin = stdinR
		defer func() { os.Stdin = oldStdin }()

		go func() {
			_, _ = stdinW.WriteString(*stdin)
			stdinW.Close()
		}()
	}

	runErr := app.Run(append([]string{"quip"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), runErr
}

func strPtr(s string) *string { return &s }

func TestCLIParse(t *testing.T) {
	out, err := runCLI(t, nil, nil, "parse", `@Alex, coffee, "Reid"`)
	require.NoError(t, err)

	var output ops.ParseOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output), out)
	require.Equal(t, []string{"Alex", "Reid"}, output.Hard)
	require.Equal(t, []string{"coffee"}, output.Soft)
}

func TestCLIParse_HardSoftFlags(t *testing.T) {
	out, err := runCLI(t, nil, nil, "parse", "--hard", "Alex", "--hard", "Reid", "--soft", "coffee")
	require.NoError(t, err)

	var output ops.ParseOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output), out)
	require.Equal(t, "@Alex, @Reid, coffee", output.Normalized)
}

func TestCLISanitize(t *testing.T) {
	d := setupTestDeps(t)

	out, err := runCLI(t, d, nil, "sanitize", "--tags", "cries like a girl, tacos")
	require.NoError(t, err)

	var output ops.SanitizeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output), out)
	require.Equal(t, []string{"tacos"}, output.SafeTags)
	require.Len(t, output.Suggestions, 1)
	require.Equal(t, "cries like a girl", output.Suggestions[0].OriginalTag)
}

func TestCLIValidate(t *testing.T) {
	d := setupTestDeps(t)

	out, err := runCLI(t, d, nil, "validate", "drunk", "driving")
	require.NoError(t, err)

	var output ops.ValidateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output), out)
	require.False(t, output.IsValid)
	require.Equal(t, "drunk driving", output.Tag)

	_, err = runCLI(t, d, nil, "validate")
	require.Error(t, err)
	require.Contains(t, err.Error(), "INVALID_REQUEST")
}

func TestCLIEnforce(t *testing.T) {
	d := setupTestDeps(t)

	out, err := runCLI(t, d, strPtr("Monday is a mood\n\nNobody asked\nAlex Reid\n"), "enforce", "--tags", "@Alex, @Reid")
	require.NoError(t, err)

	var output ops.EnforceOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output), out)
	require.Equal(t, []string{"Monday is Reid Alex a mood", "Nobody asked Reid Alex", "Alex Reid"}, output.Lines)
	require.True(t, output.Changed)
}

func TestCLIFinalizeAndHistory(t *testing.T) {
	d := setupTestDeps(t)

	batch := "Alex and Reid bake bread\nAlex and Reid fold laundry\nReid and Alex walk home\n"

	// First run records everything.
	out, err := runCLI(t, d, strPtr(batch), "finalize", "--hard", "Alex,Reid", "-c", "home", "-s", "chores", "--record")
	require.NoError(t, err)
	var first ops.FinalizeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &first), out)
	require.Len(t, first.Accepted, 3)
	require.Equal(t, 3, first.Recorded)

	// Same batch again is all duplicates.
	out, err = runCLI(t, d, strPtr(batch), "dedupe", "--category", "home", "--subcategory", "chores")
	require.NoError(t, err)
	var dupes ops.CheckDuplicatesOutput
	require.NoError(t, json.Unmarshal([]byte(out), &dupes), out)
	require.Equal(t, []int{0, 1, 2}, dupes.DuplicateIndices)

	// List and clear.
	out, err = runCLI(t, d, nil, "history", "list", "--limit", "2")
	require.NoError(t, err)
	var list ops.ListHistoryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &list), out)
	require.Len(t, list.Items, 2)
	require.Equal(t, 3, list.Pagination.Total)
	require.True(t, list.Pagination.HasMore)

	out, err = runCLI(t, d, nil, "history", "clear")
	require.NoError(t, err)
	var cleared ops.ClearHistoryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &cleared), out)
	require.Equal(t, 3, cleared.Cleared)
}

func TestCLIHistoryAdd(t *testing.T) {
	d := setupTestDeps(t)

	out, err := runCLI(t, d, strPtr("one line\n  \nanother line"), "history", "add", "-c", "misc")
	require.NoError(t, err)

	var output ops.AddHistoryOutput
	require.NoError(t, json.Unmarshal([]byte(out), &output), out)
	require.Equal(t, 2, output.Added)
}

func TestCLIStyle(t *testing.T) {
	a, err := runCLI(t, nil, nil, "style", "4")
	require.NoError(t, err)
	b, err := runCLI(t, nil, nil, "style", "4")
	require.NoError(t, err)
	require.Equal(t, a, b)

	_, err = runCLI(t, nil, nil, "style", "four")
	require.Error(t, err)
}

func TestCLIErrorHandling(t *testing.T) {
	d := setupTestDeps(t)

	tests := []struct {
		name     string
		stdin    *string
		args     []string
		wantCode errors.ErrorCode
	}{
		{
			name:     "ambiguous tags",
			args:     []string{"sanitize", "--tags", "a", "--hard", "b"},
			wantCode: errors.ErrAmbiguousInput,
		},
		{
			name:     "enforce without lines",
			stdin:    strPtr("\n\n"),
			args:     []string{"enforce", "--tags", "@Alex"},
			wantCode: errors.ErrInvalidRequest,
		},
		{
			name:     "style length out of range",
			args:     []string{"style", "--length", "9999", "0"},
			wantCode: errors.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, d, tt.stdin, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), string(tt.wantCode)) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestSetup_Backends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
	}{
		{name: "sqlite", backend: config.BackendSQLite},
		{name: "file", backend: config.BackendFile},
		{name: "memory", backend: config.BackendMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.HistoryBackend = tt.backend
			cfg.HistoryMaxEntries = 5
			cfg.DuplicateThreshold = 0.5

			d, cleanup, err := setup(context.Background(), cfg, t.TempDir())
			require.NoError(t, err)
			defer cleanup()

			require.Equal(t, 5, d.detector.MaxEntries())
			require.Equal(t, 0.5, d.detector.Threshold())
			require.Equal(t, 1, d.detector.AddToHistory(context.Background(), []string{"hello"}, "c", "s"))
		})
	}
}

func TestSetup_Errors(t *testing.T) {
	t.Run("bad rules path", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.RulesPath = filepath.Join(t.TempDir(), "missing.json")
		_, _, err := setup(context.Background(), cfg, t.TempDir())
		require.True(t, errors.Is(err, errors.ErrRulesInvalid), "err = %v", err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.HistoryBackend = "etcd"
		_, _, err := setup(context.Background(), cfg, t.TempDir())
		require.True(t, errors.Is(err, errors.ErrInvalidRequest), "err = %v", err)
	})

	t.Run("custom rules", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rules.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"phrases":[{"phrase":"mondays","alternatives":["weekdays"]}]}`), 0600))

		cfg := config.DefaultConfig()
		cfg.RulesPath = path
		cfg.HistoryBackend = config.BackendMemory
		d, cleanup, err := setup(context.Background(), cfg, dir)
		require.NoError(t, err)
		defer cleanup()

		require.NotNil(t, d.sanitizer.SanitizeTag("I hate Mondays"))
		require.Nil(t, d.sanitizer.SanitizeTag("heroin"), "custom table replaces the embedded one")
	})
}

// TestIsCLIMode tests mode detection.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"quip"}, expected: false},
		{name: "parse command", args: []string{"quip", "parse"}, expected: true},
		{name: "history command", args: []string{"quip", "history"}, expected: true},
		{name: "serve command", args: []string{"quip", "serve"}, expected: true},
		{name: "help flag", args: []string{"quip", "--help"}, expected: true},
		{name: "short version flag", args: []string{"quip", "-v"}, expected: true},
		{name: "unknown arg defaults to MCP", args: []string{"quip", "--unknown"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isCLIMode(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests the isHelpOrVersion function.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"quip"}, expected: false},
		{name: "help flag", args: []string{"quip", "--help"}, expected: true},
		{name: "short help flag", args: []string{"quip", "-h"}, expected: true},
		{name: "version flag", args: []string{"quip", "--version"}, expected: true},
		{name: "help subcommand", args: []string{"quip", "help"}, expected: true},
		{name: "parse command is not help", args: []string{"quip", "parse"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			if result := isHelpOrVersion(); result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestReadStdinWithLimit tests the readStdin function respects size limits.
func TestReadStdinWithLimit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int64
		wantErr bool
	}{
		{name: "within limit", content: "small content", limit: 1000},
		{name: "exactly at limit", content: strings.Repeat("x", 10), limit: 10},
		{name: "exceeds limit", content: strings.Repeat("x", 100), limit: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, w, err := os.Pipe()
			if err != nil {
				t.Fatalf("Failed to create pipe: %v", err)
			}
			go func() {
				_, _ = w.WriteString(tt.content)
				w.Close()
			}()

			oldStdin := os.Stdin
			os.Stdin = r
			defer func() { os.Stdin = oldStdin }()

			result, err := readStdin(tt.limit)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for oversized input")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if result != tt.content {
				t.Errorf("expected %q, got %q", tt.content, result)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	got := splitLines("  first \r\n\n second\n\t\nthird")
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("splitLines() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
