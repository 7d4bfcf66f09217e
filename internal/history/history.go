// Package history flags generated lines that repeat recent captions.
//
// The log lives in a kv.Store as a JSON array under a single key. Read and
// storage failures are logged and treated as an empty history; nothing here
// returns an error to the caller.
package history

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/quip/internal/kv"
)

const (
	// DefaultKey is the store key holding the history log.
	DefaultKey = "caption_history"

	// DefaultMaxEntries caps the log; the oldest entries are evicted first.
	DefaultMaxEntries = 200

	// DefaultThreshold is the Jaccard similarity a line must exceed to be a duplicate.
	DefaultThreshold = 0.85
)

// Entry is one remembered caption line.
type Entry struct {
	ID             string `json:"id,omitempty"`
	NormalizedText string `json:"normalizedText"`
	Category       string `json:"category"`
	Subcategory    string `json:"subcategory"`
	Timestamp      int64  `json:"timestamp"` // epoch milliseconds
}

// Result reports which new lines duplicate history.
type Result struct {
	HasDuplicates    bool  `json:"has_duplicates"`
	DuplicateIndices []int `json:"duplicate_indices"`
}

// Detector checks and records caption lines against a persisted history.
// Access is read-modify-write without locking; one writer at a time is assumed.
type Detector struct {
	store      kv.Store
	key        string
	maxEntries int
	threshold  float64
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithKey sets the store key.
func WithKey(key string) Option {
	return func(d *Detector) {
		if key != "" {
			d.key = key
		}
	}
}

// WithMaxEntries sets the log cap.
func WithMaxEntries(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxEntries = n
		}
	}
}

// WithThreshold sets the duplicate similarity threshold.
func WithThreshold(t float64) Option {
	return func(d *Detector) {
		if t > 0 {
			d.threshold = t
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets the logger used for swallowed errors.
func WithLogger(l *slog.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDetector returns a Detector over store.
func NewDetector(store kv.Store, opts ...Option) *Detector {
	d := &Detector{
		store:      store,
		key:        DefaultKey,
		maxEntries: DefaultMaxEntries,
		threshold:  DefaultThreshold,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MaxEntries returns the configured log cap.
func (d *Detector) MaxEntries() int { return d.maxEntries }

// Threshold returns the configured similarity threshold.
func (d *Detector) Threshold() float64 { return d.threshold }

// CheckForDuplicates flags lines whose similarity to any history entry in the
// same category and subcategory exceeds the threshold. History is not modified.
func (d *Detector) CheckForDuplicates(ctx context.Context, lines []string, category, subcategory string) Result {
	result := Result{DuplicateIndices: []int{}}
	if len(lines) == 0 {
		return result
	}

	scoped := filter(d.load(ctx), category, subcategory)
	if len(scoped) == 0 {
		return result
	}

	for i, line := range lines {
		norm := Normalize(line)
		for _, e := range scoped {
			if Jaccard(norm, e.NormalizedText) > d.threshold {
				result.DuplicateIndices = append(result.DuplicateIndices, i)
				break
			}
		}
	}
	result.HasDuplicates = len(result.DuplicateIndices) > 0
	return result
}

// AddToHistory records lines under category/subcategory, keeping only the most
// recent entries up to the cap. It returns the number of entries written.
func (d *Detector) AddToHistory(ctx context.Context, lines []string, category, subcategory string) int {
	ts := d.now().UnixMilli()
	fresh := make([]Entry, 0, len(lines))
	for _, line := range lines {
		norm := Normalize(line)
		if norm == "" {
			continue
		}
		fresh = append(fresh, Entry{
			ID:             newID(d.now()),
			NormalizedText: norm,
			Category:       category,
			Subcategory:    subcategory,
			Timestamp:      ts,
		})
	}
	if len(fresh) == 0 {
		return 0
	}

	merged := append(fresh, d.load(ctx)...)
	// Stable so same-timestamp entries keep new-before-old order.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	if len(merged) > d.maxEntries {
		merged = merged[:d.maxEntries]
	}

	data, err := json.Marshal(merged)
	if err != nil {
		d.logger.Warn("history: encode failed", "error", err)
		return 0
	}
	if err := d.store.Set(ctx, d.key, string(data)); err != nil {
		d.logger.Warn("history: write failed", "key", d.key, "error", err)
		return 0
	}
	return len(fresh)
}

// ClearHistory removes every stored entry.
func (d *Detector) ClearHistory(ctx context.Context) {
	if err := d.store.Remove(ctx, d.key); err != nil {
		d.logger.Warn("history: clear failed", "key", d.key, "error", err)
	}
}

// List returns stored entries, newest first. Empty category or subcategory
// match any value.
func (d *Detector) List(ctx context.Context, category, subcategory string) []Entry {
	entries := d.load(ctx)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if category != "" && e.Category != category {
			continue
		}
		if subcategory != "" && e.Subcategory != subcategory {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// load reads the log, returning nil on missing or unreadable data.
func (d *Detector) load(ctx context.Context) []Entry {
	raw, found, err := d.store.Get(ctx, d.key)
	if err != nil {
		d.logger.Warn("history: read failed", "key", d.key, "error", err)
		return nil
	}
	if !found || raw == "" {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		d.logger.Warn("history: corrupt data ignored", "key", d.key, "error", err)
		return nil
	}
	return entries
}

// filter keeps entries matching category and subcategory exactly.
func filter(entries []Entry, category, subcategory string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Category == category && e.Subcategory == subcategory {
			out = append(out, e)
		}
	}
	return out
}

// newID generates a ULID for an entry; an empty ID is tolerated.
func newID(t time.Time) string {
	id, err := ulid.New(ulid.Timestamp(t), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return ""
	}
	return id.String()
}
