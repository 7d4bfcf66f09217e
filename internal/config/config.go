package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// History backends understood by kv.Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds application configuration.
type Config struct {
	// RulesPath points at a JSON rule table replacing the embedded one.
	// Relative paths are resolved against the directory holding the config file.
	RulesPath string `json:"rules_path,omitempty"`

	// HistoryBackend selects where the duplicate-detection history lives:
	// "sqlite" (default), "file", "memory" or "redis".
	HistoryBackend string `json:"history_backend,omitempty"`

	// HistoryKey is the key the history log is stored under.
	HistoryKey string `json:"history_key,omitempty"`

	// HistoryMaxEntries caps the history log; oldest entries are evicted first.
	HistoryMaxEntries int `json:"history_max_entries,omitempty"`

	// DuplicateThreshold is the Jaccard similarity above which a line is a duplicate.
	DuplicateThreshold float64 `json:"duplicate_threshold,omitempty"`

	// RequiredHardLines is how many lines must carry at least two hard tags
	// before the enforcer leaves a batch alone.
	RequiredHardLines int `json:"required_hard_lines,omitempty"`

	// Redis holds connection settings for the "redis" history backend.
	Redis RedisConfig `json:"redis,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool types to disable entirely.
	// Known types: "tags", "lines", "history", "style".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat is "text" (default) or "json".
	LogFormat string `json:"log_format,omitempty"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address   string `json:"address,omitempty"`
	Password  string `json:"password,omitempty"`
	DB        int    `json:"db,omitempty"`
	KeyPrefix string `json:"key_prefix,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HistoryBackend:     BackendSQLite,
		HistoryKey:         "caption_history",
		HistoryMaxEntries:  200,
		DuplicateThreshold: 0.85,
		RequiredHardLines:  3,
		Redis: RedisConfig{
			Address:   "localhost:6379",
			KeyPrefix: "quip:",
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.quip.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.quip) and repo (.quip) directories.
// Repo config is found by walking upward from startDir to find the nearest .quip/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	// Walk upward from startDir to find repo config
	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .quip/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".quip", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.RulesPath != "" && !filepath.IsAbs(cfg.RulesPath) {
		cfg.RulesPath = filepath.Join(filepath.Dir(configPath), cfg.RulesPath)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.RulesPath = firstString(overlay.RulesPath, base.RulesPath)
	result.HistoryBackend = firstString(overlay.HistoryBackend, base.HistoryBackend)
	result.HistoryKey = firstString(overlay.HistoryKey, base.HistoryKey)
	result.LogLevel = firstString(overlay.LogLevel, base.LogLevel)
	result.LogFormat = firstString(overlay.LogFormat, base.LogFormat)

	result.HistoryMaxEntries = firstInt(overlay.HistoryMaxEntries, base.HistoryMaxEntries)
	result.RequiredHardLines = firstInt(overlay.RequiredHardLines, base.RequiredHardLines)
	result.DBMaxOpenConns = firstInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = firstInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.DuplicateThreshold = overlay.DuplicateThreshold
	if result.DuplicateThreshold == 0 {
		result.DuplicateThreshold = base.DuplicateThreshold
	}

	result.Redis = RedisConfig{
		Address:   firstString(overlay.Redis.Address, base.Redis.Address),
		Password:  firstString(overlay.Redis.Password, base.Redis.Password),
		DB:        firstInt(overlay.Redis.DB, base.Redis.DB),
		KeyPrefix: firstString(overlay.Redis.KeyPrefix, base.Redis.KeyPrefix),
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func firstInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
