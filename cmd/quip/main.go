package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/db"
	"github.com/hpungsan/quip/internal/history"
	"github.com/hpungsan/quip/internal/kv"
	"github.com/hpungsan/quip/internal/logging"
	"github.com/hpungsan/quip/internal/mcp"
	"github.com/hpungsan/quip/internal/sanitize"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"parse": true, "sanitize": true, "validate": true,
	"enforce": true, "dedupe": true, "finalize": true,
	"history": true, "style": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
               _
   __ _ _   _ (_)_ __
  / _' | | | || | '_ \
 | (_| | |_| || | |_) |
  \__, |\__,_||_| .__/
     |_|        |_|

  Caption tag safety and duplicate checks

  Usage: quip <command> [options]
         quip --help

  MCP server mode requires piped input.`)
}

// deps holds the long-lived services every surface shares.
type deps struct {
	cfg       *config.Config
	sanitizer *sanitize.Sanitizer
	detector  *history.Detector
}

// setup builds the sanitizer and history detector selected by cfg.
// The returned cleanup releases the store and database.
func setup(ctx context.Context, cfg *config.Config, baseDir string) (*deps, func(), error) {
	rules, err := loadRules(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := sanitize.New(rules)
	if err != nil {
		return nil, nil, err
	}

	var database *sql.DB
	if cfg.HistoryBackend == "" || cfg.HistoryBackend == config.BackendSQLite {
		database, err = db.Init(baseDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		db.ConfigurePool(database, cfg)
	}

	store, closeStore, err := kv.Open(ctx, cfg, database, baseDir)
	if err != nil {
		if database != nil {
			database.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		if err := closeStore(); err != nil {
			slog.Warn("closing history store", "error", err)
		}
		if database != nil {
			database.Close()
		}
	}

	d := history.NewDetector(store,
		history.WithKey(cfg.HistoryKey),
		history.WithMaxEntries(cfg.HistoryMaxEntries),
		history.WithThreshold(cfg.DuplicateThreshold),
		history.WithLogger(slog.Default()),
	)

	return &deps{cfg: cfg, sanitizer: s, detector: d}, cleanup, nil
}

// loadRules returns the rule table named by cfg.RulesPath, or the embedded one.
func loadRules(cfg *config.Config) (*sanitize.Rules, error) {
	if cfg.RulesPath != "" {
		return sanitize.LoadRules(cfg.RulesPath)
	}
	return sanitize.DefaultRules()
}

// warnUnknownDisabled logs disabled tool/type names that match nothing.
func warnUnknownDisabled(cfg *config.Config) {
	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		slog.Warn("unknown tools in disabled_tools", "names", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		slog.Warn("unknown types in disabled_types", "names", unknown)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before any setup
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode() && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'quip --help' for usage.\n")
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".quip")

	cwd, err := os.Getwd()
	if err != nil {
		fatal("could not determine working directory: %v", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}
	logging.Configure(cfg.LogLevel, cfg.LogFormat)

	d, cleanup, err := setup(context.Background(), cfg, baseDir)
	if err != nil {
		fatal("%v", err)
	}
	defer cleanup()

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(d)
		if err := app.Run(os.Args); err != nil {
			cleanup()
			fatal("%v", err)
		}
		return
	}

	// MCP server mode (default)
	warnUnknownDisabled(cfg)
	if err := mcp.Run(cfg, d.sanitizer, d.detector, Version); err != nil {
		cleanup()
		fatal("%v", err)
	}
}
