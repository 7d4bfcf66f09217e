package main

import (
	"bufio"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/ops"
	"github.com/hpungsan/quip/internal/web"
)

// MaxStdinBytes bounds how much piped input a command will read.
const MaxStdinBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
// d may be nil when only help or version output is needed.
func newCLIApp(d *deps) *cli.App {
	app := &cli.App{
		Name:    "quip",
		Usage:   "Caption tag safety and duplicate checks",
		Version: Version,
		Commands: []*cli.Command{
			parseCmd(),
			sanitizeCmd(d),
			validateCmd(d),
			enforceCmd(d),
			dedupeCmd(d),
			finalizeCmd(d),
			historyCmd(d),
			styleCmd(),
			serveCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// tagFlags are shared by every command that takes tags.
func tagFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "tags", Aliases: []string{"t"}, Usage: `Comma-separated tags; quote or @-prefix hard tags`},
		&cli.StringSliceFlag{Name: "hard", Usage: "Hard tag (repeatable or comma-separated)"},
		&cli.StringSliceFlag{Name: "soft", Usage: "Soft tag (repeatable or comma-separated)"},
	}
}

// scopeFlags are shared by history-aware commands.
func scopeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Caption category"},
		&cli.StringFlag{Name: "subcategory", Aliases: []string{"s"}, Usage: "Caption subcategory"},
	}
}

// tagInput reads tags from --tags, a positional argument, or --hard/--soft.
func tagInput(c *cli.Context) ops.TagInput {
	raw := c.String("tags")
	if raw == "" && c.NArg() > 0 {
		raw = strings.Join(c.Args().Slice(), ", ")
	}
	return ops.TagInput{
		Tags: raw,
		Hard: c.StringSlice("hard"),
		Soft: c.StringSlice("soft"),
	}
}

// parseCmd creates the parse command.
func parseCmd() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Classify tags as hard or soft",
		ArgsUsage: "[tags]",
		Flags:     tagFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.Parse(ops.ParseInput{TagInput: tagInput(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// sanitizeCmd creates the sanitize command.
func sanitizeCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "sanitize",
		Usage:     "Flag unsafe tags and suggest alternatives",
		ArgsUsage: "[tags]",
		Flags:     tagFlags(),
		Action: func(c *cli.Context) error {
			output, err := ops.Sanitize(d.sanitizer, ops.SanitizeInput{TagInput: tagInput(c)})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// validateCmd creates the validate command.
func validateCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check a single tag",
		ArgsUsage: "<tag>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("tag argument is required"))
			}
			output, err := ops.Validate(d.sanitizer, ops.ValidateInput{Tag: strings.Join(c.Args().Slice(), " ")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// enforceCmd creates the enforce command.
func enforceCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "enforce",
		Usage: "Insert missing hard tags into lines (reads lines from stdin)",
		Flags: append(tagFlags(),
			&cli.IntFlag{Name: "required", Usage: "Lines that must carry two hard tags (default: config)"},
		),
		Action: func(c *cli.Context) error {
			lines, err := stdinLines()
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Enforce(d.cfg, ops.EnforceInput{
				TagInput: tagInput(c),
				Lines:    lines,
				Required: c.Int("required"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// dedupeCmd creates the dedupe command.
func dedupeCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "dedupe",
		Usage: "Report lines that repeat recent history (reads lines from stdin)",
		Flags: scopeFlags(),
		Action: func(c *cli.Context) error {
			lines, err := stdinLines()
			if err != nil {
				return outputError(err)
			}
			output, err := ops.CheckDuplicates(c.Context, d.detector, ops.CheckDuplicatesInput{
				Lines:       lines,
				Category:    c.String("category"),
				Subcategory: c.String("subcategory"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// finalizeCmd creates the finalize command.
func finalizeCmd(d *deps) *cli.Command {
	flags := append(tagFlags(), scopeFlags()...)
	flags = append(flags,
		&cli.IntFlag{Name: "required", Usage: "Lines that must carry two hard tags (default: config)"},
		&cli.BoolFlag{Name: "record", Usage: "Add accepted lines to history"},
	)
	return &cli.Command{
		Name:  "finalize",
		Usage: "Enforce, flag unsafe text and drop duplicates (reads lines from stdin)",
		Flags: flags,
		Action: func(c *cli.Context) error {
			lines, err := stdinLines()
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Finalize(c.Context, d.cfg, d.sanitizer, d.detector, ops.FinalizeInput{
				TagInput:    tagInput(c),
				Lines:       lines,
				Category:    c.String("category"),
				Subcategory: c.String("subcategory"),
				Required:    c.Int("required"),
				Record:      c.Bool("record"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command group.
func historyCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect or change the duplicate-detection history",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List history entries, newest first",
				Flags: append(scopeFlags(),
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max items"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Usage: "Items to skip"},
				),
				Action: func(c *cli.Context) error {
					output, err := ops.ListHistory(c.Context, d.detector, ops.ListHistoryInput{
						Category:    c.String("category"),
						Subcategory: c.String("subcategory"),
						Limit:       c.Int("limit"),
						Offset:      c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "add",
				Usage: "Record lines (reads lines from stdin)",
				Flags: scopeFlags(),
				Action: func(c *cli.Context) error {
					lines, err := stdinLines()
					if err != nil {
						return outputError(err)
					}
					output, err := ops.AddHistory(c.Context, d.detector, ops.AddHistoryInput{
						Lines:       lines,
						Category:    c.String("category"),
						Subcategory: c.String("subcategory"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "clear",
				Usage: "Remove every history entry",
				Action: func(c *cli.Context) error {
					output, err := ops.ClearHistory(c.Context, d.detector)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// styleCmd creates the style command.
func styleCmd() *cli.Command {
	return &cli.Command{
		Name:      "style",
		Usage:     "Pick a comedian style and length bucket for an index",
		ArgsUsage: "<index>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "length", Usage: "Choose the bucket by caption length"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PickStyleInput{}
			if c.NArg() > 0 {
				index, err := strconv.Atoi(c.Args().First())
				if err != nil {
					return outputError(errors.NewInvalidRequest("index must be an integer"))
				}
				input.Index = index
			}
			if c.IsSet("length") {
				length := c.Int("length")
				input.Length = &length
			}
			output, err := ops.PickStyle(input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(d *deps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local review UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8420, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(d.cfg, d.sanitizer, d.detector, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var qErr *errors.QuipError
	if stderrors.As(err, &qErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", qErr.Code, qErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most limit bytes from stdin.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("input exceeds %d bytes", limit)
	}
	return string(data), nil
}

// stdinLines reads piped lines, one caption per line, dropping blank lines.
func stdinLines() ([]string, error) {
	if !stdinHasData() {
		return nil, errors.NewInvalidRequest("lines must be piped via stdin, one per line")
	}
	text, err := readStdin(MaxStdinBytes)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	return splitLines(text), nil
}

// splitLines splits text on newlines, trimming each line and dropping empties.
func splitLines(text string) []string {
	lines := make([]string, 0)
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), MaxStdinBytes)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
