package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Shared argument descriptions.
const (
	tagsDesc        = `Comma-separated tags. Wrap a tag in double quotes or prefix it with @ to make it hard (must appear verbatim). Do not combine with hard/soft.`
	hardDesc        = `Pre-split hard tags. Do not combine with tags.`
	softDesc        = `Pre-split soft tags. Do not combine with tags.`
	linesDesc       = `Generated caption lines, in order.`
	categoryDesc    = `Category the lines belong to. Duplicate checks only compare within the same category and subcategory.`
	subcategoryDesc = `Subcategory the lines belong to.`
)

func tagArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("tags", mcp.Description(tagsDesc)),
		mcp.WithArray("hard", mcp.Description(hardDesc), mcp.WithStringItems()),
		mcp.WithArray("soft", mcp.Description(softDesc), mcp.WithStringItems()),
	}
}

func withOptions(base []mcp.ToolOption, extra ...mcp.ToolOption) []mcp.ToolOption {
	return append(base, extra...)
}

var parseToolDef = mcp.NewTool("tags_parse", withOptions(tagArgs(),
	mcp.WithDescription("Classify tags as hard (quoted or @-prefixed) or soft. Returns parsed tags, hard/soft arrays and the canonical string form."),
	mcp.WithReadOnlyHintAnnotation(true),
)...)

var sanitizeToolDef = mcp.NewTool("tags_sanitize", withOptions(tagArgs(),
	mcp.WithDescription("Split tags into safe tags and flagged tags. Each flagged tag comes back with ranked alternatives and a reason."),
	mcp.WithReadOnlyHintAnnotation(true),
)...)

var validateToolDef = mcp.NewTool("tags_validate",
	mcp.WithDescription("Check a single tag as it is typed. Returns is_valid, and a warning plus suggestions when flagged."),
	mcp.WithString("tag", mcp.Required(), mcp.Description("The tag text to check.")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var enforceToolDef = mcp.NewTool("lines_enforce", withOptions(tagArgs(),
	mcp.WithDescription("Make sure hard tags appear in generated lines. If too few lines carry at least two hard tags, missing tags are inserted after the first verb, conjunction or preposition of each line."),
	mcp.WithArray("lines", mcp.Required(), mcp.Description(linesDesc), mcp.WithStringItems()),
	mcp.WithNumber("required", mcp.Description("Lines that must carry two hard tags before no changes are made. Defaults to config required_hard_lines.")),
	mcp.WithReadOnlyHintAnnotation(true),
)...)

var dedupeToolDef = mcp.NewTool("lines_dedupe",
	mcp.WithDescription("Report which lines are near-duplicates of recent history in the same category and subcategory. History is not modified."),
	mcp.WithArray("lines", mcp.Required(), mcp.Description(linesDesc), mcp.WithStringItems()),
	mcp.WithString("category", mcp.Description(categoryDesc)),
	mcp.WithString("subcategory", mcp.Description(subcategoryDesc)),
	mcp.WithReadOnlyHintAnnotation(true),
)

var finalizeToolDef = mcp.NewTool("lines_finalize", withOptions(tagArgs(),
	mcp.WithDescription("Run a generated batch through enforcement, unsafe-text flagging and duplicate detection. With record=true the accepted lines are added to history."),
	mcp.WithArray("lines", mcp.Required(), mcp.Description(linesDesc), mcp.WithStringItems()),
	mcp.WithString("category", mcp.Description(categoryDesc)),
	mcp.WithString("subcategory", mcp.Description(subcategoryDesc)),
	mcp.WithNumber("required", mcp.Description("Override for config required_hard_lines.")),
	mcp.WithBoolean("record", mcp.Description("Add accepted lines to history.")),
)...)

var historyAddToolDef = mcp.NewTool("history_add",
	mcp.WithDescription("Record accepted lines in history. Only the most recent entries are kept."),
	mcp.WithArray("lines", mcp.Required(), mcp.Description(linesDesc), mcp.WithStringItems()),
	mcp.WithString("category", mcp.Description(categoryDesc)),
	mcp.WithString("subcategory", mcp.Description(subcategoryDesc)),
)

var historyListToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List history entries, newest first. Empty category or subcategory matches all."),
	mcp.WithString("category", mcp.Description("Filter by category.")),
	mcp.WithString("subcategory", mcp.Description("Filter by subcategory.")),
	mcp.WithNumber("limit", mcp.Description("Max items (default 20, max 100).")),
	mcp.WithNumber("offset", mcp.Description("Items to skip (default 0).")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var historyClearToolDef = mcp.NewTool("history_clear",
	mcp.WithDescription("Remove every history entry."),
	mcp.WithDestructiveHintAnnotation(true),
)

var stylePickToolDef = mcp.NewTool("style_pick",
	mcp.WithDescription("Deterministically pick a comedian style and length bucket for an index. Pass length to choose the bucket by caption length instead."),
	mcp.WithNumber("index", mcp.Required(), mcp.Description("Rotation index; wraps modulo the number of styles.")),
	mcp.WithNumber("length", mcp.Description("Caption length to bucket.")),
	mcp.WithReadOnlyHintAnnotation(true),
)
