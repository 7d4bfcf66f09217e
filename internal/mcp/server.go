package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/history"
	"github.com/hpungsan/quip/internal/sanitize"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"tags", "lines", "history", "style"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"tags_parse": {
		def:     parseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleParse },
	},
	"tags_sanitize": {
		def:     sanitizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSanitize },
	},
	"tags_validate": {
		def:     validateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleValidate },
	},
	"lines_enforce": {
		def:     enforceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEnforce },
	},
	"lines_dedupe": {
		def:     dedupeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDedupe },
	},
	"lines_finalize": {
		def:     finalizeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFinalize },
	},
	"history_add": {
		def:     historyAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryAdd },
	},
	"history_list": {
		def:     historyListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryList },
	},
	"history_clear": {
		def:     historyClearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistoryClear },
	},
	"style_pick": {
		def:     stylePickToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStylePick },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "history_add" → "history").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with Quip tools registered.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(cfg *config.Config, s *sanitize.Sanitizer, d *history.Detector, version string) *server.MCPServer {
	srv := server.NewMCPServer(
		"quip",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(cfg, s, d)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		srv.AddTool(entry.def, entry.handler(h))
	}

	return srv
}

// Run starts the MCP server using stdio transport.
func Run(cfg *config.Config, s *sanitize.Sanitizer, d *history.Detector, version string) error {
	return server.ServeStdio(NewServer(cfg, s, d, version))
}
