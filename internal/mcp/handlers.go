package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/history"
	"github.com/hpungsan/quip/internal/ops"
	"github.com/hpungsan/quip/internal/sanitize"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg       *config.Config
	sanitizer *sanitize.Sanitizer
	detector  *history.Detector
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cfg *config.Config, s *sanitize.Sanitizer, d *history.Detector) *Handlers {
	return &Handlers{cfg: cfg, sanitizer: s, detector: d}
}

// Request types for each tool

// TagsRequest represents the arguments for tags_parse and tags_sanitize.
type TagsRequest struct {
	Tags string   `json:"tags,omitempty"`
	Hard []string `json:"hard,omitempty"`
	Soft []string `json:"soft,omitempty"`
}

func (r TagsRequest) input() ops.TagInput {
	return ops.TagInput{Tags: r.Tags, Hard: r.Hard, Soft: r.Soft}
}

// ValidateRequest represents the arguments for tags_validate.
type ValidateRequest struct {
	Tag string `json:"tag"`
}

// EnforceRequest represents the arguments for lines_enforce.
type EnforceRequest struct {
	TagsRequest
	Lines    []string `json:"lines"`
	Required int      `json:"required,omitempty"`
}

// LinesRequest represents the arguments for lines_dedupe and history_add.
type LinesRequest struct {
	Lines       []string `json:"lines"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
}

// FinalizeRequest represents the arguments for lines_finalize.
type FinalizeRequest struct {
	TagsRequest
	Lines       []string `json:"lines"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Required    int      `json:"required,omitempty"`
	Record      bool     `json:"record,omitempty"`
}

// HistoryListRequest represents the arguments for history_list.
type HistoryListRequest struct {
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// StylePickRequest represents the arguments for style_pick.
type StylePickRequest struct {
	Index  int  `json:"index"`
	Length *int `json:"length,omitempty"`
}

// HandleParse handles the tags_parse tool.
func (h *Handlers) HandleParse(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Parse(ops.ParseInput{TagInput: input.input()})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSanitize handles the tags_sanitize tool.
func (h *Handlers) HandleSanitize(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TagsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Sanitize(h.sanitizer, ops.SanitizeInput{TagInput: input.input()})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleValidate handles the tags_validate tool.
func (h *Handlers) HandleValidate(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ValidateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Validate(h.sanitizer, ops.ValidateInput{Tag: input.Tag})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleEnforce handles the lines_enforce tool.
func (h *Handlers) HandleEnforce(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EnforceRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Enforce(h.cfg, ops.EnforceInput{
		TagInput: input.input(),
		Lines:    input.Lines,
		Required: input.Required,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleDedupe handles the lines_dedupe tool.
func (h *Handlers) HandleDedupe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LinesRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.CheckDuplicates(ctx, h.detector, ops.CheckDuplicatesInput{
		Lines:       input.Lines,
		Category:    input.Category,
		Subcategory: input.Subcategory,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFinalize handles the lines_finalize tool.
func (h *Handlers) HandleFinalize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FinalizeRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Finalize(ctx, h.cfg, h.sanitizer, h.detector, ops.FinalizeInput{
		TagInput:    input.input(),
		Lines:       input.Lines,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Required:    input.Required,
		Record:      input.Record,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryAdd handles the history_add tool.
func (h *Handlers) HandleHistoryAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LinesRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.AddHistory(ctx, h.detector, ops.AddHistoryInput{
		Lines:       input.Lines,
		Category:    input.Category,
		Subcategory: input.Subcategory,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryList handles the history_list tool.
func (h *Handlers) HandleHistoryList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.ListHistory(ctx, h.detector, ops.ListHistoryInput{
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Limit:       input.Limit,
		Offset:      input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistoryClear handles the history_clear tool.
func (h *Handlers) HandleHistoryClear(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ClearHistory(ctx, h.detector)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStylePick handles the style_pick tool.
func (h *Handlers) HandleStylePick(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StylePickRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.PickStyle(ops.PickStyleInput{Index: input.Index, Length: input.Length})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// errorResult creates an MCP error result from an error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var qErr *errors.QuipError
	if stderrors.As(err, &qErr) {
		// Keep wrapper context when the error was wrapped
		message := qErr.Message
		if err != error(qErr) {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    qErr.Code,
			"message": message,
			"status":  qErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if qErr.Code != errors.ErrInternal && qErr.Details != nil {
			errorObj["details"] = qErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
