package web

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/hpungsan/quip/internal/config"
	"github.com/hpungsan/quip/internal/errors"
	"github.com/hpungsan/quip/internal/history"
	"github.com/hpungsan/quip/internal/ops"
	"github.com/hpungsan/quip/internal/sanitize"
	"github.com/hpungsan/quip/internal/style"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	cfg       *config.Config
	sanitizer *sanitize.Sanitizer
	detector  *history.Detector
	renderer  *Renderer
}

// HandleReview handles GET /review: parse and sanitize a tag string.
func (h *Handlers) HandleReview(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("tags")

	data := ReviewPageData{
		PageData: PageData{
			Title:   "Review tags",
			Version: h.renderer.version,
			Nav:     "review",
		},
		Tags:    raw,
		HasTags: raw != "",
	}

	if data.HasTags {
		input := ops.TagInput{Tags: raw}

		parsed, err := ops.Parse(ops.ParseInput{TagInput: input})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		sanitized, err := ops.Sanitize(h.sanitizer, ops.SanitizeInput{TagInput: input})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Parsed = parsed
		data.Sanitized = sanitized
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"parsed":    data.Parsed,
			"sanitized": data.Sanitized,
		})
		return
	}

	// Results-only swap
	if r.Header.Get("HX-Target") == "review-results" {
		h.renderer.renderBlock(w, http.StatusOK, "review", "review-results", data)
		return
	}

	h.renderer.renderPage(w, r, "review", data)
}

// HandleValidate handles GET /validate: as-you-type check of one tag.
func (h *Handlers) HandleValidate(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Validate(h.sanitizer, ops.ValidateInput{Tag: r.URL.Query().Get("tag")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderBlock(w, http.StatusOK, "review", "validation", ValidationData{Result: result})
}

// HandleHistory handles GET /history: browse recorded lines.
func (h *Handlers) HandleHistory(w http.ResponseWriter, r *http.Request) {
	input := ops.ListHistoryInput{
		Category:    r.URL.Query().Get("category"),
		Subcategory: r.URL.Query().Get("subcategory"),
		Limit:       parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:      parseIntParam(r, "offset", 0),
	}

	result, err := ops.ListHistory(r.Context(), h.detector, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "history", HistoryPageData{
		PageData: PageData{
			Title:   "History",
			Version: h.renderer.version,
			Nav:     "history",
		},
		Items:       result.Items,
		Pagination:  result.Pagination,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		MaxEntries:  h.detector.MaxEntries(),
		Threshold:   h.detector.Threshold(),
	})
}

// HandleClearHistory handles POST /history/clear: drop every history entry.
func (h *Handlers) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := ops.ClearHistory(r.Context(), h.detector)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if isPartial(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="clear-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/history", http.StatusFound)
}

// HandleStyles handles GET /styles: comedian styles and length buckets.
func (h *Handlers) HandleStyles(w http.ResponseWriter, r *http.Request) {
	styles := style.Styles()
	views := make([]StyleView, len(styles))
	for i, s := range styles {
		views[i] = StyleView{ComedianStyle: s, DeliveryHTML: renderMarkdown(s.Delivery)}
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"styles":  styles,
			"buckets": style.Buckets(),
		})
		return
	}

	h.renderer.renderPage(w, r, "styles", StylesPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Styles (%d)", len(styles)),
			Version: h.renderer.version,
			Nav:     "styles",
		},
		Styles:  views,
		Buckets: style.Buckets(),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
