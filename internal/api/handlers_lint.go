package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/dgallion1/frontmark/internal/frontmatter"
	"github.com/dgallion1/frontmark/internal/parser"
)

// handleLint checks a raw markdown body for frontmatter problems
// without queuing a job.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		jsonError(w, "request body is required", http.StatusBadRequest)
		return
	}

	doc := parser.ParseDocument(data)
	diags := frontmatter.Lint(doc)

	out := make([]map[string]any, 0, len(diags))
	for _, d := range diags {
		entry := map[string]any{
			"kind":    d.Kind.String(),
			"message": d.Message(),
			"line":    d.Line,
			"excerpt": d.Excerpt,
		}
		if d.Cause != nil {
			entry["cause"] = d.Cause.Error()
		}
		out = append(out, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"diagnostics": out,
		"clean":       len(out) == 0,
	})
}
