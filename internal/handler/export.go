package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"threatforge/internal/codec"
	"threatforge/internal/domain"
)

var exportExtensions = map[string]string{
	"json":    "json",
	"mermaid": "mmd",
	"png":     "png",
}

// Export renders the open diagram in the format named by the path
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		h.fail(w, "Unsupported export format", err)
		return
	}

	snap := h.svc.Snapshot()
	if snap.Model == nil {
		h.fail(w, "No model open", domain.ErrNoModel)
		return
	}

	// render fully before writing headers so a failure can still answer 500
	var buf bytes.Buffer
	if err := exporter.Export(snap.Model, snap.Graph, &buf); err != nil {
		h.fail(w, "Failed to export diagram", err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="diagram.%s"`, exportExtensions[format]))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export", "format", format, "error", err)
	}
}

// SuggestThreats returns candidate threats for the open model
func (h *Handler) SuggestThreats(w http.ResponseWriter, r *http.Request) {
	threats, err := h.svc.SuggestThreats(r.Context())
	if err != nil {
		h.fail(w, "Failed to analyze model", err)
		return
	}
	h.writeJSON(w, threats, http.StatusOK)
}

// AcceptThreatsRequest carries the suggestions the user kept
type AcceptThreatsRequest struct {
	Threats []domain.Threat `json:"threats"`
}

// AcceptThreats appends threats to the model
func (h *Handler) AcceptThreats(w http.ResponseWriter, r *http.Request) {
	var req AcceptThreatsRequest
	if !h.decode(w, r, &req) {
		return
	}
	change, err := h.svc.AcceptThreats(req.Threats)
	h.mutation(w, "Failed to accept threats", MutationResponse{Change: change}, err)
}
