package handler

import (
	"net/http"

	"threatforge/internal/domain"
)

// GetState returns the model, graph and editor flags in one read
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.Snapshot(), http.StatusOK)
}

// GetModel returns the open threat model
func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	m := h.svc.Model()
	if m == nil {
		h.fail(w, "No model open", domain.ErrNoModel)
		return
	}
	h.writeJSON(w, m, http.StatusOK)
}

// GraphResponse is the graph together with the threat badge counts
type GraphResponse struct {
	*domain.Graph
	ThreatCounts map[string]int `json:"threat_counts"`
}

// GetGraph returns the visual graph
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Snapshot()
	h.writeJSON(w, GraphResponse{Graph: snap.Graph, ThreatCounts: snap.ThreatCounts}, http.StatusOK)
}

// GetLayout captures the current layout of the diagram named by ?diagram=
func (h *Handler) GetLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := h.svc.Layout(r.URL.Query().Get("diagram"))
	if err != nil {
		h.fail(w, "Failed to capture layout", err)
		return
	}
	h.writeJSON(w, layout, http.StatusOK)
}

// ResetLayout moves every node back to the default grid and forgets the saved layout
func (h *Handler) ResetLayout(w http.ResponseWriter, r *http.Request) {
	change, err := h.svc.ResetLayout(r.Context())
	h.mutation(w, "Failed to reset layout", MutationResponse{Change: change}, err)
}

// NewModelRequest creates an empty model
type NewModelRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// NewModel replaces the open model with an empty one
func (h *Handler) NewModel(w http.ResponseWriter, r *http.Request) {
	var req NewModelRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Title == "" {
		req.Title = "Untitled Threat Model"
	}
	change, err := h.svc.NewModel(r.Context(), req.Title, req.Author)
	h.mutation(w, "Failed to create model", MutationResponse{Change: change}, err)
}

// PathRequest names a model file
type PathRequest struct {
	Path string `json:"path"`
}

// OpenModel loads a model file and its layout
func (h *Handler) OpenModel(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		h.writeError(w, "Path is required", "", http.StatusBadRequest)
		return
	}
	change, err := h.svc.Open(r.Context(), req.Path)
	h.mutation(w, "Failed to open model", MutationResponse{Change: change}, err)
}

// ReloadModel re-reads the model from disk
func (h *Handler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	change, err := h.svc.Reload(r.Context())
	h.mutation(w, "Failed to reload model", MutationResponse{Change: change}, err)
}

// SaveModel writes the model to its current path
func (h *Handler) SaveModel(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Save(r.Context()); err != nil {
		h.fail(w, "Failed to save model", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SaveModelAs writes the model to a new path
func (h *Handler) SaveModelAs(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Path == "" {
		h.writeError(w, "Path is required", "", http.StatusBadRequest)
		return
	}
	if err := h.svc.SaveAs(r.Context(), req.Path); err != nil {
		h.fail(w, "Failed to save model", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloseModel discards the open model
func (h *Handler) CloseModel(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, MutationResponse{Change: h.svc.Close()}, http.StatusOK)
}
