package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"threatforge/internal/canvas"
	"threatforge/internal/domain"
)

// AddElementRequest is a palette drop
type AddElementRequest struct {
	Kind domain.ElementKind `json:"kind"`
	X    float64            `json:"x"`
	Y    float64            `json:"y"`
}

// AddElement creates an element at the drop position
func (h *Handler) AddElement(w http.ResponseWriter, r *http.Request) {
	var req AddElementRequest
	if !h.decode(w, r, &req) {
		return
	}
	el, change, err := h.svc.AddElement(req.Kind, domain.Point{X: req.X, Y: req.Y})
	h.mutation(w, "Failed to add element", MutationResponse{Change: change, Element: el}, err)
}

// DuplicateElement copies an element
func (h *Handler) DuplicateElement(w http.ResponseWriter, r *http.Request) {
	el, change, err := h.svc.DuplicateElement(chi.URLParam(r, "id"))
	h.mutation(w, "Failed to duplicate element", MutationResponse{Change: change, Element: el}, err)
}

// AddDataFlowRequest is a completed connect gesture
type AddDataFlowRequest struct {
	Source       string        `json:"source"`
	Target       string        `json:"target"`
	SourceHandle domain.Handle `json:"source_handle,omitempty"`
	TargetHandle domain.Handle `json:"target_handle,omitempty"`
	Name         string        `json:"name,omitempty"`
}

// AddDataFlow connects two elements
func (h *Handler) AddDataFlow(w http.ResponseWriter, r *http.Request) {
	var req AddDataFlowRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Source == "" || req.Target == "" {
		h.writeError(w, "Source and target are required", "", http.StatusBadRequest)
		return
	}

	var opts []canvas.FlowOption
	if req.SourceHandle != "" && req.TargetHandle != "" {
		opts = append(opts, canvas.WithHandles(req.SourceHandle, req.TargetHandle))
	}
	if req.Name != "" {
		opts = append(opts, canvas.WithName(req.Name))
	}

	flow, change, err := h.svc.AddDataFlow(req.Source, req.Target, opts...)
	h.mutation(w, "Failed to add data flow", MutationResponse{Change: change, Flow: flow}, err)
}

// ReverseEdge swaps the direction of a flow
func (h *Handler) ReverseEdge(w http.ResponseWriter, r *http.Request) {
	change, err := h.svc.ReverseEdge(chi.URLParam(r, "id"))
	h.mutation(w, "Failed to reverse flow", MutationResponse{Change: change}, err)
}

// FlowLabelRequest is a label editor commit
type FlowLabelRequest struct {
	Name     string   `json:"name"`
	Protocol string   `json:"protocol"`
	Data     []string `json:"data"`
}

// UpdateFlowLabel commits the label editor of a flow
func (h *Handler) UpdateFlowLabel(w http.ResponseWriter, r *http.Request) {
	var req FlowLabelRequest
	if !h.decode(w, r, &req) {
		return
	}
	change, err := h.svc.UpdateFlowLabel(chi.URLParam(r, "id"), req.Name, req.Protocol, req.Data)
	h.mutation(w, "Failed to update flow", MutationResponse{Change: change}, err)
}

// AddBoundaryRequest is a boundary tool drop
type AddBoundaryRequest struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// AddTrustBoundary creates a boundary at the drop position
func (h *Handler) AddTrustBoundary(w http.ResponseWriter, r *http.Request) {
	var req AddBoundaryRequest
	if !h.decode(w, r, &req) {
		return
	}
	b, change, err := h.svc.AddTrustBoundary(req.Name, domain.Point{X: req.X, Y: req.Y})
	h.mutation(w, "Failed to add boundary", MutationResponse{Change: change, Boundary: b}, err)
}

// MoveNode records the end of a drag
func (h *Handler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var pos domain.Point
	if !h.decode(w, r, &pos) {
		return
	}
	change, err := h.svc.MoveNode(chi.URLParam(r, "id"), pos)
	h.mutation(w, "Failed to move node", MutationResponse{Change: change}, err)
}

// ResizeNode records the end of a resize
func (h *Handler) ResizeNode(w http.ResponseWriter, r *http.Request) {
	var size domain.Size
	if !h.decode(w, r, &size) {
		return
	}
	if size.Width <= 0 || size.Height <= 0 {
		h.writeError(w, "Width and height must be positive", "", http.StatusBadRequest)
		return
	}
	change, err := h.svc.ResizeNode(chi.URLParam(r, "id"), size)
	h.mutation(w, "Failed to resize node", MutationResponse{Change: change}, err)
}

// MeasureNode records the rendered size of a node
func (h *Handler) MeasureNode(w http.ResponseWriter, r *http.Request) {
	var size domain.Size
	if !h.decode(w, r, &size) {
		return
	}
	change, err := h.svc.MeasureNode(chi.URLParam(r, "id"), size)
	h.mutation(w, "Failed to measure node", MutationResponse{Change: change}, err)
}

// SelectionRequest replaces the selection
type SelectionRequest struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// Select replaces the selection
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !h.decode(w, r, &req) {
		return
	}
	change, err := h.svc.Select(req.Nodes, req.Edges)
	h.mutation(w, "Failed to select", MutationResponse{Change: change}, err)
}

// DeleteSelected removes the selected nodes and edges
func (h *Handler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	change, err := h.svc.DeleteSelected()
	h.mutation(w, "Failed to delete selection", MutationResponse{Change: change}, err)
}

// SetViewport records pan and zoom
func (h *Handler) SetViewport(w http.ResponseWriter, r *http.Request) {
	var v domain.Viewport
	if !h.decode(w, r, &v) {
		return
	}
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	change, err := h.svc.SetViewport(v)
	h.mutation(w, "Failed to set viewport", MutationResponse{Change: change}, err)
}
