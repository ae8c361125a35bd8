package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"threatforge/internal/canvas"
	"threatforge/internal/codec"
	"threatforge/internal/domain"
	"threatforge/internal/logging"
	"threatforge/internal/service"
)

// Handler serves the editor API
type Handler struct {
	svc     *service.DiagramService
	events  http.Handler
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Handler
type Option func(*Handler)

// WithEvents mounts an SSE stream at /api/events
func WithEvents(h http.Handler) Option {
	return func(hd *Handler) {
		hd.events = h
	}
}

// WithMetrics mounts a Prometheus handler at /metrics
func WithMetrics(h http.Handler) Option {
	return func(hd *Handler) {
		hd.metrics = h
	}
}

// WithLogger sets the request logger
func WithLogger(l *slog.Logger) Option {
	return func(hd *Handler) {
		hd.logger = l
	}
}

// New creates a handler for svc
func New(svc *service.DiagramService, opts ...Option) *Handler {
	h := &Handler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = logging.NewNop()
	}
	return h
}

// Routes builds the router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/model", h.GetModel)
		r.Get("/graph", h.GetGraph)
		r.Get("/layout", h.GetLayout)
		r.Delete("/layout", h.ResetLayout)

		r.Post("/model/new", h.NewModel)
		r.Post("/model/open", h.OpenModel)
		r.Post("/model/reload", h.ReloadModel)
		r.Post("/model/save", h.SaveModel)
		r.Post("/model/save-as", h.SaveModelAs)
		r.Post("/model/close", h.CloseModel)

		r.Post("/elements", h.AddElement)
		r.Post("/elements/{id}/duplicate", h.DuplicateElement)
		r.Post("/flows", h.AddDataFlow)
		r.Post("/flows/{id}/reverse", h.ReverseEdge)
		r.Put("/flows/{id}/label", h.UpdateFlowLabel)
		r.Post("/boundaries", h.AddTrustBoundary)

		r.Put("/nodes/{id}/position", h.MoveNode)
		r.Put("/nodes/{id}/size", h.ResizeNode)
		r.Put("/nodes/{id}/measured", h.MeasureNode)
		r.Put("/selection", h.Select)
		r.Delete("/selection", h.DeleteSelected)
		r.Put("/viewport", h.SetViewport)

		r.Get("/threats/suggestions", h.SuggestThreats)
		r.Post("/threats", h.AcceptThreats)

		r.Get("/export/{format}", h.Export)

		if h.events != nil {
			r.Get("/events", h.events.ServeHTTP)
		}
	})

	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MutationResponse is the body of every successful mutation
type MutationResponse struct {
	Change   *canvas.Change        `json:"change"`
	Element  *domain.Element       `json:"element,omitempty"`
	Flow     *domain.DataFlow      `json:"flow,omitempty"`
	Boundary *domain.TrustBoundary `json:"boundary,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, msg, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: msg, Details: details}, statusCode)
}

// fail maps a service error onto a status code
func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
	}
	h.writeError(w, msg, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, codec.ErrUnknownFormat):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoModel), errors.Is(err, service.ErrNoPath):
		return http.StatusConflict
	case errors.Is(err, domain.ErrSelfLoop), errors.Is(err, codec.ErrImageTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidKind):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body into v, answering 400 on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) mutation(w http.ResponseWriter, msg string, resp MutationResponse, err error) {
	if err != nil {
		h.fail(w, msg, err)
		return
	}
	status := http.StatusOK
	if resp.Element != nil || resp.Flow != nil || resp.Boundary != nil {
		status = http.StatusCreated
	}
	h.writeJSON(w, resp, status)
}
