package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"threatforge/internal/canvas"
	"threatforge/internal/domain"
	"threatforge/internal/logging"
	"threatforge/internal/metrics"
	"threatforge/internal/repository"
	"threatforge/internal/stride"
)

// ErrNoPath is returned by Save when the model was never saved to a file
var ErrNoPath = errors.New("model has no file path")

// Snapshot is a consistent read of the open document
type Snapshot struct {
	Path            string              `json:"path"`
	Dirty           bool                `json:"dirty"`
	SelectedElement string              `json:"selected_element,omitempty"`
	Model           *domain.ThreatModel `json:"model"`
	Graph           *domain.Graph       `json:"graph"`
	ThreatCounts    map[string]int      `json:"threat_counts"`
}

// DiagramService owns the open document and its persistence
type DiagramService struct {
	mu      sync.Mutex
	doc     *canvas.Document
	path    string
	modTime time.Time

	models   repository.ModelStore
	layouts  repository.LayoutStore
	analyzer *stride.Analyzer
	eventBus *EventBus
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a DiagramService
type Option func(*DiagramService)

// WithLogger sets the service logger
func WithLogger(l *slog.Logger) Option {
	return func(s *DiagramService) {
		s.logger = l
	}
}

// WithMetrics sets the collectors the service records into
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *DiagramService) {
		s.metrics = m
	}
}

// WithAnalyzer replaces the default threat analyzer
func WithAnalyzer(a *stride.Analyzer) Option {
	return func(s *DiagramService) {
		s.analyzer = a
	}
}

// WithClock overrides the time source used for metadata dates
func WithClock(now func() time.Time) Option {
	return func(s *DiagramService) {
		s.now = now
	}
}

// NewDiagramService creates a service with no model open
func NewDiagramService(models repository.ModelStore, layouts repository.LayoutStore, eventBus *EventBus, opts ...Option) *DiagramService {
	s := &DiagramService{
		doc:      canvas.New(),
		models:   models,
		layouts:  layouts,
		eventBus: eventBus,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.eventBus == nil {
		s.eventBus = NewEventBus()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.analyzer == nil {
		s.analyzer = stride.New()
	}
	return s
}

// Events returns the bus the service publishes on
func (s *DiagramService) Events() *EventBus {
	return s.eventBus
}

// ============================================================================
// Document lifecycle
// ============================================================================

// NewModel replaces the open document with an empty, unsaved model
func (s *DiagramService) NewModel(ctx context.Context, title, author string) (*canvas.Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := domain.NewThreatModel(title, author, s.now())
	s.doc.SetPendingLayout(nil)
	change := s.setModel(m)
	s.path = ""
	s.modTime = time.Time{}

	s.logger.Info("created model", "title", title)
	s.eventBus.Publish(Event{Type: EventModelOpened, Payload: change})
	return change, nil
}

// Open loads a model file and its saved layout. A missing layout falls back to
// the grid placement.
func (s *DiagramService) Open(ctx context.Context, path string) (*canvas.Change, error) {
	m, err := s.models.LoadModel(ctx, path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.SetPendingLayout(s.loadLayout(ctx, path, m))
	change := s.setModel(m)
	s.path = path
	s.modTime = modTime(path)

	s.logger.Info("opened model", "path", path, "elements", len(m.Elements), "flows", len(m.DataFlows))
	s.eventBus.Publish(Event{Type: EventModelOpened, Payload: change})
	return change, nil
}

// Reload re-reads the model from disk. On-screen positions are kept for nodes
// that still exist.
func (s *DiagramService) Reload(ctx context.Context) (*canvas.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

// ReloadIfChanged reloads when the model file changed since it was last read or
// written by this service. Unsaved edits are never discarded: the change is
// announced with EventExternalChange instead.
func (s *DiagramService) ReloadIfChanged(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" || !s.doc.HasModel() {
		return false, nil
	}
	mt := modTime(s.path)
	if mt.IsZero() || mt.Equal(s.modTime) {
		return false, nil
	}
	if s.doc.Dirty() {
		s.logger.Warn("model changed on disk with unsaved edits", "path", s.path)
		s.eventBus.Publish(Event{Type: EventExternalChange, Payload: map[string]string{"path": s.path}})
		return false, nil
	}
	if _, err := s.reload(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *DiagramService) reload(ctx context.Context) (*canvas.Change, error) {
	if s.path == "" {
		return nil, ErrNoPath
	}
	m, err := s.models.LoadModel(ctx, s.path)
	if err != nil {
		return nil, err
	}
	change := s.setModel(m)
	s.modTime = modTime(s.path)

	s.logger.Info("reloaded model", "path", s.path)
	s.eventBus.Publish(Event{Type: EventModelReloaded, Payload: change})
	return change, nil
}

// Save writes the model to its current path, then its layout
func (s *DiagramService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return ErrNoPath
	}
	return s.saveTo(ctx, s.path)
}

// SaveAs writes the model to path and makes it the current path
func (s *DiagramService) SaveAs(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveTo(ctx, path); err != nil {
		return err
	}
	s.path = path
	s.modTime = modTime(path)
	return nil
}

func (s *DiagramService) saveTo(ctx context.Context, path string) error {
	m := s.doc.Model()
	if m == nil {
		return domain.ErrNoModel
	}
	today := s.now().Format(domain.DateFormat)
	m.Metadata.Modified = today

	err := s.models.SaveModel(ctx, path, m)
	s.metrics.ObserveSave("model", err)
	if err != nil {
		s.logger.Error("failed to save model", "path", path, "error", err)
		return fmt.Errorf("save model: %w", err)
	}
	s.doc.StampModified(today)

	if d, ok := primaryDiagram(m); ok {
		key := repository.KeyFor(path, m, d.ID)
		err := s.layouts.SaveLayout(ctx, key, s.doc.CaptureLayout(d.ID))
		s.metrics.ObserveSave("layout", err)
		if err != nil {
			s.logger.Warn("failed to save layout", "path", path, "diagram", d.ID, "error", err)
		}
	}
	s.pruneLayouts(ctx, path, m)

	s.doc.MarkClean()
	s.modTime = modTime(path)

	s.logger.Info("saved model", "path", path)
	s.eventBus.Publish(Event{Type: EventModelSaved, Payload: map[string]string{"path": path}})
	return nil
}

// Close discards the open model
func (s *DiagramService) Close() *canvas.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	change := s.doc.ClearModel()
	s.path = ""
	s.modTime = time.Time{}
	s.eventBus.Publish(Event{Type: EventModelClosed, Payload: change})
	return change
}

func (s *DiagramService) setModel(m *domain.ThreatModel) *canvas.Change {
	start := time.Now()
	change := s.doc.SetModel(m)
	g := s.doc.Graph()
	s.metrics.ObserveRebuild(start, len(g.Nodes), len(g.Edges))
	return change
}

func (s *DiagramService) loadLayout(ctx context.Context, path string, m *domain.ThreatModel) *domain.DiagramLayout {
	d, ok := primaryDiagram(m)
	if !ok {
		return nil
	}
	layout, err := s.layouts.LoadLayout(ctx, repository.KeyFor(path, m, d.ID))
	if err != nil {
		if !errors.Is(err, domain.ErrLayoutNotFound) {
			s.logger.Warn("failed to load layout", "path", path, "diagram", d.ID, "error", err)
		}
		return nil
	}
	return layout
}

// pruneLayouts drops saved layouts of diagrams the model no longer declares.
// Failures are logged; the model is already saved.
func (s *DiagramService) pruneLayouts(ctx context.Context, path string, m *domain.ThreatModel) {
	lister, ok := s.layouts.(repository.LayoutLister)
	if !ok {
		return
	}
	ids, err := lister.ListLayouts(ctx, path)
	if err != nil {
		s.logger.Warn("failed to list layouts", "path", path, "error", err)
		return
	}
	for _, id := range ids {
		if slices.ContainsFunc(m.Diagrams, func(d domain.Diagram) bool { return d.ID == id }) {
			continue
		}
		if err := s.layouts.DeleteLayout(ctx, repository.KeyFor(path, m, id)); err != nil {
			s.logger.Warn("failed to delete stale layout", "path", path, "diagram", id, "error", err)
			continue
		}
		s.logger.Debug("deleted stale layout", "path", path, "diagram", id)
	}
}

func primaryDiagram(m *domain.ThreatModel) (domain.Diagram, bool) {
	if m == nil || len(m.Diagrams) == 0 {
		return domain.Diagram{}, false
	}
	return m.Diagrams[0], true
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// ============================================================================
// Reads
// ============================================================================

// Snapshot returns copies of the model, graph and editor state
func (s *DiagramService) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Path:            s.path,
		Dirty:           s.doc.Dirty(),
		SelectedElement: s.doc.SelectedElement(),
		Model:           s.doc.Model(),
		Graph:           s.doc.Graph(),
		ThreatCounts:    s.doc.ThreatCounts(),
	}
}

// Graph returns a copy of the visual graph
func (s *DiagramService) Graph() *domain.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Graph()
}

// Model returns a copy of the open model, or nil
func (s *DiagramService) Model() *domain.ThreatModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Model()
}

// Path returns the file the model was opened from or saved to
func (s *DiagramService) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Dirty reports whether the model has unsaved changes
func (s *DiagramService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Dirty()
}

// Layout captures the current layout of a diagram
func (s *DiagramService) Layout(diagramID string) (*domain.DiagramLayout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.doc.HasModel() {
		return nil, domain.ErrNoModel
	}
	return s.doc.CaptureLayout(diagramID), nil
}

// ============================================================================
// Threat suggestions
// ============================================================================

// SuggestThreats returns candidate threats the model does not record yet
func (s *DiagramService) SuggestThreats(ctx context.Context) ([]domain.Threat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	m := s.doc.Model()
	s.mu.Unlock()

	if m == nil {
		return nil, domain.ErrNoModel
	}
	threats := s.analyzer.Analyze(m)
	s.metrics.Suggested.Add(float64(len(threats)))
	s.logger.Debug("suggested threats", "count", len(threats))
	return threats, nil
}

// ResetLayout places every node on the default grid and deletes the saved layout
// of the primary diagram, so reopening the model does not restore the old one
func (s *DiagramService) ResetLayout(ctx context.Context) (*canvas.Change, error) {
	return s.apply(canvas.OpResetLayout, func() (*canvas.Change, error) {
		change, err := s.doc.ResetLayout()
		if err != nil {
			return nil, err
		}
		m := s.doc.Model()
		if d, ok := primaryDiagram(m); ok && s.path != "" {
			if err := s.layouts.DeleteLayout(ctx, repository.KeyFor(s.path, m, d.ID)); err != nil {
				s.logger.Warn("failed to delete saved layout", "path", s.path, "diagram", d.ID, "error", err)
			}
		}
		return change, nil
	})
}

// AcceptThreats appends accepted suggestions to the model
func (s *DiagramService) AcceptThreats(threats []domain.Threat) (*canvas.Change, error) {
	return s.apply(canvas.OpAppendThreats, func() (*canvas.Change, error) {
		return s.doc.AppendThreats(threats)
	})
}

// ============================================================================
// Autosave
// ============================================================================

// RunAutosave saves the model every interval while it is dirty and has a path.
// It blocks until ctx is cancelled.
func (s *DiagramService) RunAutosave(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.autosave(ctx); err != nil {
				s.logger.Error("autosave failed", "error", err)
			}
		}
	}
}

func (s *DiagramService) autosave(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" || !s.doc.Dirty() {
		return nil
	}
	s.logger.Debug("autosaving", "path", s.path)
	return s.saveTo(ctx, s.path)
}
