package service

import (
	"threatforge/internal/canvas"
	"threatforge/internal/domain"
)

// apply runs one document operation under the service lock, records it, and
// publishes its change. A nil change means the operation was a no-op.
func (s *DiagramService) apply(op canvas.Op, fn func() (*canvas.Change, error)) (*canvas.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	change, err := fn()
	if err != nil {
		s.metrics.Rejected.WithLabelValues(string(op)).Inc()
		s.logger.Debug("operation rejected", "op", op, "error", err)
		return nil, err
	}
	if change == nil {
		return nil, nil
	}

	s.metrics.Mutations.WithLabelValues(string(op)).Inc()
	s.eventBus.Publish(Event{Type: EventGraphChanged, Payload: change})
	return change, nil
}

// AddElement places a new element at a canvas position
func (s *DiagramService) AddElement(kind domain.ElementKind, pos domain.Point) (*domain.Element, *canvas.Change, error) {
	var el *domain.Element
	change, err := s.apply(canvas.OpAddElement, func() (*canvas.Change, error) {
		var (
			c   *canvas.Change
			err error
		)
		el, c, err = s.doc.AddElement(kind, pos)
		return c, err
	})
	return el, change, err
}

// AddDataFlow connects two elements. A self-loop returns domain.ErrSelfLoop.
func (s *DiagramService) AddDataFlow(sourceID, targetID string, opts ...canvas.FlowOption) (*domain.DataFlow, *canvas.Change, error) {
	var flow *domain.DataFlow
	change, err := s.apply(canvas.OpAddDataFlow, func() (*canvas.Change, error) {
		var (
			c   *canvas.Change
			err error
		)
		flow, c, err = s.doc.AddDataFlow(sourceID, targetID, opts...)
		return c, err
	})
	return flow, change, err
}

// AddTrustBoundary creates a boundary at a canvas position
func (s *DiagramService) AddTrustBoundary(name string, pos domain.Point) (*domain.TrustBoundary, *canvas.Change, error) {
	var b *domain.TrustBoundary
	change, err := s.apply(canvas.OpAddBoundary, func() (*canvas.Change, error) {
		var (
			c   *canvas.Change
			err error
		)
		b, c, err = s.doc.AddTrustBoundary(name, pos)
		return c, err
	})
	return b, change, err
}

// DuplicateElement copies an element next to the original
func (s *DiagramService) DuplicateElement(id string) (*domain.Element, *canvas.Change, error) {
	var el *domain.Element
	change, err := s.apply(canvas.OpDuplicate, func() (*canvas.Change, error) {
		var (
			c   *canvas.Change
			err error
		)
		el, c, err = s.doc.DuplicateElement(id)
		return c, err
	})
	return el, change, err
}

// DeleteSelected removes the selected nodes and edges
func (s *DiagramService) DeleteSelected() (*canvas.Change, error) {
	return s.apply(canvas.OpDelete, s.doc.DeleteSelected)
}

// ReverseEdge swaps the direction of a data flow
func (s *DiagramService) ReverseEdge(id string) (*canvas.Change, error) {
	return s.apply(canvas.OpReverse, func() (*canvas.Change, error) {
		return s.doc.ReverseEdge(id)
	})
}

// UpdateFlowLabel commits the edge label editor
func (s *DiagramService) UpdateFlowLabel(id, name, protocol string, data []string) (*canvas.Change, error) {
	return s.apply(canvas.OpUpdateFlow, func() (*canvas.Change, error) {
		return s.doc.UpdateFlowLabel(id, name, protocol, data)
	})
}

// MoveNode records the end of a drag
func (s *DiagramService) MoveNode(id string, pos domain.Point) (*canvas.Change, error) {
	return s.apply(canvas.OpMove, func() (*canvas.Change, error) {
		return s.doc.MoveNode(id, pos)
	})
}

// ResizeNode records the end of a resize
func (s *DiagramService) ResizeNode(id string, size domain.Size) (*canvas.Change, error) {
	return s.apply(canvas.OpResize, func() (*canvas.Change, error) {
		return s.doc.ResizeNode(id, size)
	})
}

// MeasureNode records the rendered size of a node
func (s *DiagramService) MeasureNode(id string, size domain.Size) (*canvas.Change, error) {
	return s.apply(canvas.OpMeasure, func() (*canvas.Change, error) {
		return s.doc.MeasureNode(id, size)
	})
}

// Select replaces the selection
func (s *DiagramService) Select(nodeIDs, edgeIDs []string) (*canvas.Change, error) {
	return s.apply(canvas.OpSelect, func() (*canvas.Change, error) {
		return s.doc.Select(nodeIDs, edgeIDs), nil
	})
}

// SetViewport records pan and zoom
func (s *DiagramService) SetViewport(v domain.Viewport) (*canvas.Change, error) {
	return s.apply(canvas.OpViewport, func() (*canvas.Change, error) {
		return s.doc.SetViewport(v), nil
	})
}
