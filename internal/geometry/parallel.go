package geometry

import (
	"slices"

	"threatforge/internal/domain"
)

// Parallel edge fan-out constants
const (
	// BaseCurvature is the bezier curvature of a lone edge
	BaseCurvature = 0.25
	// CurvatureStep is the extra curvature per rank step
	CurvatureStep = 0.3
	// EdgeSpacing is the perpendicular offset per rank step, in canvas pixels
	EdgeSpacing = 30
)

// Siblings returns the edges joining a and b in either direction, sorted by id
func Siblings(edges []domain.GraphEdge, a, b string) []domain.GraphEdge {
	var out []domain.GraphEdge
	for _, e := range edges {
		if e.Connects(a, b) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(x, y domain.GraphEdge) int {
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		}
		return 0
	})
	return out
}

// Ranks returns each sibling edge's zero-centered rank keyed by edge id.
// Three edges rank -1, 0, +1; two edges rank -0.5, +0.5.
func Ranks(edges []domain.GraphEdge, a, b string) map[string]float64 {
	siblings := Siblings(edges, a, b)
	ranks := make(map[string]float64, len(siblings))
	center := float64(len(siblings)-1) / 2
	for i, e := range siblings {
		ranks[e.ID] = float64(i) - center
	}
	return ranks
}

// Offsets returns each sibling edge's perpendicular offset keyed by edge id
func Offsets(edges []domain.GraphEdge, a, b string) map[string]float64 {
	ranks := Ranks(edges, a, b)
	for id, r := range ranks {
		ranks[id] = r * EdgeSpacing
	}
	return ranks
}

// Curvature returns the bezier curvature for the edge with the given id.
// Edges without parallel siblings get BaseCurvature.
func Curvature(edges []domain.GraphEdge, edge domain.GraphEdge) float64 {
	ranks := Ranks(edges, edge.Source, edge.Target)
	if len(ranks) <= 1 {
		return BaseCurvature
	}
	return BaseCurvature + ranks[edge.ID]*CurvatureStep
}
