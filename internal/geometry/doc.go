// Package geometry implements the spatial rules of the diagram canvas.
//
// All functions are pure and never fail: nodes without measured or explicit size
// fall back to a fixed default rectangle.
//
// # Rectangles
//
// A node's rectangle is its position plus its measured size, else its explicit size,
// else DefaultNodeWidth x DefaultNodeHeight.
//
// # Handles
//
// HandlePair picks the facing sides of two rectangles along the dominant axis of the
// center-to-center delta. Ties go to the vertical axis.
//
// # Parallel Edges
//
// Edges joining the same unordered node pair are sorted by id and given zero-centered
// ranks (3 edges: -1, 0, +1) which scale into an offset or a bezier curvature.
package geometry
