// Package canvas keeps the threat-model document and its visual graph in step.
//
// A Document owns both stores. Rebuild derives the whole graph from the model
// (file load, replace, clear). Mutator methods (AddElement, AddDataFlow,
// AddTrustBoundary, DeleteSelected, DuplicateElement, ReverseEdge, ...) update the
// model and the graph together in one call and report what they touched as a
// Change, so a rendering layer never observes the two stores disagreeing.
//
// Node positions are resolved by priority during a rebuild: restored layout entry,
// then the node's prior on-screen position, then a deterministic grid slot.
//
// Document is not safe for concurrent use; callers that share one across
// goroutines must serialize access (see service.DiagramService).
package canvas
