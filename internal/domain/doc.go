// Package domain defines the core types for the ThreatForge diagram engine.
//
// This package contains two families of types: the persisted threat-model document
// and the derived visual graph that a rendering layer draws.
//
// # Threat Model
//
// ThreatModel is the canonical, order-preserving document. It holds Elements
// (processes, data stores, external entities), DataFlows between them,
// TrustBoundaries grouping element ids into security zones, Threats and Diagrams.
// The document is the single source of truth and is persisted as YAML.
//
// # Layout
//
// DiagramLayout is the sidecar record of node positions, sizes and viewport. It is
// stored separately from the model and consumed once when the canvas is rebuilt.
//
// # Visual Graph
//
// Graph holds GraphNodes and GraphEdges. Node ids are shared one-to-one with
// element and boundary ids, edge ids with data flow ids. Node payloads are a closed
// variant (ElementData or BoundaryData) selected by NodeKind.
//
// # Design Principles
//
// - No database or external dependencies
// - Missing optional data is defaulted, never an error
// - Rich type system with meaningful constants and enumerations
package domain
