// Package repository defines the persistence ports for ThreatForge.
//
// # Model Documents
//
// ModelStore reads and writes the .threatforge.yaml document. The file
// subpackage implements it on the local filesystem with atomic writes.
//
// # Layouts
//
// LayoutStore persists the per-diagram layout record (node positions, explicit
// sizes and viewport) captured from the canvas. Three implementations exist:
//
//   - file: JSON sidecar next to the model, at the diagram's layout_file
//     (default .threatforge/layouts/<diagram>.json)
//   - sqlite: a shared SQLite database keyed by model path and diagram id
//   - redis: one JSON value per diagram plus a per-model index set, with an
//     optional expiry
//
// Layouts are optional. A missing layout yields domain.ErrLayoutNotFound and
// the canvas falls back to the default grid.
//
// # Testing
//
// RunLayoutStoreContract exercises any LayoutStore implementation against the
// shared contract.
package repository
