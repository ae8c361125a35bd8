// Package service hosts the open threat model for the HTTP surface and the CLI.
//
// DiagramService is the single writer of a canvas.Document. Every call takes
// the service mutex, so the synchronizer and mutators never interleave.
//
// # Persistence
//
// Models are read and written through a repository.ModelStore. Layouts go to a
// repository.LayoutStore keyed by model path and diagram id. A failed layout
// save is logged and does not fail Save, since the model is already written.
//
// # Event System
//
// Successful operations publish an Event on the EventBus. Mutators publish
// EventGraphChanged with the canvas.Change as payload; the hub forwards events
// to rendering clients over Server-Sent Events.
package service
