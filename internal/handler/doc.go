// Package handler implements the HTTP surface of the diagram editor.
//
// Rendering clients read the model, graph and layout as JSON and send canvas
// gestures (drops, connects, drags, resizes, selections) back as requests.
// Every request maps onto one DiagramService call, so the document is only
// changed through its mutators.
//
// # Response Format
//
// Mutations answer with a MutationResponse carrying the canvas.Change they
// produced; a null change means the request was a no-op. Errors are returned as
// JSON {error, details} with a status derived from the domain sentinel errors.
//
// # Server-Sent Events
//
// /api/events streams every service event so clients can apply changes made by
// other clients, by autosave, or by a reload after an external edit.
package handler
