// Package editor implements the entry editing session: it reconciles an
// entry loaded from the backend with in-progress edits and attachment
// changes, and submits them as exactly one multipart request.
//
// A Session moves through Loading, Ready, Submitting and then back to Ready
// on failure or to Closed on success. A failed Load ends in LoadFailed.
// Closed and LoadFailed are terminal: mutating calls return ErrSessionClosed.
//
// The same Session, started with NewCreateSession, backs the entry creation
// view; it begins in Ready with nothing loaded.
package editor
