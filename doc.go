// Package formsync keeps form state in sync with a remote endpoint.
//
// A Form tracks field values against a committed baseline (defaults),
// reports whether it is dirty, and collects per-field validation errors.
// Submissions go through a Transport; the form moves through
// Idle → Submitting → {Succeeded, ValidationFailed, TransportFailed} → Idle
// and reports each attempt exactly once through Callbacks, the activity
// emitter and the returned Submission handle.
//
// Field names use bracket syntax: "user[0][email]" addresses the "email"
// key of the first element stored under "user". Numeric segments create
// lists, any other segment creates a nested map.
//
// Read-only resources are loaded through NewFetcher, which shares one fetch
// per key across concurrent readers using a keyedstore.Store.
package formsync
