// Package state defines the persistence contract used to remember form
// defaults between sessions, plus a TTL-aware in-memory implementation.
//
// Responsibilities:
//   - Persistence only reads and writes a single serialized value per key.
//   - Values carry a time-to-live expressed in days; expired values read as
//     absent.
//   - Serialization and fallback policy stay with the caller (see the
//     formsync remember binding); a Persistence never interprets the value.
//
// Data flow:
//
//	Form defaults -> json -> Persistence.Set(key, value, ttlDays)
//	Persistence.Get(key) -> hydrate -> initial Form defaults
//
// Implementations: MemoryStore (tests, examples, single process) and
// sqlitestore.Store (durable, backed by database/sql).
package state
