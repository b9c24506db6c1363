// Package journal persists observed dispatch runs for audit and tooling.
//
// The journal is a history of what actually fired: one row per run, one
// row per listener invocation. It is write-then-inspect storage for the
// CLI's record and trace commands and for diffing dispatch behavior
// between builds.
//
// ARCHITECTURE:
//
// Not an ordering source:
// Listener order is always rebuilt in memory from the live phase graph.
// The journal is never read back to decide an order; deleting the journal
// loses history, never behavior.
//
// Storage:
// SQLite with WAL mode, NORMAL synchronous, single connection. Schema
// ships via go:embed and upgrades through PRAGMA user_version migrations.
//
// Correlation:
// Every run carries a token from a TokenGenerator. Production uses
// time-sortable UUIDv7; tests use FixedGenerator for byte-identical
// output.
package journal
