// Package sqlite provides the SQLite-based implementation of driven.Storage.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every entity store
// through a single database connection:
//
//   - ChatStore: Chat persistence
//   - MessageStore: Message persistence, with JSON body columns
//   - ConfirmedStepStore: Workflow step audit records
//   - FileStore: File metadata persistence
//
// # Schema
//
// The schema is a fixed set of CREATE ... IF NOT EXISTS statements stored in
// the schema/ directory and applied in one transaction on every Open.
// Timestamps are stored as INTEGER epoch milliseconds.
//
// # Statements
//
// Every statement is prepared once on Open and closed on Close. Whether the
// engine supports DELETE ... RETURNING is probed once on Open; without it,
// delete-and-return operations read then delete inside a transaction.
//
// # Data Location
//
// By default, the database is stored at ~/.chatstore/data/chat.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Execution is serialised by the
// single connection; lock waits are bounded by the busy_timeout pragma.
package sqlite
