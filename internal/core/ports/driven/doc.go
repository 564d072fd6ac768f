// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// The application server and core services depend on these interfaces, and
// infrastructure adapters implement them.
//
// # Required Interfaces
//
//   - Storage: Lifecycle plus the four entity stores below
//   - ChatStore: Chat persistence
//   - MessageStore: Message persistence
//   - ConfirmedStepStore: Workflow step audit records
//   - FileStore: File metadata persistence
//
// # Optional Interfaces
//
//   - BlobStore: File content removal. Without it, purged file content is left in place.
//
// # Lookups
//
// Lookups by identifier return a nil record and a nil error when nothing
// matches. Errors are reserved for failures.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
