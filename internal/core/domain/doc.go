// Package domain defines the core entities persisted by chatstore.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chat: A conversation owned by a creator
//   - Message: A chat message with a structured body
//   - ConfirmedStep: An append-only record of workflow progression
//   - FileMeta: Metadata for a file whose bytes live elsewhere
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
