// Package schema embeds the SQL files that create the chatstore tables.
package schema

import "embed"

// FS contains all schema files embedded at compile time.
// Files are applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
