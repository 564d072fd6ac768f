// Package filesystem keeps file content as one plain file per file ID
// inside a content directory.
package filesystem
