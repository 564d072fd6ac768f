package domain

import "time"

// FileMeta is the metadata of an uploaded file.
// The file bytes are kept by a BlobStore, not with the metadata.
type FileMeta struct {
	// ID is the unique identifier for the file.
	ID string

	// Name is the original file name.
	Name string

	// Size is the content length in bytes.
	Size int64

	// MimeType is the content type, e.g. "image/png".
	MimeType string

	// CreatedAt is when the file was uploaded.
	CreatedAt time.Time
}

// Validate checks the invariants file metadata must satisfy before insert.
func (f *FileMeta) Validate() error {
	if f.ID == "" || f.Size < 0 {
		return ErrInvalidInput
	}
	return nil
}
