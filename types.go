package dirshare

import "time"

// Entry describes one visible child of a listed directory.
// Size and ModTime are only meaningful when StatOK is true; when the
// per-entry stat fails the entry is still listed but both fields are
// rendered as unknown.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
	StatOK  bool
}

// UploadedFile is one file extracted from a multipart upload body.
// The filename is client-supplied and untrusted; it must pass through
// SanitizeFilename before touching the filesystem.
type UploadedFile struct {
	Filename string
	Content  []byte
}
