package dirshare

import "errors"

var (
	// ErrNotFound is returned when a requested path cannot be resolved
	ErrNotFound = errors.New("not found")
	// ErrListing is returned when a directory cannot be read for listing
	ErrListing = errors.New("cannot list directory")
	// ErrUploadParse is returned when a multipart upload body is malformed
	ErrUploadParse = errors.New("malformed upload body")
	// ErrFileWrite is returned when an uploaded file cannot be written
	ErrFileWrite = errors.New("file write failed")
	// ErrCertGen is returned when self-signed certificate generation fails
	ErrCertGen = errors.New("certificate generation failed")
)
