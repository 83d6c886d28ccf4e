// Package http serves a filesystem subtree over HTTP: file downloads,
// browsable directory listings, and optional multipart uploads.
//
// The handler is configured once at construction with an immutable
// HandlerConfig and holds no per-request state; path containment is
// delegated to the os.Root the handler is built around, so a request
// path can never resolve outside the served directory.
//
// # Surface
//
//	GET  /<path>  file bytes, or a listing for directories, or 404
//	POST /<path>  multipart upload into the served root, 303 back to <path>
//
// POST returns 405 when uploads are disabled, 400 for bodies that are
// not (or are malformed) multipart/form-data, 413 when a configured
// body cap is exceeded, and 500 when a file cannot be written.
package http
