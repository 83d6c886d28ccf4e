// Package dirshare provides the core building blocks for a small LAN file
// sharing server: human-readable size formatting, upload filename
// sanitization, and the shared types and error taxonomy used by the
// listing, upload, and HTTP packages.
//
// The package itself holds no state. A server is assembled from the
// subpackages:
//
//   - listing: HTML directory listing rendering
//   - upload: multipart body parsing and sandboxed file writes
//   - certs: self-signed certificate bootstrap for HTTPS
//   - http: request handling and routing
//   - config: layered configuration loading
//
// See cmd/dirshare for the CLI that wires everything together.
package dirshare
