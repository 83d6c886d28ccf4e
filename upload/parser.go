// Package upload implements multipart/form-data upload handling: a
// deliberately minimal boundary-split body parser and a sandboxed saver
// that writes accepted files into the served root.
//
// The parser works on raw bytes rather than going through mime/multipart
// so its behavior is fully defined by this package: it splits on the
// literal boundary delimiter, treats a part as a file upload iff its
// header block carries a filename parameter, and does no MIME header
// tokenization. It is isolated behind Parse so a standards-compliant
// parser could replace it without touching the HTTP layer.
package upload

import (
	"bytes"
	"fmt"

	"github.com/calebsm/dirshare"
)

var (
	filenameMarker = []byte(`filename="`)
	headerEnd      = []byte("\r\n\r\n")
)

// trailerLen is the framing suffix ("\r\n") trimmed from the end of each
// part's content block.
const trailerLen = 2

// Parse extracts file uploads from a raw multipart/form-data body.
//
// The body is split on "--" + boundary. A part counts as a file upload
// only when its header block (everything before the first blank line)
// carries a filename parameter; plain form fields, the preamble, the
// closing delimiter, and parts with an empty filename are ignored. A part that carries a
// filename but is structurally broken (no blank-line header terminator,
// or too short to hold the framing trailer) aborts parsing with an error
// wrapping dirshare.ErrUploadParse.
func Parse(body []byte, boundary string) ([]dirshare.UploadedFile, error) {
	if boundary == "" {
		return nil, fmt.Errorf("%w: missing boundary", dirshare.ErrUploadParse)
	}

	var files []dirshare.UploadedFile

	for _, part := range bytes.Split(body, []byte("--"+boundary)) {
		// The filename marker only counts inside the header block; a form
		// field whose value mentions filename="..." is not a file upload.
		headerLen := bytes.Index(part, headerEnd)
		header := part
		if headerLen >= 0 {
			header = part[:headerLen]
		}

		nameStart := bytes.Index(header, filenameMarker)
		if nameStart < 0 {
			continue
		}
		nameStart += len(filenameMarker)

		nameEnd := bytes.IndexByte(header[nameStart:], '"')
		if nameEnd < 0 {
			return nil, fmt.Errorf("%w: unterminated filename", dirshare.ErrUploadParse)
		}

		filename := string(header[nameStart : nameStart+nameEnd])
		if filename == "" {
			continue
		}

		if headerLen < 0 {
			return nil, fmt.Errorf("%w: part %q has no header terminator", dirshare.ErrUploadParse, filename)
		}
		contentStart := headerLen + len(headerEnd)

		if len(part)-contentStart < trailerLen {
			return nil, fmt.Errorf("%w: part %q is truncated", dirshare.ErrUploadParse, filename)
		}

		files = append(files, dirshare.UploadedFile{
			Filename: filename,
			Content:  part[contentStart : len(part)-trailerLen],
		})
	}

	return files, nil
}
