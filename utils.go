package dirshare

import (
	"fmt"
	"path"
	"strings"
)

// sizeUnits are the binary-scaled units FormatSize steps through before
// falling back to petabytes.
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count as a human-readable string with one
// fractional digit, dividing by 1024 until the value drops below 1024:
//
//	FormatSize(0)          == "0.0 B"
//	FormatSize(1536)       == "1.5 KB"
//	FormatSize(1073741824) == "1.0 GB"
//
// Values beyond the terabyte range are reported in petabytes. Negative
// input is clamped to zero.
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}

	v := float64(size)
	for _, unit := range sizeUnits {
		if v < 1024 {
			return fmt.Sprintf("%.1f %s", v, unit)
		}
		v /= 1024
	}

	return fmt.Sprintf("%.1f PB", v)
}

// SanitizeFilename reduces a client-supplied upload filename to a bare
// basename safe to join with the served root. It strips directory
// components under both separator conventions and rejects names that
// reduce to nothing, to a relative path marker, or to a hidden name.
//
// The returned name never contains a path separator, so joining it with
// the root directory cannot escape the root.
func SanitizeFilename(name string) (string, error) {
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: filename contains NUL", ErrUploadParse)
	}

	// Clients on Windows send backslash separators.
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)

	switch name {
	case "", ".", "..", "/":
		return "", fmt.Errorf("%w: unusable filename", ErrUploadParse)
	}

	if strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: hidden filename %q", ErrUploadParse, name)
	}

	return name, nil
}
