package http

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/calebsm/dirshare"
)

const errorHTML = `<html>
<head><title>%d %s</title></head>
<body>
<center><h1>%d %s</h1></center>
<hr><center>dirshare</center>
</body>
</html>
`

// WriteError writes a minimal HTML error page with a short reason. No
// internal paths or error chains reach the client.
func WriteError(w http.ResponseWriter, code int, reason string) {
	reason = html.EscapeString(reason)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, errorHTML, code, reason, code, reason)
}

func writeNotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, "Not Found")
}

// HandleError maps a core error onto an HTTP status.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	switch {
	case errors.Is(err, dirshare.ErrNotFound), errors.Is(err, dirshare.ErrListing):
		writeNotFound(w)
	case errors.Is(err, dirshare.ErrUploadParse):
		WriteError(w, http.StatusBadRequest, "Bad Request - Malformed upload")
	case errors.Is(err, dirshare.ErrFileWrite):
		WriteError(w, http.StatusInternalServerError, "Error saving file")
	default:
		WriteError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
