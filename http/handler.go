package http

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/calebsm/dirshare"
	"github.com/calebsm/dirshare/listing"
	"github.com/calebsm/dirshare/upload"
)

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	// UploadsEnabled controls whether POST is accepted and whether
	// listings carry an upload form.
	UploadsEnabled bool
	// MaxUploadBytes caps the upload body size. Zero means no cap, which
	// matches the default behavior of buffering whatever the client sends.
	MaxUploadBytes int64
	CORS           CORSConfig
}

// Handler serves the directory tree under an os.Root.
type Handler struct {
	config   HandlerConfig
	root     *os.Root
	renderer *listing.Renderer
	saver    *upload.Saver
}

// NewHandler creates a Handler serving the tree rooted at root.
func NewHandler(config *HandlerConfig, root *os.Root) *Handler {
	return &Handler{
		config:   *config,
		root:     root,
		renderer: listing.NewRenderer(root.FS()),
		saver:    upload.NewSaver(root),
	}
}

// Router returns the http.Handler for the server.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/*", h.handleGet)
	r.Post("/*", h.handlePost)

	return r
}

// fsPath maps a URL path onto an fs path below the root. Cleaning
// resolves ".." segments against the URL root, so a crafted path can at
// worst name the served root itself; anything still invalid as an fs
// path is answered with 404 by the handlers.
func fsPath(urlPath string) string {
	p := strings.Trim(path.Clean("/"+urlPath), "/")
	if p == "" {
		return "."
	}
	return p
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p := fsPath(r.URL.Path)
	if !fs.ValidPath(p) {
		writeNotFound(w)
		return
	}

	info, err := fs.Stat(h.root.FS(), p)
	if err != nil {
		writeNotFound(w)
		return
	}

	if info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.EscapedPath()+"/", http.StatusMovedPermanently)
			return
		}
		h.serveListing(w, p, r.URL.Path)
		return
	}

	if !info.Mode().IsRegular() {
		writeNotFound(w)
		return
	}

	h.serveFile(w, r, p, info)
}

func (h *Handler) serveListing(w http.ResponseWriter, p, requestPath string) {
	body, err := h.renderer.Render(p, requestPath, h.config.UploadsEnabled)
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, p string, info fs.FileInfo) {
	f, err := h.root.Open(p)
	if err != nil {
		writeNotFound(w)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", detectContentType(p))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	if !h.config.UploadsEnabled {
		WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		WriteError(w, http.StatusBadRequest, "Bad Request - Not a multipart/form-data request")
		return
	}

	boundary := params["boundary"]
	if boundary == "" {
		WriteError(w, http.StatusBadRequest, "Bad Request - Missing multipart boundary")
		return
	}

	body := r.Body
	if h.config.MaxUploadBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Upload body too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "Bad Request - Could not read body")
		return
	}

	files, err := upload.Parse(data, boundary)
	if err != nil {
		HandleError(w, err)
		return
	}

	saved, err := h.saver.Save(r.Context(), files)
	for i, name := range saved {
		slog.Info("file uploaded", "file", name, "size", dirshare.FormatSize(int64(len(files[i].Content))))
	}
	if err != nil {
		HandleError(w, err)
		return
	}

	http.Redirect(w, r, r.URL.EscapedPath(), http.StatusSeeOther)
}

func detectContentType(p string) string {
	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
