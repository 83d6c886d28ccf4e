package http_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	dirsharehttp "github.com/calebsm/dirshare/http"
)

func newServer(t *testing.T, config *dirsharehttp.HandlerConfig) (http.Handler, string) {
	t.Helper()

	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	return dirsharehttp.NewHandler(config, root).Router(), dir
}

func multipartBody(t *testing.T, filename, content string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = fw.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func TestHandler_GetFile(t *testing.T) {
	router, dir := newServer(t, &dirsharehttp.HandlerConfig{})
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello world"), 0o644))

	req := httptest.NewRequest("GET", "/hello.txt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestHandler_GetFile_UnknownExtension(t *testing.T) {
	router, dir := newServer(t, &dirsharehttp.HandlerConfig{})
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "blob.xyz123"), []byte{1, 2, 3}, 0o644))

	req := httptest.NewRequest("GET", "/blob.xyz123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
}

func TestHandler_GetMissing(t *testing.T) {
	router, _ := newServer(t, &dirsharehttp.HandlerConfig{})

	req := httptest.NewRequest("GET", "/nope.txt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetListing(t *testing.T) {
	router, dir := newServer(t, &dirsharehttp.HandlerConfig{})
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("aaa"), 0o644))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".secret"), []byte("shh"), 0o644))

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))

	html := rec.Body.String()
	assert.Contains(t, html, "sub/")
	assert.Contains(t, html, "a.txt")
	assert.NotContains(t, html, ".secret")
	// Uploads disabled, so no form.
	assert.NotContains(t, html, "multipart/form-data")
}

func TestHandler_GetListing_UploadFormWhenEnabled(t *testing.T) {
	router, _ := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: true})

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "multipart/form-data")
}

func TestHandler_GetDirectoryRedirectsToSlash(t *testing.T) {
	router, dir := newServer(t, &dirsharehttp.HandlerConfig{})
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	req := httptest.NewRequest("GET", "/sub", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/sub/", rec.Header().Get("Location"))
}

func TestHandler_GetTraversalStaysInRoot(t *testing.T) {
	router, dir := newServer(t, &dirsharehttp.HandlerConfig{})
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "safe.txt"), []byte("inside"), 0o644))

	for _, target := range []string{
		"/../safe.txt",
		"/../../../../etc/passwd",
		"/%2e%2e/%2e%2e/etc/passwd",
	} {
		req := httptest.NewRequest("GET", target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		// Either resolved back inside the root or rejected, never escaping.
		if rec.Code == http.StatusOK {
			assert.Equal(t, "inside", rec.Body.String(), "target %s", target)
		} else {
			assert.Equal(t, http.StatusNotFound, rec.Code, "target %s", target)
		}
	}
}

func TestHandler_PostDisabled(t *testing.T) {
	router, _ := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: false})

	body, contentType := multipartBody(t, "a.txt", "hello")
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_PostNotMultipart(t *testing.T) {
	router, _ := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: true})

	req := httptest.NewRequest("POST", "/", strings.NewReader("field=value"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_PostMissingContentType(t *testing.T) {
	router, _ := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: true})

	req := httptest.NewRequest("POST", "/", strings.NewReader("data"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_PostUploadRoundTrip(t *testing.T) {
	router, dir := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: true})

	body, contentType := multipartBody(t, "a.txt", "hello")
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
}

func TestHandler_PostLogsUploadWithFormattedSize(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })

	router, _ := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: true})

	body, contentType := multipartBody(t, "notes.txt", "hello")
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)

	line := buf.String()
	assert.Contains(t, line, "file uploaded")
	assert.Contains(t, line, "notes.txt")
	assert.Contains(t, line, "5.0 B")
}

func TestHandler_PostTraversalFilenameSanitized(t *testing.T) {
	router, dir := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: true})

	raw := "--X\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"../../etc/passwd\"\r\n" +
		"\r\n" +
		"pwned\r\n" +
		"--X--\r\n"
	req := httptest.NewRequest("POST", "/", strings.NewReader(raw))
	req.Header.Set("Content-Type", `multipart/form-data; boundary=X`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)

	data, err := os.ReadFile(filepath.Join(dir, "passwd"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("pwned"), data)
}

func TestHandler_PostMalformedBody(t *testing.T) {
	router, _ := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: true})

	raw := "--X\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n" +
		"\r\n"
	req := httptest.NewRequest("POST", "/", strings.NewReader(raw))
	req.Header.Set("Content-Type", `multipart/form-data; boundary=X`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_PostOverSizeCap(t *testing.T) {
	router, _ := newServer(t, &dirsharehttp.HandlerConfig{
		UploadsEnabled: true,
		MaxUploadBytes: 64,
	})

	body, contentType := multipartBody(t, "big.bin", strings.Repeat("x", 4096))
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_PostRedirectsToSubdirectory(t *testing.T) {
	router, dir := newServer(t, &dirsharehttp.HandlerConfig{UploadsEnabled: true})
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	body, contentType := multipartBody(t, "a.txt", "hello")
	req := httptest.NewRequest("POST", "/sub/", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/sub/", rec.Header().Get("Location"))
}
