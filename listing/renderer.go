// Package listing renders browsable HTML directory listings.
//
// Entries are sorted directories-first with case-insensitive name order,
// hidden entries (leading dot) are excluded, and a stat failure on a
// single entry degrades that entry to "Unknown" fields instead of
// failing the whole listing. Labels are HTML-escaped by the template and
// link targets are percent-encoded, so crafted filenames cannot inject
// markup.
package listing

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/url"
	"sort"
	"strings"

	"github.com/calebsm/dirshare"
)

const pageHTML = `<!DOCTYPE HTML>
<html lang="en">
<head>
<title>{{.Title}}</title>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; margin: 0; padding: 20px; }
h1 { border-bottom: 1px solid #ddd; padding-bottom: 10px; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
tr:hover { background-color: #f5f5f5; }
a { text-decoration: none; color: #0366d6; }
a:hover { text-decoration: underline; }
.dir { font-weight: bold; }
.size { color: #6c757d; }
.upload { margin-top: 20px; padding: 10px; background-color: #f8f9fa; border-radius: 5px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr><th>Name</th><th>Size</th><th>Last Modified</th></tr>
<tr>
<td><a href="../">..</a></td>
<td class="size">-</td>
<td>-</td>
</tr>
{{range .Rows}}<tr>
{{if .IsDir}}<td><a href="{{.Href}}" class="dir">{{.Label}}</a></td>
{{else}}<td><a href="{{.Href}}">{{.Label}}</a></td>
{{end}}<td class="size">{{.Size}}</td>
<td>{{.ModTime}}</td>
</tr>
{{end}}</table>
{{if .UploadForm}}<div class="upload">
<h2>Upload File</h2>
<form action="{{.RequestPath}}" method="POST" enctype="multipart/form-data">
<input type="file" name="file">
<input type="submit" value="Upload">
</form>
</div>
{{end}}</body>
</html>
`

var pageTmpl = template.Must(template.New("listing").Parse(pageHTML))

const timeFormat = "2006-01-02 15:04:05"

type row struct {
	Label   string
	Href    string
	IsDir   bool
	Size    string
	ModTime string
}

type page struct {
	Title       string
	RequestPath string
	UploadForm  bool
	Rows        []row
}

// Renderer produces directory listing pages for a filesystem tree.
type Renderer struct {
	fsys fs.FS
}

// NewRenderer creates a Renderer reading from the given filesystem.
func NewRenderer(fsys fs.FS) *Renderer {
	return &Renderer{fsys: fsys}
}

// Render lists the immediate children of dir (an fs path, "." for the
// served root) as a complete HTML document. requestPath is the URL path
// the listing was requested under and is used for the page title and the
// upload form target. The caller derives Content-Length from the
// returned byte length.
//
// A directory that cannot be read yields an error wrapping
// dirshare.ErrListing; the HTTP layer translates that into a 404.
func (r *Renderer) Render(dir, requestPath string, withUploadForm bool) ([]byte, error) {
	dirEntries, err := fs.ReadDir(r.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", dirshare.ErrListing, dir)
	}

	entries := make([]dirshare.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if strings.HasPrefix(de.Name(), ".") {
			continue
		}

		e := dirshare.Entry{Name: de.Name(), IsDir: de.IsDir()}
		if info, infoErr := de.Info(); infoErr == nil {
			e.Size = info.Size()
			e.ModTime = info.ModTime()
			e.StatOK = true
		}
		entries = append(entries, e)
	}

	sortEntries(entries)

	p := page{
		Title:       "Directory listing for " + requestPath,
		RequestPath: requestPath,
		UploadForm:  withUploadForm,
		Rows:        make([]row, 0, len(entries)),
	}

	for _, e := range entries {
		p.Rows = append(p.Rows, entryRow(e))
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("%w: render: %v", dirshare.ErrListing, err)
	}

	return buf.Bytes(), nil
}

// sortEntries orders directories before files, then by case-insensitive
// name. Distinct names that fold to the same string fall back to a raw
// byte comparison so the order is a strict total order.
func sortEntries(entries []dirshare.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}

func entryRow(e dirshare.Entry) row {
	r := row{
		Label:   e.Name,
		Href:    url.PathEscape(e.Name),
		IsDir:   e.IsDir,
		Size:    "Unknown",
		ModTime: "Unknown",
	}

	if e.IsDir {
		r.Label += "/"
		r.Href += "/"
		r.Size = "-"
	} else if e.StatOK {
		r.Size = dirshare.FormatSize(e.Size)
	}

	if e.StatOK {
		r.ModTime = e.ModTime.Format(timeFormat)
	}

	return r
}
