// internal/view/render.go
//
// View engine: embedded templates, func-map injection, one parse at
// startup.
//
// Public helpers
// --------------
//   - Render – write a rendered template to an http.ResponseWriter.
//
// The template set is embedded in the binary (templates/*.html) and
// parsed once by init; a bad template is a programmer error and panics
// at startup rather than at first request.  Two views exist today:
//
//   - dashboard.html  – the visit collection as an HTML table.
//   - image_page.html – the image-variant tracking response, embedding
//     a remote image URL.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// funcMap exposes the formatting helpers the templates need.  The visit
// record's optional fields are pointers, so the helpers own nil
// handling; templates never dereference.
func funcMap() template.FuncMap {
	return template.FuncMap{
		// orDash renders an optional string, "–" when absent.
		"orDash": func(s *string) string {
			if s == nil {
				return "–"
			}
			return *s
		},
		// coord renders an optional coordinate in shortest decimal form.
		"coord": func(f *float64) string {
			if f == nil {
				return "–"
			}
			return strconv.FormatFloat(*f, 'f', -1, 64)
		},
		// stamp renders the record time the way the log files do.
		"stamp": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04:05")
		},
	}
}

var templates = template.Must(
	template.New("").Funcs(funcMap()).ParseFS(templateFS, "templates/*.html"),
)

// Render executes the named template and streams it to w with an HTML
// content type.  The error is returned after the write started, so
// callers log it rather than attempt a second response.
func Render(w http.ResponseWriter, name string, data any) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
