// Package web holds the embedded HTML templates and static assets of the
// site and renders content view models into pages.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"io/fs"

	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

// Page template names.
const (
	PageHome     = "home"
	PageCompare  = "compare"
	PageShape    = "shape"
	PageCarat    = "carat"
	PageNotFound = "notfound"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var funcs = template.FuncMap{
	"jsonld": func(raw json.RawMessage) template.JS { return template.JS(raw) },
	"shapes": diamond.Shapes,
	"carats": diamond.ValidCarats,
}

// Renderer executes page templates. It is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page against the shared layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageHome, PageCompare, PageShape, PageCarat, PageNotFound} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRenderFailed, "parse template").WithDetail(name)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustRenderer is NewRenderer that panics on error. The templates are
// embedded, so failure is a build defect.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render writes page name for data to w.
func (r *Renderer) Render(w io.Writer, name string, data interface{}) error {
	t, ok := r.pages[name]
	if !ok {
		return errors.New(errors.ErrCodeRenderFailed, "unknown page").WithDetail(name)
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		return errors.Wrap(err, errors.ErrCodeRenderFailed, "execute template").WithDetail(name)
	}
	return nil
}

// RenderBytes renders into a buffer so a failed page never produces partial
// output.
func (r *Renderer) RenderBytes(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
