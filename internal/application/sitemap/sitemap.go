// Package sitemap builds the XML sitemap covering the home page, every hub
// page and the enumerated comparison pages.
package sitemap

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"time"

	"github.com/turtacn/CaratCompare/internal/application/content"
	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	apperrors "github.com/turtacn/CaratCompare/pkg/errors"
)

const (
	// Namespace is the sitemap protocol namespace.
	Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

	ChangeFreq      = "monthly"
	HomePriority    = 1.0
	HubPriority     = 0.9
	ContentType     = "application/xml"
	CacheControl    = "public, max-age=86400, s-maxage=86400"
	lastModLayout   = time.RFC3339
	priorityDecimal = 1
)

// Entry is one <url> element.
type Entry struct {
	Loc        string  `xml:"loc" json:"loc"`
	LastMod    string  `xml:"lastmod" json:"lastmod"`
	ChangeFreq string  `xml:"changefreq" json:"changefreq"`
	Priority   float64 `xml:"-" json:"priority"`
}

type xmlURL struct {
	Entry
	PriorityText string `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

// Builder assembles sitemap entries for a site.
type Builder struct {
	site    content.Site
	entries func() []comparison.Entry
	now     func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the source of the lastmod timestamp.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithEntries replaces the comparison list, which defaults to
// comparison.Enumerate.
func WithEntries(fn func() []comparison.Entry) Option {
	return func(b *Builder) { b.entries = fn }
}

// NewBuilder returns a Builder for site.
func NewBuilder(site content.Site, opts ...Option) *Builder {
	b := &Builder{site: site, entries: comparison.Enumerate, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Entries lists the home page, the shape hubs, the carat hubs and then the
// comparison pages in enumeration order.
func (b *Builder) Entries() []Entry {
	lastMod := b.now().UTC().Format(lastModLayout)
	entry := func(path string, priority float64) Entry {
		return Entry{Loc: b.site.URL(path), LastMod: lastMod, ChangeFreq: ChangeFreq, Priority: priority}
	}

	cmps := b.entries()
	shapes, carats := diamond.Shapes(), diamond.ValidCarats()
	out := make([]Entry, 0, 1+len(shapes)+len(carats)+len(cmps))

	out = append(out, Entry{Loc: b.site.BaseURL, LastMod: lastMod, ChangeFreq: ChangeFreq, Priority: HomePriority})
	for _, s := range shapes {
		out = append(out, entry(content.ShapePath(s), HubPriority))
	}
	for _, c := range carats {
		out = append(out, entry(content.CaratPath(c), HubPriority))
	}
	for _, e := range cmps {
		out = append(out, entry("/compare/"+e.Slug, e.Priority))
	}
	return out
}

// WriteXML encodes entries as a sitemap document.
func WriteXML(w io.Writer, entries []Entry) error {
	set := urlSet{Xmlns: Namespace, URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		set.URLs = append(set.URLs, xmlURL{
			Entry:        e,
			PriorityText: strconv.FormatFloat(e.Priority, 'f', priorityDecimal, 64),
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "write sitemap header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode sitemap")
	}
	return enc.Flush()
}

// XML builds and encodes the sitemap in one step.
func (b *Builder) XML() ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXML(&buf, b.Entries()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
