package content

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	apperrors "github.com/turtacn/CaratCompare/pkg/errors"
)

// Placeholder stands in for a measurement that has no dimension data.
const Placeholder = "—"

const maxHubLinks = 24

var featuredCarats = []diamond.Carat{0.5, 1, 1.5, 2}

// Home page values used when some but not all query parameters are present.
var (
	defaultSideA = comparison.Side{Carat: 0.5, Shape: diamond.Heart}
	defaultSideB = comparison.Side{Carat: 1.25, Shape: diamond.Round}
)

// Link is a labelled site-relative href.
type Link struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

// DiamondView is one side of a comparison ready for display.
type DiamondView struct {
	Carat         string  `json:"carat"`
	Shape         string  `json:"shape"`
	ShapeTitle    string  `json:"shape_title"`
	Width         string  `json:"width"`
	Height        string  `json:"height"`
	Area          float64 `json:"area,omitempty"`
	HasDimensions bool    `json:"has_dimensions"`
}

func (p *Pages) diamondView(s comparison.Side) DiamondView {
	v := DiamondView{
		Carat:      s.Carat.Label(),
		Shape:      string(s.Shape),
		ShapeTitle: s.Shape.Title(),
		Width:      Placeholder,
		Height:     Placeholder,
	}
	if d, err := p.lookup.Lookup(s.Shape, s.Carat); err == nil {
		v.Width, v.Height = mm(d.Width), mm(d.Height)
		v.Area = comparison.FaceUpArea(s.Shape, d)
		v.HasDimensions = true
	}
	return v
}

// ComparePage is the view model of /compare/:slug.
type ComparePage struct {
	Title           string
	MetaDescription string
	Canonical       string
	Heading         string
	Comparison      comparison.Comparison
	Left, Right     DiamondView
	Description     Description
	Paragraphs      []string
	Related         []Link
	AffiliateURL    string
	FAQ             []FAQ
	ArticleSchema   json.RawMessage
	FAQSchema       json.RawMessage
}

// ShapeHubPage is the view model of /:shape.
type ShapeHubPage struct {
	Title           string
	MetaDescription string
	Canonical       string
	Shape           diamond.Shape
	ShapeTitle      string
	Info            ShapeInfo
	AffiliateURL    string
	Popular         []Link
	Carats          []Link
	OtherShapes     []Link
}

// ShapeDimensions is one row of the carat hub size guide.
type ShapeDimensions struct {
	Shape      diamond.Shape
	ShapeTitle string
	Width      string
	Height     string
}

// CaratHubPage is the view model of /carat/:carat.
type CaratHubPage struct {
	Title           string
	MetaDescription string
	Canonical       string
	Carat           diamond.Carat
	CaratLabel      string
	Dimensions      []ShapeDimensions
	ShapePairs      []Link
	SizeLinks       []Link
}

// HomePage is the view model of /.
type HomePage struct {
	Title           string
	MetaDescription string
	Canonical       string
	Comparison      comparison.Comparison
	Left, Right     DiamondView
	CompareHref     string
	Shapes          []Link
	Carats          []Link
	FAQ             []FAQ
	WebsiteSchema   json.RawMessage
	FAQSchema       json.RawMessage
}

// Pages assembles view models for every page of the site.
type Pages struct {
	site   Site
	lookup diamond.Lookup
	gen    *Generator
}

// NewPages returns a Pages builder.
func NewPages(site Site, lookup diamond.Lookup) *Pages {
	return &Pages{site: site, lookup: lookup, gen: NewGenerator(lookup)}
}

// Site returns the site identity the builder was created with.
func (p *Pages) Site() Site { return p.site }

// Generator returns the text generator backing the builder.
func (p *Pages) Generator() *Generator { return p.gen }

// Compare decodes slug and builds its page. Decode failures carry
// ErrCodeInvalidSlug.
func (p *Pages) Compare(slug string) (*ComparePage, error) {
	c, err := comparison.Decode(slug)
	if err != nil {
		return nil, err
	}
	return p.CompareFor(c), nil
}

// CompareFor builds the page of an already decoded comparison.
func (p *Pages) CompareFor(c comparison.Comparison) *ComparePage {
	desc := p.gen.Describe(c)
	page := &ComparePage{
		Title: fmt.Sprintf("%sct %s vs %sct %s Diamond | %s",
			c.A.Carat.Label(), c.A.Shape.Title(), c.B.Carat.Label(), c.B.Shape.Title(), p.site.Name),
		MetaDescription: desc.Meta,
		Canonical:       p.site.URL(ComparePath(c.Canonical())),
		Heading: fmt.Sprintf("%sct %s vs %sct %s",
			c.A.Carat.Label(), c.A.Shape.Title(), c.B.Carat.Label(), c.B.Shape.Title()),
		Comparison:    c,
		Left:          p.diamondView(c.A),
		Right:         p.diamondView(c.B),
		Description:   desc,
		Paragraphs:    desc.Paragraphs(),
		Related:       relatedLinks(c),
		AffiliateURL:  p.site.AffiliateURL,
		FAQ:           FAQs(),
		ArticleSchema: p.site.ArticleSchema(c, desc.Meta),
	}
	page.FAQSchema = FAQSchema(page.FAQ)
	return page
}

func relatedLinks(c comparison.Comparison) []Link {
	var out []Link
	seen := map[string]bool{}
	add := func(l Link) {
		if !seen[l.Href] {
			seen[l.Href] = true
			out = append(out, l)
		}
	}
	for _, s := range []comparison.Side{c.A, c.B} {
		add(Link{Href: ShapePath(s.Shape), Label: fmt.Sprintf("All %s Diamonds", s.Shape.Title())})
	}
	for _, s := range []comparison.Side{c.A, c.B} {
		if s.Carat.IsValid() {
			add(Link{Href: CaratPath(s.Carat), Label: fmt.Sprintf("%s Carat Diamonds", s.Carat.String())})
		}
	}
	return out
}

// ShapeHub builds the hub of the shape named raw. Matching is
// case-insensitive; unknown shapes carry ErrCodeInvalidShape.
func (p *Pages) ShapeHub(raw string) (*ShapeHubPage, error) {
	shape, err := diamond.ParseShape(strings.ToLower(raw))
	if err != nil {
		return nil, err
	}
	info := InfoFor(shape)
	title := shape.Title()

	page := &ShapeHubPage{
		Title: fmt.Sprintf("%s Diamond Size Comparison | %s", title, p.site.Name),
		MetaDescription: fmt.Sprintf("Compare %s diamonds across all carat weights. %s See actual size differences with measurements.",
			shape, info.Description),
		Canonical:    p.site.URL(ShapePath(shape)),
		Shape:        shape,
		ShapeTitle:   title,
		Info:         info,
		AffiliateURL: p.site.AffiliateURL,
	}

	var others []diamond.Shape
	for _, s := range diamond.Shapes() {
		if s != shape {
			others = append(others, s)
			page.OtherShapes = append(page.OtherShapes, Link{Href: ShapePath(s), Label: s.Title()})
		}
	}

	popular := comparison.DefaultConstants().PopularCarats
	for i := 0; i+1 < len(popular); i++ {
		c1, c2 := popular[i], popular[i+1]
		page.Popular = append(page.Popular, Link{
			Href:  ComparePath(comparison.Of(c1, shape, c2, shape)),
			Label: fmt.Sprintf("%sct vs %sct %s", c1.Label(), c2.Label(), title),
		})
	}
	for _, c := range featuredCarats {
		for _, other := range others[:3] {
			page.Popular = append(page.Popular, Link{
				Href:  ComparePath(comparison.Of(c, shape, c, other)),
				Label: fmt.Sprintf("%sct %s vs %s", c.Label(), title, other.Title()),
			})
		}
	}
	if len(page.Popular) > maxHubLinks {
		page.Popular = page.Popular[:maxHubLinks]
	}

	for _, c := range popular {
		page.Carats = append(page.Carats, Link{Href: CaratPath(c), Label: c.Label() + " Carat"})
	}
	return page, nil
}

// CaratHub builds the hub of the carat named raw, which must parse to one of
// the valid increments; otherwise the error carries ErrCodeInvalidCarat.
func (p *Pages) CaratHub(raw string) (*CaratHubPage, error) {
	f, err := strconv.ParseFloat(raw, 64)
	carat := diamond.Carat(f)
	if err != nil || !carat.IsValid() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidCarat, "carat is not a valid increment").WithDetail(raw)
	}
	label := carat.String()

	page := &CaratHubPage{
		Title: fmt.Sprintf("%s Carat Diamond Size Comparison | All Shapes | %s", label, p.site.Name),
		MetaDescription: fmt.Sprintf("Compare %s carat diamonds across all shapes. See how round, oval, princess, cushion, emerald, and other cuts look at %s carats.",
			label, label),
		Canonical:  p.site.URL(CaratPath(carat)),
		Carat:      carat,
		CaratLabel: label,
	}

	shapes := diamond.Shapes()
	for _, s := range shapes {
		d, err := p.lookup.Lookup(s, carat)
		if err != nil {
			continue
		}
		page.Dimensions = append(page.Dimensions, ShapeDimensions{
			Shape: s, ShapeTitle: s.Title(), Width: mm(d.Width), Height: mm(d.Height),
		})
	}

	for i, s1 := range shapes {
		for _, s2 := range shapes[i+1:] {
			page.ShapePairs = append(page.ShapePairs, Link{
				Href:  ComparePath(comparison.Of(carat, s1, carat, s2)),
				Label: fmt.Sprintf("%s vs %s", s1.Title(), s2.Title()),
			})
		}
	}
	if len(page.ShapePairs) > maxHubLinks {
		page.ShapePairs = page.ShapePairs[:maxHubLinks]
	}

	lower, hasLower, upper, hasUpper := diamond.Adjacent(carat)
	if hasLower {
		for _, s := range shapes {
			page.SizeLinks = append(page.SizeLinks, Link{
				Href:  ComparePath(comparison.Of(lower, s, carat, s)),
				Label: fmt.Sprintf("%sct vs %sct %s", lower.String(), label, s.Title()),
			})
		}
	}
	if hasUpper {
		for _, s := range shapes {
			page.SizeLinks = append(page.SizeLinks, Link{
				Href:  ComparePath(comparison.Of(carat, s, upper, s)),
				Label: fmt.Sprintf("%sct vs %sct %s", label, upper.String(), s.Title()),
			})
		}
	}
	return page, nil
}

// HomeParams are the four optional home page query parameters.
var HomeParams = []string{"carat1", "shape1", "carat2", "shape2"}

// Home builds the home page. With no parameters the pair comes from sel.
// Otherwise missing or invalid values fall back to 0.5 heart and 1.25 round,
// and carats are snapped to the nearest increment.
func (p *Pages) Home(q url.Values, sel Selector) *HomePage {
	var c comparison.Comparison
	if hasAny(q, HomeParams) {
		c = comparison.Comparison{
			A: sideFromQuery(q.Get("carat1"), q.Get("shape1"), defaultSideA),
			B: sideFromQuery(q.Get("carat2"), q.Get("shape2"), defaultSideB),
		}
	} else {
		c = sel.Pick()
	}

	page := &HomePage{
		Title:           p.site.Name + " | Diamond Size Comparison Tool",
		MetaDescription: "Visually compare diamond sizes and shapes. See actual size comparisons with measurements.",
		Canonical:       p.site.URL("/"),
		Comparison:      c,
		Left:            p.diamondView(c.A),
		Right:           p.diamondView(c.B),
		CompareHref:     ComparePath(c.Canonical()),
		FAQ:             FAQs(),
		WebsiteSchema:   p.site.WebsiteSchema(),
	}
	page.FAQSchema = FAQSchema(page.FAQ)
	for _, s := range diamond.Shapes() {
		page.Shapes = append(page.Shapes, Link{Href: ShapePath(s), Label: s.Title()})
	}
	for _, cr := range diamond.ValidCarats() {
		page.Carats = append(page.Carats, Link{Href: CaratPath(cr), Label: cr.Label() + " Carat"})
	}
	return page
}

func hasAny(q url.Values, keys []string) bool {
	for _, k := range keys {
		if q.Has(k) {
			return true
		}
	}
	return false
}

func sideFromQuery(rawCarat, rawShape string, def comparison.Side) comparison.Side {
	s := def
	if rawCarat != "" {
		f, err := strconv.ParseFloat(rawCarat, 64)
		if err != nil {
			// Unparseable carats snap like NaN, to the smallest increment.
			s.Carat = diamond.MinCarat
		} else {
			s.Carat = diamond.Snap(f)
		}
	}
	if shape := diamond.Shape(rawShape); shape.IsValid() {
		s.Shape = shape
	}
	return s
}

// NotFoundPage is the view model of the 404 page.
type NotFoundPage struct {
	Title           string
	MetaDescription string
	Canonical       string
	Links           []Link
}

// NotFound builds the 404 page with links to the top comparisons and the
// shape hubs.
func (p *Pages) NotFound() *NotFoundPage {
	page := &NotFoundPage{
		Title:           "Page Not Found | " + p.site.Name,
		MetaDescription: "The page you requested does not exist.",
	}
	for _, e := range comparison.Enumerate()[:6] {
		page.Links = append(page.Links, Link{Href: "/compare/" + e.Slug, Label: e.Comparison.A.String() + " vs " + e.Comparison.B.String()})
	}
	for _, s := range diamond.Shapes() {
		page.Links = append(page.Links, Link{Href: ShapePath(s), Label: fmt.Sprintf("All %s Diamonds", s.Title())})
	}
	return page
}
