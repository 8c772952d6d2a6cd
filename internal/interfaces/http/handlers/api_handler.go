package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CaratCompare/internal/application/content"
	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

// APIHandler serves the read-only JSON API under /api/v1.
type APIHandler struct {
	pages   *content.Pages
	entries func() []comparison.Entry
	logger  logging.Logger
}

// NewAPIHandler creates an APIHandler over the default enumeration.
func NewAPIHandler(pages *content.Pages, log logging.Logger) *APIHandler {
	return &APIHandler{pages: pages, entries: comparison.Enumerate, logger: log}
}

// RegisterRoutes mounts the API on r, which is expected to be the /api/v1
// group.
func (h *APIHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/comparisons", h.ListComparisons)
	r.GET("/comparisons/:slug", h.GetComparison)
	r.GET("/slug", h.EncodeSlug)
}

// ComparisonResponse is a decoded comparison with its measurements and copy.
type ComparisonResponse struct {
	Slug              string              `json:"slug"`
	CanonicalSlug     string              `json:"canonical_slug"`
	URL               string              `json:"url"`
	Title             string              `json:"title"`
	A                 content.DiamondView `json:"a"`
	B                 content.DiamondView `json:"b"`
	PercentDifference *int                `json:"percent_difference,omitempty"`
	Text              string              `json:"text"`
	MetaDescription   string              `json:"meta_description"`
}

// GetComparison handles GET /api/v1/comparisons/:slug.
func (h *APIHandler) GetComparison(c *gin.Context) {
	page, err := h.pages.Compare(c.Param("slug"))
	if err != nil {
		writeError(c, err)
		return
	}
	canonical := page.Comparison.Canonical()
	resp := ComparisonResponse{
		Slug:            page.Comparison.Slug(),
		CanonicalSlug:   canonical.Slug(),
		URL:             page.Canonical,
		Title:           page.Heading,
		A:               page.Left,
		B:               page.Right,
		Text:            page.Description.Text,
		MetaDescription: page.Description.Meta,
	}
	if an := page.Description.Analysis; an != nil {
		pct := an.Percent
		resp.PercentDifference = &pct
	}
	writeJSON(c, http.StatusOK, resp)
}

// ListItem is one enumerated comparison.
type ListItem struct {
	Slug     string  `json:"slug"`
	Tier     string  `json:"tier"`
	Priority float64 `json:"priority"`
	Path     string  `json:"path"`
}

// ListResponse is the body of GET /api/v1/comparisons.
type ListResponse struct {
	Total int        `json:"total"`
	Count int        `json:"count"`
	Items []ListItem `json:"items"`
}

// ListComparisons handles GET /api/v1/comparisons?limit=N. Items follow the
// sitemap order.
func (h *APIHandler) ListComparisons(c *gin.Context) {
	entries := h.entries()
	limit := parseLimit(c, len(entries))
	if limit > len(entries) {
		limit = len(entries)
	}
	items := make([]ListItem, 0, limit)
	for _, e := range entries[:limit] {
		items = append(items, ListItem{
			Slug:     e.Slug,
			Tier:     e.Tier.String(),
			Priority: e.Priority,
			Path:     content.ComparePath(e.Comparison),
		})
	}
	writeJSON(c, http.StatusOK, ListResponse{Total: len(entries), Count: len(items), Items: items})
}

// SlugResponse is the body of GET /api/v1/slug.
type SlugResponse struct {
	Slug          string `json:"slug"`
	CanonicalSlug string `json:"canonical_slug"`
	Path          string `json:"path"`
}

// EncodeSlug handles GET /api/v1/slug?carat1=&shape1=&carat2=&shape2=. The
// slug keeps the query order; canonical_slug is the sitemap ordering.
func (h *APIHandler) EncodeSlug(c *gin.Context) {
	slug, ok := comparison.FromQuery(c.Query("carat1"), c.Query("shape1"), c.Query("carat2"), c.Query("shape2"))
	if !ok {
		writeError(c, errors.New(errors.ErrCodeValidation, "carat1, shape1, carat2 and shape2 must name two diamonds"))
		return
	}
	cmp, err := comparison.Decode(slug)
	if err != nil {
		writeError(c, errors.New(errors.ErrCodeValidation, "carat out of range").WithDetail(slug))
		return
	}
	writeJSON(c, http.StatusOK, SlugResponse{
		Slug:          slug,
		CanonicalSlug: cmp.Canonical().Slug(),
		Path:          "/compare/" + slug,
	})
}
