package content

import (
	"strings"

	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
)

// Site is the public identity used to build absolute URLs and page titles.
type Site struct {
	Name         string
	BaseURL      string
	AffiliateURL string
}

// URL joins path onto the base URL.
func (s Site) URL(path string) string {
	return strings.TrimRight(s.BaseURL, "/") + path
}

// ComparePath is the site path of a comparison page. Sides are not reordered.
func ComparePath(c comparison.Comparison) string {
	return "/compare/" + c.Slug()
}

// ShapePath is the site path of a shape hub.
func ShapePath(s diamond.Shape) string {
	return "/" + string(s)
}

// CaratPath is the site path of a carat hub.
func CaratPath(c diamond.Carat) string {
	return "/carat/" + c.String()
}
