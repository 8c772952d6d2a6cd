// Package content turns comparisons and catalogue data into the copy and
// view models rendered by the site: comparison narratives, meta descriptions,
// hub pages, structured data and the home page defaults.
package content

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
)

const (
	minimalDifferencePct = 5
	elongationRatio      = 1.15
	coverageSubstantial  = 40
	coverageBalanced     = 25
)

var shapeDescriptions = map[diamond.Shape]string{
	diamond.Round:    "classic round brilliant cut",
	diamond.Oval:     "elegant elongated oval",
	diamond.Princess: "modern square princess cut",
	diamond.Cushion:  "romantic cushion cut with rounded corners",
	diamond.Emerald:  "sophisticated emerald cut with step facets",
	diamond.Asscher:  "vintage square asscher cut",
	diamond.Radiant:  "brilliant radiant cut",
	diamond.Pear:     "distinctive teardrop pear shape",
	diamond.Marquise: "dramatic elongated marquise",
	diamond.Heart:    "romantic heart shape",
}

// ShapeDescription returns the short phrase used in elongation clauses.
func ShapeDescription(s diamond.Shape) string {
	if d, ok := shapeDescriptions[s]; ok {
		return d
	}
	return string(s)
}

// Description is the generated copy for one comparison.
type Description struct {
	Text     string               `json:"text"`
	Meta     string               `json:"meta_description"`
	Analysis *comparison.Analysis `json:"analysis,omitempty"`
}

// Missing reports whether dimension data was unavailable for either side.
func (d Description) Missing() bool { return d.Analysis == nil }

// Paragraphs splits Text on blank lines.
func (d Description) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(d.Text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Generator renders comparison copy from the dimension table.
type Generator struct {
	lookup diamond.Lookup
}

// NewGenerator returns a Generator reading dimensions from lookup.
func NewGenerator(lookup diamond.Lookup) *Generator {
	return &Generator{lookup: lookup}
}

// Describe produces both the long text and the meta description. A missing
// dimension row on either side yields the fallback sentences and a nil
// Analysis; it is never an error.
func (g *Generator) Describe(c comparison.Comparison) Description {
	an, err := comparison.Analyze(c, g.lookup)
	if err != nil {
		return Description{Text: fallbackText(c), Meta: fallbackMeta(c)}
	}
	return Description{Text: comparisonText(an), Meta: metaDescription(an), Analysis: &an}
}

// ComparisonText returns the long-form narrative for c.
func (g *Generator) ComparisonText(c comparison.Comparison) string {
	return g.Describe(c).Text
}

// MetaDescription returns the one-sentence summary for c.
func (g *Generator) MetaDescription(c comparison.Comparison) string {
	return g.Describe(c).Meta
}

func fallbackText(c comparison.Comparison) string {
	return fmt.Sprintf("Compare a %s carat %s diamond to a %s carat %s diamond using our visual comparison tool.",
		c.A.Carat.Label(), c.A.Shape, c.B.Carat.Label(), c.B.Shape)
}

func fallbackMeta(c comparison.Comparison) string {
	return fmt.Sprintf("Compare %sct %s vs %sct %s diamonds. See actual size differences with our visual comparison tool.",
		c.A.Carat.Label(), c.A.Shape, c.B.Carat.Label(), c.B.Shape)
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func comparisonText(an comparison.Analysis) string {
	c := an.Comparison
	a, b := an.A, an.B
	larger, smaller := an.Larger()
	var sb strings.Builder

	opening := fmt.Sprintf("When comparing a %s carat %s to a %s carat %s",
		a.Carat.Label(), a.Shape.Title(), b.Carat.Label(), b.Shape.Title())
	switch {
	case c.SameShape() && c.SameCarat():
		fmt.Fprintf(&sb, "%s, they are identical in both weight and dimensions. ", opening)
	case an.Percent < minimalDifferencePct:
		fmt.Fprintf(&sb, "%s, the visual size difference is minimal. Both diamonds occupy nearly the same surface area (within %d%%), making them appear almost identical when viewed face-up. ",
			opening, an.Percent)
	default:
		fmt.Fprintf(&sb, "%s, the %s carat %s appears visually larger. It has a face-up surface area that is approximately %d%% larger than the %s carat %s. ",
			opening, larger.Carat.Label(), larger.Shape.Title(), an.Percent, smaller.Carat.Label(), smaller.Shape.Title())
	}

	switch {
	case !c.SameShape() && an.Percent > minimalDifferencePct:
		longer, shorter := an.Longer()
		if longer.Dimensions.Width > shorter.Dimensions.Width*elongationRatio {
			fmt.Fprintf(&sb, "The %s measures %smm in length, creating a more elongated appearance compared to the %s at %smm. ",
				ShapeDescription(longer.Shape), mm(longer.Dimensions.Width),
				ShapeDescription(shorter.Shape), mm(shorter.Dimensions.Width))
		}
	case c.SameShape() && !c.SameCarat():
		gain := math.Abs(larger.Dimensions.Width - smaller.Dimensions.Width)
		fmt.Fprintf(&sb, "You gain approximately %smm in width by choosing the %s carat %s over the %s carat version. ",
			strconv.FormatFloat(gain, 'f', 1, 64), larger.Carat.Label(), larger.Shape.Title(), smaller.Carat.Label())
	}

	sb.WriteString("\n\nDetailed Measurements:\n\n")
	fmt.Fprintf(&sb, "The %s carat %s diamond measures %smm × %smm, ",
		a.Carat.Label(), a.Shape, mm(a.Dimensions.Width), mm(a.Dimensions.Height))
	fmt.Fprintf(&sb, "while the %s carat %s measures %smm × %smm. ",
		b.Carat.Label(), b.Shape, mm(b.Dimensions.Width), mm(b.Dimensions.Height))

	covered, coverage := an.Coverage()
	pct := int(math.Round(coverage))
	switch {
	case coverage > coverageSubstantial:
		fmt.Fprintf(&sb, "The %s carat %s covers approximately %d%% of the width of an average finger (size 6.5), creating a substantial, eye-catching presence.",
			covered.Carat.Label(), covered.Shape, pct)
	case coverage > coverageBalanced:
		fmt.Fprintf(&sb, "On an average finger (size 6.5), this diamond occupies about %d%% of the finger width, offering a balanced and elegant look.", pct)
	default:
		fmt.Fprintf(&sb, "This diamond creates a delicate appearance, covering about %d%% of an average finger width (size 6.5).", pct)
	}

	sb.WriteString("\n\nShopping Considerations:\n\n")
	if !c.SameShape() {
		fmt.Fprintf(&sb, "Beyond size, consider that %s diamonds tend to have different brilliance patterns compared to %s cuts. ", a.Shape, b.Shape)
	}
	sb.WriteString("Use the interactive visual tool above to see these diamonds side-by-side with a US dime for real-world scale reference. The measurements shown are based on well-cut diamonds with standard proportions.")

	return sb.String()
}

func metaDescription(an comparison.Analysis) string {
	larger, _ := an.Larger()
	return fmt.Sprintf("Compare %sct %s vs %sct %s. The %sct %s is %d%% larger. See actual size with measurements.",
		an.A.Carat.Label(), an.A.Shape, an.B.Carat.Label(), an.B.Shape,
		larger.Carat.Label(), larger.Shape, an.Percent)
}
