package comparison

import (
	"math"

	"github.com/turtacn/CaratCompare/internal/domain/diamond"
)

const (
	// heartFill corrects the bounding rectangle for the heart outline.
	heartFill = 0.85
	// FingerWidthMM is the width of an average size 6.5 finger.
	FingerWidthMM = 17.0
)

// FaceUpArea approximates the visible area in mm² of a diamond of shape with
// dimensions d.
func FaceUpArea(shape diamond.Shape, d diamond.Dimensions) float64 {
	switch shape.Family() {
	case diamond.FamilyCircle:
		r := d.Width / 2
		return math.Pi * r * r
	case diamond.FamilyEllipse:
		return math.Pi * (d.Width / 2) * (d.Height / 2)
	case diamond.FamilyHeart:
		return d.Width * d.Height * heartFill
	default:
		return d.Width * d.Height
	}
}

// PercentDifference is |a1-a2| / min(a1, a2) * 100 rounded to an integer.
// It is symmetric in its arguments.
func PercentDifference(a1, a2 float64) int {
	lo := math.Min(a1, a2)
	if lo <= 0 {
		return 0
	}
	return int(math.Round(math.Abs(a1-a2) / lo * 100))
}

// FingerCoverage is the share of an average finger width covered by the
// longer axis of d, in percent.
func FingerCoverage(d diamond.Dimensions) float64 {
	return math.Max(d.Width, d.Height) / FingerWidthMM * 100
}

// Measured is a side with its resolved dimensions and area.
type Measured struct {
	Side
	Dimensions diamond.Dimensions `json:"dimensions"`
	Area       float64            `json:"area"`
}

// Analysis is the geometric comparison of both sides.
type Analysis struct {
	Comparison Comparison `json:"comparison"`
	A          Measured   `json:"a"`
	B          Measured   `json:"b"`
	Percent    int        `json:"percent_difference"`
}

// Analyze resolves both sides through lookup. A missing row on either side
// returns the lookup error unchanged.
func Analyze(c Comparison, lookup diamond.Lookup) (Analysis, error) {
	da, err := lookup.Lookup(c.A.Shape, c.A.Carat)
	if err != nil {
		return Analysis{}, err
	}
	db, err := lookup.Lookup(c.B.Shape, c.B.Carat)
	if err != nil {
		return Analysis{}, err
	}
	a := Measured{Side: c.A, Dimensions: da, Area: FaceUpArea(c.A.Shape, da)}
	b := Measured{Side: c.B, Dimensions: db, Area: FaceUpArea(c.B.Shape, db)}
	return Analysis{Comparison: c, A: a, B: b, Percent: PercentDifference(a.Area, b.Area)}, nil
}

// Larger returns the side with the strictly greater area, then the other.
// Equal areas attribute B as larger.
func (an Analysis) Larger() (larger, smaller Measured) {
	if an.A.Area > an.B.Area {
		return an.A, an.B
	}
	return an.B, an.A
}

// Longer returns the side with the strictly greater width, then the other.
func (an Analysis) Longer() (longer, shorter Measured) {
	if an.A.Dimensions.Width > an.B.Dimensions.Width {
		return an.A, an.B
	}
	return an.B, an.A
}

// Coverage returns the side with the strictly greater finger coverage and
// that coverage, or B's when equal.
func (an Analysis) Coverage() (Measured, float64) {
	ca, cb := FingerCoverage(an.A.Dimensions), FingerCoverage(an.B.Dimensions)
	if ca > cb {
		return an.A, ca
	}
	return an.B, cb
}
