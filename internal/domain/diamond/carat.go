package diamond

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MinCarat and MaxCarat bound every carat accepted anywhere on the site.
	MinCarat Carat = 0.25
	MaxCarat Carat = 4.0
	// CaratStep is the increment between valid carats.
	CaratStep Carat = 0.25
)

// Carat is a diamond weight in carats.
type Carat float64

var validCarats = func() []Carat {
	out := make([]Carat, 0, 16)
	for i := 1; i <= 16; i++ {
		out = append(out, Carat(float64(i)*float64(CaratStep)))
	}
	return out
}()

// ValidCarats returns the sixteen valid increments in ascending order.
func ValidCarats() []Carat {
	out := make([]Carat, len(validCarats))
	copy(out, validCarats)
	return out
}

// IsValid reports whether c is exactly one of the valid increments.
func (c Carat) IsValid() bool {
	for _, v := range validCarats {
		if v == c {
			return true
		}
	}
	return false
}

// InRange reports whether c lies within [MinCarat, MaxCarat].
func (c Carat) InRange() bool {
	return c >= MinCarat && c <= MaxCarat
}

// Snap clamps x into range and returns the nearest valid increment. On an
// exact tie the lower increment wins.
func Snap(x float64) Carat {
	if math.IsNaN(x) {
		return MinCarat
	}
	clamped := math.Min(math.Max(x, float64(MinCarat)), float64(MaxCarat))
	best := validCarats[0]
	bestDiff := math.Abs(float64(best) - clamped)
	for _, v := range validCarats[1:] {
		d := math.Abs(float64(v) - clamped)
		if d < bestDiff {
			best, bestDiff = v, d
		}
	}
	return best
}

// String renders c for URLs: integers without a decimal point, others with
// at most two decimals and no trailing zeros.
func (c Carat) String() string {
	f := float64(c)
	if f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Label renders c in the shortest form, as shown in page copy ("1.5", "0.75").
func (c Carat) Label() string {
	return strconv.FormatFloat(float64(c), 'f', -1, 64)
}

// Key renders c with exactly two decimals, the dimension table key ("1.00").
func (c Carat) Key() string {
	return fmt.Sprintf("%.2f", float64(c))
}

// Float64 returns c as a float64.
func (c Carat) Float64() float64 { return float64(c) }

// ParseCarat parses a decimal carat value and checks it lies in range.
// It does not snap.
func ParseCarat(raw string) (Carat, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("diamond: carat %q is not a number: %w", raw, err)
	}
	c := Carat(f)
	if !c.InRange() {
		return 0, fmt.Errorf("diamond: carat %q outside [%s, %s]", raw, MinCarat, MaxCarat)
	}
	return c, nil
}

// Adjacent returns the valid increments immediately below and above c.
// ok flags are false at the ends of the range or when c is not valid.
func Adjacent(c Carat) (lower Carat, hasLower bool, upper Carat, hasUpper bool) {
	for i, v := range validCarats {
		if v != c {
			continue
		}
		if i > 0 {
			lower, hasLower = validCarats[i-1], true
		}
		if i < len(validCarats)-1 {
			upper, hasUpper = validCarats[i+1], true
		}
		return
	}
	return
}
