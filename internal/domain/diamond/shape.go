// Package diamond holds the shared diamond catalogue: the closed set of
// shapes, the valid carat increments and the dimension table that maps a
// (shape, carat) pair to face-up millimetre measurements.
package diamond

import (
	"strings"

	apperrors "github.com/turtacn/CaratCompare/pkg/errors"
)

// Shape is a lowercase diamond cut token such as "round" or "oval".
type Shape string

const (
	Round    Shape = "round"
	Princess Shape = "princess"
	Cushion  Shape = "cushion"
	Emerald  Shape = "emerald"
	Asscher  Shape = "asscher"
	Oval     Shape = "oval"
	Pear     Shape = "pear"
	Marquise Shape = "marquise"
	Radiant  Shape = "radiant"
	Heart    Shape = "heart"
)

// shapes is the declared order. Enumeration and hub pages iterate in this order.
var shapes = []Shape{Round, Princess, Cushion, Emerald, Asscher, Oval, Pear, Marquise, Radiant, Heart}

// Shapes returns the ten shapes in declared order. The slice is a copy.
func Shapes() []Shape {
	out := make([]Shape, len(shapes))
	copy(out, shapes)
	return out
}

// IsValid reports whether s is one of the ten known shapes.
func (s Shape) IsValid() bool {
	for _, v := range shapes {
		if v == s {
			return true
		}
	}
	return false
}

// ParseShape validates a raw token. Matching is exact; "Round" is rejected.
func ParseShape(raw string) (Shape, error) {
	s := Shape(raw)
	if !s.IsValid() {
		return "", apperrors.New(apperrors.ErrCodeInvalidShape, "unknown shape").WithDetail(raw)
	}
	return s, nil
}

func (s Shape) String() string { return string(s) }

// Title returns the display form with the first letter upper-cased.
func (s Shape) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Family groups shapes by the formula used to approximate face-up area.
type Family int

const (
	// FamilyRectangle is width x height. Also the fallback for unknown shapes.
	FamilyRectangle Family = iota
	// FamilyCircle is pi * (w/2)^2.
	FamilyCircle
	// FamilyEllipse is pi * (w/2) * (h/2).
	FamilyEllipse
	// FamilyHeart is width x height x 0.85.
	FamilyHeart
)

// Family returns the area family of s.
func (s Shape) Family() Family {
	switch s {
	case Round:
		return FamilyCircle
	case Oval, Marquise, Pear:
		return FamilyEllipse
	case Heart:
		return FamilyHeart
	default:
		return FamilyRectangle
	}
}
