package comparison

import (
	"regexp"
	"strconv"

	"github.com/turtacn/CaratCompare/internal/domain/diamond"
	apperrors "github.com/turtacn/CaratCompare/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^([\d.]+)-([a-z]+)-vs-([\d.]+)-([a-z]+)$`)

// ErrInvalidSlug is returned by Decode for any token that does not name a
// comparison. The HTTP layer renders it as 404.
var ErrInvalidSlug = apperrors.New(apperrors.ErrCodeInvalidSlug, "comparison not found")

// Encode formats two sides as "<carat1>-<shape1>-vs-<carat2>-<shape2>".
// Sides are written in the order given.
func Encode(c1 diamond.Carat, s1 diamond.Shape, c2 diamond.Carat, s2 diamond.Shape) string {
	return c1.String() + "-" + string(s1) + "-vs-" + c2.String() + "-" + string(s2)
}

// Decode parses a slug. It fails when the token does not match the pattern,
// a shape is unknown, a carat does not parse or a carat lies outside
// [0.25, 4]. Carats inside the range are not snapped, so "0.6-round-vs-1-oval"
// decodes with a carat that has no dimension data.
func Decode(token string) (Comparison, error) {
	m := slugPattern.FindStringSubmatch(token)
	if m == nil {
		return Comparison{}, ErrInvalidSlug.WithDetail(token)
	}

	a, ok := decodeSide(m[1], m[2])
	if !ok {
		return Comparison{}, ErrInvalidSlug.WithDetail(token)
	}
	b, ok := decodeSide(m[3], m[4])
	if !ok {
		return Comparison{}, ErrInvalidSlug.WithDetail(token)
	}
	return Comparison{A: a, B: b}, nil
}

func decodeSide(rawCarat, rawShape string) (Side, bool) {
	shape := diamond.Shape(rawShape)
	if !shape.IsValid() {
		return Side{}, false
	}
	carat, err := diamond.ParseCarat(rawCarat)
	if err != nil {
		return Side{}, false
	}
	return Side{Carat: carat, Shape: shape}, true
}

// FromQuery builds a slug from the four legacy query parameters. ok is false
// when a carat does not parse as a number or a shape is unknown; range is not
// checked, Decode does that when the slug is requested.
func FromQuery(carat1, shape1, carat2, shape2 string) (slug string, ok bool) {
	c1, err := strconv.ParseFloat(carat1, 64)
	if err != nil {
		return "", false
	}
	c2, err := strconv.ParseFloat(carat2, 64)
	if err != nil {
		return "", false
	}
	s1, s2 := diamond.Shape(shape1), diamond.Shape(shape2)
	if !s1.IsValid() || !s2.IsValid() {
		return "", false
	}
	return Encode(diamond.Carat(c1), s1, diamond.Carat(c2), s2), true
}
