// Package comparison models a two-diamond comparison, its URL slug, the
// prioritised set of comparisons chosen for pre-rendering and the face-up
// geometry used to describe the size difference.
package comparison

import (
	"fmt"

	"github.com/turtacn/CaratCompare/internal/domain/diamond"
)

// Side is one diamond of a comparison.
type Side struct {
	Carat diamond.Carat `json:"carat"`
	Shape diamond.Shape `json:"shape"`
}

// String renders the side as "1.5ct oval".
func (s Side) String() string {
	return fmt.Sprintf("%sct %s", s.Carat.Label(), s.Shape)
}

// Less is the canonical ordering: lighter first, then shape name.
func Less(a, b Side) bool {
	if a.Carat != b.Carat {
		return a.Carat < b.Carat
	}
	return a.Shape < b.Shape
}

// Include is the inclusion test applied to raw enumeration candidates. Exactly
// one of (a, b) and (b, a) passes unless the sides are identical, in which
// case neither does.
func Include(a, b Side) bool {
	return Less(a, b)
}

// Comparison is an ordered pair of sides. Values built with New are
// canonical; values produced by Decode keep the order found in the slug.
type Comparison struct {
	A Side `json:"a"`
	B Side `json:"b"`
}

// New returns the canonical comparison of a and b regardless of argument
// order, so (a, b) and (b, a) encode to the same slug.
func New(a, b Side) Comparison {
	if Less(b, a) {
		a, b = b, a
	}
	return Comparison{A: a, B: b}
}

// Of is New for four loose values.
func Of(c1 diamond.Carat, s1 diamond.Shape, c2 diamond.Carat, s2 diamond.Shape) Comparison {
	return New(Side{Carat: c1, Shape: s1}, Side{Carat: c2, Shape: s2})
}

// IsCanonical reports whether A does not sort after B.
func (c Comparison) IsCanonical() bool {
	return !Less(c.B, c.A)
}

// Canonical returns c with its sides in canonical order.
func (c Comparison) Canonical() Comparison {
	return New(c.A, c.B)
}

// SameShape reports whether both sides share a shape.
func (c Comparison) SameShape() bool { return c.A.Shape == c.B.Shape }

// SameCarat reports whether both sides share a carat weight.
func (c Comparison) SameCarat() bool { return c.A.Carat == c.B.Carat }

// Identical reports whether both sides are the same diamond.
func (c Comparison) Identical() bool { return c.A == c.B }

// Slug encodes c without reordering.
func (c Comparison) Slug() string {
	return Encode(c.A.Carat, c.A.Shape, c.B.Carat, c.B.Shape)
}

func (c Comparison) String() string {
	return c.Slug()
}
