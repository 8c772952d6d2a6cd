package comparison

import (
	"sort"
	"sync"

	"github.com/turtacn/CaratCompare/internal/domain/diamond"
)

// MaxEntries caps the pre-rendered comparison set.
const MaxEntries = 1200

// Tier is a priority bucket of the enumeration.
type Tier int

const (
	// TierRound covers round-vs-round across popular carats and round against
	// every other shape at the same carat.
	TierRound Tier = iota + 1
	// TierCrossShape covers every shape pair at a popular carat and every
	// cross-shape pair between adjacent popular carats.
	TierCrossShape
	// TierElongated covers same-carat pairs among elongated shapes.
	TierElongated
	// TierMilestone covers every pair across milestone carats.
	TierMilestone
)

// Priority returns the sitemap weight of t.
func (t Tier) Priority() float64 {
	switch t {
	case TierRound:
		return 0.9
	case TierCrossShape:
		return 0.8
	default:
		return 0.7
	}
}

func (t Tier) String() string {
	switch t {
	case TierRound:
		return "round"
	case TierCrossShape:
		return "cross-shape"
	case TierElongated:
		return "elongated"
	case TierMilestone:
		return "milestone"
	default:
		return "unknown"
	}
}

// Entry is one enumerated comparison.
type Entry struct {
	Comparison Comparison `json:"comparison"`
	Slug       string     `json:"slug"`
	Tier       Tier       `json:"tier"`
	Priority   float64    `json:"priority"`
}

// Constants are the carat and shape lists that drive enumeration.
type Constants struct {
	Shapes          []diamond.Shape
	PopularCarats   []diamond.Carat
	ElongatedShapes []diamond.Shape
	ElongatedCarats []diamond.Carat
	MilestoneCarats []diamond.Carat
	Limit           int
}

// DefaultConstants returns the lists the site is generated from.
func DefaultConstants() Constants {
	return Constants{
		Shapes:          diamond.Shapes(),
		PopularCarats:   []diamond.Carat{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2, 2.5, 3},
		ElongatedShapes: []diamond.Shape{diamond.Oval, diamond.Pear, diamond.Emerald, diamond.Marquise, diamond.Radiant},
		ElongatedCarats: []diamond.Carat{0.75, 1, 1.25, 1.5, 2, 2.5, 3},
		MilestoneCarats: []diamond.Carat{1, 1.5, 2, 2.5, 3, 4},
		Limit:           MaxEntries,
	}
}

var (
	defaultOnce    sync.Once
	defaultEntries []Entry
)

// Enumerate returns the default comparison set. The result is computed once
// and copied on every call.
func Enumerate() []Entry {
	defaultOnce.Do(func() {
		defaultEntries = EnumerateWith(DefaultConstants())
	})
	out := make([]Entry, len(defaultEntries))
	copy(out, defaultEntries)
	return out
}

// Slugs returns the slugs of entries in order.
func Slugs(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Slug
	}
	return out
}

type collector struct {
	seen    map[string]struct{}
	entries []Entry
}

func (c *collector) add(cmp Comparison, tier Tier) {
	slug := cmp.Slug()
	if _, dup := c.seen[slug]; dup {
		return
	}
	c.seen[slug] = struct{}{}
	c.entries = append(c.entries, Entry{Comparison: cmp, Slug: slug, Tier: tier, Priority: tier.Priority()})
}

// addIfIncluded appends (a, b) as-is when it passes the inclusion test.
func (c *collector) addIfIncluded(a, b Side, tier Tier) {
	if Include(a, b) {
		c.add(Comparison{A: a, B: b}, tier)
	}
}

// EnumerateWith generates the tiers in order, keeps the first occurrence of
// each slug, stable-sorts by priority descending and truncates to k.Limit.
func EnumerateWith(k Constants) []Entry {
	c := &collector{seen: make(map[string]struct{})}
	side := func(carat diamond.Carat, shape diamond.Shape) Side { return Side{Carat: carat, Shape: shape} }

	for _, c1 := range k.PopularCarats {
		for _, c2 := range k.PopularCarats {
			c.addIfIncluded(side(c1, diamond.Round), side(c2, diamond.Round), TierRound)
		}
		for _, s := range k.Shapes {
			if s != diamond.Round {
				// Round sorts after most shapes, so these are built canonically
				// rather than filtered.
				c.add(New(side(c1, diamond.Round), side(c1, s)), TierRound)
			}
		}
	}

	for _, c1 := range k.PopularCarats {
		for _, s1 := range k.Shapes {
			for _, s2 := range k.Shapes {
				c.addIfIncluded(side(c1, s1), side(c1, s2), TierCrossShape)
			}
		}
	}
	for i := 0; i+1 < len(k.PopularCarats); i++ {
		c1, c2 := k.PopularCarats[i], k.PopularCarats[i+1]
		for _, s1 := range k.Shapes {
			for _, s2 := range k.Shapes {
				if s1 != s2 {
					c.addIfIncluded(side(c1, s1), side(c2, s2), TierCrossShape)
				}
			}
		}
	}

	for _, cr := range k.ElongatedCarats {
		for _, s1 := range k.ElongatedShapes {
			for _, s2 := range k.ElongatedShapes {
				c.addIfIncluded(side(cr, s1), side(cr, s2), TierElongated)
			}
		}
	}

	for _, c1 := range k.MilestoneCarats {
		for _, c2 := range k.MilestoneCarats {
			for _, s1 := range k.Shapes {
				for _, s2 := range k.Shapes {
					c.addIfIncluded(side(c1, s1), side(c2, s2), TierMilestone)
				}
			}
		}
	}

	entries := c.entries
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority > entries[j].Priority
	})
	if k.Limit > 0 && len(entries) > k.Limit {
		entries = entries[:k.Limit]
	}
	return entries
}
