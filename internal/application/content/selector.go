package content

import (
	"math/rand"
	"sync"

	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/internal/domain/diamond"
)

// Selector chooses the pair shown on the home page when the visitor supplied
// no parameters.
type Selector interface {
	Pick() comparison.Comparison
}

// RandomSelector picks two distinct valid sides uniformly at random. It is
// safe for concurrent use.
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector seeds a RandomSelector. Equal seeds yield equal sequences.
func NewRandomSelector(seed int64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomSelector) side() comparison.Side {
	carats, shapes := diamond.ValidCarats(), diamond.Shapes()
	return comparison.Side{
		Carat: carats[r.rng.Intn(len(carats))],
		Shape: shapes[r.rng.Intn(len(shapes))],
	}
}

// Pick returns a pair whose sides differ in carat, shape or both. The pair is
// left in the order drawn.
func (r *RandomSelector) Pick() comparison.Comparison {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.side()
	b := r.side()
	for a == b {
		b = r.side()
	}
	return comparison.Comparison{A: a, B: b}
}

// FixedSelector always returns the same pair.
type FixedSelector comparison.Comparison

// Pick implements Selector.
func (f FixedSelector) Pick() comparison.Comparison {
	return comparison.Comparison(f)
}
