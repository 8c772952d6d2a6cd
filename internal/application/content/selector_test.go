package content

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomSelector_Deterministic(t *testing.T) {
	a, b := NewRandomSelector(42), NewRandomSelector(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Pick(), b.Pick())
	}
}

func TestRandomSelector_DistinctValidSides(t *testing.T) {
	sel := NewRandomSelector(7)
	for i := 0; i < 500; i++ {
		c := sel.Pick()
		assert.False(t, c.Identical())
		assert.True(t, c.A.Carat.IsValid())
		assert.True(t, c.B.Carat.IsValid())
		assert.True(t, c.A.Shape.IsValid())
		assert.True(t, c.B.Shape.IsValid())
	}
}

func TestRandomSelector_Concurrent(t *testing.T) {
	sel := NewRandomSelector(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.False(t, sel.Pick().Identical())
			}
		}()
	}
	wg.Wait()
}
