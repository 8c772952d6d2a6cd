package comparison

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaratCompare/internal/domain/diamond"
)

func TestFaceUpArea(t *testing.T) {
	assert.InDelta(t, 33.18, FaceUpArea(diamond.Round, diamond.Dimensions{Width: 6.5, Height: 6.5}), 0.01)
	assert.InDelta(t, 30.25, FaceUpArea(diamond.Princess, diamond.Dimensions{Width: 5.5, Height: 5.5}), 1e-9)
	assert.InDelta(t, 38.675, FaceUpArea(diamond.Heart, diamond.Dimensions{Width: 7, Height: 6.5}), 1e-9)
	assert.InDelta(t, math.Pi*3.85*2.85, FaceUpArea(diamond.Oval, diamond.Dimensions{Width: 7.7, Height: 5.7}), 1e-9)
	assert.InDelta(t, 35.0, FaceUpArea(diamond.Emerald, diamond.Dimensions{Width: 7, Height: 5}), 1e-9)
	assert.InDelta(t, 12.0, FaceUpArea("trillion", diamond.Dimensions{Width: 4, Height: 3}), 1e-9)
}

func TestPercentDifference_Symmetric(t *testing.T) {
	pairs := [][2]float64{{33.18, 30.25}, {10, 20}, {5, 5}, {1, 1.049}}
	for _, p := range pairs {
		assert.Equal(t, PercentDifference(p[0], p[1]), PercentDifference(p[1], p[0]))
	}
	assert.Equal(t, 100, PercentDifference(10, 20))
	assert.Equal(t, 0, PercentDifference(5, 5))
	assert.Equal(t, 10, PercentDifference(33.18, 30.25))
	assert.Equal(t, 0, PercentDifference(0, 5))
}

func TestFingerCoverage(t *testing.T) {
	assert.InDelta(t, 50.0, FingerCoverage(diamond.Dimensions{Width: 8.5, Height: 5.5}), 1e-9)
	assert.InDelta(t, 50.0, FingerCoverage(diamond.Dimensions{Width: 5.5, Height: 8.5}), 1e-9)
}

func TestAnalyze(t *testing.T) {
	table := diamond.MustDefaultTable()

	an, err := Analyze(Of(1, diamond.Round, 1, diamond.Princess), table)
	require.NoError(t, err)
	assert.Equal(t, diamond.Princess, an.A.Shape)
	assert.InDelta(t, 30.25, an.A.Area, 1e-9)
	assert.InDelta(t, 33.18, an.B.Area, 0.01)
	assert.Equal(t, 10, an.Percent)

	larger, smaller := an.Larger()
	assert.Equal(t, diamond.Round, larger.Shape)
	assert.Equal(t, diamond.Princess, smaller.Shape)

	longer, shorter := an.Longer()
	assert.Equal(t, diamond.Round, longer.Shape)
	assert.Equal(t, diamond.Princess, shorter.Shape)

	covered, pct := an.Coverage()
	assert.Equal(t, diamond.Round, covered.Shape)
	assert.InDelta(t, 6.5/17*100, pct, 1e-9)
}

func TestAnalyze_EqualAreaAttributesSideB(t *testing.T) {
	an, err := Analyze(Comparison{A: Side{1, diamond.Princess}, B: Side{1, diamond.Cushion}}, diamond.MustDefaultTable())
	require.NoError(t, err)
	larger, _ := an.Larger()
	assert.Equal(t, diamond.Cushion, larger.Shape)
	assert.Equal(t, 0, an.Percent)
}

func TestAnalyze_MissingData(t *testing.T) {
	_, err := Analyze(Comparison{A: Side{0.6, diamond.Round}, B: Side{1, diamond.Oval}}, diamond.MustDefaultTable())
	require.Error(t, err)
	assert.True(t, diamond.IsNotFound(err))
}
