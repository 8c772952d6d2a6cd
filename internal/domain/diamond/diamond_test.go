package diamond

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/CaratCompare/pkg/errors"
)

func TestShapes_DeclaredOrder(t *testing.T) {
	assert.Equal(t, []Shape{Round, Princess, Cushion, Emerald, Asscher, Oval, Pear, Marquise, Radiant, Heart}, Shapes())

	s := Shapes()
	s[0] = "mutated"
	assert.Equal(t, Round, Shapes()[0])
}

func TestParseShape(t *testing.T) {
	s, err := ParseShape("oval")
	require.NoError(t, err)
	assert.Equal(t, Oval, s)

	for _, raw := range []string{"", "Round", "trillion", "round "} {
		_, err := ParseShape(raw)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidShape), raw)
	}
}

func TestShape_Title(t *testing.T) {
	assert.Equal(t, "Round", Round.Title())
	assert.Equal(t, "Marquise", Marquise.Title())
	assert.Equal(t, "", Shape("").Title())
}

func TestShape_Family(t *testing.T) {
	assert.Equal(t, FamilyCircle, Round.Family())
	for _, s := range []Shape{Oval, Pear, Marquise} {
		assert.Equal(t, FamilyEllipse, s.Family(), s)
	}
	for _, s := range []Shape{Princess, Asscher, Cushion, Radiant, Emerald} {
		assert.Equal(t, FamilyRectangle, s.Family(), s)
	}
	assert.Equal(t, FamilyHeart, Heart.Family())
	assert.Equal(t, FamilyRectangle, Shape("trillion").Family())
}

func TestValidCarats(t *testing.T) {
	cs := ValidCarats()
	require.Len(t, cs, 16)
	assert.Equal(t, Carat(0.25), cs[0])
	assert.Equal(t, Carat(4), cs[15])
	for i := 1; i < len(cs); i++ {
		assert.InDelta(t, 0.25, float64(cs[i]-cs[i-1]), 1e-9)
	}
	assert.True(t, Carat(1.75).IsValid())
	assert.False(t, Carat(0.6).IsValid())
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in   float64
		want Carat
	}{
		{1.0, 1.0},
		{0.6, 0.5},
		{0.63, 0.75},
		{0.375, 0.25},
		{0.625, 0.5},
		{1.125, 1.0},
		{0, 0.25},
		{-3, 0.25},
		{9, 4},
		{4.1, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Snap(tt.in), "Snap(%v)", tt.in)
	}
}

func TestCarat_Formatting(t *testing.T) {
	tests := []struct {
		c          Carat
		str, label string
		key        string
	}{
		{1, "1", "1", "1.00"},
		{4, "4", "4", "4.00"},
		{1.5, "1.5", "1.5", "1.50"},
		{0.25, "0.25", "0.25", "0.25"},
		{0.75, "0.75", "0.75", "0.75"},
		{2.5, "2.5", "2.5", "2.50"},
		{0.6, "0.6", "0.6", "0.60"},
		{1.333, "1.33", "1.333", "1.33"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.str, tt.c.String())
		assert.Equal(t, tt.label, tt.c.Label())
		assert.Equal(t, tt.key, tt.c.Key())
	}
}

func TestParseCarat(t *testing.T) {
	c, err := ParseCarat("1.5")
	require.NoError(t, err)
	assert.Equal(t, Carat(1.5), c)

	c, err = ParseCarat("0.6")
	require.NoError(t, err)
	assert.Equal(t, Carat(0.6), c)

	for _, raw := range []string{"", "abc", "1.2.3", "0.1", "4.25", "5"} {
		_, err := ParseCarat(raw)
		assert.Error(t, err, raw)
	}
}

func TestAdjacent(t *testing.T) {
	lo, hasLo, hi, hasHi := Adjacent(1)
	assert.True(t, hasLo)
	assert.True(t, hasHi)
	assert.Equal(t, Carat(0.75), lo)
	assert.Equal(t, Carat(1.25), hi)

	_, hasLo, hi, hasHi = Adjacent(0.25)
	assert.False(t, hasLo)
	assert.True(t, hasHi)
	assert.Equal(t, Carat(0.5), hi)

	lo, hasLo, _, hasHi = Adjacent(4)
	assert.True(t, hasLo)
	assert.False(t, hasHi)
	assert.Equal(t, Carat(3.75), lo)

	_, hasLo, _, hasHi = Adjacent(0.6)
	assert.False(t, hasLo)
	assert.False(t, hasHi)
}

func TestDefaultTable_Complete(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)
	assert.Equal(t, 160, table.Len())

	for _, s := range Shapes() {
		for _, c := range ValidCarats() {
			d, err := table.Lookup(s, c)
			require.NoError(t, err, "%s@%s", s, c.Key())
			assert.Greater(t, d.Width, 0.0)
			assert.Greater(t, d.Height, 0.0)
			assert.GreaterOrEqual(t, d.Width, d.Height, "width is the long axis for %s", s)
		}
	}

	d, err := table.Lookup(Round, 1)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 6.5, Height: 6.5}, d)
}

func TestTable_LookupMiss(t *testing.T) {
	table := MustDefaultTable()

	_, err := table.Lookup(Round, 0.6)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrDimensionsNotFound))
	assert.Contains(t, err.Error(), "round@0.60")

	_, err = table.Lookup("trillion", 1)
	assert.True(t, IsNotFound(err))
}

func TestNewTable_RejectsNonPositive(t *testing.T) {
	_, err := NewTable(map[Shape]map[string]Dimensions{Round: {"1.00": {Width: 0, Height: 6.5}}})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDimensionsMalformed))
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "sizes.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("round:\n  \"1.00\": {width: 6.4, height: 6.4}\n"), 0o600))
	table, err := LoadTable(yamlPath)
	require.NoError(t, err)
	d, err := table.Lookup(Round, 1)
	require.NoError(t, err)
	assert.Equal(t, 6.4, d.Width)
	_, err = table.Lookup(Oval, 1)
	assert.True(t, IsNotFound(err))

	jsonPath := filepath.Join(dir, "sizes.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"oval": {"1.00": {"width": 7.7, "height": 5.7}}}`), 0o600))
	table, err = LoadTable(jsonPath)
	require.NoError(t, err)
	d, err = table.Lookup(Oval, 1)
	require.NoError(t, err)
	assert.Equal(t, 5.7, d.Height)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte(`{"oval": {"1.00": {"depth": 1}}}`), 0o600))
	_, err = LoadTable(badPath)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDimensionsMalformed))

	_, err = LoadTable(filepath.Join(dir, "missing.json"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigError))

	table, err = LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, 160, table.Len())
}
