package diamond

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/turtacn/CaratCompare/pkg/errors"
)

//go:embed data/diamond_sizes.json
var embeddedSizes []byte

// Dimensions are face-up measurements in millimetres. Width is the longer
// axis for elongated shapes.
type Dimensions struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// ErrDimensionsNotFound is returned by Lookup when the table has no entry for
// the requested shape and carat.
var ErrDimensionsNotFound = apperrors.New(apperrors.ErrCodeDimensionsNotFound, "no dimensions for shape and carat")

// Lookup resolves dimensions for a (shape, carat) pair.
type Lookup interface {
	Lookup(shape Shape, carat Carat) (Dimensions, error)
}

// Table is the two-level dimension table keyed by shape and then by the
// two-decimal carat key. It is read-only after construction.
type Table struct {
	rows map[Shape]map[string]Dimensions
}

// NewTable builds a Table from raw rows, rejecting non-positive measurements.
func NewTable(rows map[Shape]map[string]Dimensions) (*Table, error) {
	cp := make(map[Shape]map[string]Dimensions, len(rows))
	for shape, byCarat := range rows {
		inner := make(map[string]Dimensions, len(byCarat))
		for key, d := range byCarat {
			if d.Width <= 0 || d.Height <= 0 {
				return nil, apperrors.New(apperrors.ErrCodeDimensionsMalformed, "dimensions must be positive").
					WithDetail(fmt.Sprintf("%s@%s", shape, key))
			}
			inner[key] = d
		}
		cp[shape] = inner
	}
	return &Table{rows: cp}, nil
}

// Lookup returns the dimensions for shape at carat. A miss, including an
// unknown shape or a carat with no row such as 0.6, yields an error that
// matches ErrDimensionsNotFound under errors.Is.
func (t *Table) Lookup(shape Shape, carat Carat) (Dimensions, error) {
	if byCarat, ok := t.rows[shape]; ok {
		if d, ok := byCarat[carat.Key()]; ok {
			return d, nil
		}
	}
	return Dimensions{}, ErrDimensionsNotFound.WithDetail(fmt.Sprintf("%s@%s", shape, carat.Key()))
}

// Len returns the number of (shape, carat) rows.
func (t *Table) Len() int {
	n := 0
	for _, byCarat := range t.rows {
		n += len(byCarat)
	}
	return n
}

// IsNotFound reports whether err came from a Lookup miss.
func IsNotFound(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeDimensionsNotFound)
}

// DefaultTable parses the embedded dimension table.
func DefaultTable() (*Table, error) {
	return parseTable(embeddedSizes, false)
}

// MustDefaultTable is DefaultTable for package initialisation and tests.
func MustDefaultTable() *Table {
	t, err := DefaultTable()
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTable reads a replacement table from path. Files ending in .yaml or
// .yml are decoded as YAML, anything else as JSON. An empty path returns the
// embedded table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfigError, "read dimension table").WithDetail(path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return parseTable(raw, ext == ".yaml" || ext == ".yml")
}

func parseTable(raw []byte, isYAML bool) (*Table, error) {
	rows := map[Shape]map[string]Dimensions{}
	var err error
	if isYAML {
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		err = dec.Decode(&rows)
	} else {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		err = dec.Decode(&rows)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDimensionsMalformed, "decode dimension table")
	}
	return NewTable(rows)
}
