package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

func newSlugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slug",
		Short: "Encode and decode comparison slugs",
	}

	var canonical bool
	encodeCmd := &cobra.Command{
		Use:     "encode <carat1> <shape1> <carat2> <shape2>",
		Short:   "Encode two diamonds as a comparison slug",
		Example: "  caratctl slug encode 1.5 oval 1 round --canonical",
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, err := encodeSlug(args[0], args[1], args[2], args[3], canonical)
			if err != nil {
				return err
			}
			return PrintResult(cmd, slug)
		},
	}
	encodeCmd.Flags().BoolVar(&canonical, "canonical", false, "print the sitemap ordering of the pair")

	decodeCmd := &cobra.Command{
		Use:   "decode <slug>",
		Short: "Decode a comparison slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := comparison.Decode(args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, newDecodedSlug(c))
		},
	}

	cmd.AddCommand(encodeCmd, decodeCmd)
	return cmd
}

// encodeSlug formats the pair in argument order. With canonical set the
// slug must also decode, and the smaller side comes first.
func encodeSlug(carat1, shape1, carat2, shape2 string, canonical bool) (string, error) {
	slug, ok := comparison.FromQuery(carat1, shape1, carat2, shape2)
	if !ok {
		return "", errors.New(errors.ErrCodeValidation, "carats must be numbers and shapes one of the ten supported shapes").
			WithDetail(fmt.Sprintf("%s %s %s %s", carat1, shape1, carat2, shape2))
	}
	if !canonical {
		return slug, nil
	}
	c, err := comparison.Decode(slug)
	if err != nil {
		return "", err
	}
	return c.Canonical().Slug(), nil
}

// DecodedSlug is the output of "slug decode".
type DecodedSlug struct {
	Slug          string  `json:"slug"`
	Carat1        float64 `json:"carat1"`
	Shape1        string  `json:"shape1"`
	Carat2        float64 `json:"carat2"`
	Shape2        string  `json:"shape2"`
	CanonicalSlug string  `json:"canonical_slug"`
	Canonical     bool    `json:"canonical"`
}

func newDecodedSlug(c comparison.Comparison) DecodedSlug {
	return DecodedSlug{
		Slug:          c.Slug(),
		Carat1:        c.A.Carat.Float64(),
		Shape1:        c.A.Shape.String(),
		Carat2:        c.B.Carat.Float64(),
		Shape2:        c.B.Shape.String(),
		CanonicalSlug: c.Canonical().Slug(),
		Canonical:     c.IsCanonical(),
	}
}

func (d DecodedSlug) String() string {
	return fmt.Sprintf("%vct %s vs %vct %s (canonical: %s)", d.Carat1, d.Shape1, d.Carat2, d.Shape2, d.CanonicalSlug)
}

func (d DecodedSlug) TableHeaders() []string {
	return []string{"Side", "Carat", "Shape"}
}

func (d DecodedSlug) TableRows() [][]string {
	return [][]string{
		{"A", fmt.Sprint(d.Carat1), d.Shape1},
		{"B", fmt.Sprint(d.Carat2), d.Shape2},
	}
}
