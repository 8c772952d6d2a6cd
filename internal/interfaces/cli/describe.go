package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaratCompare/internal/bootstrap"
)

func newDescribeCmd() *cobra.Command {
	var metaOnly bool
	cmd := &cobra.Command{
		Use:     "describe <slug>",
		Short:   "Print the comparison copy for a slug",
		Example: "  caratctl describe 1-round-vs-1.5-round\n  caratctl describe 1-round-vs-1.5-round --meta",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			infra, err := bootstrap.New(cliCtx.Config, cliCtx.Logger)
			if err != nil {
				return err
			}
			page, err := infra.Pages.Compare(args[0])
			if err != nil {
				return err
			}

			d := Description{
				Slug:            page.Comparison.Slug(),
				Title:           page.Heading,
				Text:            page.Description.Text,
				MetaDescription: page.Description.Meta,
				Missing:         page.Description.Missing(),
				metaOnly:        metaOnly,
			}
			if an := page.Description.Analysis; an != nil {
				pct := an.Percent
				d.PercentDifference = &pct
			}
			if d.Missing {
				cliCtx.Logger.Warn("No dimension data for comparison, fallback copy used")
			}
			return PrintResult(cmd, d)
		},
	}
	cmd.Flags().BoolVar(&metaOnly, "meta", false, "print only the meta description")
	return cmd
}

// Description is the output of "describe".
type Description struct {
	Slug              string `json:"slug"`
	Title             string `json:"title"`
	Text              string `json:"text"`
	MetaDescription   string `json:"meta_description"`
	PercentDifference *int   `json:"percent_difference,omitempty"`
	Missing           bool   `json:"missing_dimensions"`

	metaOnly bool
}

func (d Description) String() string {
	if d.metaOnly {
		return d.MetaDescription
	}
	return d.Text
}

func (d Description) TableHeaders() []string {
	return []string{"Field", "Value"}
}

func (d Description) TableRows() [][]string {
	pct := "-"
	if d.PercentDifference != nil {
		pct = strconv.Itoa(*d.PercentDifference) + "%"
	}
	return [][]string{
		{"slug", d.Slug},
		{"title", d.Title},
		{"difference", pct},
		{"meta", d.MetaDescription},
	}
}
