package cli

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/CaratCompare/internal/domain/comparison"
	"github.com/turtacn/CaratCompare/pkg/errors"
)

func newEnumerateCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "enumerate",
		Short: "List the comparison pages in sitemap order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 0 {
				return errors.New(errors.ErrCodeValidation, "limit must be >= 0").WithDetail(strconv.Itoa(limit))
			}
			entries := comparison.Enumerate()
			if limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}
			return PrintResult(cmd, EntryList(entries))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "print at most N entries (0 prints all)")
	return cmd
}

// EntryList is the output of "enumerate". Text output is one slug per line.
type EntryList []comparison.Entry

func (l EntryList) String() string {
	return strings.Join(comparison.Slugs(l), "\n")
}

func (l EntryList) TableHeaders() []string {
	return []string{"#", "Slug", "Tier", "Priority"}
}

func (l EntryList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for i, e := range l {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Slug,
			e.Tier.String(),
			strconv.FormatFloat(e.Priority, 'f', 1, 64),
		})
	}
	return rows
}

type entryJSON struct {
	Slug     string  `json:"slug"`
	Tier     string  `json:"tier"`
	Priority float64 `json:"priority"`
}

func (l EntryList) MarshalJSON() ([]byte, error) {
	out := make([]entryJSON, 0, len(l))
	for _, e := range l {
		out = append(out, entryJSON{Slug: e.Slug, Tier: e.Tier.String(), Priority: e.Priority})
	}
	return json.Marshal(out)
}
