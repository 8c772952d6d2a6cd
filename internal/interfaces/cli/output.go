package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/CaratCompare/pkg/errors"
)

type printer func(w io.Writer, data interface{}) error

var printers = map[string]printer{
	"text":  printText,
	"json":  printJSON,
	"table": printTable,
}

func outputFormats() []string {
	names := make([]string, 0, len(printers))
	for name := range printers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tabular results render as a table under -o table.
type tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult writes data to stdout in the --output format. Commands run
// outside the root command get JSON.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	p := printJSON
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		p = printers[cliCtx.OutputFormat]
	}
	return p(cmd.OutOrStdout(), data)
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, v.String())
		return err
	default:
		_, err := fmt.Fprintf(w, "%+v\n", v)
		return err
	}
}

func printTable(w io.Writer, data interface{}) error {
	t, ok := data.(tabular)
	if !ok {
		return printText(w, data)
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.TableHeaders())
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.AppendBulk(t.TableRows())
	table.Render()
	return nil
}

// PrintError writes err to stderr, prefixed with its code when it has one.
// A nil err prints nothing.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	label := "Error:"
	if code := errors.GetCode(err); code != errors.CodeUnknown {
		label = fmt.Sprintf("Error [%s]:", code)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.RedString(label), err)
}

// PrintSuccess writes msg to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}
