package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/usercount/internal/core"
)

type dimsOptions struct {
	column string
	json   bool
}

func newDimsCmd(global *globalOptions) *cobra.Command {
	opts := &dimsOptions{}

	cmd := &cobra.Command{
		Use:   "dims FILE",
		Short: "Show the filter choices of a file",
		Long: `Print the distinct dates, locations, location types and SSIDs of a file,
and the location type selected by default.

Examples:
  usercount dims week1.csv
  usercount dims week1.csv --column "Location Name"
  usercount dims week1.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDims(cmd, args[0], opts, global)
		},
	}

	cmd.Flags().StringVar(&opts.column, "column", "", "print the distinct values of one column, one per line")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print as JSON")
	return cmd
}

func runDims(cmd *cobra.Command, path string, opts *dimsOptions, global *globalOptions) error {
	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), global.noColor)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	analyzer, err := core.NewAnalyzer(core.AnalyzerConfig{})
	if err != nil {
		return err
	}
	ds, err := analyzer.LoadFile(cmd.Context(), filepath.Base(path), "", data)
	if err != nil {
		p.UserError(filepath.Base(path), err)
		return err
	}

	if opts.column != "" {
		if _, ok := (core.Row{}).Value(opts.column); !ok {
			return fmt.Errorf("unknown column %q: choose one of %s", opts.column, strings.Join(core.RequiredColumns, ", "))
		}
		values := core.DistinctValues(ds, opts.column)
		if opts.json {
			return encodeJSON(cmd, values)
		}
		for _, v := range values {
			p.Print("%s", v)
		}
		return nil
	}

	dims := ds.Dimensions()
	if opts.json {
		return encodeJSON(cmd, dims)
	}

	p.Header(ds.String())
	rows := [][]string{
		{core.ColLocalDate, strconv.Itoa(len(dims.Dates)), strings.Join(dims.Dates, ", ")},
		{core.ColLocationName, strconv.Itoa(len(dims.Locations)), strings.Join(dims.Locations, ", ")},
		{core.ColLocationType, strconv.Itoa(len(dims.LocationTypes)), strings.Join(dims.LocationTypes, ", ")},
		{core.ColSSID, strconv.Itoa(len(dims.SSIDs)), strings.Join(dims.SSIDs, ", ")},
	}
	if err := p.Table([]string{"Column", "Count", "Values"}, rows); err != nil {
		return err
	}
	p.Print("\nDefault location type: %s", dims.DefaultLocationType)
	return nil
}

func encodeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
