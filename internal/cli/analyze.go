package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/usercount/internal/core"
)

// errNothingAnalysed is returned when no input file could be loaded.
var errNothingAnalysed = errors.New("no file could be analysed")

type analyzeOptions struct {
	dates        []string
	locations    []string
	ssids        []string
	locationType string
	common       bool
	output       string
	json         bool
	workers      int
	maxFileSize  int64
}

func newAnalyzeCmd(global *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Count distinct users per date and location",
		Long: `Load each file, apply the filters and print one table per file plus the
merged table when more than one file is given. A file that cannot be read is
reported and the others are still analysed.

Without --date every date is selected. Without --location or --ssid every
location or SSID of the file is selected. The location type defaults to
"network" when the file has it.

Examples:
  usercount analyze week1.csv
  usercount analyze week1.csv --date 2024-03-01 --location HQ --ssid corp
  usercount analyze a.csv b.xlsx --common --location HQ -o merged_results.csv
  usercount analyze week1.csv --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts, global)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.dates, "date", nil, "date to include (repeatable); default all dates")
	f.StringArrayVar(&opts.locations, "location", nil, "location name to include (repeatable); default all")
	f.StringArrayVar(&opts.ssids, "ssid", nil, "SSID to include (repeatable); default all")
	f.StringVar(&opts.locationType, "location-type", "", "location type; default \"network\" when present")
	f.BoolVar(&opts.common, "common", false, "apply the same locations and SSIDs, chosen from the first file, to all files")
	f.StringVarP(&opts.output, "output", "o", "", "export the merged table (or the only table) to a .csv or .xlsx file")
	f.BoolVar(&opts.json, "json", false, "print results as JSON")
	f.IntVar(&opts.workers, "workers", core.DefaultWorkers, "files analysed in parallel")
	f.Int64Var(&opts.maxFileSize, "max-file-size", core.DefaultMaxFileSize, "largest accepted file in bytes")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions, global *globalOptions) error {
	p := newPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), global.noColor)
	ctx := cmd.Context()

	var exportFormat core.Format
	if opts.output != "" {
		f, err := formatForPath(opts.output)
		if err != nil {
			return err
		}
		exportFormat = f
	}

	analyzer, err := core.NewAnalyzer(core.AnalyzerConfig{
		Workers:     opts.workers,
		MaxFileSize: opts.maxFileSize,
	})
	if err != nil {
		return err
	}

	inputs := loadInputs(ctx, analyzer, args, opts)

	var common *core.CommonFilter
	if opts.common {
		common = commonFilter(inputs, opts)
	}

	batch := analyzer.Recompute(ctx, inputs, common)

	if opts.json {
		if err := writeBatchJSON(cmd, batch); err != nil {
			return err
		}
	} else if err := printBatch(p, batch); err != nil {
		return err
	}

	loaded := 0
	for _, r := range batch.Files {
		if !r.Failed() {
			loaded++
		}
	}
	if loaded == 0 {
		return errNothingAnalysed
	}

	if opts.output != "" {
		table := batch.Merged
		if !batch.HasMerged {
			table = batch.Files[0].Table
		}
		if err := exportTable(opts.output, table, exportFormat); err != nil {
			return err
		}
		if !opts.json {
			p.Print("\nwrote %s (%d rows)", opts.output, len(table))
		}
	}
	return nil
}

// loadInputs reads and loads every path. Read and load failures are kept on
// the input so the batch reports them per file.
func loadInputs(ctx context.Context, analyzer *core.Analyzer, paths []string, opts *analyzeOptions) []core.FileInput {
	inputs := make([]core.FileInput, 0, len(paths))
	for _, path := range paths {
		in := core.FileInput{Name: filepath.Base(path)}

		data, err := os.ReadFile(path)
		if err != nil {
			in.Err = &core.LoadError{FileName: in.Name, Reason: err.Error(), Err: err}
		} else {
			in.Dataset, in.Err = analyzer.LoadFile(ctx, in.Name, "", data)
		}

		in.Settings = fileSettings(in.Dataset, opts)
		inputs = append(inputs, in)
	}
	return inputs
}

// fileSettings turns the flags into one file's settings. Omitted location
// and SSID flags select everything the file contains.
func fileSettings(ds *core.Dataset, opts *analyzeOptions) core.FileSettings {
	settings := core.FileSettings{
		AllDates:     len(opts.dates) == 0,
		Dates:        opts.dates,
		Locations:    opts.locations,
		SSIDs:        opts.ssids,
		LocationType: opts.locationType,
	}
	if ds == nil {
		return settings
	}

	dims := ds.Dimensions()
	if len(settings.Locations) == 0 {
		settings.Locations = dims.Locations
	}
	if len(settings.SSIDs) == 0 {
		settings.SSIDs = dims.SSIDs
	}
	return settings
}

// commonFilter builds the shared filter; omitted flags select every choice
// of the first loaded file.
func commonFilter(inputs []core.FileInput, opts *analyzeOptions) *core.CommonFilter {
	choices, _ := core.CommonChoices(inputs)
	common := &core.CommonFilter{Locations: opts.locations, SSIDs: opts.ssids}
	if len(common.Locations) == 0 {
		common.Locations = choices.Locations
	}
	if len(common.SSIDs) == 0 {
		common.SSIDs = choices.SSIDs
	}
	return common
}

func printBatch(p *printer, batch core.BatchResult) error {
	for _, r := range batch.Files {
		p.Header(r.Name)
		switch {
		case r.Failed():
			p.UserError(r.Name, r.Err)
			continue
		case !r.Complete:
			p.Warning("%s: nothing selected; the file has no matching dates, locations or SSIDs", r.Name)
			continue
		}
		for _, w := range r.Warnings {
			p.Warning("%s: %s", r.Name, w)
		}
		if err := p.ResultTable(r.Table); err != nil {
			return err
		}
	}

	if batch.HasMerged {
		p.Header("Merged")
		return p.ResultTable(batch.Merged)
	}
	return nil
}

// batchOutput is the JSON form of a batch with user-facing errors.
type batchOutput struct {
	Files     []fileOutput     `json:"files"`
	Merged    core.ResultTable `json:"merged,omitempty"`
	HasMerged bool             `json:"hasMerged"`
}

type fileOutput struct {
	core.FileResult
	Error *core.UserMessage `json:"error,omitempty"`
}

func writeBatchJSON(cmd *cobra.Command, batch core.BatchResult) error {
	out := batchOutput{Merged: batch.Merged, HasMerged: batch.HasMerged}
	for _, r := range batch.Files {
		fo := fileOutput{FileResult: r}
		if r.Err != nil {
			msg := core.MapError(r.Err)
			fo.Error = &msg
		}
		out.Files = append(out.Files, fo)
	}

	return encodeJSON(cmd, out)
}

// formatForPath picks the export format from the file extension.
func formatForPath(path string) (core.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return core.FormatCSV, nil
	case ".xlsx":
		return core.FormatSpreadsheet, nil
	default:
		return core.FormatUnknown, fmt.Errorf("output %q: %w: use .csv or .xlsx", path, core.ErrUnsupportedFormat)
	}
}

func exportTable(path string, table core.ResultTable, format core.Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if err := core.Export(f, table, format); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
