package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/JonMunkholm/usercount/internal/core"
)

// printer writes human output; colors follow the terminal unless disabled.
type printer struct {
	out io.Writer
	err io.Writer

	header *color.Color
	warn   *color.Color
	fail   *color.Color
}

func newPrinter(out, errw io.Writer, noColor bool) *printer {
	p := &printer{
		out:    out,
		err:    errw,
		header: color.New(color.Bold),
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed),
	}
	if noColor {
		p.header.DisableColor()
		p.warn.DisableColor()
		p.fail.DisableColor()
	}
	return p
}

// Header prints a section title.
func (p *printer) Header(title string) {
	p.header.Fprintf(p.out, "\n%s\n", title)
}

// Print prints a plain line.
func (p *printer) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warning prints a warning line to stderr.
func (p *printer) Warning(format string, args ...any) {
	p.warn.Fprintf(p.err, "[WARN] "+format+"\n", args...)
}

// Error prints an error line to stderr.
func (p *printer) Error(format string, args ...any) {
	p.fail.Fprintf(p.err, "[ERROR] "+format+"\n", args...)
}

// UserError prints err as a user message with its support code.
func (p *printer) UserError(name string, err error) {
	msg := core.MapError(err)
	p.Error("%s: %s (%s). %s", name, msg.Message, msg.Code, msg.Action)
}

// Table renders rows under headers without borders.
func (p *printer) Table(headers []string, rows [][]string) error {
	table := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// ResultTable renders a result table, or a note when it is empty.
func (p *printer) ResultTable(t core.ResultTable) error {
	if len(t) == 0 {
		p.Print("(no rows)")
		return nil
	}
	return p.Table(core.ResultColumns, t.Records()[1:])
}
