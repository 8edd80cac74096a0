package cli

import (
	"fmt"
	"io"

	"github.com/rileyhilliard/countertop/internal/config"
	"github.com/rileyhilliard/countertop/internal/source"
	"github.com/rileyhilliard/countertop/internal/table"
	"github.com/rileyhilliard/countertop/internal/ui"
	"github.com/rileyhilliard/countertop/internal/util"
)

func checkCommand(w io.Writer, preview bool) error {
	cfg, path, err := config.FindAndLoad(cfgFile)
	if err != nil {
		return err
	}
	return check(w, cfg, path, preview)
}

// check validates cfg, lays the table out, and prints a summary of it.
func check(w io.Writer, cfg *config.Config, path string, preview bool) error {
	if err := config.Validate(cfg, config.WithHostCounters(source.HostCounters())); err != nil {
		return err
	}
	tbl, index, err := table.Build(cfg.Layout())
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s is valid\n\n", ui.SuccessStyle().Render(ui.SymbolSuccess), path)

	fmt.Fprintln(w, ui.HeadingStyle().Render("Columns"))
	cols := make([]ui.ColumnRow, len(cfg.Columns))
	for i, c := range cfg.Columns {
		cols[i] = ui.ColumnRow{Name: c.Name, Width: c.Width, Shown: c.Visible()}
	}
	fmt.Fprint(w, ui.RenderColumnList(cols))
	fmt.Fprintln(w)

	fmt.Fprintln(w, ui.HeadingStyle().Render("Counters"))
	var rows []ui.MetricRow
	for _, key := range cfg.Metrics() {
		src, _ := cfg.Source(key.Source)
		rows = append(rows, ui.MetricRow{
			Source:  key.Source,
			Type:    src.Type,
			Target:  describeTarget(cfg, src),
			Counter: key.Counter,
		})
	}
	fmt.Fprintln(w, ui.RenderMetricTable(rows))

	fmt.Fprintf(w, "\n%s\n", ui.MutedStyle().Render(fmt.Sprintf(
		"%s, %d cells wide, %d lines tall",
		util.Counted(index.Len(), "row", "rows"), tbl.Width(), tbl.Height())))

	if !preview {
		return nil
	}
	screen := table.NewScreen()
	if err := table.Render(tbl, screen, table.Position{}); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", screen.String())
	return nil
}

// describeTarget is where a source's events come from.
func describeTarget(cfg *config.Config, src config.SourceConfig) string {
	switch {
	case src.Type == config.SourceHost && src.SSH != "":
		return "ssh " + src.SSH
	case src.Type == config.SourceHost:
		return "local /proc"
	case cfg.Listen != "":
		return cfg.Listen + " or stdin"
	default:
		return "stdin"
	}
}
