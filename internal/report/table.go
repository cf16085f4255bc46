package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"squish/internal/artifact"
)

// TableOptions tunes the terminal table.
type TableOptions struct {
	// FullPaths prints input paths as given instead of base names.
	FullPaths bool
}

// WriteTable renders one row per report plus a totals footer.
func WriteTable(w io.Writer, reports []artifact.Report, summary Summary, opts TableOptions) error {
	tw := table.NewWriter()
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"File", "Kind", "Original", "Optimized", "Saved", "Status"})
	for _, r := range reports {
		name := r.InputFile
		if !opts.FullPaths {
			name = filepath.Base(name)
		}
		status := r.Status
		if r.Detail != "" {
			status = fmt.Sprintf("%s (%s)", status, r.Detail)
		}
		tw.AppendRow(table.Row{
			name,
			dash(r.Kind),
			humanize.IBytes(uint64(max(r.OriginalSize, 0))),
			humanize.IBytes(uint64(max(r.OptimizedSize, 0))),
			humanize.IBytes(uint64(r.Saved())),
			status,
		})
	}
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d files", summary.Files),
		"",
		humanize.IBytes(uint64(summary.OriginalBytes)),
		humanize.IBytes(uint64(summary.OptimizedBytes)),
		humanize.IBytes(uint64(summary.Saved())),
		fmt.Sprintf("%d done, %d skipped, %d failed (%.2f%%)", summary.Completed, summary.Skipped, summary.Failed, summary.Percent()),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})
	_, err := io.WriteString(w, tw.Render()+"\n")
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
