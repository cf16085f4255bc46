package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/markdown"

	"squish/internal/artifact"
)

// WriteMarkdown renders the run as a Markdown document with a summary table,
// an alert for failures, and one row per artifact.
func WriteMarkdown(w io.Writer, reports []artifact.Report, summary Summary, generated time.Time) error {
	md := markdown.NewMarkdown(w)

	md.H1("squish report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", generated.Format("2006-01-02 15:04:05 MST")},
			{"Files", strconv.Itoa(summary.Files)},
			{"Completed", strconv.Itoa(summary.Completed)},
			{"Improved", strconv.Itoa(summary.Improved)},
			{"Skipped", strconv.Itoa(summary.Skipped)},
			{"Failed", strconv.Itoa(summary.Failed)},
			{"Original", humanize.IBytes(uint64(summary.OriginalBytes))},
			{"Optimized", humanize.IBytes(uint64(summary.OptimizedBytes))},
			{"Saved", humanize.IBytes(uint64(summary.Saved()))},
			{"Ratio", fmt.Sprintf("%.2f%%", summary.Percent())},
		},
	})
	md.PlainText("")

	switch {
	case summary.Failed > 0:
		md.Warningf("%d file(s) failed and were left unchanged.", summary.Failed)
	case summary.Improved == 0:
		md.Note("No file got smaller.")
	default:
		md.Tip(fmt.Sprintf("Saved %s across %d file(s).", humanize.IBytes(uint64(summary.Saved())), summary.Improved))
	}
	md.PlainText("")

	md.H2("Files")
	md.PlainText("")
	if len(reports) == 0 {
		md.PlainText("No files were processed.")
		return md.Build()
	}
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			"`" + r.InputFile + "`",
			dash(r.Kind),
			strconv.FormatInt(r.OriginalSize, 10),
			strconv.FormatInt(r.OptimizedSize, 10),
			r.Status,
			dash(r.Detail),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "Kind", "Original", "Optimized", "Status", "Detail"},
		Rows:   rows,
	})
	return md.Build()
}
