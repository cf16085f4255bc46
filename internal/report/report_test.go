package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"squish/internal/artifact"
	"squish/internal/report"
)

func sampleReports() []artifact.Report {
	return []artifact.Report{
		{
			InputFile:     "/photos/a.png",
			Kind:          "png",
			OriginalSize:  1000,
			OptimizedSize: 600,
			Status:        artifact.CompletedStatus(60, 1500*time.Millisecond),
			Percent:       60,
			Elapsed:       1500 * time.Millisecond,
			Outcome:       artifact.OutcomeCompleted,
			Stages: []artifact.StageResult{
				{Kind: "png", Stage: "oxipng", SizeBefore: 1000, SizeAfter: 600, Accepted: true, Status: artifact.StatusAccepted, Attempts: 1},
			},
		},
		{
			InputFile:     "/photos/b.jpg",
			Kind:          "jpeg",
			OriginalSize:  500,
			OptimizedSize: 500,
			Status:        artifact.CompletedStatus(100, time.Second),
			Percent:       100,
			Outcome:       artifact.OutcomeCompleted,
		},
		artifact.Skipped("/photos/draft.png", "excluded by mask draft"),
		artifact.Failed("/photos/c.gif", 300, time.Second, nil),
	}
}

func TestSummarize(t *testing.T) {
	got := report.Summarize(sampleReports())
	want := report.Summary{
		Files:          4,
		Completed:      2,
		Improved:       1,
		Skipped:        1,
		Failed:         1,
		OriginalBytes:  1500,
		OptimizedBytes: 1100,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if got.Saved() != 400 {
		t.Fatalf("saved = %d, want 400", got.Saved())
	}
	if p := got.Percent(); p < 73.33 || p > 73.34 {
		t.Fatalf("percent = %.4f", p)
	}
}

func TestCollectorIsSafeForConcurrentAdds(t *testing.T) {
	c := report.NewCollector()
	var wg sync.WaitGroup
	for _, r := range sampleReports() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(r)
		}()
	}
	wg.Wait()
	c.SetElapsed(3 * time.Second)

	if got := len(c.Reports()); got != 4 {
		t.Fatalf("expected 4 reports, got %d", got)
	}
	s := c.Summary()
	if s.Files != 4 || s.Elapsed != 3*time.Second {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestWriteJSON(t *testing.T) {
	reports := sampleReports()
	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, reports, report.Summarize(reports)); err != nil {
		t.Fatalf("write json: %v", err)
	}
	var doc struct {
		Summary struct {
			Files      int   `json:"files"`
			SavedBytes int64 `json:"saved_bytes"`
		} `json:"summary"`
		Files []struct {
			InputFile string  `json:"input_file"`
			Outcome   string  `json:"outcome"`
			Elapsed   float64 `json:"elapsed_seconds"`
			Detail    string  `json:"detail"`
			Stages    []struct {
				Stage  string `json:"stage"`
				Status string `json:"status"`
			} `json:"stages"`
		} `json:"files"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if doc.Summary.Files != 4 || doc.Summary.SavedBytes != 400 {
		t.Fatalf("unexpected summary %+v", doc.Summary)
	}
	if doc.Files[0].Elapsed != 1.5 || doc.Files[0].Stages[0].Status != "accepted" {
		t.Fatalf("unexpected first file %+v", doc.Files[0])
	}
	if doc.Files[2].Outcome != "skipped" || doc.Files[2].Detail != "excluded by mask draft" {
		t.Fatalf("unexpected skipped file %+v", doc.Files[2])
	}
}

func TestWriteTable(t *testing.T) {
	reports := sampleReports()
	var buf bytes.Buffer
	if err := report.WriteTable(&buf, reports, report.Summarize(reports), report.TableOptions{}); err != nil {
		t.Fatalf("write table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"a.png", "Done (60.00%) in 1.500s", "Skipped (excluded by mask draft)", "4 files", "400 B"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "/photos/") {
		t.Fatalf("expected base names only:\n%s", out)
	}
}

func TestWriteMarkdown(t *testing.T) {
	reports := sampleReports()
	var buf bytes.Buffer
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := report.WriteMarkdown(&buf, reports, report.Summarize(reports), stamp); err != nil {
		t.Fatalf("write markdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"# squish report", "2024-03-01 12:00:00 UTC", "`/photos/a.png`", "failed and were left unchanged"} {
		if !strings.Contains(out, want) {
			t.Fatalf("markdown missing %q:\n%s", want, out)
		}
	}
}
