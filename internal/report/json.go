package report

import (
	"encoding/json"
	"io"

	"squish/internal/artifact"
)

type jsonDocument struct {
	Summary jsonSummary  `json:"summary"`
	Files   []jsonReport `json:"files"`
}

type jsonSummary struct {
	Files          int     `json:"files"`
	Completed      int     `json:"completed"`
	Improved       int     `json:"improved"`
	Skipped        int     `json:"skipped"`
	Failed         int     `json:"failed"`
	OriginalBytes  int64   `json:"original_bytes"`
	OptimizedBytes int64   `json:"optimized_bytes"`
	SavedBytes     int64   `json:"saved_bytes"`
	Percent        float64 `json:"percent"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

type jsonReport struct {
	InputFile      string                 `json:"input_file"`
	Kind           string                 `json:"kind,omitempty"`
	OriginalSize   int64                  `json:"original_size"`
	OptimizedSize  int64                  `json:"optimized_size"`
	Status         string                 `json:"status"`
	Outcome        artifact.Outcome       `json:"outcome"`
	Percent        float64                `json:"percent"`
	ElapsedSeconds float64                `json:"elapsed_seconds"`
	Detail         string                 `json:"detail,omitempty"`
	Stages         []artifact.StageResult `json:"stages,omitempty"`
}

// WriteJSON writes the summary and every report as one indented document.
func WriteJSON(w io.Writer, reports []artifact.Report, summary Summary) error {
	doc := jsonDocument{
		Summary: jsonSummary{
			Files:          summary.Files,
			Completed:      summary.Completed,
			Improved:       summary.Improved,
			Skipped:        summary.Skipped,
			Failed:         summary.Failed,
			OriginalBytes:  summary.OriginalBytes,
			OptimizedBytes: summary.OptimizedBytes,
			SavedBytes:     summary.Saved(),
			Percent:        summary.Percent(),
			ElapsedSeconds: summary.Elapsed.Seconds(),
		},
		Files: make([]jsonReport, 0, len(reports)),
	}
	for _, r := range reports {
		doc.Files = append(doc.Files, jsonReport{
			InputFile:      r.InputFile,
			Kind:           r.Kind,
			OriginalSize:   r.OriginalSize,
			OptimizedSize:  r.OptimizedSize,
			Status:         r.Status,
			Outcome:        r.Outcome,
			Percent:        r.Percent,
			ElapsedSeconds: r.ElapsedSeconds(),
			Detail:         r.Detail,
			Stages:         r.Stages,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
