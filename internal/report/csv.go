package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"schedreport/internal/errors"
)

// CSVRenderer writes the report as Section,Metric,Value rows, one row per
// report line. Useful when the artifact feeds a spreadsheet instead of a
// styled document.
type CSVRenderer struct {
	// BOMPrefix adds a UTF-8 BOM so Excel opens the file cleanly.
	BOMPrefix bool
}

// NewCSVRenderer creates a CSV renderer with Excel-friendly output.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{BOMPrefix: true}
}

// Render writes the document to outputPath, creating parent directories.
func (r *CSVRenderer) Render(ctx context.Context, doc *Document, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewRenderError("render cancelled", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return errors.NewRenderError("failed to create output directory", err).
			WithContext("path", outputPath)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return errors.NewRenderError("failed to create CSV report", err).
			WithContext("path", outputPath)
	}
	defer file.Close()

	if r.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return errors.NewRenderError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)

	records := [][]string{
		{"Section", "Metric", "Value"},
		{"", "Title", doc.Title},
		{"", "Date", doc.Date},
	}
	for _, section := range doc.Sections {
		for _, line := range section.Lines {
			records = append(records, []string{section.Name, line.Label, line.Value})
		}
	}

	if err := writer.WriteAll(records); err != nil {
		return errors.NewRenderError("failed to write CSV rows", err).
			WithContext("path", outputPath)
	}

	return nil
}
