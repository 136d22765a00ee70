package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"schedreport/internal/errors"
)

// TextRenderer writes the report as a styled plain-text document: ruled
// title, underlined section headers, aligned label/value columns. It is the
// default in-tree collaborator; callers wanting PDF output plug in their own
// Renderer.
type TextRenderer struct{}

// NewTextRenderer creates a plain-text renderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render writes the document to outputPath, creating parent directories.
func (r *TextRenderer) Render(ctx context.Context, doc *Document, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewRenderError("render cancelled", err)
	}

	var b strings.Builder

	rule := strings.Repeat("=", len(doc.Title))
	b.WriteString(rule + "\n")
	b.WriteString(doc.Title + "\n")
	b.WriteString(rule + "\n")
	b.WriteString(doc.Date + "\n")

	for _, section := range doc.Sections {
		b.WriteString("\n" + section.Name + "\n")
		b.WriteString(strings.Repeat("-", len(section.Name)) + "\n")

		width := 0
		for _, line := range section.Lines {
			if len(line.Label) > width {
				width = len(line.Label)
			}
		}
		for _, line := range section.Lines {
			fmt.Fprintf(&b, "%-*s  %s\n", width+1, line.Label+":", line.Value)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return errors.NewRenderError("failed to create output directory", err).
			WithContext("path", outputPath)
	}
	if err := os.WriteFile(outputPath, []byte(b.String()), 0644); err != nil {
		return errors.NewRenderError("failed to write text report", err).
			WithContext("path", outputPath)
	}

	return nil
}
