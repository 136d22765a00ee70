package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedreport/internal/analysis"
	"schedreport/internal/errors"
	"schedreport/internal/runlog"
)

func sampleTable() *runlog.Table {
	start := time.Date(2025, 3, 14, 9, 15, 0, 0, time.UTC)
	return &runlog.Table{
		SourcePath: "export.csv",
		Records: []runlog.Record{
			{ID: "run-1", Status: runlog.StatusCompleted, StartTime: start, Duration: 12.5, TotalTasks: 4, ScheduledTasks: 3, UnscheduledTasks: 1},
			{ID: "run-2", Status: runlog.StatusCompleted, StartTime: start.Add(time.Hour), Duration: 5, TotalTasks: 1, ScheduledTasks: 1},
			{ID: "run-3", Status: runlog.StatusFailed, StartTime: start.Add(2 * time.Hour)},
		},
	}
}

func sampleDocument(t *testing.T) *Document {
	t.Helper()
	engine := analysis.NewEngine(nil, analysis.DefaultConfig())
	rep, err := engine.Compute(sampleTable())
	require.NoError(t, err)
	doc, err := ParseBody(rep.Body)
	require.NoError(t, err)
	return doc
}

func TestTextRenderer(t *testing.T) {
	doc := sampleDocument(t)
	outputPath := filepath.Join(t.TempDir(), "reports", "analysis.txt")

	err := NewTextRenderer().Render(context.Background(), doc, outputPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	content := string(raw)

	rule := strings.Repeat("=", len(analysis.ReportTitle))
	assert.True(t, strings.HasPrefix(content, rule+"\n"+analysis.ReportTitle+"\n"+rule+"\n"))
	assert.Contains(t, content, "\n"+analysis.SectionLogDistribution+"\n"+strings.Repeat("-", len(analysis.SectionLogDistribution))+"\n")
	assert.Contains(t, content, "Failed Logs:")

	// labels within a section are padded to the same column
	var distLines []string
	inSection := false
	for _, line := range strings.Split(content, "\n") {
		switch {
		case line == analysis.SectionLogDistribution:
			inSection = true
		case inSection && line == "":
			inSection = false
		case inSection && strings.Contains(line, ":"):
			distLines = append(distLines, line)
		}
	}
	require.NotEmpty(t, distLines)
	col := strings.LastIndex(distLines[0], " ") + 1
	for _, line := range distLines[1:] {
		assert.Equal(t, col, strings.LastIndex(line, " ")+1, "misaligned line: %q", line)
	}
}

func TestTextRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTextRenderer().Render(ctx, sampleDocument(t), filepath.Join(t.TempDir(), "analysis.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsRender(err))
}

func TestCSVRenderer(t *testing.T) {
	doc := sampleDocument(t)
	outputPath := filepath.Join(t.TempDir(), "reports", "analysis.csv")

	err := NewCSVRenderer().Render(context.Background(), doc, outputPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(raw), "\xEF\xBB\xBF"))

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(raw), "\xEF\xBB\xBF")), "\n")
	assert.Equal(t, "Section,Metric,Value", lines[0])
	assert.Equal(t, ",Title,"+analysis.ReportTitle, lines[1])
	assert.Contains(t, lines, analysis.SectionLogDistribution+",Total Logs,3")
}

func TestCSVRenderer_NoBOM(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "analysis.csv")
	renderer := &CSVRenderer{BOMPrefix: false}

	err := renderer.Render(context.Background(), sampleDocument(t), outputPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(string(raw), "\xEF\xBB\xBF"))
	assert.True(t, strings.HasPrefix(string(raw), "Section,Metric,Value"))
}
