package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedreport/internal/analysis"
	"schedreport/internal/config"
	"schedreport/internal/errors"
	"schedreport/internal/report"
)

const exportFixture = "Id,Status,Start Time,Duration,Total Tasks,# Scheduled Tasks,# Unscheduled Tasks\n" +
	"run-1,schedulerLogCompleted,2025-03-14 09:15:00,12.5,4,3,1\n" +
	"run-2,schedulerLogFailed,2025-03-14 10:00:00,0,0,0,0\n"

// stubDriver copies a fixture into place and reports what it fetched.
type stubDriver struct {
	dir     string
	err     error
	fetched string
}

func (d *stubDriver) Fetch(ctx context.Context) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	path := filepath.Join(d.dir, "download.csv")
	if err := os.WriteFile(path, []byte(exportFixture), 0o644); err != nil {
		return "", err
	}
	d.fetched = path
	return path, nil
}

// captureRenderer records the document instead of writing a file.
type captureRenderer struct {
	doc        *report.Document
	outputPath string
	err        error
}

func (r *captureRenderer) Render(ctx context.Context, doc *report.Document, outputPath string) error {
	if r.err != nil {
		return r.err
	}
	r.doc = doc
	r.outputPath = outputPath
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Report.FilterToToday = false
	cfg.Paths.ReportsDir = filepath.Join(t.TempDir(), "reports")
	return cfg
}

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(exportFixture), 0o644))
	return path
}

func TestPipeline_RunFromInputFile(t *testing.T) {
	renderer := &captureRenderer{}
	pipeline, err := NewPipeline(testConfig(t), nil, nil, renderer)
	require.NoError(t, err)

	artifact, err := pipeline.Run(context.Background(), Options{InputPath: writeFixture(t)})
	require.NoError(t, err)

	assert.Equal(t, renderer.outputPath, artifact)
	assert.Contains(t, filepath.Base(artifact), "analysis_report_")
	assert.True(t, strings.HasSuffix(artifact, ".txt"))

	require.NotNil(t, renderer.doc)
	assert.Equal(t, analysis.ReportTitle, renderer.doc.Title)
	dist := renderer.doc.SectionByName(analysis.SectionLogDistribution)
	require.NotNil(t, dist)
	assert.Equal(t, report.Line{Label: "Total Logs", Value: "2"}, dist.Lines[0])
}

func TestPipeline_OutputPathOverride(t *testing.T) {
	renderer := &captureRenderer{}
	pipeline, err := NewPipeline(testConfig(t), nil, nil, renderer)
	require.NoError(t, err)

	want := filepath.Join(t.TempDir(), "custom.txt")
	artifact, err := pipeline.Run(context.Background(), Options{
		InputPath:  writeFixture(t),
		OutputPath: want,
	})
	require.NoError(t, err)
	assert.Equal(t, want, artifact)
}

func TestPipeline_CSVFormatExtension(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Format = "csv"
	renderer := &captureRenderer{}
	pipeline, err := NewPipeline(cfg, nil, nil, renderer)
	require.NoError(t, err)

	artifact, err := pipeline.Run(context.Background(), Options{InputPath: writeFixture(t)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(artifact, ".csv"))
}

func TestPipeline_FetchStage(t *testing.T) {
	driver := &stubDriver{dir: t.TempDir()}
	renderer := &captureRenderer{}
	pipeline, err := NewPipeline(testConfig(t), nil, driver, renderer)
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), Options{})
	require.NoError(t, err)

	// download removed after a successful run
	_, statErr := os.Stat(driver.fetched)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipeline_KeepDownload(t *testing.T) {
	driver := &stubDriver{dir: t.TempDir()}
	pipeline, err := NewPipeline(testConfig(t), nil, driver, &captureRenderer{})
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), Options{KeepDownload: true})
	require.NoError(t, err)

	_, statErr := os.Stat(driver.fetched)
	assert.NoError(t, statErr)
}

func TestPipeline_NoDriverNoInput(t *testing.T) {
	pipeline, err := NewPipeline(testConfig(t), nil, nil, &captureRenderer{})
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), Options{})
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.ErrTypeConfig, appErr.Type)
}

func TestPipeline_FetchFailurePropagates(t *testing.T) {
	driver := &stubDriver{err: errors.NewFetchError("dashboard unreachable", nil)}
	pipeline, err := NewPipeline(testConfig(t), nil, driver, &captureRenderer{})
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsFetch(err))
}

func TestPipeline_LoadFailurePropagates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Id,Status\nrun-1,done\n"), 0o644))

	pipeline, err := NewPipeline(testConfig(t), nil, nil, &captureRenderer{})
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), Options{InputPath: path})
	require.Error(t, err)
	assert.True(t, errors.IsMissingColumn(err))
}

func TestPipeline_TodayFilterEmptiesOldExport(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.FilterToToday = true

	pipeline, err := NewPipeline(cfg, nil, nil, &captureRenderer{})
	require.NoError(t, err)

	// fixture is dated 2025-03-14, never today
	_, err = pipeline.Run(context.Background(), Options{InputPath: writeFixture(t)})
	require.Error(t, err)
	assert.True(t, errors.IsEmptyData(err))
}

func TestPipeline_RendererFailureWrapped(t *testing.T) {
	renderer := &captureRenderer{err: os.ErrPermission}
	pipeline, err := NewPipeline(testConfig(t), nil, nil, renderer)
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), Options{InputPath: writeFixture(t)})
	require.Error(t, err)
	assert.True(t, errors.IsRender(err))
}

func TestNewPipeline_RequiresConfig(t *testing.T) {
	pipeline, err := NewPipeline(nil, nil, nil, nil)
	require.Error(t, err)
	assert.Nil(t, pipeline)
}
