package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Paths contains all the application paths.
// This is the single source of truth for file locations in the pipeline.
type Paths struct {
	ExecutableDir string
	DataDir       string
	DownloadsDir  string
	ReportsDir    string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable location.
// Paths are always relative to the executable directory, never the current
// working directory, so the binary behaves the same from cron and a shell.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	exeDir := filepath.Dir(exe)
	dataDir := filepath.Join(exeDir, "data")

	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		DownloadsDir:  filepath.Join(dataDir, "downloads"),
		ReportsDir:    filepath.Join(dataDir, "reports"),
		LogsDir:       filepath.Join(exeDir, "logs"),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.DataDir, p.DownloadsDir, p.ReportsDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetDownloadPath returns the full path for a downloaded export file
func (p *Paths) GetDownloadPath(filename string) string {
	return filepath.Join(p.DownloadsDir, filename)
}

// GetReportPath returns the full path for a generated report artifact
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// ReportFilename returns the timestamped artifact name for a run, matching
// the analysis_report_YYYYMMDD_HHMMSS convention of the dashboard tooling.
func ReportFilename(t time.Time, ext string) string {
	return fmt.Sprintf("analysis_report_%s.%s", t.Format("20060102_150405"), ext)
}

// FileExists checks whether a path exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
