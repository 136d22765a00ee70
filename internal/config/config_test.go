package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no config.yaml from the
// working tree leaks into Load.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "schedulerLogCompleted", cfg.Report.CompletedMarker)
	assert.Equal(t, "schedulerLogFailed", cfg.Report.FailedMarker)
	assert.True(t, cfg.Report.IncludePeakHours)
	assert.True(t, cfg.Report.FilterToToday)
	assert.Equal(t, "text", cfg.Report.Format)
	assert.True(t, cfg.Dashboard.Headless)
	assert.Equal(t, 60*time.Second, cfg.Dashboard.NavigateTimeout)
	assert.Equal(t, "data/reports", cfg.Paths.ReportsDir)
	assert.NoError(t, cfg.validate())
}

func TestLoad_EnvOnly(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDREPORT_REPORT_COMPLETED_MARKER", "customDone")
	t.Setenv("SCHEDREPORT_REPORT_FORMAT", "csv")
	t.Setenv("SCHEDREPORT_DASHBOARD_ACCOUNT", "acme")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "customDone", cfg.Report.CompletedMarker)
	assert.Equal(t, "csv", cfg.Report.Format)
	assert.Equal(t, "acme", cfg.Dashboard.Account)
	// untouched fields keep their tag defaults
	assert.Equal(t, "schedulerLogFailed", cfg.Report.FailedMarker)
	assert.True(t, cfg.Report.FilterToToday)
}

func TestLoad_FileMerge(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
dashboard:
  account: file-account
  username: file-user
report:
  completed_marker: fileDone
paths:
  reports_dir: /srv/reports
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SCHEDREPORT_DASHBOARD_ACCOUNT", "env-account")

	cfg, err := Load()
	require.NoError(t, err)

	// env wins for credentials
	assert.Equal(t, "env-account", cfg.Dashboard.Account)
	// file fills what env did not set
	assert.Equal(t, "file-user", cfg.Dashboard.Username)
	assert.Equal(t, "fileDone", cfg.Report.CompletedMarker)
	assert.Equal(t, "/srv/reports", cfg.Paths.ReportsDir)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
dashboard:
  account: file-account
  headless: false
report:
  completed_marker: fileDone
  format: csv
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SCHEDREPORT_REPORT_COMPLETED_MARKER", "envDone")

	cfg, err := Load()
	require.NoError(t, err)

	// the env var wins over the file value for the same field
	assert.Equal(t, "envDone", cfg.Report.CompletedMarker)
	// file values without a competing env var all survive, including
	// fields whose defaults are non-zero
	assert.Equal(t, "csv", cfg.Report.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Dashboard.Headless)
	assert.Equal(t, "file-account", cfg.Dashboard.Account)
	// fields set nowhere keep their defaults
	assert.Equal(t, "schedulerLogFailed", cfg.Report.FailedMarker)
	assert.True(t, cfg.Report.FilterToToday)
}

func TestLoad_InvalidFormat(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHEDREPORT_REPORT_FORMAT", "pdf")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid report config")
}

func TestValidate_Markers(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty completed marker",
			mutate:  func(c *Config) { c.Report.CompletedMarker = "" },
			wantErr: "completed marker",
		},
		{
			name:    "empty failed marker",
			mutate:  func(c *Config) { c.Report.FailedMarker = "" },
			wantErr: "failed marker",
		},
		{
			name: "identical markers",
			mutate: func(c *Config) {
				c.Report.CompletedMarker = "same"
				c.Report.FailedMarker = "same"
			},
			wantErr: "must differ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/schedreport.log", cfg.Logging.FilePath)
}

func TestValidateDashboard(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.ValidateDashboard())

	cfg.Dashboard.Account = "acme"
	cfg.Dashboard.Username = "user"
	cfg.Dashboard.Password = "secret"
	cfg.Dashboard.DashboardURL = "https://eu-west-2.quicksight.aws.amazon.com/sn/analyses/abc123"
	require.NoError(t, cfg.ValidateDashboard())

	cfg.Dashboard.DashboardURL = "not a url"
	require.Error(t, cfg.ValidateDashboard())
}
