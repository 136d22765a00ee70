package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// DashboardConfig contains the web-dashboard session settings consumed by
// the export driver. Account, username and password are the QuickSight
// multi-step signin inputs; DashboardURL is the analysis holding the
// scheduler log table.
type DashboardConfig struct {
	SigninURL       string        `yaml:"signin_url" envconfig:"SIGNIN_URL"`
	Account         string        `yaml:"account" envconfig:"ACCOUNT" validate:"required"`
	Username        string        `yaml:"username" envconfig:"USERNAME" validate:"required"`
	Password        string        `yaml:"password" envconfig:"PASSWORD" validate:"required"`
	DashboardURL    string        `yaml:"dashboard_url" envconfig:"DASHBOARD_URL" validate:"required,url"`
	Headless        bool          `yaml:"headless" envconfig:"HEADLESS"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout" envconfig:"NAVIGATE_TIMEOUT"`
	DownloadTimeout time.Duration `yaml:"download_timeout" envconfig:"DOWNLOAD_TIMEOUT"`
}

// ReportConfig controls the metrics engine and the rendered artifact.
type ReportConfig struct {
	IncludePeakHours bool   `yaml:"include_peak_hours" envconfig:"INCLUDE_PEAK_HOURS"`
	FilterToToday    bool   `yaml:"filter_to_today" envconfig:"FILTER_TO_TODAY"`
	CompletedMarker  string `yaml:"completed_marker" envconfig:"COMPLETED_MARKER"`
	FailedMarker     string `yaml:"failed_marker" envconfig:"FAILED_MARKER"`
	Format           string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text csv"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR"`
	DownloadsDir string `yaml:"downloads_dir" envconfig:"DOWNLOADS_DIR"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Load builds the configuration in three layers: programmatic defaults,
// then the YAML config file, then environment variables. Later layers win,
// so an env var always beats the file and the file always beats a default.
// The struct carries no envconfig default tags: with none set, Process only
// touches fields whose env var is actually present, which is what makes the
// layering sound.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("SCHEDREPORT", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Report.CompletedMarker == "" {
		return fmt.Errorf("report completed marker must not be empty")
	}
	if c.Report.FailedMarker == "" {
		return fmt.Errorf("report failed marker must not be empty")
	}
	if c.Report.CompletedMarker == c.Report.FailedMarker {
		return fmt.Errorf("completed and failed markers must differ")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "stdout" {
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/schedreport.log"
	}

	// Dashboard credentials are validated with struct tags; they are only
	// required when the fetch stage runs, so validation failures surface as
	// a typed error the caller can ignore in -input mode.
	validate := validator.New()
	if err := validate.Struct(c.Report); err != nil {
		return fmt.Errorf("invalid report config: %w", err)
	}

	return nil
}

// ValidateDashboard checks the credential fields needed by the export
// driver. Called only when the pipeline includes the fetch stage.
func (c *Config) ValidateDashboard() error {
	validate := validator.New()
	if err := validate.Struct(c.Dashboard); err != nil {
		return fmt.Errorf("invalid dashboard config: %w", err)
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			SigninURL:       "https://eu-west-2.quicksight.aws.amazon.com/sn/auth/signin",
			Headless:        true,
			NavigateTimeout: 60 * time.Second,
			DownloadTimeout: 30 * time.Second,
		},
		Report: ReportConfig{
			IncludePeakHours: true,
			FilterToToday:    true,
			CompletedMarker:  "schedulerLogCompleted",
			FailedMarker:     "schedulerLogFailed",
			Format:           "text",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/schedreport.log",
		},
		Paths: PathsConfig{
			DataDir:      "data",
			DownloadsDir: "data/downloads",
			ReportsDir:   "data/reports",
			LogsDir:      "logs",
		},
	}
}
