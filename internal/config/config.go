// =============================================================================
// CPS Positions - Configuration Module
// =============================================================================
//
// This module loads the application configuration from config.yaml and
// applies overrides coming from command-line flags and POSITIONS_* environment
// variables.
//
// CONFIGURATION SOURCES (later wins):
//   1. Built-in defaults (applyMainConfigDefaults)
//   2. config.yaml (parsed with yaml.v3)
//   3. Environment variables and flags bound through viper
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// INPUT FILES
	// =========================================================================

	// DataDir is the directory relative file names below are resolved against.
	// Default: "./data"
	DataDir string `yaml:"data_dir"`

	// PositionsFile is the position metadata table
	// (department, job_title, date, status, positions).
	// Default: "position_metadata.csv"
	PositionsFile string `yaml:"positions_file"`

	// JobsFile is the job list table (job_title).
	// Default: "jobs.csv"
	JobsFile string `yaml:"jobs_file"`

	// DeptsFile is the department list table (department).
	// Default: "depts.csv"
	DeptsFile string `yaml:"depts_file"`

	// TimeSeriesFile is the optional row-level time series used for source
	// row exports. Leave empty, or point at a missing file, to disable the
	// export.
	// Default: "time_series.csv"
	TimeSeriesFile string `yaml:"time_series_file"`

	// DeriveCatalogs fills the job or department catalog from the position
	// table when the corresponding list file is missing. When false a
	// missing list file yields an empty catalog.
	// Default: false
	DeriveCatalogs bool `yaml:"derive_catalogs"`

	// Sheets names the worksheet to read for .xlsx inputs. An empty name
	// means the first sheet of the workbook.
	Sheets SheetNames `yaml:"sheets"`

	// CSVSettings controls parsing of every .csv input.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Validation controls how position rows are checked on load.
	Validation ValidationSettings `yaml:"validation"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is where the CLI writes exports, chart JSON and PNG facets.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ExportFileNameFormat is the file name template for generated files.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {kind}      - "positions", "chart" or "facet"
	//   {facet}     - Facet index for PNG renders
	// Default: "{kind}_{timestamp}"
	ExportFileNameFormat string `yaml:"export_filename_format"`

	// Report holds presentation defaults.
	Report ReportSettings `yaml:"report"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional log file written in addition to stderr.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// Server configures the HTTP front end started by "positions serve".
	Server ServerConfig `yaml:"server"`
}

// SheetNames holds per-input worksheet names for .xlsx sources.
type SheetNames struct {
	Positions  string `yaml:"positions"`
	Jobs       string `yaml:"jobs"`
	Depts      string `yaml:"depts"`
	TimeSeries string `yaml:"time_series"`
}

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows in the CSV file.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row number where the data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`
}

// ValidationSettings controls row validation.
type ValidationSettings struct {
	// StopOnFirstError reports only the first bad position row instead of
	// every one.
	// Default: false
	StopOnFirstError bool `yaml:"stop_on_first_error"`
}

// ReportSettings holds defaults for rendered reports.
type ReportSettings struct {
	// Title is shown above the chart.
	// Default: "CPS positions"
	Title string `yaml:"title"`

	// DownloadFilename is the suggested file name of the CSV download link.
	// Default: "filtered_positions.csv"
	DownloadFilename string `yaml:"download_filename"`

	// DownloadLabel is the visible text of the CSV download link.
	// Default: "Download filtered rows"
	DownloadLabel string `yaml:"download_label"`

	// StrictSelection rejects selections naming job titles or departments
	// that are not in the catalogs. When false they only produce warnings.
	// Default: false
	StrictSelection bool `yaml:"strict_selection"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// AllowOrigins lists origins accepted by the CORS middleware.
	// Default: ["*"]
	AllowOrigins []string `yaml:"allow_origins"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault behaves like LoadMainConfig but returns the defaults when the
// file does not exist. Any other read or parse failure is still an error.
func LoadOrDefault(configPath string) (*MainConfig, error) {
	config, err := LoadMainConfig(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.DataDir == "" {
		config.DataDir = "./data"
	}
	if config.PositionsFile == "" {
		config.PositionsFile = "position_metadata.csv"
	}
	if config.JobsFile == "" {
		config.JobsFile = "jobs.csv"
	}
	if config.DeptsFile == "" {
		config.DeptsFile = "depts.csv"
	}
	if config.TimeSeriesFile == "" {
		config.TimeSeriesFile = "time_series.csv"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ExportFileNameFormat == "" {
		config.ExportFileNameFormat = "{kind}_{timestamp}"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	// CSV settings defaults.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.HeaderRows == 0 {
		config.CSVSettings.HeaderRows = 1
	}
	if config.CSVSettings.DataStartRow == 0 {
		config.CSVSettings.DataStartRow = config.CSVSettings.HeaderRows + 1
	}

	// Report defaults.
	if config.Report.Title == "" {
		config.Report.Title = "CPS positions"
	}
	if config.Report.DownloadFilename == "" {
		config.Report.DownloadFilename = "filtered_positions.csv"
	}
	if config.Report.DownloadLabel == "" {
		config.Report.DownloadLabel = "Download filtered rows"
	}

	// Server defaults.
	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if len(config.Server.AllowOrigins) == 0 {
		config.Server.AllowOrigins = []string{"*"}
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", config.LogLevel)
	}

	if config.CSVSettings.HeaderRows < 1 {
		return fmt.Errorf("csv_settings.header_rows must be at least 1")
	}
	if config.CSVSettings.DataStartRow <= config.CSVSettings.HeaderRows {
		return fmt.Errorf("csv_settings.data_start_row must come after the header rows")
	}

	if !strings.Contains(config.ExportFileNameFormat, "{uuid}") &&
		!strings.Contains(config.ExportFileNameFormat, "{timestamp}") {
		return fmt.Errorf("export_filename_format must contain {uuid} or {timestamp}")
	}

	return nil
}

// =============================================================================
// OVERRIDES
// =============================================================================

// Keys understood by ApplyOverrides. They double as viper keys, so
// POSITIONS_DATA_DIR overrides data_dir once AutomaticEnv is enabled.
const (
	KeyDataDir    = "data_dir"
	KeyOutputDir  = "output_dir"
	KeyLogLevel   = "log_level"
	KeyLogFile    = "log_file"
	KeyServerAddr = "server.addr"
	KeyTimeSeries = "time_series_file"
)

// ApplyOverrides copies every key set in v onto config and re-validates.
func ApplyOverrides(config *MainConfig, v *viper.Viper) error {
	overrides := map[string]*string{
		KeyDataDir:    &config.DataDir,
		KeyOutputDir:  &config.OutputDir,
		KeyLogLevel:   &config.LogLevel,
		KeyLogFile:    &config.LogFile,
		KeyServerAddr: &config.Server.Addr,
		KeyTimeSeries: &config.TimeSeriesFile,
	}
	for key, field := range overrides {
		if value := v.GetString(key); v.IsSet(key) && value != "" {
			*field = value
		}
	}

	if err := validateMainConfig(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// =============================================================================
// PATH RESOLUTION
// =============================================================================

// ResolvePath joins name onto DataDir unless name is already absolute.
// An empty name stays empty.
func (c *MainConfig) ResolvePath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
