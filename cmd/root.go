// =============================================================================
// CPS Positions - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand
// shares the global flags and the bootstrap sequence defined here.
//
// COBRA CLI STRUCTURE:
//   rootCmd (positions)
//   ├── reportCmd  (positions report)
//   ├── catalogCmd (positions catalog)
//   ├── exportCmd  (positions export)
//   ├── serveCmd   (positions serve)
//   └── versionCmd (positions version)
//
// CONFIGURATION:
//   1. config.yaml (or --config) is parsed into config.MainConfig
//   2. POSITIONS_* environment variables and global flags are layered on top
//      through viper
//   3. The logger, dataset cache and report service are built from the result
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anthonymoser/cps-positions/internal/config"
	"github.com/anthonymoser/cps-positions/internal/dataset"
	"github.com/anthonymoser/cps-positions/internal/logger"
	"github.com/anthonymoser/cps-positions/internal/report"
	"github.com/anthonymoser/cps-positions/internal/validation"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// settings carries flag and environment overrides.
var settings = viper.New()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "positions",
	Short: "CPS positions - staffing reports by job title and department",
	Long: `positions loads the CPS position metadata once and reports how many
positions were filled, open or changing staff over time for a selection of
job titles and departments.

Example Usage:
  positions report --job Teacher --dept "Lincoln ES"   # Print one report
  positions report --png ./charts                      # Render the chart facets
  positions export --dept "Lincoln ES" --format xlsx   # Export source rows
  positions serve --addr :8080                         # Start the HTTP API`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "config.yaml", "Path to the main configuration file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.String("data-dir", "", "Directory holding the input files (overrides data_dir)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides log_level)")
	flags.String("log-file", "", "Also write logs to this file (overrides log_file)")

	settings.BindPFlag(config.KeyDataDir, flags.Lookup("data-dir"))
	settings.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	settings.BindPFlag(config.KeyLogFile, flags.Lookup("log-file"))
}

// initConfig enables POSITIONS_* environment overrides, e.g.
// POSITIONS_DATA_DIR or POSITIONS_SERVER_ADDR.
func initConfig() {
	settings.SetEnvPrefix("POSITIONS")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	settings.AutomaticEnv()
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

// app holds everything a subcommand needs.
type app struct {
	cfg     *config.MainConfig
	log     *logger.ZapLogger
	cache   *dataset.Cache
	reports *report.Service
}

// bootstrap loads the configuration, builds the logger and loads the dataset.
//
// RETURNS:
//   - The initialized app. Callers must call close when done.
//   - An error if the configuration is invalid or the dataset fails to load.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	if err := config.ApplyOverrides(cfg, settings); err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Verbose: verbose})
	if err != nil {
		return nil, err
	}

	log.Debug("Loading dataset from %s", cfg.DataDir)
	cache := dataset.NewCache(dataset.NewLoader(dataset.OptionsFromConfig(cfg), log))
	if err := cache.Init(ctx); err != nil {
		if report := loadErrorReport(err); report != "" {
			log.Error("%s", report)
		}
		log.Sync()
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	return &app{
		cfg:     cfg,
		log:     log,
		cache:   cache,
		reports: report.NewService(cache, cfg.Report, log),
	}, nil
}

// loadErrorReport lists every problem behind a dataset validation failure.
// Other errors yield an empty string.
func loadErrorReport(err error) string {
	var loadErr *validation.LoadError
	if !errors.As(err, &loadErr) {
		return ""
	}
	return validation.FormatErrors(loadErr.Errors)
}

func (a *app) close() {
	a.log.Sync()
}
