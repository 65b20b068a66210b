package cmd

import (
	"fmt"
	"io"
	"os"

	cfgpkg "github.com/KaramelBytes/wbclimate-cli/internal/config"
	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	strict  bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "wbclimate",
	Short: "wbclimate: statistics and charts for World Bank climate indicators",
	Long: `wbclimate reads a World Bank indicator export (CSV or XLSX), keeps the configured
climate indicators over a year window, and produces per-country and per-indicator
summary statistics, correlations, charts and a workbook of the results.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.wbclimate/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "fail instead of skipping unknown countries or indicators")
}

func loadConfig() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	cfg = nil
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		warnf(os.Stderr, "failed to load config: %v", err)
		return
	}
	cfg = c
}

// currentConfig returns the loaded configuration after validating it.
func currentConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func successf(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(w, "✓ "+format+"\n", args...)
}

func warnf(w io.Writer, format string, args ...any) {
	color.New(color.FgYellow).Fprintf(w, "⚠ Warning: "+format+"\n", args...)
}
