package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/wbclimate-cli/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set wbclimate configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		if err := cfg.Validate(); err != nil {
			warnf(cmd.ErrOrStderr(), "%v", err)
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".wbclimate", "config.yaml")
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
		if err := cfgpkg.Save(cfgpkg.Defaults(), cfgFile); err != nil {
			return err
		}
		successf(cmd.OutOrStdout(), "Wrote default config to %s", path)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long: `Set a scalar config value. List keys (countries, heatmap_countries) take a
comma-separated value. Indicators, renames and charts are edited in the file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "header_offset", "drop_oldest_years", "drop_newest_years", "rolling_window":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			switch key {
			case "header_offset":
				cfg.HeaderOffset = i
			case "drop_oldest_years":
				cfg.DropOldestYears = i
			case "drop_newest_years":
				cfg.DropNewestYears = i
			case "rolling_window":
				cfg.RollingWindow = i
			}
		case "chart_width_in", "chart_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for %s: %v", key, val)
			}
			if key == "chart_width_in" {
				cfg.ChartWidthIn = f
			} else {
				cfg.ChartHeightIn = f
			}
		case "countries":
			cfg.Countries = splitList(val)
		case "heatmap_countries":
			cfg.HeatmapCountries = splitList(val)
		case "output_dir":
			cfg.OutputDir = val
		case "metadata_file":
			cfg.MetadataFile = val
		case "sheet_name":
			cfg.SheetName = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
