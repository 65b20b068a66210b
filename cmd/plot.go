package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/KaramelBytes/wbclimate-cli/internal/run"
	"github.com/KaramelBytes/wbclimate-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	plotOutDir    string
	plotNoHeatmap bool
)

var plotCmd = &cobra.Command{
	Use:   "plot <file>",
	Short: "Render the configured charts and heatmaps without the text report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		ds, err := loadDataset(args[0], c)
		if err != nil {
			return err
		}
		dir := c.OutputDir
		if plotOutDir != "" {
			dir = plotOutDir
		}
		dir = absPath(dir)
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		// Extend an existing run in the same directory.
		m, err := run.Load(dir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			m = run.New(ds.source, dir)
			m.Countries = c.Countries
			m.Indicators = ds.long.Indicators()
			m.Years = ds.long.Years
		}

		var heat []analysis.CorrMatrix
		if !plotNoHeatmap {
			for _, country := range c.HeatmapCountries {
				f, err := climate.ExtractCountry(ds.wide, country)
				if err != nil {
					if err := skippable(cmd.ErrOrStderr(), err); err != nil {
						return err
					}
					continue
				}
				heat = append(heat, analysis.Correlate(f))
			}
		}
		before := len(m.Artifacts)
		if err := renderCharts(cmd.ErrOrStderr(), ds, c, heat, dir, m); err != nil {
			return err
		}
		if err := m.Save(); err != nil {
			return err
		}
		successf(cmd.OutOrStdout(), "Rendered charts into %s (%d new)", dir, len(m.Artifacts)-before)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plotOutDir, "out", "", "directory for charts (overrides output_dir)")
	plotCmd.Flags().BoolVar(&plotNoHeatmap, "no-heatmap", false, "skip per-country indicator heatmaps")
}
