package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/wbclimate-cli/internal/report"
	"github.com/KaramelBytes/wbclimate-cli/internal/run"
	"github.com/KaramelBytes/wbclimate-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaOutDir     string
	anaMetadata   string
	anaTopPairs   int
	anaNoCharts   bool
	anaNoXLSX     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run the full indicator analysis: statistics, correlations, charts and workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		out, errw := cmd.OutOrStdout(), cmd.ErrOrStderr()
		ds, err := loadDataset(args[0], c)
		if err != nil {
			return err
		}
		meta := c.MetadataFile
		if anaMetadata != "" {
			meta = anaMetadata
		}
		res, err := compute(errw, ds, c, meta)
		if err != nil {
			return err
		}

		dir := c.OutputDir
		if anaOutDir != "" {
			dir = anaOutDir
		}
		dir = absPath(dir)
		if err := utils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		m := run.New(ds.source, dir)
		m.Metadata = meta
		m.Countries = c.Countries
		m.Indicators = ds.long.Indicators()
		m.Years = ds.long.Years

		// Markdown tables cannot carry two-line headers.
		opt := report.Options{Markdown: anaOutputPath != "", SplitHeaders: anaOutputPath == "", TopPairs: anaTopPairs}
		if anaOutputPath != "" {
			var buf bytes.Buffer
			render(&buf, res, opt)
			if err := utils.SafeWriteFile(anaOutputPath, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			m.Add(run.KindReport, absPath(anaOutputPath))
			successf(out, "Wrote report to %s", anaOutputPath)
		} else {
			render(out, res, opt)
		}

		if !anaNoCharts {
			if err := renderCharts(errw, ds, c, res.heat, dir, m); err != nil {
				return err
			}
		}
		if !anaNoXLSX {
			path := filepath.Join(dir, "statistics.xlsx")
			if err := writeWorkbook(res, path); err != nil {
				return err
			}
			m.Add(run.KindWorkbook, path)
		}
		if err := m.Save(); err != nil {
			return err
		}
		successf(out, "Run %s: %d artifact(s) in %s", m.ID, len(m.Artifacts), dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report (Markdown)")
	analyzeCmd.Flags().StringVar(&anaOutDir, "out", "", "directory for charts, workbook and run.json (overrides output_dir)")
	analyzeCmd.Flags().StringVar(&anaMetadata, "metadata", "", "country metadata CSV (Country Code, Region, IncomeGroup)")
	analyzeCmd.Flags().IntVar(&anaTopPairs, "top-pairs", 5, "list the strongest correlation pairs (0 disables)")
	analyzeCmd.Flags().BoolVar(&anaNoCharts, "no-charts", false, "skip chart rendering")
	analyzeCmd.Flags().BoolVar(&anaNoXLSX, "no-xlsx", false, "skip the statistics workbook")
}

func absPath(p string) string {
	if a, err := filepath.Abs(p); err == nil {
		return a
	}
	return p
}
