package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/KaramelBytes/wbclimate-cli/internal/chart"
	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/KaramelBytes/wbclimate-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	corrCountries []string
	corrCountry   string
	corrRolling   int
	corrTopPairs  int
	corrHeatmap   string
	corrMarkdown  bool
)

var correlateCmd = &cobra.Command{
	Use:   "correlate <file> [indicator]",
	Short: "Correlate countries for one indicator, or indicators for one country",
	Long: `With an indicator argument, correlate the configured countries' series of that
indicator (optionally over a trailing --rolling window). With --for-country,
correlate every indicator of that country instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if (len(args) == 2) == (corrCountry != "") {
			return fmt.Errorf("specify exactly one of <indicator> or --for-country")
		}
		ds, err := loadDataset(args[0], c)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		opt := report.Options{Markdown: corrMarkdown, SplitHeaders: !corrMarkdown, TopPairs: corrTopPairs}

		var f *climate.Frame
		if corrCountry != "" {
			f, err = climate.ExtractCountry(ds.wide, corrCountry)
			if err != nil {
				return err
			}
			report.Banner(out, "Indicator correlation for "+corrCountry)
		} else {
			indicator := args[1]
			countries := c.Countries
			if len(corrCountries) > 0 {
				countries = corrCountries
			}
			countries = availableCountries(cmd.ErrOrStderr(), ds.long, indicator, countries)
			if len(countries) < 2 {
				return fmt.Errorf("correlating %q needs at least two countries with complete series", indicator)
			}
			f, err = ds.long.IndicatorFrame(indicator, countries)
			if err != nil {
				return err
			}
			report.Banner(out, "Correlation of "+indicator+" between countries")
		}
		m := analysis.Correlate(f)
		report.Correlation(out, m, opt)

		if corrRolling > 0 {
			rc, err := analysis.Rolling(f, corrRolling)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			report.Banner(out, fmt.Sprintf("Rolling %d-year correlation of %s", rc.Window, rc.Name))
			report.Rolling(out, rc, opt)
		}
		if corrHeatmap != "" {
			size := chart.SizeInches(c.ChartWidthIn, c.ChartHeightIn)
			if err := chart.Heatmap(m, "Correlation: "+m.Title, corrHeatmap, size); err != nil {
				return err
			}
			successf(out, "Wrote heatmap to %s", filepath.Clean(corrHeatmap))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	correlateCmd.Flags().StringSliceVarP(&corrCountries, "country", "c", nil, "countries to correlate (default: configured countries)")
	correlateCmd.Flags().StringVar(&corrCountry, "for-country", "", "correlate all indicators of one country")
	correlateCmd.Flags().IntVar(&corrRolling, "rolling", 0, "also compute correlations over a trailing window of N years")
	correlateCmd.Flags().IntVar(&corrTopPairs, "top-pairs", 5, "list the strongest correlation pairs (0 disables)")
	correlateCmd.Flags().StringVar(&corrHeatmap, "heatmap", "", "write a heatmap PNG of the matrix to this path")
	correlateCmd.Flags().BoolVar(&corrMarkdown, "markdown", false, "render Markdown tables")
}
