package cmd

import (
	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/KaramelBytes/wbclimate-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	indCountries []string
	indMarkdown  bool
)

var indicatorCmd = &cobra.Command{
	Use:   "indicator <file> <indicator>",
	Short: "Compare one indicator across the configured countries",
	Long: `Compare one indicator across countries. The indicator is given by its display
alias (or its World Bank name when no alias is configured).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		ds, err := loadDataset(args[0], c)
		if err != nil {
			return err
		}
		indicator := args[1]
		countries := c.Countries
		if len(indCountries) > 0 {
			countries = indCountries
		}
		countries = availableCountries(cmd.ErrOrStderr(), ds.long, indicator, countries)
		if len(countries) == 0 {
			return &climate.KeyNotFoundError{Kind: "indicator", Key: indicator}
		}
		t, err := analysis.DescribeIndicator(ds.long, indicator, countries)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		report.Banner(out, "Comparison of "+indicator+" across countries")
		report.Statistic(out, t, report.Options{Markdown: indMarkdown, SplitHeaders: !indMarkdown})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indicatorCmd)
	indicatorCmd.Flags().StringSliceVarP(&indCountries, "country", "c", nil, "countries to compare (default: configured countries)")
	indicatorCmd.Flags().BoolVar(&indMarkdown, "markdown", false, "render Markdown tables")
}
