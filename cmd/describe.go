package cmd

import (
	"fmt"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/KaramelBytes/wbclimate-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	descCountries []string
	descMoments   bool
	descMarkdown  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Print summary statistics of every indicator for each country",
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
		countries := c.Countries
		if len(descCountries) > 0 {
			countries = descCountries
		}
		out := cmd.OutOrStdout()
		opt := report.Options{Markdown: descMarkdown, SplitHeaders: !descMarkdown}
		for _, country := range countries {
			f, err := climate.ExtractCountry(ds.wide, country)
			if err != nil {
				if err := skippable(cmd.ErrOrStderr(), err); err != nil {
					return err
				}
				continue
			}
			report.Banner(out, "The summary statistics for "+country)
			report.Statistic(out, analysis.Describe(f), opt)
			if descMoments {
				fmt.Fprintln(out)
				report.Statistic(out, analysis.Moments(f), opt)
			}
			fmt.Fprintln(out)
			report.Rule(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringSliceVarP(&descCountries, "country", "c", nil, "countries to describe (default: configured countries)")
	describeCmd.Flags().BoolVar(&descMoments, "moments", false, "also print variance, skewness and kurtosis")
	describeCmd.Flags().BoolVar(&descMarkdown, "markdown", false, "render Markdown tables")
}
