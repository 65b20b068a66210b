package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `"Data Source","World Development Indicators",

"Last Updated Date","2022-09-16",

"Country Name","Country Code","Indicator Name","Indicator Code","2000","2001","2002","2003","2004","2005","2006","2007",
"China","CHN","CO2 emissions (kt)","EN.ATM.CO2E.KT","1","2","3","4","5","6","7","8",
"China","CHN","Forest area (sq. km)","AG.LND.FRST.K2","80","75","73","70","66","60","58","55",
"India","IND","CO2 emissions (kt)","EN.ATM.CO2E.KT","2","3","5","4","6","8","9","11",
"India","IND","Forest area (sq. km)","AG.LND.FRST.K2","","40","41","","43","44","45","46",
"World","WLD","CO2 emissions (kt)","EN.ATM.CO2E.KT","10","11","12","13","14","15","16","17",
`

const testMeta = `Country Code,Region,IncomeGroup
CHN,East Asia & Pacific,Upper middle income
IND,South Asia,Lower middle income
WLD,,
`

const testConfig = `header_offset: 4
drop_oldest_years: 1
drop_newest_years: 1
rolling_window: 3
countries: [China, India, Germany]
heatmap_countries: [China]
chart_width_in: 4
chart_height_in: 3
indicators:
  - name: CO2 emissions (kt)
    alias: CO2
  - name: Forest area (sq. km)
    alias: Forest
charts:
  - kind: line
    indicator: CO2
    file: co2_line.png
  - kind: box
    indicator: CO2
    file: co2_box.png
  - kind: bar
    indicator: Forest
    file: forest_bar.png
    years: ["2001", "2006"]
`

// resetFlags restores every flag to its default; cobra keeps flag state
// between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout and stderr.
func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errw bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errw)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errw.String(), err
}

type fixture struct {
	home, data, meta, config string
}

func setup(t *testing.T) fixture {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	fx := fixture{
		home:   home,
		data:   filepath.Join(home, "wb.csv"),
		meta:   filepath.Join(home, "meta.csv"),
		config: filepath.Join(home, "wbclimate.yaml"),
	}
	require.NoError(t, os.WriteFile(fx.data, []byte(testCSV), 0o644))
	require.NoError(t, os.WriteFile(fx.meta, []byte(testMeta), 0o644))
	require.NoError(t, os.WriteFile(fx.config, []byte(testConfig), 0o644))
	return fx
}

func TestCLI_AnalyzeWritesArtifactsAndList(t *testing.T) {
	fx := setup(t)
	outDir := filepath.Join(fx.home, "out")
	reportPath := filepath.Join(fx.home, "report.md")

	stdout, stderr, err := runCmd(t, "analyze", fx.data, "--config", fx.config,
		"--out", outDir, "--output", reportPath, "--metadata", fx.meta)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "Wrote report to")
	assert.Contains(t, stderr, "Germany")

	body, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	report := string(body)
	assert.Contains(t, report, "========== The summary statistics for China ===========")
	assert.Contains(t, report, "========== The summary statistics for India ===========")
	assert.Contains(t, report, "Correlation of CO2 between countries")
	assert.Contains(t, report, "Rolling 3-year correlation of CO2")
	assert.Contains(t, report, "Rolling 3-year correlation of China")
	assert.Contains(t, report, "Region means (2006)")
	assert.NotContains(t, report, "for Germany")

	for _, f := range []string{"run.json", "statistics.xlsx", "co2_line.png", "co2_box.png", "forest_bar.png", "heatmap_china.png"} {
		_, err := os.Stat(filepath.Join(outDir, f))
		assert.NoError(t, err, f)
	}

	stdout, _, err = runCmd(t, "list", outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "co2_line.png")
	assert.Contains(t, stdout, "statistics.xlsx")
	assert.Contains(t, stdout, "report.md")
	assert.NotContains(t, stdout, "missing")
}

func TestCLI_DescribeStrict(t *testing.T) {
	fx := setup(t)

	stdout, stderr, err := runCmd(t, "describe", fx.data, "--config", fx.config, "-c", "Germany,China", "--moments")
	require.NoError(t, err)
	assert.Contains(t, stdout, "The summary statistics for China")
	assert.Contains(t, stdout, "skewness")
	assert.Contains(t, stderr, "Germany")

	_, _, err = runCmd(t, "describe", fx.data, "--config", fx.config, "-c", "Germany", "--strict")
	assert.ErrorIs(t, err, climate.ErrKeyNotFound)
}

func TestCLI_IndicatorAndCorrelate(t *testing.T) {
	fx := setup(t)

	stdout, _, err := runCmd(t, "indicator", fx.data, "CO2", "--config", fx.config)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Comparison of CO2 across countries")

	stdout, _, err = runCmd(t, "correlate", fx.data, "CO2", "--config", fx.config, "-c", "China,India", "--rolling", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[CORRELATIONS]")
	assert.Contains(t, stdout, "Rolling 3-year correlation of CO2")

	heat := filepath.Join(fx.home, "china.png")
	stdout, _, err = runCmd(t, "correlate", fx.data, "--for-country", "China", "--config", fx.config, "--heatmap", heat)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Indicator correlation for China")
	_, err = os.Stat(heat)
	assert.NoError(t, err)

	_, _, err = runCmd(t, "correlate", fx.data, "--config", fx.config)
	assert.Error(t, err)
}

func TestCLI_PlotExtendsRun(t *testing.T) {
	fx := setup(t)
	outDir := filepath.Join(fx.home, "charts")

	stdout, _, err := runCmd(t, "plot", fx.data, "--config", fx.config, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Rendered charts")
	_, err = os.Stat(filepath.Join(outDir, "run.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "heatmap_china.png"))
	assert.NoError(t, err)
}

func TestCLI_ConfigInitSetShow(t *testing.T) {
	setup(t)

	stdout, _, err := runCmd(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote default config")

	_, _, err = runCmd(t, "config", "init")
	assert.Error(t, err)

	_, _, err = runCmd(t, "config", "set", "rolling_window", "9")
	require.NoError(t, err)
	_, _, err = runCmd(t, "config", "set", "no_such_key", "1")
	assert.Error(t, err)

	stdout, _, err = runCmd(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "rolling_window: 9")
	assert.Contains(t, stdout, "Renewable energy")
}
