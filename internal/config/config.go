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

// Global configuration structure.
type Global struct {
	// Loader
	HeaderOffset    int               `mapstructure:"header_offset" yaml:"header_offset"`
	DropOldestYears int               `mapstructure:"drop_oldest_years" yaml:"drop_oldest_years"`
	DropNewestYears int               `mapstructure:"drop_newest_years" yaml:"drop_newest_years"`
	Indicators      []IndicatorConfig `mapstructure:"indicators" yaml:"indicators"`
	CountryRenames  []RenameConfig    `mapstructure:"country_renames" yaml:"country_renames"`
	MetadataFile    string            `mapstructure:"metadata_file" yaml:"metadata_file"`
	SheetName       string            `mapstructure:"sheet_name" yaml:"sheet_name"`

	// Analysis
	Countries        []string `mapstructure:"countries" yaml:"countries"`
	HeatmapCountries []string `mapstructure:"heatmap_countries" yaml:"heatmap_countries"`
	RollingWindow    int      `mapstructure:"rolling_window" yaml:"rolling_window"`

	// Output
	OutputDir     string        `mapstructure:"output_dir" yaml:"output_dir"`
	ChartWidthIn  float64       `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64       `mapstructure:"chart_height_in" yaml:"chart_height_in"`
	Charts        []ChartConfig `mapstructure:"charts" yaml:"charts"`
}

// IndicatorConfig maps a World Bank indicator name to a short display alias.
type IndicatorConfig struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Alias string `mapstructure:"alias" yaml:"alias,omitempty"`
}

// RenameConfig renames a country after filtering. Kept as a list because
// viper lower-cases map keys.
type RenameConfig struct {
	From string `mapstructure:"from" yaml:"from"`
	To   string `mapstructure:"to" yaml:"to"`
}

// ChartConfig describes one chart rendered per run.
type ChartConfig struct {
	Kind      string   `mapstructure:"kind" yaml:"kind"` // line|bar|box
	Indicator string   `mapstructure:"indicator" yaml:"indicator"`
	File      string   `mapstructure:"file" yaml:"file"`
	Title     string   `mapstructure:"title" yaml:"title,omitempty"`
	Years     []string `mapstructure:"years" yaml:"years,omitempty"`
}

// DefaultIndicators is the indicator set of the climate report.
func DefaultIndicators() []IndicatorConfig {
	return []IndicatorConfig{
		{Name: "Population growth (annual %)", Alias: "Population growth"},
		{Name: "Forest area (sq. km)", Alias: "Forest area"},
		{Name: "CO2 emissions (kt)", Alias: "CO2 emissions"},
		{Name: "Agricultural land (% of land area)", Alias: "Agricultural land"},
		{Name: "Arable land (% of land area)", Alias: "Arable land"},
		{Name: "Access to electricity (% of population)", Alias: "Access to electricity"},
		{Name: "Renewable energy consumption (% of total final energy consumption)", Alias: "Renewable energy"},
		{Name: "Urban population (% of total population)", Alias: "Urban population"},
	}
}

// DefaultCharts is the chart set of the climate report.
func DefaultCharts() []ChartConfig {
	return []ChartConfig{
		{Kind: "line", Indicator: "CO2 emissions", File: "co2_emissions_line.png", Title: "CO2 emissions (kt)"},
		{Kind: "line", Indicator: "Urban population", File: "urban_population_line.png", Title: "Urban population (% of total)"},
		{Kind: "bar", Indicator: "Renewable energy", File: "renewable_energy_bar.png", Title: "Renewable energy consumption (%)",
			Years: []string{"1990", "1995", "2000", "2005", "2010", "2015"}},
		{Kind: "line", Indicator: "Forest area", File: "forest_area_line.png", Title: "Forest area (sq. km)"},
		{Kind: "line", Indicator: "Arable land", File: "arable_land_line.png", Title: "Arable land (% of land area)"},
		{Kind: "box", Indicator: "Population growth", File: "population_growth_box.png", Title: "Population growth (annual %)"},
	}
}

// Defaults returns the configuration used when no file or env overrides exist.
func Defaults() *Global {
	return &Global{
		HeaderOffset:     4,
		DropOldestYears:  30,
		DropNewestYears:  2,
		Indicators:       DefaultIndicators(),
		CountryRenames:   []RenameConfig{{From: "Russian Federation", To: "Russia"}, {From: "Korea, Rep.", To: "South Korea"}},
		Countries:        []string{"Brazil", "China", "India", "Germany", "United States"},
		HeatmapCountries: []string{"China", "India"},
		RollingWindow:    5,
		OutputDir:        "out",
		ChartWidthIn:     8,
		ChartHeightIn:    5,
		Charts:           DefaultCharts(),
	}
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.wbclimate/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	def := Defaults()
	v := viper.New()
	v.SetEnvPrefix("WBCLIMATE")
	v.AutomaticEnv()

	// Scalar defaults; list-of-struct defaults are filled after Unmarshal.
	v.SetDefault("header_offset", def.HeaderOffset)
	v.SetDefault("drop_oldest_years", def.DropOldestYears)
	v.SetDefault("drop_newest_years", def.DropNewestYears)
	v.SetDefault("countries", def.Countries)
	v.SetDefault("heatmap_countries", def.HeatmapCountries)
	v.SetDefault("rolling_window", def.RollingWindow)
	v.SetDefault("output_dir", def.OutputDir)
	v.SetDefault("metadata_file", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("chart_width_in", def.ChartWidthIn)
	v.SetDefault("chart_height_in", def.ChartHeightIn)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Indicators) == 0 {
		c.Indicators = def.Indicators
	}
	if c.CountryRenames == nil {
		c.CountryRenames = def.CountryRenames
	}
	if len(c.Charts) == 0 {
		c.Charts = def.Charts
	}
	return &c, nil
}

// Validate checks the configuration before any input is read.
func (c *Global) Validate() error {
	var errs []error
	if c.HeaderOffset < 0 {
		errs = append(errs, fmt.Errorf("header_offset must be >= 0, got %d", c.HeaderOffset))
	}
	if c.DropOldestYears < 0 || c.DropNewestYears < 0 {
		errs = append(errs, errors.New("drop_oldest_years and drop_newest_years must be >= 0"))
	}
	if len(c.Indicators) == 0 {
		errs = append(errs, errors.New("at least one indicator is required"))
	}
	names := map[string]bool{}
	display := map[string]string{}
	for _, ind := range c.Indicators {
		name := strings.TrimSpace(ind.Name)
		if name == "" {
			errs = append(errs, errors.New("indicator with empty name"))
			continue
		}
		if names[name] {
			errs = append(errs, fmt.Errorf("duplicate indicator %q", name))
		}
		names[name] = true
		d := ind.Display()
		if prev, ok := display[d]; ok {
			errs = append(errs, fmt.Errorf("alias %q maps both %q and %q", d, prev, name))
		}
		display[d] = name
	}
	if c.RollingWindow < 2 {
		errs = append(errs, fmt.Errorf("rolling_window must be >= 2, got %d", c.RollingWindow))
	}
	for _, ch := range c.Charts {
		switch ch.Kind {
		case "line", "bar", "box":
		default:
			errs = append(errs, fmt.Errorf("chart %q: unsupported kind %q (use line|bar|box)", ch.File, ch.Kind))
		}
		if ch.File == "" {
			errs = append(errs, fmt.Errorf("chart for %q has no file name", ch.Indicator))
		}
		if _, ok := display[ch.Indicator]; !ok && ch.Indicator != "" {
			errs = append(errs, fmt.Errorf("chart %q references unknown indicator %q", ch.File, ch.Indicator))
		}
	}
	return errors.Join(errs...)
}

// Display returns the alias, or the source name when no alias is set.
func (i IndicatorConfig) Display() string {
	if a := strings.TrimSpace(i.Alias); a != "" {
		return a
	}
	return strings.TrimSpace(i.Name)
}

// Renames returns the country rename table as a map.
func (c *Global) Renames() map[string]string {
	out := make(map[string]string, len(c.CountryRenames))
	for _, r := range c.CountryRenames {
		if r.From != "" && r.To != "" {
			out[r.From] = r.To
		}
	}
	return out
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".wbclimate"), nil
}
