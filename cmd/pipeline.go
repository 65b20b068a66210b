package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/KaramelBytes/wbclimate-cli/internal/chart"
	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	cfgpkg "github.com/KaramelBytes/wbclimate-cli/internal/config"
	"github.com/KaramelBytes/wbclimate-cli/internal/export"
	"github.com/KaramelBytes/wbclimate-cli/internal/report"
	"github.com/KaramelBytes/wbclimate-cli/internal/run"
	log "github.com/sirupsen/logrus"
)

// dataset is one loaded input file in both shapes.
type dataset struct {
	source string
	set    *climate.IndicatorSet
	long   *climate.LongTable
	wide   *climate.WideTable
}

func loadDataset(path string, c *cfgpkg.Global) (*dataset, error) {
	items := make([]climate.Indicator, 0, len(c.Indicators))
	for _, ind := range c.Indicators {
		items = append(items, climate.Indicator{Name: ind.Name, Alias: ind.Alias})
	}
	set, err := climate.NewIndicatorSet(items...)
	if err != nil {
		return nil, err
	}
	raw, err := climate.ReadRawFile(path, c.HeaderOffset, c.SheetName)
	if err != nil {
		return nil, err
	}
	opt := climate.Options{
		HeaderOffset: c.HeaderOffset,
		DropOldest:   c.DropOldestYears,
		DropNewest:   c.DropNewestYears,
		Renames:      c.Renames(),
	}
	long, wide, err := climate.Reshape(raw, set, opt)
	if err != nil {
		return nil, fmt.Errorf("reshape %s: %w", filepath.Base(path), err)
	}
	log.WithFields(log.Fields{
		"file":       filepath.Base(path),
		"records":    len(raw.Records),
		"series":     len(long.Rows),
		"countries":  len(wide.Countries()),
		"indicators": len(long.Indicators()),
	}).Info("loaded indicator table")
	return &dataset{source: path, set: set, long: long, wide: wide}, nil
}

// skippable swallows key-not-found errors with a warning unless --strict is set.
func skippable(w io.Writer, err error) error {
	if err == nil {
		return nil
	}
	if !strict && errors.Is(err, climate.ErrKeyNotFound) {
		warnf(w, "%v (skipped)", err)
		return nil
	}
	return err
}

// availableCountries filters countries to those with a complete series for
// indicator. With --strict the list is returned unchanged.
func availableCountries(w io.Writer, long *climate.LongTable, indicator string, countries []string) []string {
	if strict {
		return countries
	}
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		if _, ok := long.Lookup(c, indicator); ok {
			out = append(out, c)
			continue
		}
		warnf(w, "no complete %q series for %s (skipped)", indicator, c)
	}
	return out
}

type countryStats struct {
	summary analysis.StatisticTable
	moments analysis.StatisticTable
}

// results holds everything a full run computes.
type results struct {
	countries  []countryStats
	indicators []analysis.StatisticTable
	corr       []analysis.CorrMatrix
	rolling    []*analysis.RollingCorr
	heat       []analysis.CorrMatrix
	region     *analysis.StatisticTable
}

func compute(errw io.Writer, ds *dataset, c *cfgpkg.Global, metadataPath string) (*results, error) {
	res := &results{}
	for _, country := range c.Countries {
		f, err := climate.ExtractCountry(ds.wide, country)
		if err != nil {
			if err := skippable(errw, err); err != nil {
				return nil, err
			}
			continue
		}
		res.countries = append(res.countries, countryStats{summary: analysis.Describe(f), moments: analysis.Moments(f)})
	}

	for _, ind := range ds.long.Indicators() {
		countries := availableCountries(errw, ds.long, ind, c.Countries)
		if len(countries) == 0 {
			continue
		}
		f, err := ds.long.IndicatorFrame(ind, countries)
		if err != nil {
			if err := skippable(errw, err); err != nil {
				return nil, err
			}
			continue
		}
		res.indicators = append(res.indicators, analysis.Describe(f))
		if len(countries) < 2 {
			continue
		}
		res.corr = append(res.corr, analysis.Correlate(f))
		if len(f.Years) >= c.RollingWindow {
			rc, err := analysis.Rolling(f, c.RollingWindow)
			if err != nil {
				return nil, err
			}
			res.rolling = append(res.rolling, rc)
		} else {
			log.WithFields(log.Fields{"indicator": ind, "window": c.RollingWindow, "years": len(f.Years)}).
				Debug("rolling window longer than retained years")
		}
	}

	for _, country := range c.HeatmapCountries {
		f, err := climate.ExtractCountry(ds.wide, country)
		if err != nil {
			if err := skippable(errw, err); err != nil {
				return nil, err
			}
			continue
		}
		res.heat = append(res.heat, analysis.Correlate(f))
		if len(f.Columns) > 1 && len(f.Years) >= c.RollingWindow {
			rc, err := analysis.Rolling(f, c.RollingWindow)
			if err != nil {
				return nil, err
			}
			res.rolling = append(res.rolling, rc)
		}
	}

	if metadataPath != "" {
		t, err := regionSummary(ds, metadataPath)
		if err != nil {
			return nil, err
		}
		res.region = &t
	}
	return res, nil
}

func regionSummary(ds *dataset, path string) (analysis.StatisticTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return analysis.StatisticTable{}, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()
	meta, err := climate.ReadMetadata(f)
	if err != nil {
		var se *climate.SchemaError
		if errors.As(err, &se) {
			se.Source = filepath.Base(path)
		}
		return analysis.StatisticTable{}, err
	}
	joined, err := climate.JoinMetadata(ds.long, meta)
	if err != nil {
		return analysis.StatisticTable{}, err
	}
	return analysis.RegionSummary(joined), nil
}

// render writes the text report of a full run.
func render(w io.Writer, res *results, opt report.Options) {
	for _, cs := range res.countries {
		report.Banner(w, "The summary statistics for "+cs.summary.Title)
		report.Statistic(w, cs.summary, opt)
		fmt.Fprintln(w)
		report.Statistic(w, cs.moments, opt)
		fmt.Fprintln(w)
		report.Rule(w)
	}
	for _, t := range res.indicators {
		report.Banner(w, "Comparison of "+t.Title+" across countries")
		report.Statistic(w, t, opt)
		fmt.Fprintln(w)
	}
	for _, m := range res.corr {
		report.Banner(w, "Correlation of "+m.Title+" between countries")
		report.Correlation(w, m, opt)
		fmt.Fprintln(w)
	}
	for _, rc := range res.rolling {
		report.Banner(w, fmt.Sprintf("Rolling %d-year correlation of %s", rc.Window, rc.Name))
		report.Rolling(w, rc, opt)
		fmt.Fprintln(w)
	}
	for _, m := range res.heat {
		report.Banner(w, "Indicator correlation for "+m.Title)
		report.Correlation(w, m, opt)
		fmt.Fprintln(w)
	}
	if res.region != nil {
		report.Banner(w, res.region.Title)
		report.Statistic(w, *res.region, opt)
		fmt.Fprintln(w)
	}
}

func writeWorkbook(res *results, path string) error {
	wb := export.NewWorkbook()
	for _, cs := range res.countries {
		if _, err := wb.AddStatistic(cs.summary); err != nil {
			return err
		}
		moments := cs.moments
		moments.Title = "Moments " + moments.Title
		if _, err := wb.AddStatistic(moments); err != nil {
			return err
		}
	}
	for _, t := range res.indicators {
		if _, err := wb.AddStatistic(t); err != nil {
			return err
		}
	}
	for _, m := range res.corr {
		if _, err := wb.AddCorrelation(m); err != nil {
			return err
		}
	}
	for _, rc := range res.rolling {
		if _, err := wb.AddRolling(rc); err != nil {
			return err
		}
	}
	if res.region != nil {
		if _, err := wb.AddStatistic(*res.region); err != nil {
			return err
		}
	}
	return wb.Save(path)
}

// renderCharts writes the configured indicator charts and, when given, the
// heatmaps into dir and records them in m.
func renderCharts(errw io.Writer, ds *dataset, c *cfgpkg.Global, heat []analysis.CorrMatrix, dir string, m *run.Manifest) error {
	size := chart.SizeInches(c.ChartWidthIn, c.ChartHeightIn)
	for _, ch := range c.Charts {
		spec := chart.Spec{Kind: ch.Kind, Indicator: ch.Indicator, File: ch.File, Title: ch.Title, Years: ch.Years}
		path, err := chart.Render(ds.long, spec, c.Countries, dir, size)
		if err != nil {
			if err := skippable(errw, err); err != nil {
				return err
			}
			continue
		}
		m.Add(run.KindChart, path)
	}
	for _, hm := range heat {
		path := filepath.Join(dir, "heatmap_"+slug(hm.Title)+".png")
		if err := chart.Heatmap(hm, "Indicator correlation: "+hm.Title, path, size); err != nil {
			return err
		}
		m.Add(run.KindHeatmap, path)
	}
	return nil
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
