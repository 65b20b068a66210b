package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Statistic kinds, in the order Describe emits them.
const (
	KindCount    = "count"
	KindMean     = "mean"
	KindStd      = "std"
	KindMin      = "min"
	KindQ25      = "25%"
	KindQ50      = "50%"
	KindQ75      = "75%"
	KindMax      = "max"
	KindVariance = "variance"
	KindSkewness = "skewness"
	KindKurtosis = "kurtosis"
)

// StatisticTable holds one row per statistic kind and one value per column.
// Values are rounded to 2 decimals; NaN means insufficient data.
type StatisticTable struct {
	Title   string
	Columns []string
	Rows    []StatRow
}

type StatRow struct {
	Kind   string
	Values []float64
}

// Value looks up a single cell.
func (t StatisticTable) Value(kind, column string) (float64, bool) {
	ci := -1
	for i, c := range t.Columns {
		if c == column {
			ci = i
			break
		}
	}
	if ci < 0 {
		return 0, false
	}
	for _, r := range t.Rows {
		if r.Kind == kind {
			return r.Values[ci], true
		}
	}
	return 0, false
}

// Summary is the descriptive summary of one numeric series.
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Summarize computes count, mean, sample std, min, quartiles and max over the
// non-missing values of xs. Statistics that need more data are NaN.
func Summarize(xs []float64) Summary {
	vals := present(xs)
	s := Summary{Count: len(vals)}
	nan := math.NaN()
	if len(vals) == 0 {
		s.Mean, s.Std, s.Min, s.Max, s.Q25, s.Q50, s.Q75 = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		s.Std = nan
	} else if allEqual(vals) {
		s.Std = 0
	}
	s.Min, _ = stats.Min(vals)
	s.Max, _ = stats.Max(vals)
	s.Q50, _ = stats.Median(vals)
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// Describe computes the descriptive summary of every column of f.
func Describe(f *climate.Frame) StatisticTable {
	t := StatisticTable{Title: f.Name, Columns: append([]string(nil), f.Columns...)}
	kinds := []string{KindCount, KindMean, KindStd, KindMin, KindQ25, KindQ50, KindQ75, KindMax}
	rows := make([]StatRow, len(kinds))
	for i, k := range kinds {
		rows[i] = StatRow{Kind: k, Values: make([]float64, len(f.Columns))}
	}
	for c := range f.Columns {
		s := Summarize(f.Values[c])
		for i, v := range []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max} {
			rows[i].Values[c] = round2(v)
		}
	}
	t.Rows = rows
	return t
}

// DescribeIndicator summarizes one indicator across the comparison countries,
// with years as rows and one column per country.
func DescribeIndicator(long *climate.LongTable, indicator string, countries []string) (StatisticTable, error) {
	f, err := long.IndicatorFrame(indicator, countries)
	if err != nil {
		return StatisticTable{}, err
	}
	return Describe(f), nil
}

func present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func allEqual(xs []float64) bool {
	for _, v := range xs[1:] {
		if v != xs[0] {
			return false
		}
	}
	return true
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*100) / 100
}
