package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix holds a symmetric Pearson correlation matrix across columns.
type CorrMatrix struct {
	Title   string
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlate computes pairwise-complete Pearson correlations between the
// columns of f. Each pair uses only the rows where both values are present.
func Correlate(f *climate.Frame) CorrMatrix {
	n := len(f.Columns)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := pearson(f.Values[a], f.Values[b])
			if a == b && !math.IsNaN(r) {
				r = 1
			}
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return CorrMatrix{Title: f.Name, Columns: append([]string(nil), f.Columns...), Values: mat}
}

// CorrelateCountries correlates the comparison countries for one indicator.
func CorrelateCountries(long *climate.LongTable, indicator string, countries []string) (CorrMatrix, error) {
	f, err := long.IndicatorFrame(indicator, countries)
	if err != nil {
		return CorrMatrix{}, err
	}
	return Correlate(f), nil
}

// TopPairs lists off-diagonal pairs ordered by |r|, skipping undefined ones.
func (m CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r := m.Values[i][j]; !math.IsNaN(r) {
				pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].R), math.Abs(pairs[j].R)
		if ai == aj {
			return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}

// pearson returns NaN with fewer than two complete pairs or a constant side.
func pearson(x, y []float64) float64 {
	var xs, ys []float64
	for i := 0; i < len(x) && i < len(y); i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 || degenerate(xs) || degenerate(ys) {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func degenerate(xs []float64) bool {
	if allEqual(xs) {
		return true
	}
	eps := math.Nextafter(1, 2) - 1
	mean := stat.Mean(xs, nil)
	return stat.Moment(2, xs, nil) <= (eps*mean)*(eps*mean)
}
