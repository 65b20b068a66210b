package analysis

import (
	"fmt"

	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
)

// RollingCorr holds trailing-window correlations for every column pair.
// Steps without a full window are not represented.
type RollingCorr struct {
	Name    string
	Window  int
	Columns []string
	Pairs   []PairCorr  // A and B only; R is unused
	Years   []string    // end year of each window
	Values  [][]float64 // Values[step][pair]
}

// Rolling computes Pearson correlations over a trailing window for every
// pair (i<j) of columns of f.
func Rolling(f *climate.Frame, window int) (*RollingCorr, error) {
	n := len(f.Years)
	if window < 2 {
		return nil, fmt.Errorf("rolling window must be >= 2, got %d", window)
	}
	if window > n {
		return nil, fmt.Errorf("rolling window %d exceeds %d years for %s", window, n, f.Name)
	}
	k := len(f.Columns)
	rc := &RollingCorr{Name: f.Name, Window: window, Columns: append([]string(nil), f.Columns...)}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			rc.Pairs = append(rc.Pairs, PairCorr{A: f.Columns[i], B: f.Columns[j]})
		}
	}
	for t := window - 1; t < n; t++ {
		lo := t - window + 1
		row := make([]float64, 0, len(rc.Pairs))
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				row = append(row, pearson(f.Values[i][lo:t+1], f.Values[j][lo:t+1]))
			}
		}
		rc.Years = append(rc.Years, f.Years[t])
		rc.Values = append(rc.Values, row)
	}
	return rc, nil
}

// pairIndex maps column indexes i<j to their position in Pairs.
func pairIndex(i, j, k int) int {
	return i*k - i*(i+1)/2 + (j - i - 1)
}

// At returns the correlation of columns a and b for the window ending at year.
func (rc *RollingCorr) At(year, a, b string) (float64, bool) {
	step := -1
	for s, y := range rc.Years {
		if y == year {
			step = s
			break
		}
	}
	if step < 0 {
		return 0, false
	}
	i, j := indexOf(rc.Columns, a), indexOf(rc.Columns, b)
	if i < 0 || j < 0 || i == j {
		return 0, false
	}
	if i > j {
		i, j = j, i
	}
	return rc.Values[step][pairIndex(i, j, len(rc.Columns))], true
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
