package analysis_test

import (
	"math"
	"testing"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMatchesPlainCorrelation(t *testing.T) {
	f := frame(map[string][]float64{
		"A": {1, 3, 2, 5, 4, 7, 6},
		"B": {2, 2, 5, 4, 8, 6, 9},
		"C": {9, 7, 8, 4, 5, 1, 2},
	}, "A", "B", "C")
	const window = 4
	rc, err := analysis.Rolling(f, window)
	require.NoError(t, err)

	assert.Equal(t, window, rc.Window)
	assert.Len(t, rc.Years, len(f.Years)-window+1)
	assert.Equal(t, f.Years[window-1], rc.Years[0])
	require.Len(t, rc.Pairs, 3)
	assert.Equal(t, []string{"A", "B"}, []string{rc.Pairs[0].A, rc.Pairs[0].B})
	assert.Equal(t, []string{"A", "C"}, []string{rc.Pairs[1].A, rc.Pairs[1].B})
	assert.Equal(t, []string{"B", "C"}, []string{rc.Pairs[2].A, rc.Pairs[2].B})

	for s := range rc.Years {
		end := s + window
		sub := &climate.Frame{Columns: f.Columns}
		for c := range f.Columns {
			sub.Values = append(sub.Values, f.Values[c][s:end])
		}
		plain := analysis.Correlate(sub)
		for i := range f.Columns {
			for j := i + 1; j < len(f.Columns); j++ {
				got, ok := rc.At(rc.Years[s], f.Columns[j], f.Columns[i])
				require.True(t, ok)
				want := plain.Values[i][j]
				if math.IsNaN(want) {
					assert.True(t, math.IsNaN(got))
					continue
				}
				assert.InDelta(t, want, got, 1e-12)
			}
		}
	}
}

func TestRollingWindowBounds(t *testing.T) {
	f := frame(map[string][]float64{"A": {1, 2, 3}, "B": {3, 1, 2}}, "A", "B")
	_, err := analysis.Rolling(f, 1)
	assert.Error(t, err)
	_, err = analysis.Rolling(f, 4)
	assert.Error(t, err)

	rc, err := analysis.Rolling(f, 3)
	require.NoError(t, err)
	assert.Len(t, rc.Years, 1)
	_, ok := rc.At("a", "A", "B")
	assert.False(t, ok, "no full window ends at the first year")
	_, ok = rc.At("c", "A", "A")
	assert.False(t, ok)
}
