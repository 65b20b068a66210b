package report_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/KaramelBytes/wbclimate-cli/internal/report"
	"github.com/stretchr/testify/assert"
)

func TestSplitHeader(t *testing.T) {
	cases := []struct{ in, want string }{
		{"CO2 emissions", "CO2 em\nissions"},
		{"ab", "a\nb"},
		{"a", "a"},
		{"", ""},
		{"Über", "Üb\ner"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, report.SplitHeader(c.in), c.in)
	}
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	report.Banner(&buf, "The summary statistics for China")
	assert.Equal(t, "========== The summary statistics for China ===========\n\n", buf.String())
}

func TestStatisticTable(t *testing.T) {
	st := analysis.StatisticTable{
		Title:   "China",
		Columns: []string{"CO2", "Forest area"},
		Rows: []analysis.StatRow{
			{Kind: analysis.KindMean, Values: []float64{3.5, 35}},
			{Kind: analysis.KindStd, Values: []float64{1.29, math.NaN()}},
		},
	}
	var buf bytes.Buffer
	report.Statistic(&buf, st, report.Options{SplitHeaders: true})
	out := buf.String()
	assert.Contains(t, out, "3.50")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Fores")
	assert.Contains(t, out, "t area")
	assert.NotContains(t, out, "Forest area", "header should be split over two lines")

	buf.Reset()
	report.Statistic(&buf, st, report.Options{Markdown: true})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "|"))
	assert.Contains(t, lines[0], "Forest area")
}

func TestCorrelationTopPairs(t *testing.T) {
	m := analysis.CorrMatrix{
		Title:   "CO2",
		Columns: []string{"China", "India"},
		Values:  [][]float64{{1, 0.987}, {0.987, 1}},
	}
	var buf bytes.Buffer
	report.Correlation(&buf, m, report.Options{TopPairs: 3})
	out := buf.String()
	assert.Contains(t, out, "0.99")
	assert.Contains(t, out, "[CORRELATIONS]")
	assert.Contains(t, out, "- China ~ India: r=0.987")

	buf.Reset()
	report.Correlation(&buf, m, report.Options{})
	assert.NotContains(t, buf.String(), "[CORRELATIONS]")
}

func TestRollingTable(t *testing.T) {
	rc := &analysis.RollingCorr{
		Name:    "CO2",
		Window:  3,
		Columns: []string{"A", "B"},
		Pairs:   []analysis.PairCorr{{A: "A", B: "B"}},
		Years:   []string{"2003", "2004"},
		Values:  [][]float64{{0.5}, {math.NaN()}},
	}
	var buf bytes.Buffer
	report.Rolling(&buf, rc, report.Options{})
	out := buf.String()
	assert.Contains(t, out, "A ~ B")
	assert.Contains(t, out, "2003")
	assert.Contains(t, out, "0.50")
	assert.Contains(t, out, "n/a")
}
