package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/olekukonko/tablewriter"
)

// Options controls table rendering.
type Options struct {
	// Markdown renders pipe tables instead of boxed console tables.
	Markdown bool
	// SplitHeaders breaks each column header into two lines at its midpoint.
	SplitHeaders bool
	// TopPairs limits the correlation pair listing; 0 disables it.
	TopPairs int
}

// SplitHeader breaks a label into two lines at its middle character.
func SplitHeader(label string) string {
	r := []rune(label)
	mid := len(r) / 2
	if mid == 0 {
		return label
	}
	return string(r[:mid]) + "\n" + string(r[mid:])
}

// Banner writes the section header used for per-country summaries.
func Banner(w io.Writer, title string) {
	fmt.Fprintf(w, "========== %s ===========\n\n", title)
}

// Rule closes a bannered section.
func Rule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 66))
	fmt.Fprintln(w)
}

// Statistic renders a statistic table with one row per kind.
func Statistic(w io.Writer, t analysis.StatisticTable, opt Options) {
	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "")
	for _, c := range t.Columns {
		if opt.SplitHeaders {
			c = SplitHeader(c)
		}
		header = append(header, c)
	}
	tw := newTable(w, opt)
	tw.SetHeader(header)
	for _, r := range t.Rows {
		row := make([]string, 0, len(r.Values)+1)
		row = append(row, r.Kind)
		for _, v := range r.Values {
			row = append(row, formatValue(v, 2))
		}
		tw.Append(row)
	}
	tw.Render()
}

// Correlation renders a correlation matrix and, optionally, its strongest pairs.
func Correlation(w io.Writer, m analysis.CorrMatrix, opt Options) {
	header := make([]string, 0, len(m.Columns)+1)
	header = append(header, "")
	for _, c := range m.Columns {
		if opt.SplitHeaders {
			c = SplitHeader(c)
		}
		header = append(header, c)
	}
	tw := newTable(w, opt)
	tw.SetHeader(header)
	for i, c := range m.Columns {
		row := make([]string, 0, len(m.Columns)+1)
		row = append(row, c)
		for _, v := range m.Values[i] {
			row = append(row, formatValue(v, 2))
		}
		tw.Append(row)
	}
	tw.Render()
	if opt.TopPairs > 0 {
		pairs := m.TopPairs(opt.TopPairs)
		if len(pairs) == 0 {
			return
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "[CORRELATIONS]")
		for _, p := range pairs {
			fmt.Fprintf(w, "- %s ~ %s: r=%.3f\n", p.A, p.B, p.R)
		}
	}
}

// Rolling renders one row per window end year and one column per pair.
func Rolling(w io.Writer, rc *analysis.RollingCorr, opt Options) {
	header := []string{"year"}
	for _, p := range rc.Pairs {
		label := p.A + " ~ " + p.B
		if opt.SplitHeaders {
			label = p.A + "\n~ " + p.B
		}
		header = append(header, label)
	}
	tw := newTable(w, opt)
	tw.SetHeader(header)
	for s, y := range rc.Years {
		row := []string{y}
		for _, v := range rc.Values[s] {
			row = append(row, formatValue(v, 2))
		}
		tw.Append(row)
	}
	tw.Render()
}

func newTable(w io.Writer, opt Options) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetAlignment(tablewriter.ALIGN_RIGHT)
	tw.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	if opt.Markdown {
		tw.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		tw.SetCenterSeparator("|")
	}
	return tw
}

// formatValue prints NaN as "n/a" (insufficient data).
func formatValue(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
