package chart

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Chart kinds.
const (
	KindLine = "line"
	KindBar  = "bar"
	KindBox  = "box"
)

// Spec describes one indicator chart.
type Spec struct {
	Kind      string
	Indicator string
	File      string
	Title     string
	Years     []string // bar charts only
}

// Size is the output image size.
type Size struct {
	Width, Height vg.Length
}

// SizeInches converts a size given in inches.
func SizeInches(w, h float64) Size {
	return Size{Width: vg.Length(w) * vg.Inch, Height: vg.Length(h) * vg.Inch}
}

// Render draws spec for the comparison countries into dir and returns the
// written path. The file is overwritten if it exists.
func Render(long *climate.LongTable, spec Spec, countries []string, dir string, size Size) (string, error) {
	path := filepath.Join(dir, spec.File)
	title := spec.Title
	if title == "" {
		title = spec.Indicator
	}
	f, err := available(long, spec.Indicator, countries)
	if err != nil {
		return "", err
	}
	var p *plot.Plot
	switch spec.Kind {
	case KindLine:
		p, err = lines(f, title)
	case KindBar:
		p, err = bars(f, title, spec.Years)
	case KindBox:
		p, err = boxes(f, title)
	default:
		return "", fmt.Errorf("unsupported chart kind %q", spec.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("chart %s: %w", spec.File, err)
	}
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return "", fmt.Errorf("save chart %s: %w", spec.File, err)
	}
	return path, nil
}

// available builds an indicator frame from the countries that have the
// indicator, logging the ones that don't.
func available(long *climate.LongTable, indicator string, countries []string) (*climate.Frame, error) {
	var keep []string
	for _, c := range countries {
		if _, ok := long.Lookup(c, indicator); ok {
			keep = append(keep, c)
		} else {
			log.WithFields(log.Fields{"country": c, "indicator": indicator}).Warn("no complete series; left out of chart")
		}
	}
	if len(keep) == 0 {
		return nil, &climate.KeyNotFoundError{Kind: "indicator", Key: indicator}
	}
	return long.IndicatorFrame(indicator, keep)
}

func lines(f *climate.Frame, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = f.Name
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	for i, c := range f.Columns {
		pts := make(plotter.XYs, 0, len(f.Years))
		for r, y := range f.Years {
			x, err := strconv.ParseFloat(y, 64)
			if err != nil {
				return nil, fmt.Errorf("year label %q: %w", y, err)
			}
			pts = append(pts, plotter.XY{X: x, Y: f.Values[i][r]})
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		l.Color = plotutil.Color(i)
		l.Dashes = plotutil.Dashes(i)
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(c, l)
	}
	return p, nil
}

func bars(f *climate.Frame, title string, years []string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = f.Name
	p.Legend.Top = true
	rows := make([]int, 0, len(years))
	for _, y := range years {
		r := indexOf(f.Years, y)
		if r < 0 {
			log.WithField("year", y).Warn("year outside retained window; left out of bar chart")
			continue
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		rows = append(rows, len(f.Years)-1)
	}
	width := vg.Points(60 / float64(len(rows)))
	for k, r := range rows {
		vals := make(plotter.Values, len(f.Columns))
		for c := range f.Columns {
			vals[c] = f.Values[c][r]
		}
		b, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return nil, err
		}
		b.LineStyle.Width = vg.Length(0)
		b.Color = plotutil.Color(k)
		b.Offset = vg.Length(float64(k)-float64(len(rows)-1)/2) * width
		p.Add(b)
		p.Legend.Add(f.Years[r], b)
	}
	p.NominalX(f.Columns...)
	return p, nil
}

func boxes(f *climate.Frame, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = f.Name
	for c := range f.Columns {
		b, err := plotter.NewBoxPlot(vg.Points(30), float64(c), plotter.Values(f.Values[c]))
		if err != nil {
			return nil, err
		}
		p.Add(b)
	}
	p.NominalX(f.Columns...)
	return p, nil
}

// Heatmap draws a correlation matrix with cell labels.
func Heatmap(m analysis.CorrMatrix, title, path string, size Size) error {
	if len(m.Columns) == 0 {
		return fmt.Errorf("heatmap %s: empty matrix", filepath.Base(path))
	}
	p := plot.New()
	p.Title.Text = title
	hm := plotter.NewHeatMap(corrGrid{m}, palette.Heat(12, 1))
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	var xys plotter.XYs
	var labels []string
	for r := range m.Columns {
		for c := range m.Columns {
			v := m.Values[r][c]
			label := "n/a"
			if !math.IsNaN(v) {
				label = strconv.FormatFloat(v, 'f', 2, 64)
			}
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			labels = append(labels, label)
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("heatmap labels: %w", err)
	}
	p.Add(l)
	p.NominalX(m.Columns...)
	p.NominalY(m.Columns...)
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("save heatmap %s: %w", filepath.Base(path), err)
	}
	return nil
}

type corrGrid struct{ m analysis.CorrMatrix }

func (g corrGrid) Dims() (c, r int)   { n := len(g.m.Columns); return n, n }
func (g corrGrid) Z(c, r int) float64 { return g.m.Values[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
