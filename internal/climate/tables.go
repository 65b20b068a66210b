package climate

import (
	"fmt"
	"io"
	"math"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Missing is the explicit missing-value marker for numeric cells.
var Missing = math.NaN()

// IsMissing reports whether v is the missing marker.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Options controls column pruning and renaming during reshaping.
type Options struct {
	// HeaderOffset is the number of physical preamble lines before the CSV header.
	HeaderOffset int
	// DropOldest and DropNewest trim the year columns to a contiguous window.
	DropOldest int
	DropNewest int
	// Renames maps source country names to display names.
	Renames map[string]string
}

// DefaultOptions matches the World Bank export and keeps 1990-2019 of a 1960-2021 file.
func DefaultOptions() Options {
	return Options{HeaderOffset: 4, DropOldest: 30, DropNewest: 2}
}

// Series is one (country, indicator) row of the long table.
type Series struct {
	Country   string
	Code      string
	Indicator string
	Values    []float64 // aligned with the table's Years
}

// LongTable has one row per (country, indicator) and one column per year.
// Every row has a complete series.
type LongTable struct {
	Years []string
	Rows  []Series
}

// Load reads a World Bank CSV export and reshapes it.
func Load(r io.Reader, set *IndicatorSet, opt Options) (*LongTable, *WideTable, error) {
	raw, err := ReadRaw(r, opt.HeaderOffset)
	if err != nil {
		return nil, nil, err
	}
	return Reshape(raw, set, opt)
}

// Reshape filters raw to the indicator set, prunes columns to the year window,
// and returns the long and wide views of the result.
func Reshape(raw *RawTable, set *IndicatorSet, opt Options) (*LongTable, *WideTable, error) {
	yearIdx, years := raw.YearColumns()
	if opt.DropOldest < 0 || opt.DropNewest < 0 {
		return nil, nil, fmt.Errorf("negative year drop: oldest=%d newest=%d", opt.DropOldest, opt.DropNewest)
	}
	if opt.DropOldest+opt.DropNewest >= len(years) {
		return nil, nil, fmt.Errorf("%w: %d year columns, dropping %d oldest and %d newest",
			ErrEmptyWindow, len(years), opt.DropOldest, opt.DropNewest)
	}
	yearIdx = yearIdx[opt.DropOldest : len(yearIdx)-opt.DropNewest]
	years = append([]string(nil), years[opt.DropOldest:len(years)-opt.DropNewest]...)

	cName, _ := raw.Col(ColCountryName)
	cCode, _ := raw.Col(ColCountryCode)
	cInd, _ := raw.Col(ColIndicatorName)

	var filtered []Series
	for _, rec := range raw.Records {
		display, ok := set.Lookup(rec[cInd])
		if !ok {
			continue
		}
		country := rec[cName]
		if to, ok := opt.Renames[country]; ok {
			country = to
		}
		vals := make([]float64, len(yearIdx))
		for i, j := range yearIdx {
			vals[i] = parseCell(rec[j])
		}
		filtered = append(filtered, Series{Country: country, Code: rec[cCode], Indicator: display, Values: vals})
	}

	long := &LongTable{Years: years}
	for _, s := range filtered {
		if complete(s.Values) {
			long.Rows = append(long.Rows, s)
		}
	}
	wide := Transpose(years, filtered).Prune()
	log.WithFields(log.Fields{
		"matched":   len(filtered),
		"long_rows": len(long.Rows),
		"wide_cols": len(wide.Columns),
		"years":     fmt.Sprintf("%s..%s", years[0], years[len(years)-1]),
	}).Debug("reshaped indicator table")
	return long, wide, nil
}

func complete(vals []float64) bool {
	for _, v := range vals {
		if IsMissing(v) {
			return false
		}
	}
	return true
}

// Indicators returns distinct indicator names in first-seen order.
func (t *LongTable) Indicators() []string {
	return distinct(t.Rows, func(s Series) string { return s.Indicator })
}

// Countries returns distinct country names in first-seen order.
func (t *LongTable) Countries() []string {
	return distinct(t.Rows, func(s Series) string { return s.Country })
}

func distinct(rows []Series, key func(Series) string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range rows {
		k := key(s)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// Lookup returns the series for a (country, indicator) pair.
func (t *LongTable) Lookup(country, indicator string) (Series, bool) {
	for _, s := range t.Rows {
		if s.Country == country && s.Indicator == indicator {
			return s, true
		}
	}
	return Series{}, false
}

// IndicatorFrame slices one indicator to the given countries, with years as
// rows and countries as columns.
func (t *LongTable) IndicatorFrame(indicator string, countries []string) (*Frame, error) {
	found := false
	for _, s := range t.Rows {
		if s.Indicator == indicator {
			found = true
			break
		}
	}
	if !found {
		return nil, &KeyNotFoundError{Kind: "indicator", Key: indicator}
	}
	f := &Frame{Name: indicator, Years: append([]string(nil), t.Years...)}
	for _, c := range countries {
		s, ok := t.Lookup(c, indicator)
		if !ok {
			return nil, &KeyNotFoundError{Kind: "country", Key: c}
		}
		f.Columns = append(f.Columns, c)
		f.Values = append(f.Values, append([]float64(nil), s.Values...))
	}
	return f, nil
}

// Structural row labels of the wide table.
const (
	RowCountryCode   = ColCountryCode
	RowIndicatorName = ColIndicatorName
)

// WideColumn is one (country, indicator) series of the wide table. Cells are
// aligned with WideTable.RowLabels.
type WideColumn struct {
	Country string
	Cells   []string
}

// WideTable has the country code, indicator name and years as rows and one
// column per (country, indicator) series, headed by the country name.
type WideTable struct {
	RowLabels []string
	Columns   []WideColumn
}

// Transpose builds the wide view of rows indexed by country.
func Transpose(years []string, rows []Series) *WideTable {
	w := &WideTable{RowLabels: append([]string{RowCountryCode, RowIndicatorName}, years...)}
	for _, s := range rows {
		cells := make([]string, 0, 2+len(s.Values))
		cells = append(cells, s.Code, s.Indicator)
		for _, v := range s.Values {
			cells = append(cells, formatCell(v))
		}
		w.Columns = append(w.Columns, WideColumn{Country: s.Country, Cells: cells})
	}
	return w
}

// Prune returns a copy without any column holding a missing cell.
// Pruning an already pruned table returns an equal table.
func (w *WideTable) Prune() *WideTable {
	out := &WideTable{RowLabels: append([]string(nil), w.RowLabels...)}
	for _, c := range w.Columns {
		if len(c.Cells) != len(w.RowLabels) {
			continue
		}
		keep := true
		for _, cell := range c.Cells {
			if cell == "" || cell == "NaN" {
				keep = false
				break
			}
		}
		if keep {
			out.Columns = append(out.Columns, WideColumn{Country: c.Country, Cells: append([]string(nil), c.Cells...)})
		}
	}
	return out
}

// Countries returns distinct column headers in order.
func (w *WideTable) Countries() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range w.Columns {
		if !seen[c.Country] {
			seen[c.Country] = true
			out = append(out, c.Country)
		}
	}
	return out
}

// Has reports whether the wide table holds at least one column for country.
func (w *WideTable) Has(country string) bool {
	for _, c := range w.Columns {
		if c.Country == country {
			return true
		}
	}
	return false
}

func formatCell(v float64) string {
	if IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
