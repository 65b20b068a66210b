package climate

import (
	"fmt"
	"strconv"
	"strings"
)

// Frame is a numeric table with years as rows and named columns. Values are
// stored column-major; NaN marks a missing value.
type Frame struct {
	Name    string
	Code    string
	Years   []string
	Columns []string
	Values  [][]float64 // Values[col][row]
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	for i, c := range f.Columns {
		if c == name {
			return append([]float64(nil), f.Values[i]...), true
		}
	}
	return nil, false
}

// ExtractCountry slices one country out of the wide table. The indicator-name
// row supplies column headers and every year cell is coerced to a number;
// cells that cannot be parsed become Missing.
func ExtractCountry(w *WideTable, country string) (*Frame, error) {
	if len(w.RowLabels) < 2 {
		return nil, &SchemaError{Missing: []string{RowCountryCode, RowIndicatorName}}
	}
	f := &Frame{Name: country, Years: append([]string(nil), w.RowLabels[2:]...)}
	for _, c := range w.Columns {
		if c.Country != country {
			continue
		}
		if f.Code == "" {
			f.Code = c.Cells[0]
		}
		header := c.Cells[1]
		if header == "" {
			header = fmt.Sprintf("column %d", len(f.Columns)+1)
		}
		vals := make([]float64, len(c.Cells)-2)
		for i, cell := range c.Cells[2:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				v = Missing
			}
			vals[i] = v
		}
		f.Columns = append(f.Columns, header)
		f.Values = append(f.Values, vals)
	}
	if len(f.Columns) == 0 {
		return nil, &KeyNotFoundError{Kind: "country", Key: country}
	}
	return f, nil
}
