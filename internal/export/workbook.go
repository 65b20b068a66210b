package export

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/wbclimate-cli/internal/analysis"
	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// Workbook collects analysis tables, one sheet each, and saves them as .xlsx.
type Workbook struct {
	f     *excelize.File
	names map[string]bool
	count int
}

// NewWorkbook starts an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile(), names: map[string]bool{}}
}

// AddStatistic writes t with statistic kinds down the first column.
func (w *Workbook) AddStatistic(t analysis.StatisticTable) (string, error) {
	rows := make([][]any, 0, len(t.Rows)+1)
	rows = append(rows, header(t.Columns))
	for _, r := range t.Rows {
		row := make([]any, 0, len(r.Values)+1)
		row = append(row, r.Kind)
		for _, v := range r.Values {
			row = append(row, cell(v))
		}
		rows = append(rows, row)
	}
	return w.addSheet(t.Title, rows)
}

// AddCorrelation writes a correlation matrix with labels on both axes.
func (w *Workbook) AddCorrelation(m analysis.CorrMatrix) (string, error) {
	rows := make([][]any, 0, len(m.Columns)+1)
	rows = append(rows, header(m.Columns))
	for i, c := range m.Columns {
		row := make([]any, 0, len(m.Columns)+1)
		row = append(row, c)
		for _, v := range m.Values[i] {
			row = append(row, cell(v))
		}
		rows = append(rows, row)
	}
	return w.addSheet("Corr "+m.Title, rows)
}

// AddRolling writes one row per window end year.
func (w *Workbook) AddRolling(rc *analysis.RollingCorr) (string, error) {
	head := []any{"year"}
	for _, p := range rc.Pairs {
		head = append(head, p.A+" ~ "+p.B)
	}
	rows := [][]any{head}
	for s, y := range rc.Years {
		row := []any{y}
		for _, v := range rc.Values[s] {
			row = append(row, cell(v))
		}
		rows = append(rows, row)
	}
	return w.addSheet("Rolling "+strconv.Itoa(rc.Window)+" "+rc.Name, rows)
}

// Save writes the workbook to path.
func (w *Workbook) Save(path string) error {
	if w.count == 0 {
		return fmt.Errorf("workbook %s: no sheets", path)
	}
	if err := w.f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	w.f.SetActiveSheet(0)
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return w.f.Close()
}

func (w *Workbook) addSheet(title string, rows [][]any) (string, error) {
	name := w.uniqueName(SheetName(title))
	if _, err := w.f.NewSheet(name); err != nil {
		return "", fmt.Errorf("new sheet %q: %w", name, err)
	}
	for i, r := range rows {
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", err
		}
		if err := w.f.SetSheetRow(name, start, &r); err != nil {
			return "", fmt.Errorf("sheet %q row %d: %w", name, i+1, err)
		}
	}
	if len(rows) > 0 && len(rows[0]) > 1 {
		last, _ := excelize.ColumnNumberToName(len(rows[0]))
		_ = w.f.SetColWidth(name, "A", last, 16)
	}
	w.names[strings.ToLower(name)] = true
	w.count++
	return name, nil
}

func (w *Workbook) uniqueName(base string) string {
	name := base
	for n := 2; w.names[strings.ToLower(name)] || strings.EqualFold(name, "Sheet1"); n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	return name
}

// SheetName strips characters Excel rejects and truncates to 31 characters.
func SheetName(title string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return ' '
		}
		return r
	}, title)
	s = strings.Trim(strings.Join(strings.Fields(s), " "), "'")
	if s == "" {
		s = "Table"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = strings.TrimSpace(string(r[:maxSheetName]))
	}
	return s
}

func header(cols []string) []any {
	h := make([]any, 0, len(cols)+1)
	h = append(h, "")
	for _, c := range cols {
		h = append(h, c)
	}
	return h
}

// cell leaves undefined statistics blank.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
