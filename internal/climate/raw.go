package climate

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Key columns of the World Bank wide export.
const (
	ColCountryName   = "Country Name"
	ColCountryCode   = "Country Code"
	ColIndicatorName = "Indicator Name"
	ColIndicatorCode = "Indicator Code"
)

var requiredColumns = []string{ColCountryName, ColCountryCode, ColIndicatorName, ColIndicatorCode}

// RawTable is the source table as read: a header and string cells.
type RawTable struct {
	Header  []string
	Records [][]string // every record padded to len(Header)
	index   map[string]int
}

// ReadRawFile opens path and reads it with ReadRaw, or ReadRawXLSX for .xlsx files.
func ReadRawFile(path string, headerOffset int, sheet string) (*RawTable, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ReadRawXLSX(path, sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	t, err := ReadRaw(f, headerOffset)
	var se *SchemaError
	if errors.As(err, &se) {
		se.Source = filepath.Base(path)
	}
	return t, err
}

// ReadRaw skips headerOffset physical lines, then parses the remaining CSV.
func ReadRaw(r io.Reader, headerOffset int) (*RawTable, error) {
	br := bufio.NewReader(r)
	for i := 0; i < headerOffset; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &SchemaError{Missing: requiredColumns}
			}
			return nil, fmt.Errorf("skip preamble line %d: %w", i+1, err)
		}
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Missing: requiredColumns}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return newRawTable(header, records)
}

// ReadRawXLSX reads the World Bank XLSX export. The header row is the first
// row whose first cell is "Country Name". An empty sheet selects "Data" when
// present, otherwise the first sheet.
func ReadRawXLSX(path, sheet string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		for _, s := range sheets {
			if strings.EqualFold(s, "Data") {
				sheet = s
				break
			}
		}
		if sheet == "" && len(sheets) > 0 {
			sheet = sheets[0]
		}
	}
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			sheet, filepath.Base(path), strings.Join(sheets, ", "))
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == ColCountryName {
			t, err := newRawTable(row, rows[i+1:])
			var se *SchemaError
			if errors.As(err, &se) {
				se.Source = filepath.Base(path)
			}
			return t, err
		}
	}
	return nil, &SchemaError{Source: filepath.Base(path), Missing: requiredColumns}
}

func newRawTable(header []string, records [][]string) (*RawTable, error) {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		header[i] = h
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	out := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(header))
		copy(row, rec)
		out = append(out, row)
	}
	log.WithFields(log.Fields{"columns": len(header), "rows": len(out)}).Debug("read raw table")
	return &RawTable{Header: header, Records: out, index: idx}, nil
}

// Col returns the index of a named column.
func (t *RawTable) Col(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// YearColumns returns the indexes and labels of year columns in file order.
// Unnamed, metadata and any other non-year columns are excluded.
func (t *RawTable) YearColumns() ([]int, []string) {
	var idxs []int
	var labels []string
	for i, h := range t.Header {
		if isYear(h) {
			idxs = append(idxs, i)
			labels = append(labels, h)
		}
	}
	return idxs, labels
}

func isYear(h string) bool {
	if len(h) != 4 {
		return false
	}
	y, err := strconv.Atoi(h)
	return err == nil && y >= 1000
}

// parseCell converts a data cell; empty, "..", and unparsable cells are missing.
func parseCell(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == ".." {
		return Missing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing
	}
	return f
}
