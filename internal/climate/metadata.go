package climate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	log "github.com/sirupsen/logrus"
)

// Metadata columns of the World Bank country metadata export.
const (
	ColRegion      = "Region"
	ColIncomeGroup = "IncomeGroup"
)

// JoinedRow is a long-table row with its country metadata.
type JoinedRow struct {
	Series
	Region      string
	IncomeGroup string
}

// JoinedTable is the long table inner-joined with country metadata.
type JoinedTable struct {
	Years []string
	Rows  []JoinedRow
}

// ReadMetadata reads a country metadata CSV and returns a string-typed frame
// with the columns Country Code, Region and IncomeGroup.
func ReadMetadata(r io.Reader) (dataframe.DataFrame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dataframe.DataFrame{}, &SchemaError{Source: "metadata", Missing: []string{ColCountryCode, ColRegion, ColIncomeGroup}}
		}
		return dataframe.DataFrame{}, fmt.Errorf("read metadata header: %w", err)
	}
	want := []string{ColCountryCode, ColRegion, ColIncomeGroup}
	pos := make([]int, len(want))
	var missing []string
	for i, w := range want {
		pos[i] = -1
		for j, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == w {
				pos[i] = j
				break
			}
		}
		if pos[i] < 0 {
			missing = append(missing, w)
		}
	}
	if len(missing) > 0 {
		return dataframe.DataFrame{}, &SchemaError{Source: "metadata", Missing: missing}
	}
	records := [][]string{want}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return dataframe.DataFrame{}, fmt.Errorf("read metadata row %d: %w", len(records), err)
		}
		row := make([]string, len(want))
		for i, p := range pos {
			if p < len(rec) {
				row[i] = strings.TrimSpace(rec[p])
			}
		}
		records = append(records, row)
	}
	df := dataframe.LoadRecords(records, dataframe.DetectTypes(false), dataframe.DefaultType(series.String))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("load metadata: %w", df.Err)
	}
	return df, nil
}

// JoinMetadata inner-joins the long table with metadata on Country Code.
// Rows without a metadata entry are dropped; row order is preserved.
func JoinMetadata(long *LongTable, meta dataframe.DataFrame) (*JoinedTable, error) {
	out := &JoinedTable{Years: append([]string(nil), long.Years...)}
	if len(long.Rows) == 0 {
		return out, nil
	}
	records := [][]string{{"Row", ColCountryCode}}
	for i, s := range long.Rows {
		records = append(records, []string{strconv.Itoa(i), s.Code})
	}
	left := dataframe.LoadRecords(records, dataframe.DetectTypes(false), dataframe.DefaultType(series.String))
	if left.Err != nil {
		return nil, fmt.Errorf("load long table keys: %w", left.Err)
	}
	joined := left.InnerJoin(meta, ColCountryCode)
	if joined.Err != nil {
		return nil, fmt.Errorf("join metadata: %w", joined.Err)
	}
	idx := joined.Col("Row").Records()
	regions := joined.Col(ColRegion).Records()
	incomes := joined.Col(ColIncomeGroup).Records()
	type keyed struct {
		pos int
		row JoinedRow
	}
	rows := make([]keyed, 0, len(idx))
	for k := range idx {
		i, err := strconv.Atoi(idx[k])
		if err != nil || i < 0 || i >= len(long.Rows) {
			return nil, fmt.Errorf("join metadata: bad row key %q", idx[k])
		}
		rows = append(rows, keyed{pos: i, row: JoinedRow{Series: long.Rows[i], Region: clean(regions[k]), IncomeGroup: clean(incomes[k])}})
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].pos < rows[b].pos })
	for _, r := range rows {
		out.Rows = append(out.Rows, r.row)
	}
	log.WithFields(log.Fields{"long_rows": len(long.Rows), "joined_rows": len(out.Rows)}).Debug("joined country metadata")
	return out, nil
}

// clean maps gota's missing-string markers back to empty.
func clean(s string) string {
	if s == "NaN" {
		return ""
	}
	return s
}
