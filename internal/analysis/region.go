package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/montanaflynn/stats"
)

// RegionSummary averages each indicator's latest retained year per region.
// Rows are regions; aggregates without a region are skipped.
func RegionSummary(j *climate.JoinedTable) StatisticTable {
	t := StatisticTable{Title: "Region means"}
	if len(j.Years) == 0 {
		return t
	}
	latest := len(j.Years) - 1
	t.Title = "Region means (" + j.Years[latest] + ")"

	var indicators []string
	seenInd := map[string]bool{}
	byRegion := map[string]map[string][]float64{}
	for _, r := range j.Rows {
		if !seenInd[r.Indicator] {
			seenInd[r.Indicator] = true
			indicators = append(indicators, r.Indicator)
		}
		if r.Region == "" {
			continue
		}
		m := byRegion[r.Region]
		if m == nil {
			m = map[string][]float64{}
			byRegion[r.Region] = m
		}
		if v := r.Values[latest]; !math.IsNaN(v) {
			m[r.Indicator] = append(m[r.Indicator], v)
		}
	}
	regions := make([]string, 0, len(byRegion))
	for r := range byRegion {
		regions = append(regions, r)
	}
	sort.Strings(regions)

	t.Columns = indicators
	for _, reg := range regions {
		row := StatRow{Kind: reg, Values: make([]float64, len(indicators))}
		for i, ind := range indicators {
			mean, err := stats.Mean(byRegion[reg][ind])
			if err != nil {
				mean = math.NaN()
			}
			row.Values[i] = round2(mean)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
