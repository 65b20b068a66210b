package climate_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `"Data Source","World Development Indicators",

"Last Updated Date","2022-09-16",

"Country Name","Country Code","Indicator Name","Indicator Code","2000","2001","2002","2003","2004","2005",
"China","CHN","CO2 emissions (kt)","EN.ATM.CO2E.KT","1","2","3","4","5","6",
"China","CHN","Forest area (sq. km)","AG.LND.FRST.K2","10","20","30","40","50","60",
"India","IND","CO2 emissions (kt)","EN.ATM.CO2E.KT","..","4","6","8","10","",
"India","IND","Forest area (sq. km)","AG.LND.FRST.K2","5","5","","5","5","5",
"Russian Federation","RUS","CO2 emissions (kt)","EN.ATM.CO2E.KT","9","8","7","6","5","4",
"China","CHN","GDP (current US$)","NY.GDP.MKTP.CD","1","1","1","1","1","1",
`

func testSet(t *testing.T) *climate.IndicatorSet {
	t.Helper()
	set, err := climate.NewIndicatorSet(
		climate.Indicator{Name: "CO2 emissions (kt)", Alias: "CO2"},
		climate.Indicator{Name: "Forest area (sq. km)", Alias: "Forest"},
	)
	require.NoError(t, err)
	return set
}

func testOptions() climate.Options {
	return climate.Options{
		HeaderOffset: 4,
		DropOldest:   1,
		DropNewest:   1,
		Renames:      map[string]string{"Russian Federation": "Russia"},
	}
}

func loadFixture(t *testing.T) (*climate.LongTable, *climate.WideTable) {
	t.Helper()
	long, wide, err := climate.Load(strings.NewReader(fixture), testSet(t), testOptions())
	require.NoError(t, err)
	return long, wide
}

func TestLoadLongTable(t *testing.T) {
	long, _ := loadFixture(t)

	assert.Equal(t, []string{"2001", "2002", "2003", "2004"}, long.Years)
	assert.Equal(t, []string{"CO2", "Forest"}, long.Indicators())
	assert.Equal(t, []string{"China", "India", "Russia"}, long.Countries())
	require.Len(t, long.Rows, 4)

	for _, s := range long.Rows {
		assert.Contains(t, []string{"CO2", "Forest"}, s.Indicator)
		require.Len(t, s.Values, len(long.Years))
		for _, v := range s.Values {
			assert.False(t, math.IsNaN(v), "%s/%s has a missing value", s.Country, s.Indicator)
		}
	}

	india, ok := long.Lookup("India", "CO2")
	require.True(t, ok)
	assert.Equal(t, "IND", india.Code)
	assert.Equal(t, []float64{4, 6, 8, 10}, india.Values)

	_, ok = long.Lookup("India", "Forest")
	assert.False(t, ok, "incomplete series must be dropped")
	_, ok = long.Lookup("Russian Federation", "CO2")
	assert.False(t, ok, "renamed country keeps its old name")
}

func TestLoadWideTable(t *testing.T) {
	_, wide := loadFixture(t)

	assert.Equal(t, []string{"Country Code", "Indicator Name", "2001", "2002", "2003", "2004"}, wide.RowLabels)
	assert.Equal(t, []string{"China", "India", "Russia"}, wide.Countries())
	require.Len(t, wide.Columns, 4)
	for _, c := range wide.Columns {
		require.Len(t, c.Cells, len(wide.RowLabels))
		for _, cell := range c.Cells {
			assert.NotEmpty(t, cell)
		}
	}
	assert.True(t, wide.Has("Russia"))
	assert.False(t, wide.Has("Germany"))
	assert.Equal(t, wide, wide.Prune())
}

func TestPruneDropsIncompleteColumns(t *testing.T) {
	w := climate.Transpose([]string{"2001", "2002"}, []climate.Series{
		{Country: "A", Code: "AAA", Indicator: "X", Values: []float64{1, 2}},
		{Country: "B", Code: "BBB", Indicator: "X", Values: []float64{1, climate.Missing}},
	})
	p := w.Prune()
	require.Len(t, p.Columns, 1)
	assert.Equal(t, "A", p.Columns[0].Country)
	assert.Equal(t, []string{"AAA", "X", "1", "2"}, p.Columns[0].Cells)
	assert.Equal(t, p, p.Prune())
}

func TestLoadNoMatchingIndicator(t *testing.T) {
	set, err := climate.NewIndicatorSet(climate.Indicator{Name: "Nothing here"})
	require.NoError(t, err)
	long, wide, err := climate.Load(strings.NewReader(fixture), set, testOptions())
	require.NoError(t, err)
	assert.Empty(t, long.Rows)
	assert.Empty(t, wide.Columns)
	assert.Len(t, long.Years, 4)
}

func TestLoadSchemaError(t *testing.T) {
	in := "a\nb\nc\nd\n\"Country Name\",\"Country Code\",\"2000\"\n\"X\",\"XXX\",\"1\"\n"
	_, _, err := climate.Load(strings.NewReader(in), testSet(t), testOptions())
	var se *climate.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"Indicator Name", "Indicator Code"}, se.Missing)

	_, _, err = climate.Load(strings.NewReader("only\ntwo\n"), testSet(t), testOptions())
	require.ErrorAs(t, err, &se)
}

func TestLoadEmptyWindow(t *testing.T) {
	opt := testOptions()
	opt.DropOldest, opt.DropNewest = 3, 3
	_, _, err := climate.Load(strings.NewReader(fixture), testSet(t), opt)
	assert.ErrorIs(t, err, climate.ErrEmptyWindow)
}

func TestLoadToleratesBOMAndTrailingColumn(t *testing.T) {
	in := "\ufeffCountry Name,Country Code,Indicator Name,Indicator Code,2000,2001,\n" +
		"China,CHN,CO2 emissions (kt),X,1,2,\n"
	opt := climate.Options{}
	long, _, err := climate.Load(strings.NewReader(in), testSet(t), opt)
	require.NoError(t, err)
	require.Len(t, long.Rows, 1)
	assert.Equal(t, []string{"2000", "2001"}, long.Years)
}

func TestIndicatorFrame(t *testing.T) {
	long, _ := loadFixture(t)
	f, err := long.IndicatorFrame("CO2", []string{"China", "India"})
	require.NoError(t, err)
	assert.Equal(t, "CO2", f.Name)
	assert.Equal(t, []string{"China", "India"}, f.Columns)
	assert.Equal(t, [][]float64{{2, 3, 4, 5}, {4, 6, 8, 10}}, f.Values)

	_, err = long.IndicatorFrame("GDP", []string{"China"})
	assert.ErrorIs(t, err, climate.ErrKeyNotFound)

	_, err = long.IndicatorFrame("Forest", []string{"China", "India"})
	var kerr *climate.KeyNotFoundError
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "country", kerr.Kind)
	assert.Equal(t, "India", kerr.Key)
}

func TestIndicatorSetRejectsDuplicates(t *testing.T) {
	_, err := climate.NewIndicatorSet(
		climate.Indicator{Name: "A", Alias: "x"},
		climate.Indicator{Name: "B", Alias: "x"},
	)
	assert.Error(t, err)

	_, err = climate.NewIndicatorSet(climate.Indicator{Name: "A"}, climate.Indicator{Name: "A", Alias: "y"})
	assert.Error(t, err)

	set, err := climate.NewIndicatorSet(climate.Indicator{Name: "A", Alias: "x"}, climate.Indicator{Name: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "B"}, set.Displays())
	assert.Equal(t, 2, set.Len())
}

func TestKeyNotFoundMatchesSentinel(t *testing.T) {
	var err error = &climate.KeyNotFoundError{Kind: "country", Key: "Atlantis"}
	assert.True(t, errors.Is(err, climate.ErrKeyNotFound))
	assert.Equal(t, `country "Atlantis" not found`, err.Error())
}
