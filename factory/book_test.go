package factory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/depreciation-engine/book"
	"github.com/warp/depreciation-engine/factory"
	"github.com/warp/depreciation-engine/generic"
	"github.com/warp/depreciation-engine/timesystem"
)

const truckJSON = `{
	"name": "truck",
	"long_name": "Delivery truck",
	"acquired": "2023-02-06",
	"placed_in_service": "2023-03-01",
	"disposed": null,
	"basis_start": "100",
	"basis_impairment": ["-20"],
	"basis_adjustment": ["0"],
	"salvage": "0",
	"precision": -2,
	"system": "time",
	"system_data": {
		"life": "5",
		"offset": "month",
		"method": {"type": "declining_balance_macrs", "rate": "40"}
	}
}`

const truckYAML = `
name: truck
long_name: Delivery truck
acquired: "2023-02-06"
placed_in_service: "2023-03-01"
basis_start: "100"
basis_impairment: ["-20"]
basis_adjustment: ["0"]
precision: -2
system: time
system_data:
  life: "5"
  offset: month
  method:
    type: declining_balance_macrs
    rate: "40"
`

func d(s string) decimal.Decimal {
	return generic.MustParseDecimal(s)
}

func assertTruck(t *testing.T, a book.BookAsset) {
	t.Helper()
	assert.Equal(t, "truck", a.Name)
	assert.Equal(t, "Delivery truck", a.LongName)
	assert.True(t, a.Acquired.Equal(generic.NewTimePoint(2023, time.February, 6)))
	require.NotNil(t, a.PlacedInService)
	assert.True(t, a.PlacedInService.Equal(generic.NewTimePoint(2023, time.March, 1)))
	assert.Nil(t, a.Disposed)
	assert.True(t, d("100").Equal(a.BasisStart))
	require.Len(t, a.BasisImpairment, 1)
	assert.True(t, d("-20").Equal(a.BasisImpairment[0]))
	assert.Equal(t, generic.RoundTo(-2), a.Precision)
	assert.Equal(t, timesystem.Name, a.System)

	data, ok := a.SystemData.(timesystem.Data)
	require.True(t, ok, "system data is %T", a.SystemData)
	assert.True(t, d("5").Equal(data.Life))
	assert.Equal(t, timesystem.MonthOffset(), data.Offset)
	assert.Equal(t, generic.DecliningBalanceMACRS(d("40")), data.Method)
}

// =============================================================================
// PARSING
// =============================================================================

func TestParseJSON(t *testing.T) {
	f := factory.NewBookFactory()

	a, err := f.ParseJSON(truckJSON)

	require.NoError(t, err)
	assertTruck(t, a)
}

func TestParseYAML(t *testing.T) {
	f := factory.NewBookFactory()

	a, err := f.ParseYAML(truckYAML)

	require.NoError(t, err)
	assertTruck(t, a)
}

func TestParseJSON_Defaults(t *testing.T) {
	// GIVEN: a minimal document with no offset, precision or salvage
	// THEN: offset is fixed 0, no rounding, salvage 0
	f := factory.NewBookFactory()

	a, err := f.ParseJSON(`{
		"name": "desk", "acquired": "2023-01-01", "basis_start": "500",
		"system": "time",
		"system_data": {"life": "7", "method": {"type": "straight_line"}}
	}`)

	require.NoError(t, err)
	data := a.SystemData.(timesystem.Data)
	assert.True(t, data.Offset.Resolved())
	assert.True(t, data.Offset.Value.IsZero())
	assert.Equal(t, generic.StraightLine, data.Method)
	assert.False(t, a.Precision.Valid)
	assert.True(t, a.Salvage.IsZero())
	assert.Nil(t, a.PlacedInService)
}

func TestParseJSON_FixedOffset(t *testing.T) {
	f := factory.NewBookFactory()

	a, err := f.ParseJSON(`{
		"name": "desk", "acquired": "2023-01-01", "basis_start": "500",
		"system": "time",
		"system_data": {"life": "7", "offset": "0.5", "method": {"type": "declining_balance_only", "rate": "200"}}
	}`)

	require.NoError(t, err)
	data := a.SystemData.(timesystem.Data)
	assert.True(t, data.Offset.Equal(timesystem.Fixed(generic.Half)))
	assert.Equal(t, generic.DecliningBalanceOnly(d("200")), data.Method)
}

func TestParseJSON_Invalid(t *testing.T) {
	f := factory.NewBookFactory()

	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", `{"name":`},
		{"missing name", `{"acquired":"2023-01-01","basis_start":"1","system":"time","system_data":{"life":"1","method":{"type":"straight_line"}}}`},
		{"bad date", `{"name":"a","acquired":"01/02/2023","basis_start":"1","system":"time","system_data":{"life":"1","method":{"type":"straight_line"}}}`},
		{"bad basis", `{"name":"a","acquired":"2023-01-01","basis_start":"lots","system":"time","system_data":{"life":"1","method":{"type":"straight_line"}}}`},
		{"missing system", `{"name":"a","acquired":"2023-01-01","basis_start":"1","system_data":{"life":"1","method":{"type":"straight_line"}}}`},
		{"missing method", `{"name":"a","acquired":"2023-01-01","basis_start":"1","system":"time","system_data":{"life":"1"}}`},
		{"unknown method", `{"name":"a","acquired":"2023-01-01","basis_start":"1","system":"time","system_data":{"life":"1","method":{"type":"sum_of_years"}}}`},
		{"missing rate", `{"name":"a","acquired":"2023-01-01","basis_start":"1","system":"time","system_data":{"life":"1","method":{"type":"declining_balance_macrs"}}}`},
		{"zero rate", `{"name":"a","acquired":"2023-01-01","basis_start":"1","system":"time","system_data":{"life":"1","method":{"type":"declining_balance_only","rate":"0"}}}`},
		{"bad offset", `{"name":"a","acquired":"2023-01-01","basis_start":"1","system":"time","system_data":{"life":"1","offset":"week","method":{"type":"straight_line"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ParseJSON(tt.doc)
			assert.ErrorIs(t, err, book.ErrInvalidAsset)
			assert.True(t, book.IsClientError(err))
		})
	}
}

func TestParseJSON_UnknownSystem(t *testing.T) {
	f := factory.NewBookFactory()

	_, err := f.ParseJSON(`{"name":"a","acquired":"2023-01-01","basis_start":"1","system":"macrs"}`)

	assert.ErrorIs(t, err, book.ErrSystemNotFound)
}

func TestParseBook(t *testing.T) {
	f := factory.NewBookFactory()

	jsonBook := `[` + truckJSON + `,{
		"name": "desk", "acquired": "2023-01-01", "basis_start": "500",
		"system": "time",
		"system_data": {"life": "7", "method": {"type": "straight_line"}}
	}]`
	assets, err := f.ParseBook([]byte(jsonBook), factory.FormatJSON)
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assertTruck(t, assets[0])
	assert.Equal(t, "desk", assets[1].Name)

	yamlBook := `
- name: desk
  acquired: "2023-01-01"
  basis_start: "500"
  system: time
  system_data:
    life: "7"
    method: {type: straight_line}
`
	assets, err = f.ParseBook([]byte(yamlBook), factory.FormatYAML)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "desk", assets[0].Name)
}

func TestParseBook_ReportsEntry(t *testing.T) {
	f := factory.NewBookFactory()

	_, err := f.ParseBook([]byte(`[{"name":"a"}]`), factory.FormatJSON)

	assert.ErrorIs(t, err, book.ErrInvalidAsset)
	assert.Contains(t, err.Error(), "book entry 0")
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, factory.FormatYAML, factory.FormatFor("seed/book.yaml"))
	assert.Equal(t, factory.FormatYAML, factory.FormatFor("BOOK.YML"))
	assert.Equal(t, factory.FormatJSON, factory.FormatFor("book.json"))
	assert.Equal(t, factory.FormatJSON, factory.FormatFor("book"))
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestToJSON_RoundTrip(t *testing.T) {
	f := factory.NewBookFactory()
	a, err := f.ParseJSON(truckJSON)
	require.NoError(t, err)

	rec, err := f.ToRecord(a)
	require.NoError(t, err)
	assert.Equal(t, "truck", rec.Name)
	assert.Equal(t, timesystem.Name, rec.System)

	back, err := f.FromRecord(rec)
	require.NoError(t, err)
	assertTruck(t, back)
}

func TestToJSON_Methods(t *testing.T) {
	f := factory.NewBookFactory()
	base := book.BookAsset{
		Name:       "a",
		Acquired:   generic.NewTimePoint(2023, time.January, 1),
		BasisStart: d("1"),
		System:     timesystem.Name,
	}

	tests := []struct {
		method generic.Method
		want   factory.MethodJSON
	}{
		{generic.StraightLine, factory.MethodJSON{Type: factory.MethodStraightLine}},
		{generic.DecliningBalanceOnly(d("150")), factory.MethodJSON{Type: factory.MethodDecliningBalanceOnly, Rate: "150"}},
		{generic.DecliningBalanceMACRS(d("40.00")), factory.MethodJSON{Type: factory.MethodDecliningBalanceMACRS, Rate: "40"}},
	}

	for _, tt := range tests {
		a := base.WithSystemData(timesystem.Data{Life: d("5"), Offset: timesystem.DayOffset(), Method: tt.method})

		bj, err := f.ToJSON(a)

		require.NoError(t, err)
		require.NotNil(t, bj.SystemData.Method)
		assert.Equal(t, tt.want, *bj.SystemData.Method)
		assert.Equal(t, "day", bj.SystemData.Offset)
	}
}

func TestToJSON_ForeignSystemData(t *testing.T) {
	f := factory.NewBookFactory()

	_, err := f.ToJSON(book.BookAsset{Name: "a", System: "time"})

	assert.ErrorIs(t, err, book.ErrInvalidAsset)
}

// =============================================================================
// END TO END
// =============================================================================

func TestParsedBook_Projects(t *testing.T) {
	// GIVEN: a parsed document with a month offset (placed in service March)
	// WHEN: projecting through the time system
	// THEN: the first year is 10/12 of a year of straight-line
	f := factory.NewBookFactory()
	a, err := f.ParseJSON(`{
		"name": "desk", "acquired": "2023-03-15", "basis_start": "1200",
		"precision": -2, "system": "time",
		"system_data": {"life": "2", "offset": "month", "method": {"type": "straight_line"}}
	}`)
	require.NoError(t, err)

	reg := book.NewRegistry()
	require.NoError(t, timesystem.Register(reg))

	schedule, err := reg.Project(a, 2023, 2025)

	require.NoError(t, err)
	require.Len(t, schedule.Entries, 3)
	assert.True(t, d("500").Equal(schedule.Entries[0].Amount), "got %s", schedule.Entries[0].Amount)
	assert.True(t, d("600").Equal(schedule.Entries[1].Amount), "got %s", schedule.Entries[1].Amount)
	assert.True(t, d("100").Equal(schedule.Entries[2].Amount), "got %s", schedule.Entries[2].Amount)
}
