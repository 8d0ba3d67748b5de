package generic_test

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/depreciation-engine/generic"
)

// =============================================================================
// STRAIGHT-LINE
// =============================================================================

func TestStraightLine_WholeYear(t *testing.T) {
	sl := generic.StraightLine
	cases := []struct{ basis, life, want string }{
		{"1", "5", "0.2"},
		{"0.8", "4", "0.2"},
		{"0.6", "3", "0.2"},
		{"0.4", "2", "0.2"},
		{"0.2", "1", "0.2"},
		{"0", "0", "0"},
	}
	for _, c := range cases {
		a := generic.Asset{Basis: d(c.basis), Life: d(c.life), Method: sl}
		assertDecimal(t, d(c.want), sl.Depreciation(a, generic.One), "basis %s life %s", c.basis, c.life)
	}
}

func TestStraightLine_FractionalLife(t *testing.T) {
	sl := generic.StraightLine

	assertDecimal(t, d("2"), sl.Depreciation(generic.Asset{Basis: d("3"), Life: d("1.5"), Method: sl}, generic.One))
	assertDecimal(t, d("1"), sl.Depreciation(generic.Asset{Basis: d("1"), Life: d("0.5"), Method: sl}, generic.One))
}

func TestStraightLine_FractionalPeriod(t *testing.T) {
	sl := generic.StraightLine
	assertDecimal(t, d("1"), sl.Depreciation(generic.Asset{Basis: d("4"), Life: d("2"), Method: sl}, generic.Half))
}

// =============================================================================
// DECLINING-BALANCE ONLY
// =============================================================================

func TestDecliningBalanceOnly_Memo(t *testing.T) {
	assert.True(t, generic.DecliningBalanceOnly(d("200")) == generic.DecliningBalanceOnly(d("200")))
	assert.True(t, generic.DecliningBalanceOnly(decimal.NewFromInt(40)) == generic.DecliningBalanceOnly(d("40")))
	assert.True(t, generic.DecliningBalanceOnly(d("40")) == generic.DecliningBalanceOnly(d("40.00")))
	assert.False(t, generic.DecliningBalanceOnly(d("40")) == generic.DecliningBalanceOnly(d("30")))
}

func TestDecliningBalanceOnly_WholeYear(t *testing.T) {
	m := generic.DecliningBalanceOnly(d("40"))
	assertDecimal(t, d("0.4"), m.Depreciation(generic.Asset{Basis: d("1"), Life: d("5"), Method: m}, generic.One))
}

func TestDecliningBalanceOnly_Period(t *testing.T) {
	m := generic.DecliningBalanceOnly(d("40"))
	assertDecimal(t, d("0.2"), m.Depreciation(generic.Asset{Basis: d("1"), Life: d("5"), Method: m}, generic.Half))
}

func TestDecliningBalanceOnly_NeverRecoversBasis(t *testing.T) {
	// Declining-balance is asymptotic: the last half year still only takes
	// 40% * 0.5 of the basis. That's why MACRS switches to straight-line.
	m := generic.DecliningBalanceOnly(d("40"))
	assertDecimal(t, d("0.2"), m.Depreciation(generic.Asset{Basis: d("1"), Life: d("0.5"), Method: m}, generic.One))
}

// =============================================================================
// DECLINING-BALANCE MACRS
// =============================================================================

func TestDecliningBalanceMACRS_Memo(t *testing.T) {
	assert.True(t, generic.DecliningBalanceMACRS(d("200")) == generic.DecliningBalanceMACRS(d("200")))
	assert.True(t, generic.DecliningBalanceMACRS(decimal.NewFromInt(200)) == generic.DecliningBalanceMACRS(d("200")))
	assert.False(t, generic.DecliningBalanceMACRS(d("200")) == generic.DecliningBalanceMACRS(d("150")))
	assert.False(t, generic.DecliningBalanceMACRS(d("40")) == generic.DecliningBalanceOnly(d("40")))
}

func TestDecliningBalanceMACRS_HalfYear5(t *testing.T) {
	// See IRS Publication 946 (2022), p. 69, table A-1.
	a := generic.Asset{
		Basis:     d("100"),
		Life:      d("5"),
		Method:    generic.DecliningBalanceMACRS(d("40")),
		Precision: generic.RoundTo(-2),
	}

	var deps []decimal.Decimal
	dep, a := a.Depreciate(generic.Half)
	deps = append(deps, dep)
	for i := 0; i < 6; i++ { // one more off the end
		dep, a = a.DepreciateYear()
		deps = append(deps, dep)
	}

	want := []string{"20", "32", "19.2", "11.52", "11.52", "5.76", "0"}
	require.Len(t, deps, len(want))
	for i, w := range want {
		assertDecimal(t, d(w), deps[i], "year %d", i+1)
	}
	assertDecimal(t, d("100"), generic.Sum(deps))
}

func TestDecliningBalanceMACRS_SwitchesWhenStraightLineIsLarger(t *testing.T) {
	m := generic.DecliningBalanceMACRS(d("40"))
	// 17.28 over 1.5 years: straight-line 11.52 beats declining-balance 6.912
	a := generic.Asset{Basis: d("17.28"), Life: d("1.5"), Method: m}
	assertDecimal(t, d("11.52"), m.Depreciation(a, generic.One))
}

func TestDecliningBalance_Accessors(t *testing.T) {
	only, ok := generic.DecliningBalanceOnly(d("30")).(*generic.DecliningBalance)
	require.True(t, ok)
	assertDecimal(t, d("30"), only.Rate())
	assert.False(t, only.SwitchesToStraightLine())
	assert.Equal(t, "declining_balance_only(30)", only.String())

	macrs, ok := generic.DecliningBalanceMACRS(d("30")).(*generic.DecliningBalance)
	require.True(t, ok)
	assert.True(t, macrs.SwitchesToStraightLine())
	assert.Equal(t, "declining_balance_macrs(30)", macrs.String())
}

func TestDecliningBalance_MemoIsConcurrencySafe(t *testing.T) {
	const n = 32
	results := make([]generic.Method, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = generic.DecliningBalanceMACRS(d("28.5"))
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.True(t, results[0] == results[i])
	}
}

func TestParseRate(t *testing.T) {
	r, err := generic.ParseRate("40")
	require.NoError(t, err)
	assert.True(t, generic.DecliningBalanceOnly(r) == generic.DecliningBalanceOnly(decimal.NewFromInt(40)))

	_, err = generic.ParseRate("forty")
	assert.Error(t, err)
}
