package generic

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DEPRECIATION METHOD - Interface for how a deduction is computed
// =============================================================================

// Method computes the depreciation of an asset over a period.
//
// Implementations are pure: the same asset and period always give the same
// amount, and they never build the next Asset (Asset.Depreciate owns the
// state transition and rounding). Asset.Depreciate never passes a period
// larger than the remaining life.
//
// Method values must be comparable with ==. Parameterized methods are
// memoized so that equal parameters give the same instance, which keeps
// assets built from them comparable too.
type Method interface {
	Depreciation(a Asset, period decimal.Decimal) decimal.Decimal
}

// =============================================================================
// STRAIGHT-LINE
// =============================================================================

// StraightLineMethod spreads the remaining basis evenly over the remaining
// life. Salvage value is not supported.
//
// See IRS Publication 946 (2022), "How to Depreciate Property", p. 39.
type StraightLineMethod struct{}

// StraightLine is the straight-line method.
var StraightLine Method = StraightLineMethod{}

func (StraightLineMethod) Depreciation(a Asset, period decimal.Decimal) decimal.Decimal {
	if period.GreaterThanOrEqual(a.Life) {
		return a.Basis
	}
	return a.Basis.Div(a.Life).Mul(period)
}

func (StraightLineMethod) String() string { return "straight_line" }

// =============================================================================
// DECLINING-BALANCE
// =============================================================================

// DecliningBalance depreciates a fixed percentage of the remaining basis per
// year. Rate is in percent and is already divided by the recovery period
// (40 for 200% declining-balance over 5 years).
//
// Without the switch to straight-line the method is asymptotic and never
// recovers the whole basis. With the switch it deducts the larger of the
// two, which is what MACRS requires.
//
// See IRS Publication 946 (2022), pp. 38-39.
type DecliningBalance struct {
	rate  decimal.Decimal
	macrs bool
}

var (
	decliningBalanceOnly  sync.Map // normalized rate -> *DecliningBalance
	decliningBalanceMACRS sync.Map
)

// DecliningBalanceOnly returns the declining-balance method for rate, without
// switching to straight-line. Most MACRS callers want DecliningBalanceMACRS.
//
// The result is memoized: 40, "40" and "40.00" give the same instance.
func DecliningBalanceOnly(rate decimal.Decimal) Method {
	return memoized(&decliningBalanceOnly, rate, false)
}

// DecliningBalanceMACRS returns the declining-balance method for rate,
// switching to straight-line once that yields an equal or greater deduction.
// Memoized like DecliningBalanceOnly.
func DecliningBalanceMACRS(rate decimal.Decimal) Method {
	return memoized(&decliningBalanceMACRS, rate, true)
}

func memoized(cache *sync.Map, rate decimal.Decimal, switchToSL bool) *DecliningBalance {
	key := rate.String()
	if m, ok := cache.Load(key); ok {
		return m.(*DecliningBalance)
	}
	// A racing caller may store first; LoadOrStore keeps exactly one.
	m, _ := cache.LoadOrStore(key, &DecliningBalance{rate: rate, macrs: switchToSL})
	return m.(*DecliningBalance)
}

func (m *DecliningBalance) Depreciation(a Asset, period decimal.Decimal) decimal.Decimal {
	db := a.Basis.Mul(m.rate).Div(Hundred).Mul(decimal.Min(period, a.Life))
	if !m.macrs {
		return db
	}
	return decimal.Max(StraightLine.Depreciation(a, period), db)
}

// Rate returns the declining-balance rate in percent.
func (m *DecliningBalance) Rate() decimal.Decimal { return m.rate }

// SwitchesToStraightLine reports whether this is the MACRS variant.
func (m *DecliningBalance) SwitchesToStraightLine() bool { return m.macrs }

func (m *DecliningBalance) String() string {
	if m.macrs {
		return fmt.Sprintf("declining_balance_macrs(%s)", m.rate)
	}
	return fmt.Sprintf("declining_balance_only(%s)", m.rate)
}
