package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ASSET - Forward-looking depreciation state
// =============================================================================

// Asset is the state of one depreciable asset at the start of a computation
// step. It carries only what the next deduction depends on: the remaining
// basis, the remaining life in years, the method and an optional rounding
// precision.
//
// INVARIANTS:
//   - Never mutated. Depreciate returns a new Asset.
//   - Once Life is zero the asset is exhausted: every further Depreciate
//     returns zero and a zero/zero asset.
type Asset struct {
	Basis     decimal.Decimal
	Life      decimal.Decimal
	Method    Method
	Precision Precision
}

// Depreciate applies the asset's method over period (a fraction of a year)
// and returns the deduction together with the asset that remains.
//
// A period at or beyond the remaining life is capped to the remaining life,
// and the returned asset is fully retired (zero basis, zero life) whatever
// rounding residue the method left behind.
func (a Asset) Depreciate(period decimal.Decimal) (decimal.Decimal, Asset) {
	if period.LessThan(a.Life) {
		dep := a.Precision.Apply(a.Method.Depreciation(a, period))
		return dep, Asset{
			Basis:     a.Basis.Sub(dep),
			Life:      a.Life.Sub(period),
			Method:    a.Method,
			Precision: a.Precision,
		}
	}

	dep := a.Precision.Apply(a.Method.Depreciation(a, a.Life))
	return dep, Asset{
		Basis:     decimal.Zero,
		Life:      decimal.Zero,
		Method:    a.Method,
		Precision: a.Precision,
	}
}

// DepreciateYear depreciates over one full year.
func (a Asset) DepreciateYear() (decimal.Decimal, Asset) {
	return a.Depreciate(One)
}

// Exhausted reports whether the asset has no remaining life.
func (a Asset) Exhausted() bool {
	return !a.Life.IsPositive()
}

// Equal compares basis and life by value, method by identity.
func (a Asset) Equal(b Asset) bool {
	return a.Basis.Equal(b.Basis) &&
		a.Life.Equal(b.Life) &&
		a.Method == b.Method &&
		a.Precision == b.Precision
}

func (a Asset) String() string {
	return fmt.Sprintf("Asset{basis=%s life=%s method=%v precision=%s}",
		a.Basis, a.Life, a.Method, a.Precision)
}
