/*
Package generic provides the core depreciation engine.

PURPOSE:
  This package contains the regime-agnostic types and algorithms for
  depreciating a capital asset. Whether an asset is governed by a fixed
  manual schedule or by a MACRS table, the same Asset value and the same
  method library compute each period's deduction.

KEY CONCEPTS IN THIS FILE (types.go):
  - Decimal constants and parsing helpers (no floating point anywhere)
  - Precision: optional rounding applied to every computed deduction

DESIGN PRINCIPLES:
  1. Immutability: an Asset is never modified, Depreciate returns a new one
  2. Precision: uses decimal.Decimal, strings are parsed exactly
  3. Comparability: methods and precisions compare with ==

USAGE:
  a := generic.Asset{
      Basis:     generic.MustParseDecimal("100"),
      Life:      generic.MustParseDecimal("5"),
      Method:    generic.DecliningBalanceMACRS(generic.MustParseDecimal("40")),
      Precision: generic.RoundTo(-2),
  }
  dep, next := a.Depreciate(generic.Half)

SEE ALSO:
  - asset.go: Asset and the Depreciate state transition
  - method.go: Straight-line and declining-balance methods
*/
package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL CONSTANTS
// =============================================================================

var (
	Zero    = decimal.Zero
	One     = decimal.NewFromInt(1)
	Half    = decimal.New(5, -1)
	Hundred = decimal.NewFromInt(100)
	Twelve  = decimal.NewFromInt(12)
)

// MustParseDecimal parses s exactly or panics. Use for literals and tests.
func MustParseDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ParseRate parses a declining-balance rate given in percent.
func ParseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	return d, nil
}

// Sum adds ds in order.
func Sum(ds []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

// =============================================================================
// PRECISION - Optional rounding of computed deductions
// =============================================================================

// Precision is an optional power-of-ten exponent. When Valid, deductions are
// rounded to 10^Exp using round-half-up (Exp -2 rounds to cents).
//
// The zero value means "no rounding".
type Precision struct {
	Exp   int32
	Valid bool
}

// RoundTo returns a Precision rounding to 10^exp.
func RoundTo(exp int32) Precision {
	return Precision{Exp: exp, Valid: true}
}

// Apply rounds d according to p. Round is half away from zero, which is
// half-up for the non-negative amounts methods produce.
func (p Precision) Apply(d decimal.Decimal) decimal.Decimal {
	if !p.Valid {
		return d
	}
	return d.Round(-p.Exp)
}

func (p Precision) String() string {
	if !p.Valid {
		return "none"
	}
	return fmt.Sprintf("1e%d", p.Exp)
}
