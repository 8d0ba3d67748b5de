package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PERIOD - A tax year
// =============================================================================

// Period is an inclusive span of days. Depreciation is computed one tax
// year at a time; offsets are fractions of a Period.
//
// Examples:
//   - Tax year 2023: Jan 1 - Dec 31 (365 days)
//   - Tax year 2024: Jan 1 - Dec 31 (366 days)
type Period struct {
	Start TimePoint
	End   TimePoint
}

// TaxYear returns the calendar tax year.
func TaxYear(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// DayCount is the number of days in the period.
func (p Period) DayCount() int {
	return DaysBetween(p.Start, p.End) + 1
}

// DayFraction is the share of the period's days strictly before t, or
// zero when t is not in the period.
func (p Period) DayFraction(t TimePoint) decimal.Decimal {
	if !p.Contains(t) {
		return decimal.Zero
	}
	before := decimal.NewFromInt(int64(DaysBetween(p.Start, t)))
	return before.Div(decimal.NewFromInt(int64(p.DayCount())))
}

// MonthFraction is the number of whole calendar months of the period
// before t's month, over 12. The day of the month is ignored.
func (p Period) MonthFraction(t TimePoint) decimal.Decimal {
	if !p.Contains(t) {
		return decimal.Zero
	}
	months := (t.Year()-p.Start.Year())*12 + int(t.Month()-p.Start.Month())
	return decimal.NewFromInt(int64(months)).Div(Twelve)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
