package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// TIME POINT - Calendar date (depreciation is day-granular)
// =============================================================================

// DateLayout is the layout used for dates in documents and the API.
const DateLayout = "2006-01-02"

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseTimePoint parses a YYYY-MM-DD date.
func ParseTimePoint(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return NewTimePoint(t.Year(), t.Month(), t.Day()), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool  { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool  { return tp.normalize().After(other.normalize()) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) YearDay() int      { return tp.Time.YearDay() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func StartOfYear(year int) TimePoint { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint   { return NewTimePoint(year, time.December, 31) }

// DaysBetween is the number of whole days from a to b (negative if b is
// before a).
func DaysBetween(a, b TimePoint) int {
	return int(b.normalize().Sub(a.normalize()).Hours() / 24)
}
