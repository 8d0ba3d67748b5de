/*
Package timesystem implements the "time" depreciation system.

PURPOSE:
  The time system depreciates an asset over a manually specified, fixed
  term. The record states the life, the method and an offset: the fraction
  of the placed-in-service year during which the asset was NOT in service.

OFFSETS:
  Fixed(d):      the offset is given directly
  DayOffset():   days of the in-service year strictly before the in-service
                 date, over the days in that year (leap years count 366)
  MonthOffset(): whole calendar months before the in-service month, over 12;
                 the day of the month is ignored

  Day and month offsets are substitutes. Hydrate replaces them with fixed
  values; translating or stepping an unresolved substitute is an error.

STEPPING:
  In-service year: 1 - offset
  Any other year:  1

  The offset never reaches the Asset (which knows nothing about calendar
  years); it only shapes the first year's period. Disposal is not
  considered.

EXAMPLE:
  reg := book.NewRegistry()
  timesystem.Register(reg)

  a := book.BookAsset{
      Name:       "truck",
      Acquired:   generic.NewTimePoint(2023, time.February, 6),
      BasisStart: generic.MustParseDecimal("100"),
      System:     timesystem.Name,
      SystemData: timesystem.Data{
          Life:   generic.MustParseDecimal("5"),
          Offset: timesystem.MonthOffset(),
          Method: generic.StraightLine,
      },
  }
  schedule, err := reg.Project(a, 2023, 2028)
*/
package timesystem

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/depreciation-engine/book"
	"github.com/warp/depreciation-engine/generic"
)

// Name is the system key used in BookAsset.System.
const Name = "time"

// =============================================================================
// SYSTEM DATA
// =============================================================================

// Data is the time system's BookAsset payload.
type Data struct {
	Life   decimal.Decimal
	Offset Offset
	Method generic.Method
}

func (Data) SystemName() string { return Name }

// Compile-time check that Data implements book.SystemData
var _ book.SystemData = Data{}

// Substitute marks an offset that hydration computes from the in-service date.
type Substitute string

const (
	SubstituteNone  Substitute = ""
	SubstituteDay   Substitute = "day"
	SubstituteMonth Substitute = "month"
)

// Offset is either a fixed fraction of a year or a substitute.
type Offset struct {
	Value      decimal.Decimal
	Substitute Substitute
}

func Fixed(value decimal.Decimal) Offset { return Offset{Value: value} }
func DayOffset() Offset                  { return Offset{Substitute: SubstituteDay} }
func MonthOffset() Offset                { return Offset{Substitute: SubstituteMonth} }

// Resolved reports whether the offset is a fixed value.
func (o Offset) Resolved() bool { return o.Substitute == SubstituteNone }

func (o Offset) Equal(other Offset) bool {
	return o.Substitute == other.Substitute && o.Value.Equal(other.Value)
}

func (o Offset) String() string {
	if !o.Resolved() {
		return string(o.Substitute)
	}
	return o.Value.String()
}

// ErrUnresolvedOffset is returned when a substitute offset reaches translate
// or step without hydration.
var ErrUnresolvedOffset = fmt.Errorf("time system: unresolved %w", book.ErrInvalidState)

// =============================================================================
// REGISTRATION
// =============================================================================

// Register adds the time system to reg.
func Register(reg *book.Registry) error {
	return reg.Register(Name, Hydrate, Translate, Step)
}

// =============================================================================
// HYDRATE
// =============================================================================

// Hydrate validates time-system records and resolves substitute offsets.
// Records of other systems pass through unchanged.
func Hydrate(assets []book.BookAsset) ([]book.BookAsset, error) {
	out := make([]book.BookAsset, len(assets))
	for i, a := range assets {
		if a.System != Name {
			out[i] = a
			continue
		}
		data, err := dataOf(a)
		if err != nil {
			return nil, err
		}

		switch data.Offset.Substitute {
		case SubstituteNone:
		case SubstituteDay:
			data.Offset = Fixed(dayOffset(a.InService()))
		case SubstituteMonth:
			data.Offset = Fixed(monthOffset(a.InService()))
		default:
			return nil, fmt.Errorf("asset %q: unknown offset substitute %q: %w",
				a.Name, data.Offset.Substitute, book.ErrInvalidAsset)
		}

		if err := validate(a.Name, data); err != nil {
			return nil, err
		}
		out[i] = a.WithSystemData(data)
	}
	return out, nil
}

func dayOffset(inService generic.TimePoint) decimal.Decimal {
	return generic.TaxYear(inService.Year()).DayFraction(inService)
}

func monthOffset(inService generic.TimePoint) decimal.Decimal {
	return generic.TaxYear(inService.Year()).MonthFraction(inService)
}

func validate(name string, data Data) error {
	if data.Method == nil {
		return fmt.Errorf("asset %q: missing method: %w", name, book.ErrInvalidAsset)
	}
	if data.Life.IsNegative() {
		return fmt.Errorf("asset %q: negative life %s: %w", name, data.Life, book.ErrInvalidAsset)
	}
	if data.Offset.Value.IsNegative() || data.Offset.Value.GreaterThanOrEqual(generic.One) {
		return fmt.Errorf("asset %q: offset %s outside [0, 1): %w", name, data.Offset.Value, book.ErrInvalidAsset)
	}
	return nil
}

// =============================================================================
// TRANSLATE
// =============================================================================

// Translate builds the Asset for a hydrated time-system record.
func Translate(a book.BookAsset) (generic.Asset, error) {
	data, err := resolvedDataOf(a)
	if err != nil {
		return generic.Asset{}, err
	}
	return generic.Asset{
		Basis:     a.AdjustedBasis(),
		Life:      data.Life,
		Method:    data.Method,
		Precision: a.Precision,
	}, nil
}

// =============================================================================
// STEP
// =============================================================================

// Step returns 1 - offset for the in-service year and 1 otherwise.
//
// TODO: prorate the disposal year once disposal conventions are modeled.
func Step(a book.BookAsset, taxYear int) (decimal.Decimal, error) {
	data, err := resolvedDataOf(a)
	if err != nil {
		return decimal.Zero, err
	}
	if taxYear == a.InService().Year() {
		return generic.One.Sub(data.Offset.Value), nil
	}
	return generic.One, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func dataOf(a book.BookAsset) (Data, error) {
	if err := book.CheckSystem(a, Name); err != nil {
		return Data{}, err
	}
	switch data := a.SystemData.(type) {
	case Data:
		return data, nil
	case *Data:
		if data != nil {
			return *data, nil
		}
	}
	return Data{}, fmt.Errorf("asset %q: system data %T is not time system data: %w",
		a.Name, a.SystemData, book.ErrInvalidAsset)
}

func resolvedDataOf(a book.BookAsset) (Data, error) {
	data, err := dataOf(a)
	if err != nil {
		return Data{}, err
	}
	if !data.Offset.Resolved() {
		return Data{}, fmt.Errorf("asset %q: %s offset: %w", a.Name, data.Offset.Substitute, ErrUnresolvedOffset)
	}
	return data, nil
}
