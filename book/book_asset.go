/*
Package book converts accounting records into depreciable assets.

PURPOSE:
  A BookAsset is an asset as recorded on the accounting books: its full
  basis history, its dates and the depreciation system that governs it.
  This package is responsible for:
  - dispatching each record to its depreciation system;
  - letting systems validate records and make selections that depend on the
    aggregate of all records (hydration);
  - producing a generic.Asset for each record (translation) and the period
    each tax year contributes (stepping).

PIPELINE:
  []BookAsset -> Hydrate (whole collection) -> Translate (per asset)
              -> Step (per asset, per tax year) -> generic.Asset.Depreciate

SEE ALSO:
  - registry.go: System registration and lookup
  - pipeline.go: Deductions and multi-year projections
  - timesystem/: The "time" system
*/
package book

import (
	"github.com/shopspring/decimal"

	"github.com/warp/depreciation-engine/generic"
)

// SystemData is the system-specific payload of a BookAsset. Each depreciation
// system defines its own concrete type, tagged with the system's name.
//
//	// In timesystem/timesystem.go
//	type Data struct { Life decimal.Decimal; Offset Offset; Method generic.Method }
//	func (Data) SystemName() string { return "time" }
type SystemData interface {
	SystemName() string
}

// BookAsset is an asset recorded on the accounting books.
type BookAsset struct {
	// Name is a short name, generally used to correlate records in books.
	Name string

	// LongName is an optional fuller description.
	LongName string

	Acquired generic.TimePoint

	// BasisStart is the adjusted basis when placed in service.
	BasisStart decimal.Decimal

	// BasisImpairment holds the depreciation deduction of each year since
	// the asset was placed in service, stored as negative numbers.
	BasisImpairment []decimal.Decimal

	// BasisAdjustment holds any other basis change of each year, aligned
	// by index with BasisImpairment.
	BasisAdjustment []decimal.Decimal

	// System names the depreciation system governing this asset.
	System     string
	SystemData SystemData

	// PlacedInService is nil when the asset went into service on acquisition.
	PlacedInService *generic.TimePoint

	// Disposed is nil while the asset is held.
	Disposed *generic.TimePoint

	// Salvage is carried but not consumed by any method.
	Salvage decimal.Decimal

	// Precision is copied into the translated Asset.
	Precision generic.Precision
}

// DisplayName returns the long name if set, the short name otherwise.
func (a BookAsset) DisplayName() string {
	if a.LongName != "" {
		return a.LongName
	}
	return a.Name
}

// InService returns the placed-in-service date, defaulting to acquisition.
func (a BookAsset) InService() generic.TimePoint {
	if a.PlacedInService != nil {
		return *a.PlacedInService
	}
	return a.Acquired
}

// FirstOpenYear is the first tax year with no deduction recorded in
// BasisImpairment: the year the translated Asset starts from.
func (a BookAsset) FirstOpenYear() int {
	return a.InService().Year() + len(a.BasisImpairment)
}

// AdjustedBasis is the start basis plus every impairment and adjustment,
// accumulated in chronological order.
func (a BookAsset) AdjustedBasis() decimal.Decimal {
	basis := a.BasisStart
	n := len(a.BasisImpairment)
	if len(a.BasisAdjustment) > n {
		n = len(a.BasisAdjustment)
	}
	for i := 0; i < n; i++ {
		if i < len(a.BasisImpairment) {
			basis = basis.Add(a.BasisImpairment[i])
		}
		if i < len(a.BasisAdjustment) {
			basis = basis.Add(a.BasisAdjustment[i])
		}
	}
	return basis
}

// WithSystemData returns a copy of a carrying data.
func (a BookAsset) WithSystemData(data SystemData) BookAsset {
	a.SystemData = data
	return a
}
