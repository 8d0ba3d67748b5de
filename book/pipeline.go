/*
pipeline.go - Hydrate -> Translate -> Step -> Depreciate

PURPOSE:
  Runs registered systems over book records. Two entry points:

  Deductions: one tax year for a whole book. Every record is hydrated
  together, then translated, stepped and depreciated once.

  Project / ProjectBook: a modeled multi-year schedule per record. The
  Asset returned by each year's Depreciate feeds the following year.

ORDERING:
  Hydration always runs first. Translators and steppers may assume every
  substitute value has been resolved and fail with ErrInvalidState when one
  has not.

SERVICE YEARS:
  Tax years before the in-service year deduct nothing and leave the Asset
  unchanged. Systems' steppers are not consulted for them.

KNOWN LIMITATION:
  Steppers do not look at the disposal date. A disposed asset keeps
  stepping full years until its life runs out.
*/
package book

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/depreciation-engine/generic"
)

// =============================================================================
// RESULTS
// =============================================================================

// Deduction is one record's depreciation for one tax year.
type Deduction struct {
	Asset  string
	Year   int
	Period decimal.Decimal
	Amount decimal.Decimal

	// Next is the asset state after this year, the input to the next year.
	Next generic.Asset
}

// ScheduleEntry is one year of a projected schedule.
type ScheduleEntry struct {
	Year   int
	Period decimal.Decimal
	Amount decimal.Decimal

	// Basis and Life remaining at the end of the year.
	Basis decimal.Decimal
	Life  decimal.Decimal

	// Exhausted is set once no life remains.
	Exhausted bool
}

// Schedule is a modeled sequence of yearly deductions for one record.
type Schedule struct {
	Asset   string
	Start   generic.Asset
	Entries []ScheduleEntry
}

// Total sums every deduction in the schedule.
func (s Schedule) Total() decimal.Decimal {
	amounts := make([]decimal.Decimal, len(s.Entries))
	for i, e := range s.Entries {
		amounts[i] = e.Amount
	}
	return generic.Sum(amounts)
}

// =============================================================================
// PIPELINE STEPS
// =============================================================================

// Hydrate runs every registered hydrator, in system-name order, over the
// whole collection. Records naming an unregistered system are rejected.
func (r *Registry) Hydrate(assets []BookAsset) ([]BookAsset, error) {
	for _, a := range assets {
		if _, err := r.System(a.System); err != nil {
			return nil, fmt.Errorf("hydrate asset %q: %w", a.Name, err)
		}
	}

	out := make([]BookAsset, len(assets))
	copy(out, assets)

	for _, name := range r.Systems() {
		sys, err := r.System(name)
		if err != nil {
			return nil, err
		}
		hydrated, err := sys.Hydrate(out)
		if err != nil {
			return nil, fmt.Errorf("hydrate system %q: %w", name, err)
		}
		if len(hydrated) != len(out) {
			return nil, fmt.Errorf("hydrate system %q: returned %d assets for %d: %w",
				name, len(hydrated), len(out), ErrInvalidState)
		}
		out = hydrated
	}
	return out, nil
}

// Translate dispatches a hydrated record to its system's translator.
func (r *Registry) Translate(a BookAsset) (generic.Asset, error) {
	sys, err := r.System(a.System)
	if err != nil {
		return generic.Asset{}, err
	}
	return sys.Translate(a)
}

// Step dispatches a hydrated record to its system's stepper.
func (r *Registry) Step(a BookAsset, taxYear int) (decimal.Decimal, error) {
	sys, err := r.System(a.System)
	if err != nil {
		return decimal.Zero, err
	}
	return sys.Step(a, taxYear)
}

// =============================================================================
// ORCHESTRATION
// =============================================================================

// Deductions computes every record's deduction for taxYear. The result has
// the same order as assets. A record not yet in service in taxYear gets a
// zero deduction and its translated Asset as Next.
func (r *Registry) Deductions(assets []BookAsset, taxYear int) ([]Deduction, error) {
	hydrated, err := r.Hydrate(assets)
	if err != nil {
		return nil, err
	}

	deductions := make([]Deduction, 0, len(hydrated))
	for _, a := range hydrated {
		asset, err := r.Translate(a)
		if err != nil {
			return nil, fmt.Errorf("translate asset %q: %w", a.Name, err)
		}
		period, err := r.servicePeriod(a, taxYear)
		if err != nil {
			return nil, fmt.Errorf("step asset %q for %d: %w", a.Name, taxYear, err)
		}
		amount, next := asset.Depreciate(period)
		deductions = append(deductions, Deduction{
			Asset:  a.Name,
			Year:   taxYear,
			Period: period,
			Amount: amount,
			Next:   next,
		})
	}
	return deductions, nil
}

// Project models the schedule of one record for the tax years from..to
// inclusive. The record is hydrated on its own; use ProjectBook when
// hydration must see the rest of the book.
func (r *Registry) Project(a BookAsset, from, to int) (Schedule, error) {
	schedules, err := r.ProjectBook([]BookAsset{a}, from, to)
	if err != nil {
		return Schedule{}, err
	}
	return schedules[0], nil
}

// ProjectBook hydrates assets together and models each record's schedule
// for the tax years from..to inclusive. The translated Asset is taken as the
// state at the start of from; each year's remaining Asset feeds the next.
func (r *Registry) ProjectBook(assets []BookAsset, from, to int) ([]Schedule, error) {
	if to < from {
		return nil, fmt.Errorf("project: year %d before %d: %w", to, from, ErrInvalidAsset)
	}

	hydrated, err := r.Hydrate(assets)
	if err != nil {
		return nil, err
	}

	schedules := make([]Schedule, 0, len(hydrated))
	for _, a := range hydrated {
		s, err := r.project(a, from, to)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func (r *Registry) project(a BookAsset, from, to int) (Schedule, error) {
	asset, err := r.Translate(a)
	if err != nil {
		return Schedule{}, fmt.Errorf("translate asset %q: %w", a.Name, err)
	}

	schedule := Schedule{Asset: a.Name, Start: asset}
	for year := from; year <= to; year++ {
		period, err := r.servicePeriod(a, year)
		if err != nil {
			return Schedule{}, fmt.Errorf("step asset %q for %d: %w", a.Name, year, err)
		}
		var amount decimal.Decimal
		amount, asset = asset.Depreciate(period)
		schedule.Entries = append(schedule.Entries, ScheduleEntry{
			Year:      year,
			Period:    period,
			Amount:    amount,
			Basis:     asset.Basis,
			Life:      asset.Life,
			Exhausted: asset.Exhausted(),
		})
	}
	return schedule, nil
}

// servicePeriod is the stepped period, or zero before the in-service year.
func (r *Registry) servicePeriod(a BookAsset, taxYear int) (decimal.Decimal, error) {
	if taxYear < a.InService().Year() {
		return decimal.Zero, nil
	}
	return r.Step(a, taxYear)
}
