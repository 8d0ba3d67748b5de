/*
samples.go - Sample books for demonstrations and testing

PURPOSE:

	Provides pre-built books that populate the store with realistic assets.
	Each sample shows one feature of the time system.

AVAILABLE SAMPLES:

	macrs-5-year:  5-year property, 200% declining balance (40% per year)
	               switching to straight-line, half-year convention
	month-offset:  Straight-line truck whose first year is prorated by month
	mixed-book:    Several assets with day, month and fixed offsets and a
	               basis history

HOW SAMPLES WORK:
 1. Parse the sample documents via the factory
 2. Reset the store
 3. Store the sample's assets, restoring the previous book on failure

USAGE VIA API:

	POST /api/samples/load
	{"sample_id": "macrs-5-year"}

NOTE:

	Loading a sample replaces the whole book. Only use in development/demo
	environments.

SEE ALSO:
  - handlers.go: Asset and schedule handlers
  - factory/book.go: Document schema
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/depreciation-engine/book"
	"github.com/warp/depreciation-engine/factory"
)

// =============================================================================
// SAMPLE DEFINITIONS
// =============================================================================

type sampleBook struct {
	SampleBookDTO
	doc string
}

var samples = []sampleBook{
	{
		SampleBookDTO: SampleBookDTO{
			ID:          "macrs-5-year",
			Name:        "MACRS 5-Year Property",
			Description: "200% declining balance switching to straight-line, half-year convention",
		},
		doc: `[
			{
				"name": "lathe", "long_name": "CNC lathe",
				"acquired": "2023-06-12", "basis_start": "100", "precision": -2,
				"system": "time",
				"system_data": {"life": "5", "offset": "0.5",
				                "method": {"type": "declining_balance_macrs", "rate": "40"}}
			}
		]`,
	},
	{
		SampleBookDTO: SampleBookDTO{
			ID:          "month-offset",
			Name:        "Month Offset",
			Description: "Straight-line truck, first year prorated by whole months",
		},
		doc: `[
			{
				"name": "truck", "long_name": "Delivery truck",
				"acquired": "2023-02-06", "basis_start": "1200", "precision": -2,
				"system": "time",
				"system_data": {"life": "1", "offset": "month",
				                "method": {"type": "straight_line"}}
			}
		]`,
	},
	{
		SampleBookDTO: SampleBookDTO{
			ID:          "mixed-book",
			Name:        "Mixed Book",
			Description: "Day, month and fixed offsets, declining balance and a basis history",
		},
		doc: `[
			{
				"name": "desk", "long_name": "Standing desk",
				"acquired": "2023-02-01", "basis_start": "730", "precision": -2,
				"system": "time",
				"system_data": {"life": "7", "offset": "day",
				                "method": {"type": "straight_line"}}
			},
			{
				"name": "server", "long_name": "Rack server",
				"acquired": "2022-11-20", "placed_in_service": "2023-01-09",
				"basis_start": "5000", "precision": -2,
				"system": "time",
				"system_data": {"life": "5", "offset": "month",
				                "method": {"type": "declining_balance_only", "rate": "30"}}
			},
			{
				"name": "van", "long_name": "Service van",
				"acquired": "2021-04-01", "basis_start": "30000",
				"basis_impairment": ["-4500", "-6000"], "basis_adjustment": ["0", "1500"],
				"precision": -2,
				"system": "time",
				"system_data": {"life": "3.25", "offset": "0.25",
				                "method": {"type": "straight_line"}}
			}
		]`,
	},
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListSamples returns the available sample books.
// GET /api/samples
func (h *Handler) ListSamples(w http.ResponseWriter, r *http.Request) {
	dtos := make([]SampleBookDTO, len(samples))
	for i, s := range samples {
		dtos[i] = s.SampleBookDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadSampleBook replaces the stored book with a sample.
// POST /api/samples/load
func (h *Handler) LoadSampleBook(w http.ResponseWriter, r *http.Request) {
	var req LoadSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	n, err := h.LoadSample(r.Context(), req.SampleID)
	if err != nil {
		writeDomainError(w, "Failed to load sample", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "loaded",
		"sample_id": req.SampleID,
		"assets":    n,
	})
}

// LoadSample replaces the stored book with the sample's assets and returns
// how many were stored.
func (h *Handler) LoadSample(ctx context.Context, id string) (int, error) {
	for _, s := range samples {
		if s.ID == id {
			assets, err := h.Factory.ParseBook([]byte(s.doc), factory.FormatJSON)
			if err != nil {
				return 0, fmt.Errorf("sample %q: %w", id, err)
			}
			return len(assets), h.ReplaceBook(ctx, assets)
		}
	}
	return 0, fmt.Errorf("sample %q: %w", id, book.ErrAssetNotFound)
}

// ReplaceBook resets the store, then stores assets. If any save fails the
// previous book is put back.
func (h *Handler) ReplaceBook(ctx context.Context, assets []book.BookAsset) error {
	if _, err := h.Registry.Hydrate(assets); err != nil {
		return err
	}
	records, err := h.toRecords(assets)
	if err != nil {
		return err
	}

	previous, err := h.Store.ListAssets(ctx)
	if err != nil {
		return err
	}
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	if err := h.saveRecords(ctx, records); err != nil {
		if rerr := h.restore(ctx, previous); rerr != nil {
			return fmt.Errorf("%w (restore failed: %v)", err, rerr)
		}
		return err
	}
	return nil
}

// SaveBook stores assets, replacing records with the same names.
func (h *Handler) SaveBook(ctx context.Context, assets []book.BookAsset) error {
	records, err := h.toRecords(assets)
	if err != nil {
		return err
	}
	return h.saveRecords(ctx, records)
}

func (h *Handler) toRecords(assets []book.BookAsset) ([]book.Record, error) {
	records := make([]book.Record, 0, len(assets))
	for _, a := range assets {
		rec, err := h.Factory.ToRecord(a)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (h *Handler) saveRecords(ctx context.Context, records []book.Record) error {
	for _, rec := range records {
		if err := h.Store.SaveAsset(ctx, rec); err != nil {
			return fmt.Errorf("store asset %q: %w", rec.Name, err)
		}
	}
	return nil
}

func (h *Handler) restore(ctx context.Context, previous []book.Record) error {
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	return h.saveRecords(ctx, previous)
}
