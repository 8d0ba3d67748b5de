/*
handlers.go - HTTP API handlers for the depreciation engine

PURPOSE:
  Exposes the book-asset pipeline via REST API. Handles HTTP
  request/response, document parsing, and delegates to the registry.

ENDPOINTS:
  Systems:
    GET    /api/systems                 Registered depreciation systems

  Assets:
    GET    /api/assets                  List stored book assets
    POST   /api/assets                  Store a book asset (upsert by name)
    GET    /api/assets/{name}           Get one book asset
    DELETE /api/assets/{name}           Remove a book asset
    GET    /api/assets/{name}/schedule  Projected schedule (?from=&to=)

  Book:
    GET    /api/deductions?year=        Every stored asset's deduction

  Stateless:
    POST   /api/schedule                Project inline documents

  Samples:
    GET    /api/samples                 List sample books
    POST   /api/samples/load            Replace the book with a sample

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Book-asset records
  - Registry: Depreciation systems
  - Factory: Document to BookAsset conversion

  Every computation hydrates the whole stored book, so systems whose
  hydration depends on other records see all of them.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid documents, system mismatches, unhydrated records
  - 404: Unknown asset or system
  - 409: Conflicting registrations
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - samples.go: Sample books
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/depreciation-engine/book"
	"github.com/warp/depreciation-engine/factory"
)

// DefaultHorizon is the number of tax years projected when no end year is
// given. Schedules stop after the year the asset is exhausted.
const DefaultHorizon = 50

// MaxHorizon bounds the number of tax years a single request may project.
const MaxHorizon = 200

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    book.Store
	Registry *book.Registry
	Factory  *factory.BookFactory
}

// NewHandler creates a new handler with the given store and registry.
func NewHandler(store book.Store, registry *book.Registry) *Handler {
	return &Handler{
		Store:    store,
		Registry: registry,
		Factory:  factory.NewBookFactory(),
	}
}

// =============================================================================
// SYSTEM HANDLERS
// =============================================================================

// ListSystems returns the registered system names.
// GET /api/systems
func (h *Handler) ListSystems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.Systems())
}

// =============================================================================
// ASSET HANDLERS
// =============================================================================

// ListAssets returns all stored assets.
// GET /api/assets
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListAssets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list assets", err)
		return
	}

	dtos := make([]AssetDTO, 0, len(records))
	for _, rec := range records {
		var doc factory.BookAssetJSON
		if err := json.Unmarshal([]byte(rec.ConfigJSON), &doc); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Stored asset %q is corrupt", rec.Name), err)
			return
		}
		dtos = append(dtos, toAssetDTO(rec, doc))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// CreateAsset validates a document and stores it.
// POST /api/assets
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var doc factory.BookAssetJSON
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	asset, err := h.Factory.FromJSON(doc)
	if err != nil {
		writeDomainError(w, "Invalid book asset", err)
		return
	}
	if _, err := h.Registry.System(asset.System); err != nil {
		writeDomainError(w, "Unknown depreciation system", err)
		return
	}
	// Hydrate alone to run the system's validation before storing.
	if _, err := h.Registry.Hydrate([]book.BookAsset{asset}); err != nil {
		writeDomainError(w, "Invalid book asset", err)
		return
	}

	rec, err := h.Factory.ToRecord(asset)
	if err != nil {
		writeDomainError(w, "Failed to encode book asset", err)
		return
	}
	if err := h.Store.SaveAsset(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store asset", err)
		return
	}

	stored, err := h.Store.GetAsset(r.Context(), asset.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read back asset", err)
		return
	}
	canonical, err := h.Factory.ToJSON(asset)
	if err != nil {
		writeDomainError(w, "Failed to encode book asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssetDTO(*stored, canonical))
}

// GetAsset returns one stored asset.
// GET /api/assets/{name}
func (h *Handler) GetAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rec, err := h.Store.GetAsset(r.Context(), name)
	if err != nil {
		writeDomainError(w, "Asset not found", err)
		return
	}

	var doc factory.BookAssetJSON
	if err := json.Unmarshal([]byte(rec.ConfigJSON), &doc); err != nil {
		writeError(w, http.StatusInternalServerError, "Stored asset is corrupt", err)
		return
	}
	writeJSON(w, http.StatusOK, toAssetDTO(*rec, doc))
}

// DeleteAsset removes a stored asset.
// DELETE /api/assets/{name}
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.Store.DeleteAsset(r.Context(), name); err != nil {
		writeDomainError(w, "Failed to delete asset", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}

// =============================================================================
// COMPUTATION HANDLERS
// =============================================================================

// GetSchedule projects one stored asset, hydrated with the whole book.
// GET /api/assets/{name}/schedule?from=2023&to=2030
//
// from defaults to the first year with no recorded deduction. Without to,
// the schedule runs until the asset is exhausted (at most DefaultHorizon
// years).
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	assets, err := h.loadBook(r)
	if err != nil {
		writeDomainError(w, "Failed to load book", err)
		return
	}
	idx := -1
	for i, a := range assets {
		if a.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeDomainError(w, "Asset not found", fmt.Errorf("asset %q: %w", name, book.ErrAssetNotFound))
		return
	}

	from, to, open, err := yearRange(r, assets[idx].FirstOpenYear())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year range", err)
		return
	}

	schedules, err := h.Registry.ProjectBook(assets, from, to)
	if err != nil {
		writeDomainError(w, "Failed to project schedule", err)
		return
	}
	schedule := schedules[idx]
	if open {
		schedule = trimExhausted(schedule)
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(schedule))
}

// GetDeductions returns every stored asset's deduction for a tax year.
// GET /api/deductions?year=2024
func (h *Handler) GetDeductions(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year is required", err)
		return
	}

	assets, err := h.loadBook(r)
	if err != nil {
		writeDomainError(w, "Failed to load book", err)
		return
	}

	deductions, err := h.Registry.Deductions(assets, year)
	if err != nil {
		writeDomainError(w, "Failed to compute deductions", err)
		return
	}
	writeJSON(w, http.StatusOK, toDeductionsDTO(year, deductions))
}

// ComputeSchedule projects documents given in the request body. Nothing
// is stored.
// POST /api/schedule
//
// from is required. Without to, each schedule runs until its asset is
// exhausted (at most DefaultHorizon years).
func (h *Handler) ComputeSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Assets) == 0 {
		writeError(w, http.StatusBadRequest, "No assets given", nil)
		return
	}
	if req.From == 0 {
		writeError(w, http.StatusBadRequest, "from is required", nil)
		return
	}
	open := req.To == 0
	if open {
		req.To = req.From + DefaultHorizon - 1
	}
	if err := checkRange(req.From, req.To); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year range", err)
		return
	}

	assets := make([]book.BookAsset, 0, len(req.Assets))
	for i, doc := range req.Assets {
		a, err := h.Factory.FromJSON(doc)
		if err != nil {
			writeDomainError(w, fmt.Sprintf("Invalid book asset at index %d", i), err)
			return
		}
		assets = append(assets, a)
	}

	schedules, err := h.Registry.ProjectBook(assets, req.From, req.To)
	if err != nil {
		writeDomainError(w, "Failed to project schedule", err)
		return
	}

	dtos := make([]ScheduleDTO, len(schedules))
	for i, s := range schedules {
		if open {
			s = trimExhausted(s)
		}
		dtos[i] = toScheduleDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) loadBook(r *http.Request) ([]book.BookAsset, error) {
	records, err := h.Store.ListAssets(r.Context())
	if err != nil {
		return nil, err
	}
	return h.Factory.FromRecords(records)
}

// yearRange reads ?from= and ?to=. open reports that to was not given.
func yearRange(r *http.Request, firstOpen int) (from, to int, open bool, err error) {
	q := r.URL.Query()
	from = firstOpen
	if s := q.Get("from"); s != "" {
		if from, err = strconv.Atoi(s); err != nil {
			return 0, 0, false, fmt.Errorf("from: %w", err)
		}
	}
	if s := q.Get("to"); s != "" {
		if to, err = strconv.Atoi(s); err != nil {
			return 0, 0, false, fmt.Errorf("to: %w", err)
		}
	} else {
		to = from + DefaultHorizon - 1
		open = true
	}
	return from, to, open, checkRange(from, to)
}

func checkRange(from, to int) error {
	if to < from {
		return fmt.Errorf("to (%d) is before from (%d)", to, from)
	}
	if to-from+1 > MaxHorizon {
		return fmt.Errorf("range of %d years exceeds %d", to-from+1, MaxHorizon)
	}
	return nil
}

// trimExhausted drops the entries after the one that exhausted the asset.
func trimExhausted(s book.Schedule) book.Schedule {
	for i, e := range s.Entries {
		if e.Exhausted {
			s.Entries = s.Entries[:i+1]
			break
		}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError picks the status from the error's category.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case book.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, book.ErrSystemConflict):
		return http.StatusConflict
	case book.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
