/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Book-asset documents
  use the factory schema unchanged; everything computed is returned in the
  types below.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Amounts are decimal.Decimal and encode as JSON strings ("19.2") so that
  clients never see binary floating point.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/book.go: BookAssetJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/depreciation-engine/book"
	"github.com/warp/depreciation-engine/factory"
	"github.com/warp/depreciation-engine/generic"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AssetDTO is a stored book asset.
type AssetDTO struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	System    string                `json:"system"`
	Version   int                   `json:"version"`
	CreatedAt string                `json:"created_at,omitempty"`
	UpdatedAt string                `json:"updated_at,omitempty"`
	Document  factory.BookAssetJSON `json:"document"`
}

// AssetStateDTO is a generic.Asset at some point of its life.
type AssetStateDTO struct {
	Basis     decimal.Decimal `json:"basis"`
	Life      decimal.Decimal `json:"life"`
	Method    string          `json:"method"`
	Precision string          `json:"precision"`
}

// ScheduleEntryDTO is one tax year of a schedule.
type ScheduleEntryDTO struct {
	Year   int             `json:"year"`
	Period decimal.Decimal `json:"period"`
	Amount decimal.Decimal `json:"amount"`
	Basis  decimal.Decimal `json:"remaining_basis"`
	Life   decimal.Decimal `json:"remaining_life"`
}

// ScheduleDTO is a multi-year projection for one asset.
type ScheduleDTO struct {
	Asset   string             `json:"asset"`
	Start   AssetStateDTO      `json:"start"`
	Entries []ScheduleEntryDTO `json:"entries"`
	Total   decimal.Decimal    `json:"total"`
}

// DeductionDTO is one asset's deduction for a tax year.
type DeductionDTO struct {
	Asset  string          `json:"asset"`
	Year   int             `json:"year"`
	Period decimal.Decimal `json:"period"`
	Amount decimal.Decimal `json:"amount"`
	Next   AssetStateDTO   `json:"next"`
}

// DeductionsDTO is the deduction summary for a whole book.
type DeductionsDTO struct {
	Year       int             `json:"year"`
	Deductions []DeductionDTO  `json:"deductions"`
	Total      decimal.Decimal `json:"total"`
}

// ScheduleRequest projects inline documents without storing them.
type ScheduleRequest struct {
	Assets []factory.BookAssetJSON `json:"assets"`
	From   int                     `json:"from"`
	To     int                     `json:"to"`
}

// SampleBookDTO describes a loadable sample book.
type SampleBookDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadSampleRequest selects a sample book.
type LoadSampleRequest struct {
	SampleID string `json:"sample_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toAssetDTO(rec book.Record, doc factory.BookAssetJSON) AssetDTO {
	dto := AssetDTO{
		ID:       rec.ID,
		Name:     rec.Name,
		System:   rec.System,
		Version:  rec.Version,
		Document: doc,
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.Format(time.RFC3339)
	}
	if !rec.UpdatedAt.IsZero() {
		dto.UpdatedAt = rec.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toAssetStateDTO(a generic.Asset) AssetStateDTO {
	dto := AssetStateDTO{
		Basis:     a.Basis,
		Life:      a.Life,
		Precision: a.Precision.String(),
	}
	if a.Method != nil {
		dto.Method = methodName(a.Method)
	}
	return dto
}

func methodName(m generic.Method) string {
	if s, ok := m.(interface{ String() string }); ok {
		return s.String()
	}
	return "custom"
}

func toScheduleDTO(s book.Schedule) ScheduleDTO {
	dto := ScheduleDTO{
		Asset:   s.Asset,
		Start:   toAssetStateDTO(s.Start),
		Entries: make([]ScheduleEntryDTO, len(s.Entries)),
		Total:   s.Total(),
	}
	for i, e := range s.Entries {
		dto.Entries[i] = ScheduleEntryDTO{
			Year:   e.Year,
			Period: e.Period,
			Amount: e.Amount,
			Basis:  e.Basis,
			Life:   e.Life,
		}
	}
	return dto
}

func toDeductionsDTO(year int, ds []book.Deduction) DeductionsDTO {
	dto := DeductionsDTO{
		Year:       year,
		Deductions: make([]DeductionDTO, len(ds)),
		Total:      decimal.Zero,
	}
	for i, d := range ds {
		dto.Deductions[i] = DeductionDTO{
			Asset:  d.Asset,
			Year:   d.Year,
			Period: d.Period,
			Amount: d.Amount,
			Next:   toAssetStateDTO(d.Next),
		}
		dto.Total = dto.Total.Add(d.Amount)
	}
	return dto
}
