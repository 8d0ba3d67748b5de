/*
Package factory provides document to Go book-asset conversion.

PURPOSE:
  Converts JSON or YAML book-asset documents into book.BookAsset values and
  back. Books are kept as documents (files, the sqlite store, API bodies);
  the factory is the only place that knows their schema.

DOCUMENT SCHEMA:
  {
    "name": "truck",
    "long_name": "Delivery truck",
    "acquired": "2023-02-06",
    "placed_in_service": "2023-03-01",
    "basis_start": "100",
    "basis_impairment": ["-20"],
    "basis_adjustment": ["0"],
    "precision": -2,
    "system": "time",
    "system_data": {
      "life": "5",
      "offset": "month",
      "method": {"type": "declining_balance_macrs", "rate": "40"}
    }
  }

  Amounts are strings so they parse exactly. "offset" is "day", "month" or
  a decimal fraction of a year (default 0). "precision" is a power-of-ten
  exponent; omit it for no rounding.

METHOD TYPES:
  straight_line
  declining_balance_only   (rate required, percent)
  declining_balance_macrs  (rate required, percent)

USAGE:
  f := factory.NewBookFactory()

  a, err := f.ParseJSON(doc)
  assets, err := f.ParseBook(data, factory.FormatFor("book.yaml"))

  rec, err := f.ToRecord(a)   // for a book.Store
  a, err = f.FromRecord(rec)

SEE ALSO:
  - book/book_asset.go: BookAsset type definition
  - timesystem/timesystem.go: The "time" system payload
*/
package factory

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/warp/depreciation-engine/book"
	"github.com/warp/depreciation-engine/generic"
	"github.com/warp/depreciation-engine/timesystem"
)

// =============================================================================
// DOCUMENT SCHEMA TYPES
// =============================================================================

// BookAssetJSON is the document representation of a book asset.
type BookAssetJSON struct {
	Name            string         `json:"name" yaml:"name"`
	LongName        string         `json:"long_name,omitempty" yaml:"long_name,omitempty"`
	Acquired        string         `json:"acquired" yaml:"acquired"`
	PlacedInService string         `json:"placed_in_service,omitempty" yaml:"placed_in_service,omitempty"`
	Disposed        string         `json:"disposed,omitempty" yaml:"disposed,omitempty"`
	BasisStart      string         `json:"basis_start" yaml:"basis_start"`
	BasisImpairment []string       `json:"basis_impairment,omitempty" yaml:"basis_impairment,omitempty"`
	BasisAdjustment []string       `json:"basis_adjustment,omitempty" yaml:"basis_adjustment,omitempty"`
	Salvage         string         `json:"salvage,omitempty" yaml:"salvage,omitempty"`
	Precision       *int32         `json:"precision,omitempty" yaml:"precision,omitempty"`
	System          string         `json:"system" yaml:"system"`
	SystemData      SystemDataJSON `json:"system_data" yaml:"system_data"`
}

// SystemDataJSON holds the system payload. Only the "time" system exists,
// so the shape is flat.
type SystemDataJSON struct {
	Life   string      `json:"life" yaml:"life"`
	Offset string      `json:"offset,omitempty" yaml:"offset,omitempty"`
	Method *MethodJSON `json:"method,omitempty" yaml:"method,omitempty"`
}

// MethodJSON names a depreciation method.
type MethodJSON struct {
	Type string `json:"type" yaml:"type"`
	Rate string `json:"rate,omitempty" yaml:"rate,omitempty"`
}

const (
	MethodStraightLine          = "straight_line"
	MethodDecliningBalanceOnly  = "declining_balance_only"
	MethodDecliningBalanceMACRS = "declining_balance_macrs"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension. Anything that is not
// .yaml or .yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// BOOK FACTORY
// =============================================================================

// BookFactory converts documents to book assets.
type BookFactory struct{}

// NewBookFactory creates a new book factory.
func NewBookFactory() *BookFactory {
	return &BookFactory{}
}

// ParseJSON parses a single JSON document.
func (f *BookFactory) ParseJSON(doc string) (book.BookAsset, error) {
	var bj BookAssetJSON
	if err := json.Unmarshal([]byte(doc), &bj); err != nil {
		return book.BookAsset{}, fmt.Errorf("failed to parse book asset JSON: %w: %w", err, book.ErrInvalidAsset)
	}
	return f.FromJSON(bj)
}

// ParseYAML parses a single YAML document.
func (f *BookFactory) ParseYAML(doc string) (book.BookAsset, error) {
	var bj BookAssetJSON
	if err := yaml.Unmarshal([]byte(doc), &bj); err != nil {
		return book.BookAsset{}, fmt.Errorf("failed to parse book asset YAML: %w: %w", err, book.ErrInvalidAsset)
	}
	return f.FromJSON(bj)
}

// ParseBook parses a list of documents.
func (f *BookFactory) ParseBook(data []byte, format Format) ([]book.BookAsset, error) {
	docs, err := decodeList(data, format)
	if err != nil {
		return nil, err
	}
	assets := make([]book.BookAsset, 0, len(docs))
	for i, bj := range docs {
		a, err := f.FromJSON(bj)
		if err != nil {
			return nil, fmt.Errorf("book entry %d: %w", i, err)
		}
		assets = append(assets, a)
	}
	return assets, nil
}

func decodeList(data []byte, format Format) ([]BookAssetJSON, error) {
	var docs []BookAssetJSON
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &docs)
	case FormatJSON:
		err = json.Unmarshal(data, &docs)
	default:
		return nil, fmt.Errorf("unknown book format %q: %w", format, book.ErrInvalidAsset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s book: %w: %w", format, err, book.ErrInvalidAsset)
	}
	return docs, nil
}

// FromJSON converts a BookAssetJSON into a book.BookAsset. Substitute
// offsets stay unresolved; hydration resolves them.
func (f *BookFactory) FromJSON(bj BookAssetJSON) (book.BookAsset, error) {
	if bj.Name == "" {
		return book.BookAsset{}, fmt.Errorf("missing name: %w", book.ErrInvalidAsset)
	}
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("asset %q: %s: %w", bj.Name, fmt.Sprintf(format, args...), book.ErrInvalidAsset)
	}

	acquired, err := generic.ParseTimePoint(bj.Acquired)
	if err != nil {
		return book.BookAsset{}, invalid("acquired: %v", err)
	}
	a := book.BookAsset{
		Name:     bj.Name,
		LongName: bj.LongName,
		Acquired: acquired,
		System:   bj.System,
	}

	if bj.PlacedInService != "" {
		tp, err := generic.ParseTimePoint(bj.PlacedInService)
		if err != nil {
			return book.BookAsset{}, invalid("placed_in_service: %v", err)
		}
		a.PlacedInService = &tp
	}
	if bj.Disposed != "" {
		tp, err := generic.ParseTimePoint(bj.Disposed)
		if err != nil {
			return book.BookAsset{}, invalid("disposed: %v", err)
		}
		a.Disposed = &tp
	}

	if a.BasisStart, err = parseDecimal(bj.BasisStart); err != nil {
		return book.BookAsset{}, invalid("basis_start: %v", err)
	}
	if a.BasisImpairment, err = parseDecimals(bj.BasisImpairment); err != nil {
		return book.BookAsset{}, invalid("basis_impairment: %v", err)
	}
	if a.BasisAdjustment, err = parseDecimals(bj.BasisAdjustment); err != nil {
		return book.BookAsset{}, invalid("basis_adjustment: %v", err)
	}
	a.Salvage = decimal.Zero
	if bj.Salvage != "" {
		if a.Salvage, err = parseDecimal(bj.Salvage); err != nil {
			return book.BookAsset{}, invalid("salvage: %v", err)
		}
	}
	if bj.Precision != nil {
		a.Precision = generic.RoundTo(*bj.Precision)
	}

	switch bj.System {
	case timesystem.Name:
		data, err := parseTimeData(bj.SystemData)
		if err != nil {
			return book.BookAsset{}, invalid("system_data: %v", err)
		}
		a.SystemData = data
	case "":
		return book.BookAsset{}, invalid("missing system")
	default:
		return book.BookAsset{}, fmt.Errorf("asset %q: %w", bj.Name, &book.SystemNotFoundError{Name: bj.System})
	}

	return a, nil
}

func parseTimeData(sj SystemDataJSON) (timesystem.Data, error) {
	life, err := parseDecimal(sj.Life)
	if err != nil {
		return timesystem.Data{}, fmt.Errorf("life: %w", err)
	}
	offset, err := parseOffset(sj.Offset)
	if err != nil {
		return timesystem.Data{}, err
	}
	if sj.Method == nil {
		return timesystem.Data{}, fmt.Errorf("missing method")
	}
	method, err := ParseMethod(*sj.Method)
	if err != nil {
		return timesystem.Data{}, err
	}
	return timesystem.Data{Life: life, Offset: offset, Method: method}, nil
}

func parseOffset(s string) (timesystem.Offset, error) {
	switch timesystem.Substitute(s) {
	case timesystem.SubstituteDay:
		return timesystem.DayOffset(), nil
	case timesystem.SubstituteMonth:
		return timesystem.MonthOffset(), nil
	}
	if s == "" {
		return timesystem.Fixed(decimal.Zero), nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return timesystem.Offset{}, fmt.Errorf("offset %q is not day, month or a decimal", s)
	}
	return timesystem.Fixed(v), nil
}

// ParseMethod builds the generic.Method a MethodJSON names. Declining
// balance methods come from the memoized constructors, so equal documents
// give equal methods.
func ParseMethod(mj MethodJSON) (generic.Method, error) {
	switch mj.Type {
	case MethodStraightLine:
		return generic.StraightLine, nil
	case MethodDecliningBalanceOnly, MethodDecliningBalanceMACRS:
		if mj.Rate == "" {
			return nil, fmt.Errorf("method %s requires a rate", mj.Type)
		}
		rate, err := generic.ParseRate(mj.Rate)
		if err != nil {
			return nil, err
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("method %s: rate must be positive, got %s", mj.Type, rate)
		}
		if mj.Type == MethodDecliningBalanceOnly {
			return generic.DecliningBalanceOnly(rate), nil
		}
		return generic.DecliningBalanceMACRS(rate), nil
	default:
		return nil, fmt.Errorf("unknown method type %q", mj.Type)
	}
}

// =============================================================================
// BOOK ASSET -> DOCUMENT
// =============================================================================

// ToJSON converts a book.BookAsset to BookAssetJSON.
func (f *BookFactory) ToJSON(a book.BookAsset) (BookAssetJSON, error) {
	bj := BookAssetJSON{
		Name:            a.Name,
		LongName:        a.LongName,
		Acquired:        a.Acquired.String(),
		BasisStart:      a.BasisStart.String(),
		BasisImpairment: formatDecimals(a.BasisImpairment),
		BasisAdjustment: formatDecimals(a.BasisAdjustment),
		System:          a.System,
	}
	if a.PlacedInService != nil {
		bj.PlacedInService = a.PlacedInService.String()
	}
	if a.Disposed != nil {
		bj.Disposed = a.Disposed.String()
	}
	if !a.Salvage.IsZero() {
		bj.Salvage = a.Salvage.String()
	}
	if a.Precision.Valid {
		exp := a.Precision.Exp
		bj.Precision = &exp
	}

	var data timesystem.Data
	switch sd := a.SystemData.(type) {
	case timesystem.Data:
		data = sd
	case *timesystem.Data:
		if sd == nil {
			return BookAssetJSON{}, fmt.Errorf("asset %q: nil system data: %w", a.Name, book.ErrInvalidAsset)
		}
		data = *sd
	default:
		return BookAssetJSON{}, fmt.Errorf("asset %q: cannot encode system data %T: %w", a.Name, a.SystemData, book.ErrInvalidAsset)
	}

	mj, err := methodToJSON(data.Method)
	if err != nil {
		return BookAssetJSON{}, fmt.Errorf("asset %q: %w", a.Name, err)
	}
	bj.SystemData = SystemDataJSON{
		Life:   data.Life.String(),
		Offset: data.Offset.String(),
		Method: mj,
	}
	return bj, nil
}

func methodToJSON(m generic.Method) (*MethodJSON, error) {
	switch mt := m.(type) {
	case generic.StraightLineMethod:
		return &MethodJSON{Type: MethodStraightLine}, nil
	case *generic.DecliningBalance:
		typ := MethodDecliningBalanceOnly
		if mt.SwitchesToStraightLine() {
			typ = MethodDecliningBalanceMACRS
		}
		return &MethodJSON{Type: typ, Rate: mt.Rate().String()}, nil
	default:
		return nil, fmt.Errorf("cannot encode method %T: %w", m, book.ErrInvalidAsset)
	}
}

// =============================================================================
// STORE RECORDS
// =============================================================================

// ToRecord serializes a for a book.Store.
func (f *BookFactory) ToRecord(a book.BookAsset) (book.Record, error) {
	bj, err := f.ToJSON(a)
	if err != nil {
		return book.Record{}, err
	}
	raw, err := json.Marshal(bj)
	if err != nil {
		return book.Record{}, fmt.Errorf("failed to encode asset %q: %w", a.Name, err)
	}
	return book.Record{Name: a.Name, System: a.System, ConfigJSON: string(raw)}, nil
}

// FromRecord parses a stored record.
func (f *BookFactory) FromRecord(rec book.Record) (book.BookAsset, error) {
	a, err := f.ParseJSON(rec.ConfigJSON)
	if err != nil {
		return book.BookAsset{}, fmt.Errorf("record %q: %w", rec.Name, err)
	}
	return a, nil
}

// FromRecords parses records in order.
func (f *BookFactory) FromRecords(recs []book.Record) ([]book.BookAsset, error) {
	assets := make([]book.BookAsset, 0, len(recs))
	for _, rec := range recs {
		a, err := f.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("missing amount")
	}
	return decimal.NewFromString(s)
}

func parseDecimals(ss []string) ([]decimal.Decimal, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]decimal.Decimal, len(ss))
	for i, s := range ss {
		d, err := parseDecimal(s)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = d
	}
	return out, nil
}

func formatDecimals(ds []decimal.Decimal) []string {
	if len(ds) == 0 {
		return nil
	}
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}
