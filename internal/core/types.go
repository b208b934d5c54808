package core

import (
	"context"
	"errors"

	"github.com/JonMunkholm/giftcrm/internal/record"
)

// Sentinel errors surfaced by the service. Callers match them with errors.Is.
var (
	ErrNoRecordsToExport = errors.New("no records to export")
	ErrRecordNotFound    = errors.New("record not found")
	ErrFieldNotEditable  = errors.New("field not editable")
	ErrAmbiguousRecord   = errors.New("record id is ambiguous")
	ErrImportFailed      = errors.New("import failed")
)

// Strategy names the header interpretation that produced an import's rows.
type Strategy string

const (
	// StrategyHeaderRow reads the first row as column names.
	StrategyHeaderRow Strategy = "header_row"
	// StrategyColumnLetters keys cells by column letter and maps them positionally.
	StrategyColumnLetters Strategy = "column_letters"
	// StrategyFieldOrder assigns canonical field names to columns in order.
	StrategyFieldOrder Strategy = "field_order"
)

// UnmappedColumn is a header that did not resolve to a canonical field
// and was kept as an extra attribute.
type UnmappedColumn struct {
	Column     string `json:"column"`
	Key        string `json:"key"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ImportResult is the outcome of reading one workbook. Import never returns
// an error; failures arrive here with Success false.
type ImportResult struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Code     string           `json:"code,omitempty"`
	Data     []record.Record  `json:"data"`
	BatchID  string           `json:"batchId,omitempty"`
	Kind     record.Kind      `json:"kind,omitempty"`
	Sheet    string           `json:"sheet,omitempty"`
	Strategy Strategy         `json:"strategy,omitempty"`
	Total    int              `json:"total"`
	Kept     int              `json:"kept"`
	Unmapped []UnmappedColumn `json:"unmapped,omitempty"`
}

// Rejected is the number of rows that failed the acceptance rule.
func (r ImportResult) Rejected() int {
	return r.Total - r.Kept
}

// MergeResult is the reconciled collection plus counters.
type MergeResult struct {
	Records  []record.Record `json:"-"`
	Inserted int             `json:"inserted"`
	Updated  int             `json:"updated"`
	Message  string          `json:"message"`
}

// MergeReport combines an import with the merge it fed.
type MergeReport struct {
	Import ImportResult `json:"import"`
	Merge  MergeResult  `json:"merge"`
	DryRun bool         `json:"dryRun"`
	Total  int          `json:"total"`
}

// Store persists the record collections and the settings document.
type Store interface {
	LoadRecords(ctx context.Context, kind record.Kind, includeDeleted bool) ([]record.Record, error)
	SaveRecords(ctx context.Context, kind record.Kind, records []record.Record) error
	LoadSettings(ctx context.Context) (record.Settings, error)
	SaveSettings(ctx context.Context, settings record.Settings) error
}
