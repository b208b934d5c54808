package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/JonMunkholm/giftcrm/internal/logging"
	"github.com/JonMunkholm/giftcrm/internal/metrics"
	"github.com/JonMunkholm/giftcrm/internal/record"
)

// DefaultMaxFileSize caps uploads when Options leaves it unset.
const DefaultMaxFileSize int64 = 20 << 20

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	MaxFileSize      int64
	MaxConcurrent    int
	MaxWait          time.Duration
	MerchandiseLabel string
	ExportSheet      string
	Metrics          *metrics.Metrics
}

// Service is the entry point for every operation on the collections. It is
// safe for concurrent use, but writes to one collection are not serialized:
// the last save wins.
type Service struct {
	store    Store
	importer *Importer
	exporter Exporter
	limiter  *ImportLimiter
	metrics  *metrics.Metrics

	maxFileSize int64
	now         func() time.Time
}

// NewService wires a service over store.
func NewService(store Store, opts Options) *Service {
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Service{
		store:    store,
		importer: NewImporter(),
		exporter: Exporter{MerchandiseLabel: opts.MerchandiseLabel, SheetName: opts.ExportSheet},
		limiter:  NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		metrics:  opts.Metrics,

		maxFileSize: maxSize,
		now:         time.Now,
	}
}

// Limiter exposes the import limiter for health reporting and shutdown.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Import parses an uploaded workbook without persisting anything. Failures
// are reported in the result, never as an error.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader, kind record.Kind) ImportResult {
	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return s.observe(ctx, failedImport(kind, err))
	}
	defer release()
	s.metrics.ImportStarted()
	defer s.metrics.ImportFinished()

	data, err := s.readUpload(r)
	if err != nil {
		return s.observe(ctx, failedImport(kind, err))
	}
	return s.observe(ctx, s.importer.ImportBytes(data, fileName, kind))
}

// ImportFile parses the workbook at path.
func (s *Service) ImportFile(ctx context.Context, path string, kind record.Kind) ImportResult {
	f, err := os.Open(path)
	if err != nil {
		return s.observe(ctx, failedImport(kind, fmt.Errorf("read file: %w", err)))
	}
	defer f.Close()
	return s.Import(ctx, filepath.Base(path), f, kind)
}

func (s *Service) readUpload(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("file too large: exceeds %d bytes", s.maxFileSize)
	}
	return data, nil
}

func (s *Service) observe(ctx context.Context, res ImportResult) ImportResult {
	s.metrics.ObserveImport(string(res.Kind), res.Success, res.Kept, res.Rejected())

	log := logging.WithFields(ctx, "kind", res.Kind, "batch_id", res.BatchID)
	if res.Success {
		log.Info("import parsed",
			"sheet", res.Sheet,
			"strategy", res.Strategy,
			"total", res.Total,
			"kept", res.Kept,
			"unmapped", len(res.Unmapped),
		)
	} else {
		log.Warn("import failed", "error", res.Message, "code", res.Code)
	}
	return res
}

// ImportAndMerge parses a workbook and reconciles it into the live records
// of kind. Unless dryRun is set the merged collection is saved; soft-deleted
// records are carried over untouched.
func (s *Service) ImportAndMerge(ctx context.Context, fileName string, r io.Reader, kind record.Kind, dryRun bool) (*MergeReport, error) {
	res := s.Import(ctx, fileName, r, kind)
	if !res.Success {
		return &MergeReport{Import: res, DryRun: dryRun}, fmt.Errorf("%w: %s", ErrImportFailed, res.Message)
	}
	return s.MergeImported(ctx, res, dryRun)
}

// MergeImported reconciles an already parsed import into its collection.
func (s *Service) MergeImported(ctx context.Context, res ImportResult, dryRun bool) (*MergeReport, error) {
	kind := res.Kind
	all, err := s.store.LoadRecords(ctx, kind, true)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	live, deleted := splitDeleted(all)
	merged := Merge(res.Data, live, s.now())

	report := &MergeReport{
		Import: res,
		Merge:  merged,
		DryRun: dryRun,
		Total:  len(merged.Records),
	}
	if dryRun {
		return report, nil
	}

	if err := s.store.SaveRecords(ctx, kind, append(merged.Records, deleted...)); err != nil {
		return nil, fmt.Errorf("save %s: %w", kind, err)
	}
	s.metrics.ObserveMerge(string(kind), merged.Inserted, merged.Updated)
	logging.WithFields(ctx, clientFields(ctx, "kind", kind, "batch_id", res.BatchID)...).Info("import merged",
		"inserted", merged.Inserted,
		"updated", merged.Updated,
	)
	return report, nil
}

func splitDeleted(records []record.Record) (live, deleted []record.Record) {
	live = make([]record.Record, 0, len(records))
	for _, r := range records {
		if r.Eliminato {
			deleted = append(deleted, r)
		} else {
			live = append(live, r)
		}
	}
	return live, deleted
}

// ExportGLS loads both live collections and renders every GLS-flagged
// record as a shipment workbook. It fails with ErrNoRecordsToExport when
// nothing is flagged.
func (s *Service) ExportGLS(ctx context.Context) (*bytes.Buffer, int, error) {
	var all []record.Record
	for _, kind := range record.Kinds {
		recs, err := s.store.LoadRecords(ctx, kind, false)
		if err != nil {
			s.metrics.ObserveExport("failure", 0)
			return nil, 0, fmt.Errorf("load %s: %w", kind, err)
		}
		all = append(all, recs...)
	}

	buf, n, err := s.exporter.XLSX(all)
	switch {
	case errors.Is(err, ErrNoRecordsToExport):
		s.metrics.ObserveExport("empty", 0)
		return nil, 0, err
	case err != nil:
		s.metrics.ObserveExport("failure", 0)
		return nil, 0, fmt.Errorf("export: %w", err)
	}

	s.metrics.ObserveExport("success", n)
	logging.FromContext(ctx).Info("gls export written", "records", n, "bytes", buf.Len())
	return buf, n, nil
}
