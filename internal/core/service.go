package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/datasheet/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Recorder observes pipeline outcomes, typically for metrics.
type Recorder interface {
	RecordPreview(p TablePreview)
	RecordTable(r TableReport, dryRun bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordPreview(TablePreview)     {}
func (nopRecorder) RecordTable(TableReport, bool) {}

// Service runs the ingestion pipeline. It holds no per-run state, so one
// Service may serve any number of sequential or concurrent runs.
type Service struct {
	parsers   *Registry
	persister Persister
	recorder  Recorder
	validate  *validator.Validate
}

// Option configures a Service.
type Option func(*Service)

// WithRegistry replaces the built-in parser registry.
func WithRegistry(r *Registry) Option {
	return func(s *Service) { s.parsers = r }
}

// WithRecorder attaches an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a Service writing through persister. A nil persister
// is allowed for preview and dry-run use; committing then records
// ErrNoTarget against each table.
func NewService(persister Persister, opts ...Option) *Service {
	s := &Service{
		parsers:   NewRegistry(),
		persister: persister,
		recorder:  nopRecorder{},
		validate:  validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Supported returns the file extensions the service can read.
func (s *Service) Supported() []string {
	return s.parsers.Supported()
}

// PreviewAndAnalyze parses path and maps, sanitizes and validates every
// table found. Nothing is written.
func (s *Service) PreviewAndAnalyze(ctx context.Context, path string) ([]TablePreview, error) {
	raw, err := s.parsers.Parse(path)
	if err != nil {
		return nil, err
	}

	logger := logging.WithFields(ctx, "file", path)

	previews := make([]TablePreview, 0, len(raw))
	for _, rt := range raw {
		p := analyze(rt)
		if rt.Degraded != nil {
			logger.Warn("parse degraded", "table", rt.Name, "reason", rt.Degraded)
		}
		s.recorder.RecordPreview(p)
		previews = append(previews, p)
	}
	return previews, nil
}

func analyze(rt RawTable) TablePreview {
	mapped, mapping := MapToInventory(rt.Table)
	sanitized, logs := Sanitize(mapped)

	p := TablePreview{
		FileTableName:   rt.Name,
		MappedTableName: Slugify(rt.Name),
		Original:        rt.Table,
		Mapped:          mapped,
		Sanitized:       sanitized,
		SanitizeLogs:    logs,
		Validation:      Validate(sanitized),
		MappingReport:   mapping,
	}
	if rt.Degraded != nil {
		p.ParseNotes = []string{rt.Degraded.Error()}
	}
	return p
}

// ProcessAndImport runs the full pipeline over path. Each table is
// auto-fixed (unless disabled), revalidated and then persisted, or only
// reported when opts.DryRun is set.
//
// Only a missing file, an unsupported format or invalid options return an
// error. A table that fails to persist records the failure in its
// TableReport and the remaining tables are still processed.
func (s *Service) ProcessAndImport(ctx context.Context, path string, opts ImportOptions) (*ImportReport, error) {
	if err := s.validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	var schema *InventorySchema
	if opts.InventoryType != "" {
		sc, ok := LookupSchema(opts.InventoryType)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownType, opts.InventoryType)
		}
		schema = &sc
	}

	start := time.Now()
	previews, err := s.PreviewAndAnalyze(ctx, path)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{
		RunID:     uuid.NewString(),
		File:      path,
		DryRun:    opts.DryRun,
		StartedAt: start,
		Tables:    make([]TableReport, 0, len(previews)),
	}
	logger := logging.WithFields(ctx, "run_id", report.RunID, "file", path)

	for _, p := range previews {
		tr := TableReport{
			FileTableName:    p.FileTableName,
			MappedTableName:  p.MappedTableName,
			TargetTable:      p.MappedTableName,
			MappingReport:    p.MappingReport,
			SanitizeLogs:     p.SanitizeLogs,
			ValidationBefore: p.Validation,
			ValidationAfter:  p.Validation,
			Actions:          []string{},
			Errors:           []string{},
			ParseNotes:       p.ParseNotes,
		}
		if opts.TableName != "" {
			tr.TargetTable = Slugify(opts.TableName)
		}
		if schema != nil {
			tr.SchemaWarnings = CheckSchema(p.Sanitized, *schema)
		}

		out := p.Sanitized
		if opts.AutoFix {
			var actions []string
			out, actions = AutoFix(out, opts.RemoveBadRows)
			tr.Actions = append(tr.Actions, actions...)
			tr.ValidationAfter = Validate(out)
		}
		out.Name = tr.TargetTable
		tr.Output = out

		tlog := logger.With("table", tr.TargetTable, "rows", out.Len())
		switch {
		case opts.DryRun:
			tr.Actions = append(tr.Actions, fmt.Sprintf("Dry run: would write %d rows to %s", out.Len(), tr.TargetTable))
			tlog.Info("dry run: table not written")
		case s.persister == nil:
			tr.Errors = append(tr.Errors, ErrNoTarget.Error())
			tlog.Error("persist skipped", "error", ErrNoTarget)
		default:
			if err := s.persist(ctx, tr.TargetTable, out, opts.IfExists); err != nil {
				tr.Errors = append(tr.Errors, err.Error())
				tlog.Error("persist failed", "error", err, "if_exists", opts.IfExists)
			} else {
				tr.RowsWritten = out.Len()
				tlog.Info("table written", "if_exists", opts.IfExists)
			}
		}

		s.recorder.RecordTable(tr, opts.DryRun)
		report.Tables = append(report.Tables, tr)
	}

	report.Duration = time.Since(start)
	return report, nil
}

// persist recovers a panicking persister into an error.
func (s *Service) persist(ctx context.Context, name string, t Table, mode IfExists) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("persist %s: panic: %v", name, r)
		}
	}()
	return s.persister.Persist(ctx, name, t, mode)
}
