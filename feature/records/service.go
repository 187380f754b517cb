package records

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"figure-sync/core/reconcile"
	"figure-sync/core/storage"

	"go.uber.org/zap"
)

// Job is the plan job name.
const Job = "records"

// Store is the geodatabase the job reads and appends to.
type Store interface {
	reconcile.Selector
	reconcile.SessionOpener
}

// Service appends the rows of a delimited file that a table lacks.
type Service struct {
	store      Store
	client     storage.Client
	storageCfg storage.Config
	cfg        reconcile.Config
	logger     *zap.Logger
}

// NewService creates a new records service. client may be nil when
// storage is disabled.
func NewService(store Store, client storage.Client, storageCfg storage.Config, cfg reconcile.Config, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		client:     client,
		storageCfg: storageCfg,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *Service) storageEnabled() bool {
	return s.storageCfg.Enabled && s.client != nil
}

// readInput loads req.Input from the bucket or the local filesystem.
func (s *Service) readInput(ctx context.Context, input string) ([]byte, string, error) {
	if object, ok := storage.ParseURI(input); ok {
		if !s.storageEnabled() {
			return nil, "", fmt.Errorf("%s needs storage to be enabled", input)
		}
		data, err := storage.ReadObject(ctx, s.client, s.storageCfg.Bucket, object)
		return data, filepath.Base(object), err
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", input, err)
	}
	return data, filepath.Base(input), nil
}

// Plan validates the input file against the table and finds its new rows.
func (s *Service) Plan(ctx context.Context, req Request) (*reconcile.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, &reconcile.StageError{Stage: reconcile.StageValidate, Err: err}
	}

	schema, err := reconcile.LoadSchema(ctx, s.store, req.Table)
	if err != nil {
		return nil, err
	}
	var fields []reconcile.FieldSpec
	for _, f := range schema.Fields {
		if f.Type == reconcile.FieldOID || f.Type == reconcile.FieldGeometry {
			continue
		}
		fields = append(fields, f)
	}
	writable := &reconcile.Schema{Table: schema.Table, Fields: fields}
	columns := writable.Columns()

	keys := req.KeyFields
	if len(keys) == 0 {
		keys = columns
	}
	if err := writable.Require(keys...); err != nil {
		return nil, err
	}

	data, source, err := s.readInput(ctx, req.Input)
	if err != nil {
		return nil, &reconcile.StageError{Stage: reconcile.StageValidate, Err: err}
	}
	fileRows, err := parseFile(data, source, req.Table, fields)
	if err != nil {
		return nil, err
	}

	tableRows, err := s.store.Select(ctx, req.Table, columns, "")
	if err != nil {
		return nil, reconcile.WrapStage(reconcile.StageResolve, "", err)
	}

	keyFn := reconcile.CompositeKey(keys...)
	delta, err := reconcile.DiffRows(fileRows, tableRows, keyFn, keyFn, nil,
		reconcile.IndexOptions{Store: source, Field: joinKeys(keys)},
		reconcile.IndexOptions{Store: req.Table, Field: joinKeys(keys)},
	)
	if err != nil {
		return nil, err
	}

	plan := reconcile.NewPlan(Job, reconcile.Target{Table: req.Table, Columns: columns})
	plan.AddExtent(reconcile.Extent{}, delta)

	s.logger.Info("Planned new records",
		zap.String("input", source),
		zap.String("table", req.Table),
		zap.Int("file_rows", len(fileRows)),
		zap.Int("table_rows", len(tableRows)),
		zap.Int("new", len(delta.Additions)),
	)
	return plan, nil
}

// Result is the outcome of Run.
type Result struct {
	Plan   *reconcile.Plan        `json:"plan"`
	Report *reconcile.ApplyReport `json:"report"`
	// ReportObject is the bucket object listing the new rows, if written.
	ReportObject string `json:"report_object,omitempty"`
}

// Apply appends the planned rows and uploads the new-records report.
func (s *Service) Apply(ctx context.Context, plan *reconcile.Plan, opts reconcile.Options) (*Result, error) {
	report, err := reconcile.ApplyPlan(ctx, s.store, plan, opts, s.logger)
	if err != nil {
		return nil, err
	}
	res := &Result{Plan: plan, Report: report}

	if plan.IsEmpty() || !s.storageEnabled() {
		return res, nil
	}

	var additions []reconcile.Record
	for _, ep := range plan.Extents {
		additions = append(additions, ep.Delta.Additions...)
	}
	body, err := formatReport(plan.Target.Columns, additions)
	if err != nil {
		return nil, fmt.Errorf("failed to format report: %w", err)
	}

	object := storage.ReportKey(s.cfg.ReportPrefix, plan.Target.Table, "new_records", time.Now())
	if err := storage.WriteObject(ctx, s.client, s.storageCfg.Bucket, object, "text/csv", body); err != nil {
		return nil, err
	}
	res.ReportObject = object
	s.logger.Info("New records report uploaded", zap.String("object", object))
	return res, nil
}

// Run plans and, when opts allow it, appends the new rows.
func (s *Service) Run(ctx context.Context, req Request, opts reconcile.Options) (*Result, error) {
	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, plan, opts)
}

func joinKeys(keys []string) string {
	if len(keys) == 1 {
		return keys[0]
	}
	return fmt.Sprintf("(%s)", strings.Join(keys, ", "))
}
