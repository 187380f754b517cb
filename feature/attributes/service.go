package attributes

import (
	"context"
	"errors"

	"figure-sync/core/reconcile"

	"go.uber.org/zap"
)

// Job is the plan job name.
const Job = "attributes"

// Store is the geodatabase the job reads and edits.
type Store interface {
	reconcile.Selector
	reconcile.SessionOpener
}

// Service synchronizes report attributes with the master, figure by figure.
type Service struct {
	store  Store
	cache  *reconcile.SourceCache
	cfg    reconcile.Config
	logger *zap.Logger
}

// NewService creates a new attribute sync service. cache may be nil.
func NewService(store Store, cache *reconcile.SourceCache, cfg reconcile.Config, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// Plan computes the field overwrites for every selected figure without
// touching the report. Schema problems are reported before anything is read.
func (s *Service) Plan(ctx context.Context, req Request) (*reconcile.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, &reconcile.StageError{Stage: reconcile.StageValidate, Err: err}
	}
	sel := req.Selection()

	master, err := reconcile.LoadSchema(ctx, s.store, req.Master)
	if err != nil {
		return nil, err
	}
	report, err := reconcile.LoadSchema(ctx, s.store, req.Report)
	if err != nil {
		return nil, err
	}
	if err := master.Require(req.SourceKey); err != nil {
		return nil, err
	}
	if err := report.Require(req.TargetKey); err != nil {
		return nil, err
	}

	var extentType reconcile.FieldType
	if !sel.Unscoped {
		if err := report.Require(req.ExtentKey); err != nil {
			return nil, err
		}
		extents, err := reconcile.LoadSchema(ctx, s.store, req.Extents)
		if err != nil {
			return nil, err
		}
		if err := extents.Require(req.ExtentKey); err != nil {
			return nil, err
		}
		extentType = extents.Type(req.ExtentKey)
	}
	if err := reconcile.RequireCompatible(master, report, req.Fields...); err != nil {
		return nil, err
	}

	resolver := reconcile.NewScopeResolver(s.store, s.logger)
	extents, err := resolver.Resolve(ctx, req.Extents, req.ExtentKey, extentType, sel)
	if err != nil {
		return nil, err
	}

	source, err := s.masterIndex(ctx, req)
	if err != nil {
		return nil, err
	}

	var present map[string]struct{}
	if !sel.Unscoped {
		present, err = resolver.Present(ctx, req.Report, req.ExtentKey)
		if err != nil {
			return nil, err
		}
	}

	plan := reconcile.NewPlan(Job, reconcile.Target{
		Table:    req.Report,
		KeyField: req.TargetKey,
		Columns:  report.Columns(),
	})

	cols := append([]string{req.TargetKey}, req.Fields...)
	for _, ext := range extents {
		if err := resolver.Check(ext, req.Report, present); err != nil {
			if errors.Is(err, reconcile.ErrExtentNotFound) {
				s.logger.Warn("Skipping figure", zap.String("figure", ext.Value), zap.Error(err))
				plan.Skip(ext.Value)
				continue
			}
			return nil, err
		}

		rows, err := resolver.Scope(ctx, req.Report, cols, ext)
		if err != nil {
			return nil, err
		}
		target, err := reconcile.Index(rows, reconcile.FieldKey(req.TargetKey), reconcile.IndexOptions{
			Store:  req.Report,
			Field:  req.TargetKey,
			Extent: ext.Value,
		})
		if err != nil {
			return nil, err
		}

		delta := reconcile.Diff(source, target, req.Fields)
		// Master rows outside the figure are not report rows to add.
		delta.Additions = []reconcile.Record{}

		plan.AddExtent(ext, delta)
		s.logger.Info("Planned figure",
			zap.String("figure", ext.Value),
			zap.Int("records", len(target)),
			zap.Int("updates", len(delta.Updates)),
		)
	}

	return plan, nil
}

// masterIndex reads the master once per run, or once per cache TTL when
// serving requests.
func (s *Service) masterIndex(ctx context.Context, req Request) ([]reconcile.Record, error) {
	key := reconcile.SourceKey{Table: req.Master, KeyField: req.SourceKey, Fields: req.Fields}
	idx, err := s.cache.GetOrBuild(ctx, key, func(ctx context.Context) ([]reconcile.Record, error) {
		rows, err := s.store.Select(ctx, req.Master, append([]string{req.SourceKey}, req.Fields...), "")
		if err != nil {
			return nil, reconcile.WrapStage(reconcile.StageResolve, "", err)
		}
		return reconcile.Index(rows, reconcile.FieldKey(req.SourceKey), reconcile.IndexOptions{
			Store: req.Master,
			Field: req.SourceKey,
		})
	})
	if err != nil {
		return nil, err
	}
	return idx.Records, nil
}

// Apply commits a plan computed by Plan.
func (s *Service) Apply(ctx context.Context, plan *reconcile.Plan, opts reconcile.Options) (*reconcile.ApplyReport, error) {
	return reconcile.ApplyPlan(ctx, s.store, plan, opts, s.logger)
}

// Result is the outcome of Run.
type Result struct {
	Plan   *reconcile.Plan        `json:"plan"`
	Report *reconcile.ApplyReport `json:"report"`
}

// Run plans and, when opts allow it, applies.
func (s *Service) Run(ctx context.Context, req Request, opts reconcile.Options) (*Result, error) {
	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	report, err := s.Apply(ctx, plan, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Plan: plan, Report: report}, nil
}
