package geometry

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"figure-sync/core/gdb"
	"figure-sync/core/reconcile"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// Job is the plan job name.
const Job = "geometry"

// Store is the geodatabase the job reads and writes.
type Store interface {
	reconcile.Selector
	reconcile.SessionOpener
	Features(ctx context.Context, table string, fields []string, where string) ([]gdb.Feature, error)
	GeometryField(ctx context.Context, table string) (string, error)
}

// TableEditor is implemented by sessions that can replace a table.
type TableEditor interface {
	RecreateTable(ctx context.Context, table, template string) error
}

// Service finds parent features that fall in a figure but are missing
// from the figure's report features.
type Service struct {
	store  Store
	cfg    reconcile.Config
	logger *zap.Logger
}

// NewService creates a new geometry service.
func NewService(store Store, cfg reconcile.Config, logger *zap.Logger) *Service {
	return &Service{store: store, cfg: cfg, logger: logger}
}

// Normalize applies defaults and validates req.
func (s *Service) Normalize(req Request) (Request, error) {
	req = req.withDefaults(s.cfg.OutputSuffix)
	if err := req.Validate(); err != nil {
		return req, &reconcile.StageError{Stage: reconcile.StageValidate, Err: err}
	}
	return req, nil
}

// joined is a parent feature matched to one figure.
type joined struct {
	key  string
	row  reconcile.Row
	geom orb.Geometry
}

// Plan computes, per figure, the parent features to add to the output table.
func (s *Service) Plan(ctx context.Context, req Request) (*reconcile.Plan, error) {
	req, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}

	parent, child, extentType, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	resolver := reconcile.NewScopeResolver(s.store, s.logger)
	extents, err := resolver.Resolve(ctx, req.Extents, req.ExtentKey, extentType, req.Selection())
	if err != nil {
		return nil, err
	}
	present, err := resolver.Present(ctx, req.Child, req.ExtentKey)
	if err != nil {
		return nil, err
	}

	parents, err := s.store.Features(ctx, req.Parent, nil, "")
	if err != nil {
		return nil, reconcile.WrapStage(reconcile.StageResolve, "", err)
	}
	figurePolys, err := s.polygonsByKey(ctx, req.Extents, req.ExtentKey)
	if err != nil {
		return nil, err
	}
	boundaryPolys := figurePolys
	if !strings.EqualFold(req.Boundary, req.Extents) {
		if boundaryPolys, err = s.polygonsByKey(ctx, req.Boundary, req.ExtentKey); err != nil {
			return nil, err
		}
	}

	deleteSet := make(map[string]struct{}, len(req.DeleteValues))
	for _, v := range req.DeleteValues {
		deleteSet[v] = struct{}{}
	}

	columns, childGeom := outputColumns(child)
	oid := oidField(parent)

	plan := reconcile.NewPlan(Job, reconcile.Target{Table: req.Output, Columns: columns})

	for _, ext := range extents {
		if err := resolver.Check(ext, req.Child, present); err != nil {
			if errors.Is(err, reconcile.ErrExtentNotFound) {
				s.logger.Warn("Skipping figure", zap.String("figure", ext.Value), zap.Error(err))
				plan.Skip(ext.Value)
				continue
			}
			return nil, err
		}

		polys := figurePolys[ext.Value]
		var extentValue any = ext.Value
		if len(polys) > 0 {
			extentValue = polys[0].Row[req.ExtentKey]
		}

		// Part 1: parent features inside the figure, minus deleted values.
		var inFigure []joined
		for i, f := range parents {
			if f.Geom == nil || !gdb.IntersectsAny(f.Geom, geoms(polys)) {
				continue
			}
			if _, drop := deleteSet[reconcile.KeyString(f.Row[req.DeleteField])]; drop {
				continue
			}
			key := strconv.Itoa(i)
			if oid != "" {
				key = reconcile.KeyString(f.Row[oid])
			}
			inFigure = append(inFigure, joined{key: key, row: f.Row, geom: f.Geom})
		}

		// Part 2: restrict to the figure's secondary boundary.
		bounds := geoms(boundaryPolys[ext.Value])
		var inBoundary []joined
		for _, j := range inFigure {
			if gdb.IntersectsAny(j.geom, bounds) {
				inBoundary = append(inBoundary, j)
			}
		}

		// Part 3: whatever touches no report feature of the figure is new.
		existing, err := s.store.Features(ctx, req.Child, []string{req.ExtentKey}, ext.Clause)
		if err != nil {
			return nil, reconcile.WrapStage(reconcile.StageResolve, ext.Value, err)
		}
		existingGeoms := geoms(existing)

		delta := &reconcile.Delta{Additions: []reconcile.Record{}, Updates: []reconcile.Update{}}
		for _, j := range inBoundary {
			if gdb.IntersectsAny(j.geom, existingGeoms) {
				continue
			}
			delta.Additions = append(delta.Additions, reconcile.Record{
				Key: j.key,
				Row: outputRow(columns, childGeom, req.ExtentKey, extentValue, j),
			})
		}

		plan.AddExtent(ext, delta)
		s.logger.Info("Planned figure",
			zap.String("figure", ext.Value),
			zap.Int("in_figure", len(inFigure)),
			zap.Int("in_boundary", len(inBoundary)),
			zap.Int("new", len(delta.Additions)),
		)
	}

	return plan, nil
}

// validate checks every participating table before anything is read.
func (s *Service) validate(ctx context.Context, req Request) (parent, child *reconcile.Schema, extentType reconcile.FieldType, err error) {
	schemas := make(map[string]*reconcile.Schema)
	for _, table := range []string{req.Parent, req.Child, req.Extents, req.Boundary} {
		if _, ok := schemas[table]; ok {
			continue
		}
		sc, err := reconcile.LoadSchema(ctx, s.store, table)
		if err != nil {
			return nil, nil, "", err
		}
		if _, err := s.store.GeometryField(ctx, table); err != nil {
			return nil, nil, "", err
		}
		schemas[table] = sc
	}

	for _, table := range []string{req.Child, req.Extents, req.Boundary} {
		if err := schemas[table].Require(req.ExtentKey); err != nil {
			return nil, nil, "", err
		}
	}
	if len(req.DeleteValues) > 0 {
		if err := schemas[req.Parent].Require(req.DeleteField); err != nil {
			return nil, nil, "", err
		}
	}

	return schemas[req.Parent], schemas[req.Child], schemas[req.Extents].Type(req.ExtentKey), nil
}

func (s *Service) polygonsByKey(ctx context.Context, table, keyField string) (map[string][]gdb.Feature, error) {
	feats, err := s.store.Features(ctx, table, []string{keyField}, "")
	if err != nil {
		return nil, reconcile.WrapStage(reconcile.StageResolve, "", err)
	}
	out := make(map[string][]gdb.Feature)
	for _, f := range feats {
		k := reconcile.KeyString(f.Row[keyField])
		out[k] = append(out[k], f)
	}
	return out, nil
}

// Apply recreates the output table from the child schema and appends the
// planned features in one edit session.
func (s *Service) Apply(ctx context.Context, req Request, plan *reconcile.Plan, opts reconcile.Options) (*reconcile.ApplyReport, error) {
	report := &reconcile.ApplyReport{}
	if !opts.Confirmed || opts.DryRun {
		return report, nil
	}
	req, err := s.Normalize(req)
	if err != nil {
		return nil, err
	}

	patcher := reconcile.NewPatcher(s.logger)
	err = reconcile.WithEditSession(ctx, s.store, func(sess reconcile.Session) error {
		te, ok := sess.(TableEditor)
		if !ok {
			return &reconcile.StageError{Stage: reconcile.StagePatch, Err: fmt.Errorf("edit session cannot create %s", req.Output)}
		}
		if err := te.RecreateTable(ctx, req.Output, req.Child); err != nil {
			return &reconcile.StageError{Stage: reconcile.StagePatch, Err: err}
		}

		for _, ep := range plan.Extents {
			res, err := patcher.Apply(ctx, sess, plan.Target, ep.Delta)
			if err != nil {
				return err
			}
			report.Result.Add(res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("New features written",
		zap.String("output", req.Output),
		zap.Int("count", report.Result.Appended),
	)
	return report, nil
}

// Result is the outcome of Run.
type Result struct {
	Output string                 `json:"output"`
	Plan   *reconcile.Plan        `json:"plan"`
	Report *reconcile.ApplyReport `json:"report"`
}

// Run plans and, when opts allow it, writes the output table.
func (s *Service) Run(ctx context.Context, req Request, opts reconcile.Options) (*Result, error) {
	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	report, err := s.Apply(ctx, req, plan, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Output: plan.Target.Table, Plan: plan, Report: report}, nil
}

// outputColumns returns the writable child columns and the name of the
// child's shape column.
func outputColumns(child *reconcile.Schema) ([]string, string) {
	var cols []string
	var geom string
	for _, f := range child.Fields {
		switch f.Type {
		case reconcile.FieldOID:
			continue
		case reconcile.FieldGeometry:
			geom = f.Name
		}
		cols = append(cols, f.Name)
	}
	return cols, geom
}

func oidField(schema *reconcile.Schema) string {
	for _, f := range schema.Fields {
		if f.Type == reconcile.FieldOID {
			return f.Name
		}
	}
	return ""
}

// outputRow maps a joined parent feature onto the child columns by name.
func outputRow(columns []string, geomCol, extentKey string, extentValue any, j joined) reconcile.Row {
	byName := make(map[string]any, len(j.row))
	for k, v := range j.row {
		byName[strings.ToLower(k)] = v
	}

	row := make(reconcile.Row, len(columns))
	for _, c := range columns {
		switch {
		case strings.EqualFold(c, geomCol):
			row[c] = gdb.FormatGeometry(j.geom)
		case strings.EqualFold(c, extentKey):
			row[c] = extentValue
		default:
			row[c] = byName[strings.ToLower(c)]
		}
	}
	return row
}

func geoms(feats []gdb.Feature) []orb.Geometry {
	out := make([]orb.Geometry, 0, len(feats))
	for _, f := range feats {
		if f.Geom != nil {
			out = append(out, f.Geom)
		}
	}
	return out
}
