package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// NewPlan creates an empty plan for job against target.
func NewPlan(job string, target Target) *Plan {
	return &Plan{
		Job:     job,
		Target:  target,
		Extents: []ExtentPlan{},
		Skipped: []string{},
		Created: time.Now(),
	}
}

// AddExtent records the delta computed for extent and updates the summary.
func (p *Plan) AddExtent(extent Extent, delta *Delta) {
	delta.Extent = extent.Value
	p.Extents = append(p.Extents, ExtentPlan{Extent: extent, Delta: delta})

	p.Summary.Extents++
	p.Summary.Additions += len(delta.Additions)
	p.Summary.Updates += len(delta.Updates)

	touched := make(map[string]struct{})
	for _, u := range delta.Updates {
		touched[u.Key] = struct{}{}
	}
	p.Summary.RecordsUpdated += len(touched)
}

// Skip records an extent that had nothing to reconcile.
func (p *Plan) Skip(extent string) {
	p.Skipped = append(p.Skipped, extent)
	p.Summary.SkippedExtents++
}

// IsEmpty reports whether applying the plan would change nothing.
func (p *Plan) IsEmpty() bool {
	return p.Summary.Additions == 0 && p.Summary.Updates == 0
}

// ApplyReport describes the outcome of ApplyPlan.
type ApplyReport struct {
	Result ApplyResult `json:"result"`

	// Failed maps extents that were rolled back to their error.
	// Only populated with ContinueOnError.
	Failed map[string]string `json:"failed,omitempty"`
}

// ApplyPlan executes a plan in a single edit session opened through opener.
// It requires opts.Confirmed=true and opts.DryRun=false to actually execute.
//
// By default the first failing extent aborts the run and the whole session
// is rolled back. With opts.ContinueOnError each extent runs under its own
// savepoint; a failing extent is rolled back alone and reported in Failed.
func ApplyPlan(ctx context.Context, opener SessionOpener, plan *Plan, opts Options, logger *zap.Logger) (*ApplyReport, error) {
	report := &ApplyReport{}

	if !opts.Confirmed || opts.DryRun {
		return report, nil
	}
	if plan.IsEmpty() {
		return report, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	patcher := NewPatcher(logger)

	err := WithEditSession(ctx, opener, func(sess Session) error {
		for i, ep := range plan.Extents {
			if ep.Delta.IsEmpty() {
				continue
			}

			target := plan.Target
			target.Scope = ep.Extent.Clause

			if !opts.ContinueOnError {
				res, err := patcher.Apply(ctx, sess, target, ep.Delta)
				if err != nil {
					return err
				}
				report.Result.Add(res)
				logger.Info("Applied extent",
					zap.String("extent", ep.Extent.Value),
					zap.Int("updated", res.Updated),
					zap.Int("appended", res.Appended),
				)
				continue
			}

			sp := "extent_" + strconv.Itoa(i)
			if err := sess.Savepoint(sp); err != nil {
				return &StageError{Stage: StagePatch, Extent: ep.Extent.Value, Err: fmt.Errorf("failed to create savepoint: %w", err)}
			}
			res, err := patcher.Apply(ctx, sess, target, ep.Delta)
			if err != nil {
				if rbErr := sess.RollbackTo(sp); rbErr != nil {
					return &StageError{Stage: StagePatch, Extent: ep.Extent.Value, Err: fmt.Errorf("failed to roll back extent: %w", rbErr)}
				}
				if report.Failed == nil {
					report.Failed = make(map[string]string)
				}
				report.Failed[ep.Extent.Value] = err.Error()
				logger.Warn("Extent rolled back", zap.String("extent", ep.Extent.Value), zap.Error(err))
				continue
			}
			report.Result.Add(res)
			logger.Info("Applied extent",
				zap.String("extent", ep.Extent.Value),
				zap.Int("updated", res.Updated),
				zap.Int("appended", res.Appended),
			)
		}
		return nil
	})
	if err != nil {
		return &ApplyReport{}, err
	}

	return report, nil
}
