package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Editor is the write side of a store, valid for the lifetime of one edit session.
type Editor interface {
	// UpdateField overwrites field on the rows of target.Table whose
	// target.KeyField equals key and that match target.Scope.
	// It returns the number of rows changed.
	UpdateField(ctx context.Context, target Target, key any, field string, value any) (int64, error)

	// Append inserts one row into table with values in columns order.
	Append(ctx context.Context, table string, columns []string, values []any) error
}

// Session is a transactional edit scope over a store.
type Session interface {
	Editor

	// Savepoint marks a point the session can roll back to.
	Savepoint(name string) error

	// RollbackTo discards changes made since the named savepoint.
	RollbackTo(name string) error

	// Commit makes every change of the session durable.
	Commit() error

	// Rollback discards every change of the session. It is a no-op after Commit.
	Rollback() error
}

// SessionOpener opens edit sessions.
type SessionOpener interface {
	Begin(ctx context.Context) (Session, error)
}

// WithEditSession opens a session, runs fn and commits. The session is
// rolled back if fn returns an error or panics, so the store is left
// unchanged on every failure path.
func WithEditSession(ctx context.Context, opener SessionOpener, fn func(Session) error) (err error) {
	sess, err := opener.Begin(ctx)
	if err != nil {
		return &StageError{Stage: StagePatch, Err: fmt.Errorf("failed to start edit session: %w", err)}
	}

	committed := false
	defer func() {
		if r := recover(); r != nil {
			_ = sess.Rollback()
			panic(r)
		}
		if !committed {
			if rbErr := sess.Rollback(); rbErr != nil && err != nil {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(sess); err != nil {
		return err
	}

	if err = sess.Commit(); err != nil {
		return &StageError{Stage: StagePatch, Err: fmt.Errorf("failed to commit edit session: %w", err)}
	}
	committed = true
	return nil
}

// ApplyResult counts what a Patcher wrote.
type ApplyResult struct {
	Appended int `json:"appended"`
	Updated  int `json:"updated"`
}

// Add accumulates another result.
func (r *ApplyResult) Add(o ApplyResult) {
	r.Appended += o.Appended
	r.Updated += o.Updated
}

// Patcher applies deltas through an Editor.
type Patcher struct {
	logger *zap.Logger
}

// NewPatcher creates a patcher. A nil logger disables logging.
func NewPatcher(logger *zap.Logger) *Patcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Patcher{logger: logger}
}

// Apply writes delta to target through editor. Updates overwrite only the
// named field of the matching record; additions are appended with values in
// target.Columns order. Apply never commits: atomicity comes from the
// session editor belongs to.
func (p *Patcher) Apply(ctx context.Context, editor Editor, target Target, delta *Delta) (ApplyResult, error) {
	var result ApplyResult
	if delta.IsEmpty() {
		return result, nil
	}

	for _, u := range delta.Updates {
		if err := ctx.Err(); err != nil {
			return result, &StageError{Stage: StagePatch, Extent: delta.Extent, Err: err}
		}

		n, err := editor.UpdateField(ctx, target, u.KeyValue, u.Field, u.New)
		if err != nil {
			return result, &StageError{
				Stage:  StagePatch,
				Extent: delta.Extent,
				Err:    fmt.Errorf("failed to update %s of %s: %w", u.Field, u.Key, err),
			}
		}
		if n == 0 {
			return result, &StageError{
				Stage:  StagePatch,
				Extent: delta.Extent,
				Err:    fmt.Errorf("no row in %s with %s = %s", target.Table, target.KeyField, u.Key),
			}
		}
		p.logger.Debug("Updated field",
			zap.String("extent", delta.Extent),
			zap.String("key", u.Key),
			zap.String("field", u.Field),
			zap.Any("old", u.Old),
			zap.Any("new", u.New),
		)
		result.Updated++
	}

	if len(delta.Additions) > 0 && len(target.Columns) == 0 {
		return result, &StageError{
			Stage:  StagePatch,
			Extent: delta.Extent,
			Err:    fmt.Errorf("no columns known for %s", target.Table),
		}
	}

	for _, rec := range delta.Additions {
		if err := ctx.Err(); err != nil {
			return result, &StageError{Stage: StagePatch, Extent: delta.Extent, Err: err}
		}

		values := make([]any, len(target.Columns))
		for i, col := range target.Columns {
			values[i] = rec.Row[col]
		}
		if err := editor.Append(ctx, target.Table, target.Columns, values); err != nil {
			return result, &StageError{
				Stage:  StagePatch,
				Extent: delta.Extent,
				Err:    fmt.Errorf("failed to append %s: %w", rec.Key, err),
			}
		}
		result.Appended++
	}

	return result, nil
}
