// Package reconcile provides the diff-and-patch core shared by every
// synchronization job: a source collection (the master) is compared with a
// target collection (the report) restricted to one extent, and the
// resulting delta is committed through a transactional edit session.
//
// # Architecture
//
// The package consists of four parts:
//
// 1. Scope resolution: ParseSelection and ScopeResolver turn a figure
// selection into extents, each carrying a WhereClause predicate built from
// the extent key's FieldType (text keys quoted, numeric keys bare).
//
// 2. Differ: Index keys rows (rejecting duplicate keys with a
// DuplicateKeyError) and Diff partitions source keys into additions and
// field-level updates using exact equality on normalized values.
//
// 3. Patcher: applies a Delta through an Editor. Updates overwrite only the
// named field of the matching record; additions are appended in target
// column order.
//
// 4. Plan / Apply: jobs build a Plan of per-extent deltas without side
// effects; ApplyPlan commits it inside one session acquired with
// WithEditSession, which rolls back on every failure path.
//
// # Errors
//
// MissingFieldError, SchemaMismatchError, DuplicateKeyError and
// ExtentNotFoundError carry the Stage they were raised in and match their
// sentinels with errors.Is. Other failures are wrapped in StageError.
//
// # Usage Example
//
//	plan := reconcile.NewPlan("attributes", target)
//	delta, err := reconcile.DiffRows(src, tgt, reconcile.FieldKey("loc_id"), reconcile.FieldKey("loc_id"), fields, srcOpts, tgtOpts)
//	plan.AddExtent(extent, delta)
//
//	report, err := reconcile.ApplyPlan(ctx, store, plan, reconcile.Options{Confirmed: true}, logger)
package reconcile
