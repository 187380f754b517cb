package reconcile

import "time"

// FieldType is the key-type tag carried by every FieldSpec. It drives value
// normalization and the quoting rules of WhereClause.
type FieldType string

const (
	FieldString       FieldType = "String"
	FieldSmallInteger FieldType = "SmallInteger"
	FieldInteger      FieldType = "Integer"
	FieldSingle       FieldType = "Single"
	FieldDouble       FieldType = "Double"
	FieldDate         FieldType = "Date"
	FieldGUID         FieldType = "GUID"
	FieldOID          FieldType = "OID"
	FieldGeometry     FieldType = "Geometry"
)

// IsText reports whether values of this type are quoted in predicates.
func (t FieldType) IsText() bool {
	switch t {
	case FieldString, FieldGUID, FieldDate, FieldGeometry:
		return true
	default:
		return false
	}
}

// IsInteger reports whether the type belongs to the integer family.
func (t FieldType) IsInteger() bool {
	return t == FieldSmallInteger || t == FieldInteger || t == FieldOID
}

// IsFloat reports whether the type belongs to the floating point family.
func (t FieldType) IsFloat() bool {
	return t == FieldSingle || t == FieldDouble
}

// CompatibleWith reports whether a field of type t can be synchronized from
// a field of type other. Integer widths are interchangeable, as are float widths.
func (t FieldType) CompatibleWith(other FieldType) bool {
	switch {
	case t == other:
		return true
	case t.IsInteger() && other.IsInteger():
		return true
	case t.IsFloat() && other.IsFloat():
		return true
	default:
		return false
	}
}

// FieldSpec describes one column of a table or feature class.
type FieldSpec struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Row is a single record read from a store, keyed by column name.
// Values are normalized (see Normalize) by the store before being returned.
type Row map[string]any

// Record is a Row indexed by its join key.
type Record struct {
	// Key is the canonical string form of the join key.
	Key string `json:"key"`

	// KeyValue is the join key as read from the store. Patch operations
	// locate rows with it so the predicate matches the column type.
	KeyValue any `json:"-"`

	// Row holds every column read for the record.
	Row Row `json:"row"`
}

// Update is a single field overwrite: the target record identified by Key
// has Field changed from Old to New.
type Update struct {
	Key      string `json:"key"`
	KeyValue any    `json:"-"`
	Field    string `json:"field"`
	Old      any    `json:"old"`
	New      any    `json:"new"`
}

// Delta is the unit of work computed for one extent.
type Delta struct {
	// Extent is the extent value the delta belongs to ("" when unscoped).
	Extent string `json:"extent"`

	// Additions are source records with no counterpart in the target.
	Additions []Record `json:"additions"`

	// Updates are field overwrites for records present on both sides.
	Updates []Update `json:"updates"`
}

// IsEmpty reports whether the delta has nothing to apply.
func (d *Delta) IsEmpty() bool {
	return d == nil || (len(d.Additions) == 0 && len(d.Updates) == 0)
}

// Target identifies where a delta is applied.
type Target struct {
	// Table is the table receiving updates or additions.
	Table string `json:"table"`

	// KeyField is the join key column in Table.
	KeyField string `json:"key_field"`

	// Scope is a predicate fragment restricting updates to one extent.
	// Empty means the whole table.
	Scope string `json:"scope,omitempty"`

	// Columns is the target schema order used when appending additions.
	Columns []string `json:"columns"`
}

// ExtentPlan is the delta computed for a single extent.
type ExtentPlan struct {
	Extent Extent `json:"extent"`
	Delta  *Delta `json:"delta"`
}

// Plan contains every delta of a job together with the extents skipped
// while planning. It does not execute anything; see ApplyPlan.
type Plan struct {
	// Job is the kind of job that produced the plan.
	Job string `json:"job"`

	// Target is the table the plan mutates. Per-extent scope is taken
	// from each ExtentPlan.
	Target Target `json:"target"`

	// Extents holds one entry per processed extent, in processing order.
	Extents []ExtentPlan `json:"extents"`

	// Skipped lists extents that had no records in the target.
	Skipped []string `json:"skipped"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`

	// Created is when the plan was computed.
	Created time.Time `json:"created"`
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// Extents is the number of extents that were diffed.
	Extents int `json:"extents"`

	// SkippedExtents counts extents with no target records.
	SkippedExtents int `json:"skipped_extents"`

	// Additions counts wholly new records.
	Additions int `json:"additions"`

	// Updates counts field overwrites.
	Updates int `json:"updates"`

	// RecordsUpdated counts distinct target records touched by updates.
	RecordsUpdated int `json:"records_updated"`
}

// Options controls how a plan is applied.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Confirmed indicates the caller has confirmed the mutation.
	// If false, nothing is applied regardless of DryRun.
	Confirmed bool

	// ContinueOnError isolates extents: a failing extent is rolled back
	// to its savepoint and the run carries on with the next one.
	ContinueOnError bool
}
