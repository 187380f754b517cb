package reconcile

import (
	"errors"
	"fmt"
)

// Stage names the phase of a run an error was raised in.
type Stage string

const (
	StageValidate Stage = "validate"
	StageResolve  Stage = "resolve"
	StageDiff     Stage = "diff"
	StagePatch    Stage = "patch"
)

// Sentinel errors matched with errors.Is.
var (
	ErrMissingField   = errors.New("missing field")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrExtentNotFound = errors.New("extent not found")
)

// MissingFieldError reports a required field absent from a participating store.
// It is fatal and always raised before any mutation.
type MissingFieldError struct {
	Stage Stage
	Store string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: field %s does not exist in %s", e.Stage, e.Field, e.Store)
}

// Is implements errors.Is support.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// SchemaMismatchError reports a field whose type differs between two stores.
type SchemaMismatchError struct {
	Stage       Stage
	Field       string
	SourceStore string
	SourceType  FieldType
	TargetStore string
	TargetType  FieldType
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: field %s is %s in %s but %s in %s",
		e.Stage, e.Field, e.SourceType, e.SourceStore, e.TargetType, e.TargetStore)
}

// Is implements errors.Is support.
func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// DuplicateKeyError reports a join key that appears more than once on one side.
type DuplicateKeyError struct {
	Stage  Stage
	Store  string
	Extent string
	Field  string
	Key    string
}

func (e *DuplicateKeyError) Error() string {
	if e.Extent != "" {
		return fmt.Sprintf("%s: duplicate %s %q in %s (extent %s)", e.Stage, e.Field, e.Key, e.Store, e.Extent)
	}
	return fmt.Sprintf("%s: duplicate %s %q in %s", e.Stage, e.Field, e.Key, e.Store)
}

// Is implements errors.Is support.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// ExtentNotFoundError reports an extent with no records in the target.
// Callers log it and skip the extent.
type ExtentNotFoundError struct {
	Stage  Stage
	Store  string
	Extent string
}

func (e *ExtentNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s is not in %s", e.Stage, e.Extent, e.Store)
}

// Is implements errors.Is support.
func (e *ExtentNotFoundError) Is(target error) bool {
	return target == ErrExtentNotFound
}

// StageError wraps an underlying failure with the stage and extent it happened in.
type StageError struct {
	Stage  Stage
	Extent string
	Err    error
}

func (e *StageError) Error() string {
	if e.Extent != "" {
		return fmt.Sprintf("%s (extent %s): %v", e.Stage, e.Extent, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *StageError) Unwrap() error {
	return e.Err
}

// WrapStage attaches stage and extent context to err. Typed errors that
// already carry a stage are returned unchanged.
func WrapStage(stage Stage, extent string, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, ErrMissingField) || errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrDuplicateKey) || errors.Is(err, ErrExtentNotFound) {
		return err
	}
	return &StageError{Stage: stage, Extent: extent, Err: err}
}

// StageOf returns the stage recorded in err, or "" if none.
func StageOf(err error) Stage {
	var (
		se  *StageError
		mf  *MissingFieldError
		sm  *SchemaMismatchError
		dk  *DuplicateKeyError
		enf *ExtentNotFoundError
	)
	switch {
	case errors.As(err, &se):
		return se.Stage
	case errors.As(err, &mf):
		return mf.Stage
	case errors.As(err, &sm):
		return sm.Stage
	case errors.As(err, &dk):
		return dk.Stage
	case errors.As(err, &enf):
		return enf.Stage
	default:
		return ""
	}
}
