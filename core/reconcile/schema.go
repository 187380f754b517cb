package reconcile

import (
	"context"
	"fmt"
)

// Schema is the introspected field list of one table.
type Schema struct {
	Table  string
	Fields []FieldSpec
}

// LoadSchema introspects table through store.
func LoadSchema(ctx context.Context, store Selector, table string) (*Schema, error) {
	fields, err := store.Fields(ctx, table)
	if err != nil {
		return nil, &StageError{Stage: StageValidate, Err: fmt.Errorf("failed to inspect %s: %w", table, err)}
	}
	return &Schema{Table: table, Fields: fields}, nil
}

// Field looks a field up by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Columns returns the field names in schema order.
func (s *Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Require returns a MissingFieldError for the first name not in the schema.
func (s *Schema) Require(names ...string) error {
	for _, name := range names {
		if _, ok := s.Field(name); !ok {
			return &MissingFieldError{Stage: StageValidate, Store: s.Table, Field: name}
		}
	}
	return nil
}

// Type returns the type of a field, or "" when absent.
func (s *Schema) Type(name string) FieldType {
	f, _ := s.Field(name)
	return f.Type
}

// RequireCompatible checks that every name exists in both schemas with
// compatible types. Missing fields are reported before type mismatches so
// a run never mutates anything on a partially valid schema.
func RequireCompatible(source, target *Schema, names ...string) error {
	if err := source.Require(names...); err != nil {
		return err
	}
	if err := target.Require(names...); err != nil {
		return err
	}
	for _, name := range names {
		st := source.Type(name)
		tt := target.Type(name)
		if !tt.CompatibleWith(st) {
			return &SchemaMismatchError{
				Stage:       StageValidate,
				Field:       name,
				SourceStore: source.Table,
				SourceType:  st,
				TargetStore: target.Table,
				TargetType:  tt,
			}
		}
	}
	return nil
}
