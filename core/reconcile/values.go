package reconcile

import (
	"fmt"
	"strings"
	"time"

	"figure-sync/core/utils"
)

// Normalize converts a raw store or file value into the canonical Go type
// of its FieldType: string, int64, float64 or time.Time. NULL stays nil.
func Normalize(val any, t FieldType) (any, error) {
	if val == nil {
		return nil, nil
	}

	switch {
	case t.IsInteger():
		if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return utils.ToInt64(val)
	case t.IsFloat():
		if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		return utils.ToFloat64(val)
	case t == FieldDate:
		if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		ts, err := utils.ToTime(val)
		if err != nil {
			return nil, err
		}
		return ts.UTC(), nil
	default:
		return utils.ToString(val), nil
	}
}

// NormalizeRow normalizes every column of row that has a spec in schema.
// Columns without a spec are kept as strings.
func NormalizeRow(row Row, schema []FieldSpec) (Row, error) {
	types := make(map[string]FieldType, len(schema))
	for _, f := range schema {
		types[f.Name] = f.Type
	}

	out := make(Row, len(row))
	for name, val := range row {
		t, ok := types[name]
		if !ok {
			t = FieldString
		}
		n, err := Normalize(val, t)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

// ValuesEqual compares two normalized values exactly.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return a == b
}

// KeyString returns the canonical string form of a join key value.
func KeyString(val any) string {
	if val == nil {
		return ""
	}
	return utils.ToString(val)
}
