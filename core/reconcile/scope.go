package reconcile

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Selection is a parsed extent-selection expression.
type Selection struct {
	// All selects every extent in the extent table.
	All bool

	// Unscoped runs the job once over the whole target, without extents.
	Unscoped bool

	// Values are explicitly selected extent values.
	Values []string
}

// ParseSelection parses an extent-selection expression.
//
//	"", "0", "all", "*"  every extent
//	"none"               no extent scoping
//	"A;'B'; C"           the listed extents (quotes and spaces are stripped)
func ParseSelection(expr string) Selection {
	trimmed := strings.TrimSpace(expr)
	switch strings.ToLower(trimmed) {
	case "", "0", "all", "*":
		return Selection{All: true}
	case "none":
		return Selection{Unscoped: true}
	}

	var values []string
	for _, item := range strings.Split(trimmed, ";") {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, "'\"")
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		values = append(values, item)
	}
	if len(values) == 0 {
		return Selection{All: true}
	}
	return Selection{Values: values}
}

// String renders the selection back into expression form.
func (s Selection) String() string {
	switch {
	case s.Unscoped:
		return "none"
	case s.All:
		return "all"
	default:
		return strings.Join(s.Values, ";")
	}
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is a plain SQL identifier.
func ValidIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// Dialect selects the string literal rules text predicates are quoted with.
type Dialect string

const (
	// DialectStandard doubles embedded single quotes (sqlite, ANSI SQL).
	DialectStandard Dialect = ""
	// DialectMySQL also escapes backslashes, which MySQL reads as escape
	// characters inside string literals.
	DialectMySQL Dialect = "mysql"
)

// DialectOf returns the dialect of store when it reports one.
func DialectOf(store any) Dialect {
	if d, ok := store.(interface{ Dialect() string }); ok && d.Dialect() == string(DialectMySQL) {
		return DialectMySQL
	}
	return DialectStandard
}

var decimalRe = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)

// WhereClause builds the predicate fragment "field = value" for a key of
// the given type with standard quoting. See Dialect.WhereClause.
func WhereClause(field, value string, keyType FieldType) (string, error) {
	return DialectStandard.WhereClause(field, value, keyType)
}

// WhereClause builds the predicate fragment "field = value" for a key of
// the given type. Text keys are single-quoted with embedded quotes doubled
// (and backslashes doubled on MySQL); numeric keys must be decimal literals
// and are emitted bare. Mixing the two rules up produces query errors on
// differently typed key columns, so the type is always explicit.
func (d Dialect) WhereClause(field, value string, keyType FieldType) (string, error) {
	if !ValidIdentifier(field) {
		return "", fmt.Errorf("invalid field name %q", field)
	}

	if keyType.IsText() {
		return fmt.Sprintf("%s = '%s'", field, d.escape(value)), nil
	}

	v := strings.TrimSpace(value)
	switch {
	case keyType.IsInteger():
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return "", fmt.Errorf("extent %q is not a valid %s value for %s", value, keyType, field)
		}
	case keyType.IsFloat():
		if !decimalRe.MatchString(v) {
			return "", fmt.Errorf("extent %q is not a valid %s value for %s", value, keyType, field)
		}
	default:
		return "", fmt.Errorf("field %s of type %s cannot be used as an extent key", field, keyType)
	}
	return fmt.Sprintf("%s = %s", field, v), nil
}

func (d Dialect) escape(value string) string {
	if d == DialectMySQL {
		value = strings.ReplaceAll(value, `\`, `\\`)
	}
	return strings.ReplaceAll(value, "'", "''")
}

// Extent is one resolved extent with its predicate.
type Extent struct {
	Value  string `json:"value"`
	Clause string `json:"clause"`
}

// Selector is the read side of a store.
type Selector interface {
	// Fields returns the schema of table in column order.
	Fields(ctx context.Context, table string) ([]FieldSpec, error)

	// Select returns the normalized rows of table matching where
	// (all rows when where is empty), restricted to fields (all when empty).
	Select(ctx context.Context, table string, fields []string, where string) ([]Row, error)

	// Distinct returns the sorted distinct non-null values of field as
	// canonical key strings (see KeyString).
	Distinct(ctx context.Context, table, field string) ([]string, error)
}

// ScopeResolver turns a selection into extents and scopes reads to them.
type ScopeResolver struct {
	store   Selector
	dialect Dialect
	logger  *zap.Logger
}

// NewScopeResolver creates a resolver over store.
func NewScopeResolver(store Selector, logger *zap.Logger) *ScopeResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeResolver{store: store, dialect: DialectOf(store), logger: logger}
}

// Resolve lists the extents selected by sel from the extent table, in
// processing order. keyType is the type of keyField in the extent table.
func (r *ScopeResolver) Resolve(ctx context.Context, extentTable, keyField string, keyType FieldType, sel Selection) ([]Extent, error) {
	if sel.Unscoped {
		return []Extent{{}}, nil
	}

	values := sel.Values
	if sel.All {
		all, err := r.store.Distinct(ctx, extentTable, keyField)
		if err != nil {
			return nil, WrapStage(StageResolve, "", fmt.Errorf("failed to list extents of %s: %w", extentTable, err))
		}
		values = all
	}

	extents := make([]Extent, 0, len(values))
	for _, v := range values {
		if _, err := r.dialect.WhereClause(keyField, v, keyType); err != nil {
			return nil, &StageError{Stage: StageResolve, Extent: v, Err: err}
		}
		// "2.0" and "05" name the same extent as the stored 2 and 5.
		if keyType.IsInteger() || keyType.IsFloat() {
			n, err := Normalize(strings.TrimSpace(v), keyType)
			if err != nil {
				return nil, &StageError{Stage: StageResolve, Extent: v, Err: err}
			}
			v = KeyString(n)
		}
		clause, err := r.dialect.WhereClause(keyField, v, keyType)
		if err != nil {
			return nil, &StageError{Stage: StageResolve, Extent: v, Err: err}
		}
		extents = append(extents, Extent{Value: v, Clause: clause})
	}

	r.logger.Info("Resolved extents", zap.String("table", extentTable), zap.Int("count", len(extents)))
	return extents, nil
}

// Present returns the set of extent values that have records in table.
func (r *ScopeResolver) Present(ctx context.Context, table, keyField string) (map[string]struct{}, error) {
	values, err := r.store.Distinct(ctx, table, keyField)
	if err != nil {
		return nil, WrapStage(StageResolve, "", fmt.Errorf("failed to list extents of %s: %w", table, err))
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set, nil
}

// Check returns an ExtentNotFoundError when extent has no records in table,
// according to present (see Present).
func (r *ScopeResolver) Check(extent Extent, table string, present map[string]struct{}) error {
	if extent.Clause == "" {
		return nil
	}
	if _, ok := present[extent.Value]; !ok {
		return &ExtentNotFoundError{Stage: StageResolve, Store: table, Extent: extent.Value}
	}
	return nil
}

// Scope reads the rows of table that belong to extent.
func (r *ScopeResolver) Scope(ctx context.Context, table string, fields []string, extent Extent) ([]Row, error) {
	rows, err := r.store.Select(ctx, table, fields, extent.Clause)
	if err != nil {
		return nil, WrapStage(StageResolve, extent.Value, fmt.Errorf("failed to read %s: %w", table, err))
	}
	return rows, nil
}
