package gdb

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"figure-sync/core/database"
	"figure-sync/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Store is a geodatabase reached through GORM. Tables are attribute
// tables; a table with a WKT geometry column is a feature class.
type Store struct {
	db         *gorm.DB
	geomColumn string
	logger     *zap.Logger

	mu      sync.RWMutex
	schemas map[string][]reconcile.FieldSpec
	sf      singleflight.Group
}

// New creates a store over db. geomColumn names the shape column.
func New(db *gorm.DB, geomColumn string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:         db,
		geomColumn: geomColumn,
		logger:     logger,
		schemas:    make(map[string][]reconcile.FieldSpec),
	}
}

// Dialect returns the name of the underlying database driver.
func (s *Store) Dialect() string {
	return s.db.Dialector.Name()
}

// Fields returns the schema of table in column order. Schemas are cached
// until Invalidate is called for the table.
func (s *Store) Fields(ctx context.Context, table string) ([]reconcile.FieldSpec, error) {
	s.mu.RLock()
	fields, ok := s.schemas[table]
	s.mu.RUnlock()
	if ok {
		return fields, nil
	}

	v, err, _ := s.sf.Do(table, func() (interface{}, error) {
		cols, err := database.GetTableColumns(s.db.WithContext(ctx), table)
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			return nil, fmt.Errorf("table %s does not exist", table)
		}

		specs := make([]reconcile.FieldSpec, len(cols))
		for i, col := range cols {
			specs[i] = reconcile.FieldSpec{Name: col.Field, Type: FieldTypeFromColumn(col, s.geomColumn)}
		}

		s.mu.Lock()
		s.schemas[table] = specs
		s.mu.Unlock()
		return specs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]reconcile.FieldSpec), nil
}

// Invalidate drops the cached schema of table.
func (s *Store) Invalidate(table string) {
	s.mu.Lock()
	delete(s.schemas, table)
	s.mu.Unlock()
}

// Select returns the rows of table matching where, restricted to fields,
// ordered by the object id column when the table has one. Values are
// normalized to their field types.
func (s *Store) Select(ctx context.Context, table string, fields []string, where string) ([]reconcile.Row, error) {
	schema, err := s.Fields(ctx, table)
	if err != nil {
		return nil, err
	}

	cols := fields
	if len(cols) == 0 {
		cols = make([]string, len(schema))
		for i, f := range schema {
			cols[i] = f.Name
		}
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = s.quote(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(quoted, ", "), s.quote(table))
	if where != "" {
		fmt.Fprintf(&b, " WHERE %s", where)
	}
	for _, f := range schema {
		if f.Type == reconcile.FieldOID {
			fmt.Fprintf(&b, " ORDER BY %s", s.quote(f.Name))
			break
		}
	}

	rows, err := s.db.WithContext(ctx).Raw(b.String()).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []reconcile.Row
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}

		raw := make(reconcile.Row, len(names))
		for i, name := range names {
			raw[name] = values[i]
		}
		row, err := reconcile.NormalizeRow(raw, schema)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", table, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// Distinct returns the distinct non-null values of field in table, in
// ascending database order, as canonical key strings of the field's type.
func (s *Store) Distinct(ctx context.Context, table, field string) ([]string, error) {
	typ := reconcile.FieldString
	if schema, err := s.Fields(ctx, table); err == nil {
		for _, f := range schema {
			if strings.EqualFold(f.Name, field) {
				typ = f.Type
				break
			}
		}
	}

	query := fmt.Sprintf("SELECT DISTINCT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL ORDER BY %[1]s",
		s.quote(field), s.quote(table))

	rows, err := s.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s of %s: %w", field, table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		n, err := reconcile.Normalize(v, typ)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", table, field, err)
		}
		out = append(out, reconcile.KeyString(n))
	}
	return out, rows.Err()
}

// Begin opens an edit session.
func (s *Store) Begin(ctx context.Context) (reconcile.Session, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &EditSession{store: s, tx: tx}, nil
}

func (s *Store) quote(name string) string {
	var b strings.Builder
	s.db.Dialector.QuoteTo(&b, name)
	return b.String()
}
