package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// memTable is an in-memory table used by the tests in this package.
type memTable struct {
	schema []FieldSpec
	rows   []Row
}

func (t *memTable) clone() *memTable {
	c := &memTable{schema: t.schema, rows: make([]Row, len(t.rows))}
	for i, r := range t.rows {
		cp := make(Row, len(r))
		for k, v := range r {
			cp[k] = v
		}
		c.rows[i] = cp
	}
	return c
}

// memStore implements Selector and SessionOpener over memTables.
type memStore struct {
	tables map[string]*memTable

	// failUpdate makes UpdateField fail for this key.
	failUpdate string
	begun      int
	commits    int
	rollbacks  int
}

func newMemStore() *memStore {
	return &memStore{tables: make(map[string]*memTable)}
}

func (s *memStore) add(name string, schema []FieldSpec, rows ...Row) {
	s.tables[name] = &memTable{schema: schema, rows: rows}
}

func (s *memStore) Fields(ctx context.Context, table string) ([]FieldSpec, error) {
	t, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	return t.schema, nil
}

func (s *memStore) Select(ctx context.Context, table string, fields []string, where string) ([]Row, error) {
	t, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	var out []Row
	for _, r := range t.rows {
		if !matches(r, where) {
			continue
		}
		cp := make(Row)
		for k, v := range r {
			if len(fields) == 0 || contains(fields, k) {
				cp[k] = v
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *memStore) Distinct(ctx context.Context, table, field string) ([]string, error) {
	t, ok := s.tables[table]
	if !ok {
		return nil, fmt.Errorf("no such table: %s", table)
	}
	set := make(map[string]struct{})
	var out []string
	for _, r := range t.rows {
		v := r[field]
		if v == nil {
			continue
		}
		if _, ok := set[KeyString(v)]; !ok {
			set[KeyString(v)] = struct{}{}
			out = append(out, KeyString(v))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *memStore) Begin(ctx context.Context) (Session, error) {
	s.begun++
	work := make(map[string]*memTable, len(s.tables))
	for k, t := range s.tables {
		work[k] = t.clone()
	}
	return &memSession{store: s, work: work, savepoints: map[string]map[string]*memTable{}}, nil
}

type memSession struct {
	store      *memStore
	work       map[string]*memTable
	savepoints map[string]map[string]*memTable
	done       bool
}

func (m *memSession) UpdateField(ctx context.Context, target Target, key any, field string, value any) (int64, error) {
	if m.store.failUpdate != "" && KeyString(key) == m.store.failUpdate {
		return 0, fmt.Errorf("update failed for %v", key)
	}
	t := m.work[target.Table]
	var n int64
	for _, r := range t.rows {
		if !matches(r, target.Scope) || KeyString(r[target.KeyField]) != KeyString(key) {
			continue
		}
		r[field] = value
		n++
	}
	return n, nil
}

func (m *memSession) Append(ctx context.Context, table string, columns []string, values []any) error {
	t, ok := m.work[table]
	if !ok {
		return fmt.Errorf("no such table: %s", table)
	}
	row := make(Row, len(columns))
	for i, c := range columns {
		row[c] = values[i]
	}
	t.rows = append(t.rows, row)
	return nil
}

func (m *memSession) Savepoint(name string) error {
	snap := make(map[string]*memTable, len(m.work))
	for k, t := range m.work {
		snap[k] = t.clone()
	}
	m.savepoints[name] = snap
	return nil
}

func (m *memSession) RollbackTo(name string) error {
	snap, ok := m.savepoints[name]
	if !ok {
		return fmt.Errorf("no savepoint %s", name)
	}
	m.work = snap
	return nil
}

func (m *memSession) Commit() error {
	m.store.tables = m.work
	m.store.commits++
	m.done = true
	return nil
}

func (m *memSession) Rollback() error {
	if m.done {
		return nil
	}
	m.store.rollbacks++
	m.done = true
	return nil
}

// matches evaluates the "field = value" fragments produced by WhereClause.
func matches(r Row, where string) bool {
	if where == "" {
		return true
	}
	parts := strings.SplitN(where, " = ", 2)
	want := strings.Trim(parts[1], "'")
	want = strings.ReplaceAll(want, "''", "'")
	return KeyString(r[parts[0]]) == want
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func keysOf(records []Record) []string {
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.Key
	}
	sort.Strings(keys)
	return keys
}
