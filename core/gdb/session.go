package gdb

import (
	"context"
	"fmt"
	"strings"

	"figure-sync/core/database"
	"figure-sync/core/reconcile"

	"gorm.io/gorm"
)

// EditSession is a transaction over the store. Every write of a sync run
// goes through one session, so the run commits or rolls back as a whole.
type EditSession struct {
	store *Store
	tx    *gorm.DB
	done  bool
}

var _ reconcile.Session = (*EditSession)(nil)

// UpdateField sets field to value on the rows of target.Table whose key
// column equals key, restricted to target.Scope.
func (e *EditSession) UpdateField(ctx context.Context, target reconcile.Target, key any, field string, value any) (int64, error) {
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?",
		e.store.quote(target.Table), e.store.quote(field), e.store.quote(target.KeyField))
	if target.Scope != "" {
		query += " AND (" + target.Scope + ")"
	}

	res := e.tx.WithContext(ctx).Exec(query, value, key)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Append inserts one row with values in columns order.
func (e *EditSession) Append(ctx context.Context, table string, columns []string, values []any) error {
	if len(columns) != len(values) {
		return fmt.Errorf("append to %s: %d columns but %d values", table, len(columns), len(values))
	}

	quoted := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = e.store.quote(c)
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		e.store.quote(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))

	return e.tx.WithContext(ctx).Exec(query, values...).Error
}

// RecreateTable drops table if it exists and creates it empty with the
// columns of template. MySQL commits DDL implicitly, so on that driver the
// new table survives a later rollback.
func (e *EditSession) RecreateTable(ctx context.Context, table, template string) error {
	tx := e.tx.WithContext(ctx)

	if err := tx.Exec("DROP TABLE IF EXISTS " + e.store.quote(table)).Error; err != nil {
		return fmt.Errorf("failed to drop %s: %w", table, err)
	}

	switch e.store.Dialect() {
	case database.DriverSQLite:
		var ddl string
		if err := tx.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", template).Scan(&ddl).Error; err != nil {
			return fmt.Errorf("failed to read definition of %s: %w", template, err)
		}
		open := strings.Index(ddl, "(")
		if open < 0 {
			return fmt.Errorf("table %s does not exist", template)
		}
		if err := tx.Exec("CREATE TABLE " + e.store.quote(table) + " " + ddl[open:]).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}
	default:
		if err := tx.Exec(fmt.Sprintf("CREATE TABLE %s LIKE %s", e.store.quote(table), e.store.quote(template))).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", table, err)
		}
	}

	e.store.Invalidate(table)
	return nil
}

// Savepoint marks a point the session can roll back to.
func (e *EditSession) Savepoint(name string) error {
	return e.tx.SavePoint(name).Error
}

// RollbackTo discards the changes made since the named savepoint.
func (e *EditSession) RollbackTo(name string) error {
	return e.tx.RollbackTo(name).Error
}

// Commit makes the session's changes durable.
func (e *EditSession) Commit() error {
	if e.done {
		return fmt.Errorf("edit session already closed")
	}
	e.done = true
	return e.tx.Commit().Error
}

// Rollback discards the session's changes. It is a no-op once the session
// is closed.
func (e *EditSession) Rollback() error {
	if e.done {
		return nil
	}
	e.done = true
	return e.tx.Rollback().Error
}
