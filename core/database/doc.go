// Package database opens geodatabase connections and inspects table schemas.
//
// Connect wraps GORM and supports two drivers: mysql for enterprise
// geodatabases and sqlite for file geodatabases. A sqlite connection pool is
// pinned to a single connection so that ":memory:" databases survive
// between statements.
//
// GetTableColumns returns column definitions in declaration order, using
// SHOW COLUMNS on MySQL and PRAGMA table_info on sqlite. The geodatabase
// layer (core/gdb) maps the raw SQL types onto field types.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	columns, err := database.GetTableColumns(db, "sample_locations")
package database
