package gdb

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"figure-sync/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestEditSession_UpdateFieldIsScoped(t *testing.T) {
	store, _ := setupGDB(t)
	ctx := context.Background()

	err := reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
		n, err := sess.UpdateField(ctx, reconcile.Target{Table: "report", KeyField: "loc_id", Scope: "figure = 'Fig1'"}, "K1", "status", "X")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return nil
	})
	require.NoError(t, err)

	rows, err := store.Select(ctx, "report", []string{"figure", "status"}, "loc_id = 'K1'")
	require.NoError(t, err)
	assert.Equal(t, "X", rows[0]["status"])
	assert.Equal(t, "Y", rows[1]["status"])
}

func TestEditSession_AppendAndRollback(t *testing.T) {
	store, _ := setupGDB(t)
	ctx := context.Background()
	cols := []string{"loc_id", "figure", "status"}

	boom := errors.New("boom")
	err := reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
		require.NoError(t, sess.Append(ctx, "report", cols, []any{"K9", "Fig1", "N"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rows, err := store.Select(ctx, "report", nil, "loc_id = 'K9'")
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
		return sess.Append(ctx, "report", cols, []any{"K9", "Fig1", "N"})
	})
	require.NoError(t, err)

	rows, err = store.Select(ctx, "report", nil, "loc_id = 'K9'")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "N", rows[0]["status"])
}

func TestEditSession_AppendColumnMismatch(t *testing.T) {
	store, _ := setupGDB(t)
	ctx := context.Background()

	err := reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
		return sess.Append(ctx, "report", []string{"loc_id"}, []any{"K1", "extra"})
	})
	assert.ErrorContains(t, err, "1 columns but 2 values")
}

func TestEditSession_Savepoints(t *testing.T) {
	store, _ := setupGDB(t)
	ctx := context.Background()
	target := reconcile.Target{Table: "report", KeyField: "loc_id"}

	err := reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
		if _, err := sess.UpdateField(ctx, target, "K2", "status", "kept"); err != nil {
			return err
		}
		require.NoError(t, sess.Savepoint("extent_1"))
		if _, err := sess.UpdateField(ctx, target, "K2", "status", "discarded"); err != nil {
			return err
		}
		return sess.RollbackTo("extent_1")
	})
	require.NoError(t, err)

	rows, err := store.Select(ctx, "report", []string{"status"}, "loc_id = 'K2'")
	require.NoError(t, err)
	assert.Equal(t, "kept", rows[0]["status"])
}

func TestEditSession_RecreateTable(t *testing.T) {
	store, _ := setupGDB(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
			es := sess.(*EditSession)
			if err := es.RecreateTable(ctx, "report_new_features", "report"); err != nil {
				return err
			}
			return es.Append(ctx, "report_new_features", []string{"loc_id", "shape"}, []any{"K7", "POINT(3 3)"})
		})
		require.NoError(t, err)
	}

	rows, err := store.Select(ctx, "report_new_features", nil, "")
	require.NoError(t, err)
	require.Len(t, rows, 1, "table is emptied on every run")
	assert.Equal(t, int64(1), rows[0]["OBJECTID"])

	fields, err := store.Fields(ctx, "report_new_features")
	require.NoError(t, err)
	assert.Equal(t, reconcile.FieldOID, fields[0].Type)

	err = reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
		return sess.(*EditSession).RecreateTable(ctx, "x", "no_such_table")
	})
	assert.ErrorContains(t, err, "does not exist")
}

func setupMySQL(t *testing.T) (*Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return New(db, "shape", nil), mock
}

func TestEditSession_MySQLStatements(t *testing.T) {
	store, mock := setupMySQL(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `report` SET `status` = ? WHERE `loc_id` = ? AND (fig_no = 12)")).
		WithArgs("X", "K1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `report` (`loc_id`, `status`) VALUES (?, ?)")).
		WithArgs("K2", "B").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
		n, err := sess.UpdateField(ctx, reconcile.Target{Table: "report", KeyField: "loc_id", Scope: "fig_no = 12"}, "K1", "status", "X")
		if err != nil {
			return err
		}
		assert.Equal(t, int64(1), n)
		return sess.Append(ctx, "report", []string{"loc_id", "status"}, []any{"K2", "B"})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditSession_MySQLRecreateTable(t *testing.T) {
	store, mock := setupMySQL(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS `out`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE `out` LIKE `report`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := reconcile.WithEditSession(ctx, store, func(sess reconcile.Session) error {
		if err := sess.(*EditSession).RecreateTable(ctx, "out", "report"); err != nil {
			return err
		}
		return errors.New("stop")
	})
	assert.EqualError(t, err, "stop")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectMySQLColumns(mock sqlmock.Sqlmock, table string, cols ...[2]string) {
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("OBJECTID", "int(11)", "NO", "PRI", nil, "auto_increment")
	for _, c := range cols {
		rows.AddRow(c[0], c[1], "YES", "", nil, "")
	}
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `" + table + "`")).WillReturnRows(rows)
}

func TestStore_MySQLDistinct(t *testing.T) {
	store, mock := setupMySQL(t)

	expectMySQLColumns(mock, "extents", [2]string{"figure", "varchar(50)"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT `figure` FROM `extents` WHERE `figure` IS NOT NULL ORDER BY `figure`")).
		WillReturnRows(sqlmock.NewRows([]string{"figure"}).AddRow([]byte("Fig1")).AddRow([]byte("Fig2")))

	values, err := store.Distinct(context.Background(), "extents", "figure")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fig1", "Fig2"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_MySQLDistinctCanonicalNumbers(t *testing.T) {
	store, mock := setupMySQL(t)

	expectMySQLColumns(mock, "extents", [2]string{"depth", "decimal(10,2)"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT `depth` FROM `extents` WHERE `depth` IS NOT NULL ORDER BY `depth`")).
		WillReturnRows(sqlmock.NewRows([]string{"depth"}).AddRow([]byte("2.00")).AddRow([]byte("2.50")))

	values, err := store.Distinct(context.Background(), "extents", "depth")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "2.5"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScopeResolver_MySQLEscapesBackslashes(t *testing.T) {
	store, mock := setupMySQL(t)
	ctx := context.Background()
	resolver := reconcile.NewScopeResolver(store, nil)

	extents, err := resolver.Resolve(ctx, "extents", "figure", reconcile.FieldString,
		reconcile.Selection{Values: []string{`x\' OR 1=1 -- `}})
	require.NoError(t, err)
	require.Len(t, extents, 1)
	assert.Equal(t, `figure = 'x\\'' OR 1=1 -- '`, extents[0].Clause)

	expectMySQLColumns(mock, "report", [2]string{"loc_id", "varchar(50)"}, [2]string{"figure", "varchar(50)"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `loc_id` FROM `report` WHERE figure = 'x\\\\'' OR 1=1 -- ' ORDER BY `OBJECTID`")).
		WillReturnRows(sqlmock.NewRows([]string{"loc_id"}))

	rows, err := resolver.Scope(ctx, "report", []string{"loc_id"}, extents[0])
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
