package records

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"figure-sync/core/database"
	"figure-sync/core/gdb"
	"figure-sync/core/reconcile"
	"figure-sync/core/storage"
	"figure-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const samplesCSV = `loc id,count,depth,sampled,notes
K1,3,1.5,2023-05-01 10:00:00,ignored
K2,4,2.25,,new row
K3,,0.5,2023-06-01,another
`

func setupStore(t *testing.T) (*gdb.Store, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE samples (OBJECTID INTEGER PRIMARY KEY, loc_id TEXT, depth REAL, count INTEGER, sampled DATETIME)`,
		`INSERT INTO samples (loc_id, depth, count, sampled) VALUES ('K1', 1.5, 3, '2023-05-01 10:00:00')`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return gdb.New(db, "shape", nil), db
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func newService(store Store) *Service {
	return NewService(store, nil, storage.Config{}, reconcile.Config{ReportPrefix: "reports"}, zap.NewNop())
}

func countRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM samples").Scan(&n).Error)
	return n
}

func TestService_Plan(t *testing.T) {
	store, _ := setupStore(t)
	svc := newService(store)

	plan, err := svc.Plan(context.Background(), Request{Input: writeFile(t, samplesCSV), Table: "samples"})
	require.NoError(t, err)

	assert.Equal(t, Job, plan.Job)
	assert.Equal(t, []string{"loc_id", "depth", "count", "sampled"}, plan.Target.Columns)
	require.Len(t, plan.Extents, 1)

	adds := plan.Extents[0].Delta.Additions
	require.Len(t, adds, 2)
	assert.Equal(t, "K2", adds[0].Row["loc_id"])
	assert.Equal(t, int64(4), adds[0].Row["count"])
	assert.Equal(t, 2.25, adds[0].Row["depth"])
	assert.Nil(t, adds[0].Row["sampled"])
	assert.Equal(t, "K3", adds[1].Row["loc_id"])
	assert.Nil(t, adds[1].Row["count"])
	assert.NotContains(t, adds[1].Row, "notes")
}

func TestService_Run(t *testing.T) {
	store, db := setupStore(t)
	svc := newService(store)
	ctx := context.Background()
	req := Request{Input: writeFile(t, samplesCSV), Table: "samples"}

	res, err := svc.Run(ctx, req, reconcile.Options{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Report.Result.Appended)
	assert.Empty(t, res.ReportObject)
	assert.Equal(t, int64(3), countRows(t, db))

	var depth float64
	require.NoError(t, db.Raw("SELECT depth FROM samples WHERE loc_id = 'K2'").Scan(&depth).Error)
	assert.Equal(t, 2.25, depth)

	// A second run finds nothing new.
	res, err = svc.Run(ctx, req, reconcile.Options{Confirmed: true})
	require.NoError(t, err)
	assert.True(t, res.Plan.IsEmpty())
	assert.Equal(t, int64(3), countRows(t, db))
}

func TestService_DryRun(t *testing.T) {
	store, db := setupStore(t)
	svc := newService(store)

	res, err := svc.Run(context.Background(), Request{Input: writeFile(t, samplesCSV), Table: "samples"},
		reconcile.Options{Confirmed: true, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Plan.Summary.Additions)
	assert.Equal(t, 0, res.Report.Result.Appended)
	assert.Equal(t, int64(1), countRows(t, db))
}

func TestService_KeyFields(t *testing.T) {
	store, _ := setupStore(t)
	svc := newService(store)

	// K1 differs in depth but is keyed on loc_id only.
	csv := "loc_id,depth,count,sampled\nK1,9.5,3,\nK4,1,1,\n"
	plan, err := svc.Plan(context.Background(), Request{Input: writeFile(t, csv), Table: "samples", KeyFields: []string{"loc_id"}})
	require.NoError(t, err)

	adds := plan.Extents[0].Delta.Additions
	require.Len(t, adds, 1)
	assert.Equal(t, "K4", adds[0].Row["loc_id"])
	assert.Empty(t, plan.Extents[0].Delta.Updates)

	_, err = svc.Plan(context.Background(), Request{Input: writeFile(t, csv), Table: "samples", KeyFields: []string{"colour"}})
	assert.ErrorIs(t, err, reconcile.ErrMissingField)
}

func TestService_MissingColumns(t *testing.T) {
	store, db := setupStore(t)
	svc := newService(store)

	_, err := svc.Run(context.Background(), Request{Input: writeFile(t, "loc_id,count\nK9,1\n"), Table: "samples"},
		reconcile.Options{Confirmed: true})
	require.Error(t, err)

	var mf *reconcile.MissingFieldError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, "depth, sampled", mf.Field)
	assert.Equal(t, "samples.csv", mf.Store)
	assert.Equal(t, reconcile.StageValidate, reconcile.StageOf(err))
	assert.Equal(t, int64(1), countRows(t, db))
}

func TestService_TypeMismatch(t *testing.T) {
	store, db := setupStore(t)
	svc := newService(store)

	csv := "loc_id,depth,count,sampled\nK5,deep,1,\nK6,1,many,not a date\nK7,2,2,\n"
	_, err := svc.Run(context.Background(), Request{Input: writeFile(t, csv), Table: "samples"},
		reconcile.Options{Confirmed: true})
	require.Error(t, err)

	assert.ErrorIs(t, err, reconcile.ErrSchemaMismatch)
	assert.Equal(t, reconcile.StageValidate, reconcile.StageOf(err))
	for _, field := range []string{"depth", "count", "sampled"} {
		assert.Contains(t, err.Error(), "field "+field+" ")
	}
	assert.NotContains(t, err.Error(), "field loc_id")
	assert.Equal(t, int64(1), countRows(t, db))
}

func TestService_DuplicateRowsInFile(t *testing.T) {
	store, _ := setupStore(t)
	svc := newService(store)

	csv := "loc_id,depth,count,sampled\nK5,1,1,\nK5,1,1,\n"
	_, err := svc.Plan(context.Background(), Request{Input: writeFile(t, csv), Table: "samples"})

	var dk *reconcile.DuplicateKeyError
	require.True(t, errors.As(err, &dk))
	assert.Equal(t, "samples.csv", dk.Store)
}

func TestService_InvalidInput(t *testing.T) {
	store, _ := setupStore(t)
	svc := newService(store)
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
	}{
		{"no input", Request{Table: "samples"}},
		{"bad table", Request{Input: "x.csv", Table: "samples;"}},
		{"unknown table", Request{Input: "x.csv", Table: "nope"}},
		{"missing file", Request{Input: filepath.Join(t.TempDir(), "none.csv"), Table: "samples"}},
		{"empty file", Request{Input: writeFile(t, ""), Table: "samples"}},
		{"ragged row", Request{Input: writeFile(t, "loc_id,depth,count,sampled\nK5,1\n"), Table: "samples"}},
		{"storage disabled", Request{Input: "storage://imports/samples.csv", Table: "samples"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Plan(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, reconcile.StageValidate, reconcile.StageOf(err))
		})
	}
}

func TestService_StorageInputAndReport(t *testing.T) {
	store, db := setupStore(t)
	client := new(mocks.Client)
	cfg := storage.Config{Enabled: true, Bucket: "figure-sync"}
	svc := NewService(store, client, cfg, reconcile.Config{ReportPrefix: "reports"}, zap.NewNop())
	ctx := context.Background()

	client.On("GetObject", mock.Anything, "figure-sync", "imports/samples.csv", mock.Anything).
		Return(io.NopCloser(strings.NewReader(samplesCSV)), nil)

	var uploaded string
	client.On("PutObject", mock.Anything, "figure-sync",
		mock.MatchedBy(func(object string) bool {
			return strings.HasPrefix(object, "reports/samples/new_records_") && strings.HasSuffix(object, ".csv")
		}),
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			data, _ := io.ReadAll(args.Get(3).(io.Reader))
			uploaded = string(data)
		}).
		Return(minio.UploadInfo{}, nil)

	res, err := svc.Run(ctx, Request{Input: "storage://imports/samples.csv", Table: "samples"}, reconcile.Options{Confirmed: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Report.Result.Appended)
	assert.True(t, strings.HasPrefix(res.ReportObject, "reports/samples/new_records_"))
	assert.Equal(t, int64(3), countRows(t, db))

	lines := strings.Split(strings.TrimSpace(uploaded), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "loc_id,depth,count,sampled", lines[0])
	assert.Equal(t, "K2,2.25,4,", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "K3,0.5,,2023-06-01"))

	client.AssertExpectations(t)
}

func TestService_StorageReadError(t *testing.T) {
	store, _ := setupStore(t)
	client := new(mocks.Client)
	svc := NewService(store, client, storage.Config{Enabled: true, Bucket: "figure-sync"}, reconcile.Config{}, zap.NewNop())

	client.On("GetObject", mock.Anything, "figure-sync", "imports/missing.csv", mock.Anything).
		Return(nil, errors.New("NoSuchKey"))

	_, err := svc.Plan(context.Background(), Request{Input: "storage://imports/missing.csv", Table: "samples"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NoSuchKey")
}
