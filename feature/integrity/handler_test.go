package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"figure-sync/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client) {
	app := fiber.New()
	client := new(mocks.Client)
	handler := NewHandler(NewService(client, "test-bucket", setupDB(t), "shape", zap.NewNop()))
	handler.RegisterRoutes(app)
	return app, client
}

func getJSON(t *testing.T, app *fiber.App, url string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", url, nil))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleStructureCheck(t *testing.T) {
	app, client := setupTestApp(t)
	client.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	client.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyListing())

	status, body := getJSON(t, app, "/integrity/structure")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.Equal(t, []any{"imports", "reports"}, body["missing"])
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleStructureCheck_Fix(t *testing.T) {
	app, client := setupTestApp(t)
	client.On("BucketExists", mock.Anything, "test-bucket").Return(true, nil)
	client.On("ListObjects", mock.Anything, "test-bucket", mock.Anything).Return(emptyListing())
	client.On("PutObject", mock.Anything, "test-bucket", mock.Anything, mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	status, body := getJSON(t, app, "/integrity/structure?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
	client.AssertNumberOfCalls(t, "PutObject", 2)
}

func TestHandleStructureCheck_BucketMissing(t *testing.T) {
	app, client := setupTestApp(t)
	client.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)

	status, body := getJSON(t, app, "/integrity/structure")
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"], "does not exist")
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := getJSON(t, app, "/integrity/schema?table=report&columns=loc_id,depth:Integer,status")
	assert.Equal(t, 200, status)
	assert.Equal(t, false, body["matched"])

	tbl := body["tables"].(map[string]any)["report"].(map[string]any)
	assert.Equal(t, []any{"status"}, tbl["missing_columns"])
	assert.Equal(t, []any{"depth: expected Integer, got Double"}, tbl["type_mismatches"])

	status, _ = getJSON(t, app, "/integrity/schema?table=bad%20name")
	assert.Equal(t, 400, status)
}
