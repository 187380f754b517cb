package checks

import (
	"context"
	"errors"
	"testing"

	"figure-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func listing(objs ...minio.ObjectInfo) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(objs))
	for _, o := range objs {
		ch <- o
	}
	close(ch)
	return ch
}

func TestCheckStructure(t *testing.T) {
	t.Run("Bucket Missing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "figures").Return(false, nil)

		_, err := CheckStructure(context.Background(), client, "figures", RequiredFolders)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("All Missing", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "figures").Return(true, nil)
		client.On("ListObjects", mock.Anything, "figures", mock.Anything).Return(listing())

		missing, err := CheckStructure(context.Background(), client, "figures", RequiredFolders)
		require.NoError(t, err)
		assert.Equal(t, []string{"imports", "reports"}, missing)
	})

	t.Run("Reports Present", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "figures").Return(true, nil)
		client.On("ListObjects", mock.Anything, "figures", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "reports/"
		})).Return(listing(minio.ObjectInfo{Key: "reports/samples/new_records_20240101T000000Z.csv"}))
		client.On("ListObjects", mock.Anything, "figures", mock.MatchedBy(func(opts minio.ListObjectsOptions) bool {
			return opts.Prefix == "imports/"
		})).Return(listing())

		missing, err := CheckStructure(context.Background(), client, "figures", RequiredFolders)
		require.NoError(t, err)
		assert.Equal(t, []string{"imports"}, missing)
	})

	t.Run("Listing Error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "figures").Return(true, nil)
		client.On("ListObjects", mock.Anything, "figures", mock.Anything).
			Return(listing(minio.ObjectInfo{Err: errors.New("access denied")}))

		_, err := CheckStructure(context.Background(), client, "figures", RequiredFolders)
		assert.ErrorContains(t, err, "access denied")
	})
}

func TestFixStructure(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "figures", "imports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

	err := FixStructure(context.Background(), client, "figures", zap.NewNop(), []string{"imports"})
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "PutObject", 1)

	failing := new(mocks.Client)
	failing.On("PutObject", mock.Anything, "figures", "reports/", mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, errors.New("read only"))
	assert.Error(t, FixStructure(context.Background(), failing, "figures", zap.NewNop(), []string{"reports"}))
}
