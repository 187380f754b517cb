package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceCache_ReusesFreshIndex(t *testing.T) {
	cache := NewSourceCache(time.Minute)
	key := SourceKey{Table: "master", KeyField: "loc_id", Fields: []string{"status"}}

	var builds int32
	build := func(ctx context.Context) ([]Record, error) {
		atomic.AddInt32(&builds, 1)
		return []Record{{Key: "K1"}}, nil
	}

	first, err := cache.GetOrBuild(context.Background(), key, build)
	require.NoError(t, err)
	second, err := cache.GetOrBuild(context.Background(), key, build)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), builds)

	// A different field list is a different index.
	other := SourceKey{Table: "master", KeyField: "loc_id", Fields: []string{"depth"}}
	_, err = cache.GetOrBuild(context.Background(), other, build)
	require.NoError(t, err)
	assert.Equal(t, int32(2), builds)
}

func TestSourceCache_ZeroTTLAlwaysBuilds(t *testing.T) {
	cache := NewSourceCache(0)
	key := SourceKey{Table: "master"}

	var builds int32
	build := func(ctx context.Context) ([]Record, error) {
		atomic.AddInt32(&builds, 1)
		return nil, nil
	}
	for i := 0; i < 3; i++ {
		_, err := cache.GetOrBuild(context.Background(), key, build)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), builds)
}

func TestSourceCache_ConcurrentCallersShareBuild(t *testing.T) {
	cache := NewSourceCache(time.Minute)
	key := SourceKey{Table: "master", Where: "figure = 'Fig1'"}

	release := make(chan struct{})
	var builds int32
	build := func(ctx context.Context) ([]Record, error) {
		atomic.AddInt32(&builds, 1)
		<-release
		return []Record{{Key: "K1"}}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cache.GetOrBuild(context.Background(), key, build)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, builds, int32(2))
}

func TestSourceCache_ErrorNotCached(t *testing.T) {
	cache := NewSourceCache(time.Minute)
	key := SourceKey{Table: "master"}

	_, err := cache.GetOrBuild(context.Background(), key, func(ctx context.Context) ([]Record, error) {
		return nil, errors.New("read failed")
	})
	assert.Error(t, err)

	idx, err := cache.GetOrBuild(context.Background(), key, func(ctx context.Context) ([]Record, error) {
		return []Record{{Key: "K1"}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, idx.Records, 1)
}

func TestSourceKey_String(t *testing.T) {
	k := SourceKey{Table: "t", KeyField: "k", Fields: []string{"a", "b"}, Where: "x = 1"}
	assert.Equal(t, "t|k|a,b|x = 1", k.String())
}
