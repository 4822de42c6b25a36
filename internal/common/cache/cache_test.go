// internal/common/cache/cache_test.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conflictradar-processing/internal/common/logger"
)

type place struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

func newMiniredisCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, "geo", ttl, logger.NewNoOpLogger()), mr
}

func TestGetOrComputeCachesValue(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Hour)
	ctx := context.Background()

	computes := 0
	compute := func(ctx context.Context) (interface{}, error) {
		computes++
		return place{Name: "Kyiv", Confidence: 0.95}, nil
	}

	var first place
	require.NoError(t, c.GetOrCompute(ctx, "Kyiv", &first, compute))
	assert.Equal(t, "Kyiv", first.Name)
	assert.Equal(t, 1, computes)

	var second place
	require.NoError(t, c.GetOrCompute(ctx, "Kyiv", &second, compute))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, computes, "second read must be a cache hit")

	// key is normalized and TTL'd
	assert.True(t, mr.Exists("geo:kyiv"))
	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("geo:kyiv"))
}

func TestGetOrComputeNormalizesKey(t *testing.T) {
	c, _ := newMiniredisCache(t, time.Hour)
	ctx := context.Background()

	computes := 0
	compute := func(ctx context.Context) (interface{}, error) {
		computes++
		return place{Name: "Kyiv"}, nil
	}

	var out place
	require.NoError(t, c.GetOrCompute(ctx, "  KYIV ", &out, compute))
	require.NoError(t, c.GetOrCompute(ctx, "kyiv", &out, compute))

	assert.Equal(t, 1, computes)
}

func TestGetOrComputeComputeErrorNotCached(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Hour)
	ctx := context.Background()

	compute := func(ctx context.Context) (interface{}, error) {
		return nil, fmt.Errorf("gazetteer down")
	}

	var out place
	err := c.GetOrCompute(ctx, "Kyiv", &out, compute)

	assert.Error(t, err)
	assert.False(t, mr.Exists("geo:kyiv"))
}

func TestGetOrComputeRecomputesCorruptEntry(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set("geo:kyiv", "{not json"))

	var out place
	err := c.GetOrCompute(ctx, "Kyiv", &out, func(ctx context.Context) (interface{}, error) {
		return place{Name: "Kyiv", Confidence: 0.9}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "Kyiv", out.Name)

	stored, err := mr.Get("geo:kyiv")
	require.NoError(t, err)
	var persisted place
	require.NoError(t, json.Unmarshal([]byte(stored), &persisted))
	assert.Equal(t, out, persisted)
}

func TestGetOrComputeDegradesWhenRedisUnavailable(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := New(client, "geo", time.Hour, logger.NewNoOpLogger())

	mock.ExpectGet("geo:kyiv").SetErr(fmt.Errorf("connection refused"))
	value, _ := json.Marshal(place{Name: "Kyiv"})
	mock.ExpectSet("geo:kyiv", value, time.Hour).SetErr(fmt.Errorf("connection refused"))

	var out place
	err := c.GetOrCompute(context.Background(), "Kyiv", &out, func(ctx context.Context) (interface{}, error) {
		return place{Name: "Kyiv"}, nil
	})

	require.NoError(t, err, "redis failures must degrade to computing without caching")
	assert.Equal(t, "Kyiv", out.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidate(t *testing.T) {
	c, mr := newMiniredisCache(t, time.Hour)
	ctx := context.Background()

	var out place
	require.NoError(t, c.GetOrCompute(ctx, "Kyiv", &out, func(ctx context.Context) (interface{}, error) {
		return place{Name: "Kyiv"}, nil
	}))
	require.True(t, mr.Exists("geo:kyiv"))

	require.NoError(t, c.Invalidate(ctx, "Kyiv"))
	assert.False(t, mr.Exists("geo:kyiv"))
}
