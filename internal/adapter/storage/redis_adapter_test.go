package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestReserveOrderID(t *testing.T) {
	rdb := getRedis(t)
	gate := NewRedisAdapter(rdb)
	ctx := context.Background()

	rdb.Del(ctx, orderKeyPrefix+"test-order-1")

	ok, err := gate.ReserveOrderID(ctx, "test-order-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.ReserveOrderID(ctx, "test-order-1")
	require.NoError(t, err)
	assert.False(t, ok, "second reservation must be refused")

	require.NoError(t, gate.ReleaseOrderID(ctx, "test-order-1"))

	ok, err = gate.ReserveOrderID(ctx, "test-order-1")
	require.NoError(t, err)
	assert.True(t, ok, "released id is reservable again")

	rdb.Del(ctx, orderKeyPrefix+"test-order-1")
}

func TestGateDecrementStock(t *testing.T) {
	rdb := getRedis(t)
	gate := NewRedisAdapter(rdb)
	ctx := context.Background()

	require.NoError(t, gate.SetStock(ctx, "test-item", 5))
	defer rdb.Del(ctx, stockKeyPrefix+"test-item")

	ok, err := gate.DecrementStock(ctx, "test-item", 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.DecrementStock(ctx, "test-item", 3)
	require.NoError(t, err)
	assert.False(t, ok, "2 left, 3 requested")

	require.NoError(t, gate.IncrementStock(ctx, "test-item", 1))

	ok, err = gate.DecrementStock(ctx, "test-item", 3)
	require.NoError(t, err)
	assert.True(t, ok, "back to 3 after compensation")

	val, err := rdb.Get(ctx, stockKeyPrefix+"test-item").Int()
	require.NoError(t, err)
	assert.Equal(t, 0, val)
}

func TestGateDecrementStock_MissingKey(t *testing.T) {
	rdb := getRedis(t)
	gate := NewRedisAdapter(rdb)
	ctx := context.Background()

	rdb.Del(ctx, stockKeyPrefix+"test-unknown")

	ok, err := gate.DecrementStock(ctx, "test-unknown", 1)
	require.NoError(t, err)
	assert.False(t, ok, "unknown product is treated as sold out")
}
