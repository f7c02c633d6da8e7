package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix = "stock:"
	orderKeyPrefix = "order:"
	orderKeyTTL    = 24 * time.Hour
)

var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// RedisAdapter implements the admission gate: claimed order ids and an
// optional per-product stock counter kept in sync with the store.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) ReserveOrderID(ctx context.Context, orderID string) (bool, error) {
	return r.client.SetNX(ctx, orderKeyPrefix+orderID, 1, orderKeyTTL).Result()
}

func (r *RedisAdapter) ReleaseOrderID(ctx context.Context, orderID string) error {
	return r.client.Del(ctx, orderKeyPrefix+orderID).Err()
}

func (r *RedisAdapter) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	result, err := decrementStockScript.Run(ctx, r.client, []string{stockKeyPrefix + productID}, quantity).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (r *RedisAdapter) IncrementStock(ctx context.Context, productID string, quantity int) error {
	return r.client.IncrBy(ctx, stockKeyPrefix+productID, int64(quantity)).Err()
}

func (r *RedisAdapter) SetStock(ctx context.Context, productID string, stock int) error {
	return r.client.Set(ctx, stockKeyPrefix+productID, stock, 0).Err()
}
