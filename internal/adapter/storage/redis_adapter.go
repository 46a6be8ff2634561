package storage

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-sales/internal/core/domain"
)

const (
	stockKeyPrefix = "stock:"
	lowStockSetKey = "inventory:low_stock"
)

// setStockScript writes the level only if it is not older than the one stored,
// so a delayed mirror of an earlier update cannot overwrite a later one.
var setStockScript = redis.NewScript(`
local stockKey = KEYS[1]
local lowStockKey = KEYS[2]
local quantity = ARGV[1]
local productID = ARGV[2]
local lowStock = ARGV[3]
local ts = tonumber(ARGV[4])

local stored = redis.call('HGET', stockKey, 'ts')
if stored and tonumber(stored) > ts then
	return 0
end

redis.call('HSET', stockKey, 'qty', quantity, 'ts', ts)
if lowStock == '1' then
	redis.call('SADD', lowStockKey, productID)
else
	redis.call('SREM', lowStockKey, productID)
end

return 1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func StockKey(productID int64) string {
	return stockKeyPrefix + strconv.FormatInt(productID, 10)
}

// SetStock writes the stock level and low-stock membership in one atomic step.
// A status older than the stored one is ignored.
func (r *RedisAdapter) SetStock(ctx context.Context, status domain.InventoryStatus) error {
	lowStock := "0"
	if status.LowStockAlert {
		lowStock = "1"
	}

	return setStockScript.Run(ctx, r.client,
		[]string{StockKey(status.ProductID), lowStockSetKey},
		status.CurrentQuantity, status.ProductID, lowStock, status.LastUpdated.UnixMicro(),
	).Err()
}

func (r *RedisAdapter) Stock(ctx context.Context, productID int64) (int, bool, error) {
	qty, err := r.client.HGet(ctx, StockKey(productID), "qty").Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return qty, true, nil
}

func (r *RedisAdapter) LowStockProducts(ctx context.Context) ([]int64, error) {
	members, err := r.client.SMembers(ctx, lowStockSetKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
