package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"tindapos/backend/internal/domain"
)

type RedisTransactionCache struct {
	client *redis.Client
}

func NewRedisTransactionCache(addr string, password string, db int) *RedisTransactionCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisTransactionCache{client: client}
}

func (c *RedisTransactionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisTransactionCache) Close() error {
	return c.client.Close()
}

func cacheKey(storeID string) string {
	return "tx-list:" + storeID
}

func (c *RedisTransactionCache) GetAll(ctx context.Context, storeID string) ([]domain.Transaction, bool, error) {
	val, err := c.client.Get(ctx, cacheKey(storeID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var txs []domain.Transaction
	if err := json.Unmarshal([]byte(val), &txs); err != nil {
		return nil, false, err
	}
	return txs, true, nil
}

func (c *RedisTransactionCache) SetAll(ctx context.Context, storeID string, txs []domain.Transaction, ttl time.Duration) error {
	if txs == nil {
		return nil
	}
	payload, err := json.Marshal(txs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(storeID), payload, ttl).Err()
}
