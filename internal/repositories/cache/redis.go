// Package cache holds the Redis-backed stores: wallet read cache,
// transfer idempotency keys and the login captcha store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/taqume/toycell-be/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

const walletCacheTTL = 5 * time.Minute

// WalletCache is a read-through cache for wallet lookups. Mutations
// invalidate; correctness never depends on it.
type WalletCache struct {
	client *redis.Client
}

func NewWalletCache(client *redis.Client) *WalletCache {
	return &WalletCache{client: client}
}

func walletKey(walletID uint) string {
	return fmt.Sprintf("wallet:%d", walletID)
}

func (c *WalletCache) Get(ctx context.Context, walletID uint) (*models.Wallet, error) {
	val, err := c.client.Get(ctx, walletKey(walletID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var wallet models.Wallet
	if err := json.Unmarshal([]byte(val), &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (c *WalletCache) Set(ctx context.Context, wallet *models.Wallet) error {
	data, err := json.Marshal(wallet)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, walletKey(wallet.ID), data, walletCacheTTL).Err()
}

func (c *WalletCache) Invalidate(ctx context.Context, walletID uint) error {
	return c.client.Del(ctx, walletKey(walletID)).Err()
}
