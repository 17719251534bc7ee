package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"storefront-service/internal/models"
	"storefront-service/internal/uuidcodec"
)

// ErrCacheMiss is returned when no cached aggregate exists for a product.
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client for the catalog cache
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func productKey(id uuidcodec.ID) string {
	return fmt.Sprintf("product:%s", id)
}

// GetProduct retrieves a cached product aggregate. The cached value never
// carries a resolved discount price; callers re-resolve it per read.
func (c *Client) GetProduct(ctx context.Context, id uuidcodec.ID) (*models.Product, error) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("cache entry corrupt: %w", err)
	}
	return &product, nil
}

// SetProduct caches a product aggregate with the configured TTL.
// DiscountPrice is stripped so a stale discount can never be served.
func (c *Client) SetProduct(ctx context.Context, product *models.Product) error {
	clean := *product
	clean.DiscountPrice = nil

	data, err := json.Marshal(&clean)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.rdb.Set(ctx, productKey(product.ID), data, c.ttl).Err()
}

// InvalidateProduct drops the cached aggregate for a product
func (c *Client) InvalidateProduct(ctx context.Context, id uuidcodec.ID) error {
	return c.rdb.Del(ctx, productKey(id)).Err()
}
