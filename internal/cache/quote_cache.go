package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dealership-service/configs"
	"dealership-service/internal/finance"
)

const quoteKeyPrefix = "finance:quote:v1:"

// NewRedisClient creates a redis client from configuration
func NewRedisClient(cfg configs.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// QuoteCache stores computed financing quotes keyed by the loan request
type QuoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQuoteCache creates a QuoteCache whose entries expire after ttl
func NewQuoteCache(client *redis.Client, ttl time.Duration) *QuoteCache {
	return &QuoteCache{client: client, ttl: ttl}
}

// Get returns the cached quote for req. A miss is reported as ok=false with a nil error.
func (c *QuoteCache) Get(ctx context.Context, req finance.LoanRequest) (*finance.FinancingQuote, bool, error) {
	key, err := QuoteKey(req)
	if err != nil {
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached quote: %w", err)
	}

	var quote finance.FinancingQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached quote: %w", err)
	}

	return &quote, true, nil
}

// Set stores quote under the key of req
func (c *QuoteCache) Set(ctx context.Context, req finance.LoanRequest, quote *finance.FinancingQuote) error {
	key, err := QuoteKey(req)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache quote: %w", err)
	}

	return nil
}

// Ping checks the redis connection
func (c *QuoteCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// QuoteKey fingerprints a loan request. Equal requests always map to the same key.
func QuoteKey(req finance.LoanRequest) (string, error) {
	if req.InsuranceType == "" {
		req.InsuranceType = finance.InsuranceComprehensive
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode quote key: %w", err)
	}

	sum := sha256.Sum256(raw)
	return quoteKeyPrefix + hex.EncodeToString(sum[:]), nil
}
