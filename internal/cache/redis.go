package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listingguide/internal/model"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "listingguide:analysis:"

// AnalysisCache keeps photo analyses in Redis so repeated uploads skip the vision call
type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalysisCache connects to the Redis server at redisURL
func NewAnalysisCache(ctx context.Context, redisURL string, ttl time.Duration) (*AnalysisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &AnalysisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached analysis for key; ok is false on a miss
func (c *AnalysisCache) Get(ctx context.Context, key string) (*model.ImageAnalysis, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached analysis: %w", err)
	}

	var analysis model.ImageAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		// A record we cannot decode is as good as missing
		c.client.Del(ctx, keyPrefix+key)
		return nil, false, nil
	}
	return &analysis, true, nil
}

// Set stores an analysis under key for the configured TTL
func (c *AnalysisCache) Set(ctx context.Context, key string, analysis *model.ImageAnalysis) error {
	raw, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *AnalysisCache) Close() error {
	return c.client.Close()
}
