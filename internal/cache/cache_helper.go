package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheHelper provides JSON get/set/delete over one key prefix. A nil
// client disables caching entirely, so repositories never branch on
// whether Redis is configured.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{client: client, prefix: prefix}
}

// CacheConfig defines TTL and key prefix per data type.
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Tasks change rarely; reads dominate.
	TaskCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "task:",
	}

	// Sessions are validated on every authorized request.
	SessionCacheConfig = CacheConfig{
		TTL:    2 * time.Minute,
		Prefix: "session:",
	}
)

// ErrCacheMiss reports an absent key.
var ErrCacheMiss = errors.New("cache miss")

// Get unmarshals the cached value into dest.
func (h *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if h == nil || h.client == nil {
		return ErrCacheMiss
	}
	data, err := h.client.Get(ctx, h.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

// Set stores value as JSON under the helper's prefix.
func (h *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if h == nil || h.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := h.client.Set(ctx, h.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes one key; absence is not an error.
func (h *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if h == nil || h.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = h.prefix + k
	}
	if err := h.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// CacheManager bundles the helpers the repositories share.
type CacheManager struct {
	Task    *CacheHelper
	Session *CacheHelper

	client *redis.Client
}

func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		Task:    NewCacheHelper(client, TaskCacheConfig.Prefix),
		Session: NewCacheHelper(client, SessionCacheConfig.Prefix),
		client:  client,
	}
}

// HealthCheck pings Redis when configured.
func (m *CacheManager) HealthCheck(ctx context.Context) error {
	if m == nil || m.client == nil {
		return nil
	}
	return m.client.Ping(ctx).Err()
}
