package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"police-dashboard/logging"
)

// Keys of the values the dashboard caches
const (
	OptionsKey = "police:options"
	ReportKey  = "police:report"
)

// ErrDisabled is returned when no Redis server is reachable
var ErrDisabled = errors.New("redis client not initialized")

// RedisClient wraps redis.Client. A nil *RedisClient is valid and behaves
// as a cache that always misses.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a new Redis client, or returns nil when the server
// does not answer a ping
func NewRedisClient(host, port, password string, ttl time.Duration) *RedisClient {
	addr := fmt.Sprintf("%s:%s", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logging.Warn().Err(err).Str("addr", addr).Msg("⚠️  Failed to connect to Redis")
		client.Close()
		return nil
	}

	logging.Info().Str("addr", addr).Msg("✅ Connected to Redis")
	return NewWithClient(client, ttl)
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *RedisClient {
	return &RedisClient{client: client, ttl: ttl}
}

// Set stores a value as JSON under key with the client's TTL
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}) error {
	if r == nil || r.client == nil {
		return ErrDisabled
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, jsonBytes, r.ttl).Err()
}

// Get decodes the value stored under key into dest. It reports false on a
// miss, a decode failure or a disabled cache.
func (r *RedisClient) Get(ctx context.Context, key string, dest interface{}) bool {
	if r == nil || r.client == nil {
		return false
	}

	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logging.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}

	return json.Unmarshal(val, dest) == nil
}

// Delete removes keys from Redis
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if r == nil || r.client == nil {
		return ErrDisabled
	}
	return r.client.Del(ctx, keys...).Err()
}

// Invalidate drops every value derived from police_stops. Called after a
// stop is inserted.
func (r *RedisClient) Invalidate(ctx context.Context) {
	if r == nil || r.client == nil {
		return
	}
	if err := r.Delete(ctx, OptionsKey, ReportKey); err != nil {
		logging.Warn().Err(err).Msg("Cache invalidation failed")
	}
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	if r != nil && r.client != nil {
		return r.client.Close()
	}
	return nil
}
