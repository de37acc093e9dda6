package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cryptoboard/internal/domain"

	"github.com/redis/go-redis/v9"
)

var (
	newRedisClient = func(opts *redis.Options) *redis.Client {
		return redis.NewClient(opts)
	}
	pingRedis = func(ctx context.Context, client *redis.Client) error {
		return client.Ping(ctx).Err()
	}
	parseRedisURL = redis.ParseURL
)

// InitRedis connects to the Redis instance at addr, which may be a bare
// host:port or a redis:// URL. An empty addr disables Redis and returns nil.
func InitRedis(ctx context.Context, addr string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil
	}

	opts := &redis.Options{Addr: addr}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := parseRedisURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}

	client := newRedisClient(opts)
	if err := pingRedis(ctx, client); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// RedisClient is the subset of go-redis used by the mirror.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

const mirrorPrefix = "cryptoboard:"

// RedisMirror is a shared warm tier behind MarketCache. Entries expire after
// ttl; the in-memory cache remains the source of truth for a process.
type RedisMirror struct {
	client RedisClient
	ttl    time.Duration
}

func NewRedisMirror(client RedisClient, ttl time.Duration) *RedisMirror {
	return &RedisMirror{client: client, ttl: ttl}
}

func rankedKey() string {
	return mirrorPrefix + "ranked"
}

func seriesRedisKey(assetID, selector string) string {
	return mirrorPrefix + "series:" + assetID + ":" + selector
}

func indexKey() string {
	return mirrorPrefix + "keys"
}

// LoadRankedList returns nil without error on a miss.
func (m *RedisMirror) LoadRankedList(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	found, err := m.load(ctx, rankedKey(), &assets)
	if err != nil || !found {
		return nil, err
	}
	return assets, nil
}

func (m *RedisMirror) StoreRankedList(ctx context.Context, assets []domain.Asset) error {
	return m.store(ctx, rankedKey(), assets)
}

// LoadSeries returns nil without error on a miss.
func (m *RedisMirror) LoadSeries(ctx context.Context, assetID, selector string) (domain.Series, error) {
	var series domain.Series
	found, err := m.load(ctx, seriesRedisKey(assetID, selector), &series)
	if err != nil || !found {
		return nil, err
	}
	return series, nil
}

func (m *RedisMirror) StoreSeries(ctx context.Context, assetID, selector string, s domain.Series) error {
	return m.store(ctx, seriesRedisKey(assetID, selector), s)
}

// Clear removes every key the mirror has written.
func (m *RedisMirror) Clear(ctx context.Context) error {
	keys, err := m.client.SMembers(ctx, indexKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("list mirror keys: %w", err)
	}
	keys = append(keys, rankedKey(), indexKey())
	return m.client.Del(ctx, keys...).Err()
}

func (m *RedisMirror) load(ctx context.Context, key string, dst any) (bool, error) {
	data, err := m.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (m *RedisMirror) store(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := m.client.Set(ctx, key, data, m.ttl).Err(); err != nil {
		return err
	}
	return m.client.SAdd(ctx, indexKey(), key).Err()
}
