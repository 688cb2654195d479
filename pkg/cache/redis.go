package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blop-post/pkg/config"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// Cache stores JSON values in redis. A Cache without a client misses on
// every read and ignores writes.
//
// Reads fill the cache with SET NX and writers overwrite the key with an
// invalidation marker, so a fill that raced a write can never land after it.
// The marker reads as a miss until it expires.
type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// invalidated is never valid JSON, so it cannot collide with a cached value.
const invalidated = "!"

func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Key(id string) string {
	return c.prefix + ":" + id
}

// Get decodes the cached value into dest and reports whether it was found.
// An invalidated key is a miss.
func (c *Cache) Get(ctx context.Context, id string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	data, err := c.client.Get(ctx, c.Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if string(data) == invalidated {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Fill stores value only when the key is absent and reports whether it was
// stored. It is meant for read paths that loaded value from the database.
func (c *Cache) Fill(ctx context.Context, id string, value interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	return c.client.SetNX(ctx, c.Key(id), data, c.ttl).Result()
}

// Invalidate marks the keys stale for one TTL. Call it after the database
// write has been committed.
func (c *Cache) Invalidate(ctx context.Context, ids ...string) error {
	if !c.Enabled() || len(ids) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, id := range ids {
		pipe.Set(ctx, c.Key(id), invalidated, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Flush drops every key under the cache prefix.
func (c *Cache) Flush(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
