// Package redis provides a Redis-backed implementation of the storage.Store interface.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*RedisStore)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every document key (e.g. "splitledger:").
	Prefix string
}

// RedisStore implements storage.Store with plain string keys.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, opts Options) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{rdb: rdb, prefix: opts.Prefix}, nil
}

// Load retrieves the document stored under key.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	doc, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return doc, nil
}

// Save stores the document under key with no expiry.
func (s *RedisStore) Save(ctx context.Context, key string, doc []byte) error {
	if err := s.rdb.Set(ctx, s.prefix+key, doc, 0).Err(); err != nil {
		return fmt.Errorf("failed to save document %s: %w", key, err)
	}
	return nil
}

// Remove deletes the document stored under key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove document %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
