// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
)

// RedisBackend stores entries in Redis with SETEX.
type RedisBackend struct {
	pool *redis.Pool
}

// NewRedis builds a pooled client for cfg.RedisURL. Connections are
// dialed lazily; call Ping to verify reachability.
func NewRedis(cfg *config.CacheConfig) (*RedisBackend, error) {
	u, err := url.Parse(cfg.RedisURL)
	if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") || u.Host == "" {
		return nil, fmt.Errorf("invalid redis url %q", cfg.RedisURL)
	}

	dialTimeout := cfg.RedisDialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	maxIdle := cfg.RedisMaxIdle
	if maxIdle <= 0 {
		maxIdle = 4
	}
	redisURL := cfg.RedisURL

	pool := &redis.Pool{
		MaxIdle:     maxIdle,
		MaxActive:   cfg.RedisMaxActive,
		IdleTimeout: 5 * time.Minute,
		Wait:        cfg.RedisMaxActive > 0,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialURLContext(ctx, redisURL,
				redis.DialConnectTimeout(dialTimeout),
				redis.DialReadTimeout(dialTimeout),
				redis.DialWriteTimeout(dialTimeout),
			)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
	return &RedisBackend{pool: pool}, nil
}

func (r *RedisBackend) do(ctx context.Context, cmd string, args ...any) (any, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return redis.DoContext(conn, ctx, cmd, args...)
}

// Get issues GET key.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := redis.Bytes(r.do(ctx, "GET", key))
	if errors.Is(err, redis.ErrNil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set issues SETEX key seconds value. Sub-second TTLs round up to one second.
func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	seconds := int64(math.Ceil(ttl.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	_, err := r.do(ctx, "SETEX", key, seconds, value)
	return err
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	_, err := r.do(ctx, "PING")
	return err
}

func (r *RedisBackend) Close() error {
	return r.pool.Close()
}

func (r *RedisBackend) Name() string { return "redis" }
