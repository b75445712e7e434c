// Copyright (c) 2026 Aventra. All rights reserved.

package keystore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Timeouts for the slot storage backend. Slot reads sit on the hot
// per-request path, so they fail fast rather than queue.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// Connect parses a Redis URL and returns a client ready to back [NewRedis].
// Connectivity is verified before the client is handed out, so a bad URL or
// an unreachable server fails at startup, not on the first slot access.
func Connect(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("keystore: invalid redis URL: %w", err)
	}

	// Small pool: slot records are tiny and each request touches at most a
	// handful of them.
	options.PoolSize = 10
	options.MinIdleConns = 2
	options.MaxIdleConns = 5

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("slot_storage_connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies the slot storage backend is reachable. Used at startup and
// by the readiness probe.
func Ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("keystore: storage ping failed: %w", err)
	}

	return nil
}
