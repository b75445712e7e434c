// Copyright (c) 2026 Aventra. All rights reserved.

package keystore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aventra/storefront/internal/platform/constants"
)

// Redis implements [Store] on a Redis backend.
//
// # Key Layout
//
// Every record lives under constants.RedisPrefixSession plus the caller's
// key, e.g. "storefront:sess:<session-id>:token". Writes refresh the TTL so
// an active session never expires mid-use.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed store with the default session slot TTL.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, ttl: constants.SessionSlotTTL}
}

// Get returns the value stored under key, or [ErrNotFound].
func (store *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := store.client.Get(ctx, constants.RedisPrefixSession+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("keystore: redis get %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key, replacing any prior value and refreshing the TTL.
func (store *Redis) Set(ctx context.Context, key, value string) error {
	if err := store.client.Set(ctx, constants.RedisPrefixSession+key, value, store.ttl).Err(); err != nil {
		return fmt.Errorf("keystore: redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes the record under key. Absent keys are a no-op.
func (store *Redis) Delete(ctx context.Context, key string) error {
	if err := store.client.Del(ctx, constants.RedisPrefixSession+key).Err(); err != nil {
		return fmt.Errorf("keystore: redis del %q: %w", key, err)
	}
	return nil
}
