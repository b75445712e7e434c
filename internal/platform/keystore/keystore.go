// Copyright (c) 2026 Aventra. All rights reserved.

/*
Package keystore defines the durable keyed storage behind the session & cart engine.

Every persisted record the engine owns (credential, view preference, cart
lines) is a single string value under a well-known slot name. The engine never
talks to a concrete backend directly; it is handed a [Store] so tests can
substitute an in-memory fake and production can bind Redis.

Architecture:

  - Store: the minimal get/set/delete contract.
  - Memory: process-local implementation for tests and redis-less deployments.
  - Redis: production implementation with per-slot TTL.
  - Connect/Ping: Redis client bootstrap and health probe for that binding.
  - Namespaced: decorator that scopes a Store to one browser session.

Backends report [ErrNotFound] for absent keys; every other error means the
backend itself is unreachable. Callers in the engine treat both as "use the
default value" per the storage degradation policy.
*/
package keystore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Store.Get] when no record exists under the key.
var ErrNotFound = errors.New("keystore: key not found")

// ErrUnavailable is returned by writes against a context that has no durable
// storage (e.g. a request outside any browser session).
var ErrUnavailable = errors.New("keystore: storage unavailable")

// Store is the injectable durable keyed storage contract.
//
// Implementations must be safe for concurrent use; the engine layers their
// own read-modify-write exclusion on top where a slot holds a composite
// value (the cart).
type Store interface {
	// Get returns the value stored under key, or [ErrNotFound].
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any prior value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the record under key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// # Namespacing

// namespaced prefixes every key with a session-scoped namespace.
type namespaced struct {
	inner  Store
	prefix string
}

// Namespaced scopes a [Store] to a single browser session. Two sessions see
// fully independent slot records over the same backend.
func Namespaced(inner Store, prefix string) Store {
	return &namespaced{inner: inner, prefix: prefix}
}

func (store *namespaced) Get(ctx context.Context, key string) (string, error) {
	return store.inner.Get(ctx, store.prefix+key)
}

func (store *namespaced) Set(ctx context.Context, key, value string) error {
	return store.inner.Set(ctx, store.prefix+key, value)
}

func (store *namespaced) Delete(ctx context.Context, key string) error {
	return store.inner.Delete(ctx, store.prefix+key)
}

// ForSession binds a backend to one browser session's namespace. An empty
// session ID means the caller runs outside any browser session (health
// probes, background jobs) and gets the [Unavailable] store: reads come back
// empty and writes fail, which the engine degrades to anonymous/default
// behavior rather than an error.
func ForSession(backend Store, sessionID string) Store {
	if sessionID == "" {
		return Unavailable()
	}
	return Namespaced(backend, sessionID+":")
}

// # Unavailable Storage

type unavailable struct{}

// Unavailable returns a Store representing a context with no durable storage.
func Unavailable() Store {
	return unavailable{}
}

func (unavailable) Get(context.Context, string) (string, error) {
	return "", ErrNotFound
}

func (unavailable) Set(context.Context, string, string) error {
	return ErrUnavailable
}

func (unavailable) Delete(context.Context, string) error {
	return nil
}
