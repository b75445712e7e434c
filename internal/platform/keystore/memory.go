// Copyright (c) 2026 Aventra. All rights reserved.

package keystore

import (
	"context"
	"sync"
)

// Memory is an in-process [Store] used by tests and by deployments without
// Redis. Records do not survive a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key, or [ErrNotFound].
func (store *Memory) Get(_ context.Context, key string) (string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	value, ok := store.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key, replacing any prior value.
func (store *Memory) Set(_ context.Context, key, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.data[key] = value
	return nil
}

// Delete removes the record under key. Absent keys are a no-op.
func (store *Memory) Delete(_ context.Context, key string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.data, key)
	return nil
}
