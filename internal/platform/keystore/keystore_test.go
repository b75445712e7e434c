// Copyright (c) 2026 Aventra. All rights reserved.

package keystore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventra/storefront/internal/platform/keystore"
)

/*
TestMemory_RoundTrip verifies basic get/set/delete behavior of the in-memory store.
*/
func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := keystore.NewMemory()

	// 1. Absent key reports ErrNotFound
	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	// 2. Set then Get returns the stored value
	require.NoError(t, store.Set(ctx, "token", "abc"))
	value, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", value)

	// 3. Set replaces the prior value
	require.NoError(t, store.Set(ctx, "token", "def"))
	value, err = store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "def", value)

	// 4. Delete removes the record; deleting again is a no-op
	require.NoError(t, store.Delete(ctx, "token"))
	require.NoError(t, store.Delete(ctx, "token"))
	_, err = store.Get(ctx, "token")
	assert.ErrorIs(t, err, keystore.ErrNotFound)
}

/*
TestNamespaced_Isolation verifies that two namespaces over the same backend
never see each other's records.
*/
func TestNamespaced_Isolation(t *testing.T) {
	ctx := context.Background()
	backend := keystore.NewMemory()

	alice := keystore.Namespaced(backend, "sess-a:")
	bob := keystore.Namespaced(backend, "sess-b:")

	require.NoError(t, alice.Set(ctx, "token", "alice-token"))

	// Bob sees nothing under the same slot name
	_, err := bob.Get(ctx, "token")
	assert.ErrorIs(t, err, keystore.ErrNotFound)

	// Alice still sees her own record
	value, err := alice.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "alice-token", value)

	// Deleting Bob's slot leaves Alice untouched
	require.NoError(t, bob.Delete(ctx, "token"))
	value, err = alice.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "alice-token", value)
}
