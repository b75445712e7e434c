// Copyright (c) 2026 Aventra. All rights reserved.

package cart_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventra/storefront/internal/cart"
	"github.com/aventra/storefront/internal/platform/ctxutil"
	"github.com/aventra/storefront/internal/platform/keystore"
)

func newStore(t *testing.T) (*cart.Store, context.Context) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := cart.NewStore(keystore.NewMemory(), log)
	ctx := ctxutil.WithSessionID(context.Background(), "cart-session")

	return store, ctx
}

var (
	mountainBike = cart.Item{ProductID: 771, Name: "Mountain-100 Silver, 38", ListPrice: 3399.99}
	waterBottle  = cart.Item{ProductID: 870, Name: "Water Bottle - 30 oz.", ListPrice: 4.99}
	helmet       = cart.Item{ProductID: 707, Name: "Sport-100 Helmet, Red", ListPrice: 34.99}
)

/*
TestStore_AddMerges tests the merge invariant: adding a product already in
the cart accumulates quantity on the existing line instead of duplicating it.
*/
func TestStore_AddMerges(t *testing.T) {
	store, ctx := newStore(t)

	assert.True(t, store.Add(ctx, waterBottle, 2))
	assert.True(t, store.Add(ctx, waterBottle, 3))

	lines := store.Load(ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, waterBottle.Name, lines[0].Name)
}

/*
TestStore_AddClampsQuantity verifies a zero or negative quantity is treated
as one unit.
*/
func TestStore_AddClampsQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     int
	}{
		{"zero", 0, 1},
		{"negative", -4, 1},
		{"positive", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, ctx := newStore(t)
			store.Add(ctx, helmet, tt.quantity)

			assert.Equal(t, tt.want, store.QuantityOf(ctx, helmet.ProductID))
		})
	}
}

/*
TestStore_InsertionOrder verifies new lines append at the end and merges
never reorder existing lines.
*/
func TestStore_InsertionOrder(t *testing.T) {
	store, ctx := newStore(t)

	store.Add(ctx, mountainBike, 1)
	store.Add(ctx, waterBottle, 1)
	store.Add(ctx, helmet, 1)
	store.Add(ctx, waterBottle, 1) // merge must not move the line

	lines := store.Load(ctx)
	require.Len(t, lines, 3)
	assert.Equal(t, mountainBike.ProductID, lines[0].ProductID)
	assert.Equal(t, waterBottle.ProductID, lines[1].ProductID)
	assert.Equal(t, helmet.ProductID, lines[2].ProductID)
}

/*
TestStore_Edit tests quantity overwrite semantics, including the
edit-to-zero removal rule.
*/
func TestStore_Edit(t *testing.T) {
	t.Run("absolute_set", func(t *testing.T) {
		store, ctx := newStore(t)
		store.Add(ctx, waterBottle, 5)

		assert.True(t, store.Edit(ctx, waterBottle.ProductID, 2))
		assert.Equal(t, 2, store.QuantityOf(ctx, waterBottle.ProductID))
	})

	t.Run("zero_removes", func(t *testing.T) {
		store, ctx := newStore(t)
		store.Add(ctx, waterBottle, 5)
		store.Add(ctx, helmet, 1)

		assert.True(t, store.Edit(ctx, waterBottle.ProductID, 0))

		lines := store.Load(ctx)
		require.Len(t, lines, 1)
		assert.Equal(t, helmet.ProductID, lines[0].ProductID)
	})

	t.Run("negative_removes", func(t *testing.T) {
		store, ctx := newStore(t)
		store.Add(ctx, waterBottle, 5)

		assert.True(t, store.Edit(ctx, waterBottle.ProductID, -1))
		assert.Empty(t, store.Load(ctx))
	})

	t.Run("absent_product_fails", func(t *testing.T) {
		store, ctx := newStore(t)
		store.Add(ctx, waterBottle, 1)

		assert.False(t, store.Edit(ctx, 9999, 3))
		assert.Equal(t, 1, store.QuantityOf(ctx, waterBottle.ProductID))
	})
}

/*
TestStore_Remove verifies removal is idempotent.
*/
func TestStore_Remove(t *testing.T) {
	store, ctx := newStore(t)
	store.Add(ctx, waterBottle, 2)
	store.Add(ctx, helmet, 1)

	store.Remove(ctx, waterBottle.ProductID)
	store.Remove(ctx, waterBottle.ProductID) // second removal is a no-op
	store.Remove(ctx, 4242)                  // absent product is a no-op

	lines := store.Load(ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, helmet.ProductID, lines[0].ProductID)
}

/*
TestStore_Subtotal checks the line-total arithmetic.
*/
func TestStore_Subtotal(t *testing.T) {
	lines := []cart.Line{
		{ProductID: 1, ListPrice: 10.00, Quantity: 2},
		{ProductID: 2, ListPrice: 5.50, Quantity: 3},
	}

	assert.InDelta(t, 36.50, cart.Subtotal(lines), 0.0001)
	assert.Zero(t, cart.Subtotal(nil))
}

/*
TestStore_CorruptRecordReadsEmpty verifies an unparsable persisted record
degrades to an empty cart instead of erroring.
*/
func TestStore_CorruptRecordReadsEmpty(t *testing.T) {
	backend := keystore.NewMemory()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := cart.NewStore(backend, log)
	ctx := ctxutil.WithSessionID(context.Background(), "corrupt")

	require.NoError(t, keystore.ForSession(backend, "corrupt").Set(ctx, "cart_items", "{not json"))

	assert.Empty(t, store.Load(ctx))

	// The next mutation heals the record.
	store.Add(ctx, waterBottle, 1)
	assert.Len(t, store.Load(ctx), 1)
}

/*
TestStore_SessionIsolation verifies carts are scoped per browser session.
*/
func TestStore_SessionIsolation(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := cart.NewStore(keystore.NewMemory(), log)

	alice := ctxutil.WithSessionID(context.Background(), "session-alice")
	bob := ctxutil.WithSessionID(context.Background(), "session-bob")

	store.Add(alice, waterBottle, 2)

	assert.Equal(t, 2, store.QuantityOf(alice, waterBottle.ProductID))
	assert.Zero(t, store.QuantityOf(bob, waterBottle.ProductID))
}

/*
TestStore_NoSessionContext verifies a request outside any browser session
sees an empty cart and cannot write one.
*/
func TestStore_NoSessionContext(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	assert.Empty(t, store.Load(ctx))
	assert.False(t, store.Add(ctx, waterBottle, 1))
}

/*
TestStore_ReplaceAndClear tests the wholesale overwrite used by
reconciliation and the explicit clear.
*/
func TestStore_ReplaceAndClear(t *testing.T) {
	store, ctx := newStore(t)
	store.Add(ctx, waterBottle, 2)

	require.NoError(t, store.Replace(ctx, []cart.Line{
		{ProductID: helmet.ProductID, Name: helmet.Name, ListPrice: helmet.ListPrice, Quantity: 4},
	}))

	lines := store.Load(ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, helmet.ProductID, lines[0].ProductID)

	store.Clear(ctx)
	assert.Empty(t, store.Load(ctx))
}
