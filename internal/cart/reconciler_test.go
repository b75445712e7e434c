// Copyright (c) 2026 Aventra. All rights reserved.

package cart_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aventra/storefront/internal/cart"
	"github.com/aventra/storefront/internal/catalog"
	"github.com/aventra/storefront/internal/platform/ctxutil"
	"github.com/aventra/storefront/internal/platform/keystore"
	"github.com/aventra/storefront/internal/session"
)

type fakeProduct struct {
	name   string
	price  float64
	status int
}

// newCatalogServer serves /api/products/{id} from the given table. An ID
// absent from the table answers 404; a zero status means 200.
func newCatalogServer(t *testing.T, products map[int]fakeProduct) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/products/") {
			http.NotFound(w, r)
			return
		}

		var productID int
		_, err := fmt.Sscanf(r.URL.Path, "/api/products/%d", &productID)
		require.NoError(t, err)

		product, ok := products[productID]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if product.status != 0 {
			w.WriteHeader(product.status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"productId": productID,
			"name":      product.name,
			"listPrice": product.price,
		}))
	}))
	t.Cleanup(server.Close)

	return server
}

type reconcilerFixture struct {
	sessions   *session.Manager
	carts      *cart.Store
	reconciler *cart.Reconciler
	ctx        context.Context
}

func newReconcilerFixture(t *testing.T, catalogURL string, authenticated bool) *reconcilerFixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := keystore.NewMemory()
	ctx := ctxutil.WithSessionID(context.Background(), "reconcile-session")

	sessions := session.NewManager(backend, log)
	if authenticated {
		require.NoError(t, sessions.SetCredential(ctx, "bearer-token"))
	}

	carts := cart.NewStore(backend, log)
	gateway := catalog.NewGateway(catalogURL, log)

	return &reconcilerFixture{
		sessions:   sessions,
		carts:      carts,
		reconciler: cart.NewReconciler(carts, sessions, gateway, log),
		ctx:        ctx,
	}
}

/*
TestReconciler_RefreshUpdatesAndDrops is the core reconciliation scenario:
changed names and prices are taken from the catalog, quantities are
preserved locally, and a line whose product has gone away is dropped while
the remaining lines keep their original order.
*/
func TestReconciler_RefreshUpdatesAndDrops(t *testing.T) {
	server := newCatalogServer(t, map[int]fakeProduct{
		1: {name: "Road-150 Red, 62", price: 3578.27},
		// product 2 is gone upstream
		3: {name: "Touring Tire", price: 28.99},
	})

	f := newReconcilerFixture(t, server.URL, true)
	f.carts.Add(f.ctx, cart.Item{ProductID: 1, Name: "Road-150 Red, 62 (old)", ListPrice: 3200.00}, 1)
	f.carts.Add(f.ctx, cart.Item{ProductID: 2, Name: "Discontinued Frame", ListPrice: 99.00}, 5)
	f.carts.Add(f.ctx, cart.Item{ProductID: 3, Name: "Touring Tire", ListPrice: 24.99}, 2)

	require.NoError(t, f.reconciler.Refresh(f.ctx))

	lines := f.carts.Load(f.ctx)
	require.Len(t, lines, 2)

	// Order follows the original cart, not fetch completion order.
	assert.Equal(t, 1, lines[0].ProductID)
	assert.Equal(t, 3, lines[1].ProductID)

	// Name and price come from the catalog; quantity stays local.
	assert.Equal(t, "Road-150 Red, 62", lines[0].Name)
	assert.InDelta(t, 3578.27, lines[0].ListPrice, 0.0001)
	assert.Equal(t, 1, lines[0].Quantity)

	assert.InDelta(t, 28.99, lines[1].ListPrice, 0.0001)
	assert.Equal(t, 2, lines[1].Quantity)
}

/*
TestReconciler_ServerErrorDropsLine verifies a 5xx product answer is
treated the same as a 404: the line is dropped, the refresh succeeds.
*/
func TestReconciler_ServerErrorDropsLine(t *testing.T) {
	server := newCatalogServer(t, map[int]fakeProduct{
		1: {name: "Water Bottle", price: 4.99},
		2: {status: http.StatusInternalServerError},
	})

	f := newReconcilerFixture(t, server.URL, true)
	f.carts.Add(f.ctx, cart.Item{ProductID: 1, Name: "Water Bottle", ListPrice: 4.99}, 1)
	f.carts.Add(f.ctx, cart.Item{ProductID: 2, Name: "Flaky Product", ListPrice: 10.00}, 1)

	require.NoError(t, f.reconciler.Refresh(f.ctx))

	lines := f.carts.Load(f.ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].ProductID)
}

/*
TestReconciler_UnauthenticatedAborts verifies a refresh without a
credential fails up front and never touches the cart or the network.
*/
func TestReconciler_UnauthenticatedAborts(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	f := newReconcilerFixture(t, server.URL, false)
	require.NoError(t, f.carts.Replace(f.ctx, []cart.Line{
		{ProductID: 1, Name: "Kept", ListPrice: 1.00, Quantity: 1},
	}))

	err := f.reconciler.Refresh(f.ctx)

	require.ErrorIs(t, err, catalog.ErrNotAuthenticated)
	assert.Zero(t, requests)
	assert.Len(t, f.carts.Load(f.ctx), 1)
}

/*
TestReconciler_RejectedCredentialAborts verifies an upstream 401 aborts the
whole refresh without mutating the cart, while still clearing the rejected
credential.
*/
func TestReconciler_RejectedCredentialAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	f := newReconcilerFixture(t, server.URL, true)
	f.carts.Add(f.ctx, cart.Item{ProductID: 1, Name: "Survivor", ListPrice: 9.99}, 3)

	err := f.reconciler.Refresh(f.ctx)

	require.ErrorIs(t, err, catalog.ErrSessionInvalidated)

	// The cart is untouched; the session is not.
	lines := f.carts.Load(f.ctx)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.False(t, f.sessions.IsAuthenticated(f.ctx))
}

/*
TestReconciler_TransportErrorAborts verifies an unreachable catalog leaves
the cart untouched.
*/
func TestReconciler_TransportErrorAborts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // unreachable from the start

	f := newReconcilerFixture(t, server.URL, true)
	f.carts.Add(f.ctx, cart.Item{ProductID: 1, Name: "Survivor", ListPrice: 9.99}, 1)

	err := f.reconciler.Refresh(f.ctx)

	require.Error(t, err)
	assert.Len(t, f.carts.Load(f.ctx), 1)
}

/*
TestReconciler_EmptyCartIsNoop verifies refreshing an empty cart succeeds
without any catalog traffic.
*/
func TestReconciler_EmptyCartIsNoop(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	t.Cleanup(server.Close)

	f := newReconcilerFixture(t, server.URL, true)

	require.NoError(t, f.reconciler.Refresh(f.ctx))
	assert.Zero(t, requests)
}
