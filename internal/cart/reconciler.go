// Copyright (c) 2026 Aventra. All rights reserved.

package cart

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aventra/storefront/internal/catalog"
)

// Reconciler refreshes cart lines against the catalog's authoritative
// product data.
//
// # Failure Scope
//
// A line whose product answers non-2xx is dropped: upstream deletion
// propagates to the local cache as removal, not as a stale zombie line.
// A 401 or a transport failure aborts the whole refresh with no mutation:
// a broken session or network must not eat the cart.
type Reconciler struct {
	carts    *Store
	sessions sessionState
	gateway  *catalog.Gateway
	log      *slog.Logger
}

// sessionState is what the reconciler needs from the session engine.
type sessionState interface {
	catalog.Session
	IsAuthenticated(ctx context.Context) bool
}

// NewReconciler wires the reconciler over the cart store and the gateway.
func NewReconciler(carts *Store, sessions sessionState, gateway *catalog.Gateway, logger *slog.Logger) *Reconciler {
	return &Reconciler{carts: carts, sessions: sessions, gateway: gateway, log: logger}
}

// Refresh reconciles every cart line against the catalog.
//
// All product fetches are issued concurrently and gathered before anything
// is written, so refresh latency is bounded by the slowest single fetch and
// the persisted cart is replaced in one atomic overwrite; no partially
// reconciled cart is ever observable. Line order follows the original cart,
// not fetch completion order. Quantity is never taken from the server.
func (reconciler *Reconciler) Refresh(ctx context.Context) error {
	if !reconciler.sessions.IsAuthenticated(ctx) {
		reconciler.log.WarnContext(ctx, "cart_refresh_skipped_unauthenticated")
		return catalog.ErrNotAuthenticated
	}

	lines := reconciler.carts.Load(ctx)
	if len(lines) == 0 {
		return nil
	}

	// Gather all fetches; a nil slot marks a dropped line.
	refreshed := make([]*Line, len(lines))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, line := range lines {
		i, line := i, line
		group.Go(func() error {
			snapshot, err := reconciler.gateway.Product(groupCtx, reconciler.sessions, line.ProductID)
			if err != nil {
				if errors.Is(err, catalog.ErrProductUnavailable) {
					reconciler.log.InfoContext(groupCtx, "cart_line_dropped",
						slog.Int("product_id", line.ProductID),
						slog.Any("reason", err),
					)
					return nil
				}
				// Session or transport failure: abort the whole refresh.
				return err
			}

			refreshed[i] = &Line{
				ProductID: line.ProductID,
				Name:      snapshot.Name,
				ListPrice: snapshot.ListPrice,
				Quantity:  line.Quantity,
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	reconciled := make([]Line, 0, len(lines))
	for _, line := range refreshed {
		if line != nil {
			reconciled = append(reconciled, *line)
		}
	}

	return reconciler.carts.Replace(ctx, reconciled)
}
