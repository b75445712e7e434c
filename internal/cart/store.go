// Copyright (c) 2026 Aventra. All rights reserved.

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/aventra/storefront/internal/platform/constants"
	"github.com/aventra/storefront/internal/platform/ctxutil"
	"github.com/aventra/storefront/internal/platform/keystore"
)

// Store owns the persisted cart record.
//
// One long-lived instance serves every browser session; the storage
// namespace is resolved per call from the session ID in the context. Every
// mutation is a full read-modify-write of the record, serialized by mu so
// concurrent requests for the same session cannot interleave between a read
// and its paired write.
type Store struct {
	backend keystore.Store
	log     *slog.Logger

	// mu serializes read-modify-write cycles. Carts are a handful of lines;
	// a single section is cheaper than per-session lock bookkeeping.
	mu sync.Mutex
}

// NewStore creates a cart store over the given storage backend.
func NewStore(backend keystore.Store, logger *slog.Logger) *Store {
	return &Store{backend: backend, log: logger}
}

func (store *Store) slots(ctx context.Context) keystore.Store {
	return keystore.ForSession(store.backend, ctxutil.GetSessionID(ctx))
}

// Load reads the persisted cart. Unavailable storage or an unparsable
// record reads as an empty cart; corruption recovers silently, it is
// never surfaced as an error.
func (store *Store) Load(ctx context.Context) []Line {
	raw, err := store.slots(ctx).Get(ctx, constants.SlotCartItems)
	if err != nil {
		if !errors.Is(err, keystore.ErrNotFound) {
			store.log.WarnContext(ctx, "cart_read_failed", slog.Any("error", err))
		}
		return []Line{}
	}

	lines := []Line{}
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		store.log.WarnContext(ctx, "cart_record_corrupt", slog.Any("error", err))
		return []Line{}
	}

	return lines
}

// Add puts quantity units of the item into the cart. If a line for the
// product already exists its quantity accumulates; name and price stay as
// first captured (reconciliation refreshes them, not repeated adds). A new
// line appends at the end, preserving insertion order.
//
// Returns false only when storage is unreachable.
func (store *Store) Add(ctx context.Context, item Item, quantity int) bool {
	if quantity < 1 {
		quantity = 1
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	lines := store.Load(ctx)

	merged := false
	for i := range lines {
		if lines[i].ProductID == item.ProductID {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}

	if !merged {
		lines = append(lines, Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			ListPrice: item.ListPrice,
			Quantity:  quantity,
		})
	}

	return store.save(ctx, lines)
}

// Edit overwrites the quantity of an existing line (absolute set, unlike
// the additive Add). A quantity of zero or less removes the line. Editing
// an absent product fails.
func (store *Store) Edit(ctx context.Context, productID, quantity int) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	lines := store.Load(ctx)

	index := -1
	for i := range lines {
		if lines[i].ProductID == productID {
			index = i
			break
		}
	}

	if index == -1 {
		store.log.WarnContext(ctx, "cart_edit_missing_line", slog.Int("product_id", productID))
		return false
	}

	if quantity <= 0 {
		return store.save(ctx, append(lines[:index], lines[index+1:]...))
	}

	lines[index].Quantity = quantity
	return store.save(ctx, lines)
}

// Remove deletes the line for productID. Removing an absent product is a
// no-op, not a failure.
func (store *Store) Remove(ctx context.Context, productID int) {
	store.mu.Lock()
	defer store.mu.Unlock()

	lines := store.Load(ctx)

	kept := lines[:0]
	for _, line := range lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}

	store.save(ctx, kept)
}

// QuantityOf returns the stored quantity for productID, zero when absent.
func (store *Store) QuantityOf(ctx context.Context, productID int) int {
	for _, line := range store.Load(ctx) {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// Replace overwrites the whole persisted cart in one write. The reconciler
// uses it as its atomic commit.
func (store *Store) Replace(ctx context.Context, lines []Line) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if !store.save(ctx, lines) {
		return keystore.ErrUnavailable
	}
	return nil
}

// Clear discards the whole cart. Only ever called by explicit user action.
func (store *Store) Clear(ctx context.Context) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := store.slots(ctx).Delete(ctx, constants.SlotCartItems); err != nil {
		store.log.WarnContext(ctx, "cart_clear_failed", slog.Any("error", err))
	}
}

// save writes the full record back. Encoding []Line cannot fail; a write
// error means storage is unreachable.
func (store *Store) save(ctx context.Context, lines []Line) bool {
	raw, err := json.Marshal(lines)
	if err != nil {
		store.log.ErrorContext(ctx, "cart_encode_failed", slog.Any("error", err))
		return false
	}

	if err := store.slots(ctx).Set(ctx, constants.SlotCartItems, string(raw)); err != nil {
		store.log.WarnContext(ctx, "cart_write_failed", slog.Any("error", err))
		return false
	}

	return true
}
