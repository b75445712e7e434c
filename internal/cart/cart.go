// Copyright (c) 2026 Aventra. All rights reserved.

/*
Package cart owns the locally-persisted shopping cart and its reconciliation
against the remote product catalog.

The cart is one durable record per browser session: an ordered array of
lines keyed by product ID. Price and name are a local cache of catalog data;
quantity is the only field the customer owns. Reconciliation (see
reconciler.go) refreshes the cache and drops lines whose product vanished
upstream; the catalog is never asked to trust the cart.

Invariants after any operation:

  - At most one line per product ID (adds merge, never duplicate).
  - Every stored line has quantity >= 1.
  - The subtotal is computable from stored lines alone, no network needed.
*/
package cart

// Line is one cart entry. Name and ListPrice are cached from the catalog at
// add time and refreshed by reconciliation; Quantity is customer-owned.
type Line struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	ListPrice float64 `json:"listPrice"`
	Quantity  int     `json:"quantity"`
}

// Item is the add-to-cart payload: a line before it has a quantity.
type Item struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	ListPrice float64 `json:"listPrice"`
}

// Subtotal computes the display total from stored lines alone.
func Subtotal(lines []Line) float64 {
	total := 0.0
	for _, line := range lines {
		total += line.ListPrice * float64(line.Quantity)
	}
	return total
}
