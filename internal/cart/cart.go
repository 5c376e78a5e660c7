// Package cart holds the reconciliation rules for a user's cart. Every function takes
// the current items and returns a new slice; nothing here touches storage.
//
// A cart holds at most one line per product id, and every line has a positive quantity.
package cart

import (
	"encoding/json"
	"math"
	"time"

	"storefront-backend/internal/models"
)

// Add increments the quantity of an existing line for item.ProductID, or appends item
// stamped with now.
func Add(items []models.CartItem, item models.CartItem, quantity int, now time.Time) []models.CartItem {
	out := clone(items)
	for i := range out {
		if out[i].ProductID == item.ProductID {
			out[i].Quantity = sum(out[i].Quantity, quantity)
			return out
		}
	}
	item.Quantity = quantity
	item.AddedAt = now
	return append(out, item)
}

// Remove drops the line for productID. A missing line is not an error.
func Remove(items []models.CartItem, productID string) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// Sync keeps only the items that pass Valid, in their given order. Items sent without
// an added time are stamped with now.
func Sync(items []models.CartItem, now time.Time) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, it := range items {
		if !Valid(it) {
			continue
		}
		if it.AddedAt.IsZero() {
			it.AddedAt = now
		}
		out = append(out, it)
	}
	return out
}

// Merge folds guest items into the stored cart. Guest items without a product id or
// with a non-positive quantity are dropped. A guest line whose product is already in
// the cart adds its quantity to that line; otherwise it is appended stamped with now.
//
// Merge is not idempotent: merging the same guest list twice counts its quantities twice.
func Merge(existing, guest []models.CartItem, now time.Time) []models.CartItem {
	out := make([]models.CartItem, 0, len(existing)+len(guest))
	index := make(map[string]int, len(existing)+len(guest))

	for _, it := range existing {
		if i, ok := index[it.ProductID]; ok {
			out[i] = it
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}

	for _, it := range guest {
		if !ValidGuest(it) {
			continue
		}
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity = sum(out[i].Quantity, it.Quantity)
			continue
		}
		it.AddedAt = now
		index[it.ProductID] = len(out)
		out = append(out, it)
	}

	return Positive(out)
}

// Valid is the full item check applied on sync.
func Valid(it models.CartItem) bool {
	return it.ProductID != "" && it.ProductName != "" && it.ProductPrice.Truthy() && it.Quantity > 0
}

// ValidGuest is the lighter check applied to guest items before a merge.
func ValidGuest(it models.CartItem) bool {
	return it.ProductID != "" && it.Quantity > 0
}

// DecodeItems decodes each element of raw on its own and skips any element that does
// not decode as a cart item, so one malformed entry cannot fail the whole list.
func DecodeItems(raw []json.RawMessage) []models.CartItem {
	out := make([]models.CartItem, 0, len(raw))
	for _, r := range raw {
		var it models.CartItem
		if err := json.Unmarshal(r, &it); err != nil {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Positive drops lines whose quantity is not above zero. It reuses the backing array of items.
func Positive(items []models.CartItem) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}

// sum adds two quantities, saturating at math.MaxInt.
func sum(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func clone(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items), len(items)+1)
	copy(out, items)
	return out
}
