package cart

import "goflare.io/storefront/models"

// RecomputeTotal returns the sum of the per-line totals already stored on the
// items. It deliberately leaves the unit count alone: local deletions refresh
// the price total immediately, while the count indicator stays stale until the
// next full load.
func RecomputeTotal(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.TotalPrice
	}
	return total
}
