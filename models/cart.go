package models

// Product is read-only reference data supplied by the catalog.
type Product struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl,omitempty"`
}

// CartItem is one product-quantity pairing within the cart. Items are owned by
// the snapshot and replaced whole; they are never mutated in place.
type CartItem struct {
	CartID     uint64  `json:"cartId"`
	Product    Product `json:"product"`
	Quantity   uint64  `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

// CartSnapshot is the in-memory cart state for one browsing session. Item order
// is display order only. TotalLength counts units and defaults to zero when the
// retrieval service omits it.
type CartSnapshot struct {
	Items       []CartItem `json:"items"`
	TotalPrice  float64    `json:"totalPrice"`
	TotalLength uint64     `json:"totalLength"`
}

func NewCartSnapshot() *CartSnapshot {
	return new(CartSnapshot)
}

// UnitCount sums the item quantities. This is the figure published to the
// app-wide cart-count indicator, distinct from the server-supplied TotalLength.
func (s *CartSnapshot) UnitCount() uint64 {
	var count uint64
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// Clone returns a deep copy so callers can hand the snapshot out without
// exposing the store's backing slice.
func (s *CartSnapshot) Clone() CartSnapshot {
	out := CartSnapshot{
		TotalPrice:  s.TotalPrice,
		TotalLength: s.TotalLength,
	}
	if len(s.Items) > 0 {
		out.Items = make([]CartItem, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}
