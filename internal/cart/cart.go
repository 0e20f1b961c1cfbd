// Package cart maintains the shopping cart: local-first for guests, mirrored
// against the remote cart for authenticated users.
package cart

// DefaultMaxQuantity is the per-line quantity cap the storefront enforces.
const DefaultMaxQuantity = 5

// Item is a single cart line. JSON field names match the web storefront's
// serialized cart so a shared store can serve both clients.
type Item struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Price         int64  `json:"price"`
	OriginalPrice int64  `json:"originalPrice,omitempty"`
	Quantity      int    `json:"quantity"`
}

// Items is a cart snapshot. At most one line exists per product id.
type Items []Item

// Count returns the number of distinct lines.
func (it Items) Count() int { return len(it) }

// Subtotal returns the sum of price times quantity over all lines.
func (it Items) Subtotal() int64 {
	var total int64
	for _, item := range it {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// FindIndex returns the index of the line with the given product id, or -1.
func (it Items) FindIndex(id string) int {
	for i := range it {
		if it[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy that can be mutated without aliasing the receiver.
func (it Items) Clone() Items {
	out := make(Items, len(it))
	copy(out, it)
	return out
}
