// Package wishlist maintains the boolean-membership wishlist collection:
// local-first for guests, mirrored against the remote wishlist for
// authenticated users, with one shared in-process cache so every consumer
// sees the same collection.
package wishlist

// Item is a wishlisted product. JSON field names match the web storefront's
// serialized wishlist.
type Item struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	Price         int64   `json:"price"`
	OriginalPrice int64   `json:"originalPrice,omitempty"`
	Rating        float64 `json:"rating"`
	Reviews       int     `json:"reviews"`
	Badge         string  `json:"badge,omitempty"`
	InStock       bool    `json:"inStock"`
}

// Items is a wishlist snapshot. At most one item exists per product id.
type Items []Item

// Contains reports membership of the given product id.
func (it Items) Contains(id string) bool {
	return it.FindIndex(id) >= 0
}

// FindIndex returns the index of the item with the given product id, or -1.
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
