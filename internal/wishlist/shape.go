package wishlist

import "encoding/json"

// The backend has shipped several wishlist response shapes over time: a flat
// item array, an object with a nested items array (optionally under data),
// and a single-document wrapper holding the wishlist. extractCollection
// probes each in turn and reports whether any matched.

type wishlistEnvelope struct {
	Items []json.RawMessage `json:"items"`
	Data  json.RawMessage   `json:"data"`
	// Single-document wrapper.
	Wishlist *struct {
		Items []json.RawMessage `json:"items"`
	} `json:"wishlist"`
}

// extractCollection resolves the authoritative item collection out of a
// wishlist response body. ok is false when no known shape matched; callers
// should then keep their optimistic local state.
func extractCollection(raw json.RawMessage) (Items, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	// Shape 1: flat array.
	var flat []json.RawMessage
	if err := json.Unmarshal(raw, &flat); err == nil {
		return mapLines(flat), true
	}

	var env wishlistEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}

	// Shape 2: nested items array.
	if env.Items != nil {
		return mapLines(env.Items), true
	}

	// Shape 3: single-document wrapper.
	if env.Wishlist != nil && env.Wishlist.Items != nil {
		return mapLines(env.Wishlist.Items), true
	}

	// Shape 4: everything again, one level down under data.
	if len(env.Data) > 0 {
		return extractCollection(env.Data)
	}

	return nil, false
}

// wishlistLine covers both denormalized lines and lines embedding the full
// product document.
type wishlistLine struct {
	Product       json.RawMessage `json:"product"`
	ProductID     string          `json:"productId"`
	MongoID       string          `json:"_id"`
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	Images        []string        `json:"images"`
	Price         int64           `json:"price"`
	OriginalPrice int64           `json:"originalPrice"`
	Rating        float64         `json:"rating"`
	Reviews       int             `json:"reviews"`
	ReviewCount   int             `json:"reviewCount"`
	Badge         string          `json:"badge"`
	InStock       *bool           `json:"inStock"`
}

func mapLines(lines []json.RawMessage) Items {
	items := make(Items, 0, len(lines))
	for _, raw := range lines {
		var l wishlistLine
		if err := json.Unmarshal(raw, &l); err != nil {
			continue
		}
		if item, ok := l.item(); ok {
			items = append(items, item)
		}
	}
	return items
}

func (l wishlistLine) item() (Item, bool) {
	item := Item{
		Name:          l.Name,
		Image:         l.Image,
		Price:         l.Price,
		OriginalPrice: l.OriginalPrice,
		Rating:        l.Rating,
		Reviews:       l.Reviews,
		Badge:         l.Badge,
		InStock:       true,
	}
	if item.Image == "" && len(l.Images) > 0 {
		item.Image = l.Images[0]
	}
	if item.Reviews == 0 {
		item.Reviews = l.ReviewCount
	}
	if l.InStock != nil {
		item.InStock = *l.InStock
	}

	switch {
	case l.ID != "":
		item.ID = l.ID
	case l.MongoID != "":
		item.ID = l.MongoID
	case l.ProductID != "":
		item.ID = l.ProductID
	}

	// An embedded product document wins over flat fields; a bare id string
	// only fills in the id.
	if len(l.Product) > 0 {
		var doc wishlistLine
		if err := json.Unmarshal(l.Product, &doc); err == nil {
			if nested, ok := doc.item(); ok {
				return nested, true
			}
		} else {
			var id string
			if json.Unmarshal(l.Product, &id) == nil && id != "" {
				item.ID = id
			}
		}
	}

	return item, item.ID != ""
}
