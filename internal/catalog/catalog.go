// Package catalog fetches product and category collections from the backend
// and normalizes them for display: Mongo-style _id fields become id, and
// category references may arrive as bare ids or as embedded documents.
package catalog

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Product is a catalog product.
type Product struct {
	ID               string      `json:"id"`
	MongoID          string      `json:"_id,omitempty"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Price            int64       `json:"price"`
	OriginalPrice    int64       `json:"originalPrice,omitempty"`
	Images           []string    `json:"images"`
	Category         CategoryRef `json:"category"`
	Subcategory      CategoryRef `json:"subcategory"`
	Fabric           string      `json:"fabric,omitempty"`
	Color            string      `json:"color,omitempty"`
	Occasion         string      `json:"occasion,omitempty"`
	Weave            string      `json:"weave,omitempty"`
	Border           string      `json:"border,omitempty"`
	Pallu            string      `json:"pallu,omitempty"`
	Blouse           string      `json:"blouse,omitempty"`
	CareInstructions []string    `json:"careInstructions,omitempty"`
	InStock          bool        `json:"inStock"`
	StockQuantity    int         `json:"stockQuantity"`
	Rating           float64     `json:"rating"`
	ReviewCount      int         `json:"reviewCount"`
	Badges           []string    `json:"badges,omitempty"`
	DeliveryTimeDays string      `json:"deliveryTimeDays,omitempty"`
}

// Image returns the primary product image, or "" if none.
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// normalize maps the backend's _id onto ID when the backend did not send a
// plain id.
func (p *Product) normalize() {
	if p.ID == "" {
		p.ID = p.MongoID
	}
}

// CategoryRef is a reference to a category that the backend serializes either
// as a bare id string or as an embedded category document.
type CategoryRef struct {
	ID   string
	Name string
	Slug string
}

// UnmarshalJSON probes both serializations.
func (c *CategoryRef) UnmarshalJSON(raw []byte) error {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		c.ID = id
		return nil
	}

	var doc struct {
		MongoID string `json:"_id"`
		ID      string `json:"id"`
		Name    string `json:"name"`
		Slug    string `json:"slug"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	c.ID = doc.ID
	if c.ID == "" {
		c.ID = doc.MongoID
	}
	c.Name = doc.Name
	c.Slug = doc.Slug
	return nil
}

// MarshalJSON writes the reference back out as a bare id when that is all we
// have, or as a document otherwise.
func (c CategoryRef) MarshalJSON() ([]byte, error) {
	if c.Name == "" && c.Slug == "" {
		return json.Marshal(c.ID)
	}
	return json.Marshal(struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	}{c.ID, c.Name, c.Slug})
}

// Category is a catalog category, optionally carrying its children when
// fetched as a tree.
type Category struct {
	MongoID  string     `json:"_id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	Parent   string     `json:"parent,omitempty"`
	Level    int        `json:"level"`
	Children []Category `json:"children,omitempty"`
}

// ListParams are the catalog query parameters. Zero values are omitted from
// the query string.
type ListParams struct {
	Category    string
	Subcategory string
	MinPrice    int64
	MaxPrice    int64
	Sort        string
	Page        int
	Limit       int
	Search      string
	Fabric      string
	Occasion    string
	Color       string
	Weave       string
	Border      string
	Pallu       string
}

// Values encodes the parameters as URL query values.
func (p ListParams) Values() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}

	set("category", p.Category)
	set("subcategory", p.Subcategory)
	if p.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatInt(p.MinPrice, 10))
	}
	if p.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatInt(p.MaxPrice, 10))
	}
	set("sort", p.Sort)
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	set("search", p.Search)
	set("fabric", p.Fabric)
	set("occasion", p.Occasion)
	set("color", p.Color)
	set("weave", p.Weave)
	set("border", p.Border)
	set("pallu", p.Pallu)
	return q
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Products    []Product `json:"products"`
	Count       int       `json:"count"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}
