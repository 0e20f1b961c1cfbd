package catalog

import (
	"context"
	"log/slog"

	"github.com/parampare/storefront/internal/gateway"
	apperrors "github.com/parampare/storefront/pkg/errors"
)

// Browser queries the product catalog. Catalog endpoints are public; the
// gateway still attaches the bearer token when a session exists.
type Browser struct {
	gw     *gateway.Client
	logger *slog.Logger
}

// NewBrowser creates a catalog browser.
func NewBrowser(gw *gateway.Client, logger *slog.Logger) *Browser {
	return &Browser{gw: gw, logger: logger}
}

// Products fetches one page of products matching the filter parameters.
func (b *Browser) Products(ctx context.Context, params ListParams) (*ProductPage, error) {
	var page ProductPage
	if err := b.gw.Get(ctx, "/products", params.Values(), &page); err != nil {
		return nil, apperrors.Wrap(err, "fetch products")
	}
	for i := range page.Products {
		page.Products[i].normalize()
	}
	return &page, nil
}

// Product fetches a single product by id.
func (b *Browser) Product(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	var envelope struct {
		Data    *Product `json:"data"`
		Product *Product `json:"product"`
	}
	if err := b.gw.Get(ctx, "/products/"+id, nil, &envelope); err != nil {
		return nil, apperrors.Wrap(err, "fetch product")
	}

	p := envelope.Data
	if p == nil {
		p = envelope.Product
	}
	if p == nil {
		return nil, apperrors.NotFound("product", id)
	}
	p.normalize()
	return p, nil
}

// Categories fetches the flat category listing.
func (b *Browser) Categories(ctx context.Context) ([]Category, error) {
	var envelope struct {
		Data []Category `json:"data"`
	}
	if err := b.gw.Get(ctx, "/categories", nil, &envelope); err != nil {
		return nil, apperrors.Wrap(err, "fetch categories")
	}
	return envelope.Data, nil
}

// CategoryTree fetches the hierarchical category listing.
func (b *Browser) CategoryTree(ctx context.Context) ([]Category, error) {
	var envelope struct {
		Data []Category `json:"data"`
	}
	if err := b.gw.Get(ctx, "/categories/tree", nil, &envelope); err != nil {
		return nil, apperrors.Wrap(err, "fetch category tree")
	}
	return envelope.Data, nil
}
