package catalog

import (
	"context"
	"strings"

	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
)

// Catalog is the read side of the product catalog consumed by the cart.
type Catalog interface {
	FetchProducts(ctx context.Context, filter Filter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
}

// Filter narrows FetchProducts. Zero values match everything.
type Filter struct {
	Category     enums.ProductCategory
	Customizable *bool
	Subscription *bool
	Search       string
}

func (f Filter) matches(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Customizable != nil && p.IsCustomizable != *f.Customizable {
		return false
	}
	if f.Subscription != nil && p.HasSubscription != *f.Subscription {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		return strings.Contains(strings.ToLower(p.Name), term)
	}
	return true
}

// MemoryCatalog serves an immutable product list in seed order.
type MemoryCatalog struct {
	products []Product
	byID     map[string]int
}

// NewMemoryCatalog indexes the given products. Duplicate ids are rejected.
func NewMemoryCatalog(products []Product) (*MemoryCatalog, error) {
	c := &MemoryCatalog{
		products: make([]Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, p := range products {
		if p.ID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "duplicate product id %q", p.ID)
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

func (c *MemoryCatalog) FetchProducts(ctx context.Context, filter Filter) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		if filter.matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *MemoryCatalog) GetProduct(ctx context.Context, id string) (Product, error) {
	if err := ctx.Err(); err != nil {
		return Product{}, err
	}
	idx, ok := c.byID[id]
	if !ok {
		return Product{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "product %q not found", id)
	}
	return c.products[idx], nil
}
