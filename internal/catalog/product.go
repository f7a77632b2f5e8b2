package catalog

import (
	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is a read-only catalog record. SubProducts and MaxSubProducts are only
// meaningful when IsCustomizable is set.
type Product struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	UnitPrice       decimal.Decimal       `json:"unit_price"`
	Stock           int                   `json:"stock"`
	Unit            enums.ProductUnit     `json:"unit"`
	Category        enums.ProductCategory `json:"category"`
	Images          []string              `json:"images,omitempty"`
	HasSubscription bool                  `json:"has_subscription"`
	IsCustomizable  bool                  `json:"is_customizable"`
	SubProducts     []Product             `json:"sub_products,omitempty"`
	MaxSubProducts  int                   `json:"max_sub_products,omitempty"`
}

// SubProduct returns the eligible add-on with the given id.
func (p Product) SubProduct(id string) (Product, bool) {
	for _, sub := range p.SubProducts {
		if sub.ID == id {
			return sub, true
		}
	}
	return Product{}, false
}

// InStock reports whether at least one unit can be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}
