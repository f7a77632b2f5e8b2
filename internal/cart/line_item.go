package cart

import (
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

// Line holds the fields shared by every cart entry. UnitPrice already includes
// any customization premium.
type Line struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	UnitPrice       decimal.Decimal       `json:"unit_price"`
	Quantity        int                   `json:"quantity"`
	StockCeiling    int                   `json:"stock_ceiling"`
	Unit            enums.ProductUnit     `json:"unit"`
	Category        enums.ProductCategory `json:"category"`
	HasSubscription bool                  `json:"has_subscription"`
}

// Subtotal is UnitPrice × Quantity, unrounded.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Selection is one chosen add-on of a composed item. Selection is presence
// based, so Quantity is always 1.
type Selection struct {
	FruitID   string `json:"fruit_id"`
	FruitName string `json:"fruit_name"`
	Quantity  int    `json:"quantity"`
}

// Customization ties a composed item back to the bowl it was built from.
type Customization struct {
	BaseProductID string      `json:"base_product_id"`
	Selections    []Selection `json:"selections"`
}

// LineItem is either a *Direct or a *Composed. The set is closed: only this
// package can implement it.
type LineItem interface {
	Kind() enums.LineItemKind
	// ProductID is the catalog product the entry counts against.
	ProductID() string
	Details() Line
	line() *Line
	clone() LineItem
}

// Direct references an atomic product by the product's own id. At most one
// exists per product.
type Direct struct {
	Line
}

// NewDirect builds a direct candidate for p. A non-positive qty defaults to 1.
func NewDirect(p catalog.Product, qty int) *Direct {
	if qty <= 0 {
		qty = 1
	}
	return &Direct{Line: Line{
		ID:              p.ID,
		Name:            p.Name,
		UnitPrice:       p.UnitPrice,
		Quantity:        qty,
		StockCeiling:    p.Stock,
		Unit:            p.Unit,
		Category:        p.Category,
		HasSubscription: p.HasSubscription,
	}}
}

func (d *Direct) Kind() enums.LineItemKind { return enums.LineItemKindDirect }
func (d *Direct) ProductID() string        { return d.ID }
func (d *Direct) Details() Line            { return d.Line }
func (d *Direct) line() *Line              { return &d.Line }
func (d *Direct) clone() LineItem          { c := *d; return &c }

// Composed is a base product plus a set of add-ons. Its id is synthetic and
// unique per creation, so two customizations never merge.
type Composed struct {
	Line
	Customization Customization `json:"customization"`
}

func (c *Composed) Kind() enums.LineItemKind { return enums.LineItemKindComposed }
func (c *Composed) ProductID() string        { return c.Customization.BaseProductID }
func (c *Composed) Details() Line            { return c.Line }
func (c *Composed) line() *Line              { return &c.Line }

func (c *Composed) clone() LineItem {
	out := *c
	out.Customization.Selections = append([]Selection(nil), c.Customization.Selections...)
	return &out
}
