package controllers

import (
	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/internal/checkout"
	"github.com/freshbowl/storefront/internal/handoff"
	"github.com/freshbowl/storefront/pkg/enums"
	"github.com/shopspring/decimal"
)

type productResponse struct {
	catalog.Product
	DisplayPrice string `json:"display_price"`
	InStock      bool   `json:"in_stock"`
}

type productListResponse struct {
	Products   []productResponse `json:"products"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func newProductResponse(p catalog.Product) productResponse {
	return productResponse{
		Product:      p,
		DisplayPrice: handoff.FormatAmount(enums.CurrencyINR, p.UnitPrice),
		InStock:      p.InStock(),
	}
}

type lineItemResponse struct {
	cart.Line
	Kind          enums.LineItemKind  `json:"kind"`
	ProductID     string              `json:"product_id"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Customization *cart.Customization `json:"customization,omitempty"`
}

type cartResponse struct {
	CartID         string             `json:"cart_id"`
	Items          []lineItemResponse `json:"items"`
	TotalItemCount int                `json:"total_item_count"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	DisplayTotal   string             `json:"display_total"`
	OrderKind      enums.OrderKind    `json:"order_kind"`
}

func newCartResponse(cartID string, snap cart.Snapshot) cartResponse {
	items := make([]lineItemResponse, 0, len(snap.Items))
	for _, item := range snap.Items {
		ln := item.Details()
		resp := lineItemResponse{
			Line:      ln,
			Kind:      item.Kind(),
			ProductID: item.ProductID(),
			Subtotal:  ln.Subtotal(),
		}
		if composed, ok := item.(*cart.Composed); ok {
			c := composed.Customization
			resp.Customization = &c
		}
		items = append(items, resp)
	}
	return cartResponse{
		CartID:         cartID,
		Items:          items,
		TotalItemCount: snap.TotalItemCount,
		TotalAmount:    snap.TotalAmount,
		DisplayTotal:   handoff.FormatAmount(enums.CurrencyINR, snap.TotalAmount),
		OrderKind:      snap.OrderKind(),
	}
}

type checkoutResponse struct {
	checkout.Result
	DisplayTotal string `json:"display_total"`
}
