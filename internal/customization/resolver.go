package customization

import (
	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/catalog"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// addOnRate is the share of an add-on's list price charged on top of the base.
var addOnRate = decimal.New(1, -1)

// Resolver prices and materializes customized bowls.
type Resolver struct {
	ids IDGenerator
}

// NewResolver returns a resolver. A nil generator falls back to UUIDs.
func NewResolver(ids IDGenerator) *Resolver {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &Resolver{ids: ids}
}

// ToggleSelection removes fruitID when already selected and adds it
// otherwise. Adding past base.MaxSubProducts fails with LIMIT_EXCEEDED. The
// input slice is never modified.
func ToggleSelection(base catalog.Product, current []cart.Selection, fruitID string) ([]cart.Selection, error) {
	for i, sel := range current {
		if sel.FruitID == fruitID {
			out := make([]cart.Selection, 0, len(current)-1)
			out = append(out, current[:i]...)
			return append(out, current[i+1:]...), nil
		}
	}

	fruit, ok := base.SubProduct(fruitID)
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "%q is not an add-on for %s", fruitID, base.Name)
	}
	if len(current) >= base.MaxSubProducts {
		return nil, pkgerrors.Newf(pkgerrors.CodeLimitExceeded, "you can pick up to %d add-ons", base.MaxSubProducts).
			WithDetails(map[string]any{"max_sub_products": base.MaxSubProducts})
	}

	out := make([]cart.Selection, 0, len(current)+1)
	out = append(out, current...)
	return append(out, cart.Selection{FruitID: fruit.ID, FruitName: fruit.Name, Quantity: 1}), nil
}

// PriceOf is the base price plus 10% of each priced add-on. Free add-ons add
// nothing. The result is unrounded.
func PriceOf(base catalog.Product, selections []cart.Selection) decimal.Decimal {
	amount := base.UnitPrice
	for _, sel := range selections {
		fruit, ok := base.SubProduct(sel.FruitID)
		if !ok || !fruit.UnitPrice.IsPositive() {
			continue
		}
		amount = amount.Add(fruit.UnitPrice.Mul(addOnRate))
	}
	return amount
}

// Materialize builds a new composed line item with quantity 1. Every call
// yields a fresh id, so repeated customizations stay separate entries.
func (r *Resolver) Materialize(base catalog.Product, selections []cart.Selection) (*cart.Composed, error) {
	if !base.IsCustomizable {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s cannot be customized", base.Name)
	}
	if len(selections) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptySelection, "select at least one add-on")
	}
	if len(selections) > base.MaxSubProducts {
		return nil, pkgerrors.Newf(pkgerrors.CodeLimitExceeded, "you can pick up to %d add-ons", base.MaxSubProducts)
	}

	seen := make(map[string]struct{}, len(selections))
	picked := make([]cart.Selection, 0, len(selections))
	for _, sel := range selections {
		fruit, ok := base.SubProduct(sel.FruitID)
		if !ok {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "%q is not an add-on for %s", sel.FruitID, base.Name)
		}
		if _, dup := seen[fruit.ID]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s selected twice", fruit.Name)
		}
		seen[fruit.ID] = struct{}{}
		picked = append(picked, cart.Selection{FruitID: fruit.ID, FruitName: fruit.Name, Quantity: 1})
	}

	return &cart.Composed{
		Line: cart.Line{
			ID:              r.ids.NewID(base.ID),
			Name:            base.Name + " (Customized)",
			UnitPrice:       PriceOf(base, picked),
			Quantity:        1,
			StockCeiling:    base.Stock,
			Unit:            base.Unit,
			Category:        base.Category,
			HasSubscription: base.HasSubscription,
		},
		Customization: cart.Customization{
			BaseProductID: base.ID,
			Selections:    picked,
		},
	}, nil
}

// Compose selects fruitIDs in order, ignoring repeats, and materializes the
// result.
func (r *Resolver) Compose(base catalog.Product, fruitIDs []string) (*cart.Composed, error) {
	session, err := r.NewSession(base)
	if err != nil {
		return nil, err
	}
	for _, id := range fruitIDs {
		if session.IsSelected(id) {
			continue
		}
		if err := session.Toggle(id); err != nil {
			return nil, err
		}
	}
	return session.Materialize()
}
