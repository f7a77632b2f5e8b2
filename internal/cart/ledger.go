package cart

import (
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// Ledger is the in-memory list of cart entries in insertion order plus the
// aggregates derived from it. Aggregates are recomputed after every mutation
// and never set directly. A Ledger is not safe for concurrent use.
type Ledger struct {
	items          []LineItem
	totalItemCount int
	totalAmount    decimal.Decimal
}

// NewLedger returns a ledger seeded with items, validating the same invariants
// mutations enforce.
func NewLedger(items ...LineItem) (*Ledger, error) {
	l := &Ledger{}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nil line item")
		}
		if err := validateItem(item); err != nil {
			return nil, err
		}
		ln := item.line()
		if ln.Quantity > ln.StockCeiling {
			return nil, stockExceeded(*ln, ln.Quantity)
		}
		if _, dup := seen[ln.ID]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "duplicate line item %q", ln.ID)
		}
		seen[ln.ID] = struct{}{}
		l.items = append(l.items, item.clone())
	}
	l.recompute()
	return l, nil
}

// Add inserts a candidate. A direct candidate whose id is already present is
// merged by incrementing quantity; a composed candidate is always inserted.
// Exceeding the stock ceiling fails with STOCK_EXCEEDED and leaves the ledger
// untouched.
func (l *Ledger) Add(item LineItem) error {
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "line item is required")
	}
	candidate := item.clone()
	ln := candidate.line()
	if ln.Quantity <= 0 {
		ln.Quantity = 1
	}
	if err := validateItem(candidate); err != nil {
		return err
	}

	existing, _ := l.find(ln.ID)
	switch candidate.(type) {
	case *Direct:
		if existing != nil {
			if _, ok := existing.(*Direct); !ok {
				return pkgerrors.Newf(pkgerrors.CodeConflict, "line item %q is not a direct item", ln.ID)
			}
			current := existing.line()
			want := current.Quantity + ln.Quantity
			if want > current.StockCeiling {
				return stockExceeded(*current, want)
			}
			current.Quantity = want
			l.recompute()
			return nil
		}
	case *Composed:
		if existing != nil {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "line item %q already exists", ln.ID)
		}
	}
	if ln.Quantity > ln.StockCeiling {
		return stockExceeded(*ln, ln.Quantity)
	}
	l.items = append(l.items, candidate)
	l.recompute()
	return nil
}

// SetQuantity sets the quantity of a line item. qty <= 0 removes it.
func (l *Ledger) SetQuantity(id string, qty int) error {
	existing, idx := l.find(id)
	if existing == nil {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "line item %q not in cart", id)
	}
	if qty <= 0 {
		l.removeAt(idx)
		return nil
	}
	ln := existing.line()
	if qty > ln.StockCeiling {
		return stockExceeded(*ln, qty)
	}
	ln.Quantity = qty
	l.recompute()
	return nil
}

// Remove deletes a line item. Removing an absent id is a no-op; the return
// value reports whether anything changed.
func (l *Ledger) Remove(id string) bool {
	_, idx := l.find(id)
	if idx < 0 {
		return false
	}
	l.removeAt(idx)
	return true
}

func (l *Ledger) Clear() {
	l.items = nil
	l.recompute()
}

// QuantityInCartForProduct sums the direct entry for productID and every
// composed entry built on it.
func (l *Ledger) QuantityInCartForProduct(productID string) int {
	total := 0
	for _, item := range l.items {
		if item.ProductID() == productID {
			total += item.line().Quantity
		}
	}
	return total
}

// DecrementMostRecentComposed removes one unit from the newest composed item
// built on productID, falling back to the direct item. It reports whether
// anything changed.
func (l *Ledger) DecrementMostRecentComposed(productID string) bool {
	target := -1
	for i := len(l.items) - 1; i >= 0; i-- {
		if c, ok := l.items[i].(*Composed); ok && c.Customization.BaseProductID == productID {
			target = i
			break
		}
	}
	if target < 0 {
		for i, item := range l.items {
			if d, ok := item.(*Direct); ok && d.ID == productID {
				target = i
				break
			}
		}
	}
	if target < 0 {
		return false
	}

	ln := l.items[target].line()
	if ln.Quantity <= 1 {
		l.removeAt(target)
		return true
	}
	ln.Quantity--
	l.recompute()
	return true
}

// Item returns a copy of the line item with the given id.
func (l *Ledger) Item(id string) (LineItem, bool) {
	item, _ := l.find(id)
	if item == nil {
		return nil, false
	}
	return item.clone(), true
}

func (l *Ledger) Len() int { return len(l.items) }

func (l *Ledger) TotalItemCount() int { return l.totalItemCount }

func (l *Ledger) TotalAmount() decimal.Decimal { return l.totalAmount }

// Snapshot returns a deep copy of the ledger contents and aggregates.
func (l *Ledger) Snapshot() Snapshot {
	items := make([]LineItem, len(l.items))
	for i, item := range l.items {
		items[i] = item.clone()
	}
	return Snapshot{
		Items:          items,
		TotalItemCount: l.totalItemCount,
		TotalAmount:    l.totalAmount,
	}
}

func (l *Ledger) find(id string) (LineItem, int) {
	for i, item := range l.items {
		if item.line().ID == id {
			return item, i
		}
	}
	return nil, -1
}

func (l *Ledger) removeAt(idx int) {
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	l.recompute()
}

func (l *Ledger) recompute() {
	count := 0
	amount := decimal.Zero
	for _, item := range l.items {
		ln := item.line()
		count += ln.Quantity
		amount = amount.Add(ln.Subtotal())
	}
	l.totalItemCount = count
	l.totalAmount = amount
}

func validateItem(item LineItem) error {
	if err := validateLine(*item.line()); err != nil {
		return err
	}
	if c, ok := item.(*Composed); ok {
		if c.Customization.BaseProductID == "" {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "line item %q needs a base product", c.ID)
		}
		if len(c.Customization.Selections) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptySelection, "a customized item needs at least one add-on")
		}
	}
	return nil
}

func validateLine(ln Line) error {
	if ln.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line item id is required")
	}
	if ln.UnitPrice.IsNegative() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "line item %q has a negative price", ln.ID)
	}
	if ln.Quantity <= 0 {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "line item %q must have a positive quantity", ln.ID)
	}
	return nil
}

func stockExceeded(ln Line, requested int) *pkgerrors.Error {
	return pkgerrors.Newf(pkgerrors.CodeStockExceeded, "only %d of %s available", ln.StockCeiling, ln.Name).
		WithDetails(map[string]any{
			"line_item_id": ln.ID,
			"requested":    requested,
			"stock":        ln.StockCeiling,
		})
}
