package customization

import (
	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/catalog"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// Session is one open customization of a base bowl. It is not safe for
// concurrent use.
type Session struct {
	resolver   *Resolver
	base       catalog.Product
	selections []cart.Selection
}

func (r *Resolver) NewSession(base catalog.Product) (*Session, error) {
	if !base.IsCustomizable {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s cannot be customized", base.Name)
	}
	return &Session{resolver: r, base: base}, nil
}

// Toggle flips fruitID. On error the selection set is unchanged.
func (s *Session) Toggle(fruitID string) error {
	next, err := ToggleSelection(s.base, s.selections, fruitID)
	if err != nil {
		return err
	}
	s.selections = next
	return nil
}

func (s *Session) IsSelected(fruitID string) bool {
	for _, sel := range s.selections {
		if sel.FruitID == fruitID {
			return true
		}
	}
	return false
}

func (s *Session) Selections() []cart.Selection {
	return append([]cart.Selection(nil), s.selections...)
}

// Remaining is how many more add-ons can be picked.
func (s *Session) Remaining() int {
	return s.base.MaxSubProducts - len(s.selections)
}

func (s *Session) Price() decimal.Decimal {
	return PriceOf(s.base, s.selections)
}

// Materialize produces a composed item from the current selection. The
// session stays open, so calling it again yields another distinct item.
func (s *Session) Materialize() (*cart.Composed, error) {
	return s.resolver.Materialize(s.base, s.selections)
}

func (s *Session) Reset() {
	s.selections = nil
}
