package customization

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fruit(id string, price string) catalog.Product {
	return catalog.Product{
		ID:        id,
		Name:      strings.ToUpper(id[:1]) + id[1:],
		UnitPrice: decimal.RequireFromString(price),
		Stock:     50,
		Unit:      enums.ProductUnitPiece,
		Category:  enums.ProductCategoryFruit,
	}
}

func testBowl(max int, subs ...catalog.Product) catalog.Product {
	return catalog.Product{
		ID:             "bowl",
		Name:           "Bowl",
		UnitPrice:      decimal.NewFromInt(100),
		Stock:          7,
		Unit:           enums.ProductUnitBowl,
		Category:       enums.ProductCategoryBowl,
		IsCustomizable: true,
		SubProducts:    subs,
		MaxSubProducts: max,
	}
}

func sixFruitBowl() catalog.Product {
	return testBowl(5,
		fruit("apple", "20"),
		fruit("banana", "0"),
		fruit("kiwi", "35"),
		fruit("mango", "40"),
		fruit("papaya", "15"),
		fruit("dragon", "80"),
	)
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, pkgerrors.As(err).Code())
}

func TestPriceOfAddsTenPercentOfPricedAddOns(t *testing.T) {
	t.Parallel()

	bowl := sixFruitBowl()
	selections := []cart.Selection{
		{FruitID: "apple", Quantity: 1},
		{FruitID: "banana", Quantity: 1},
	}
	assert.True(t, PriceOf(bowl, selections).Equal(decimal.NewFromInt(102)))
}

func TestPriceOfDefersRounding(t *testing.T) {
	t.Parallel()

	bowl := testBowl(3, fruit("pom", "45.55"), fruit("kiwi", "0.05"))
	got := PriceOf(bowl, []cart.Selection{{FruitID: "pom", Quantity: 1}, {FruitID: "kiwi", Quantity: 1}})
	assert.Equal(t, "104.56", got.String())
}

func TestToggleSelectionAddsAndRemoves(t *testing.T) {
	t.Parallel()

	bowl := sixFruitBowl()
	current, err := ToggleSelection(bowl, nil, "apple")
	require.NoError(t, err)
	require.Len(t, current, 1)
	assert.Equal(t, cart.Selection{FruitID: "apple", FruitName: "Apple", Quantity: 1}, current[0])

	next, err := ToggleSelection(bowl, current, "apple")
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Len(t, current, 1, "input must not be mutated")
}

func TestToggleSelectionRejectsSixthFruit(t *testing.T) {
	t.Parallel()

	bowl := sixFruitBowl()
	var current []cart.Selection
	for _, id := range []string{"apple", "banana", "kiwi", "mango", "papaya"} {
		var err error
		current, err = ToggleSelection(bowl, current, id)
		require.NoError(t, err)
	}

	next, err := ToggleSelection(bowl, current, "dragon")
	requireCode(t, err, pkgerrors.CodeLimitExceeded)
	assert.Nil(t, next)
	assert.Len(t, current, 5)

	// Removing at the limit still works.
	next, err = ToggleSelection(bowl, current, "kiwi")
	require.NoError(t, err)
	assert.Len(t, next, 4)
}

func TestToggleSelectionRejectsIneligibleFruit(t *testing.T) {
	t.Parallel()

	_, err := ToggleSelection(sixFruitBowl(), nil, "durian")
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestMaterialize(t *testing.T) {
	t.Parallel()

	r := NewResolver(&SequenceGenerator{})
	bowl := sixFruitBowl()

	_, err := r.Materialize(bowl, nil)
	requireCode(t, err, pkgerrors.CodeEmptySelection)

	item, err := r.Materialize(bowl, []cart.Selection{{FruitID: "apple", Quantity: 1}, {FruitID: "kiwi", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "bowl-custom-1", item.ID)
	assert.Equal(t, "Bowl (Customized)", item.Name)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 7, item.StockCeiling)
	assert.Equal(t, "bowl", item.ProductID())
	assert.Equal(t, enums.LineItemKindComposed, item.Kind())
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("105.5")))
	assert.Equal(t, "Kiwi", item.Customization.Selections[1].FruitName)

	again, err := r.Materialize(bowl, []cart.Selection{{FruitID: "apple", Quantity: 1}, {FruitID: "kiwi", Quantity: 1}})
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, again.ID)
}

func TestMaterializeValidatesSelections(t *testing.T) {
	t.Parallel()

	r := NewResolver(nil)
	bowl := testBowl(2, fruit("apple", "20"), fruit("kiwi", "35"), fruit("mango", "40"))

	_, err := r.Materialize(bowl, []cart.Selection{{FruitID: "apple"}, {FruitID: "kiwi"}, {FruitID: "mango"}})
	requireCode(t, err, pkgerrors.CodeLimitExceeded)

	_, err = r.Materialize(bowl, []cart.Selection{{FruitID: "apple"}, {FruitID: "apple"}})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = r.Materialize(bowl, []cart.Selection{{FruitID: "durian"}})
	requireCode(t, err, pkgerrors.CodeNotFound)

	plain := fruit("apple", "20")
	_, err = r.Materialize(plain, []cart.Selection{{FruitID: "apple"}})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestUUIDGeneratorIsUnique(t *testing.T) {
	t.Parallel()

	g := UUIDGenerator{}
	seen := map[string]struct{}{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.NewID("bowl")
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestComposeIgnoresRepeatsAndFeedsLedger(t *testing.T) {
	t.Parallel()

	r := NewResolver(&SequenceGenerator{})
	bowl := sixFruitBowl()

	item, err := r.Compose(bowl, []string{"apple", "banana", "apple"})
	require.NoError(t, err)
	assert.Len(t, item.Customization.Selections, 2)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(102)))

	_, err = r.Compose(bowl, []string{"apple", "banana", "kiwi", "mango", "papaya", "dragon"})
	requireCode(t, err, pkgerrors.CodeLimitExceeded)

	_, err = r.Compose(bowl, nil)
	requireCode(t, err, pkgerrors.CodeEmptySelection)

	l := &cart.Ledger{}
	require.NoError(t, l.Add(item))
	assert.Equal(t, 1, l.QuantityInCartForProduct("bowl"))
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	r := NewResolver(&SequenceGenerator{})
	s, err := r.NewSession(sixFruitBowl())
	require.NoError(t, err)
	assert.Equal(t, 5, s.Remaining())

	require.NoError(t, s.Toggle("apple"))
	require.NoError(t, s.Toggle("kiwi"))
	assert.True(t, s.IsSelected("kiwi"))
	assert.True(t, s.Price().Equal(decimal.RequireFromString("105.5")))

	first, err := s.Materialize()
	require.NoError(t, err)
	second, err := s.Materialize()
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got := s.Selections()
	got[0].FruitID = "tampered"
	assert.True(t, s.IsSelected("apple"))

	s.Reset()
	assert.Empty(t, s.Selections())
	_, err = s.Materialize()
	requireCode(t, err, pkgerrors.CodeEmptySelection)

	_, err = r.NewSession(fruit("apple", "20"))
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestComposeWithDefaultCatalog(t *testing.T) {
	t.Parallel()

	c, err := catalog.LoadDefault()
	require.NoError(t, err)
	bowl, err := c.GetProduct(context.Background(), "bowl-classic")
	require.NoError(t, err)

	item, err := NewResolver(nil).Compose(bowl, []string{"fruit-apple", "fruit-banana"})
	require.NoError(t, err)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(102)))
	assert.True(t, strings.HasPrefix(item.ID, "bowl-classic-custom-"))
}
