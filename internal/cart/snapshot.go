package cart

import (
	"encoding/json"
	"strings"

	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/shopspring/decimal"
)

// Snapshot is an immutable copy of a ledger at one point in time.
type Snapshot struct {
	Items          []LineItem
	TotalItemCount int
	TotalAmount    decimal.Decimal
}

// IsEmpty reports whether the snapshot has no line items.
func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

// OrderKind is subscription when any line item carries a subscription,
// regular otherwise.
func (s Snapshot) OrderKind() enums.OrderKind {
	for _, item := range s.Items {
		if item.Details().HasSubscription {
			return enums.OrderKindSubscription
		}
	}
	return enums.OrderKindRegular
}

// record is the persisted shape of a line item. Field names are part of the
// stored snapshot format and must stay stable.
type record struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	UnitPrice       decimal.Decimal      `json:"unitPrice"`
	Quantity        int                  `json:"quantity"`
	StockCeiling    int                  `json:"stockCeiling"`
	Unit            string               `json:"unit"`
	Category        string               `json:"category"`
	HasSubscription bool                 `json:"hasSubscription"`
	Customization   *customizationRecord `json:"customization,omitempty"`
}

type customizationRecord struct {
	BaseProductID string            `json:"baseProductId"`
	Selections    []selectionRecord `json:"selections"`
}

type selectionRecord struct {
	FruitID   string `json:"fruitId"`
	FruitName string `json:"fruitName"`
	Quantity  int    `json:"quantity"`
}

// EncodeSnapshot serializes line items as an ordered JSON array of records.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	records := make([]record, 0, len(s.Items))
	for _, item := range s.Items {
		ln := item.Details()
		rec := record{
			ID:              ln.ID,
			Name:            ln.Name,
			UnitPrice:       ln.UnitPrice,
			Quantity:        ln.Quantity,
			StockCeiling:    ln.StockCeiling,
			Unit:            string(ln.Unit),
			Category:        string(ln.Category),
			HasSubscription: ln.HasSubscription,
		}
		if c, ok := item.(*Composed); ok {
			custom := &customizationRecord{BaseProductID: c.Customization.BaseProductID}
			for _, sel := range c.Customization.Selections {
				custom.Selections = append(custom.Selections, selectionRecord(sel))
			}
			rec.Customization = custom
		}
		records = append(records, rec)
	}
	return json.Marshal(records)
}

// DecodeSnapshot parses a stored snapshot into a ledger. Any record that fails
// to parse or violates a ledger invariant fails the whole snapshot.
func DecodeSnapshot(data []byte) (*Ledger, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode cart snapshot")
	}
	items := make([]LineItem, 0, len(records))
	for i, rec := range records {
		item, err := rec.toLineItem()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cart snapshot record").
				WithDetails(map[string]any{"index": i})
		}
		items = append(items, item)
	}
	return NewLedger(items...)
}

func (r record) toLineItem() (LineItem, error) {
	unit, err := enums.ParseProductUnit(r.Unit)
	if err != nil {
		return nil, err
	}
	category, err := enums.ParseProductCategory(r.Category)
	if err != nil {
		return nil, err
	}
	ln := Line{
		ID:              r.ID,
		Name:            r.Name,
		UnitPrice:       r.UnitPrice,
		Quantity:        r.Quantity,
		StockCeiling:    r.StockCeiling,
		Unit:            unit,
		Category:        category,
		HasSubscription: r.HasSubscription,
	}
	if r.Customization == nil {
		return &Direct{Line: ln}, nil
	}

	custom := Customization{BaseProductID: r.Customization.BaseProductID}
	for _, sel := range r.Customization.Selections {
		if strings.TrimSpace(sel.FruitID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "selection without fruit id")
		}
		if sel.Quantity != 1 {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "selection %q must have quantity 1", sel.FruitID)
		}
		custom.Selections = append(custom.Selections, Selection(sel))
	}
	return &Composed{Line: ln, Customization: custom}, nil
}
