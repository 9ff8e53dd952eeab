package cart

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
)

// snapshotItem is the stored shape of a line item. Field names follow the
// storefront's original browser storage so existing snapshots stay readable.
type snapshotItem struct {
	ID       ItemID          `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	MaxStock int             `json:"maxStock"`
	Name     string          `json:"name,omitempty"`
	Category string          `json:"category,omitempty"`
}

func Marshal(c *Cart) ([]byte, error) {
	records := make([]snapshotItem, 0, len(c.items))
	for _, li := range c.items {
		records = append(records, snapshotItem{
			ID:       li.ItemID,
			Price:    li.UnitPrice,
			Quantity: li.RequestedQuantity,
			MaxStock: li.StockCeiling,
			Name:     li.Attributes.Name,
			Category: li.Attributes.Category,
		})
	}

	return json.Marshal(records)
}

// Unmarshal decodes a snapshot and re-establishes the cart invariants:
// duplicates keep their first occurrence, lines with a ceiling or quantity
// below 1 are dropped and quantities are clamped to their ceiling.
func Unmarshal(data []byte) (*Cart, error) {
	var records []snapshotItem
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrSnapshotCorrupt, err)
	}

	return FromItems(toLineItems(records)), nil
}

func FromItems(items []LineItem) *Cart {
	c := New()
	for _, li := range items {
		li.RequestedQuantity = clamp(li.RequestedQuantity, li.StockCeiling)
		if !li.valid() || c.indexOf(li.ItemID) >= 0 {
			continue
		}
		c.items = append(c.items, li)
	}
	return c
}

func toLineItems(records []snapshotItem) []LineItem {
	items := make([]LineItem, 0, len(records))
	for _, r := range records {
		items = append(items, LineItem{
			ItemID:            r.ID,
			UnitPrice:         r.Price,
			RequestedQuantity: r.Quantity,
			StockCeiling:      r.MaxStock,
			Attributes: DisplayAttributes{
				Name:     r.Name,
				Category: r.Category,
			},
		})
	}
	return items
}
