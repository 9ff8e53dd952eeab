package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

type ItemID string

// DisplayAttributes travel with a line item untouched; the cart never reads them.
type DisplayAttributes struct {
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
}

// Product is what the shopper picked from the catalog, priced at the moment of adding.
type Product struct {
	ID         ItemID
	UnitPrice  decimal.Decimal
	Attributes DisplayAttributes
}

func NewProduct(id ItemID, unitPrice decimal.Decimal, attrs DisplayAttributes) (Product, error) {
	if id == "" {
		return Product{}, errors.New("item id cannot be empty")
	}

	if unitPrice.IsNegative() {
		return Product{}, errors.New("unit price cannot be negative")
	}

	return Product{
		ID:         id,
		UnitPrice:  unitPrice,
		Attributes: attrs,
	}, nil
}

type LineItem struct {
	ItemID            ItemID
	UnitPrice         decimal.Decimal
	RequestedQuantity int
	StockCeiling      int
	Attributes        DisplayAttributes
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.RequestedQuantity)))
}

func (li LineItem) AtCeiling() bool {
	return li.RequestedQuantity >= li.StockCeiling
}

func (li LineItem) valid() bool {
	return li.ItemID != "" && li.StockCeiling >= 1 && li.RequestedQuantity >= 1 && !li.UnitPrice.IsNegative()
}

func (li LineItem) equal(other LineItem) bool {
	return li.ItemID == other.ItemID &&
		li.UnitPrice.Equal(other.UnitPrice) &&
		li.RequestedQuantity == other.RequestedQuantity &&
		li.StockCeiling == other.StockCeiling &&
		li.Attributes == other.Attributes
}

func clamp(quantity, ceiling int) int {
	if quantity > ceiling {
		return ceiling
	}
	return quantity
}
