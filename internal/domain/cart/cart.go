package cart

import (
	"github.com/shopspring/decimal"
)

// Cart is an insertion-ordered set of line items keyed by item id.
// Every mutation leaves 1 <= RequestedQuantity <= StockCeiling for each item.
type Cart struct {
	items []LineItem
}

func New() *Cart {
	return &Cart{items: make([]LineItem, 0)}
}

// Add merges quantity into the item's line, clamped to stockCeiling. The
// supplied ceiling replaces any older one. Non-positive quantity or ceiling
// leaves the cart untouched and reports false.
func (c *Cart) Add(product Product, stockCeiling, quantity int) bool {
	if quantity < 1 || stockCeiling < 1 || product.ID == "" {
		return false
	}

	if idx := c.indexOf(product.ID); idx >= 0 {
		existing := &c.items[idx]
		existing.RequestedQuantity = clamp(existing.RequestedQuantity+quantity, stockCeiling)
		existing.StockCeiling = stockCeiling
		return true
	}

	c.items = append(c.items, LineItem{
		ItemID:            product.ID,
		UnitPrice:         product.UnitPrice,
		RequestedQuantity: clamp(quantity, stockCeiling),
		StockCeiling:      stockCeiling,
		Attributes:        product.Attributes,
	})
	return true
}

func (c *Cart) Remove(id ItemID) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}

	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// UpdateQuantity never drives a quantity below 1; removal is Remove's job.
func (c *Cart) UpdateQuantity(id ItemID, quantity int) bool {
	if quantity < 1 {
		return false
	}

	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}

	c.items[idx].RequestedQuantity = clamp(quantity, c.items[idx].StockCeiling)
	return true
}

func (c *Cart) Clear() {
	c.items = make([]LineItem, 0)
}

// Retain keeps, for each line item, only the units not yet purchased.
// Ceilings shrink by the purchased units; fully bought lines are dropped.
func (c *Cart) Retain(purchased map[ItemID]int) {
	kept := make([]LineItem, 0, len(c.items))
	for _, li := range c.items {
		bought := purchased[li.ItemID]
		remaining := li.RequestedQuantity - bought
		if remaining < 1 {
			continue
		}

		li.RequestedQuantity = remaining
		li.StockCeiling -= bought
		kept = append(kept, li)
	}
	c.items = kept
}

func (c *Cart) Find(id ItemID) (LineItem, bool) {
	idx := c.indexOf(id)
	if idx < 0 {
		return LineItem{}, false
	}
	return c.items[idx], true
}

// Items returns a copy; callers cannot mutate the cart through it.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) TotalItemCount() int {
	total := 0
	for _, li := range c.items {
		total += li.RequestedQuantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, li := range c.items {
		total = total.Add(li.Subtotal())
	}
	return total
}

func (c *Cart) Clone() *Cart {
	return &Cart{items: c.Items()}
}

func (c *Cart) Equal(other *Cart) bool {
	if other == nil || len(c.items) != len(other.items) {
		return false
	}

	for i := range c.items {
		if !c.items[i].equal(other.items[i]) {
			return false
		}
	}
	return true
}

func (c *Cart) indexOf(id ItemID) int {
	for i, li := range c.items {
		if li.ItemID == id {
			return i
		}
	}
	return -1
}
