package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

type CatalogItem struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	Quantity int
}

type SearchQuery struct {
	Q        string
	Category string
	PriceMin *decimal.Decimal
	PriceMax *decimal.Decimal
}

type Catalog interface {
	ListItems(ctx context.Context, skip, limit int) ([]CatalogItem, error)
	GetItem(ctx context.Context, id string) (*CatalogItem, error)
	SearchItems(ctx context.Context, query SearchQuery) ([]CatalogItem, error)
}

type InventoryAdmin interface {
	Restock(ctx context.Context, id string, amount int) (int, error)
}
