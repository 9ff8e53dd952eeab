package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/yuzvak/storefront-cart/internal/application/ports"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
)

// sweetID accepts both numeric and string ids.
type sweetID string

func (id *sweetID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = sweetID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid sweet id %s", data)
	}
	*id = sweetID(n.String())
	return nil
}

type sweetResponse struct {
	ID       sweetID         `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (s sweetResponse) toCatalogItem() ports.CatalogItem {
	return ports.CatalogItem{
		ID:       string(s.ID),
		Name:     s.Name,
		Category: s.Category,
		Price:    s.Price,
		Quantity: s.Quantity,
	}
}

type purchaseResponse struct {
	Msg               string `json:"msg"`
	RemainingQuantity int    `json:"remaining_quantity"`
}

type restockRequest struct {
	Amount int `json:"amount"`
}

type restockResponse struct {
	Msg         string `json:"msg"`
	NewQuantity int    `json:"new_quantity"`
}

func sweetPath(id string, action string) string {
	p := "/api/sweets/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

// PurchaseOneUnit buys a single unit of itemID. Any 2xx answer is a sale,
// even when its body is unreadable. Every failure other than an unreachable
// service wraps ErrUnitPurchaseFailed.
func (c *Client) PurchaseOneUnit(ctx context.Context, itemID string) error {
	var resp purchaseResponse
	err := c.do(ctx, "purchase", http.MethodPost, sweetPath(itemID, "purchase"), nil, nil, &resp, domainErrors.ErrOutOfStock)
	if errors.Is(err, errUndecodableBody) {
		c.logger.Warn("Unit purchased, response body unreadable", "item_id", itemID, "error", err)
		return nil
	}
	if err != nil {
		if errors.Is(err, domainErrors.ErrServiceUnavailable) || errors.Is(err, domainErrors.ErrUnitPurchaseFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", domainErrors.ErrUnitPurchaseFailed, err)
	}

	c.logger.Debug("Unit purchased", "item_id", itemID, "remaining_quantity", resp.RemainingQuantity)
	return nil
}

func (c *Client) ListItems(ctx context.Context, skip, limit int) ([]ports.CatalogItem, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))

	var resp []sweetResponse
	if err := c.do(ctx, "list", http.MethodGet, "/api/sweets", query, nil, &resp, domainErrors.ErrInvalidRequest); err != nil {
		return nil, err
	}

	return toCatalogItems(resp), nil
}

func (c *Client) SearchItems(ctx context.Context, q ports.SearchQuery) ([]ports.CatalogItem, error) {
	query := url.Values{}
	if q.Q != "" {
		query.Set("q", q.Q)
	}
	if q.Category != "" {
		query.Set("category", q.Category)
	}
	if q.PriceMin != nil {
		query.Set("price_min", q.PriceMin.String())
	}
	if q.PriceMax != nil {
		query.Set("price_max", q.PriceMax.String())
	}

	var resp []sweetResponse
	if err := c.do(ctx, "search", http.MethodGet, "/api/sweets/search", query, nil, &resp, domainErrors.ErrInvalidRequest); err != nil {
		return nil, err
	}

	return toCatalogItems(resp), nil
}

func (c *Client) GetItem(ctx context.Context, id string) (*ports.CatalogItem, error) {
	var resp sweetResponse
	if err := c.do(ctx, "get", http.MethodGet, sweetPath(id, ""), nil, nil, &resp, domainErrors.ErrInvalidRequest); err != nil {
		return nil, err
	}

	item := resp.toCatalogItem()
	return &item, nil
}

// Restock adds amount units to an item and returns its new stock level.
// The API only allows this for admin tokens.
func (c *Client) Restock(ctx context.Context, id string, amount int) (int, error) {
	var resp restockResponse
	err := c.do(ctx, "restock", http.MethodPost, sweetPath(id, "restock"), nil, restockRequest{Amount: amount}, &resp, domainErrors.ErrInvalidRequest)
	if err != nil {
		return 0, err
	}

	c.logger.Info("Item restocked", "item_id", id, "amount", amount, "new_quantity", resp.NewQuantity)
	return resp.NewQuantity, nil
}

func toCatalogItems(resp []sweetResponse) []ports.CatalogItem {
	items := make([]ports.CatalogItem, 0, len(resp))
	for _, s := range resp {
		items = append(items, s.toCatalogItem())
	}
	return items
}
