package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yuzvak/storefront-cart/internal/application/cartstore"
	"github.com/yuzvak/storefront-cart/internal/domain/cart"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// StoreProvider resolves a session to its cart store.
type StoreProvider interface {
	Get(ctx context.Context, sessionID string) (*cartstore.Store, error)
}

type ItemInput struct {
	ID       string          `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
}

type AddItemCommand struct {
	SessionID string
	Item      ItemInput
	Stock     int
	Quantity  int
}

type UpdateQuantityCommand struct {
	SessionID string
	ItemID    string
	Quantity  int
}

type RemoveItemCommand struct {
	SessionID string
	ItemID    string
}

type LineItemResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	MaxStock int             `json:"max_stock"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	Items              []LineItemResponse `json:"items"`
	TotalItems         int                `json:"total_items"`
	TotalPrice         decimal.Decimal    `json:"total_price"`
	Visible            bool               `json:"visible"`
	CheckoutInProgress bool               `json:"checkout_in_progress"`
	PersistenceWarning string             `json:"persistence_warning,omitempty"`
}

// CartHandler applies shopper commands to session carts. A change that was
// applied but could not be saved comes back as a warning, not an error.
type CartHandler struct {
	stores StoreProvider
	log    *logger.Logger
}

func NewCartHandler(stores StoreProvider, log *logger.Logger) *CartHandler {
	return &CartHandler{
		stores: stores,
		log:    log,
	}
}

func (h *CartHandler) Show(ctx context.Context, sessionID string) (*CartResponse, error) {
	store, warning, err := h.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewCartResponse(store, warning), nil
}

func (h *CartHandler) AddItem(ctx context.Context, cmd AddItemCommand) (*CartResponse, error) {
	product, err := cart.NewProduct(cart.ItemID(cmd.Item.ID), cmd.Item.Price, cart.DisplayAttributes{
		Name:     cmd.Item.Name,
		Category: cmd.Item.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidRequest, err)
	}

	return h.mutate(ctx, cmd.SessionID, "add_item", func(store *cartstore.Store) error {
		return store.AddItem(ctx, product, cmd.Stock, cmd.Quantity)
	})
}

func (h *CartHandler) UpdateQuantity(ctx context.Context, cmd UpdateQuantityCommand) (*CartResponse, error) {
	return h.mutate(ctx, cmd.SessionID, "update_quantity", func(store *cartstore.Store) error {
		return store.UpdateQuantity(ctx, cart.ItemID(cmd.ItemID), cmd.Quantity)
	})
}

func (h *CartHandler) RemoveItem(ctx context.Context, cmd RemoveItemCommand) (*CartResponse, error) {
	return h.mutate(ctx, cmd.SessionID, "remove_item", func(store *cartstore.Store) error {
		return store.RemoveItem(ctx, cart.ItemID(cmd.ItemID))
	})
}

func (h *CartHandler) Clear(ctx context.Context, sessionID string) (*CartResponse, error) {
	return h.mutate(ctx, sessionID, "clear", func(store *cartstore.Store) error {
		return store.Clear(ctx)
	})
}

func (h *CartHandler) ToggleVisibility(ctx context.Context, sessionID string) (*CartResponse, error) {
	return h.mutate(ctx, sessionID, "toggle_visibility", func(store *cartstore.Store) error {
		store.ToggleVisibility()
		return nil
	})
}

func (h *CartHandler) mutate(ctx context.Context, sessionID, op string, apply func(*cartstore.Store) error) (*CartResponse, error) {
	store, warning, err := h.store(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := apply(store); err != nil {
		if !errors.Is(err, domainErrors.ErrPersistence) {
			h.log.Warn("Cart command rejected", "operation", op, "session_id", sessionID, "error", err)
			return nil, err
		}
		warning = err.Error()
	}

	return NewCartResponse(store, warning), nil
}

func (h *CartHandler) store(ctx context.Context, sessionID string) (*cartstore.Store, string, error) {
	store, err := h.stores.Get(ctx, sessionID)
	if err != nil {
		if store != nil && errors.Is(err, domainErrors.ErrPersistence) {
			return store, err.Error(), nil
		}
		return nil, "", err
	}
	return store, "", nil
}

func NewCartResponse(store *cartstore.Store, warning string) *CartResponse {
	view := store.View()

	items := make([]LineItemResponse, 0, len(view.Items))
	for _, li := range view.Items {
		items = append(items, LineItemResponse{
			ID:       string(li.ItemID),
			Name:     li.Attributes.Name,
			Category: li.Attributes.Category,
			Price:    li.UnitPrice,
			Quantity: li.RequestedQuantity,
			MaxStock: li.StockCeiling,
			Subtotal: li.Subtotal(),
		})
	}

	return &CartResponse{
		Items:              items,
		TotalItems:         view.TotalItemCount,
		TotalPrice:         view.TotalPrice,
		Visible:            view.Visible,
		CheckoutInProgress: view.CheckoutInProgress,
		PersistenceWarning: warning,
	}
}
