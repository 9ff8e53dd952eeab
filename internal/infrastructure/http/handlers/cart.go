package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yuzvak/storefront-cart/internal/application/commands"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/http/middleware"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/http/response"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

type CartHandler struct {
	carts *commands.CartHandler
	log   *logger.Logger
}

func NewCartHandler(carts *commands.CartHandler, log *logger.Logger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

type addItemRequest struct {
	Item     commands.ItemInput `json:"item"`
	Stock    int                `json:"stock"`
	Quantity *int               `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	resp, err := h.carts.Show(r.Context(), middleware.SessionID(r.Context()))
	h.write(w, resp, err)
}

func (h *CartHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteValidationError(w, "Invalid request body", map[string]string{"body": err.Error()})
		return
	}

	errors := make(map[string]string)
	if req.Item.ID == "" {
		errors["item.id"] = "item.id is required"
	}
	if req.Item.Price.IsNegative() {
		errors["item.price"] = "item.price cannot be negative"
	}
	if req.Stock < 1 {
		errors["stock"] = "stock must be at least 1"
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		errors["quantity"] = "quantity must be at least 1"
	}
	if len(errors) > 0 {
		h.log.Warn("Add item validation failed", "errors", errors)
		response.WriteValidationError(w, "Validation failed", errors)
		return
	}

	resp, err := h.carts.AddItem(r.Context(), commands.AddItemCommand{
		SessionID: middleware.SessionID(r.Context()),
		Item:      req.Item,
		Stock:     req.Stock,
		Quantity:  quantity,
	})
	h.write(w, resp, err)
}

func (h *CartHandler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{"quantity": "quantity is required"})
		return
	}

	resp, err := h.carts.UpdateQuantity(r.Context(), commands.UpdateQuantityCommand{
		SessionID: middleware.SessionID(r.Context()),
		ItemID:    mux.Vars(r)["id"],
		Quantity:  *req.Quantity,
	})
	h.write(w, resp, err)
}

func (h *CartHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	resp, err := h.carts.RemoveItem(r.Context(), commands.RemoveItemCommand{
		SessionID: middleware.SessionID(r.Context()),
		ItemID:    mux.Vars(r)["id"],
	})
	h.write(w, resp, err)
}

func (h *CartHandler) HandleClearCart(w http.ResponseWriter, r *http.Request) {
	resp, err := h.carts.Clear(r.Context(), middleware.SessionID(r.Context()))
	h.write(w, resp, err)
}

func (h *CartHandler) HandleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	resp, err := h.carts.ToggleVisibility(r.Context(), middleware.SessionID(r.Context()))
	h.write(w, resp, err)
}

func (h *CartHandler) write(w http.ResponseWriter, resp *commands.CartResponse, err error) {
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, resp)
}
