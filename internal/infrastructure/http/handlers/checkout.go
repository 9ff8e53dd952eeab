package handlers

import (
	"errors"
	"net/http"

	"github.com/yuzvak/storefront-cart/internal/application/commands"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/http/middleware"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/http/response"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

type CheckoutHandler struct {
	checkout *commands.CheckoutHandler
	log      *logger.Logger
}

func NewCheckoutHandler(checkout *commands.CheckoutHandler, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		log:      log,
	}
}

type checkoutFailureResponse struct {
	response.ErrorResponse
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

func (h *CheckoutHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionID(r.Context())

	resp, err := h.checkout.Handle(r.Context(), commands.CheckoutCommand{SessionID: sessionID})
	if err != nil {
		if resp != nil && errors.Is(err, domainErrors.ErrCheckoutTransport) {
			h.log.Error("Checkout aborted", "session_id", sessionID, "error", err)
			status, body := response.MapDomainError(err)
			response.WriteJSON(w, status, checkoutFailureResponse{
				ErrorResponse: *body,
				Succeeded:     resp.Succeeded,
				Failed:        resp.Failed,
			})
			return
		}

		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, resp)
}
