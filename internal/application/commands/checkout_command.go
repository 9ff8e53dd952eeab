package commands

import (
	"context"
	"errors"

	"github.com/yuzvak/storefront-cart/internal/application/use_cases"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

type CheckoutCommand struct {
	SessionID string
}

type CheckoutResponse struct {
	Succeeded          int           `json:"succeeded"`
	Failed             int           `json:"failed"`
	Cart               *CartResponse `json:"cart"`
	PersistenceWarning string        `json:"persistence_warning,omitempty"`
}

type CheckoutHandler struct {
	stores   StoreProvider
	checkout *use_cases.CheckoutUseCase
	log      *logger.Logger
}

func NewCheckoutHandler(stores StoreProvider, checkout *use_cases.CheckoutUseCase, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		stores:   stores,
		checkout: checkout,
		log:      log,
	}
}

// Handle runs checkout for the session's cart. When the run aborts on a
// transport failure the partial counts are still returned with the error.
func (h *CheckoutHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*CheckoutResponse, error) {
	store, err := h.stores.Get(ctx, cmd.SessionID)
	if err != nil && (store == nil || !errors.Is(err, domainErrors.ErrPersistence)) {
		return nil, err
	}

	h.log.Info("Processing checkout request", "session_id", cmd.SessionID)

	outcome, err := h.checkout.Checkout(ctx, store)

	resp := &CheckoutResponse{
		Succeeded: outcome.SucceededUnitCount,
		Failed:    outcome.FailedUnitCount,
		Cart:      NewCartResponse(store, ""),
	}

	if err != nil {
		if errors.Is(err, domainErrors.ErrPersistence) {
			resp.PersistenceWarning = err.Error()
			return resp, nil
		}
		return resp, err
	}

	return resp, nil
}
