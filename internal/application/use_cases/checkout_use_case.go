package use_cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuzvak/storefront-cart/internal/application/ports"
	"github.com/yuzvak/storefront-cart/internal/domain/cart"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
	"github.com/yuzvak/storefront-cart/internal/pkg/generator"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// CheckoutCart is the part of a cart store a checkout run drives.
type CheckoutCart interface {
	BeginCheckout() ([]cart.LineItem, error)
	SettleCheckout(ctx context.Context, policy cart.ClearPolicy, purchased map[cart.ItemID]int) error
	EndCheckout()
}

type CheckoutUseCase struct {
	purchaseSvc ports.PurchaseService
	log         *logger.Logger
	codeGen     *generator.CodeGenerator

	clearPolicy cart.ClearPolicy
	unitTimeout time.Duration
}

type CheckoutOption func(*CheckoutUseCase)

func WithClearPolicy(policy cart.ClearPolicy) CheckoutOption {
	return func(uc *CheckoutUseCase) {
		uc.clearPolicy = policy
	}
}

// WithUnitTimeout bounds each purchase call. An expired call counts as a
// failed unit, not as a transport failure.
func WithUnitTimeout(d time.Duration) CheckoutOption {
	return func(uc *CheckoutUseCase) {
		uc.unitTimeout = d
	}
}

func NewCheckoutUseCase(purchaseSvc ports.PurchaseService, log *logger.Logger, opts ...CheckoutOption) *CheckoutUseCase {
	uc := &CheckoutUseCase{
		purchaseSvc: purchaseSvc,
		log:         log,
		codeGen:     generator.NewCodeGenerator(),
		clearPolicy: cart.ClearAll,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Checkout buys every requested unit one call at a time, in cart order.
// The first failed unit of an item ends that item; later items still run.
//
// When at least one unit was bought the cart is settled with the clear
// policy. A run the purchase service cannot serve at all stops at once, leaves
// the cart as it was and returns the partial outcome with an error wrapping
// ErrCheckoutTransport. A cart already in checkout yields
// ErrCheckoutInProgress without any purchase call. In every case the cart
// view is closed and the hold released before returning.
//
// Once started, a run is not cancellable: cancelling ctx does not stop the
// loop or skip the settle. Only the per-unit timeout bounds each call.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, store CheckoutCart) (cart.CheckoutOutcome, error) {
	items, err := store.BeginCheckout()
	if err != nil {
		monitoring.RecordCheckoutRun(monitoring.CheckoutResultRejected)
		uc.log.Warn("Checkout rejected", "error", err)
		return cart.CheckoutOutcome{}, err
	}
	defer store.EndCheckout()

	defer monitoring.TimeCheckoutRun()()

	runCtx := context.WithoutCancel(ctx)
	runID := uc.codeGen.GenerateRunID()
	log := uc.log.WithCorrelationID(runID)
	log.Info("Checkout started", "line_items", len(items))

	var outcome cart.CheckoutOutcome
	purchased := make(map[cart.ItemID]int, len(items))

	for _, li := range items {
		for unit := 1; unit <= li.RequestedQuantity; unit++ {
			err := uc.purchaseUnit(runCtx, li.ItemID)
			if err == nil {
				outcome.SucceededUnitCount++
				purchased[li.ItemID]++
				monitoring.RecordUnitPurchase(true)
				continue
			}

			if isTransportFailure(err) {
				monitoring.RecordCheckoutRun(monitoring.CheckoutResultTransport)
				log.Error("Checkout aborted, purchase service unreachable",
					"error", err,
					"item_id", li.ItemID,
					"succeeded", outcome.SucceededUnitCount,
					"failed", outcome.FailedUnitCount,
				)
				return outcome, fmt.Errorf("%w: %w", domainErrors.ErrCheckoutTransport, err)
			}

			outcome.FailedUnitCount++
			monitoring.RecordUnitPurchase(false)
			log.Warn("Unit purchase failed, skipping rest of item",
				"item_id", li.ItemID,
				"unit", unit,
				"requested", li.RequestedQuantity,
				"error", err,
			)
			break
		}
	}

	var settleErr error
	if outcome.AnySucceeded() {
		if settleErr = store.SettleCheckout(runCtx, uc.clearPolicy, purchased); settleErr != nil {
			log.Warn("Cart settled in memory only", "error", settleErr)
		}
	}

	monitoring.RecordCheckoutRun(monitoring.CheckoutResult(outcome.SucceededUnitCount, outcome.FailedUnitCount))
	log.Info("Checkout completed",
		"succeeded", outcome.SucceededUnitCount,
		"failed", outcome.FailedUnitCount,
		"clear_policy", uc.clearPolicy,
	)

	return outcome, settleErr
}

func (uc *CheckoutUseCase) purchaseUnit(ctx context.Context, itemID cart.ItemID) error {
	if uc.unitTimeout <= 0 {
		return uc.purchaseSvc.PurchaseOneUnit(ctx, string(itemID))
	}

	unitCtx, cancel := context.WithTimeout(ctx, uc.unitTimeout)
	defer cancel()

	return uc.purchaseSvc.PurchaseOneUnit(unitCtx, string(itemID))
}

// isTransportFailure separates "this unit failed" from "nothing can succeed".
func isTransportFailure(err error) bool {
	return errors.Is(err, domainErrors.ErrServiceUnavailable)
}
