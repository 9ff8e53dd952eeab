package errors

import (
	"errors"
)

var (
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrCheckoutNotStarted = errors.New("no checkout in progress")
	ErrCheckoutTransport  = errors.New("checkout failed unexpectedly")

	ErrUnitPurchaseFailed = errors.New("unit purchase failed")
	ErrOutOfStock         = errors.New("item is out of stock")
	ErrItemNotFound       = errors.New("item not found")
	ErrUnauthorized       = errors.New("not authorized")
	ErrServiceUnavailable = errors.New("purchase service unavailable")
	ErrUpstream           = errors.New("storefront api request failed")

	ErrPersistence     = errors.New("cart could not be persisted")
	ErrSnapshotCorrupt = errors.New("stored cart snapshot is corrupt")

	ErrSessionRequired = errors.New("session id is required")
	ErrInvalidRequest  = errors.New("invalid request")
)
