package ports

import (
	"context"
)

// PurchaseService buys exactly one unit of one item per call.
//
// A nil error is a successful purchase. Errors wrapping
// errors.ErrServiceUnavailable mean the service could not be reached at all;
// any other error is a failed attempt for that unit only.
type PurchaseService interface {
	PurchaseOneUnit(ctx context.Context, itemID string) error
}
