package cart

import (
	"fmt"
)

// CheckoutOutcome aggregates unit purchase results across one checkout run.
type CheckoutOutcome struct {
	SucceededUnitCount int `json:"succeeded"`
	FailedUnitCount    int `json:"failed"`
}

func (o CheckoutOutcome) AnySucceeded() bool {
	return o.SucceededUnitCount > 0
}

func (o CheckoutOutcome) AnyFailed() bool {
	return o.FailedUnitCount > 0
}

// ClearPolicy decides what happens to the cart after a run that bought at least one unit.
type ClearPolicy string

const (
	// ClearAll empties the cart, including lines whose units all failed.
	ClearAll ClearPolicy = "all"
	// ClearPurchased keeps every unpurchased unit in the cart.
	ClearPurchased ClearPolicy = "purchased"
)

func ParseClearPolicy(s string) (ClearPolicy, error) {
	switch ClearPolicy(s) {
	case "", ClearAll:
		return ClearAll, nil
	case ClearPurchased:
		return ClearPurchased, nil
	default:
		return "", fmt.Errorf("unknown clear policy %q", s)
	}
}
