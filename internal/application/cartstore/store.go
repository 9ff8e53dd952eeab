package cartstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/yuzvak/storefront-cart/internal/application/ports"
	"github.com/yuzvak/storefront-cart/internal/domain/cart"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/monitoring"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// Store owns one shopper's cart. Every accepted mutation is applied in
// memory first and then written to the persistence provider; a failed write
// is returned wrapped in ErrPersistence but never rolls the change back.
//
// While a checkout run holds the store, mutators return ErrCheckoutInProgress.
type Store struct {
	mu sync.Mutex

	cart     *cart.Cart
	provider ports.PersistenceProvider
	key      string
	log      *logger.Logger

	hydrated    bool
	visible     bool
	checkingOut bool
}

// View is a consistent read of the store for presentation.
type View struct {
	Items              []cart.LineItem
	TotalItemCount     int
	TotalPrice         decimal.Decimal
	Visible            bool
	CheckoutInProgress bool
}

func New(provider ports.PersistenceProvider, key string, log *logger.Logger) *Store {
	return &Store{
		cart:     cart.New(),
		provider: provider,
		key:      key,
		log:      log.WithField("cart_key", key),
	}
}

// Hydrate loads the persisted snapshot. Only the first call reads the
// provider. On failure the store keeps an empty cart and stays usable.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return nil
	}
	s.hydrated = true

	data, found, err := s.provider.Get(ctx, s.key)
	if err != nil {
		monitoring.RecordPersistenceFailure("hydrate")
		s.log.Warn("Failed to read cart snapshot", "error", err)
		return fmt.Errorf("%w: %w", domainErrors.ErrPersistence, err)
	}

	if !found {
		s.log.Debug("No stored cart snapshot")
		return nil
	}

	restored, err := cart.Unmarshal(data)
	if err != nil {
		monitoring.RecordPersistenceFailure("hydrate")
		s.log.Warn("Discarding unreadable cart snapshot", "error", err)
		return fmt.Errorf("%w: %w", domainErrors.ErrPersistence, err)
	}

	s.cart = restored
	s.log.Debug("Cart hydrated", "items", restored.Len(), "units", restored.TotalItemCount())
	return nil
}

// AddItem merges quantity units of product into the cart, bounded by
// stockCeiling, and surfaces the cart view. Non-positive quantity or ceiling
// is a caller error and is ignored.
func (s *Store) AddItem(ctx context.Context, product cart.Product, stockCeiling, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return domainErrors.ErrCheckoutInProgress
	}

	if !s.cart.Add(product, stockCeiling, quantity) {
		s.log.Debug("Ignoring add with non-positive quantity or stock",
			"item_id", product.ID, "quantity", quantity, "stock_ceiling", stockCeiling)
		return nil
	}

	s.visible = true
	monitoring.RecordCartMutation("add")
	s.log.Debug("Item added", "item_id", product.ID, "quantity", quantity, "stock_ceiling", stockCeiling)

	return s.persist(ctx, "add")
}

func (s *Store) RemoveItem(ctx context.Context, id cart.ItemID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return domainErrors.ErrCheckoutInProgress
	}

	removed := s.cart.Remove(id)
	monitoring.RecordCartMutation("remove")
	s.log.Debug("Item removed", "item_id", id, "present", removed)

	return s.persist(ctx, "remove")
}

// UpdateQuantity sets the requested quantity, clamped to the stock ceiling.
// Quantities below 1 are ignored; removal is RemoveItem's job.
func (s *Store) UpdateQuantity(ctx context.Context, id cart.ItemID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return domainErrors.ErrCheckoutInProgress
	}

	if quantity < 1 {
		return nil
	}

	updated := s.cart.UpdateQuantity(id, quantity)
	monitoring.RecordCartMutation("update")
	s.log.Debug("Quantity updated", "item_id", id, "quantity", quantity, "present", updated)

	return s.persist(ctx, "update")
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return domainErrors.ErrCheckoutInProgress
	}

	s.cart.Clear()
	monitoring.RecordCartMutation("clear")

	return s.persist(ctx, "clear")
}

// ToggleVisibility flips the cart view flag. Visibility is never persisted.
func (s *Store) ToggleVisibility() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visible = !s.visible
	return s.visible
}

func (s *Store) IsVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.visible
}

func (s *Store) CheckoutInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.checkingOut
}

func (s *Store) Items() []cart.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Items()
}

func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.TotalItemCount()
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.TotalPrice()
}

func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		Items:              s.cart.Items(),
		TotalItemCount:     s.cart.TotalItemCount(),
		TotalPrice:         s.cart.TotalPrice(),
		Visible:            s.visible,
		CheckoutInProgress: s.checkingOut,
	}
}

// BeginCheckout marks the store as held by a checkout run and returns the
// items to purchase, in cart order. A second call before EndCheckout fails
// with ErrCheckoutInProgress.
func (s *Store) BeginCheckout() ([]cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkingOut {
		return nil, domainErrors.ErrCheckoutInProgress
	}

	s.checkingOut = true
	return s.cart.Items(), nil
}

// SettleCheckout applies the clear policy after a run that bought at least
// one unit. purchased maps item ids to units bought; ClearAll ignores it.
func (s *Store) SettleCheckout(ctx context.Context, policy cart.ClearPolicy, purchased map[cart.ItemID]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.checkingOut {
		return domainErrors.ErrCheckoutNotStarted
	}

	switch policy {
	case cart.ClearPurchased:
		s.cart.Retain(purchased)
	case cart.ClearAll:
		s.cart.Clear()
	default:
		return errors.New("unknown clear policy: " + string(policy))
	}

	monitoring.RecordCartMutation("settle")
	return s.persist(ctx, "settle")
}

// EndCheckout closes the cart view and releases the checkout hold.
func (s *Store) EndCheckout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visible = false
	s.checkingOut = false
}

func (s *Store) persist(ctx context.Context, operation string) error {
	data, err := cart.Marshal(s.cart)
	if err == nil {
		err = s.provider.Set(ctx, s.key, data)
	}

	if err != nil {
		monitoring.RecordPersistenceFailure(operation)
		s.log.Warn("Cart change kept in memory but not persisted", "operation", operation, "error", err)
		return fmt.Errorf("%w: %w", domainErrors.ErrPersistence, err)
	}

	return nil
}
