package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/storefront-cart/internal/application/ports"
	"github.com/yuzvak/storefront-cart/internal/config"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/infrastructure/persistence/memory"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

type fakeSweets struct {
	items     map[string]ports.CatalogItem
	purchased []string
	down      bool
	restocked map[string]int
	lastQuery ports.SearchQuery
}

func newFakeSweets() *fakeSweets {
	return &fakeSweets{
		items: map[string]ports.CatalogItem{
			"1": {ID: "1", Name: "Rainbow Lollipop", Category: "Candy", Price: decimal.RequireFromString("1.50"), Quantity: 3},
			"2": {ID: "2", Name: "Gummy Bears", Category: "Candy", Price: decimal.RequireFromString("3.00"), Quantity: 0},
		},
		restocked: map[string]int{},
	}
}

func (f *fakeSweets) PurchaseOneUnit(ctx context.Context, itemID string) error {
	if f.down {
		return domainErrors.ErrServiceUnavailable
	}
	item := f.items[itemID]
	if item.Quantity < 1 {
		return domainErrors.ErrOutOfStock
	}
	item.Quantity--
	f.items[itemID] = item
	f.purchased = append(f.purchased, itemID)
	return nil
}

func (f *fakeSweets) ListItems(ctx context.Context, skip, limit int) ([]ports.CatalogItem, error) {
	return []ports.CatalogItem{f.items["1"], f.items["2"]}, nil
}

func (f *fakeSweets) GetItem(ctx context.Context, id string) (*ports.CatalogItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, domainErrors.ErrItemNotFound
	}
	return &item, nil
}

func (f *fakeSweets) SearchItems(ctx context.Context, q ports.SearchQuery) ([]ports.CatalogItem, error) {
	f.lastQuery = q
	return []ports.CatalogItem{f.items["1"]}, nil
}

func (f *fakeSweets) Restock(ctx context.Context, id string, amount int) (int, error) {
	item := f.items[id]
	item.Quantity += amount
	f.items[id] = item
	return item.Quantity, nil
}

type harness struct {
	sweets   *fakeSweets
	provider *memory.SnapshotStore
}

func newHarness() *harness {
	return &harness{sweets: newFakeSweets(), provider: memory.NewSnapshotStore()}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	factory := func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
		return NewAppWith(cfg, logger.NewNopLogger(), h.provider, h.sweets, h.sweets, h.sweets)
	}

	cmd := newRootCommand(factory)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "storefront", cmd.Use)

	for _, path := range [][]string{
		{"catalog", "list"}, {"catalog", "search"}, {"catalog", "show"},
		{"cart", "show"}, {"cart", "add"}, {"cart", "remove"}, {"cart", "update"}, {"cart", "clear"}, {"cart", "toggle"},
		{"checkout"}, {"serve"}, {"admin", "restock"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	assert.Equal(t, "cli", cmd.PersistentFlags().Lookup("session").DefValue)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := newHarness().run(t, "cart", "show", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestCatalogCommands(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Rainbow Lollipop")
	assert.Contains(t, out, "Gummy Bears")

	out, err = h.run(t, "catalog", "search", "lolli", "--category", "Candy", "--min-price", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Rainbow Lollipop")
	assert.Equal(t, "lolli", h.sweets.lastQuery.Q)
	assert.Equal(t, "Candy", h.sweets.lastQuery.Category)
	require.NotNil(t, h.sweets.lastQuery.PriceMin)
	assert.Nil(t, h.sweets.lastQuery.PriceMax)

	_, err = h.run(t, "catalog", "search", "--max-price", "cheap")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = h.run(t, "catalog", "show", "99")
	assert.ErrorIs(t, err, domainErrors.ErrItemNotFound)
}

func TestCartCommands(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "cart", "add", "1", "--qty", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 3 items, 4.50")

	out, err = h.run(t, "cart", "add", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Gummy Bears is out of stock.")

	out, err = h.run(t, "cart", "update", "1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 2 items, 3.00")

	out, err = h.run(t, "cart", "show", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			TotalItems int `json:"total_items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.TotalItems)

	out, err = h.run(t, "cart", "show", "--session", "other")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	out, err = h.run(t, "cart", "remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")

	_, err = h.run(t, "cart", "update", "1", "two")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCartToggleAndClear(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "cart", "toggle")
	require.NoError(t, err)
	assert.Contains(t, out, "Cart is open.")

	_, err = h.run(t, "cart", "add", "1")
	require.NoError(t, err)

	out, err = h.run(t, "cart", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
}

func TestCheckoutCommand(t *testing.T) {
	h := newHarness()

	_, err := h.run(t, "cart", "add", "1", "--qty", "3")
	require.NoError(t, err)
	h.sweets.items["1"] = ports.CatalogItem{ID: "1", Name: "Rainbow Lollipop", Price: decimal.RequireFromString("1.50"), Quantity: 2}

	out, err := h.run(t, "checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully purchased 2 items!")
	assert.Contains(t, out, "Could not purchase 1 items (likely out of stock).")
	assert.Equal(t, []string{"1", "1"}, h.sweets.purchased)

	out, err = h.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Your cart is empty.")
}

func TestCheckoutCommand_Transport(t *testing.T) {
	h := newHarness()

	_, err := h.run(t, "cart", "add", "1", "--qty", "2")
	require.NoError(t, err)
	h.sweets.down = true

	_, err = h.run(t, "checkout")
	assert.ErrorIs(t, err, domainErrors.ErrCheckoutTransport)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := h.run(t, "cart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 2 items, 3.00")
}

func TestCheckoutCommand_NothingBought(t *testing.T) {
	h := newHarness()

	_, err := h.run(t, "cart", "add", "1")
	require.NoError(t, err)
	h.sweets.items["1"] = ports.CatalogItem{ID: "1", Quantity: 0}

	out, err := h.run(t, "checkout")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Could not purchase 1 items")
}

func TestAdminRestock(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "admin", "restock", "2", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Restocked 2, now 10 in stock.")

	_, err = h.run(t, "admin", "restock", "2", "0")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
