package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuzvak/storefront-cart/internal/application/ports"
	"github.com/yuzvak/storefront-cart/internal/config"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.APIConfig{
		BaseURL: srv.URL + "/",
		Token:   "config-token",
		Timeout: config.Duration(5 * time.Second),
	}, logger.NewNopLogger())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestPurchaseOneUnit_Success(t *testing.T) {
	var gotPath, gotAuth, gotMethod string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotAuth, gotMethod = r.URL.Path, r.Header.Get("Authorization"), r.Method
		writeJSON(w, http.StatusOK, map[string]interface{}{"msg": "Purchase successful", "remaining_quantity": 4})
	})

	require.NoError(t, client.PurchaseOneUnit(context.Background(), "7"))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/sweets/7/purchase", gotPath)
	assert.Equal(t, "Bearer config-token", gotAuth)
}

func TestPurchaseOneUnit_UnreadableSuccessBodyStillCounts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>purchased</html>"))
	})

	assert.NoError(t, client.PurchaseOneUnit(context.Background(), "7"))
}

func TestGetItem_UnreadableBodyIsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	})

	_, err := client.GetItem(context.Background(), "7")
	assert.ErrorIs(t, err, domainErrors.ErrUpstream)
}

func TestPurchaseOneUnit_ContextTokenWins(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]interface{}{"msg": "ok"})
	})

	ctx := WithToken(context.Background(), "shopper-token")
	require.NoError(t, client.PurchaseOneUnit(ctx, "7"))
	assert.Equal(t, "Bearer shopper-token", gotAuth)
}

func TestPurchaseOneUnit_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"out of stock", http.StatusBadRequest, domainErrors.ErrOutOfStock},
		{"unauthorized", http.StatusUnauthorized, domainErrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, domainErrors.ErrUnauthorized},
		{"missing item", http.StatusNotFound, domainErrors.ErrItemNotFound},
		{"server error", http.StatusInternalServerError, domainErrors.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]string{"detail": "nope"})
			})

			err := client.PurchaseOneUnit(context.Background(), "1")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domainErrors.ErrUnitPurchaseFailed)
			assert.NotErrorIs(t, err, domainErrors.ErrServiceUnavailable)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "nope", apiErr.Detail)
		})
	}
}

func TestPurchaseOneUnit_ConnectionRefusedIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(config.APIConfig{BaseURL: url, Timeout: config.Duration(time.Second)}, logger.NewNopLogger())

	err := client.PurchaseOneUnit(context.Background(), "1")
	assert.ErrorIs(t, err, domainErrors.ErrServiceUnavailable)
	assert.NotErrorIs(t, err, domainErrors.ErrUnitPurchaseFailed)
}

func TestPurchaseOneUnit_TimeoutIsUnitFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.PurchaseOneUnit(ctx, "1")
	assert.ErrorIs(t, err, domainErrors.ErrUnitPurchaseFailed)
	assert.NotErrorIs(t, err, domainErrors.ErrServiceUnavailable)
}

func TestListItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sweets", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("skip"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "name": "Rainbow Lollipop", "category": "Candy", "price": 1.5, "quantity": 100},
			{"id": 2, "name": "Gummy Bears", "category": "Candy", "price": 3.0, "quantity": 0}
		]`))
	})

	items, err := client.ListItems(context.Background(), 10, 5)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "Rainbow Lollipop", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, 100, items[0].Quantity)
	assert.Equal(t, 0, items[1].Quantity)
}

func TestSearchItems_QueryParameters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sweets/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "choc", q.Get("q"))
		assert.Equal(t, "", q.Get("category"))
		assert.False(t, q.Has("category"))
		assert.Equal(t, "2.5", q.Get("price_min"))
		assert.False(t, q.Has("price_max"))
		w.Write([]byte(`[{"id": "9", "name": "Hazelnut Truffle", "category": "Chocolate", "price": 8.5, "quantity": 40}]`))
	})

	priceMin := decimal.RequireFromString("2.5")
	items, err := client.SearchItems(context.Background(), ports.SearchQuery{Q: "choc", PriceMin: &priceMin})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "9", items[0].ID)
}

func TestGetItem(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sweets/3" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Sweet not found"})
			return
		}
		w.Write([]byte(`{"id": 3, "name": "Strawberry Cheesecake", "category": "Cake", "price": 25.0, "quantity": 10}`))
	})

	item, err := client.GetItem(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Strawberry Cheesecake", item.Name)
	assert.Equal(t, 10, item.Quantity)

	_, err = client.GetItem(context.Background(), "404")
	assert.ErrorIs(t, err, domainErrors.ErrItemNotFound)
	assert.ErrorContains(t, err, "Sweet not found")
}

func TestRestock(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sweets/3/restock", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Amount int `json:"amount"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 15, body.Amount)

		writeJSON(w, http.StatusOK, map[string]interface{}{"msg": "Restocked", "new_quantity": 25})
	})

	qty, err := client.Restock(context.Background(), "3", 15)
	require.NoError(t, err)
	assert.Equal(t, 25, qty)
}

func TestRestock_ValidationError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Amount must be positive"})
	})

	_, err := client.Restock(context.Background(), "3", -1)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidRequest)
}
