package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
)

func TestPersistenceRoundTrip(t *testing.T) {
	c := New()
	c.Add(product(t, "x", "2.00"), 5, 3)
	c.Add(product(t, "y", "0.35"), 2, 9)
	c.Add(product(t, "z", "10"), 1, 1)

	data, err := Marshal(c)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, c.Equal(restored))
}

func TestMarshal_EmptyCartIsEmptyArray(t *testing.T) {
	data, err := Marshal(New())
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestUnmarshal_ReadsBrowserSnapshot(t *testing.T) {
	raw := `[{"id":"7","name":"Fudge","category":"Chocolate","price":1.5,"quantity":2,"maxStock":4}]`

	c, err := Unmarshal([]byte(raw))
	require.NoError(t, err)

	li, ok := c.Find("7")
	require.True(t, ok)
	assert.Equal(t, 2, li.RequestedQuantity)
	assert.Equal(t, 4, li.StockCeiling)
	assert.Equal(t, "Fudge", li.Attributes.Name)
	assert.Equal(t, "1.5", li.UnitPrice.String())
}

func TestUnmarshal_Sanitizes(t *testing.T) {
	raw := `[
		{"id":"a","price":"1","quantity":9,"maxStock":3},
		{"id":"a","price":"1","quantity":1,"maxStock":3},
		{"id":"b","price":"1","quantity":0,"maxStock":3},
		{"id":"c","price":"1","quantity":1,"maxStock":0},
		{"id":"","price":"1","quantity":1,"maxStock":1},
		{"id":"d","price":"1","quantity":2,"maxStock":2}
	]`

	c, err := Unmarshal([]byte(raw))
	require.NoError(t, err)

	require.Equal(t, 2, c.Len())
	a, _ := c.Find("a")
	assert.Equal(t, 3, a.RequestedQuantity)
	_, ok := c.Find("d")
	assert.True(t, ok)
}

func TestUnmarshal_NullIsEmpty(t *testing.T) {
	c, err := Unmarshal([]byte(`null`))
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestUnmarshal_Corrupt(t *testing.T) {
	_, err := Unmarshal([]byte(`{not json`))
	assert.ErrorIs(t, err, domainErrors.ErrSnapshotCorrupt)
}

func TestParseClearPolicy(t *testing.T) {
	p, err := ParseClearPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ClearAll, p)

	p, err = ParseClearPolicy("purchased")
	require.NoError(t, err)
	assert.Equal(t, ClearPurchased, p)

	_, err = ParseClearPolicy("some")
	assert.Error(t, err)
}
