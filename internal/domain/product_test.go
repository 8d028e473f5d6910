package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		discount float64
		want     int64
	}{
		{"ten percent", 850000, 10, 765000},
		{"no discount", 450000, 0, 450000},
		{"five percent", 600000, 5, 570000},
		{"rounds half up", 5, 10, 5},
		{"rounds down", 3, 10, 3},
		{"full discount", 1000, 100, 0},
		{"over discount clamps to zero", 1000, 150, 0},
		{"fractional discount", 999, 12.5, 874},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Price: tt.price, DiscountPercent: tt.discount}
			assert.Equal(t, tt.want, p.EffectivePrice())
		})
	}
}

func TestProductUnmarshalLenient(t *testing.T) {
	body := `{"product_id":"7","name":"Teclado","price":"125000.00","stock":3,"discount_percent":"abc","category":"perifericos"}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(body), &p))

	assert.Equal(t, int64(7), p.ProductID)
	assert.Equal(t, int64(125000), p.Price)
	assert.Equal(t, int64(3), p.Stock)
	assert.Zero(t, p.DiscountPercent)
	assert.True(t, p.Active, "missing active defaults to true")
}

func TestProductUnmarshalInactive(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"product_id":1,"active":false}`), &p))
	assert.False(t, p.Active)
}

func TestProductPatchApplyTo(t *testing.T) {
	name := "Monitor 32\""
	price := int64(500000)
	original := SeedProducts()[1]

	updated := ProductPatch{Name: &name, Price: &price}.ApplyTo(original)

	assert.Equal(t, name, updated.Name)
	assert.Equal(t, price, updated.Price)
	assert.Equal(t, original.Stock, updated.Stock)
	assert.Equal(t, original.Category, updated.Category)
}

func TestNewProductDefaults(t *testing.T) {
	p := NewProduct(5, ProductPatch{})

	assert.Equal(t, int64(5), p.ProductID)
	assert.Equal(t, DefaultCategory, p.Category)
	assert.True(t, p.Active)
}

func TestSeedProductsIsACopy(t *testing.T) {
	a := SeedProducts()
	a[0].Name = "changed"
	assert.Equal(t, "Torre Gamer", SeedProducts()[0].Name)
	assert.Len(t, SeedProducts(), 4)
}

func TestOrderQueryNormalize(t *testing.T) {
	q := OrderQuery{Status: "todos", Query: "  ana "}.Normalize()
	assert.Empty(t, q.Status)
	assert.Equal(t, "ana", q.Query)

	q = OrderQuery{Status: "paid"}.Normalize()
	assert.Equal(t, "paid", q.Status)
}

func TestSalesStatsDefaults(t *testing.T) {
	var s SalesStats
	require.NoError(t, json.Unmarshal([]byte(`{"ingresos":"1500","ordenes":3}`), &s))

	assert.Equal(t, 1500.0, s.Revenue)
	assert.Equal(t, 3.0, s.Orders)
	assert.Zero(t, s.AvgTicket)
	assert.NotNil(t, s.Series)
}
