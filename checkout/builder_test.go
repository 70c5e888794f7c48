package checkout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"goflare.io/storefront/models"
)

func item(title string, price float64, qty uint64) models.CartItem {
	return models.CartItem{
		Product:  models.Product{Title: title, Price: price, ImageURL: "https://img.example.com/" + title},
		Quantity: qty,
	}
}

func TestBuildFixedFields(t *testing.T) {
	req := Build([]models.CartItem{item("mug", 12.50, 1)}, "https://shop.example.com", "ref-1")

	assert.Equal(t, "https://shop.example.com/cart?payment=cancel", req.CancelURL)
	assert.Equal(t, "https://shop.example.com/cart?payment=success", req.SuccessURL)
	assert.Equal(t, stripe.CheckoutSessionModePayment, req.Mode)
	assert.Equal(t, []stripe.PaymentMethodType{stripe.PaymentMethodTypeCard}, req.PaymentMethodTypes)
	assert.Equal(t, "ref-1", req.ClientReferenceID)
}

func TestBuildUnitAmountRounding(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		expect int64
	}{
		{"cents exact", 19.99, 1999},
		{"half rounds away from zero", 0.005, 1},
		{"whole dollars", 10.00, 1000},
		{"sub-cent down", 5.504, 550},
		{"sub-cent up", 5.506, 551},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Build([]models.CartItem{item("p", tt.price, 1)}, "https://shop.example.com", "")
			require.Len(t, req.LineItems, 1)
			assert.Equal(t, tt.expect, req.LineItems[0].UnitAmount)
		})
	}
}

func TestBuildUnitAmountIsUnitPriceNotLineTotal(t *testing.T) {
	items := []models.CartItem{
		{Product: models.Product{Title: "a", Price: 10.00}, Quantity: 2, TotalPrice: 20.00},
		{Product: models.Product{Title: "b", Price: 5.50}, Quantity: 1, TotalPrice: 5.50},
	}

	req := Build(items, "https://shop.example.com", "")
	form := req.Flatten()

	assert.Equal(t, "1000", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, "2", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "550", form.Get("line_items[1][price_data][unit_amount]"))
}

func TestBuildMissingImageBecomesEmptyString(t *testing.T) {
	items := []models.CartItem{{Product: models.Product{Title: "bare", Price: 1.00}, Quantity: 1}}

	req := Build(items, "https://shop.example.com", "")
	require.Len(t, req.LineItems, 1)
	assert.Equal(t, "", req.LineItems[0].ProductImageURL)

	form := req.Flatten()
	v, ok := form["line_items[0][price_data][product_data][images][0]"]
	require.True(t, ok, "image key must be present even when empty")
	assert.Equal(t, []string{""}, v)
}

func TestBuildEmptyCart(t *testing.T) {
	req := Build(nil, "https://shop.example.com", "")
	assert.Empty(t, req.LineItems)

	form := req.Flatten()
	assert.Equal(t, "https://shop.example.com/cart?payment=cancel", form.Get("cancel_url"))
	assert.Equal(t, "https://shop.example.com/cart?payment=success", form.Get("success_url"))
	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "card", form.Get("payment_method_types[]"))
	assert.Len(t, form, 4, "empty cart flattens to the fixed fields only")
}

func TestFlattenContiguousIndexing(t *testing.T) {
	items := []models.CartItem{
		item("a", 1.00, 1),
		item("b", 2.00, 2),
		item("c", 3.00, 3),
	}

	form := Build(items, "https://shop.example.com", "").Flatten()

	for i := range items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		for _, suffix := range []string{
			"[price_data][currency]",
			"[price_data][product_data][name]",
			"[price_data][product_data][images][0]",
			"[price_data][unit_amount]",
			"[quantity]",
		} {
			assert.Contains(t, form, prefix+suffix)
		}
		assert.Equal(t, "usd", form.Get(prefix+"[price_data][currency]"))
	}
	assert.NotContains(t, form, fmt.Sprintf("line_items[%d][quantity]", len(items)))
}

func TestFlattenRegroupRoundTrip(t *testing.T) {
	items := []models.CartItem{
		item("mug", 12.50, 2),
		{Product: models.Product{Title: "sticker", Price: 0.99}, Quantity: 5},
	}

	req := Build(items, "https://shop.example.com", "ref-9")
	form := req.Flatten()

	regrouped := make([]models.SessionLineItem, len(req.LineItems))
	for i := range regrouped {
		prefix := fmt.Sprintf("line_items[%d]", i)
		regrouped[i] = models.SessionLineItem{
			Currency:        stripe.Currency(form.Get(prefix + "[price_data][currency]")),
			ProductName:     form.Get(prefix + "[price_data][product_data][name]"),
			ProductImageURL: form.Get(prefix + "[price_data][product_data][images][0]"),
			UnitAmount:      mustInt64(t, form.Get(prefix+"[price_data][unit_amount]")),
			Quantity:        mustUint64(t, form.Get(prefix+"[quantity]")),
		}
	}

	assert.Equal(t, req.LineItems, regrouped)
}

func mustInt64(t *testing.T, s string) int64 {
	t.Helper()
	var n int64
	_, err := fmt.Sscanf(s, "%d", &n)
	require.NoError(t, err)
	return n
}

func mustUint64(t *testing.T, s string) uint64 {
	t.Helper()
	var n uint64
	_, err := fmt.Sscanf(s, "%d", &n)
	require.NoError(t, err)
	return n
}
