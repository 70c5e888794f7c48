package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"goflare.io/storefront/checkout"
	"goflare.io/storefront/models"
	"goflare.io/storefront/models/enum"
)

type mockService struct {
	snapshot models.CartSnapshot
	loadErr  error
	loaded   []string
	removed  []uint64

	beginOrigin string
	beginURL    string
	beginErr    error

	outcome *checkout.OutcomeHandler
}

func newMockService() *mockService {
	return &mockService{outcome: checkout.NewOutcomeHandler(zap.NewNop())}
}

func (m *mockService) LoadCart(_ context.Context, customerID string) (models.CartSnapshot, error) {
	m.loaded = append(m.loaded, customerID)
	if m.loadErr != nil {
		return models.CartSnapshot{}, m.loadErr
	}
	return m.snapshot, nil
}

func (m *mockService) RemoveCartItem(cartID uint64) {
	m.removed = append(m.removed, cartID)
}

func (m *mockService) CartSnapshot() models.CartSnapshot {
	return m.snapshot
}

func (m *mockService) BeginCheckout(_ context.Context, originURL string) (string, error) {
	m.beginOrigin = originURL
	if m.beginErr != nil {
		return "", m.beginErr
	}
	return m.beginURL, nil
}

func (m *mockService) HandlePaymentReturn(query url.Values, nav checkout.Navigator, notifier checkout.Notifier) {
	m.outcome.HandleReturn(query, nav, notifier)
}

func (m *mockService) CheckoutState() enum.CheckoutState {
	return m.outcome.State()
}

func (m *mockService) VerifiedOutcome(string) (enum.PaymentOutcome, bool) {
	return "", false
}

func (m *mockService) ProcessEvent(context.Context, *stripe.Event) error { return nil }

func (m *mockService) Close() {}

func newTestRouter(svc *mockService) http.Handler {
	r := chi.NewRouter()
	NewHandler(svc, "https://shop.example.com", zap.NewNop(), time.Second).Routes(r)
	return r
}

func TestGetCartRendersSnapshot(t *testing.T) {
	svc := newMockService()
	svc.snapshot = models.CartSnapshot{
		Items:       []models.CartItem{{CartID: 1, Quantity: 2, TotalPrice: 20.00}},
		TotalPrice:  20.00,
		TotalLength: 2,
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-Customer-ID", "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cust-1"}, svc.loaded)

	var got models.CartSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.InDelta(t, 20.00, got.TotalPrice, 1e-9)
}

func TestGetCartWithoutCustomerIdentity(t *testing.T) {
	router := newTestRouter(newMockService())

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetCartLoadFailure(t *testing.T) {
	svc := newMockService()
	svc.loadErr = errors.New("cart service unavailable")
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-Customer-ID", "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetCartPaymentSuccessRedirectsAndFlashes(t *testing.T) {
	svc := newMockService()
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/cart?payment=success", nil)
	req.Header.Set("X-Customer-ID", "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"), "query parameter is cleared")
	assert.Empty(t, svc.loaded, "outcome handling short-circuits the load")

	res := rec.Result()
	defer res.Body.Close()
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "storefront_flash", cookies[0].Name)
}

func TestGetCartPaymentCancelRedirects(t *testing.T) {
	router := newTestRouter(newMockService())

	req := httptest.NewRequest(http.MethodGet, "/cart?payment=cancel", nil)
	req.Header.Set("X-Customer-ID", "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/cart", rec.Header().Get("Location"))
}

func TestGetCartUnrecognizedPaymentValueFallsThrough(t *testing.T) {
	svc := newMockService()
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/cart?payment=pending", nil)
	req.Header.Set("X-Customer-ID", "cust-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "unrecognized value is a no-op, view renders normally")
	assert.Equal(t, []string{"cust-1"}, svc.loaded)
}

func TestRemoveItem(t *testing.T) {
	svc := newMockService()
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/12", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{12}, svc.removed)
}

func TestRemoveItemInvalidID(t *testing.T) {
	svc := newMockService()
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/notanumber", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.removed)
}

func TestCheckoutRedirectsToSession(t *testing.T) {
	svc := newMockService()
	svc.beginURL = "https://pay.example.com/cs_1"
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://pay.example.com/cs_1", rec.Header().Get("Location"))
	assert.Equal(t, "https://shop.example.com", svc.beginOrigin)
}

func TestCheckoutClientUnavailable(t *testing.T) {
	svc := newMockService()
	svc.beginErr = checkout.ErrClientUnavailable
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCheckoutSessionCreationFailure(t *testing.T) {
	svc := newMockService()
	svc.beginErr = checkout.ErrSessionCreation
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/cart/checkout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
