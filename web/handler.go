// Package web exposes the cart view over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"goflare.io/storefront"
	"goflare.io/storefront/checkout"
)

type Handler struct {
	svc     storefront.Service
	origin  string
	logger  *zap.Logger
	timeout time.Duration
}

// NewHandler wires the cart view routes. origin is the public application
// origin used to build the checkout success/cancel URLs.
func NewHandler(svc storefront.Service, origin string, logger *zap.Logger, timeout time.Duration) *Handler {
	return &Handler{
		svc:     svc,
		origin:  origin,
		logger:  logger,
		timeout: timeout,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/cart", h.GetCart)
	r.Delete("/cart/items/{itemID}", h.RemoveItem)
	r.Post("/cart/checkout", h.Checkout)
}

// GetCart renders the session snapshot. On re-entry after a payment redirect
// it first dispatches the outcome acknowledgment, which clears the query and
// navigates back to the bare cart path.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if query := r.URL.Query(); query.Has("payment") {
		nav := &redirectNavigator{w: w, r: r}
		h.svc.HandlePaymentReturn(query, nav, &flashNotifier{w: w})
		if nav.redirected {
			return
		}
		// unrecognized payment value: fall through and render normally
	}

	customerID := customerFromRequest(r)
	if customerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing customer identity")
		return
	}

	snapshot, err := h.svc.LoadCart(ctx, customerID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "load_failure", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// RemoveItem deletes a line item from the session snapshot. The deletion is
// local; the next full load re-syncs with the cart service.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseUint(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}

	h.svc.RemoveCartItem(itemID)
	respondJSON(w, http.StatusOK, h.svc.CartSnapshot())
}

// Checkout creates a hosted checkout session from the snapshot and hands the
// browser off to the provider.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	redirectURL, err := h.svc.BeginCheckout(ctx, h.origin)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrClientUnavailable):
			respondError(w, http.StatusServiceUnavailable, "payment_client_unavailable", "checkout is not available")
		default:
			respondError(w, http.StatusBadGateway, "session_creation_failed", "failed to create checkout session")
		}
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

func customerFromRequest(r *http.Request) string {
	return r.Header.Get("X-Customer-ID")
}

// redirectNavigator clears the payment query by redirecting to the bare path.
type redirectNavigator struct {
	w          http.ResponseWriter
	r          *http.Request
	redirected bool
}

func (n *redirectNavigator) Navigate(path string, query url.Values) {
	target := path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	http.Redirect(n.w, n.r, target, http.StatusSeeOther)
	n.redirected = true
}

// flashNotifier surfaces the acknowledgment to the browser as a flash cookie,
// consumed by the storefront on the next render.
type flashNotifier struct {
	w http.ResponseWriter
}

func (n *flashNotifier) Notify(message string) {
	http.SetCookie(n.w, &http.Cookie{
		Name:  "storefront_flash",
		Value: url.QueryEscape(message),
		Path:  "/",
	})
}
