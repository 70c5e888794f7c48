// Package checkout turns the session cart into a hosted checkout session and
// handles the redirect back from the payments provider.
package checkout

import (
	"math"

	"github.com/stripe/stripe-go/v79"

	"goflare.io/storefront/models"
)

const (
	// cartPath is the view the provider redirects back to.
	cartPath = "/cart"

	successQuery = "?payment=success"
	cancelQuery  = "?payment=cancel"
)

// Build transforms cart line items into a checkout session request. It is a
// total function: an empty cart yields a request with zero line items, which
// the payments provider rejects; that is not validated here.
//
// Unit amounts are the unit price in minor currency units, rounded half away
// from zero (19.99 -> 1999, 0.005 -> 1). Quantities are copied verbatim; a
// missing product image becomes the empty string.
func Build(items []models.CartItem, originURL, clientReference string) models.CheckoutSessionRequest {
	req := models.CheckoutSessionRequest{
		CancelURL:          originURL + cartPath + cancelQuery,
		SuccessURL:         originURL + cartPath + successQuery,
		Mode:               stripe.CheckoutSessionModePayment,
		PaymentMethodTypes: []stripe.PaymentMethodType{stripe.PaymentMethodTypeCard},
		ClientReferenceID:  clientReference,
	}

	if len(items) == 0 {
		return req
	}

	req.LineItems = make([]models.SessionLineItem, 0, len(items))
	for _, item := range items {
		req.LineItems = append(req.LineItems, models.SessionLineItem{
			Currency:        stripe.CurrencyUSD,
			ProductName:     item.Product.Title,
			ProductImageURL: item.Product.ImageURL,
			UnitAmount:      int64(math.Round(item.Product.Price * 100)),
			Quantity:        item.Quantity,
		})
	}

	return req
}
