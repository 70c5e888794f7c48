package models

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/stripe/stripe-go/v79"
)

// SessionLineItem is one line of a hosted checkout session. UnitAmount is the
// unit price in minor currency units, not the line total.
type SessionLineItem struct {
	Currency        stripe.Currency `json:"currency"`
	ProductName     string          `json:"product_name"`
	ProductImageURL string          `json:"product_image_url"`
	UnitAmount      int64           `json:"unit_amount"`
	Quantity        uint64          `json:"quantity"`
}

// CheckoutSessionRequest carries everything needed to open a hosted checkout
// session. It is built fresh per checkout attempt and never persisted.
type CheckoutSessionRequest struct {
	CancelURL          string                     `json:"cancel_url"`
	SuccessURL         string                     `json:"success_url"`
	Mode               stripe.CheckoutSessionMode `json:"mode"`
	PaymentMethodTypes []stripe.PaymentMethodType `json:"payment_method_types"`
	ClientReferenceID  string                     `json:"client_reference_id,omitempty"`
	LineItems          []SessionLineItem          `json:"line_items"`
}

// Flatten renders the request as the URL-encoded form the payments API expects.
// Line items are indexed by position, 0..n-1 with no gaps:
//
//	line_items[0][price_data][currency]=usd
//	line_items[0][price_data][product_data][name]=...
//	line_items[0][price_data][product_data][images][0]=...
//	line_items[0][price_data][unit_amount]=1999
//	line_items[0][quantity]=2
func (r CheckoutSessionRequest) Flatten() url.Values {
	form := url.Values{}
	form.Set("cancel_url", r.CancelURL)
	form.Set("success_url", r.SuccessURL)
	form.Set("mode", string(r.Mode))
	for _, pm := range r.PaymentMethodTypes {
		form.Add("payment_method_types[]", string(pm))
	}
	if r.ClientReferenceID != "" {
		form.Set("client_reference_id", r.ClientReferenceID)
	}

	for i, item := range r.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", string(item.Currency))
		form.Set(prefix+"[price_data][product_data][name]", item.ProductName)
		form.Set(prefix+"[price_data][product_data][images][0]", item.ProductImageURL)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.FormatUint(item.Quantity, 10))
	}

	return form
}
