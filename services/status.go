package services

import (
	"context"
	"net/url"

	"linkpay/templates"
)

// statusEnvelope wraps the backend's paymentlink/status response.
type statusEnvelope struct {
	templates.APIEnvelope
	Data struct {
		Status templates.PaymentStatus `json:"status"`
	} `json:"data"`
}

// CheckStatus asks the backend for the authoritative order status. On any
// failure it returns StatusPending alongside the error so callers never
// mistake an unreachable backend for a failed payment.
func (c *Client) CheckStatus(ctx context.Context, orderID string) (templates.PaymentStatus, error) {
	if orderID == "" {
		return templates.StatusPending, &ValidationError{Message: "Order ID is required"}
	}

	params := url.Values{}
	params.Set("orderId", orderID)

	var envelope statusEnvelope
	if err := c.getJSON(ctx, "/paymentlink/status", params, &envelope); err != nil {
		return templates.StatusPending, err
	}
	if envelope.Data.Status == "" {
		return templates.StatusPending, nil
	}
	return envelope.Data.Status, nil
}
