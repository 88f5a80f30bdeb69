package backend

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (c *Client) CreatePaymentIntent(ctx context.Context, req domain.PaymentIntentRequest) (domain.PaymentSheetResponse, error) {
	var resp domain.PaymentSheetResponse
	if err := c.do(ctx, http.MethodPost, "/api/stripe/create-payment-sheet", req, &resp); err != nil {
		return domain.PaymentSheetResponse{}, domain.Network("payment.create_intent", err)
	}
	return resp, nil
}
