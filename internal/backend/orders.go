package backend

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (c *Client) SubmitOrder(ctx context.Context, order domain.Order) error {
	if err := c.do(ctx, http.MethodPost, "/api/orders", order, nil); err != nil {
		return domain.Network("orders.submit", err)
	}
	return nil
}
