package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Products returns the full catalog. Concurrent callers share one request.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	v, err := c.shared(ctx, "products", func(ctx context.Context) (any, error) {
		var products []domain.Product
		if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
			return nil, err
		}
		return products, nil
	})
	if err != nil {
		return nil, domain.Network("catalog.products", err)
	}
	return v.([]domain.Product), nil
}

// Product returns one catalog entry. Meal products come with their
// components; for simple products Components is empty.
func (c *Client) Product(ctx context.Context, id string) (domain.MealDefinition, error) {
	if id == "" {
		return domain.MealDefinition{}, domain.Validation("catalog.product", "product id is required")
	}

	v, err := c.shared(ctx, "product:"+id, func(ctx context.Context) (any, error) {
		var def domain.MealDefinition
		if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &def); err != nil {
			return nil, err
		}
		return def, nil
	})
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return domain.MealDefinition{}, domain.NotFound("catalog.product", fmt.Sprintf("product %s not found", id))
		}
		return domain.MealDefinition{}, domain.Network("catalog.product", err)
	}

	def := v.(domain.MealDefinition)
	if def.ID == "" {
		def.ID = id
	}
	return def, nil
}
