package meal

import "github.com/fjod/go_cart/storefront/internal/domain"

// Catalog is the read-only product lookup the builder resolves selections
// against.
type Catalog interface {
	Product(id string) (domain.Product, bool)
}

// MapCatalog indexes a product list fetched from the catalog service.
type MapCatalog map[string]domain.Product

func NewCatalog(products []domain.Product) MapCatalog {
	c := make(MapCatalog, len(products))
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

func (c MapCatalog) Product(id string) (domain.Product, bool) {
	p, ok := c[id]
	return p, ok
}
