package api

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/backup"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type MockCatalog struct {
	products map[string]domain.MealDefinition
	err      error
}

func newMockCatalog() *MockCatalog {
	c := &MockCatalog{products: make(map[string]domain.MealDefinition)}
	c.add(domain.MealDefinition{Product: product("p1", "Burger", 80)})
	c.add(domain.MealDefinition{Product: product("p2", "Chicken", 60)})
	c.add(domain.MealDefinition{Product: product("d1", "Cola", 15)})
	overprice := decimal.NewFromInt(5)
	c.add(domain.MealDefinition{
		Product: domain.Product{ID: "m1", Name: domain.Text("Combo"), Price: decimal.Zero, Kind: domain.KindMeal},
		Components: []domain.MealComponent{
			{Category: "Main", Quantity: 2, Products: []string{"p1", "p2"}},
			{Category: "Drinks", Quantity: 1, Products: []string{"d1"}},
		},
		Overprice: &overprice,
	})
	return c
}

func product(id, name string, price int64) domain.Product {
	return domain.Product{ID: id, Name: domain.Text(name), Price: decimal.NewFromInt(price), Kind: domain.KindSimple}
}

func (c *MockCatalog) add(def domain.MealDefinition) {
	c.products[def.ID] = def
}

func (c *MockCatalog) Products(context.Context) ([]domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]domain.Product, 0, len(c.products))
	for _, def := range c.products {
		out = append(out, def.Product)
	}
	return out, nil
}

func (c *MockCatalog) Product(_ context.Context, id string) (domain.MealDefinition, error) {
	if c.err != nil {
		return domain.MealDefinition{}, c.err
	}
	def, ok := c.products[id]
	if !ok {
		return domain.MealDefinition{}, domain.NotFound("catalog.product", "product "+id+" not found")
	}
	return def, nil
}

type memoryBackup struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryBackup() *memoryBackup {
	return &memoryBackup{data: make(map[string][]byte)}
}

func (m *memoryBackup) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryBackup) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, backup.ErrNotFound
	}
	return v, nil
}

func (m *memoryBackup) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type stubPayments struct {
	secret string
}

func (s stubPayments) CreatePaymentIntent(context.Context, domain.PaymentIntentRequest) (domain.PaymentSheetResponse, error) {
	return domain.PaymentSheetResponse{ClientSecret: s.secret}, nil
}

type recordingOrders struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (r *recordingOrders) SubmitOrder(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o)
	return nil
}

func (r *recordingOrders) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}
