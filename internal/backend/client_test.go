package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", MaxFailures: 2, OpenTimeout: time.Minute}, nil)
}

func TestProducts_Success(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `[
			{"_id":"p1","name":{"en":"Burger","ar":"برجر"},"price":50,"producttype":"simple"},
			{"_id":"m1","name":"Combo","price":0,"producttype":"meal"}
		]`)
	}))

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Burger", products[0].Name.String())
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(50)))
	assert.True(t, products[1].IsMeal())
}

func TestProducts_ConcurrentCallsShareRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = io.WriteString(w, `[]`)
	}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Products(context.Background())
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)
	// give the other callers time to join the in-flight call
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load())
}

func TestProducts_CallerCancelDoesNotFailSharedRequest(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = io.WriteString(w, `[{"_id":"p1","name":"Burger","price":50}]`)
	}))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Products(firstCtx)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return hits.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan []domain.Product, 1)
	secondErr := make(chan error, 1)
	go func() {
		products, err := c.Products(context.Background())
		secondErr <- err
		second <- products
	}()
	// give the second caller time to join the in-flight call
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	require.NoError(t, <-secondErr)
	assert.Len(t, <-second, 1)
	assert.Equal(t, int32(1), hits.Load())
}

func TestProduct_Meal(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/m1", r.URL.Path)
		_, _ = io.WriteString(w, `{
			"_id":"m1","name":{"en":"Combo"},"price":100,"producttype":"meal",
			"mealComponents":[{"category":"Main","quantity":2,"products":["p1","p2"]}],
			"overprice":5
		}`)
	}))

	def, err := c.Product(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Combo", def.Name.En)
	require.Len(t, def.Components, 1)
	assert.Equal(t, 2, def.Components[0].Quantity)
	assert.True(t, def.OverpriceOrZero().Equal(decimal.NewFromInt(5)))
	price, fixed := def.FixedPrice()
	assert.True(t, fixed)
	assert.True(t, price.Equal(decimal.NewFromInt(100)))
}

func TestProduct_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such product", http.StatusNotFound)
	}))

	_, err := c.Product(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProduct_EmptyID(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused"}, nil)

	_, err := c.Product(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreatePaymentIntent(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stripe/create-payment-sheet", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a@b.co", req["email"])
		assert.Equal(t, "01234567890", req["mobile"])
		assert.Len(t, req["items"], 1)

		_, _ = io.WriteString(w, `{"clientSecret":"pi_123_secret_abc"}`)
	}))

	resp, err := c.CreatePaymentIntent(context.Background(), domain.PaymentIntentRequest{
		Items:  []domain.CartEntry{{Key: "p1", ProductID: "p1", Price: decimal.NewFromInt(10), Quantity: 1}},
		Email:  "a@b.co",
		Mobile: "01234567890",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", resp.Secret())
}

func TestCreatePaymentIntent_ServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "stripe down", http.StatusBadGateway)
	}))

	_, err := c.CreatePaymentIntent(context.Background(), domain.PaymentIntentRequest{})
	require.ErrorIs(t, err, domain.ErrNetwork)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, "stripe down", se.Body)
}

func TestSubmitOrder(t *testing.T) {
	var got domain.Order
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.SubmitOrder(context.Background(), domain.Order{
		Items:           []domain.OrderLine{{ProductID: "p1", Quantity: 2, Price: decimal.NewFromInt(10)}},
		Email:           "a@b.co",
		Mobile:          "01234567890",
		PaymentIntentID: "pi_123",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", got.PaymentIntentID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestBreaker_OpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Products(ctx)
		require.ErrorIs(t, err, domain.ErrNetwork)
	}

	_, err := c.Products(ctx)
	require.ErrorIs(t, err, domain.ErrNetwork)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 4; i++ {
		_, err := c.Product(context.Background(), "x")
		require.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.Equal(t, int32(4), hits.Load())
}
