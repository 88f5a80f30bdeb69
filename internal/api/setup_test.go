package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/paymentui"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router   http.Handler
	catalog  *MockCatalog
	engine   *cart.Engine
	backup   *memoryBackup
	orders   *recordingOrders
	checkout *CheckoutHandler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	ts := &testServer{
		catalog: newMockCatalog(),
		engine:  cart.NewEngine(nil),
		backup:  newMemoryBackup(),
		orders:  &recordingOrders{},
	}
	bridge := paymentui.NewBridge(nil)
	orch := checkout.NewOrchestrator(checkout.Deps{
		Cart:     ts.engine,
		Backup:   ts.backup,
		Payments: stubPayments{secret: "pi_123_secret_abc"},
		Sheet:    bridge,
		Orders:   ts.orders,
	}, checkout.Config{MerchantDisplayName: "Munchix", RequestTimeout: time.Second}, nil)

	ts.checkout = NewCheckoutHandler(ctx, orch, bridge, time.Second, nil)
	ts.router = NewRouter(Handlers{
		Products: NewProductHandler(ts.catalog, time.Second),
		Cart:     NewCartHandler(ts.engine, ts.catalog, time.Second),
		Meals:    NewMealHandler(ts.catalog, ts.engine, time.Second, nil),
		Checkout: ts.checkout,
	}, nil, 5*time.Second)

	t.Cleanup(func() {
		cancel()
		ts.checkout.Wait()
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}
