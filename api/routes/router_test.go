package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshbowl/storefront/api/controllers"
	"github.com/freshbowl/storefront/api/middleware"
	"github.com/freshbowl/storefront/internal/cart"
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/internal/checkout"
	"github.com/freshbowl/storefront/internal/customization"
	"github.com/freshbowl/storefront/internal/handoff"
	"github.com/freshbowl/storefront/internal/notifications"
	"github.com/freshbowl/storefront/pkg/config"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/metrics"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	handler http.Handler
	links   []string
}

func newTestServer(t *testing.T, pingErr error) *testServer {
	t.Helper()

	logg := logger.Nop()
	reg := prometheus.NewRegistry()
	cat, err := catalog.LoadDefault()
	require.NoError(t, err)

	tray := notifications.NewService(time.Minute, logg)
	carts, err := cart.NewService(cart.ServiceParams{
		Catalog:  cat,
		Composer: customization.NewResolver(&customization.SequenceGenerator{}),
		Mirror:   cart.NewMirror(cart.NewMemoryStore(), logg),
		Notifier: tray,
		Metrics:  metrics.NewCartMetrics(reg),
		Logger:   logg,
	})
	require.NoError(t, err)

	ts := &testServer{}
	capture := handoff.NewFuncStrategy("client_redirect", func(_ context.Context, link string) error {
		ts.links = append(ts.links, link)
		return nil
	})
	co, err := checkout.NewService(checkout.Params{
		Config:     checkout.Config{DestinationPhone: "9812345678"},
		Carts:      carts,
		Encoder:    handoff.NewEncoder(handoff.EncoderConfig{}),
		Dispatcher: handoff.NewDispatcher(logg, metrics.NewHandoffMetrics(reg), capture),
		Notifier:   tray,
		Logger:     logg,
	})
	require.NoError(t, err)

	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ts.handler = NewRouter(cfg, logg, Dependencies{
		Catalog:       cat,
		Carts:         carts,
		Checkout:      co,
		Notifications: tray,
		Pingers:       map[string]controllers.Pinger{"db": stubPinger{err: pingErr}, "redis": nil},
		Gatherer:      reg,
		HTTPMetrics:   metrics.NewHTTPMetrics(reg),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, cartID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cartID != "" {
		req.Header.Set(middleware.CartIDHeader, cartID)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Data
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Error.Code
}

func TestHealthRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Storefront-Env"))

	rec = ts.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"db": "up"}, decodeData(t, rec)["checks"])

	down := newTestServer(t, errors.New("connection refused"))
	rec = down.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DEPENDENCY_ERROR", decodeErrorCode(t, rec))
}

func TestProductRoutes(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/products?category=bowl&customizable=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data struct {
			Products   []map[string]any `json:"products"`
			NextCursor string           `json:"next_cursor"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data.Products, 1)
	assert.Equal(t, "bowl-classic", list.Data.Products[0]["id"])
	assert.Equal(t, "₹100.00", list.Data.Products[0]["display_price"])
	assert.Empty(t, list.Data.NextCursor)

	rec = ts.do(t, http.MethodGet, "/api/v1/products?limit=2", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data.Products, 2)
	require.NotEmpty(t, list.Data.NextCursor)
	firstPage := list.Data.Products[1]["id"]

	rec = ts.do(t, http.MethodGet, "/api/v1/products?limit=2&cursor="+list.Data.NextCursor, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotEmpty(t, list.Data.Products)
	assert.NotEqual(t, firstPage, list.Data.Products[0]["id"])

	rec = ts.do(t, http.MethodGet, "/api/v1/products?cursor=bogus", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/products?limit=0", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/products?customizable=maybe", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/products?category=vegetable", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/products/fruit-kiwi", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Kiwi", decodeData(t, rec)["name"])

	rec = ts.do(t, http.MethodGet, "/api/v1/products/durian", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartIDIsMintedAndEchoed(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/v1/cart", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	minted := rec.Header().Get(middleware.CartIDHeader)
	require.NotEmpty(t, minted)
	assert.Equal(t, minted, decodeData(t, rec)["cart_id"])
	assert.Equal(t, []any{}, decodeData(t, rec)["items"])

	rec = ts.do(t, http.MethodGet, "/api/v1/cart", "cart-42", "")
	assert.Equal(t, "cart-42", rec.Header().Get(middleware.CartIDHeader))
}

func TestCartFlow(t *testing.T) {
	ts := newTestServer(t, nil)
	const cartID = "cart-flow"

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", cartID, `{"product_id":"fruit-apple","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, float64(2), data["total_item_count"])
	assert.Equal(t, "40", data["total_amount"])

	rec = ts.do(t, http.MethodPost, "/api/v1/cart/customized", cartID, `{"product_id":"bowl-classic","fruit_ids":["fruit-apple","fruit-banana"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data = decodeData(t, rec)
	items := data["items"].([]any)
	require.Len(t, items, 2)
	composed := items[1].(map[string]any)
	assert.Equal(t, "bowl-classic-custom-1", composed["id"])
	assert.Equal(t, "composed", composed["kind"])
	assert.Equal(t, "102", composed["unit_price"])
	assert.Equal(t, "₹142.00", data["display_total"])

	rec = ts.do(t, http.MethodGet, "/api/v1/cart/products/fruit-apple/quantity", cartID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeData(t, rec)["quantity"])

	rec = ts.do(t, http.MethodPatch, "/api/v1/cart/items/fruit-apple", cartID, `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(6), decodeData(t, rec)["total_item_count"])

	rec = ts.do(t, http.MethodPatch, "/api/v1/cart/items/fruit-apple", cartID, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/cart/products/fruit-apple/decrement", cartID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data = decodeData(t, rec)
	assert.Equal(t, true, data["changed"])

	rec = ts.do(t, http.MethodDelete, "/api/v1/cart/items/bowl-classic-custom-1", cartID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData(t, rec)["items"], 1)

	rec = ts.do(t, http.MethodDelete, "/api/v1/cart", cartID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeData(t, rec)["total_item_count"])
}

func TestCartErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	const cartID = "cart-errors"

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", cartID, `{"product_id":"fruit-dragon","quantity":26}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "STOCK_EXCEEDED", decodeErrorCode(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/v1/cart/items", cartID, `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/v1/cart/items", cartID, `{"product_id":"fruit-apple","colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/cart/customized", cartID,
		`{"product_id":"bowl-classic","fruit_ids":["fruit-apple","fruit-banana","fruit-kiwi","fruit-papaya","fruit-dragon","fruit-pomegranate"]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "LIMIT_EXCEEDED", decodeErrorCode(t, rec))

	rec = ts.do(t, http.MethodPatch, "/api/v1/cart/items/ghost", cartID, `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationRoutes(t *testing.T) {
	ts := newTestServer(t, nil)
	const cartID = "cart-notes"

	rec := ts.do(t, http.MethodPost, "/api/v1/cart/items", cartID, `{"product_id":"fruit-kiwi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/notifications", cartID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []notifications.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Kiwi added to cart", list.Data[0].Message)
	id := list.Data[0].ID

	rec = ts.do(t, http.MethodDelete, "/api/v1/notifications/"+id, "someone-else", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/v1/notifications/"+id, cartID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/notifications", cartID, "")
	list.Data = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list.Data)

	rec = ts.do(t, http.MethodDelete, "/api/v1/notifications/missing", cartID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckoutRoute(t *testing.T) {
	ts := newTestServer(t, nil)
	const cartID = "cart-checkout"

	rec := ts.do(t, http.MethodPost, "/api/v1/checkout", cartID, `{"name":"Asha Rao","phone":"9812345678"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, rec))

	rec = ts.do(t, http.MethodPost, "/api/v1/cart/items", cartID, `{"product_id":"fruit-apple","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/checkout", cartID, `{"phone":"9812345678"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_REQUIRED_FIELD", decodeErrorCode(t, rec))

	body := `{"name":"  Asha Rao ","phone":"98123 45678","email":"asha@example.com",` +
		`"address":{"line1":"12 MG Road","city":"Pune","state":"MH","postal_code":"411001"}}`
	rec = ts.do(t, http.MethodPost, "/api/v1/checkout", cartID, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "dispatched", data["state"])
	assert.Equal(t, "regular", data["order_kind"])
	assert.Equal(t, "client_redirect", data["strategy"])
	assert.Equal(t, "₹40.00", data["display_total"])

	link := data["link"].(string)
	require.Equal(t, []string{link}, ts.links)
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/919812345678", parsed.Path)
	assert.Contains(t, parsed.Query().Get("text"), "Name: Asha Rao\n")
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodGet, "/api/v1/products/fruit-apple", "", "")

	rec := ts.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `storefront_http_requests_total{method="GET",route="/api/v1/products/{productId}",status="200"} 1`)
}
