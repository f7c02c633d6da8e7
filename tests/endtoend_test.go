package tests

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/ecomlab/sale-recorder/internal/adapter/handler"
	"github.com/ecomlab/sale-recorder/internal/adapter/storage"
	"github.com/ecomlab/sale-recorder/internal/core/service"
	"github.com/ecomlab/sale-recorder/internal/reporting"
)

type testEnv struct {
	db     *sql.DB
	store  *storage.SQLAdapter
	server *httptest.Server
}

// setupTestEnv wires the full stack the way the serve command does, over an
// in-memory database with the demo catalogue loaded.
func setupTestEnv(t *testing.T, opts ...service.Option) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	store := storage.NewSQLAdapter(db)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Seed(ctx))

	svc := service.NewSaleService(store, opts...)
	reports := reporting.New(sqlx.NewDb(db, "sqlite"))
	h := handler.NewHTTPHandler(svc, store, reports, zerolog.Nop())

	srv := httptest.NewServer(h.Router())
	t.Cleanup(func() {
		srv.Close()
		db.Close()
	})

	return &testEnv{db: db, store: store, server: srv}
}

func (env *testEnv) postSale(t *testing.T, productID string, qty int) (*http.Response, map[string]any) {
	t.Helper()
	return env.postSaleWithOrderID(t, uuid.NewString(), productID, qty)
}

func (env *testEnv) postSaleWithOrderID(t *testing.T, orderID, productID string, qty int) (*http.Response, map[string]any) {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"order_id":      orderID,
		"order_item_id": orderID + "-item",
		"customer_id":   "cust-ana",
		"seller_id":     "sell-norte",
		"product_id":    productID,
		"quantity":      qty,
	})
	require.NoError(t, err)

	resp, err := http.Post(env.server.URL+"/api/sales", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func (env *testEnv) stock(t *testing.T, productID string) int {
	t.Helper()
	var n int
	require.NoError(t, env.db.QueryRow(
		`SELECT stock FROM inventory WHERE product_id = ?`, productID).Scan(&n))
	return n
}

func TestEndToEnd_SaleFlow(t *testing.T) {
	env := setupTestEnv(t)

	// Seeded charger stock is 300.
	resp, body := env.postSale(t, "prod-charger", 2)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "USB-C Fast Charger", body["product_name"])
	assert.Equal(t, "39.98", body["total"])
	assert.Equal(t, float64(298), body["remaining_stock"])
	assert.Equal(t, 298, env.stock(t, "prod-charger"))

	// Inventory endpoint agrees with the committed state.
	invResp, err := http.Get(env.server.URL + "/api/inventory/prod-charger")
	require.NoError(t, err)
	defer invResp.Body.Close()
	require.Equal(t, http.StatusOK, invResp.StatusCode)
	var inv map[string]any
	require.NoError(t, json.NewDecoder(invResp.Body).Decode(&inv))
	assert.Equal(t, float64(298), inv["stock"])
}

func TestEndToEnd_DuplicateOrderConflict(t *testing.T) {
	env := setupTestEnv(t)
	orderID := uuid.NewString()

	resp, _ := env.postSaleWithOrderID(t, orderID, "prod-kettle", 1)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.postSaleWithOrderID(t, orderID, "prod-kettle", 1)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, 79, env.stock(t, "prod-kettle"), "replay must not decrement again")
}

func TestEndToEnd_InsufficientStock(t *testing.T) {
	env := setupTestEnv(t)

	// Seeded blender stock is 45.
	resp, body := env.postSale(t, "prod-blender", 46)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
	assert.Equal(t, 45, env.stock(t, "prod-blender"))
}

func TestEndToEnd_RequestErrors(t *testing.T) {
	env := setupTestEnv(t)

	resp, _ := env.postSale(t, "prod-nope", 1)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.postSale(t, "prod-charger", 0)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	raw, err := http.Post(env.server.URL+"/api/sales", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestEndToEnd_ConcurrentContention(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.db.Exec(`UPDATE inventory SET stock = 5 WHERE product_id = 'prod-blender'`)
	require.NoError(t, err)

	var created, soldOut atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := env.postSale(t, "prod-blender", 5)
			switch resp.StatusCode {
			case http.StatusCreated:
				created.Add(1)
			case http.StatusUnprocessableEntity:
				soldOut.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(1), soldOut.Load())
	assert.Equal(t, 0, env.stock(t, "prod-blender"))
}

func TestEndToEnd_Reports(t *testing.T) {
	env := setupTestEnv(t)

	paths := []string{
		"/api/reports/top-products",
		"/api/reports/revenue-by-category",
		"/api/reports/customer-lifetime-value",
		"/api/reports/seller-performance",
		"/api/reports/monthly-revenue",
	}
	for _, p := range paths {
		resp, err := http.Get(env.server.URL + p)
		require.NoError(t, err)
		var rows []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, p)
		assert.NotEmpty(t, rows, p)
	}

	resp, err := http.Get(env.server.URL + "/api/reports/shipping-delays")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sum map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sum))
	assert.Equal(t, float64(6), sum["delivered"], "seed has six delivered shipments")
	assert.Equal(t, float64(2), sum["late"], "seed has two late deliveries")
}

func TestEndToEnd_ReportsReflectNewSales(t *testing.T) {
	env := setupTestEnv(t)

	before, err := http.Get(env.server.URL + "/api/reports/top-products?limit=1")
	require.NoError(t, err)
	var top []map[string]any
	require.NoError(t, json.NewDecoder(before.Body).Decode(&top))
	before.Body.Close()
	require.NotEmpty(t, top)
	require.Equal(t, "prod-headphones", top[0]["product_id"])

	// A big charger sale overtakes the headphones in the ranking.
	resp, _ := env.postSale(t, "prod-charger", 25)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	after, err := http.Get(env.server.URL + "/api/reports/top-products?limit=1")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(after.Body).Decode(&top))
	after.Body.Close()
	require.NotEmpty(t, top)
	assert.Equal(t, "prod-charger", top[0]["product_id"])
}

// TestEndToEnd_WithAdmissionGate runs the gated wiring against a live Redis.
// Skipped when none is reachable.
func TestEndToEnd_WithAdmissionGate(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer rdb.Close()

	gate := storage.NewRedisAdapter(rdb)
	env := setupTestEnv(t, service.WithAdmissionGate(gate, false))

	orderID := "e2e-gate-" + uuid.NewString()
	resp, _ := env.postSaleWithOrderID(t, orderID, "prod-charger", 1)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = env.postSaleWithOrderID(t, orderID, "prod-charger", 1)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "gate rejects the replayed id")
	assert.Equal(t, 299, env.stock(t, "prod-charger"))
}
