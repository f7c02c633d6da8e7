package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ecomlab/sale-recorder/internal/core/domain"
	"github.com/ecomlab/sale-recorder/internal/core/service"
	"github.com/ecomlab/sale-recorder/internal/metrics"
	"github.com/ecomlab/sale-recorder/internal/port"
	"github.com/ecomlab/sale-recorder/internal/reporting"
)

type HTTPHandler struct {
	sales   *service.SaleService
	store   port.SaleStore
	reports *reporting.Reports
	log     zerolog.Logger
}

func NewHTTPHandler(sales *service.SaleService, store port.SaleStore, reports *reporting.Reports, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{sales: sales, store: store, reports: reports, log: log}
}

// Router wires every caller-facing route.
func (h *HTTPHandler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", h.HealthCheck)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/sales", h.RecordSale)
		r.Get("/products/{id}", h.GetProduct)
		r.Get("/inventory/{productID}", h.GetInventory)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/top-products", h.TopProducts)
			r.Get("/revenue-by-category", h.RevenueByCategory)
			r.Get("/customer-lifetime-value", h.CustomerLifetimeValue)
			r.Get("/seller-performance", h.SellerPerformance)
			r.Get("/shipping-delays", h.ShippingDelays)
			r.Get("/monthly-revenue", h.MonthlyRevenue)
		})
	})
	return r
}

type SaleHTTPRequest struct {
	OrderID     string `json:"order_id"`
	OrderItemID string `json:"order_item_id"`
	CustomerID  string `json:"customer_id"`
	SellerID    string `json:"seller_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
}

type SaleHTTPResponse struct {
	OrderID        string `json:"order_id,omitempty"`
	ProductName    string `json:"product_name,omitempty"`
	Total          string `json:"total,omitempty"`
	RemainingStock *int   `json:"remaining_stock,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (h *HTTPHandler) RecordSale(w http.ResponseWriter, r *http.Request) {
	var req SaleHTTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.SalesTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, SaleHTTPResponse{Error: "invalid request body"})
		return
	}

	start := time.Now()
	conf, err := h.sales.RecordSale(r.Context(), domain.SaleRequest{
		OrderID:     req.OrderID,
		OrderItemID: req.OrderItemID,
		CustomerID:  req.CustomerID,
		SellerID:    req.SellerID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
	})
	metrics.SaleDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		status, outcome := saleStatus(err)
		metrics.SalesTotal.WithLabelValues(outcome).Inc()
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("order_id", req.OrderID).Msg("record sale failed")
		} else {
			h.log.Debug().Err(err).Str("order_id", req.OrderID).Msg("sale refused")
		}
		writeJSON(w, status, SaleHTTPResponse{Error: err.Error()})
		return
	}

	metrics.SalesTotal.WithLabelValues("recorded").Inc()
	h.log.Info().
		Str("order_id", conf.OrderID).
		Str("total", conf.Total.String()).
		Int("remaining_stock", conf.RemainingStock).
		Msg("sale recorded")

	remaining := conf.RemainingStock
	writeJSON(w, http.StatusCreated, SaleHTTPResponse{
		OrderID:        conf.OrderID,
		ProductName:    conf.ProductName,
		Total:          conf.Total.String(),
		RemainingStock: &remaining,
	})
}

// saleStatus maps the domain taxonomy onto HTTP. Insufficient stock is an
// expected business outcome, not a server fault.
func saleStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid"
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrInventoryNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrDuplicateOrder):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, "insufficient_stock"
	case errors.Is(err, domain.ErrTransactionAborted):
		return http.StatusServiceUnavailable, "aborted"
	default:
		return http.StatusInternalServerError, "error"
	}
}

func (h *HTTPHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.log.Error().Err(err).Msg("get product")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if p == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"category_id": p.CategoryID,
		"price":       p.Price.String(),
		"cost":        p.Cost.String(),
	})
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	inv, err := h.store.GetInventory(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.log.Error().Err(err).Msg("get inventory")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if inv == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no inventory record"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"product_id":   inv.ProductID,
		"warehouse_id": inv.WarehouseID,
		"stock":        inv.Stock,
		"version":      inv.Version,
	})
}

func (h *HTTPHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.TopProducts(r.Context(), queryLimit(r, 10))
	h.writeReport(w, rows, err)
}

func (h *HTTPHandler) RevenueByCategory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.RevenueByCategory(r.Context())
	h.writeReport(w, rows, err)
}

func (h *HTTPHandler) CustomerLifetimeValue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.CustomerLifetimeValue(r.Context(), queryLimit(r, 10))
	h.writeReport(w, rows, err)
}

func (h *HTTPHandler) SellerPerformance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.SellerPerformanceReport(r.Context())
	h.writeReport(w, rows, err)
}

func (h *HTTPHandler) ShippingDelays(w http.ResponseWriter, r *http.Request) {
	sum, err := h.reports.ShippingDelays(r.Context())
	h.writeReport(w, sum, err)
}

func (h *HTTPHandler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.MonthlyRevenueReport(r.Context())
	h.writeReport(w, rows, err)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeReport(w http.ResponseWriter, data any, err error) {
	if err != nil {
		h.log.Error().Err(err).Msg("report query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func queryLimit(r *http.Request, def int) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
