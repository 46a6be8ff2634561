package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rl1809/inventory-sales/internal/apperror"
	"github.com/rl1809/inventory-sales/internal/core/domain"
	"github.com/rl1809/inventory-sales/internal/core/service"
	"github.com/rl1809/inventory-sales/internal/observability"
)

type InventoryReporter interface {
	GetStatus(ctx context.Context, filter domain.StockFilter) ([]domain.InventoryStatus, error)
	UpdateQuantity(ctx context.Context, productID int64, newQuantity int) (*domain.InventoryStatus, error)
}

type RevenueReporter interface {
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)
	RevenueByPeriod(ctx context.Context, period string, start, end *time.Time) ([]domain.PeriodRevenue, error)
	RevenueComparison(ctx context.Context, q service.ComparisonQuery) (*domain.RevenueComparison, error)
	SalesTrends(ctx context.Context, period string, nPeriods int, categoryID *int64) ([]domain.SalesTrend, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPHandler struct {
	inventory InventoryReporter
	revenue   RevenueReporter
	db        Pinger
	loc       *time.Location
	logger    *slog.Logger
}

// NewHTTPHandler builds the REST handlers. loc is the zone used for dates
// given without an offset.
func NewHTTPHandler(inventory InventoryReporter, revenue RevenueReporter, db Pinger, loc *time.Location, logger *slog.Logger) *HTTPHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &HTTPHandler{
		inventory: inventory,
		revenue:   revenue,
		db:        db,
		loc:       loc,
		logger:    logger,
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /inventory", h.GetInventory)
	mux.HandleFunc("GET /inventory/{$}", h.GetInventory)
	mux.HandleFunc("PUT /inventory/{product_id}", h.UpdateInventory)
	mux.HandleFunc("GET /sales", h.ListSales)
	mux.HandleFunc("GET /sales/revenue/{period}", h.RevenueByPeriod)
	mux.HandleFunc("GET /sales/compare", h.CompareRevenue)
	mux.HandleFunc("GET /sales/trends/{period}", h.SalesTrends)
}

type InventoryUpdateRequest struct {
	NewQuantity *int `json:"new_quantity"`
}

func (h *HTTPHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lowStockOnly, err := optionalBool(q, "low_stock_only")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	categoryID, err := optionalID(q, "category_id")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	statuses, err := h.inventory.GetStatus(r.Context(), domain.StockFilter{
		LowStockOnly: lowStockOnly,
		CategoryID:   categoryID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]inventoryStatusJSON, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toInventoryStatusJSON(s))
	}
	apperror.WriteSuccess(w, http.StatusOK, out)
}

func (h *HTTPHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	productID, err := parseID(r.PathValue("product_id"))
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	var req InventoryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, apperror.BadRequest("invalid request body"))
		return
	}
	if req.NewQuantity == nil {
		h.fail(w, r, apperror.BadRequest("new_quantity is required"))
		return
	}

	status, err := h.inventory.UpdateQuantity(r.Context(), productID, *req.NewQuantity)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperror.WriteSuccess(w, http.StatusOK, toInventoryStatusJSON(*status))
}

func (h *HTTPHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		filter domain.SaleFilter
		err    error
	)
	if filter.Start, err = optionalDate(q, "start_date", h.loc, false); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if filter.End, err = optionalDate(q, "end_date", h.loc, true); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if filter.ProductIDs, err = idList(q, "product_ids"); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if filter.CategoryIDs, err = idList(q, "category_ids"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	sales, err := h.revenue.ListSales(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]saleJSON, 0, len(sales))
	for _, s := range sales {
		out = append(out, saleJSON{
			ID:         s.ID,
			ProductID:  s.ProductID,
			Quantity:   s.Quantity,
			UnitPrice:  s.UnitPrice.InexactFloat64(),
			TotalPrice: s.TotalPrice.InexactFloat64(),
			SaleDate:   s.SaleDate,
		})
	}
	apperror.WriteSuccess(w, http.StatusOK, out)
}

func (h *HTTPHandler) RevenueByPeriod(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := optionalDate(q, "start_date", h.loc, false)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	end, err := optionalDate(q, "end_date", h.loc, true)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	buckets, err := h.revenue.RevenueByPeriod(r.Context(), r.PathValue("period"), start, end)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]periodRevenueJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, periodRevenueJSON{Period: b.Period, Revenue: b.Revenue.InexactFloat64()})
	}
	apperror.WriteSuccess(w, http.StatusOK, out)
}

func (h *HTTPHandler) CompareRevenue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		query service.ComparisonQuery
		err   error
	)
	if query.Period1Start, err = requiredDate(q, "period1_start", h.loc, false); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if query.Period1End, err = requiredDate(q, "period1_end", h.loc, true); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if query.Period2Start, err = requiredDate(q, "period2_start", h.loc, false); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if query.Period2End, err = requiredDate(q, "period2_end", h.loc, true); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if query.CategoryID, err = optionalID(q, "category_id"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	cmp, err := h.revenue.RevenueComparison(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	apperror.WriteSuccess(w, http.StatusOK, revenueComparisonJSON{
		Period1Revenue:   cmp.Period1Revenue.InexactFloat64(),
		Period2Revenue:   cmp.Period2Revenue.InexactFloat64(),
		ChangeAmount:     cmp.ChangeAmount.InexactFloat64(),
		ChangePercentage: cmp.ChangePercentage.InexactFloat64(),
		Period1Range:     cmp.Period1Range,
		Period2Range:     cmp.Period2Range,
		CategoryID:       cmp.CategoryID,
	})
}

func (h *HTTPHandler) SalesTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	nPeriods, err := optionalInt(q, "n_periods", service.DefaultTrendPeriods)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	categoryID, err := optionalID(q, "category_id")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	trends, err := h.revenue.SalesTrends(r.Context(), r.PathValue("period"), nPeriods, categoryID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make([]salesTrendJSON, 0, len(trends))
	for _, t := range trends {
		out = append(out, salesTrendJSON{
			Period:        t.Period,
			SalesCount:    t.SalesCount,
			TotalQuantity: t.TotalQuantity,
			TotalRevenue:  t.TotalRevenue.InexactFloat64(),
		})
	}
	apperror.WriteSuccess(w, http.StatusOK, out)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.fail(w, r, apperror.BadRequest(err.Error()))
}

func (h *HTTPHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	apperror.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
