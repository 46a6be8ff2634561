package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/inventory-sales/internal/core/domain"
)

// Mock InventoryRepository
type mockInventoryRepo struct {
	mu       sync.Mutex
	rows     map[int64]domain.Inventory
	products map[int64]domain.Product
	listErr  error
}

func newMockInventoryRepo() *mockInventoryRepo {
	return &mockInventoryRepo{
		rows:     make(map[int64]domain.Inventory),
		products: make(map[int64]domain.Product),
	}
}

func (m *mockInventoryRepo) add(product domain.Product, inv domain.Inventory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv.ProductID = product.ID
	m.products[product.ID] = product
	m.rows[product.ID] = inv
}

func (m *mockInventoryRepo) ListInventory(ctx context.Context, filter domain.StockFilter) ([]domain.InventoryStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]domain.InventoryStatus, 0)
	for _, id := range ids {
		inv, product := m.rows[id], m.products[id]
		if filter.LowStockOnly != nil && *filter.LowStockOnly != inv.IsLowStock() {
			continue
		}
		if filter.CategoryID != nil && *filter.CategoryID != product.CategoryID {
			continue
		}
		out = append(out, domain.NewInventoryStatus(inv, product))
	}
	return out, nil
}

func (m *mockInventoryRepo) UpdateInventory(ctx context.Context, productID int64, fn func(inv *domain.Inventory) error) (*domain.InventoryStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.rows[productID]
	if !ok {
		return nil, domain.ErrInventoryNotFound
	}
	if err := fn(&inv); err != nil {
		return nil, err
	}
	m.rows[productID] = inv

	status := domain.NewInventoryStatus(inv, m.products[productID])
	return &status, nil
}

// Mock StockCache. Like the Redis mirror, it ignores statuses older than the
// one it holds.
type mockStockCache struct {
	mu      sync.Mutex
	stock   map[int64]int
	low     map[int64]bool
	updated map[int64]time.Time
	err     error

	// beforeWrite runs outside the lock, letting a test delay a write.
	beforeWrite func(status domain.InventoryStatus)
}

func newMockStockCache() *mockStockCache {
	return &mockStockCache{
		stock:   make(map[int64]int),
		low:     make(map[int64]bool),
		updated: make(map[int64]time.Time),
	}
}

func (m *mockStockCache) SetStock(ctx context.Context, status domain.InventoryStatus) error {
	if m.beforeWrite != nil {
		m.beforeWrite(status)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if prev, ok := m.updated[status.ProductID]; ok && prev.After(status.LastUpdated) {
		return nil
	}
	m.stock[status.ProductID] = status.CurrentQuantity
	m.low[status.ProductID] = status.LowStockAlert
	m.updated[status.ProductID] = status.LastUpdated
	return nil
}

// Mock SalesRepository
type mockSalesRepo struct {
	sales   []salesRow
	windows []domain.SaleWindow
	err     error
}

type salesRow struct {
	sale       domain.Sale
	categoryID int64
}

func (m *mockSalesRepo) add(id, productID, categoryID int64, qty int, total string, at time.Time) {
	amount := decimal.RequireFromString(total)
	m.sales = append(m.sales, salesRow{
		sale: domain.Sale{
			ID:         id,
			ProductID:  productID,
			Quantity:   qty,
			UnitPrice:  amount.Div(decimal.NewFromInt(int64(qty))),
			TotalPrice: amount,
			SaleDate:   at,
		},
		categoryID: categoryID,
	})
}

func (m *mockSalesRepo) match(row salesRow, w domain.SaleWindow) bool {
	if w.Start != nil && row.sale.SaleDate.Before(*w.Start) {
		return false
	}
	if w.End != nil && row.sale.SaleDate.After(*w.End) {
		return false
	}
	if w.CategoryID != nil && *w.CategoryID != row.categoryID {
		return false
	}
	return true
}

func (m *mockSalesRepo) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Sale, 0)
	for _, row := range m.sales {
		if !m.match(row, domain.SaleWindow{Start: filter.Start, End: filter.End}) {
			continue
		}
		out = append(out, row.sale)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out, nil
}

func (m *mockSalesRepo) SalePoints(ctx context.Context, w domain.SaleWindow) ([]domain.SalePoint, error) {
	m.windows = append(m.windows, w)
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.SalePoint, 0)
	for _, row := range m.sales {
		if m.match(row, w) {
			out = append(out, domain.SalePoint{
				SaleDate:   row.sale.SaleDate,
				Quantity:   row.sale.Quantity,
				TotalPrice: row.sale.TotalPrice,
			})
		}
	}
	return out, nil
}

func (m *mockSalesRepo) SumRevenue(ctx context.Context, w domain.SaleWindow) (decimal.Decimal, error) {
	m.windows = append(m.windows, w)
	if m.err != nil {
		return decimal.Zero, m.err
	}
	total := decimal.Zero
	for _, row := range m.sales {
		if m.match(row, w) {
			total = total.Add(row.sale.TotalPrice)
		}
	}
	return total, nil
}

// Fixed clock
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errStore = errors.New("store unavailable")
