package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rl1809/inventory-sales/internal/core/domain"
)

type InventoryRepository interface {
	// ListInventory returns inventory rows joined with their products, ordered by product ID
	ListInventory(ctx context.Context, filter domain.StockFilter) ([]domain.InventoryStatus, error)

	// UpdateInventory locks the product's inventory row in a transaction, applies fn and
	// persists the result. Returns domain.ErrInventoryNotFound if the row does not exist.
	// Nothing is written when fn returns an error.
	UpdateInventory(ctx context.Context, productID int64, fn func(inv *domain.Inventory) error) (*domain.InventoryStatus, error)
}

type SalesRepository interface {
	// ListSales returns matching sales, newest first
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error)

	// SalePoints returns date, quantity and total price of every sale in the window
	SalePoints(ctx context.Context, window domain.SaleWindow) ([]domain.SalePoint, error)

	// SumRevenue returns the total price of all sales in the window, zero if there are none
	SumRevenue(ctx context.Context, window domain.SaleWindow) (decimal.Decimal, error)
}
