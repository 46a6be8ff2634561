package handler

import (
	"time"

	"github.com/rl1809/inventory-sales/internal/core/domain"
)

type inventoryStatusJSON struct {
	ProductID         int64     `json:"product_id"`
	ProductName       string    `json:"product_name"`
	CategoryID        int64     `json:"category_id"`
	CurrentQuantity   int       `json:"current_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	LastUpdated       time.Time `json:"last_updated"`
	LowStockAlert     bool      `json:"low_stock_alert"`
}

func toInventoryStatusJSON(s domain.InventoryStatus) inventoryStatusJSON {
	return inventoryStatusJSON{
		ProductID:         s.ProductID,
		ProductName:       s.ProductName,
		CategoryID:        s.CategoryID,
		CurrentQuantity:   s.CurrentQuantity,
		LowStockThreshold: s.LowStockThreshold,
		LastUpdated:       s.LastUpdated,
		LowStockAlert:     s.LowStockAlert,
	}
}

type saleJSON struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
	SaleDate   time.Time `json:"sale_date"`
}

type periodRevenueJSON struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
}

type revenueComparisonJSON struct {
	Period1Revenue   float64 `json:"period1_revenue"`
	Period2Revenue   float64 `json:"period2_revenue"`
	ChangeAmount     float64 `json:"change_amount"`
	ChangePercentage float64 `json:"change_percentage"`
	Period1Range     string  `json:"period1_range"`
	Period2Range     string  `json:"period2_range"`
	CategoryID       *int64  `json:"category_id"`
}

type salesTrendJSON struct {
	Period        string  `json:"period"`
	SalesCount    int     `json:"sales_count"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}
