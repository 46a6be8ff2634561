package domain

import "time"

const DefaultLowStockThreshold = 10

type Inventory struct {
	ProductID         int64
	Quantity          int
	LowStockThreshold int
	LastUpdated       time.Time
}

// IsLowStock reports whether the quantity is at or below the threshold.
func (i Inventory) IsLowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

// SetQuantity applies a stock level and refreshes the timestamp. The timestamp
// never moves backwards, even if the clock does, and is kept at the store's
// microsecond precision in UTC.
func (i *Inventory) SetQuantity(quantity int, now time.Time) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}
	i.Quantity = quantity
	now = now.UTC().Truncate(time.Microsecond)
	if now.After(i.LastUpdated) {
		i.LastUpdated = now
	}
	return nil
}

// InventoryStatus is an inventory row joined with its product.
type InventoryStatus struct {
	ProductID         int64
	ProductName       string
	CategoryID        int64
	CurrentQuantity   int
	LowStockThreshold int
	LastUpdated       time.Time
	LowStockAlert     bool
}

func NewInventoryStatus(inv Inventory, product Product) InventoryStatus {
	return InventoryStatus{
		ProductID:         inv.ProductID,
		ProductName:       product.Name,
		CategoryID:        product.CategoryID,
		CurrentQuantity:   inv.Quantity,
		LowStockThreshold: inv.LowStockThreshold,
		LastUpdated:       inv.LastUpdated,
		LowStockAlert:     inv.IsLowStock(),
	}
}

// StockFilter narrows an inventory listing. A nil field means no filter.
type StockFilter struct {
	LowStockOnly *bool
	CategoryID   *int64
}
