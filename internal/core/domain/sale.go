package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID         int64
	ProductID  int64
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	SaleDate   time.Time
}

// SaleFilter selects sales by inclusive date bounds and either product or
// category IDs. ProductIDs wins when both are set.
type SaleFilter struct {
	Start       *time.Time
	End         *time.Time
	ProductIDs  []int64
	CategoryIDs []int64
}

// SalePoint is the slice of a sale the aggregations need.
type SalePoint struct {
	SaleDate   time.Time
	Quantity   int
	TotalPrice decimal.Decimal
}

// SaleWindow is an inclusive date window, optionally limited to one category.
type SaleWindow struct {
	Start      *time.Time
	End        *time.Time
	CategoryID *int64
}
