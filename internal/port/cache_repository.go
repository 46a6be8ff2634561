package port

import (
	"context"

	"github.com/rl1809/inventory-sales/internal/core/domain"
)

type StockCache interface {
	// SetStock mirrors a product's stock level and low-stock flag. A status whose
	// LastUpdated is older than the mirrored one is ignored.
	SetStock(ctx context.Context, status domain.InventoryStatus) error
}
