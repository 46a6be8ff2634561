package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rl1809/inventory-sales/internal/core/domain"
	"github.com/rl1809/inventory-sales/internal/port"
)

type InventoryService struct {
	repo   port.InventoryRepository
	cache  port.StockCache
	clock  port.Clock
	logger *slog.Logger
}

// NewInventoryService wires the inventory reporter. cache may be nil, in which
// case stock levels are not mirrored.
func NewInventoryService(repo port.InventoryRepository, cache port.StockCache, clock port.Clock, logger *slog.Logger) *InventoryService {
	if clock == nil {
		clock = port.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryService{
		repo:   repo,
		cache:  cache,
		clock:  clock,
		logger: logger,
	}
}

func (s *InventoryService) GetStatus(ctx context.Context, filter domain.StockFilter) ([]domain.InventoryStatus, error) {
	statuses, err := s.repo.ListInventory(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return statuses, nil
}

func (s *InventoryService) UpdateQuantity(ctx context.Context, productID int64, newQuantity int) (*domain.InventoryStatus, error) {
	status, err := s.repo.UpdateInventory(ctx, productID, func(inv *domain.Inventory) error {
		return inv.SetQuantity(newQuantity, s.clock.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("update inventory for product %d: %w", productID, err)
	}

	if s.cache != nil {
		if err := s.cache.SetStock(ctx, *status); err != nil {
			s.logger.WarnContext(ctx, "failed to mirror stock level",
				"product_id", productID,
				"quantity", status.CurrentQuantity,
				"error", err,
			)
		}
	}

	return status, nil
}

// SyncStockCache copies every inventory row into the stock cache and returns
// how many were written.
func (s *InventoryService) SyncStockCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}

	statuses, err := s.repo.ListInventory(ctx, domain.StockFilter{})
	if err != nil {
		return 0, fmt.Errorf("list inventory: %w", err)
	}

	for i, status := range statuses {
		if err := s.cache.SetStock(ctx, status); err != nil {
			return i, fmt.Errorf("mirror product %d: %w", status.ProductID, err)
		}
	}
	return len(statuses), nil
}
