package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/inventory-sales/internal/core/domain"
	"github.com/rl1809/inventory-sales/internal/port"
)

const (
	DefaultTrendPeriods = 12
	MaxTrendPeriods     = 36
)

var (
	ErrInvalidPeriodCount = errors.New("n_periods must be between 1 and 36")
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
)

type RevenueService struct {
	repo     port.SalesRepository
	bucketer domain.Bucketer
	clock    port.Clock
}

func NewRevenueService(repo port.SalesRepository, bucketer domain.Bucketer, clock port.Clock) *RevenueService {
	if clock == nil {
		clock = port.SystemClock{}
	}
	return &RevenueService{
		repo:     repo,
		bucketer: bucketer,
		clock:    clock,
	}
}

type ComparisonQuery struct {
	Period1Start time.Time
	Period1End   time.Time
	Period2Start time.Time
	Period2End   time.Time
	CategoryID   *int64
}

func (s *RevenueService) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.Sale, error) {
	if err := checkRange(filter.Start, filter.End); err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (s *RevenueService) RevenueByPeriod(ctx context.Context, periodTag string, start, end *time.Time) ([]domain.PeriodRevenue, error) {
	period, err := domain.ParsePeriod(periodTag)
	if err != nil {
		return nil, err
	}
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	points, err := s.repo.SalePoints(ctx, domain.SaleWindow{Start: start, End: end})
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	return domain.BucketRevenue(s.bucketer, period, points)
}

func (s *RevenueService) RevenueComparison(ctx context.Context, q ComparisonQuery) (*domain.RevenueComparison, error) {
	if q.Period1End.Before(q.Period1Start) || q.Period2End.Before(q.Period2Start) {
		return nil, ErrInvalidDateRange
	}

	period1, err := s.repo.SumRevenue(ctx, domain.SaleWindow{
		Start:      &q.Period1Start,
		End:        &q.Period1End,
		CategoryID: q.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("sum period 1 revenue: %w", err)
	}

	period2, err := s.repo.SumRevenue(ctx, domain.SaleWindow{
		Start:      &q.Period2Start,
		End:        &q.Period2End,
		CategoryID: q.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("sum period 2 revenue: %w", err)
	}

	change, percentage := domain.CompareRevenue(period1, period2)
	return &domain.RevenueComparison{
		Period1Revenue:   period1,
		Period2Revenue:   period2,
		ChangeAmount:     change,
		ChangePercentage: percentage,
		Period1Range:     domain.FormatRange(q.Period1Start, q.Period1End),
		Period2Range:     domain.FormatRange(q.Period2Start, q.Period2End),
		CategoryID:       q.CategoryID,
	}, nil
}

func (s *RevenueService) SalesTrends(ctx context.Context, periodTag string, nPeriods int, categoryID *int64) ([]domain.SalesTrend, error) {
	period, err := domain.ParsePeriod(periodTag)
	if err != nil {
		return nil, err
	}
	if nPeriods < 1 || nPeriods > MaxTrendPeriods {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriodCount, nPeriods)
	}

	end := s.clock.Now()
	start := end.Add(-time.Duration(nPeriods) * period.UnitDuration())

	points, err := s.repo.SalePoints(ctx, domain.SaleWindow{
		Start:      &start,
		End:        &end,
		CategoryID: categoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	return domain.BucketTrends(s.bucketer, period, points)
}

func checkRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidDateRange
	}
	return nil
}
