package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/inventory-sales/internal/core/domain"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func newRevenueFixture(now time.Time) (*RevenueService, *mockSalesRepo) {
	repo := &mockSalesRepo{}
	svc := NewRevenueService(repo, domain.NewBucketer(), &fixedClock{now: now})
	return svc, repo
}

func TestRevenueByPeriod_Day(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 1, 0))
	repo.add(1, 1, 10, 1, "42.50", date(2024, 3, 1, 10))
	repo.add(2, 1, 10, 1, "99.00", date(2024, 3, 2, 10))

	start := date(2024, 3, 1, 0)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	got, err := svc.RevenueByPeriod(context.Background(), "day", &start, &end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 bucket, got %d: %+v", len(got), got)
	}
	if got[0].Period != "2024-03-01" || !got[0].Revenue.Equal(decimal.RequireFromString("42.50")) {
		t.Errorf("unexpected bucket: %+v", got[0])
	}
}

func TestRevenueByPeriod_OpenBounds(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 1, 0))
	repo.add(1, 1, 10, 1, "10", date(2023, 7, 1, 10))
	repo.add(2, 1, 10, 1, "20", date(2024, 2, 1, 10))
	repo.add(3, 1, 10, 1, "30", date(2024, 5, 1, 10))

	got, err := svc.RevenueByPeriod(context.Background(), "year", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(got))
	}
	if got[0].Period != "2023-01-01" || got[1].Period != "2024-01-01" {
		t.Errorf("unexpected keys: %s, %s", got[0].Period, got[1].Period)
	}
	if !got[1].Revenue.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected 2024 revenue 50, got %s", got[1].Revenue)
	}
	if w := repo.windows[0]; w.Start != nil || w.End != nil || w.CategoryID != nil {
		t.Errorf("expected unbounded window, got %+v", w)
	}
}

func TestRevenueByPeriod_InvalidPeriod(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 1, 0))

	_, err := svc.RevenueByPeriod(context.Background(), "quarter", nil, nil)
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if len(repo.windows) != 0 {
		t.Error("store queried for an invalid period")
	}
}

func TestRevenueByPeriod_InvertedRange(t *testing.T) {
	svc, _ := newRevenueFixture(date(2024, 6, 1, 0))
	start, end := date(2024, 3, 2, 0), date(2024, 3, 1, 0)

	_, err := svc.RevenueByPeriod(context.Background(), "day", &start, &end)
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestRevenueByPeriod_StoreError(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 1, 0))
	repo.err = errStore

	_, err := svc.RevenueByPeriod(context.Background(), "month", nil, nil)
	if !errors.Is(err, errStore) {
		t.Errorf("expected store error, got %v", err)
	}
}

func comparison(cat *int64) ComparisonQuery {
	return ComparisonQuery{
		Period1Start: date(2024, 1, 1, 0),
		Period1End:   date(2024, 1, 31, 23),
		Period2Start: date(2024, 2, 1, 0),
		Period2End:   date(2024, 2, 29, 23),
		CategoryID:   cat,
	}
}

func TestRevenueComparison_Growth(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 1, 0))
	repo.add(1, 1, 10, 1, "100", date(2024, 1, 10, 12))
	repo.add(2, 1, 10, 1, "150", date(2024, 2, 10, 12))

	got, err := svc.RevenueComparison(context.Background(), comparison(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.Period1Revenue.Equal(decimal.NewFromInt(100)) || !got.Period2Revenue.Equal(decimal.NewFromInt(150)) {
		t.Errorf("unexpected totals: %s, %s", got.Period1Revenue, got.Period2Revenue)
	}
	if !got.ChangeAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected change 50, got %s", got.ChangeAmount)
	}
	if !got.ChangePercentage.Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected change percentage 50, got %s", got.ChangePercentage)
	}
	if got.Period1Range != "2024-01-01 to 2024-01-31" || got.Period2Range != "2024-02-01 to 2024-02-29" {
		t.Errorf("unexpected range labels: %q, %q", got.Period1Range, got.Period2Range)
	}
	if got.CategoryID != nil {
		t.Errorf("expected no category echo, got %d", *got.CategoryID)
	}
}

func TestRevenueComparison_ZeroBaseline(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 1, 0))
	repo.add(1, 1, 10, 1, "150", date(2024, 2, 10, 12))

	got, err := svc.RevenueComparison(context.Background(), comparison(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Period1Revenue.IsZero() {
		t.Errorf("expected zero period 1 revenue, got %s", got.Period1Revenue)
	}
	if !got.ChangePercentage.IsZero() {
		t.Errorf("expected change percentage 0, got %s", got.ChangePercentage)
	}
	if !got.ChangeAmount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected change 150, got %s", got.ChangeAmount)
	}
}

func TestRevenueComparison_Category(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 1, 0))
	repo.add(1, 1, 10, 1, "100", date(2024, 1, 10, 12))
	repo.add(2, 2, 20, 1, "400", date(2024, 1, 11, 12))
	repo.add(3, 2, 20, 1, "100", date(2024, 2, 11, 12))

	got, err := svc.RevenueComparison(context.Background(), comparison(idPtr(20)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Period1Revenue.Equal(decimal.NewFromInt(400)) || !got.Period2Revenue.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected totals: %s, %s", got.Period1Revenue, got.Period2Revenue)
	}
	if !got.ChangePercentage.Equal(decimal.NewFromInt(-75)) {
		t.Errorf("expected -75%%, got %s", got.ChangePercentage)
	}
	if got.CategoryID == nil || *got.CategoryID != 20 {
		t.Errorf("expected category 20 echoed, got %v", got.CategoryID)
	}
	for _, w := range repo.windows {
		if w.CategoryID == nil || *w.CategoryID != 20 {
			t.Errorf("window not restricted to category: %+v", w)
		}
	}
}

func TestRevenueComparison_InvertedWindow(t *testing.T) {
	svc, _ := newRevenueFixture(date(2024, 6, 1, 0))
	q := comparison(nil)
	q.Period2End = q.Period2Start.Add(-time.Hour)

	_, err := svc.RevenueComparison(context.Background(), q)
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestSalesTrends_Window(t *testing.T) {
	now := date(2024, 6, 30, 12)

	tests := []struct {
		period   string
		n        int
		wantFrom time.Time
	}{
		{"day", 7, now.AddDate(0, 0, -7)},
		{"week", 4, now.AddDate(0, 0, -28)},
		{"month", 12, now.AddDate(0, 0, -360)},
		{"year", 2, now.AddDate(0, 0, -730)},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			svc, repo := newRevenueFixture(now)
			if _, err := svc.SalesTrends(context.Background(), tt.period, tt.n, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			w := repo.windows[0]
			if !w.Start.Equal(tt.wantFrom) {
				t.Errorf("expected start %v, got %v", tt.wantFrom, *w.Start)
			}
			if !w.End.Equal(now) {
				t.Errorf("expected end %v, got %v", now, *w.End)
			}
		})
	}
}

func TestSalesTrends_MonthBuckets(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 30, 12))
	repo.add(1, 1, 10, 2, "20", date(2024, 5, 3, 9))
	repo.add(2, 1, 10, 3, "30", date(2024, 5, 28, 9))
	repo.add(3, 2, 20, 1, "5", date(2024, 6, 2, 9))
	repo.add(4, 2, 20, 1, "1000", date(2020, 6, 2, 9))

	got, err := svc.SalesTrends(context.Background(), "month", 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %d: %+v", len(got), got)
	}

	may := got[0]
	if may.Period != "2024-05-01" || may.SalesCount != 2 || may.TotalQuantity != 5 || !may.TotalRevenue.Equal(decimal.NewFromInt(50)) {
		t.Errorf("unexpected May bucket: %+v", may)
	}
	june := got[1]
	if june.Period != "2024-06-01" || june.SalesCount != 1 || june.TotalQuantity != 1 {
		t.Errorf("unexpected June bucket: %+v", june)
	}
}

func TestSalesTrends_Category(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 30, 12))
	repo.add(1, 1, 10, 2, "20", date(2024, 6, 28, 9))
	repo.add(2, 2, 20, 1, "5", date(2024, 6, 28, 10))

	got, err := svc.SalesTrends(context.Background(), "day", 5, idPtr(20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].SalesCount != 1 || !got[0].TotalRevenue.Equal(decimal.NewFromInt(5)) {
		t.Errorf("unexpected trends: %+v", got)
	}
}

func TestSalesTrends_PeriodCountBounds(t *testing.T) {
	svc, _ := newRevenueFixture(date(2024, 6, 30, 12))

	for _, n := range []int{0, -1, 37} {
		_, err := svc.SalesTrends(context.Background(), "day", n, nil)
		if !errors.Is(err, ErrInvalidPeriodCount) {
			t.Errorf("n=%d: expected ErrInvalidPeriodCount, got %v", n, err)
		}
	}

	for _, n := range []int{1, DefaultTrendPeriods, MaxTrendPeriods} {
		if _, err := svc.SalesTrends(context.Background(), "day", n, nil); err != nil {
			t.Errorf("n=%d: unexpected error: %v", n, err)
		}
	}
}

func TestSalesTrends_InvalidPeriod(t *testing.T) {
	svc, _ := newRevenueFixture(date(2024, 6, 30, 12))

	_, err := svc.SalesTrends(context.Background(), "fortnight", 12, nil)
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestListSales(t *testing.T) {
	svc, repo := newRevenueFixture(date(2024, 6, 30, 12))
	repo.add(1, 1, 10, 1, "10", date(2024, 1, 1, 9))
	repo.add(2, 1, 10, 1, "20", date(2024, 3, 1, 9))

	sales, err := svc.ListSales(context.Background(), domain.SaleFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sales) != 2 || sales[0].ID != 2 {
		t.Errorf("expected newest first, got %+v", sales)
	}

	start, end := date(2024, 3, 1, 0), date(2024, 1, 1, 0)
	_, err = svc.ListSales(context.Background(), domain.SaleFilter{Start: &start, End: &end})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}
}
