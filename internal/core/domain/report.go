package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type PeriodRevenue struct {
	Period  string
	Revenue decimal.Decimal
}

type RevenueComparison struct {
	Period1Revenue   decimal.Decimal
	Period2Revenue   decimal.Decimal
	ChangeAmount     decimal.Decimal
	ChangePercentage decimal.Decimal
	Period1Range     string
	Period2Range     string
	CategoryID       *int64
}

type SalesTrend struct {
	Period        string
	SalesCount    int
	TotalQuantity int
	TotalRevenue  decimal.Decimal
}

// CompareRevenue computes the delta between two window totals. The percentage
// is zero when the first window earned nothing.
func CompareRevenue(period1, period2 decimal.Decimal) (change, percentage decimal.Decimal) {
	change = period2.Sub(period1)
	if period1.IsZero() {
		return change, decimal.Zero
	}
	return change, change.Div(period1).Mul(hundred)
}

// BucketRevenue sums TotalPrice per bucket. Empty buckets are omitted and the
// result is ordered by key.
func BucketRevenue(b Bucketer, p Period, points []SalePoint) ([]PeriodRevenue, error) {
	trends, err := BucketTrends(b, p, points)
	if err != nil {
		return nil, err
	}
	out := make([]PeriodRevenue, 0, len(trends))
	for _, t := range trends {
		out = append(out, PeriodRevenue{Period: t.Period, Revenue: t.TotalRevenue})
	}
	return out, nil
}

// BucketTrends counts sales and sums quantity and revenue per bucket in one
// pass over points.
func BucketTrends(b Bucketer, p Period, points []SalePoint) ([]SalesTrend, error) {
	buckets := make(map[string]*SalesTrend)
	for _, pt := range points {
		key, err := b.Key(p, pt.SaleDate)
		if err != nil {
			return nil, err
		}
		t, ok := buckets[key]
		if !ok {
			t = &SalesTrend{Period: key, TotalRevenue: decimal.Zero}
			buckets[key] = t
		}
		t.SalesCount++
		t.TotalQuantity += pt.Quantity
		t.TotalRevenue = t.TotalRevenue.Add(pt.TotalPrice)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]SalesTrend, 0, len(keys))
	for _, k := range keys {
		out = append(out, *buckets[k])
	}
	return out, nil
}
