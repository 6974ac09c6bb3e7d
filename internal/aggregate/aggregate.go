package aggregate

import (
	"sort"

	"github.com/Alias1177/RevenueIntel/models"
)

// Monthly collapses order-level records into a chronological monthly KPI
// series. Months with no orders are simply absent; downstream consumers
// tolerate gaps.
func Monthly(orders []models.Order) ([]models.MonthlyAggregate, error) {
	if len(orders) == 0 {
		return nil, &models.EmptyInputError{Op: "aggregate.Monthly"}
	}

	type bucket struct {
		revenue float64
		ids     map[string]struct{}
		rows    int
	}

	buckets := make(map[models.Period]*bucket)
	for _, o := range orders {
		p := models.PeriodOf(o.OrderDate)
		b, ok := buckets[p]
		if !ok {
			b = &bucket{ids: make(map[string]struct{})}
			buckets[p] = b
		}
		b.revenue += o.Revenue
		b.rows++
		if o.OrderID != "" {
			b.ids[o.OrderID] = struct{}{}
		}
	}

	series := make([]models.MonthlyAggregate, 0, len(buckets))
	for p, b := range buckets {
		// Orders counts distinct order IDs; rows without an ID fall back
		// to a plain row count.
		count := len(b.ids)
		if count == 0 {
			count = b.rows
		}
		agg := models.MonthlyAggregate{
			Period:  p,
			Revenue: b.revenue,
			Orders:  float64(count),
		}
		if count > 0 {
			agg.AOV = b.revenue / float64(count)
		}
		series = append(series, agg)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Period.Before(series[j].Period)
	})
	return series, nil
}

// Overview sums the whole dataset into a single snapshot: total revenue,
// distinct order count and overall AOV.
func Overview(orders []models.Order) (revenue float64, orderCount int, aov float64, err error) {
	if len(orders) == 0 {
		return 0, 0, 0, &models.EmptyInputError{Op: "aggregate.Overview"}
	}

	ids := make(map[string]struct{}, len(orders))
	rows := 0
	for _, o := range orders {
		revenue += o.Revenue
		rows++
		if o.OrderID != "" {
			ids[o.OrderID] = struct{}{}
		}
	}
	orderCount = len(ids)
	if orderCount == 0 {
		orderCount = rows
	}
	aov = revenue / float64(orderCount)
	return revenue, orderCount, aov, nil
}
