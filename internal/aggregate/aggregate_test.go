package aggregate

import (
	"errors"
	"testing"
	"time"

	"github.com/Alias1177/RevenueIntel/models"
)

func makeOrder(id, date string, revenue float64) models.Order {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.Order{
		OrderID:     id,
		OrderDate:   t,
		ProductName: "Widget",
		Category:    "Hardware",
		Region:      "EU",
		Quantity:    1,
		UnitPrice:   revenue,
		Revenue:     revenue,
	}
}

func TestMonthly(t *testing.T) {
	orders := []models.Order{
		makeOrder("o-3", "2024-02-14", 50),
		makeOrder("o-1", "2024-01-05", 100),
		makeOrder("o-2", "2024-01-20", 200),
		makeOrder("o-4", "2024-04-01", 80), // March has no orders
	}

	series, err := Monthly(orders)
	if err != nil {
		t.Fatalf("Monthly() error = %v", err)
	}

	if len(series) != 3 {
		t.Fatalf("Monthly() returned %d periods, want 3", len(series))
	}

	want := []struct {
		period  string
		revenue float64
		orders  float64
		aov     float64
	}{
		{"2024-01", 300, 2, 150},
		{"2024-02", 50, 1, 50},
		{"2024-04", 80, 1, 80},
	}
	for i, w := range want {
		got := series[i]
		if got.Period.String() != w.period {
			t.Errorf("series[%d].Period = %s, want %s", i, got.Period, w.period)
		}
		if got.Revenue != w.revenue {
			t.Errorf("series[%d].Revenue = %v, want %v", i, got.Revenue, w.revenue)
		}
		if got.Orders != w.orders {
			t.Errorf("series[%d].Orders = %v, want %v", i, got.Orders, w.orders)
		}
		if got.AOV != w.aov {
			t.Errorf("series[%d].AOV = %v, want %v", i, got.AOV, w.aov)
		}
	}
}

func TestMonthlyDistinctOrderIDs(t *testing.T) {
	// Two line items of the same order count as one order.
	orders := []models.Order{
		makeOrder("o-1", "2024-01-05", 100),
		makeOrder("o-1", "2024-01-05", 40),
		makeOrder("o-2", "2024-01-20", 60),
	}

	series, err := Monthly(orders)
	if err != nil {
		t.Fatalf("Monthly() error = %v", err)
	}
	if series[0].Orders != 2 {
		t.Errorf("Orders = %v, want 2 (distinct IDs)", series[0].Orders)
	}
	if series[0].AOV != 100 {
		t.Errorf("AOV = %v, want 100", series[0].AOV)
	}
}

func TestMonthlyEmptyInput(t *testing.T) {
	_, err := Monthly(nil)
	var emptyErr *models.EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Monthly(nil) error = %v, want EmptyInputError", err)
	}
}

func TestOverview(t *testing.T) {
	orders := []models.Order{
		makeOrder("o-1", "2024-01-05", 100),
		makeOrder("o-2", "2024-02-20", 300),
	}

	revenue, count, aov, err := Overview(orders)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if revenue != 400 || count != 2 || aov != 200 {
		t.Errorf("Overview() = (%v, %v, %v), want (400, 2, 200)", revenue, count, aov)
	}

	if _, _, _, err := Overview(nil); err == nil {
		t.Error("Overview(nil) expected error, got nil")
	}
}
