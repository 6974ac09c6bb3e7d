package validation

import (
	"testing"
	"time"

	"github.com/Alias1177/RevenueIntel/models"
)

func order(id string, qty int, price, revenue float64) models.Order {
	return models.Order{
		OrderID:     id,
		OrderDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		ProductName: "Widget",
		Category:    "Hardware",
		Region:      "EU",
		Quantity:    qty,
		UnitPrice:   price,
		Revenue:     revenue,
	}
}

func TestMissingColumns(t *testing.T) {
	complete := []string{
		"order_id", "order_date", "product_name", "category",
		"region", "quantity", "unit_price", "revenue",
	}
	if got := MissingColumns(complete); len(got) != 0 {
		t.Errorf("MissingColumns(complete) = %v, want none", got)
	}

	got := MissingColumns([]string{"order_id", "order_date", "revenue"})
	want := []string{"product_name", "category", "region", "quantity", "unit_price"}
	if len(got) != len(want) {
		t.Fatalf("MissingColumns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MissingColumns()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBusinessRuleIssues(t *testing.T) {
	orders := []models.Order{
		order("ok", 2, 50, 100),
		order("zero-qty", 0, 50, 0),
		order("free", 3, 0, 0),
		order("drifted", 2, 50, 100.5), // inside tolerance
		order("mismatch", 2, 50, 150),  // off by 50
	}

	invalidQty, invalidPrice, mismatch := BusinessRuleIssues(orders)

	if len(invalidQty) != 1 || invalidQty[0].OrderID != "zero-qty" {
		t.Errorf("invalidQuantity = %v, want [zero-qty]", ids(invalidQty))
	}
	if len(invalidPrice) != 1 || invalidPrice[0].OrderID != "free" {
		t.Errorf("invalidPrice = %v, want [free]", ids(invalidPrice))
	}
	if len(mismatch) != 1 || mismatch[0].OrderID != "mismatch" {
		t.Errorf("revenueMismatch = %v, want [mismatch]", ids(mismatch))
	}
}

func TestRevenueOutliers(t *testing.T) {
	orders := []models.Order{
		order("a", 1, 100, 100),
		order("b", 1, 110, 110),
		order("c", 1, 95, 95),
		order("d", 1, 105, 105),
		order("e", 1, 98, 98),
		order("spike", 1, 5000, 5000),
	}

	outliers := RevenueOutliers(orders)
	if len(outliers) != 1 || outliers[0].OrderID != "spike" {
		t.Errorf("RevenueOutliers() = %v, want [spike]", ids(outliers))
	}

	if got := RevenueOutliers(orders[:3]); got != nil {
		t.Errorf("RevenueOutliers(3 rows) = %v, want nil", ids(got))
	}
}

func TestRun(t *testing.T) {
	headers := []string{
		"order_id", "order_date", "product_name", "category",
		"region", "quantity", "unit_price", "revenue",
	}
	orders := []models.Order{
		order("a", 1, 100, 100),
		order("b", 2, 50, 100),
	}

	report := Run(headers, orders)
	if !report.Clean() {
		t.Errorf("Run() report not clean: %+v", report)
	}

	dirty := Run(headers[:2], append(orders, order("bad", 0, 10, 500)))
	if dirty.Clean() {
		t.Error("Run() with violations reported clean")
	}
}

func ids(orders []models.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.OrderID
	}
	return out
}
