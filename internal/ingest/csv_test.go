package ingest

import (
	"strings"
	"testing"
	"time"
)

const sampleCSV = `order_id,order_date,product_name,category,region,quantity,unit_price,revenue
ORD-1,2024-01-05,Widget,Hardware,EU,2,49.99,99.98
ORD-2,2024-01-20,Gadget,Software,US,1,$199.00,199.00
ORD-3,not-a-date,Widget,Hardware,EU,1,10.00,10.00
ORD-4,2024-02-03,Doohickey,Hardware,APAC,3,15.50,46.50
`

func TestParse(t *testing.T) {
	result, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(result.Orders) != 3 {
		t.Fatalf("Parse() loaded %d orders, want 3", len(result.Orders))
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}
	if len(result.Headers) != 8 || result.Headers[0] != "order_id" {
		t.Errorf("Headers = %v", result.Headers)
	}

	first := result.Orders[0]
	if first.OrderID != "ORD-1" {
		t.Errorf("OrderID = %s, want ORD-1", first.OrderID)
	}
	if !first.OrderDate.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("OrderDate = %v", first.OrderDate)
	}
	if first.Quantity != 2 || first.UnitPrice != 49.99 || first.Revenue != 99.98 {
		t.Errorf("parsed order = %+v", first)
	}

	// Currency prefix on money columns is tolerated.
	if result.Orders[1].UnitPrice != 199.00 {
		t.Errorf("UnitPrice = %v, want 199.00", result.Orders[1].UnitPrice)
	}
}

func TestParseHeaderOnly(t *testing.T) {
	result, err := Parse(strings.NewReader("order_id,order_date,quantity,unit_price,revenue\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(result.Orders) != 0 {
		t.Errorf("Parse() loaded %d orders, want 0", len(result.Orders))
	}
}

func TestParseNoHeader(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("Parse(empty) expected error, got nil")
	}
}
