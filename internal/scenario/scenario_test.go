package scenario

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Alias1177/RevenueIntel/models"
)

func baselineAgg() models.MonthlyAggregate {
	return models.MonthlyAggregate{
		Period:  models.Period{Year: 2024, Month: 6},
		Revenue: 10000,
		Orders:  100,
		AOV:     100,
	}
}

func TestSimulateIdentity(t *testing.T) {
	result, err := Simulate(baselineAgg(), models.ScenarioAssumption{}, DefaultBounds())
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if result.Adjusted.Revenue != result.Baseline.Revenue {
		t.Errorf("identity Revenue = %v, want %v", result.Adjusted.Revenue, result.Baseline.Revenue)
	}
	if result.Adjusted.Orders != result.Baseline.Orders {
		t.Errorf("identity Orders = %v, want %v", result.Adjusted.Orders, result.Baseline.Orders)
	}
	if result.Adjusted.AOV != result.Baseline.AOV {
		t.Errorf("identity AOV = %v, want %v", result.Adjusted.AOV, result.Baseline.AOV)
	}
	if result.Delta.RevenueDelta != 0 {
		t.Errorf("identity RevenueDelta = %v, want 0", result.Delta.RevenueDelta)
	}
}

func TestSimulateExample(t *testing.T) {
	// +10% price, -5% volume, no discount: factors 1.10 and 0.95.
	assumption := models.ScenarioAssumption{PriceChange: 0.10, VolumeChange: -0.05}

	result, err := Simulate(baselineAgg(), assumption, DefaultBounds())
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if math.Abs(result.Adjusted.Revenue-10450) > 1e-9 {
		t.Errorf("Adjusted.Revenue = %v, want 10450", result.Adjusted.Revenue)
	}
	if math.Abs(result.Adjusted.Orders-95) > 1e-9 {
		t.Errorf("Adjusted.Orders = %v, want 95", result.Adjusted.Orders)
	}
	if math.Abs(result.Adjusted.AOV-110) > 1e-9 {
		t.Errorf("Adjusted.AOV = %v, want 110", result.Adjusted.AOV)
	}

	// Scenario impact reconciles through the decomposition contract.
	sum := result.Delta.VolumeEffect + result.Delta.AOVEffect + result.Delta.Residual
	if math.Abs(sum-result.Delta.RevenueDelta) > 1e-9 {
		t.Errorf("effects sum %v, want delta %v", sum, result.Delta.RevenueDelta)
	}
}

func TestSimulateDiscount(t *testing.T) {
	assumption := models.ScenarioAssumption{PriceChange: 0.10, Discount: 0.10}

	result, err := Simulate(baselineAgg(), assumption, DefaultBounds())
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	// (1 + 0.10) × (1 − 0.10) = 0.99
	want := 10000 * 1.10 * 0.90
	if math.Abs(result.Adjusted.Revenue-want) > 1e-9 {
		t.Errorf("Adjusted.Revenue = %v, want %v", result.Adjusted.Revenue, want)
	}
}

func TestSimulateBoundEnforcement(t *testing.T) {
	tests := []struct {
		name       string
		assumption models.ScenarioAssumption
		field      string
	}{
		{"price far out of range", models.ScenarioAssumption{PriceChange: 5.0}, "price_change"},
		{"price just past bound", models.ScenarioAssumption{PriceChange: 0.21}, "price_change"},
		{"volume out of range", models.ScenarioAssumption{VolumeChange: -0.35}, "volume_change"},
		{"negative discount", models.ScenarioAssumption{Discount: -0.01}, "discount"},
		{"discount too deep", models.ScenarioAssumption{Discount: 0.31}, "discount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Simulate(baselineAgg(), tt.assumption, DefaultBounds())
			var oob *models.AssumptionOutOfRangeError
			if !errors.As(err, &oob) {
				t.Fatalf("Simulate() error = %v, want AssumptionOutOfRangeError", err)
			}
			if oob.Field != tt.field {
				t.Errorf("Field = %q, want %q", oob.Field, tt.field)
			}
		})
	}

	// Boundary values themselves are legal.
	if _, err := Simulate(baselineAgg(), models.ScenarioAssumption{PriceChange: 0.20, VolumeChange: -0.30, Discount: 0.30}, DefaultBounds()); err != nil {
		t.Errorf("Simulate(boundary values) error = %v, want nil", err)
	}
}

func TestBaseline(t *testing.T) {
	series := []models.MonthlyAggregate{
		{Period: models.Period{Year: 2024, Month: 4}, Revenue: 9000, Orders: 90, AOV: 100},
		{Period: models.Period{Year: 2024, Month: 5}, Revenue: 9500, Orders: 95, AOV: 100},
		{Period: models.Period{Year: 2024, Month: 6}, Revenue: 10000, Orders: 100, AOV: 100},
	}

	latest, err := Baseline(series)
	if err != nil {
		t.Fatalf("Baseline() error = %v", err)
	}
	if latest.Period != series[2].Period {
		t.Errorf("Baseline() period = %s, want %s", latest.Period, series[2].Period)
	}

	picked, err := BaselineAt(series, series[0].Period)
	if err != nil {
		t.Fatalf("BaselineAt() error = %v", err)
	}
	if picked.Revenue != 9000 {
		t.Errorf("BaselineAt() revenue = %v, want 9000", picked.Revenue)
	}

	if _, err := BaselineAt(series, models.Period{Year: 2020, Month: 1}); err == nil {
		t.Error("BaselineAt(missing period) expected error, got nil")
	}
	if _, err := Baseline(nil); err == nil {
		t.Error("Baseline(nil) expected error, got nil")
	}
}

func TestBatchSimulate(t *testing.T) {
	assumptions := []models.ScenarioAssumption{
		{Name: "hold", PriceChange: 0},
		{Name: "raise prices", PriceChange: 0.10},
		{Name: "push volume", VolumeChange: 0.20},
		{Name: "clearance", PriceChange: -0.10, VolumeChange: 0.25, Discount: 0.15},
		{Name: "premium", PriceChange: 0.15, VolumeChange: -0.10},
	}

	results, err := BatchSimulate(context.Background(), baselineAgg(), assumptions, DefaultBounds())
	if err != nil {
		t.Fatalf("BatchSimulate() error = %v", err)
	}
	if len(results) != len(assumptions) {
		t.Fatalf("BatchSimulate() returned %d results, want %d", len(results), len(assumptions))
	}

	// Output order matches input order regardless of worker scheduling.
	for i, r := range results {
		if r.Assumption.Name != assumptions[i].Name {
			t.Errorf("results[%d] = %q, want %q", i, r.Assumption.Name, assumptions[i].Name)
		}
		serial, err := Simulate(baselineAgg(), assumptions[i], DefaultBounds())
		if err != nil {
			t.Fatalf("Simulate() error = %v", err)
		}
		if r.Adjusted != serial.Adjusted {
			t.Errorf("results[%d].Adjusted = %+v, want %+v", i, r.Adjusted, serial.Adjusted)
		}
	}
}

func TestBatchSimulateErrors(t *testing.T) {
	assumptions := []models.ScenarioAssumption{
		{PriceChange: 0.10},
		{PriceChange: 5.0}, // out of bounds
	}

	_, err := BatchSimulate(context.Background(), baselineAgg(), assumptions, DefaultBounds())
	var oob *models.AssumptionOutOfRangeError
	if !errors.As(err, &oob) {
		t.Fatalf("BatchSimulate() error = %v, want AssumptionOutOfRangeError", err)
	}

	if _, err := BatchSimulate(context.Background(), baselineAgg(), nil, DefaultBounds()); err == nil {
		t.Error("BatchSimulate(no assumptions) expected error, got nil")
	}

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := BatchSimulate(canceled, baselineAgg(), assumptions, DefaultBounds()); !errors.Is(err, context.Canceled) {
		t.Errorf("BatchSimulate(canceled ctx) error = %v, want context.Canceled", err)
	}
}
