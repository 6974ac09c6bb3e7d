package decompose

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Alias1177/RevenueIntel/models"
)

func agg(period string, revenue, orders float64) models.MonthlyAggregate {
	p, err := models.ParsePeriod(period)
	if err != nil {
		panic(err)
	}
	a := models.MonthlyAggregate{Period: p, Revenue: revenue, Orders: orders}
	if orders > 0 {
		a.AOV = revenue / orders
	}
	return a
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name           string
		baseline       models.MonthlyAggregate
		current        models.MonthlyAggregate
		wantVolume     float64
		wantAOV        float64
		interpretation string
	}{
		{
			name:           "volume driven growth",
			baseline:       agg("2024-01", 10000, 100),
			current:        agg("2024-02", 15000, 150),
			wantVolume:     5000, // +50 orders at AOV 100
			wantAOV:        0,
			interpretation: models.VolumeDriven,
		},
		{
			name:           "price driven growth",
			baseline:       agg("2024-01", 10000, 100),
			current:        agg("2024-02", 12000, 100),
			wantVolume:     0,
			wantAOV:        2000, // AOV 100 -> 120 at 100 orders
			interpretation: models.PriceDriven,
		},
		{
			name:           "mixed effects",
			baseline:       agg("2024-01", 10000, 100),
			current:        agg("2024-02", 13200, 110), // orders +10%, AOV +20
			wantVolume:     1000,
			wantAOV:        2000,
			interpretation: models.PriceDriven,
		},
		{
			name:           "offsetting effects stay mixed",
			baseline:       agg("2024-01", 10000, 100),
			current:        agg("2024-02", 9900, 110), // more orders, lower AOV
			wantVolume:     1000,
			wantAOV:        -1000,
			interpretation: models.Mixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decompose(tt.baseline, tt.current, Options{})
			if err != nil {
				t.Fatalf("Decompose() error = %v", err)
			}
			if math.Abs(got.VolumeEffect-tt.wantVolume) > 1e-9 {
				t.Errorf("VolumeEffect = %v, want %v", got.VolumeEffect, tt.wantVolume)
			}
			if math.Abs(got.AOVEffect-tt.wantAOV) > 1e-9 {
				t.Errorf("AOVEffect = %v, want %v", got.AOVEffect, tt.wantAOV)
			}
			if got.Interpretation != tt.interpretation {
				t.Errorf("Interpretation = %q, want %q", got.Interpretation, tt.interpretation)
			}
		})
	}
}

// Reconciliation: volume + aov + residual must equal the revenue delta for
// arbitrary period pairs.
func TestDecomposeReconciliation(t *testing.T) {
	pairs := []struct {
		baseline models.MonthlyAggregate
		current  models.MonthlyAggregate
	}{
		{agg("2024-01", 10000, 100), agg("2024-02", 10450, 95)},
		{agg("2024-01", 5000, 37), agg("2024-02", 8123.45, 61)},
		{agg("2024-01", 9999.99, 250), agg("2024-02", 100.01, 3)},
		{agg("2024-01", 0, 10), agg("2024-02", 500, 5)},
	}

	for _, pair := range pairs {
		got, err := Decompose(pair.baseline, pair.current, Options{})
		if err != nil {
			t.Fatalf("Decompose() error = %v", err)
		}
		sum := got.VolumeEffect + got.AOVEffect + got.Residual
		if math.Abs(sum-got.RevenueDelta) > 1e-6 {
			t.Errorf("effects sum to %v, want delta %v (baseline %+v)", sum, got.RevenueDelta, pair.baseline)
		}
	}
}

func TestDecomposeZeroOrderBaseline(t *testing.T) {
	baseline := agg("2024-01", 0, 0)
	current := agg("2024-02", 500, 5)

	// Degenerate case: effects zero, delta carried by the residual.
	got, err := Decompose(baseline, current, Options{})
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if got.VolumeEffect != 0 || got.AOVEffect != 0 {
		t.Errorf("degenerate effects = (%v, %v), want (0, 0)", got.VolumeEffect, got.AOVEffect)
	}
	if got.Residual != 500 {
		t.Errorf("Residual = %v, want 500", got.Residual)
	}
	if got.Interpretation != models.Mixed {
		t.Errorf("Interpretation = %q, want %q", got.Interpretation, models.Mixed)
	}

	// With RequireAOV the same input is a hard error.
	_, err = Decompose(baseline, current, Options{RequireAOV: true})
	var divErr *models.DivisionUndefinedError
	if !errors.As(err, &divErr) {
		t.Fatalf("Decompose(RequireAOV) error = %v, want DivisionUndefinedError", err)
	}
	if divErr.Period != baseline.Period {
		t.Errorf("error period = %s, want %s", divErr.Period, baseline.Period)
	}
}

func TestSeries(t *testing.T) {
	series := []models.MonthlyAggregate{
		agg("2024-01", 10000, 100),
		agg("2024-02", 12000, 110),
		agg("2024-03", 11000, 105),
	}

	results, err := Series(series, Options{})
	if err != nil {
		t.Fatalf("Series() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Series() returned %d results, want 2", len(results))
	}
	for i, r := range results {
		if r.BaselinePeriod != series[i].Period || r.CurrentPeriod != series[i+1].Period {
			t.Errorf("results[%d] covers %s->%s, want %s->%s",
				i, r.BaselinePeriod, r.CurrentPeriod, series[i].Period, series[i+1].Period)
		}
	}

	if _, err := Series(series[:1], Options{}); err == nil {
		t.Error("Series() with one period expected error, got nil")
	}
}

func TestExplain(t *testing.T) {
	p := models.PeriodOf(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	r := models.DecompositionResult{
		BaselinePeriod: p.AddMonths(-1),
		CurrentPeriod:  p,
		VolumeEffect:   1000,
		AOVEffect:      -200,
	}
	got := Explain(r)
	want := "2024-02: increase driven by higher order volume & lower average order value hurt revenue"
	if got != want {
		t.Errorf("Explain() = %q, want %q", got, want)
	}
}
