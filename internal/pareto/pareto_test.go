package pareto

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/Alias1177/RevenueIntel/models"
)

func TestAnalyze(t *testing.T) {
	revenues := map[string]float64{"A": 50, "B": 30, "C": 15, "D": 5}

	result, err := Analyze(revenues, 0.8)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	wantOrder := []string{"A", "B", "C", "D"}
	wantCumulative := []float64{0.5, 0.8, 0.95, 1.0}
	for i, e := range result.Entries {
		if e.Name != wantOrder[i] {
			t.Errorf("rank %d = %s, want %s", i+1, e.Name, wantOrder[i])
		}
		if e.Rank != i+1 {
			t.Errorf("Entries[%d].Rank = %d, want %d", i, e.Rank, i+1)
		}
		if math.Abs(e.CumulativeShare-wantCumulative[i]) > 1e-9 {
			t.Errorf("Entries[%d].CumulativeShare = %v, want %v", i, e.CumulativeShare, wantCumulative[i])
		}
	}

	if result.CutoffRank != 2 {
		t.Errorf("CutoffRank = %d, want 2", result.CutoffRank)
	}
	if result.TotalRevenue != 100 {
		t.Errorf("TotalRevenue = %v, want 100", result.TotalRevenue)
	}
}

func TestAnalyzeMonotonicity(t *testing.T) {
	revenues := map[string]float64{
		"P1": 120.5, "P2": 88.25, "P3": 310, "P4": 4.75, "P5": 260.1, "P6": 19,
	}

	result, err := Analyze(revenues, 0.9)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	prev := 0.0
	for i, e := range result.Entries {
		if e.CumulativeShare < prev {
			t.Errorf("cumulative share decreased at rank %d: %v < %v", i+1, e.CumulativeShare, prev)
		}
		prev = e.CumulativeShare
	}
	final := result.Entries[len(result.Entries)-1].CumulativeShare
	if math.Abs(final-1.0) > 1e-9 {
		t.Errorf("final cumulative share = %v, want 1.0", final)
	}

	// CutoffRank must be the smallest qualifying rank.
	for _, e := range result.Entries {
		if e.Rank < result.CutoffRank && e.CumulativeShare >= result.Threshold {
			t.Errorf("rank %d already reaches threshold but cutoff is %d", e.Rank, result.CutoffRank)
		}
	}
	if result.Entries[result.CutoffRank-1].CumulativeShare < result.Threshold {
		t.Errorf("cutoff rank %d does not reach threshold", result.CutoffRank)
	}
}

func TestAnalyzeDeterministicTieBreak(t *testing.T) {
	revenues := map[string]float64{"zeta": 10, "alpha": 10, "mid": 10}

	var orders [][]string
	for i := 0; i < 5; i++ {
		result, err := Analyze(revenues, 0.8)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		names := make([]string, len(result.Entries))
		for j, e := range result.Entries {
			names[j] = e.Name
		}
		orders = append(orders, names)
	}

	want := []string{"alpha", "mid", "zeta"}
	for i, got := range orders {
		if !reflect.DeepEqual(got, want) {
			t.Errorf("run %d order = %v, want %v", i, got, want)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	var emptyErr *models.EmptyInputError

	_, err := Analyze(nil, 0.8)
	if !errors.As(err, &emptyErr) {
		t.Errorf("Analyze(nil) error = %v, want EmptyInputError", err)
	}

	_, err = Analyze(map[string]float64{"A": 0, "B": 0}, 0.8)
	if !errors.As(err, &emptyErr) {
		t.Errorf("Analyze(zero total) error = %v, want EmptyInputError", err)
	}

	if _, err := Analyze(map[string]float64{"A": 1}, 1.5); err == nil {
		t.Error("Analyze(threshold=1.5) expected error, got nil")
	}
}

func TestGroupers(t *testing.T) {
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	orders := []models.Order{
		{OrderID: "1", OrderDate: day, ProductName: "Widget", Category: "Hardware", Region: "EU", Revenue: 100},
		{OrderID: "2", OrderDate: day, ProductName: "Widget", Category: "Hardware", Region: "US", Revenue: 50},
		{OrderID: "3", OrderDate: day, ProductName: "Gadget", Category: "Software", Region: "EU", Revenue: 25},
	}

	if got := ByProduct(orders); got["Widget"] != 150 || got["Gadget"] != 25 {
		t.Errorf("ByProduct() = %v", got)
	}
	if got := ByCategory(orders); got["Hardware"] != 150 || got["Software"] != 25 {
		t.Errorf("ByCategory() = %v", got)
	}
	if got := ByRegion(orders); got["EU"] != 125 || got["US"] != 50 {
		t.Errorf("ByRegion() = %v", got)
	}
}
