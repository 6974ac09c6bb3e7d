package pareto

import (
	"fmt"
	"sort"

	"github.com/Alias1177/RevenueIntel/models"
)

// DefaultThreshold is the classic 80/20 concentration cutoff.
const DefaultThreshold = 0.8

// Analyze ranks entities by revenue contribution and finds the concentration
// point: the smallest rank whose cumulative share reaches the threshold.
// Ranking is deterministic — revenue descending, ties broken by name
// ascending. A threshold of zero selects DefaultThreshold.
func Analyze(revenues map[string]float64, threshold float64) (models.ParetoResult, error) {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	if threshold < 0 || threshold > 1 {
		return models.ParetoResult{}, fmt.Errorf("pareto threshold %v outside (0, 1]", threshold)
	}
	if len(revenues) == 0 {
		return models.ParetoResult{}, &models.EmptyInputError{Op: "pareto.Analyze"}
	}

	total := 0.0
	entries := make([]models.ParetoEntry, 0, len(revenues))
	for name, revenue := range revenues {
		entries = append(entries, models.ParetoEntry{Name: name, Revenue: revenue})
		total += revenue
	}
	if total == 0 {
		return models.ParetoResult{}, &models.EmptyInputError{Op: "pareto.Analyze"}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Revenue != entries[j].Revenue {
			return entries[i].Revenue > entries[j].Revenue
		}
		return entries[i].Name < entries[j].Name
	})

	result := models.ParetoResult{
		Entries:      entries,
		Threshold:    threshold,
		TotalRevenue: total,
	}

	// Cumulative share is computed from the running revenue sum rather than
	// by adding shares, so the final entry lands on 1.0 exactly.
	running := 0.0
	for i := range entries {
		running += entries[i].Revenue
		entries[i].Rank = i + 1
		entries[i].Share = entries[i].Revenue / total
		entries[i].CumulativeShare = running / total
		if result.CutoffRank == 0 && entries[i].CumulativeShare >= threshold {
			result.CutoffRank = entries[i].Rank
		}
	}
	if result.CutoffRank == 0 {
		result.CutoffRank = len(entries)
	}

	return result, nil
}

// GroupRevenue sums order revenue under a caller-chosen grouping key. The
// analyzer itself never decides the grain.
func GroupRevenue(orders []models.Order, key func(models.Order) string) map[string]float64 {
	grouped := make(map[string]float64)
	for _, o := range orders {
		grouped[key(o)] += o.Revenue
	}
	return grouped
}

// ByProduct groups order revenue per product name.
func ByProduct(orders []models.Order) map[string]float64 {
	return GroupRevenue(orders, func(o models.Order) string { return o.ProductName })
}

// ByCategory groups order revenue per category.
func ByCategory(orders []models.Order) map[string]float64 {
	return GroupRevenue(orders, func(o models.Order) string { return o.Category })
}

// ByRegion groups order revenue per sales region.
func ByRegion(orders []models.Order) map[string]float64 {
	return GroupRevenue(orders, func(o models.Order) string { return o.Region })
}
