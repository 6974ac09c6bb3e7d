package decompose

import (
	"fmt"
	"math"
	"strings"

	"github.com/Alias1177/RevenueIntel/models"
)

// DefaultDominanceMargin labels a delta volume- or price-driven only when one
// effect holds a strict majority of the combined effect magnitude.
const DefaultDominanceMargin = 0.5

type Options struct {
	// DominanceMargin is the fraction of |volume|+|aov| one effect must
	// exceed to claim the delta. Zero means DefaultDominanceMargin.
	DominanceMargin float64
	// RequireAOV makes a zero-order baseline an error instead of falling
	// back to the count-only degenerate decomposition.
	RequireAOV bool
}

// Decompose attributes the revenue delta between two monthly aggregates to a
// volume effect and an AOV effect:
//
//	volume = Δorders × baseline AOV
//	aov    = Δaov × baseline orders
//
// The residual carries the cross-term so the three always sum to the delta.
// A baseline with zero orders has no defined AOV; unless RequireAOV is set,
// both effects are zero and the whole delta lands in the residual.
func Decompose(baseline, current models.MonthlyAggregate, opts Options) (models.DecompositionResult, error) {
	result := models.DecompositionResult{
		BaselinePeriod: baseline.Period,
		CurrentPeriod:  current.Period,
		RevenueDelta:   current.Revenue - baseline.Revenue,
	}

	if baseline.Orders == 0 {
		if opts.RequireAOV {
			return models.DecompositionResult{}, &models.DivisionUndefinedError{
				Op:     "decompose.Decompose",
				Period: baseline.Period,
			}
		}
		result.Residual = result.RevenueDelta
		result.Interpretation = models.Mixed
		return result, nil
	}

	result.VolumeEffect = (current.Orders - baseline.Orders) * baseline.AOV
	result.AOVEffect = (current.AOV - baseline.AOV) * baseline.Orders
	result.Residual = result.RevenueDelta - result.VolumeEffect - result.AOVEffect
	result.Interpretation = interpret(result.VolumeEffect, result.AOVEffect, opts.DominanceMargin)
	return result, nil
}

// Series decomposes every consecutive period pair of a chronological series,
// mirroring the month-over-month attribution table of the dashboard.
func Series(series []models.MonthlyAggregate, opts Options) ([]models.DecompositionResult, error) {
	if len(series) < 2 {
		return nil, &models.EmptyInputError{Op: "decompose.Series"}
	}

	results := make([]models.DecompositionResult, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		r, err := Decompose(series[i-1], series[i], opts)
		if err != nil {
			return nil, fmt.Errorf("decomposing %s -> %s: %w", series[i-1].Period, series[i].Period, err)
		}
		results = append(results, r)
	}
	return results, nil
}

func interpret(volumeEffect, aovEffect, margin float64) string {
	if margin <= 0 {
		margin = DefaultDominanceMargin
	}

	total := math.Abs(volumeEffect) + math.Abs(aovEffect)
	if total == 0 {
		return models.Mixed
	}
	if math.Abs(volumeEffect) > margin*total {
		return models.VolumeDriven
	}
	if math.Abs(aovEffect) > margin*total {
		return models.PriceDriven
	}
	return models.Mixed
}

// Explain renders a decomposition as a short human-readable sentence for
// console and chat digests.
func Explain(r models.DecompositionResult) string {
	var parts []string

	if r.VolumeEffect > 0 {
		parts = append(parts, "increase driven by higher order volume")
	} else if r.VolumeEffect < 0 {
		parts = append(parts, "decrease driven by lower order volume")
	}

	if r.AOVEffect > 0 {
		parts = append(parts, "higher average order value helped")
	} else if r.AOVEffect < 0 {
		parts = append(parts, "lower average order value hurt revenue")
	}

	if len(parts) == 0 {
		return fmt.Sprintf("%s: revenue flat versus %s", r.CurrentPeriod, r.BaselinePeriod)
	}
	return fmt.Sprintf("%s: %s", r.CurrentPeriod, strings.Join(parts, " & "))
}
