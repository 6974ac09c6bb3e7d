package scenario

import (
	"context"
	"fmt"
	"sync"

	"github.com/Alias1177/RevenueIntel/internal/decompose"
	"github.com/Alias1177/RevenueIntel/models"
)

// batchWorkers bounds the fan-out of BatchSimulate.
const batchWorkers = 4

// DefaultBounds returns the stock assumption ranges: price ±20%, volume ±30%,
// discount 0–30%.
func DefaultBounds() models.ScenarioBounds {
	return models.ScenarioBounds{
		PriceMin:    -0.20,
		PriceMax:    0.20,
		VolumeMin:   -0.30,
		VolumeMax:   0.30,
		DiscountMin: 0,
		DiscountMax: 0.30,
	}
}

// Baseline returns the most recent period of a chronological series as the
// simulation reference point.
func Baseline(series []models.MonthlyAggregate) (models.MonthlyAggregate, error) {
	if len(series) == 0 {
		return models.MonthlyAggregate{}, &models.EmptyInputError{Op: "scenario.Baseline"}
	}
	return series[len(series)-1], nil
}

// BaselineAt picks a specific period instead of the latest one.
func BaselineAt(series []models.MonthlyAggregate, period models.Period) (models.MonthlyAggregate, error) {
	if len(series) == 0 {
		return models.MonthlyAggregate{}, &models.EmptyInputError{Op: "scenario.BaselineAt"}
	}
	for _, agg := range series {
		if agg.Period == period {
			return agg, nil
		}
	}
	return models.MonthlyAggregate{}, fmt.Errorf("period %s not present in series", period)
}

// Simulate projects the baseline under a what-if assumption. The model is a
// linear elasticity assumption, not a causal one: AOV scales with the
// discounted price factor and order count scales with the volume factor.
// Impact is reported through the same decomposition math as historical
// analysis.
func Simulate(baseline models.MonthlyAggregate, assumption models.ScenarioAssumption, bounds models.ScenarioBounds) (models.ScenarioResult, error) {
	if err := checkBounds(assumption, bounds); err != nil {
		return models.ScenarioResult{}, err
	}

	priceFactor := (1 + assumption.PriceChange) * (1 - assumption.Discount)
	volumeFactor := 1 + assumption.VolumeChange

	adjusted := models.MonthlyAggregate{
		Period:  baseline.Period.Next(),
		Revenue: baseline.Revenue * priceFactor * volumeFactor,
		Orders:  baseline.Orders * volumeFactor,
	}
	if adjusted.Orders > 0 {
		adjusted.AOV = adjusted.Revenue / adjusted.Orders
	}

	delta, err := decompose.Decompose(baseline, adjusted, decompose.Options{})
	if err != nil {
		return models.ScenarioResult{}, fmt.Errorf("decomposing scenario delta: %w", err)
	}

	return models.ScenarioResult{
		Assumption: assumption,
		Baseline:   baseline,
		Adjusted:   adjusted,
		Delta:      delta,
	}, nil
}

// BatchSimulate evaluates many assumptions against one baseline for
// side-by-side comparison. Simulations run on a small worker pool — each call
// is side-effect-free — and results keep the input order. The first failing
// assumption (by input position) aborts the batch.
func BatchSimulate(ctx context.Context, baseline models.MonthlyAggregate, assumptions []models.ScenarioAssumption, bounds models.ScenarioBounds) ([]models.ScenarioResult, error) {
	if len(assumptions) == 0 {
		return nil, &models.EmptyInputError{Op: "scenario.BatchSimulate"}
	}

	results := make([]models.ScenarioResult, len(assumptions))
	errs := make([]error, len(assumptions))
	jobs := make(chan int)

	workers := batchWorkers
	if workers > len(assumptions) {
		workers = len(assumptions)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = Simulate(baseline, assumptions[i], bounds)
			}
		}()
	}

feed:
	for i := range assumptions {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch simulation canceled: %w", err)
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func checkBounds(a models.ScenarioAssumption, b models.ScenarioBounds) error {
	if a.PriceChange < b.PriceMin || a.PriceChange > b.PriceMax {
		return &models.AssumptionOutOfRangeError{Field: "price_change", Value: a.PriceChange, Min: b.PriceMin, Max: b.PriceMax}
	}
	if a.VolumeChange < b.VolumeMin || a.VolumeChange > b.VolumeMax {
		return &models.AssumptionOutOfRangeError{Field: "volume_change", Value: a.VolumeChange, Min: b.VolumeMin, Max: b.VolumeMax}
	}
	if a.Discount < b.DiscountMin || a.Discount > b.DiscountMax {
		return &models.AssumptionOutOfRangeError{Field: "discount", Value: a.Discount, Min: b.DiscountMin, Max: b.DiscountMax}
	}
	return nil
}
