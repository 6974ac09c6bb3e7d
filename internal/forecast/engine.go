package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Alias1177/RevenueIntel/models"
)

// Defaults mirror the configuration the system was tuned with: a 300-tree
// ensemble seeded at 42, trained on at least a full year of history.
const (
	DefaultTrees      = 300
	DefaultMaxDepth   = 6
	DefaultMinLeaf    = 2
	DefaultSeed       = 42
	DefaultMinPeriods = 12
	DefaultHorizon    = 6
)

type Config struct {
	Trees    int
	MaxDepth int
	MinLeaf  int
	Seed     int64
	// Lags enables autoregressive revenue lag features. Zero keeps the
	// trend/seasonality-only schema.
	Lags       int
	MinPeriods int
	// HoldoutFraction reserves a trailing share of the series for MAE
	// measurement instead of scoring in-sample.
	HoldoutFraction float64
}

func (c Config) withDefaults() Config {
	if c.Trees <= 0 {
		c.Trees = DefaultTrees
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = DefaultMinLeaf
	}
	if c.Seed == 0 {
		c.Seed = DefaultSeed
	}
	if c.MinPeriods <= 0 {
		c.MinPeriods = DefaultMinPeriods
	}
	return c
}

// FittedModel is an opaque trained predictor. It owns no shared state and can
// be serialized with ExportState independently of the engine.
type FittedModel struct {
	schema     FeatureSchema
	forest     *forest
	mae        float64
	lastPeriod models.Period
	lastTrend  int
	tail       []float64
}

// MAE returns the accuracy score measured at training time.
func (m *FittedModel) MAE() float64 { return m.mae }

// LastPeriod returns the final period of the training series; forecasts
// continue from its successor.
func (m *FittedModel) LastPeriod() models.Period { return m.lastPeriod }

// Train fits the ensemble on a monthly revenue series. The series is re-sorted
// chronologically; it needs at least cfg.MinPeriods periods, and enough rows
// beyond the lag window to fit on.
func Train(series []models.MonthlyAggregate, cfg Config) (*FittedModel, error) {
	cfg = cfg.withDefaults()

	if len(series) == 0 {
		return nil, &models.EmptyInputError{Op: "forecast.Train"}
	}
	if len(series) < cfg.MinPeriods {
		return nil, &models.InsufficientDataError{Got: len(series), Need: cfg.MinPeriods}
	}
	if cfg.Lags < 0 {
		return nil, fmt.Errorf("negative lag count %d", cfg.Lags)
	}
	if len(series)-cfg.Lags < 2 {
		return nil, &models.InsufficientDataError{Got: len(series), Need: cfg.Lags + 2}
	}

	sorted := make([]models.MonthlyAggregate, len(series))
	copy(sorted, series)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Period.Before(sorted[j].Period)
	})

	schema := FeatureSchema{Lags: cfg.Lags}
	X, y := schema.trainingData(sorted)

	holdout := int(cfg.HoldoutFraction * float64(len(X)))
	if holdout > 0 && len(X)-holdout < 2 {
		return nil, fmt.Errorf("holdout fraction %.2f leaves %d training rows", cfg.HoldoutFraction, len(X)-holdout)
	}
	trainX, trainY := X[:len(X)-holdout], y[:len(y)-holdout]
	evalX, evalY := X, y
	if holdout > 0 {
		evalX, evalY = X[len(X)-holdout:], y[len(y)-holdout:]
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	f := fitForest(trainX, trainY, cfg.Trees, treeConfig{maxDepth: cfg.MaxDepth, minLeaf: cfg.MinLeaf}, rng)

	tail := make([]float64, cfg.Lags)
	for i := 0; i < cfg.Lags; i++ {
		tail[i] = sorted[len(sorted)-cfg.Lags+i].Revenue
	}

	return &FittedModel{
		schema:     schema,
		forest:     f,
		mae:        meanAbsError(f, evalX, evalY),
		lastPeriod: sorted[len(sorted)-1].Period,
		lastTrend:  len(sorted) - 1,
		tail:       tail,
	}, nil
}

// Forecast projects horizon future periods continuing from the last training
// period. When lag features are enabled, each prediction feeds forward into
// the lag window of the next step — predicted values stand in for unknown
// future actuals, so errors compound with distance. The MAE returned is the
// training-time score, not recomputed here.
func Forecast(m *FittedModel, horizon int) (models.ForecastResult, error) {
	if m == nil || m.forest == nil {
		return models.ForecastResult{}, fmt.Errorf("forecast on nil model")
	}
	if horizon < 1 {
		return models.ForecastResult{}, fmt.Errorf("horizon %d must be at least 1", horizon)
	}
	if m.forest.Features != m.schema.Size() {
		return models.ForecastResult{}, &models.SchemaMismatchError{
			Want: m.schema.String(),
			Got:  fmt.Sprintf("%d-feature model", m.forest.Features),
		}
	}
	if len(m.tail) != m.schema.Lags {
		return models.ForecastResult{}, &models.SchemaMismatchError{
			Want: m.schema.String(),
			Got:  fmt.Sprintf("%d-value lag window", len(m.tail)),
		}
	}

	window := make([]float64, len(m.tail), len(m.tail)+horizon)
	copy(window, m.tail)

	points := make([]models.ForecastPoint, 0, horizon)
	for step := 1; step <= horizon; step++ {
		period := m.lastPeriod.AddMonths(step)
		x := m.schema.vector(period, m.lastTrend+step, window)
		predicted := m.forest.predict(x)
		points = append(points, models.ForecastPoint{Period: period, Revenue: predicted})
		window = append(window, predicted)
	}

	return models.ForecastResult{Points: points, MAE: m.mae}, nil
}

func meanAbsError(f *forest, X [][]float64, y []float64) float64 {
	if len(X) == 0 {
		return 0
	}
	total := 0.0
	for i := range X {
		total += math.Abs(f.predict(X[i]) - y[i])
	}
	return total / float64(len(X))
}
