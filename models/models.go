package models

import (
	"time"
)

type Config struct {
	DataFile         string  `env:"DATA_FILE" envDefault:"data/sales.csv"`
	OrdersAPIURL     string  `env:"ORDERS_API_URL" envDefault:""`
	OrdersAPIKey     string  `env:"ORDERS_API_KEY" envDefault:""`
	ParetoThreshold  float64 `env:"PARETO_THRESHOLD" envDefault:"0.8"`
	ForecastHorizon  int     `env:"FORECAST_HORIZON" envDefault:"6"`
	MinPeriods       int     `env:"MIN_PERIODS" envDefault:"12"`
	ForecastTrees    int     `env:"FORECAST_TREES" envDefault:"300"`
	ForecastMaxDepth int     `env:"FORECAST_MAX_DEPTH" envDefault:"6"`
	ForecastMinLeaf  int     `env:"FORECAST_MIN_LEAF" envDefault:"2"`
	ForecastSeed     int64   `env:"FORECAST_SEED" envDefault:"42"`
	ForecastLags     int     `env:"FORECAST_LAGS" envDefault:"0"`
	HoldoutFraction  float64 `env:"HOLDOUT_FRACTION" envDefault:"0"`
	PriceBound       float64 `env:"PRICE_BOUND" envDefault:"0.2"`
	VolumeBound      float64 `env:"VOLUME_BOUND" envDefault:"0.3"`
	DiscountBound    float64 `env:"DISCOUNT_BOUND" envDefault:"0.3"`
	RequestTimeout   int     `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	ServerPort       int     `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel         string  `env:"LOG_LEVEL" envDefault:"info"`
	ExportPath       string  `env:"EXPORT_PATH" envDefault:""`
}

// Order represents a single sales record. Records arrive already validated
// upstream: quantity positive, prices non-negative, revenue consistent with
// quantity times unit price.
type Order struct {
	OrderID     string    `json:"order_id"`
	OrderDate   time.Time `json:"order_date"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	Region      string    `json:"region"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	Revenue     float64   `json:"revenue"`
}

// MonthlyAggregate holds the KPIs of one calendar month. Orders is
// whole-valued when produced by the aggregator; simulated metrics may carry a
// fractional order count.
type MonthlyAggregate struct {
	Period  Period  `json:"period"`
	Revenue float64 `json:"revenue"`
	Orders  float64 `json:"orders"`
	AOV     float64 `json:"aov"`
}

// Interpretation labels for a decomposition result.
const (
	VolumeDriven = "volume-driven"
	PriceDriven  = "price-driven"
	Mixed        = "mixed"
)

// DecompositionResult attributes a revenue delta between two periods to a
// volume effect and an AOV effect. The residual is the cross-term of
// simultaneous volume and price movement; the three always reconcile to
// RevenueDelta.
type DecompositionResult struct {
	BaselinePeriod Period  `json:"baseline_period"`
	CurrentPeriod  Period  `json:"current_period"`
	RevenueDelta   float64 `json:"revenue_delta"`
	VolumeEffect   float64 `json:"volume_effect"`
	AOVEffect      float64 `json:"aov_effect"`
	Residual       float64 `json:"residual"`
	Interpretation string  `json:"interpretation"`
}

// ParetoEntry is one ranked row of a concentration analysis.
type ParetoEntry struct {
	Name            string  `json:"name"`
	Revenue         float64 `json:"revenue"`
	Share           float64 `json:"share"`
	CumulativeShare float64 `json:"cumulative_share"`
	Rank            int     `json:"rank"`
}

// ParetoResult holds the full ranking plus the cutoff rank: the smallest rank
// whose cumulative share reaches the threshold.
type ParetoResult struct {
	Entries      []ParetoEntry `json:"entries"`
	Threshold    float64       `json:"threshold"`
	CutoffRank   int           `json:"cutoff_rank"`
	TotalRevenue float64       `json:"total_revenue"`
}

// ForecastPoint is one projected future period.
type ForecastPoint struct {
	Period  Period  `json:"period"`
	Revenue float64 `json:"revenue"`
}

// ForecastResult carries the horizon projection together with the accuracy
// score measured at training time.
type ForecastResult struct {
	Points []ForecastPoint `json:"points"`
	MAE    float64         `json:"mae"`
}

// ScenarioAssumption expresses a what-if hypothesis as fractional multipliers:
// PriceChange 0.10 means +10%.
type ScenarioAssumption struct {
	Name         string  `json:"name,omitempty"`
	PriceChange  float64 `json:"price_change"`
	VolumeChange float64 `json:"volume_change"`
	Discount     float64 `json:"discount"`
}

// ScenarioBounds limits the accepted assumption ranges. Violations are
// reported, never clamped.
type ScenarioBounds struct {
	PriceMin    float64 `json:"price_min"`
	PriceMax    float64 `json:"price_max"`
	VolumeMin   float64 `json:"volume_min"`
	VolumeMax   float64 `json:"volume_max"`
	DiscountMin float64 `json:"discount_min"`
	DiscountMax float64 `json:"discount_max"`
}

// ScenarioResult reports a simulated outcome in the same decomposition
// vocabulary as historical analysis.
type ScenarioResult struct {
	Assumption ScenarioAssumption  `json:"assumption"`
	Baseline   MonthlyAggregate    `json:"baseline"`
	Adjusted   MonthlyAggregate    `json:"adjusted"`
	Delta      DecompositionResult `json:"delta"`
}
