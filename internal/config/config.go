package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RevenueIntel/models"
)

// Load initializes configuration from environment variables, optionally
// seeded from a TOML file named by CONFIG_FILE. Environment always wins over
// the file; defaults fill the rest. The engines never read configuration
// themselves — entrypoints pass these values in as plain arguments.
func Load() (*models.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.DataFile = getEnvWithDefault("DATA_FILE", cfg.DataFile)
	cfg.OrdersAPIURL = getEnvWithDefault("ORDERS_API_URL", cfg.OrdersAPIURL)
	cfg.OrdersAPIKey = getEnvWithDefault("ORDERS_API_KEY", cfg.OrdersAPIKey)
	cfg.ParetoThreshold = getEnvFloatWithDefault("PARETO_THRESHOLD", cfg.ParetoThreshold)
	cfg.ForecastHorizon = getEnvIntWithDefault("FORECAST_HORIZON", cfg.ForecastHorizon)
	cfg.MinPeriods = getEnvIntWithDefault("MIN_PERIODS", cfg.MinPeriods)
	cfg.ForecastTrees = getEnvIntWithDefault("FORECAST_TREES", cfg.ForecastTrees)
	cfg.ForecastMaxDepth = getEnvIntWithDefault("FORECAST_MAX_DEPTH", cfg.ForecastMaxDepth)
	cfg.ForecastMinLeaf = getEnvIntWithDefault("FORECAST_MIN_LEAF", cfg.ForecastMinLeaf)
	cfg.ForecastSeed = int64(getEnvIntWithDefault("FORECAST_SEED", int(cfg.ForecastSeed)))
	cfg.ForecastLags = getEnvIntWithDefault("FORECAST_LAGS", cfg.ForecastLags)
	cfg.HoldoutFraction = getEnvFloatWithDefault("HOLDOUT_FRACTION", cfg.HoldoutFraction)
	cfg.PriceBound = getEnvFloatWithDefault("PRICE_BOUND", cfg.PriceBound)
	cfg.VolumeBound = getEnvFloatWithDefault("VOLUME_BOUND", cfg.VolumeBound)
	cfg.DiscountBound = getEnvFloatWithDefault("DISCOUNT_BOUND", cfg.DiscountBound)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ServerPort = getEnvIntWithDefault("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.ExportPath = getEnvWithDefault("EXPORT_PATH", cfg.ExportPath)

	return cfg, nil
}

// Bounds assembles the scenario bounds from the configured symmetric price
// and volume limits.
func Bounds(cfg *models.Config) models.ScenarioBounds {
	return models.ScenarioBounds{
		PriceMin:    -cfg.PriceBound,
		PriceMax:    cfg.PriceBound,
		VolumeMin:   -cfg.VolumeBound,
		VolumeMax:   cfg.VolumeBound,
		DiscountMin: 0,
		DiscountMax: cfg.DiscountBound,
	}
}

func defaults() *models.Config {
	return &models.Config{
		DataFile:         "data/sales.csv",
		ParetoThreshold:  0.8,
		ForecastHorizon:  6,
		MinPeriods:       12,
		ForecastTrees:    300,
		ForecastMaxDepth: 6,
		ForecastMinLeaf:  2,
		ForecastSeed:     42,
		ForecastLags:     0,
		PriceBound:       0.2,
		VolumeBound:      0.3,
		DiscountBound:    0.3,
		RequestTimeout:   30,
		ServerPort:       8080,
		LogLevel:         "info",
	}
}

// fileConfig mirrors the TOML layout of the optional config file.
type fileConfig struct {
	Data struct {
		File   string `toml:"file"`
		APIURL string `toml:"api_url"`
		APIKey string `toml:"api_key"`
	} `toml:"data"`
	Analysis struct {
		ParetoThreshold float64 `toml:"pareto_threshold"`
		PriceBound      float64 `toml:"price_bound"`
		VolumeBound     float64 `toml:"volume_bound"`
		DiscountBound   float64 `toml:"discount_bound"`
	} `toml:"analysis"`
	Forecast struct {
		Horizon         int     `toml:"horizon"`
		MinPeriods      int     `toml:"min_periods"`
		Trees           int     `toml:"trees"`
		MaxDepth        int     `toml:"max_depth"`
		MinLeaf         int     `toml:"min_leaf"`
		Seed            int64   `toml:"seed"`
		Lags            int     `toml:"lags"`
		HoldoutFraction float64 `toml:"holdout_fraction"`
	} `toml:"forecast"`
	Server struct {
		Port           int `toml:"port"`
		RequestTimeout int `toml:"request_timeout"`
	} `toml:"server"`
}

func loadFile(path string, cfg *models.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Data.File != "" {
		cfg.DataFile = fc.Data.File
	}
	if fc.Data.APIURL != "" {
		cfg.OrdersAPIURL = fc.Data.APIURL
	}
	if fc.Data.APIKey != "" {
		cfg.OrdersAPIKey = fc.Data.APIKey
	}
	if fc.Analysis.ParetoThreshold > 0 {
		cfg.ParetoThreshold = fc.Analysis.ParetoThreshold
	}
	if fc.Analysis.PriceBound > 0 {
		cfg.PriceBound = fc.Analysis.PriceBound
	}
	if fc.Analysis.VolumeBound > 0 {
		cfg.VolumeBound = fc.Analysis.VolumeBound
	}
	if fc.Analysis.DiscountBound > 0 {
		cfg.DiscountBound = fc.Analysis.DiscountBound
	}
	if fc.Forecast.Horizon > 0 {
		cfg.ForecastHorizon = fc.Forecast.Horizon
	}
	if fc.Forecast.MinPeriods > 0 {
		cfg.MinPeriods = fc.Forecast.MinPeriods
	}
	if fc.Forecast.Trees > 0 {
		cfg.ForecastTrees = fc.Forecast.Trees
	}
	if fc.Forecast.MaxDepth > 0 {
		cfg.ForecastMaxDepth = fc.Forecast.MaxDepth
	}
	if fc.Forecast.MinLeaf > 0 {
		cfg.ForecastMinLeaf = fc.Forecast.MinLeaf
	}
	if fc.Forecast.Seed != 0 {
		cfg.ForecastSeed = fc.Forecast.Seed
	}
	if fc.Forecast.Lags > 0 {
		cfg.ForecastLags = fc.Forecast.Lags
	}
	if fc.Forecast.HoldoutFraction > 0 {
		cfg.HoldoutFraction = fc.Forecast.HoldoutFraction
	}
	if fc.Server.Port > 0 {
		cfg.ServerPort = fc.Server.Port
	}
	if fc.Server.RequestTimeout > 0 {
		cfg.RequestTimeout = fc.Server.RequestTimeout
	}
	return nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
