package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RevenueIntel/internal/aggregate"
	"github.com/Alias1177/RevenueIntel/internal/config"
	"github.com/Alias1177/RevenueIntel/internal/database"
	"github.com/Alias1177/RevenueIntel/internal/decompose"
	"github.com/Alias1177/RevenueIntel/internal/forecast"
	"github.com/Alias1177/RevenueIntel/internal/ingest"
	"github.com/Alias1177/RevenueIntel/internal/pareto"
	"github.com/Alias1177/RevenueIntel/internal/report"
	"github.com/Alias1177/RevenueIntel/internal/scenario"
	"github.com/Alias1177/RevenueIntel/internal/validation"
	"github.com/Alias1177/RevenueIntel/models"

	ordersapi "github.com/Alias1177/RevenueIntel/internal/api/orders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	ctx := context.Background()

	// 1) Load the order history: remote feed when configured, CSV otherwise.
	var (
		orders  []models.Order
		headers []string
	)
	if cfg.OrdersAPIURL != "" {
		timeout := time.Duration(cfg.RequestTimeout) * time.Second
		client := ordersapi.NewClient(cfg.OrdersAPIURL, cfg.OrdersAPIKey, timeout)
		orders, err = client.GetOrders(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("fetch orders failed")
		}
		headers = validation.RequiredColumns
	} else {
		result, err := ingest.LoadCSV(cfg.DataFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.DataFile).Msg("load orders failed")
		}
		orders = result.Orders
		headers = result.Headers
		if result.Skipped > 0 {
			log.Warn().Int("skipped", result.Skipped).Msg("Some rows could not be parsed")
		}
	}

	// 2) Data quality summary.
	quality := validation.Run(headers, orders)
	if quality.Clean() {
		log.Info().Int("orders", len(orders)).Msg("Order data passed validation")
	} else {
		log.Warn().
			Strs("missing_columns", quality.MissingColumns).
			Int("invalid_quantity", len(quality.InvalidQuantity)).
			Int("invalid_price", len(quality.InvalidPrice)).
			Int("revenue_mismatch", len(quality.RevenueMismatch)).
			Int("outliers", len(quality.Outliers)).
			Msg("Order data has quality issues")
	}

	// 3) Headline KPIs.
	revenue, orderCount, aov, err := aggregate.Overview(orders)
	if err != nil {
		log.Fatal().Err(err).Msg("overview failed")
	}
	fmt.Printf("Total revenue: %.2f over %d orders (AOV %.2f)\n", revenue, orderCount, aov)

	series, err := aggregate.Monthly(orders)
	if err != nil {
		log.Fatal().Err(err).Msg("monthly aggregation failed")
	}
	fmt.Printf("History: %s .. %s (%d months)\n",
		series[0].Period, series[len(series)-1].Period, len(series))

	// 4) Month-over-month attribution.
	decomp, err := decompose.Series(series, decompose.Options{})
	if err != nil {
		log.Warn().Err(err).Msg("decomposition skipped")
	} else if len(decomp) > 0 {
		latest := decomp[len(decomp)-1]
		fmt.Printf("\nLatest month: %s\n", decompose.Explain(latest))
	}

	// 5) Revenue concentration.
	products, err := pareto.Analyze(pareto.ByProduct(orders), cfg.ParetoThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("product concentration failed")
	}
	fmt.Printf("\n%d of %d products generate %.0f%% of revenue\n",
		products.CutoffRank, len(products.Entries), products.Threshold*100)

	categories, err := pareto.Analyze(pareto.ByCategory(orders), cfg.ParetoThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("category concentration failed")
	}
	fmt.Printf("%d of %d categories generate %.0f%% of revenue\n",
		categories.CutoffRank, len(categories.Entries), categories.Threshold*100)

	// 6) Revenue forecast.
	model, err := loadOrTrain(ctx, series, cfg)
	var projection models.ForecastResult
	if err != nil {
		log.Warn().Err(err).Msg("Forecast unavailable")
	} else {
		projection, err = forecast.Forecast(model, cfg.ForecastHorizon)
		if err != nil {
			log.Fatal().Err(err).Msg("forecast failed")
		}
		fmt.Printf("\nForecast (MAE %.2f):\n", projection.MAE)
		for _, p := range projection.Points {
			fmt.Printf("  %s  %12.2f\n", p.Period, p.Revenue)
		}

		if os.Getenv("DB_HOST") != "" && os.Getenv("FORECAST_REUSE") == "" {
			if err := persistModel(ctx, model); err != nil {
				log.Warn().Err(err).Msg("Model state not persisted")
			} else {
				log.Info().Float64("mae", model.MAE()).Msg("Model state persisted")
			}
		}
	}

	// 7) What-if scenarios against the latest month.
	baseline, err := scenario.Baseline(series)
	if err != nil {
		log.Fatal().Err(err).Msg("scenario baseline failed")
	}
	assumptions := []models.ScenarioAssumption{
		{Name: "price +5%", PriceChange: 0.05},
		{Name: "price +10%, volume -5%", PriceChange: 0.10, VolumeChange: -0.05},
		{Name: "volume +10%", VolumeChange: 0.10},
		{Name: "discount 10%", Discount: 0.10},
	}
	results, err := scenario.BatchSimulate(ctx, baseline, assumptions, config.Bounds(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("scenario simulation failed")
	}
	fmt.Printf("\nScenarios against %s (revenue %.2f):\n", baseline.Period, baseline.Revenue)
	for _, r := range results {
		fmt.Printf("  %-24s  %12.2f  (%+.2f, %s)\n",
			r.Assumption.Name, r.Adjusted.Revenue, r.Delta.RevenueDelta, r.Delta.Interpretation)
	}

	// 8) Optional Excel export.
	if cfg.ExportPath != "" {
		if err := export(cfg.ExportPath, series, decomp, products, categories, projection, results); err != nil {
			log.Fatal().Err(err).Str("path", cfg.ExportPath).Msg("export failed")
		}
		log.Info().Str("path", cfg.ExportPath).Msg("Report exported")
	}
}

func export(
	path string,
	series []models.MonthlyAggregate,
	decomp []models.DecompositionResult,
	products, categories models.ParetoResult,
	projection models.ForecastResult,
	scenarios []models.ScenarioResult,
) error {
	wb := report.NewWorkbook()
	if err := wb.AddMonthlyKPIs(series); err != nil {
		return err
	}
	if err := wb.AddDecomposition(decomp); err != nil {
		return err
	}
	if err := wb.AddPareto("Pareto Products", products); err != nil {
		return err
	}
	if err := wb.AddPareto("Pareto Categories", categories); err != nil {
		return err
	}
	if len(projection.Points) > 0 {
		if err := wb.AddForecast(projection); err != nil {
			return err
		}
	}
	if err := wb.AddScenarios(scenarios); err != nil {
		return err
	}
	return wb.Save(path)
}

const modelName = "revenue-forecast"

// loadOrTrain reuses the last persisted model when FORECAST_REUSE is set and a
// database is configured, retraining from the series otherwise.
func loadOrTrain(ctx context.Context, series []models.MonthlyAggregate, cfg *models.Config) (*forecast.FittedModel, error) {
	if os.Getenv("FORECAST_REUSE") == "" || os.Getenv("DB_HOST") == "" {
		return forecast.Train(series, forecastConfig(cfg))
	}

	db, err := database.New(dbParamsFromEnv())
	if err != nil {
		return nil, err
	}
	defer db.Close()

	state, err := db.LoadModelState(ctx, modelName)
	if err != nil {
		log.Warn().Err(err).Msg("No stored model, training fresh")
		return forecast.Train(series, forecastConfig(cfg))
	}
	log.Info().Str("model", modelName).Msg("Reusing stored model state")
	return forecast.ImportState(state)
}

// persistModel stores the trained model blob so the forecast can be
// reproduced bit-for-bit later.
func persistModel(ctx context.Context, model *forecast.FittedModel) error {
	state, err := forecast.ExportState(model)
	if err != nil {
		return err
	}
	db, err := database.New(dbParamsFromEnv())
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveModelState(ctx, modelName, model.MAE(), state)
}

func dbParamsFromEnv() database.ConnectionParams {
	return database.ConnectionParams{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
}

func forecastConfig(cfg *models.Config) forecast.Config {
	return forecast.Config{
		Trees:           cfg.ForecastTrees,
		MaxDepth:        cfg.ForecastMaxDepth,
		MinLeaf:         cfg.ForecastMinLeaf,
		Seed:            cfg.ForecastSeed,
		Lags:            cfg.ForecastLags,
		MinPeriods:      cfg.MinPeriods,
		HoldoutFraction: cfg.HoldoutFraction,
	}
}
