package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RevenueIntel/internal/aggregate"
	"github.com/Alias1177/RevenueIntel/internal/config"
	"github.com/Alias1177/RevenueIntel/internal/decompose"
	"github.com/Alias1177/RevenueIntel/internal/forecast"
	"github.com/Alias1177/RevenueIntel/internal/pareto"
	"github.com/Alias1177/RevenueIntel/internal/scenario"
	"github.com/Alias1177/RevenueIntel/models"
)

// Handler serves the analytical API.
type Handler struct {
	source  models.OrderSource
	cfg     *models.Config
	timeout time.Duration
	logger  zerolog.Logger
}

func NewHandler(source models.OrderSource, cfg *models.Config) *Handler {
	return &Handler{
		source:  source,
		cfg:     cfg,
		timeout: RequestTimeout(cfg),
		logger:  log.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes registers the analytical API routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.GET("/kpis", h.GetKPIs)
	router.GET("/decomposition", h.GetDecomposition)
	router.GET("/pareto", h.GetPareto)
	router.GET("/forecast", h.GetForecast)
	router.POST("/scenario", h.PostScenario)
	router.POST("/scenario/batch", h.PostScenarioBatch)
}

func (h *Handler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetKPIs(c *gin.Context) {
	h.run(c, "kpis", func(ctx context.Context) (any, error) {
		return h.monthlySeries(ctx)
	})
}

func (h *Handler) GetDecomposition(c *gin.Context) {
	h.run(c, "decomposition", func(ctx context.Context) (any, error) {
		series, err := h.monthlySeries(ctx)
		if err != nil {
			return nil, err
		}
		return decompose.Series(series, decompose.Options{})
	})
}

func (h *Handler) GetPareto(c *gin.Context) {
	by := c.DefaultQuery("by", "product")
	threshold := h.cfg.ParetoThreshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad threshold %q", raw)})
			return
		}
		threshold = parsed
	}

	h.run(c, "pareto", func(ctx context.Context) (any, error) {
		orders, err := h.source.GetOrders(ctx)
		if err != nil {
			return nil, err
		}

		var grouped map[string]float64
		switch by {
		case "product":
			grouped = pareto.ByProduct(orders)
		case "category":
			grouped = pareto.ByCategory(orders)
		case "region":
			grouped = pareto.ByRegion(orders)
		default:
			return nil, fmt.Errorf("unknown grouping %q (want product, category or region)", by)
		}
		return pareto.Analyze(grouped, threshold)
	})
}

func (h *Handler) GetForecast(c *gin.Context) {
	horizon := h.cfg.ForecastHorizon
	if raw := c.Query("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad horizon %q", raw)})
			return
		}
		horizon = parsed
	}

	h.run(c, "forecast", func(ctx context.Context) (any, error) {
		series, err := h.monthlySeries(ctx)
		if err != nil {
			return nil, err
		}
		model, err := forecast.Train(series, h.forecastConfig())
		if err != nil {
			return nil, err
		}
		return forecast.Forecast(model, horizon)
	})
}

func (h *Handler) PostScenario(c *gin.Context) {
	var assumption models.ScenarioAssumption
	if err := c.ShouldBindJSON(&assumption); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad assumption payload: %v", err)})
		return
	}

	h.run(c, "scenario", func(ctx context.Context) (any, error) {
		baseline, err := h.baseline(ctx)
		if err != nil {
			return nil, err
		}
		return scenario.Simulate(baseline, assumption, config.Bounds(h.cfg))
	})
}

func (h *Handler) PostScenarioBatch(c *gin.Context) {
	var payload struct {
		Assumptions []models.ScenarioAssumption `json:"assumptions"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("bad batch payload: %v", err)})
		return
	}

	h.run(c, "scenario_batch", func(ctx context.Context) (any, error) {
		baseline, err := h.baseline(ctx)
		if err != nil {
			return nil, err
		}
		return scenario.BatchSimulate(ctx, baseline, payload.Assumptions, config.Bounds(h.cfg))
	})
}

// run executes an engine computation under the request deadline. The engines
// have no timeout semantics of their own; exceeding the deadline here is
// reported as a ComputationTimeoutError.
func (h *Handler) run(c *gin.Context, op string, fn func(ctx context.Context) (any, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	type outcome struct {
		payload any
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		payload, err := fn(ctx)
		done <- outcome{payload: payload, err: err}
	}()

	select {
	case <-ctx.Done():
		timeoutErr := &models.ComputationTimeoutError{Op: op, Limit: h.timeout}
		h.logger.Warn().Str("op", op).Dur("limit", h.timeout).Msg("Computation deadline exceeded")
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": timeoutErr.Error()})
	case out := <-done:
		if out.err != nil {
			h.renderError(c, op, out.err)
			return
		}
		c.JSON(http.StatusOK, out.payload)
	}
}

func (h *Handler) renderError(c *gin.Context, op string, err error) {
	var (
		emptyErr     *models.EmptyInputError
		insufficient *models.InsufficientDataError
		outOfRange   *models.AssumptionOutOfRangeError
		mismatch     *models.SchemaMismatchError
		divUndefined *models.DivisionUndefinedError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &emptyErr), errors.As(err, &insufficient), errors.As(err, &divUndefined):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &outOfRange):
		status = http.StatusBadRequest
	case errors.As(err, &mismatch):
		status = http.StatusConflict
	}

	h.logger.Error().Str("op", op).Err(err).Msg("Request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) monthlySeries(ctx context.Context) ([]models.MonthlyAggregate, error) {
	orders, err := h.source.GetOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading orders: %w", err)
	}
	return aggregate.Monthly(orders)
}

func (h *Handler) baseline(ctx context.Context) (models.MonthlyAggregate, error) {
	series, err := h.monthlySeries(ctx)
	if err != nil {
		return models.MonthlyAggregate{}, err
	}
	return scenario.Baseline(series)
}

func (h *Handler) forecastConfig() forecast.Config {
	return forecast.Config{
		Trees:           h.cfg.ForecastTrees,
		MaxDepth:        h.cfg.ForecastMaxDepth,
		MinLeaf:         h.cfg.ForecastMinLeaf,
		Seed:            h.cfg.ForecastSeed,
		Lags:            h.cfg.ForecastLags,
		MinPeriods:      h.cfg.MinPeriods,
		HoldoutFraction: h.cfg.HoldoutFraction,
	}
}
