package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RevenueIntel/internal/aggregate"
	"github.com/Alias1177/RevenueIntel/internal/config"
	"github.com/Alias1177/RevenueIntel/internal/database"
	"github.com/Alias1177/RevenueIntel/internal/decompose"
	"github.com/Alias1177/RevenueIntel/internal/forecast"
	"github.com/Alias1177/RevenueIntel/internal/ingest"
	"github.com/Alias1177/RevenueIntel/internal/pareto"
	"github.com/Alias1177/RevenueIntel/internal/scenario"
	"github.com/Alias1177/RevenueIntel/models"
)

// bot wires the analytical engines to Telegram chat commands. Every command
// recomputes from the order source, so the digest always reflects the latest
// data.
type bot struct {
	api    *tgbotapi.BotAPI
	source models.OrderSource
	cfg    *models.Config
	logger zerolog.Logger
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}

	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	source, err := orderSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize order source")
	}

	b := &bot{
		api:    api,
		source: source,
		cfg:    cfg,
		logger: log.With().Str("component", "tgbot").Logger(),
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	for update := range api.GetUpdatesChan(updateConfig) {
		if update.Message == nil {
			continue
		}
		b.handleMessage(update.Message)
	}
}

func orderSource(cfg *models.Config) (models.OrderSource, error) {
	if host := os.Getenv("DB_HOST"); host != "" {
		return database.New(database.ConnectionParams{
			Host:     host,
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		})
	}
	return ingest.FileSource{Path: cfg.DataFile}, nil
}

func (b *bot) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	var reply string
	var err error
	switch {
	case text == "/start" || text == "/help":
		reply = helpText
	case text == "/kpis" || text == "KPIs":
		reply, err = b.kpiDigest()
	case text == "/forecast" || text == "Forecast":
		reply, err = b.forecastDigest()
	case text == "/top" || text == "Top Products":
		reply, err = b.paretoDigest()
	case strings.HasPrefix(text, "/scenario"):
		reply, err = b.scenarioDigest(text)
	default:
		reply = "Unknown command. " + helpText
	}
	if err != nil {
		b.logger.Error().Err(err).Str("command", text).Msg("Command failed")
		reply = fmt.Sprintf("Sorry, that failed: %v", err)
	}

	msg := tgbotapi.NewMessage(chatID, reply)
	msg.ReplyMarkup = mainKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}

const helpText = `Revenue digest commands:
/kpis - latest monthly KPIs and month-over-month driver
/forecast - revenue projection for the coming months
/top - products driving most of the revenue
/scenario price=<pct> volume=<pct> discount=<pct> - what-if simulation`

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("KPIs"),
			tgbotapi.NewKeyboardButton("Forecast"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Top Products"),
		),
	)
}

func (b *bot) series() ([]models.MonthlyAggregate, error) {
	orders, err := b.source.GetOrders(context.Background())
	if err != nil {
		return nil, err
	}
	return aggregate.Monthly(orders)
}

func (b *bot) kpiDigest() (string, error) {
	series, err := b.series()
	if err != nil {
		return "", err
	}
	latest := series[len(series)-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nRevenue: %.2f\nOrders: %.0f\nAOV: %.2f\n",
		latest.Period, latest.Revenue, latest.Orders, latest.AOV)

	if len(series) > 1 {
		result, err := decompose.Decompose(series[len(series)-2], latest, decompose.Options{})
		if err == nil {
			sb.WriteString("\n" + decompose.Explain(result))
		}
	}
	return sb.String(), nil
}

func (b *bot) forecastDigest() (string, error) {
	series, err := b.series()
	if err != nil {
		return "", err
	}
	model, err := forecast.Train(series, forecast.Config{
		Trees:           b.cfg.ForecastTrees,
		MaxDepth:        b.cfg.ForecastMaxDepth,
		MinLeaf:         b.cfg.ForecastMinLeaf,
		Seed:            b.cfg.ForecastSeed,
		Lags:            b.cfg.ForecastLags,
		MinPeriods:      b.cfg.MinPeriods,
		HoldoutFraction: b.cfg.HoldoutFraction,
	})
	if err != nil {
		return "", err
	}
	result, err := forecast.Forecast(model, b.cfg.ForecastHorizon)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Forecast (MAE %.2f):\n", result.MAE)
	for _, p := range result.Points {
		fmt.Fprintf(&sb, "%s  %.2f\n", p.Period, p.Revenue)
	}
	return sb.String(), nil
}

func (b *bot) paretoDigest() (string, error) {
	orders, err := b.source.GetOrders(context.Background())
	if err != nil {
		return "", err
	}
	result, err := pareto.Analyze(pareto.ByProduct(orders), b.cfg.ParetoThreshold)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d of %d products generate %.0f%% of revenue:\n",
		result.CutoffRank, len(result.Entries), result.Threshold*100)
	for _, e := range result.Entries {
		if e.Rank > result.CutoffRank {
			break
		}
		fmt.Fprintf(&sb, "%d. %s  %.2f (%.1f%%)\n", e.Rank, e.Name, e.Revenue, e.Share*100)
	}
	return sb.String(), nil
}

// scenarioDigest parses "/scenario price=5 volume=-3 discount=10" with percent
// values and simulates against the latest month.
func (b *bot) scenarioDigest(text string) (string, error) {
	assumption, err := parseAssumption(text)
	if err != nil {
		return "", err
	}

	series, err := b.series()
	if err != nil {
		return "", err
	}
	baseline, err := scenario.Baseline(series)
	if err != nil {
		return "", err
	}
	result, err := scenario.Simulate(baseline, assumption, config.Bounds(b.cfg))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Baseline %s: %.2f\nAdjusted: %.2f (%+.2f)\nVolume effect: %+.2f\nAOV effect: %+.2f\nInterpretation: %s",
		result.Baseline.Period, result.Baseline.Revenue,
		result.Adjusted.Revenue, result.Delta.RevenueDelta,
		result.Delta.VolumeEffect, result.Delta.AOVEffect,
		result.Delta.Interpretation,
	), nil
}

func parseAssumption(text string) (models.ScenarioAssumption, error) {
	assumption := models.ScenarioAssumption{Name: "chat scenario"}
	for _, field := range strings.Fields(text)[1:] {
		key, raw, ok := strings.Cut(field, "=")
		if !ok {
			return assumption, fmt.Errorf("expected key=value, got %q", field)
		}
		pct, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return assumption, fmt.Errorf("bad value %q for %s", raw, key)
		}
		switch key {
		case "price":
			assumption.PriceChange = pct / 100
		case "volume":
			assumption.VolumeChange = pct / 100
		case "discount":
			assumption.Discount = pct / 100
		default:
			return assumption, fmt.Errorf("unknown field %q (want price, volume or discount)", key)
		}
	}
	return assumption, nil
}
