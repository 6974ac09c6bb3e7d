package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/Alias1177/RevenueIntel/internal/database"
	"github.com/Alias1177/RevenueIntel/internal/validation"
	"github.com/Alias1177/RevenueIntel/models"
)

// Demo catalog. Prices skew so that a few products dominate revenue, which
// keeps the concentration analysis interesting out of the box.
var catalog = []struct {
	product  string
	category string
	price    float64
}{
	{"Laptop Pro 15", "Electronics", 1450},
	{"Smartphone X", "Electronics", 899},
	{"Wireless Earbuds", "Electronics", 129},
	{"Office Chair", "Furniture", 310},
	{"Standing Desk", "Furniture", 520},
	{"Desk Lamp", "Furniture", 45},
	{"Coffee Beans 1kg", "Grocery", 18},
	{"Green Tea Box", "Grocery", 9},
	{"Notebook A5", "Stationery", 4},
	{"Fountain Pen", "Stationery", 32},
}

var regions = []string{"EU", "NA", "APAC", "LATAM"}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	months := flag.Int("months", 24, "number of months of history to generate")
	perMonth := flag.Int("orders", 400, "average orders per month")
	seed := flag.Int64("seed", 42, "random seed")
	out := flag.String("out", "data/sales.csv", "output CSV path")
	toDB := flag.Bool("db", false, "write to PostgreSQL instead of CSV (uses DB_* env)")
	flag.Parse()

	lvl, _ := zerolog.ParseLevel("info")
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	orders := generate(*months, *perMonth, *seed)
	log.Info().Int("orders", len(orders)).Int("months", *months).Msg("Generated demo orders")

	if *toDB {
		if err := writeDB(orders); err != nil {
			log.Fatal().Err(err).Msg("write to database failed")
		}
		return
	}
	if err := writeCSV(*out, orders); err != nil {
		log.Fatal().Err(err).Str("path", *out).Msg("write CSV failed")
	}
	log.Info().Str("path", *out).Msg("Demo dataset written")
}

// generate builds a seasonal order history ending last month. Monthly volume
// carries a mild upward trend plus a yearly sine so the forecast has signal
// to learn.
func generate(months, perMonth int, seed int64) []models.Order {
	rng := rand.New(rand.NewSource(seed))
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months, 0)

	var orders []models.Order
	bar := progressbar.Default(int64(months), "seeding")
	for m := 0; m < months; m++ {
		monthStart := start.AddDate(0, m, 0)
		season := 1 + 0.25*math.Sin(2*math.Pi*float64(monthStart.Month()-1)/12)
		trend := 1 + 0.01*float64(m)
		count := int(float64(perMonth) * season * trend)

		daysInMonth := monthStart.AddDate(0, 1, -1).Day()
		for i := 0; i < count; i++ {
			item := catalog[rng.Intn(len(catalog))]
			qty := 1 + rng.Intn(4)
			day := 1 + rng.Intn(daysInMonth)
			date := time.Date(monthStart.Year(), monthStart.Month(), day, 0, 0, 0, 0, time.UTC)
			orders = append(orders, models.Order{
				OrderID:     uuid.NewString(),
				OrderDate:   date,
				ProductName: item.product,
				Category:    item.category,
				Region:      regions[rng.Intn(len(regions))],
				Quantity:    qty,
				UnitPrice:   item.price,
				Revenue:     float64(qty) * item.price,
			})
		}
		_ = bar.Add(1)
	}
	return orders
}

func writeCSV(path string, orders []models.Order) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(validation.RequiredColumns); err != nil {
		return err
	}
	for _, o := range orders {
		row := []string{
			o.OrderID,
			o.OrderDate.Format("2006-01-02"),
			o.ProductName,
			o.Category,
			o.Region,
			fmt.Sprintf("%d", o.Quantity),
			fmt.Sprintf("%.2f", o.UnitPrice),
			fmt.Sprintf("%.2f", o.Revenue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeDB(orders []models.Order) error {
	db, err := database.New(database.ConnectionParams{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SaveOrders(context.Background(), orders); err != nil {
		return err
	}
	log.Info().Int("orders", len(orders)).Msg("Demo orders stored in PostgreSQL")
	return nil
}
