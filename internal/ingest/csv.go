package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/RevenueIntel/models"
)

// dateLayouts are tried in order when parsing order dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Result carries the loaded dataset plus what the loader saw on the way in:
// the raw header row feeds the data-quality schema check, Skipped counts rows
// dropped as unparseable.
type Result struct {
	Orders  []models.Order
	Headers []string
	Skipped int
}

// LoadCSV reads a sales dataset from a CSV file. Money columns go through
// decimal parsing so values like "19.99" survive exactly before the float64
// handoff; malformed rows are skipped and counted, not fatal.
func LoadCSV(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	result, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return result, nil
}

// Parse reads CSV content from r. The first row must be a header; columns are
// matched by name, extra columns are ignored.
func Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
	}

	col := make(map[string]int, len(headers))
	for i, h := range headers {
		col[h] = i
	}

	result := &Result{Headers: headers}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			continue
		}

		order, err := parseRow(row, col)
		if err != nil {
			log.Debug().Int("line", line).Err(err).Msg("Skipping malformed CSV row")
			result.Skipped++
			continue
		}
		result.Orders = append(result.Orders, order)
	}

	if result.Skipped > 0 {
		log.Warn().Int("skipped", result.Skipped).Int("loaded", len(result.Orders)).Msg("CSV rows skipped")
	}
	return result, nil
}

func parseRow(row []string, col map[string]int) (models.Order, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := parseDate(field("order_date"))
	if err != nil {
		return models.Order{}, err
	}

	quantity, err := strconv.Atoi(field("quantity"))
	if err != nil {
		return models.Order{}, fmt.Errorf("quantity: %w", err)
	}

	unitPrice, err := parseMoney(field("unit_price"))
	if err != nil {
		return models.Order{}, fmt.Errorf("unit_price: %w", err)
	}
	revenue, err := parseMoney(field("revenue"))
	if err != nil {
		return models.Order{}, fmt.Errorf("revenue: %w", err)
	}

	return models.Order{
		OrderID:     field("order_id"),
		OrderDate:   date,
		ProductName: field("product_name"),
		Category:    field("category"),
		Region:      field("region"),
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Revenue:     revenue,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parseMoney(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "$"))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

// FileSource adapts a CSV file to the OrderSource interface used by the
// server and bot entrypoints.
type FileSource struct {
	Path string
}

func (s FileSource) GetOrders(_ context.Context) ([]models.Order, error) {
	result, err := LoadCSV(s.Path)
	if err != nil {
		return nil, err
	}
	return result.Orders, nil
}
