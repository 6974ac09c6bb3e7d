package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alias1177/RevenueIntel/models"
)

// Client fetches validated order records from a remote order feed with rate
// limiting and retries. It is the network counterpart of the CSV loader and
// satisfies models.OrderSource.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	logger     zerolog.Logger
}

// NewClient creates a new order feed client with rate limiting.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 5), // 5 requests per second
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     log.With().Str("component", "orders_client").Logger(),
	}
}

type feedResponse struct {
	Orders []orderPayload `json:"orders"`
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
}

type orderPayload struct {
	OrderID     string  `json:"order_id"`
	OrderDate   string  `json:"order_date"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Region      string  `json:"region"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Revenue     float64 `json:"revenue"`
}

// GetOrders fetches the full order history from the feed, oldest first.
func (c *Client) GetOrders(ctx context.Context) ([]models.Order, error) {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	url := fmt.Sprintf("%s/v1/orders?apikey=%s", c.baseURL, c.apiKey)
	c.logger.Debug().Str("url", c.baseURL).Msg("Fetching orders")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Use exponential backoff for retries
	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("non-200 status code: %d", resp.StatusCode)
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data feedResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Status == "error" {
		c.logger.Error().Str("response", data.Error).Msg("Order feed error")
		return nil, fmt.Errorf("order feed error: %s", data.Error)
	}
	if len(data.Orders) == 0 {
		c.logger.Warn().Msg("No orders in response")
		return nil, fmt.Errorf("empty data returned")
	}

	orders := make([]models.Order, 0, len(data.Orders))
	for _, p := range data.Orders {
		date, err := parseFeedDate(p.OrderDate)
		if err != nil {
			c.logger.Warn().Str("order_id", p.OrderID).Err(err).Msg("Skipping order with bad date")
			continue
		}
		orders = append(orders, models.Order{
			OrderID:     p.OrderID,
			OrderDate:   date,
			ProductName: p.ProductName,
			Category:    p.Category,
			Region:      p.Region,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Revenue:     p.Revenue,
		})
	}

	// Sort orders by date (oldest first for proper aggregation)
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].OrderDate.Before(orders[j].OrderDate)
	})

	c.logger.Debug().Int("count", len(orders)).Msg("Fetched orders")
	return orders, nil
}

func parseFeedDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
