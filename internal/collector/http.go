package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/donaldgifford/catalog-watch/internal/metrics"
	domain "github.com/donaldgifford/catalog-watch/pkg/types"
)

// userAgents are rotated per request. The catalog gateway fronts a scraped
// marketplace and throttles repeat agents aggressively.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
}

// HTTPCollector implements Collector against the catalog gateway's JSON API.
type HTTPCollector struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// HTTPOption configures the HTTPCollector.
type HTTPOption func(*HTTPCollector)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPCollector) {
		c.client = hc
	}
}

// WithRateLimit sets the politeness limit applied before every request.
func WithRateLimit(perSecond float64, burst int) HTTPOption {
	return func(c *HTTPCollector) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewHTTPCollector creates a collector for the catalog gateway at baseURL.
func NewHTTPCollector(baseURL string, opts ...HTTPOption) *HTTPCollector {
	c := &HTTPCollector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// itemPayload is the gateway's wire shape for one catalog item.
type itemPayload struct {
	ID     int64  `json:"id"`
	Price  int64  `json:"price"`
	Name   string `json:"name"`
	Rating string `json:"rating"`
}

type itemsResponse struct {
	Items []itemPayload `json:"items"`
}

// Collect fetches all items of a category. The gateway walks result pages
// internally and responds once with the full list, so a single call can
// take a while; the passed context bounds it.
func (c *HTTPCollector) Collect(
	ctx context.Context,
	category string,
) ([]domain.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	metrics.CollectorRequestsTotal.Inc()

	u := fmt.Sprintf("%s/categories/%s/items", c.baseURL, url.PathEscape(category))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling catalog gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 512))
		if readErr != nil {
			return nil, fmt.Errorf("catalog gateway returned %d (body unreadable)", resp.StatusCode)
		}
		return nil, fmt.Errorf("catalog gateway returned %d: %s", resp.StatusCode, body)
	}

	var payload itemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding catalog response: %w", err)
	}

	if len(payload.Items) == 0 {
		return nil, ErrEmpty
	}

	records := make([]domain.Record, 0, len(payload.Items))
	for _, item := range payload.Items {
		rating := item.Rating
		if rating == "" {
			rating = domain.DefaultRating
		}
		records = append(records, domain.Record{
			ID:     item.ID,
			Price:  item.Price,
			Name:   item.Name,
			Rating: rating,
		})
	}
	return records, nil
}
