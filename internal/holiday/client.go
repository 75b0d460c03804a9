// Package holiday answers "is this date a public holiday?" against the
// Nager.Date API, caching whole years per country.
package holiday

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Holiday is one entry of the public-holiday feed.
type Holiday struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Fixed       bool     `json:"fixed"`
	Global      bool     `json:"global"`
	Types       []string `json:"types"`
}

// Fetcher retrieves the full holiday list for one (year, country) pair.
type Fetcher interface {
	FetchYear(ctx context.Context, year int, countryCode string) ([]Holiday, error)
}

// Client is the HTTP Fetcher against the holiday service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchYear fetches /api/v3/PublicHolidays/{year}/{countryCode}. Any
// transport error or non-200 status is returned as an error; callers must
// not treat an outage as "no holiday".
func (c *Client) FetchYear(ctx context.Context, year int, countryCode string) ([]Holiday, error) {
	url := fmt.Sprintf("%s/api/v3/PublicHolidays/%d/%s", c.baseURL, year, countryCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("holiday request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday response: %w", err)
	}

	var holidays []Holiday
	if err := json.Unmarshal(body, &holidays); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holiday response: %w", err)
	}

	return holidays, nil
}
