package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// FrankfurterClient fetches reference rates from the Frankfurter API.
type FrankfurterClient struct {
	baseURL    string
	httpClient *http.Client
}

type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// NewFrankfurterClient creates a rates client with the given timeout.
func NewFrankfurterClient(baseURL string, timeout time.Duration) *FrankfurterClient {
	return &FrankfurterClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchRates returns units of each currency per one unit of base.
func (c *FrankfurterClient) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	endpoint := fmt.Sprintf("%s/latest?from=%s", c.baseURL, url.QueryEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, fmt.Errorf("frankfurter api error: status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed frankfurterResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode frankfurter response: %w", err)
	}

	if len(parsed.Rates) == 0 {
		return nil, errors.New("frankfurter response has no rates")
	}

	if parsed.Base != "" && !strings.EqualFold(parsed.Base, base) {
		return nil, fmt.Errorf("frankfurter response base %s, expected %s", parsed.Base, base)
	}

	return parsed.Rates, nil
}
