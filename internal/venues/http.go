package venues

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPConfig provides optional overrides for an HTTP venue.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// HTTPClient talks to a venue exposing a small JSON API:
//
//	GET  {base}/price?pair=ETH/USDC  -> {"price": 1000.5}
//	POST {base}/orders               <- {"pair": "ETH/USDC", "amount": -1.5}
type HTTPClient struct {
	id         VenueID
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	backoff    func(attempt int) time.Duration
}

type priceResponse struct {
	Price float64 `json:"price"`
}

type orderRequest struct {
	Pair   string  `json:"pair"`
	Amount float64 `json:"amount"`
}

func NewHTTPClient(id VenueID, cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("venue %s: base url is required", id)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("venue %s: parse base url: %w", id, err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	return &HTTPClient{
		id:         id,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		maxRetries: retries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		backoff: backoff,
	}, nil
}

func (c *HTTPClient) Name() VenueID {
	return c.id
}

func (c *HTTPClient) FetchPrice(ctx context.Context, pair string) (float64, error) {
	u := fmt.Sprintf("%s/price?pair=%s", c.baseURL, url.QueryEscape(pair))
	var out priceResponse
	err := c.do(ctx, true, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.Price, nil
}

// SubmitOrder is never retried on 5xx: the venue may already have accepted it.
func (c *HTTPClient) SubmitOrder(ctx context.Context, pair string, signedAmount float64) error {
	body, err := json.Marshal(orderRequest{Pair: pair, Amount: signedAmount})
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}
	return c.do(ctx, false, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, nil)
}

func (c *HTTPClient) do(ctx context.Context, idempotent bool, build func() (*http.Request, error), dst any) error {
	var attempt int
	for {
		attempt++
		req, err := build()
		if err != nil {
			return err
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if idempotent && c.shouldRetry(attempt, 0) && c.sleep(ctx, attempt) {
				continue
			}
			return err
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			defer resp.Body.Close()
			if dst == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(dst)
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()

		retryable := resp.StatusCode == http.StatusTooManyRequests || idempotent
		if retryable && c.shouldRetry(attempt, resp.StatusCode) && c.sleep(ctx, attempt) {
			continue
		}
		return fmt.Errorf("venue %s API %s: %s", c.id, resp.Status, strings.TrimSpace(string(body)))
	}
}

func (c *HTTPClient) shouldRetry(attempt int, status int) bool {
	if attempt >= c.maxRetries {
		return false
	}
	if status == 0 {
		return true
	}
	if status == http.StatusTooManyRequests || status >= 500 {
		return true
	}
	return false
}

// sleep waits out the backoff for attempt and reports false if ctx ended first.
func (c *HTTPClient) sleep(ctx context.Context, attempt int) bool {
	return wait(ctx, c.backoff(attempt)) == nil
}

func backoff(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
	if d > 2*time.Second {
		d = 2 * time.Second
	}
	return d
}
