package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DataClient is the REST client for the Polymarket Data API, which exposes
// per-address trade history, open orders, and portfolio value.
//
// Payloads are decoded into generic maps rather than typed DTOs: the trade
// shapes vary across API versions and the normalizer downstream is the
// component responsible for making sense of them.
type DataClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDataClient creates a new Data API client.
//
// baseURL is the Data API root, e.g. "https://data-api.polymarket.com".
func NewDataClient(baseURL string) *DataClient {
	return &DataClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchTrades returns the raw trade objects for one address, newest first.
func (d *DataClient) FetchTrades(ctx context.Context, address string, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 500
	}
	params := url.Values{}
	params.Set("user", address)
	params.Set("limit", strconv.Itoa(limit))

	body, err := d.doGet(ctx, "/trades?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: fetch trades for %s: %w", address, err)
	}

	trades, err := decodeObjectArray(body)
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: decode trades: %w", err)
	}
	return trades, nil
}

// FetchOpenOrders returns the raw open-order objects for one address.
func (d *DataClient) FetchOpenOrders(ctx context.Context, address string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("user", address)

	body, err := d.doGet(ctx, "/orders?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: fetch open orders for %s: %w", address, err)
	}

	orders, err := decodeObjectArray(body)
	if err != nil {
		return nil, fmt.Errorf("polymarket/data: decode open orders: %w", err)
	}
	return orders, nil
}

// FetchPortfolioValue returns the upstream-reported portfolio value for one
// address. The endpoint answers either a bare number or a one-element array
// of {user, value} objects depending on API version.
func (d *DataClient) FetchPortfolioValue(ctx context.Context, address string) (float64, error) {
	params := url.Values{}
	params.Set("user", address)

	body, err := d.doGet(ctx, "/value?"+params.Encode())
	if err != nil {
		return 0, fmt.Errorf("polymarket/data: fetch portfolio value for %s: %w", address, err)
	}

	var bare float64
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var rows []struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("polymarket/data: decode portfolio value: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Value, nil
}

// decodeObjectArray accepts either a bare JSON array of objects or an object
// wrapping one under common container keys.
func decodeObjectArray(body []byte) ([]map[string]any, error) {
	var arr []map[string]any
	if err := json.Unmarshal(body, &arr); err == nil {
		return arr, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("unexpected payload shape: %w", err)
	}
	for _, key := range []string{"data", "trades", "orders", "results"} {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &arr); err == nil {
			return arr, nil
		}
	}
	return nil, nil
}

func (d *DataClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}
