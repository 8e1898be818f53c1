// Package apify fetches flat leaderboard dataset dumps from the Apify
// platform, the tertiary fallback of the leaderboard pipeline.
package apify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// Client reads items from one Apify dataset.
type Client struct {
	baseURL   string
	datasetID string
	token     string
	http      *http.Client
}

// NewClient creates an Apify dataset client.
//
// baseURL is the Apify API root, e.g. "https://api.apify.com". datasetID
// names the dataset to read; token may be empty for public datasets.
func NewClient(baseURL, datasetID, token string) *Client {
	return &Client{
		baseURL:   baseURL,
		datasetID: datasetID,
		token:     strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchDataset returns the dataset items as a decoded JSON array.
func (c *Client) FetchDataset(ctx context.Context, limit int) (any, error) {
	params := url.Values{}
	params.Set("clean", "true")
	params.Set("format", "json")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if c.token != "" {
		params.Set("token", c.token)
	}

	target := fmt.Sprintf("%s/v2/datasets/%s/items?%s", c.baseURL, url.PathEscape(c.datasetID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("apify: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apify: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("apify: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("apify: dataset %s: %w", c.datasetID, domain.ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("apify: dataset %s: %w", c.datasetID, domain.ErrUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("apify: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("apify: decode dataset items: %w", err)
	}
	return payload, nil
}
