package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
	"github.com/Rogeraristi/polycopy-sub001/internal/normalize"
)

// periodWindows maps period keys onto the leaderboard API's window parameter.
var periodWindows = map[domain.Period]string{
	domain.PeriodToday:   "1d",
	domain.PeriodWeekly:  "1w",
	domain.PeriodMonthly: "1m",
	domain.PeriodAll:     "all",
}

// restCandidatePaths are probed in order when every structured fetch came
// back empty. A 404 advances to the next candidate.
var restCandidatePaths = []string{
	"/leaderboard",
	"/v1/leaderboard",
	"/leaderboard/pnl",
	"/rankings",
}

// nextDataRe captures the JSON payload Next.js embeds in the leaderboard
// webpage. The scrape tiers mine it for entry arrays.
var nextDataRe = regexp.MustCompile(`(?s)<script id="__NEXT_DATA__"[^>]*>(.*?)</script>`)

// LeaderboardClient fetches leaderboard data from the structured ranking API
// and, as a fallback, from the public leaderboard webpage. It provides the
// per-period source, the scraper, and the REST prober tiers of the
// reconciliation pipeline.
type LeaderboardClient struct {
	apiBaseURL  string
	siteBaseURL string
	httpClient  *http.Client
}

// NewLeaderboardClient creates a client over the ranking API root
// (e.g. "https://lb-api.polymarket.com") and the public site root
// (e.g. "https://polymarket.com").
func NewLeaderboardClient(apiBaseURL, siteBaseURL string) *LeaderboardClient {
	return &LeaderboardClient{
		apiBaseURL:  apiBaseURL,
		siteBaseURL: siteBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchPeriod fetches the structured leaderboard payload for one period.
func (l *LeaderboardClient) FetchPeriod(ctx context.Context, period domain.Period, limit int) (any, error) {
	window, ok := periodWindows[period]
	if !ok {
		return nil, fmt.Errorf("polymarket/leaderboard: unknown period %q", period)
	}

	params := url.Values{}
	params.Set("window", window)
	params.Set("rankType", "pnl")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := l.doGet(ctx, l.apiBaseURL+"/leaderboard?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/leaderboard: fetch period %s: %w", period, err)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("polymarket/leaderboard: decode period %s: %w", period, err)
	}
	return payload, nil
}

// ScrapePeriod fetches the leaderboard webpage for one period and extracts
// the embedded JSON payload.
func (l *LeaderboardClient) ScrapePeriod(ctx context.Context, period domain.Period) (any, error) {
	window, ok := periodWindows[period]
	if !ok {
		return nil, fmt.Errorf("polymarket/leaderboard: unknown period %q", period)
	}
	return l.scrape(ctx, l.siteBaseURL+"/leaderboard?window="+url.QueryEscape(window))
}

// ScrapeGeneric fetches the unparameterized leaderboard webpage.
func (l *LeaderboardClient) ScrapeGeneric(ctx context.Context) (any, error) {
	return l.scrape(ctx, l.siteBaseURL+"/leaderboard")
}

// ProbeCandidates walks the fixed candidate REST paths in order and returns
// the first payload that normalizes to a non-empty entry list. A 404 advances
// to the next candidate; any other failure is skipped the same way, with the
// last error retained for the final report.
func (l *LeaderboardClient) ProbeCandidates(ctx context.Context, limit int) (any, string, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var lastErr error
	for _, path := range restCandidatePaths {
		target := l.apiBaseURL + path
		if enc := params.Encode(); enc != "" {
			target += "?" + enc
		}

		body, err := l.doGet(ctx, target)
		if err != nil {
			lastErr = err
			continue
		}

		var payload any
		if err := json.Unmarshal(body, &payload); err != nil {
			lastErr = err
			continue
		}
		if len(normalize.Entries(payload, 0)) > 0 {
			return payload, path, nil
		}
	}

	if lastErr != nil {
		return nil, "", fmt.Errorf("polymarket/leaderboard: all candidates failed: %w", lastErr)
	}
	return nil, "", fmt.Errorf("polymarket/leaderboard: no candidate returned entries")
}

// scrape fetches an HTML page and returns the first entry-bearing structure
// found inside its embedded JSON blob.
func (l *LeaderboardClient) scrape(ctx context.Context, target string) (any, error) {
	body, err := l.doGet(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("polymarket/leaderboard: scrape %s: %w", target, err)
	}

	m := nextDataRe.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("polymarket/leaderboard: no embedded payload in %s", target)
	}

	var embedded any
	if err := json.Unmarshal(m[1], &embedded); err != nil {
		return nil, fmt.Errorf("polymarket/leaderboard: decode embedded payload: %w", err)
	}

	if found := digEntryArray(embedded, 0); found != nil {
		return found, nil
	}
	return nil, fmt.Errorf("polymarket/leaderboard: no entry array in embedded payload")
}

// digEntryArray walks the embedded structure depth-first and returns the
// first array of objects that carries an address-like key, which is what the
// entry normalizer needs downstream.
func digEntryArray(node any, depth int) any {
	const maxDepth = 12
	if depth > maxDepth {
		return nil
	}

	switch v := node.(type) {
	case []any:
		if isEntryArray(v) {
			return v
		}
		for _, item := range v {
			if found := digEntryArray(item, depth+1); found != nil {
				return found
			}
		}
	case map[string]any:
		for _, item := range v {
			if found := digEntryArray(item, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

var addressLikeKeys = []string{"proxyWallet", "address", "wallet", "walletAddress", "userAddress"}

func isEntryArray(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	first, ok := arr[0].(map[string]any)
	if !ok {
		return false
	}
	for _, key := range addressLikeKeys {
		if _, present := first[key]; present {
			return true
		}
	}
	return false
}

func (l *LeaderboardClient) doGet(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := l.httpClient.Do(req)
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
