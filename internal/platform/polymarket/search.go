package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// SearchProfiles queries the public search endpoint for trader profiles
// matching q. The payload is returned undecoded past JSON: profile entries
// arrive in the nested search dialect and are handed to the entry normalizer
// downstream. Auth rejections surface as domain.ErrUnauthorized so callers
// can switch to the snapshot fallback.
func (g *GammaClient) SearchProfiles(ctx context.Context, q string, limit int) (any, error) {
	if limit <= 0 {
		limit = 20
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("search_profiles", "true")
	params.Set("limit_per_type", strconv.Itoa(limit))

	body, err := g.doGet(ctx, "/public-search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: search profiles: %w", err)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode profile search: %w", err)
	}
	return payload, nil
}
