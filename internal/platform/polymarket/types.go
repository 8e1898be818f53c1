package polymarket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// flexFloat unmarshals from a JSON number or a numeric string; Gamma sends
// volume and liquidity as strings.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse numeric string %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// APIMarket represents a market as returned by the Gamma API.
type APIMarket struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Slug       string    `json:"slug"`
	Active     flexBool  `json:"active"`
	Closed     bool      `json:"closed"`
	Outcomes   string    `json:"outcomes"` // JSON-encoded: e.g. "[\"Yes\",\"No\"]"
	Volume     flexFloat `json:"volume"`
	Liquidity  flexFloat `json:"liquidity"`
	EndDateISO string    `json:"end_date_iso"`
	EndDate    string    `json:"endDate"`
}

// ToDomainMarket converts a Gamma APIMarket to the slim domain view.
func (m *APIMarket) ToDomainMarket() domain.Market {
	dm := domain.Market{
		ID:        m.ID,
		Question:  m.Question,
		Slug:      m.Slug,
		Volume:    float64(m.Volume),
		Liquidity: float64(m.Liquidity),
		Active:    bool(m.Active) && !m.Closed,
	}

	if m.Outcomes != "" {
		var outcomes []string
		if err := json.Unmarshal([]byte(m.Outcomes), &outcomes); err == nil {
			dm.Outcomes = outcomes
		}
	}

	for _, raw := range []string{m.EndDateISO, m.EndDate} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			dm.EndDate = &t
			break
		}
	}

	return dm
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
