package domain

import "time"

// Market is the slim market view proxied from the upstream metadata API.
type Market struct {
	ID        string     `json:"id"`
	Question  string     `json:"question"`
	Slug      string     `json:"slug"`
	Outcomes  []string   `json:"outcomes,omitempty"`
	Volume    float64    `json:"volume"`
	Liquidity float64    `json:"liquidity"`
	Active    bool       `json:"active"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}
