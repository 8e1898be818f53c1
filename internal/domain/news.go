package domain

import "time"

// NewsHeadline is one aggregated third-party headline.
type NewsHeadline struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"publishedAt"`
}
