// Package news aggregates third-party RSS headlines.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/Rogeraristi/polycopy-sub001/internal/domain"
)

// Feed is one configured RSS source.
type Feed struct {
	Name string
	URL  string
}

// Client fetches and merges headlines from a fixed set of RSS feeds.
// Individual feed failures degrade to fewer headlines, never to an error.
type Client struct {
	feeds  []Feed
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a news client over the given feeds.
func NewClient(feeds []Feed, logger *slog.Logger) *Client {
	return &Client{
		feeds: feeds,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With(slog.String("component", "news_client")),
	}
}

type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// pubDateLayouts covers the date formats seen across real-world feeds.
var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// FetchHeadlines fetches every configured feed and returns the merged
// headlines, newest first, truncated to limit when limit > 0.
func (c *Client) FetchHeadlines(ctx context.Context, limit int) ([]domain.NewsHeadline, error) {
	var headlines []domain.NewsHeadline
	for _, feed := range c.feeds {
		items, err := c.fetchFeed(ctx, feed)
		if err != nil {
			c.logger.WarnContext(ctx, "feed fetch failed",
				slog.String("feed", feed.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		headlines = append(headlines, items...)
	}

	sort.SliceStable(headlines, func(i, j int) bool {
		return headlines[i].PublishedAt.After(headlines[j].PublishedAt)
	})
	if limit > 0 && len(headlines) > limit {
		headlines = headlines[:limit]
	}
	return headlines, nil
}

func (c *Client) fetchFeed(ctx context.Context, feed Feed) ([]domain.NewsHeadline, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("news: create request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("news: HTTP %d from %s", resp.StatusCode, feed.URL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("news: read response: %w", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("news: decode feed %s: %w", feed.Name, err)
	}

	headlines := make([]domain.NewsHeadline, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		if item.Title == "" {
			continue
		}
		headlines = append(headlines, domain.NewsHeadline{
			Title:       item.Title,
			Link:        item.Link,
			Source:      feed.Name,
			PublishedAt: parsePubDate(item.PubDate),
		})
	}
	return headlines, nil
}

func parsePubDate(raw string) time.Time {
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
