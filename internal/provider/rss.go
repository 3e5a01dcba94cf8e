package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"crypto-watchtower/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// RSSProvider fetches and parses RSS feeds into news items.
type RSSProvider struct {
	client *http.Client
	tracer trace.Tracer
}

func NewRSSProvider(tracer trace.Tracer) *RSSProvider {
	return &RSSProvider{
		client: &http.Client{Timeout: 20 * time.Second},
		tracer: tracer,
	}
}

// FetchFeed fetches up to maxItems most-recent entries from feedURL. Items
// without any usable identifier (guid, link, or title) are discarded.
func (p *RSSProvider) FetchFeed(ctx context.Context, group, feedURL string, maxItems int) ([]domain.NewsItem, error) {
	_, span := p.tracer.Start(ctx, "rss.fetch-feed")
	defer span.End()

	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, fmt.Errorf("feed url is required")
	}
	if maxItems <= 0 {
		maxItems = 10
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rss fetch error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss struct {
		Channel struct {
			Items []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				Description string `xml:"description"`
				Summary     string `xml:"summary"`
				GUID        string `xml:"guid"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("decode rss payload: %w", err)
	}

	items := make([]domain.NewsItem, 0, min(maxItems, len(rss.Channel.Items)))
	for i, row := range rss.Channel.Items {
		if i >= maxItems {
			break
		}
		title := NormalizeWhitespace(row.Title)
		link := strings.TrimSpace(row.Link)
		summary := NormalizeWhitespace(htmlStrip(row.Summary))
		if summary == "" {
			summary = NormalizeWhitespace(htmlStrip(row.Description))
		}

		// Identifier fallback order: guid, link, title.
		externalID := strings.TrimSpace(row.GUID)
		if externalID == "" {
			externalID = link
		}
		if externalID == "" {
			externalID = title
		}
		if externalID == "" {
			continue
		}

		items = append(items, domain.NewsItem{
			Group:      group,
			ExternalID: externalID,
			Title:      title,
			Link:       link,
			Summary:    summary,
		})
	}

	return items, nil
}

var whitespaceRx = regexp.MustCompile(`\s+`)

// NormalizeWhitespace collapses runs of whitespace into single spaces and
// trims the result.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRx.ReplaceAllString(s, " "))
}

func htmlStrip(in string) string {
	if strings.TrimSpace(in) == "" {
		return ""
	}
	var b strings.Builder
	inside := false
	for _, r := range in {
		switch r {
		case '<':
			inside = true
			continue
		case '>':
			inside = false
			continue
		}
		if !inside {
			b.WriteRune(r)
		}
	}
	return b.String()
}
