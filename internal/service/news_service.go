package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"crypto-watchtower/internal/classify"
	"crypto-watchtower/internal/domain"
	"crypto-watchtower/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

const (
	feedItemsPerCycle = 10
	feedItemsOnDemand = 3
)

// FeedReader pulls raw items from one feed URL.
type FeedReader interface {
	FetchFeed(ctx context.Context, group, feedURL string, maxItems int) ([]domain.NewsItem, error)
}

// AggregatorReader pulls posts from the optional news-aggregation API.
type AggregatorReader interface {
	FetchPosts(ctx context.Context, symbol string) ([]provider.CryptoPanicPost, error)
}

// SeenSet is the dedup store surface the aggregator needs.
type SeenSet interface {
	Seen(key string) bool
	MarkSeen(key string)
}

// Notifier delivers one alert, best-effort.
type Notifier interface {
	Notify(ctx context.Context, alert domain.Alert)
}

// NewsService turns unseen feed items into classified, price-enriched alerts.
// Keys are marked seen after the delivery attempt regardless of its outcome:
// the contract is at most one notification per item, not guaranteed delivery.
type NewsService struct {
	tracer     trace.Tracer
	feeds      FeedReader
	aggregator AggregatorReader
	seen       SeenSet
	notifier   Notifier
	groups     []domain.SourceGroup
}

func NewNewsService(
	tracer trace.Tracer,
	feeds FeedReader,
	aggregator AggregatorReader,
	seen SeenSet,
	notifier Notifier,
	groups []domain.SourceGroup,
) *NewsService {
	if groups == nil {
		groups = domain.DefaultSourceGroups
	}
	return &NewsService{
		tracer:     tracer,
		feeds:      feeds,
		aggregator: aggregator,
		seen:       seen,
		notifier:   notifier,
		groups:     groups,
	}
}

// Scan runs one feed pass: every unseen item in every configured feed becomes
// one alert. A failing feed is logged and skipped for the cycle; it never
// aborts the group or the cycle.
func (s *NewsService) Scan(ctx context.Context, snap *domain.PriceSnapshot) {
	_, span := s.tracer.Start(ctx, "news-service.scan")
	defer span.End()

	for _, group := range s.groups {
		for _, feedURL := range group.Feeds {
			items, err := s.feeds.FetchFeed(ctx, group.Name, feedURL, feedItemsPerCycle)
			if err != nil {
				log.Printf("feed %s skipped: %v", feedURL, err)
				continue
			}
			for _, item := range items {
				s.processItem(ctx, group, item, snap)
			}
		}
	}
}

func (s *NewsService) processItem(ctx context.Context, group domain.SourceGroup, item domain.NewsItem, snap *domain.PriceSnapshot) {
	key := item.DedupKey()
	if key == "" || s.seen.Seen(key) {
		return
	}

	asset := group.Asset
	if group.Generic() {
		asset = classify.DetectAsset(item.Title, item.Summary)
	}
	// Generic items without a detected asset still go out as general info,
	// labelled with their group name.
	label := asset
	if label == "" {
		label = group.Name
	}

	var quote domain.PriceQuote
	if asset != "" {
		quote, _ = snap.Quote(asset)
	}

	verdict := classify.Classify(item.Title, item.Summary)
	cred := classify.Credibility(item.Link)

	text := fmt.Sprintf(
		"📰 <b>%s</b> — %s\n<b>%s</b>\n%s\n%s\n\nAction: <b>%s</b>\nReason: %s\nCredibility: %s",
		html.EscapeString(label), Timestamp(time.Now()),
		html.EscapeString(item.Title), item.Link,
		priceLine(quote),
		verdict.Action, verdict.Rationale, cred,
	)

	s.notifier.Notify(ctx, domain.Alert{
		Kind:      domain.AlertKindNews,
		Asset:     asset,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	s.seen.MarkSeen(key)
}

// ScanAggregator runs one pass over the optional news-aggregation API under
// the "cp:" key namespace. A missing provider disables the source entirely.
func (s *NewsService) ScanAggregator(ctx context.Context, snap *domain.PriceSnapshot) {
	if s.aggregator == nil {
		return
	}

	_, span := s.tracer.Start(ctx, "news-service.scan-aggregator")
	defer span.End()

	for _, symbol := range domain.SupportedSymbols {
		posts, err := s.aggregator.FetchPosts(ctx, symbol)
		if err != nil {
			log.Printf("aggregator fetch for %s skipped: %v", symbol, err)
			continue
		}
		for _, post := range posts {
			key := fmt.Sprintf("cp:%s:%d", symbol, post.ID)
			if s.seen.Seen(key) {
				continue
			}

			quote, _ := snap.Quote(symbol)
			verdict := classify.Classify(post.Title, "")

			text := fmt.Sprintf(
				"📰 <b>%s</b> — %s\n<b>%s</b>\n%s\n%s\n\nAction: <b>%s</b>\nReason: %s\nCredibility: Medium-High (aggregator)",
				symbol, Timestamp(time.Now()),
				html.EscapeString(post.Title), post.URL,
				priceLine(quote),
				verdict.Action, verdict.Rationale,
			)

			s.notifier.Notify(ctx, domain.Alert{
				Kind:      domain.AlertKindNews,
				Asset:     symbol,
				Text:      text,
				CreatedAt: time.Now().UTC(),
			})
			s.seen.MarkSeen(key)
		}
	}
}

// LatestNews renders an on-demand digest of current headlines without
// touching the seen store. assetFilter narrows output to one asset.
func (s *NewsService) LatestNews(ctx context.Context, assetFilter string) string {
	_, span := s.tracer.Start(ctx, "news-service.latest-news")
	defer span.End()

	lines := []string{"📰 <b>Latest news</b> — " + Timestamp(time.Now())}
	for _, group := range s.groups {
		for _, feedURL := range group.Feeds {
			items, err := s.feeds.FetchFeed(ctx, group.Name, feedURL, feedItemsOnDemand)
			if err != nil {
				continue
			}
			for _, item := range items {
				asset := group.Asset
				if group.Generic() {
					asset = classify.DetectAsset(item.Title, item.Summary)
				}
				label := asset
				if label == "" {
					label = group.Name
				}
				if assetFilter != "" && label != assetFilter {
					continue
				}
				cred := classify.Credibility(item.Link)
				lines = append(lines, fmt.Sprintf("• [%s] %s — %s\n  %s",
					label, html.EscapeString(item.Title), cred, item.Link))
			}
		}
	}
	return strings.Join(lines, "\n")
}
