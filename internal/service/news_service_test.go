package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"crypto-watchtower/internal/domain"
	"crypto-watchtower/internal/provider"
	"crypto-watchtower/internal/store"

	"go.opentelemetry.io/otel/trace"
)

func noopTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

type stubNotifier struct {
	alerts []domain.Alert
}

func (s *stubNotifier) Notify(ctx context.Context, alert domain.Alert) {
	s.alerts = append(s.alerts, alert)
}

type stubFeedReader struct {
	itemsByURL map[string][]domain.NewsItem
	errsByURL  map[string]error
	calls      []string
}

func (s *stubFeedReader) FetchFeed(ctx context.Context, group, feedURL string, maxItems int) ([]domain.NewsItem, error) {
	s.calls = append(s.calls, feedURL)
	if err := s.errsByURL[feedURL]; err != nil {
		return nil, err
	}
	items := s.itemsByURL[feedURL]
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items, nil
}

type stubAggregator struct {
	posts map[string][]provider.CryptoPanicPost
}

func (s *stubAggregator) FetchPosts(ctx context.Context, symbol string) ([]provider.CryptoPanicPost, error) {
	return s.posts[symbol], nil
}

func ptr(v float64) *float64 { return &v }

func snapshotWith(symbol string, usd, eur float64) *domain.PriceSnapshot {
	return &domain.PriceSnapshot{Quotes: map[string]domain.PriceQuote{
		symbol: {USD: ptr(usd), EUR: ptr(eur)},
	}}
}

func TestScanEmitsOnceForSeenItem(t *testing.T) {
	seen := store.NewSeenStore(filepath.Join(t.TempDir(), "seen.json"))
	notifier := &stubNotifier{}
	feeds := &stubFeedReader{itemsByURL: map[string][]domain.NewsItem{
		"https://feed.example/btc": {{Group: "BTC", ExternalID: "id-1", Title: "Bitcoin ETF approval", Link: "https://www.coindesk.com/x"}},
	}}
	groups := []domain.SourceGroup{{Name: "BTC", Asset: "BTC", Feeds: []string{"https://feed.example/btc"}}}

	svc := NewNewsService(noopTracer(), feeds, nil, seen, notifier, groups)
	snap := snapshotWith("BTC", 97000, 89000)

	svc.Scan(context.Background(), snap)
	svc.Scan(context.Background(), snap)

	if len(notifier.alerts) != 1 {
		t.Fatalf("expected exactly one alert for a repeated item, got %d", len(notifier.alerts))
	}
	alert := notifier.alerts[0]
	if alert.Kind != domain.AlertKindNews || alert.Asset != "BTC" {
		t.Fatalf("unexpected alert: %+v", alert)
	}
	if !strings.Contains(alert.Text, "Buy more") {
		t.Fatalf("expected buy classification in message: %q", alert.Text)
	}
	if !strings.Contains(alert.Text, "Medium-High (journalistic)") {
		t.Fatalf("expected credibility tier in message: %q", alert.Text)
	}
	if !strings.Contains(alert.Text, "Price: 89000.00 € / $97000.00") {
		t.Fatalf("expected price line in message: %q", alert.Text)
	}
}

func TestScanIdempotentAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	feeds := &stubFeedReader{itemsByURL: map[string][]domain.NewsItem{
		"u": {{Group: "ETH", ExternalID: "id-9", Title: "Ethereum upgrade", Link: "https://blog.ethereum.org/x"}},
	}}
	groups := []domain.SourceGroup{{Name: "ETH", Asset: "ETH", Feeds: []string{"u"}}}

	seen := store.NewSeenStore(path)
	first := &stubNotifier{}
	NewNewsService(noopTracer(), feeds, nil, seen, first, groups).
		Scan(context.Background(), &domain.PriceSnapshot{})
	if err := seen.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Simulated restart: a new store loads the persisted keys.
	second := &stubNotifier{}
	NewNewsService(noopTracer(), feeds, nil, store.NewSeenStore(path), second, groups).
		Scan(context.Background(), &domain.PriceSnapshot{})

	if len(first.alerts) != 1 || len(second.alerts) != 0 {
		t.Fatalf("expected 1 then 0 alerts, got %d then %d", len(first.alerts), len(second.alerts))
	}
}

// A crash between cycles can leave only part of a feed's keys on disk. After
// restart the persisted item must stay quiet while the unpersisted one still
// emits exactly once.
func TestScanRestartWithPartiallyPersistedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.json")
	groups := []domain.SourceGroup{{Name: "ETH", Asset: "ETH", Feeds: []string{"u"}}}

	older := domain.NewsItem{Group: "ETH", ExternalID: "id-1", Title: "Ethereum upgrade", Link: "https://blog.ethereum.org/a"}
	newer := domain.NewsItem{Group: "ETH", ExternalID: "id-2", Title: "Ethereum mainnet rollout", Link: "https://blog.ethereum.org/b"}

	// First life of the process sees only the older item and persists its key.
	feeds := &stubFeedReader{itemsByURL: map[string][]domain.NewsItem{"u": {older}}}
	seen := store.NewSeenStore(path)
	first := &stubNotifier{}
	NewNewsService(noopTracer(), feeds, nil, seen, first, groups).
		Scan(context.Background(), &domain.PriceSnapshot{})
	if err := seen.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Restart: the feed now carries both items but only id-1 made it to disk.
	feeds.itemsByURL["u"] = []domain.NewsItem{older, newer}
	reloaded := store.NewSeenStore(path)
	second := &stubNotifier{}
	svc := NewNewsService(noopTracer(), feeds, nil, reloaded, second, groups)
	svc.Scan(context.Background(), &domain.PriceSnapshot{})
	svc.Scan(context.Background(), &domain.PriceSnapshot{})

	if len(first.alerts) != 1 {
		t.Fatalf("expected 1 alert before restart, got %d", len(first.alerts))
	}
	if len(second.alerts) != 1 {
		t.Fatalf("expected exactly 1 alert for the unpersisted item, got %d", len(second.alerts))
	}
	if !strings.Contains(second.alerts[0].Text, "Ethereum mainnet rollout") {
		t.Fatalf("expected the unpersisted item to emit, got %q", second.alerts[0].Text)
	}
	if !reloaded.Seen(older.DedupKey()) || !reloaded.Seen(newer.DedupKey()) {
		t.Fatal("both keys should be marked after the post-restart scan")
	}
}

func TestScanDiscardsItemsWithoutID(t *testing.T) {
	seen := store.NewSeenStore(filepath.Join(t.TempDir(), "seen.json"))
	notifier := &stubNotifier{}
	feeds := &stubFeedReader{itemsByURL: map[string][]domain.NewsItem{
		"u": {{Group: "BTC", ExternalID: "", Title: "no id"}},
	}}
	groups := []domain.SourceGroup{{Name: "BTC", Asset: "BTC", Feeds: []string{"u"}}}

	NewNewsService(noopTracer(), feeds, nil, seen, notifier, groups).
		Scan(context.Background(), &domain.PriceSnapshot{})

	if len(notifier.alerts) != 0 || seen.Len() != 0 {
		t.Fatalf("id-less item must be discarded, got %d alerts %d keys", len(notifier.alerts), seen.Len())
	}
}

func TestScanFailingFeedDoesNotAbortCycle(t *testing.T) {
	seen := store.NewSeenStore(filepath.Join(t.TempDir(), "seen.json"))
	notifier := &stubNotifier{}
	feeds := &stubFeedReader{
		itemsByURL: map[string][]domain.NewsItem{
			"good": {{Group: "_global", ExternalID: "g-1", Title: "Solana mainnet upgrade", Link: "https://solana.com/x"}},
		},
		errsByURL: map[string]error{"bad": errors.New("connection refused")},
	}
	groups := []domain.SourceGroup{{Name: "_global", Feeds: []string{"bad", "good"}}}

	NewNewsService(noopTracer(), feeds, nil, seen, notifier, groups).
		Scan(context.Background(), &domain.PriceSnapshot{})

	if len(notifier.alerts) != 1 {
		t.Fatalf("expected alert from surviving feed, got %d", len(notifier.alerts))
	}
	// Generic group item resolved to SOL by text detection.
	if notifier.alerts[0].Asset != "SOL" {
		t.Fatalf("expected detected asset SOL, got %q", notifier.alerts[0].Asset)
	}
}

func TestScanUnresolvedGenericItemUsesGroupLabel(t *testing.T) {
	seen := store.NewSeenStore(filepath.Join(t.TempDir(), "seen.json"))
	notifier := &stubNotifier{}
	feeds := &stubFeedReader{itemsByURL: map[string][]domain.NewsItem{
		"u": {{Group: "regulators", ExternalID: "r-1", Title: "Commission statement on markets", Link: "https://www.cftc.gov/x"}},
	}}
	groups := []domain.SourceGroup{{Name: "regulators", Feeds: []string{"u"}}}

	NewNewsService(noopTracer(), feeds, nil, seen, notifier, groups).
		Scan(context.Background(), &domain.PriceSnapshot{})

	if len(notifier.alerts) != 1 {
		t.Fatalf("generic item without asset must still notify")
	}
	alert := notifier.alerts[0]
	if alert.Asset != "" || !strings.Contains(alert.Text, "<b>regulators</b>") {
		t.Fatalf("expected group label fallback, got %+v", alert)
	}
	if !strings.Contains(alert.Text, "Price: n/a") {
		t.Fatalf("expected n/a price for unresolved asset: %q", alert.Text)
	}
}

func TestScanAggregatorUsesNamespacedKeys(t *testing.T) {
	seen := store.NewSeenStore(filepath.Join(t.TempDir(), "seen.json"))
	notifier := &stubNotifier{}
	agg := &stubAggregator{posts: map[string][]provider.CryptoPanicPost{
		"BTC": {{ID: 7, Title: "Exchange hack reported", URL: "https://cp.example/7"}},
	}}

	svc := NewNewsService(noopTracer(), &stubFeedReader{}, agg, seen, notifier, []domain.SourceGroup{})
	snap := snapshotWith("BTC", 97000, 89000)
	svc.ScanAggregator(context.Background(), snap)
	svc.ScanAggregator(context.Background(), snap)

	if len(notifier.alerts) != 1 {
		t.Fatalf("expected one aggregator alert, got %d", len(notifier.alerts))
	}
	if !seen.Seen("cp:BTC:7") {
		t.Fatalf("expected cp-namespaced key marked seen")
	}
	if !strings.Contains(notifier.alerts[0].Text, "Take profits / Reduce") {
		t.Fatalf("expected sell classification: %q", notifier.alerts[0].Text)
	}
	if !strings.Contains(notifier.alerts[0].Text, "Medium-High (aggregator)") {
		t.Fatalf("expected aggregator credibility: %q", notifier.alerts[0].Text)
	}
}

func TestLatestNewsDoesNotTouchSeenStore(t *testing.T) {
	seen := store.NewSeenStore(filepath.Join(t.TempDir(), "seen.json"))
	feeds := &stubFeedReader{itemsByURL: map[string][]domain.NewsItem{
		"u": {
			{Group: "BTC", ExternalID: "a", Title: "Bitcoin news", Link: "https://news.example/a"},
			{Group: "BTC", ExternalID: "b", Title: "More bitcoin news", Link: "https://news.example/b"},
		},
	}}
	groups := []domain.SourceGroup{{Name: "BTC", Asset: "BTC", Feeds: []string{"u"}}}

	svc := NewNewsService(noopTracer(), feeds, nil, seen, &stubNotifier{}, groups)
	out := svc.LatestNews(context.Background(), "")

	if !strings.Contains(out, "Bitcoin news") || !strings.Contains(out, "More bitcoin news") {
		t.Fatalf("expected headlines in digest: %q", out)
	}
	if seen.Len() != 0 {
		t.Fatalf("on-demand digest must not mark items seen")
	}
}

func TestLatestNewsAssetFilter(t *testing.T) {
	feeds := &stubFeedReader{itemsByURL: map[string][]domain.NewsItem{
		"btc": {{Group: "BTC", ExternalID: "a", Title: "Bitcoin headline", Link: "l"}},
		"eth": {{Group: "ETH", ExternalID: "b", Title: "Ethereum headline", Link: "l"}},
	}}
	groups := []domain.SourceGroup{
		{Name: "BTC", Asset: "BTC", Feeds: []string{"btc"}},
		{Name: "ETH", Asset: "ETH", Feeds: []string{"eth"}},
	}
	seen := store.NewSeenStore(filepath.Join(t.TempDir(), "seen.json"))

	svc := NewNewsService(noopTracer(), feeds, nil, seen, &stubNotifier{}, groups)
	out := svc.LatestNews(context.Background(), "ETH")

	if strings.Contains(out, "Bitcoin headline") {
		t.Fatalf("filter should exclude BTC items: %q", out)
	}
	if !strings.Contains(out, "Ethereum headline") {
		t.Fatalf("filter should keep ETH items: %q", out)
	}
}
