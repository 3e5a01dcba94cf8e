package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"crypto-watchtower/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type stubPrices struct{ snap *domain.PriceSnapshot }

func (s *stubPrices) CachedSnapshot(ctx context.Context) *domain.PriceSnapshot { return s.snap }

type stubLevels struct{ levels map[string]domain.LevelConfig }

func (s *stubLevels) Levels() map[string]domain.LevelConfig { return s.levels }

type stubOffsets struct {
	offset int
	ok     bool
	puts   []int
}

func (s *stubOffsets) Get() (int, bool) { return s.offset, s.ok }

func (s *stubOffsets) Put(offset int) error {
	s.puts = append(s.puts, offset)
	return nil
}

func ptr(f float64) *float64 { return &f }

func testBot(prices PriceReader, levels LevelReader) *Bot {
	return &Bot{
		tracer: trace.NewNoopTracerProvider().Tracer("test"),
		prices: prices,
		levels: levels,
	}
}

func TestStatusTextRendersQuotesAndGaps(t *testing.T) {
	snap := &domain.PriceSnapshot{
		Quotes: map[string]domain.PriceQuote{
			"BTC": {USD: ptr(117000), EUR: ptr(108000)},
			"ADA": {USD: ptr(0.85)},
		},
		FetchedAt: time.Now().UTC(),
	}
	b := testBot(&stubPrices{snap: snap}, nil)

	text := b.statusText(context.Background())

	if !strings.Contains(text, "• BTC: 108000.00 € / $117000.00") {
		t.Fatalf("missing BTC line: %q", text)
	}
	if !strings.Contains(text, "• ADA: $0.85") {
		t.Fatalf("missing USD-only ADA line: %q", text)
	}
	if !strings.Contains(text, "• ETH: n/a") {
		t.Fatalf("missing n/a line for uncached symbol: %q", text)
	}
}

func TestLevelsTextListsFamilies(t *testing.T) {
	b := testBot(nil, &stubLevels{levels: map[string]domain.LevelConfig{
		"BTC":  {WarnUp: []float64{113000, 114000}, DangerDown: []float64{100000}},
		"AVAX": {TPZone: []float64{26, 31}},
	}})

	text := b.levelsText()

	if !strings.Contains(text, "• BTC: warn_up: [113000, 114000] | danger_down: [100000]") {
		t.Fatalf("unexpected BTC levels line: %q", text)
	}
	if !strings.Contains(text, "• AVAX: tp_zone: [26, 31]") {
		t.Fatalf("tp_zone must be listed: %q", text)
	}
	if strings.Contains(text, "ETH") {
		t.Fatalf("assets without levels should be omitted: %q", text)
	}
}

func TestLevelsTextEmptyTable(t *testing.T) {
	b := testBot(nil, &stubLevels{levels: map[string]domain.LevelConfig{}})
	if !strings.Contains(b.levelsText(), "No levels configured.") {
		t.Fatal("expected empty-table message")
	}
}

func TestValidateAsset(t *testing.T) {
	if symbol, ok := validateAsset("sol"); !ok || symbol != "SOL" {
		t.Fatalf("lowercase arg should resolve, got %q %v", symbol, ok)
	}
	if _, ok := validateAsset("DOGE"); ok {
		t.Fatal("unsupported asset must be rejected")
	}
}

func TestBumpOffsetPersistsNextUpdate(t *testing.T) {
	offsets := &stubOffsets{}

	bumpOffset(offsets, 41)
	bumpOffset(offsets, 0)

	if len(offsets.puts) != 1 || offsets.puts[0] != 42 {
		t.Fatalf("expected single put of 42, got %v", offsets.puts)
	}
}
