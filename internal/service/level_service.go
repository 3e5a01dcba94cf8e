package service

import (
	"context"
	"fmt"
	"time"

	"crypto-watchtower/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// LevelService re-checks the static threshold table against every snapshot.
// It holds no state: a standing condition fires again every cycle it holds.
type LevelService struct {
	tracer   trace.Tracer
	levels   map[string]domain.LevelConfig
	notifier Notifier
}

func NewLevelService(tracer trace.Tracer, levels map[string]domain.LevelConfig, notifier Notifier) *LevelService {
	if levels == nil {
		levels = domain.DefaultLevels
	}
	return &LevelService{tracer: tracer, levels: levels, notifier: notifier}
}

// Levels returns the configured threshold table.
func (s *LevelService) Levels() map[string]domain.LevelConfig {
	return s.levels
}

// Check evaluates every threshold family against current USD prices.
func (s *LevelService) Check(ctx context.Context, snap *domain.PriceSnapshot) {
	_, span := s.tracer.Start(ctx, "level-service.check")
	defer span.End()

	for _, symbol := range domain.SupportedSymbols {
		cfg, ok := s.levels[symbol]
		if !ok {
			continue
		}
		quote, ok := snap.Quote(symbol)
		if !ok || quote.USD == nil {
			continue
		}
		usd := *quote.USD

		for _, lvl := range cfg.WarnUp {
			if usd >= lvl {
				s.ping(ctx, symbol, quote, fmt.Sprintf("Reached the loss-reduction zone (%s$)", fmtLevel(lvl)))
			}
		}
		for _, lvl := range cfg.BreakEven {
			if usd >= lvl {
				s.ping(ctx, symbol, quote, fmt.Sprintf("Back to break-even (~%s$)", fmtLevel(lvl)))
			}
		}
		for _, lvl := range cfg.DangerDown {
			if usd <= lvl {
				s.ping(ctx, symbol, quote, fmt.Sprintf("⚠️ Danger alert: below %s$", fmtLevel(lvl)))
			}
		}
		if len(cfg.BuyZone) == 2 {
			low, high := cfg.BuyZone[0], cfg.BuyZone[1]
			if high < low {
				low, high = high, low
			}
			if low <= usd && usd <= high {
				s.ping(ctx, symbol, quote, fmt.Sprintf("Buy zone (%s$–%s$) — wait for confirmation (green candle/volume)",
					fmtLevel(low), fmtLevel(high)))
			}
		}
	}
}

func (s *LevelService) ping(ctx context.Context, symbol string, quote domain.PriceQuote, txt string) {
	var price string
	if quote.EUR != nil && quote.USD != nil {
		price = fmt.Sprintf("Current price: %.2f € / $%.2f", *quote.EUR, *quote.USD)
	} else if quote.USD != nil {
		price = fmt.Sprintf("Current price: $%.2f", *quote.USD)
	} else {
		price = "Current price: n/a"
	}

	s.notifier.Notify(ctx, domain.Alert{
		Kind:      domain.AlertKindLevel,
		Asset:     symbol,
		Text:      fmt.Sprintf("⚙️ <b>%s</b> — %s — %s\n%s", symbol, txt, Timestamp(time.Now()), price),
		CreatedAt: time.Now().UTC(),
	})
}
