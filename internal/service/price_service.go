package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"crypto-watchtower/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const priceCacheTTL = 90 * time.Second

// PriceProvider fetches a fresh snapshot from the upstream price source.
type PriceProvider interface {
	FetchPrices(ctx context.Context) (*domain.PriceSnapshot, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// PriceService fetches price snapshots and keeps a short-lived per-symbol
// cache in Redis so on-demand reads (bot commands, HTTP API) don't burn
// upstream quota between polling cycles.
type PriceService struct {
	tracer   trace.Tracer
	provider PriceProvider
	redis    RedisClient
}

func NewPriceService(tracer trace.Tracer, provider PriceProvider, redisClient RedisClient) *PriceService {
	return &PriceService{
		tracer:   tracer,
		provider: provider,
		redis:    redisClient,
	}
}

// Snapshot fetches a fresh snapshot for one polling cycle and refreshes the
// cache. The returned snapshot is complete or the call errors; the caller
// decides how to degrade.
func (s *PriceService) Snapshot(ctx context.Context) (*domain.PriceSnapshot, error) {
	_, span := s.tracer.Start(ctx, "price-service.snapshot")
	defer span.End()

	snap, err := s.provider.FetchPrices(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		for symbol, quote := range snap.Quotes {
			if err := s.setQuoteCache(ctx, symbol, quote); err != nil {
				log.Printf("redis cache write error for %s: %v", symbol, err)
			}
		}
	}

	return snap, nil
}

// CachedSnapshot serves reads outside the polling cycle: cached quotes are
// used when fresh enough, with a single live fetch filling any gaps. Partial
// results are returned even when the live fetch fails.
func (s *PriceService) CachedSnapshot(ctx context.Context) *domain.PriceSnapshot {
	_, span := s.tracer.Start(ctx, "price-service.cached-snapshot")
	defer span.End()

	snap := &domain.PriceSnapshot{
		Quotes:    make(map[string]domain.PriceQuote, len(domain.SupportedSymbols)),
		FetchedAt: time.Now().UTC(),
	}

	missing := false
	for _, symbol := range domain.SupportedSymbols {
		if s.redis != nil {
			if quote, ok := s.getQuoteCache(ctx, symbol); ok {
				snap.Quotes[symbol] = quote
				continue
			}
		}
		missing = true
	}
	if !missing {
		return snap
	}

	fresh, err := s.Snapshot(ctx)
	if err != nil {
		log.Printf("live price fetch failed, serving partial snapshot: %v", err)
		return snap
	}
	return fresh
}

func (s *PriceService) setQuoteCache(ctx context.Context, symbol string, quote domain.PriceQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, "price:"+symbol, data, priceCacheTTL).Err()
}

func (s *PriceService) getQuoteCache(ctx context.Context, symbol string) (domain.PriceQuote, bool) {
	data, err := s.redis.Get(ctx, "price:"+symbol).Bytes()
	if err == redis.Nil {
		return domain.PriceQuote{}, false
	}
	if err != nil {
		log.Printf("redis cache read error: %v", err)
		return domain.PriceQuote{}, false
	}
	var quote domain.PriceQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return domain.PriceQuote{}, false
	}
	return quote, true
}
