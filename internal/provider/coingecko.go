package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crypto-watchtower/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoProvider fetches spot prices for the tracked asset set from the
// CoinGecko free API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// NewCoinGeckoProvider creates a provider with built-in rate limiting to stay
// inside the free-tier request budget.
func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(2 * time.Second),
	}
}

// FetchPrices fetches USD and EUR quotes for all tracked assets in a single
// API call. Assets missing from the response are simply absent from the
// snapshot; callers render them as unavailable.
func (p *CoinGeckoProvider) FetchPrices(ctx context.Context) (*domain.PriceSnapshot, error) {
	_, span := p.tracer.Start(ctx, "coingecko.fetch-prices")
	defer span.End()

	ids := make([]string, 0, len(domain.SupportedSymbols))
	for _, symbol := range domain.SupportedSymbols {
		ids = append(ids, domain.CoinGeckoID[symbol])
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd,eur",
		p.baseURL, strings.Join(ids, ","))

	body, err := p.doRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	// Response shape: {"bitcoin": {"usd": 97000, "eur": 89000}, ...}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse prices: %w", err)
	}

	snap := &domain.PriceSnapshot{
		Quotes:    make(map[string]domain.PriceQuote, len(raw)),
		FetchedAt: time.Now().UTC(),
	}
	for cgID, data := range raw {
		symbol, ok := domain.CoinGeckoIDToSymbol[cgID]
		if !ok {
			continue
		}
		var quote domain.PriceQuote
		if usd, ok := data["usd"]; ok {
			v := usd
			quote.USD = &v
		}
		if eur, ok := data["eur"]; ok {
			v := eur
			quote.EUR = &v
		}
		snap.Quotes[symbol] = quote
	}

	return snap, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
