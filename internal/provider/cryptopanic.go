package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crypto-watchtower/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const cryptoPanicBaseURL = "https://cryptopanic.com/api/v1"

// CryptoPanicProvider pulls aggregated news posts per asset from the
// CryptoPanic API. The provider is only constructed when an API token is
// configured; without one the source is disabled entirely.
type CryptoPanicProvider struct {
	client  *http.Client
	baseURL string
	token   string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewCryptoPanicProvider(tracer trace.Tracer, token string) *CryptoPanicProvider {
	return &CryptoPanicProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: cryptoPanicBaseURL,
		token:   token,
		tracer:  tracer,
		limiter: NewRateLimiter(2 * time.Second),
	}
}

// CryptoPanicPost is one aggregator item.
type CryptoPanicPost struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FetchPosts returns up to 10 recent posts for the given asset symbol.
func (p *CryptoPanicProvider) FetchPosts(ctx context.Context, symbol string) ([]CryptoPanicPost, error) {
	_, span := p.tracer.Start(ctx, "cryptopanic.fetch-posts")
	defer span.End()

	slug, ok := domain.CryptoPanicSlug[symbol]
	if !ok {
		return nil, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := fmt.Sprintf("%s/posts/?auth_token=%s&currencies=%s&public=true",
		p.baseURL, url.QueryEscape(p.token), slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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
		return nil, fmt.Errorf("cryptopanic API error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Results []CryptoPanicPost `json:"results"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse cryptopanic response: %w", err)
	}

	if len(raw.Results) > 10 {
		raw.Results = raw.Results[:10]
	}
	for i := range raw.Results {
		raw.Results[i].Title = NormalizeWhitespace(raw.Results[i].Title)
	}
	return raw.Results, nil
}
