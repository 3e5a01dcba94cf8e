package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func noopTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

func TestCoinGeckoFetchPrices(t *testing.T) {
	p := NewCoinGeckoProvider(noopTracer())
	p.limiter = NewRateLimiter(time.Nanosecond)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !strings.Contains(req.URL.RawQuery, "vs_currencies=usd,eur") {
			t.Fatalf("expected usd,eur request, got %s", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, `{
			"bitcoin": {"usd": 97000.5, "eur": 89000.25},
			"cardano": {"usd": 0.92},
			"unrelated-coin": {"usd": 1}
		}`), nil
	})}

	snap, err := p.FetchPrices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	btc, ok := snap.Quote("BTC")
	if !ok || btc.USD == nil || *btc.USD != 97000.5 {
		t.Fatalf("unexpected BTC quote: %+v", btc)
	}
	if btc.EUR == nil || *btc.EUR != 89000.25 {
		t.Fatalf("expected BTC EUR quote, got %+v", btc)
	}

	// Absent currency stays nil rather than zero.
	ada, ok := snap.Quote("ADA")
	if !ok || ada.USD == nil || ada.EUR != nil {
		t.Fatalf("unexpected ADA quote: %+v", ada)
	}

	// Unknown ids and missing assets are tolerated.
	if _, ok := snap.Quote("ETH"); ok {
		t.Fatalf("ETH should be absent from this snapshot")
	}
	if snap.FetchedAt.IsZero() {
		t.Fatalf("snapshot timestamp not set")
	}
}

func TestCoinGeckoFetchPricesHTTPError(t *testing.T) {
	p := NewCoinGeckoProvider(noopTracer())
	p.limiter = NewRateLimiter(time.Nanosecond)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"status":{"error_code":429}}`), nil
	})}

	if _, err := p.FetchPrices(context.Background()); err == nil {
		t.Fatalf("expected error on 429")
	}
}

func TestCoinGeckoFetchPricesBadPayload(t *testing.T) {
	p := NewCoinGeckoProvider(noopTracer())
	p.limiter = NewRateLimiter(time.Nanosecond)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not json`), nil
	})}

	if _, err := p.FetchPrices(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}
