package domain

import (
	"fmt"
	"time"
)

// SupportedSymbols lists the tracked assets in detection priority order.
var SupportedSymbols = []string{"BTC", "ADA", "ETH", "SOL", "LINK", "AVAX"}

// CoinGeckoID maps internal symbols to CoinGecko API identifiers.
var CoinGeckoID = map[string]string{
	"BTC":  "bitcoin",
	"ADA":  "cardano",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"LINK": "chainlink",
	"AVAX": "avalanche-2",
}

// CoinGeckoIDToSymbol is the reverse mapping.
var CoinGeckoIDToSymbol = func() map[string]string {
	m := make(map[string]string, len(CoinGeckoID))
	for symbol, id := range CoinGeckoID {
		m[id] = symbol
	}
	return m
}()

// CryptoPanicSlug maps symbols to CryptoPanic currency slugs.
var CryptoPanicSlug = map[string]string{
	"BTC":  "bitcoin",
	"ADA":  "cardano",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"LINK": "chainlink",
	"AVAX": "avalanche",
}

// PriceQuote holds the current price of one asset. Either currency may be
// absent when the upstream source did not return it.
type PriceQuote struct {
	USD *float64 `json:"usd,omitempty"`
	EUR *float64 `json:"eur,omitempty"`
}

// PriceSnapshot is the full set of quotes fetched in one polling cycle.
// It is replaced wholesale every cycle, never merged with stale data.
type PriceSnapshot struct {
	Quotes    map[string]PriceQuote `json:"quotes"`
	FetchedAt time.Time             `json:"fetched_at"`
}

// Quote returns the quote for a symbol, with ok=false for unknown assets.
func (s *PriceSnapshot) Quote(symbol string) (PriceQuote, bool) {
	if s == nil || s.Quotes == nil {
		return PriceQuote{}, false
	}
	q, ok := s.Quotes[symbol]
	return q, ok
}

// SourceGroup is a named bundle of content feeds. Asset is empty for generic
// groups (global news, exchanges, regulators) whose items need asset detection.
type SourceGroup struct {
	Name  string
	Asset string
	Feeds []string
}

// Generic reports whether items from this group must be resolved to an asset
// by scanning their text.
func (g SourceGroup) Generic() bool {
	return g.Asset == ""
}

// NewsItem is one raw entry pulled from a feed.
type NewsItem struct {
	Group      string
	ExternalID string
	Title      string
	Link       string
	Summary    string
}

// DedupKey returns the stable identity of the item within its group, or ""
// when the item carries no usable identifier and must be discarded.
func (n NewsItem) DedupKey() string {
	if n.ExternalID == "" {
		return ""
	}
	return n.Group + ":" + n.ExternalID
}

// PredictionTarget is one user-supplied price prediction. Targets are static
// configuration; the monitor only tracks progress against them.
type PredictionTarget struct {
	Asset    string  `json:"-"`
	Index    int     `json:"-"`
	Target   float64 `json:"target"`
	Currency string  `json:"currency"`
	Source   string  `json:"source"`
	Note     string  `json:"note"`
}

// Key returns the composite identity used for progress state.
func (p PredictionTarget) Key() string {
	ccy := p.Currency
	if ccy == "" {
		ccy = "USD"
	}
	return fmt.Sprintf("%s:%d:%v:%s", p.Asset, p.Index, p.Target, ccy)
}

// TargetState tracks progress against one prediction target. Both flags are
// monotonic: once set they are never cleared.
type TargetState struct {
	Reached    bool `json:"reached"`
	Approached bool `json:"approached"`
}

// LevelConfig holds the static alert thresholds for one asset. All families
// are evaluated against the USD price. TPZone is informational only and is
// listed by /levels without triggering alerts.
type LevelConfig struct {
	WarnUp     []float64 `json:"warn_up,omitempty"`
	BreakEven  []float64 `json:"break_even,omitempty"`
	DangerDown []float64 `json:"danger_down,omitempty"`
	BuyZone    []float64 `json:"buy_zone,omitempty"`
	TPZone     []float64 `json:"tp_zone,omitempty"`
}

// Alert kinds as stored in the archive.
const (
	AlertKindStartup       = "startup"
	AlertKindNews          = "news"
	AlertKindTargetReached = "target_reached"
	AlertKindTargetNear    = "target_near"
	AlertKindLevel         = "level"
)

// Alert is one emitted notification, as recorded in the optional archive.
type Alert struct {
	ID        int64     `json:"id,omitempty"`
	Kind      string    `json:"kind"`
	Asset     string    `json:"asset,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
