package classify

import "strings"

// Verdict is the suggested action for a news item.
type Verdict struct {
	Action    string
	Rationale string
}

type rule struct {
	keywords []string
	verdict  Verdict
}

// Ordered rule table, first match wins. The sell rule comes first so that an
// item mentioning both a security incident and a bullish catalyst still
// classifies as a sell signal.
var rules = []rule{
	{
		keywords: []string{
			"hack", "exploit", "security breach", "breach", "lawsuit",
			"ban", "delist", "delisting", "halted withdrawals",
		},
		verdict: Verdict{
			Action:    "Take profits / Reduce",
			Rationale: "Negative signal (security/regulation).",
		},
	},
	{
		keywords: []string{
			"etf", "listing", "listed", "partnership", "integration",
			"upgrade", "hard fork", "mainnet", "testnet", "adoption",
			"institutional", "scalability", "roadmap", "regulation", "approval",
		},
		verdict: Verdict{
			Action:    "Buy more",
			Rationale: "Bullish catalyst (ETF/listing/upgrade/adoption).",
		},
	},
}

var defaultVerdict = Verdict{Action: "Hold", Rationale: "No clear catalyst."}

// Classify maps an item's title and summary to an action and rationale.
func Classify(title, summary string) Verdict {
	text := strings.ToLower(title + " " + summary)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.verdict
			}
		}
	}
	return defaultVerdict
}

type credibilityRule struct {
	hosts []string
	tier  string
}

var credibilityRules = []credibilityRule{
	{
		hosts: []string{
			"blog.ethereum.org", "iohk.io", "essentialcardano.io", "solana.com",
			"blog.chain.link", "avalancheavax", "mempool.space", "bitcoin.org",
		},
		tier: "High (official)",
	},
	{
		hosts: []string{"coindesk.com", "cointelegraph.com", "theblock.co", "reuters.com", "bloomberg.com"},
		tier:  "Medium-High (journalistic)",
	},
	{
		hosts: []string{"kraken.com", "coinbase.com", "binance.com"},
		tier:  "Medium-High (exchange)",
	},
	{
		hosts: []string{"sec.gov", "cftc.gov"},
		tier:  "High (regulator)",
	},
}

// Credibility returns the source trust tier for a link, "Medium" when the
// URL matches no known source.
func Credibility(url string) string {
	for _, r := range credibilityRules {
		for _, host := range r.hosts {
			if strings.Contains(url, host) {
				return r.tier
			}
		}
	}
	return "Medium"
}

// DetectAsset scans an item's text for asset mentions and returns the first
// match in the fixed priority order BTC, ADA, ETH, SOL, LINK, AVAX, or ""
// when no asset is mentioned.
func DetectAsset(title, summary string) string {
	t := strings.ToLower(title + " " + summary)
	switch {
	case strings.Contains(t, "bitcoin") || strings.Contains(t, "btc"):
		return "BTC"
	case strings.Contains(t, "cardano") || strings.Contains(t, "ada"):
		return "ADA"
	case strings.Contains(t, "ethereum") || strings.Contains(t, "eth"):
		return "ETH"
	// "sol" alone is too short to match as a bare substring; require the
	// full name or a word-delimited ticker.
	case strings.Contains(t, "solana") || strings.Contains(t, "sol ") || strings.HasSuffix(t, " sol"):
		return "SOL"
	case strings.Contains(t, "chainlink") || strings.Contains(t, "link"):
		return "LINK"
	case strings.Contains(t, "avalanche") || strings.Contains(t, "avax"):
		return "AVAX"
	}
	return ""
}
