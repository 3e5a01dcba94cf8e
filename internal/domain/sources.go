package domain

// Generic group names. Items from these groups carry no implied asset.
const (
	GroupGlobal     = "_global"
	GroupExchanges  = "exchanges"
	GroupRegulators = "regulators"
)

// DefaultSourceGroups is the built-in feed list: one group per tracked asset
// plus the generic global/exchange/regulator groups.
var DefaultSourceGroups = []SourceGroup{
	{Name: "BTC", Asset: "BTC", Feeds: []string{
		"https://www.coindesk.com/arc/outboundfeeds/rss/?outputType=xml&section=markets",
		"https://news.bitcoin.com/feed/",
		"https://mempool.space/blog/index.xml",
		"https://bitcoin.org/en/rss/announcements.rss",
	}},
	{Name: "ADA", Asset: "ADA", Feeds: []string{
		"https://www.essentialcardano.io/rss.xml",
		"https://iohk.io/en/blog.rss",
	}},
	{Name: "ETH", Asset: "ETH", Feeds: []string{
		"https://blog.ethereum.org/en/rss",
	}},
	{Name: "SOL", Asset: "SOL", Feeds: []string{
		"https://solana.com/news/rss.xml",
		"https://status.solana.com/history.rss",
	}},
	{Name: "LINK", Asset: "LINK", Feeds: []string{
		"https://blog.chain.link/feed/",
	}},
	{Name: "AVAX", Asset: "AVAX", Feeds: []string{
		"https://medium.com/feed/avalancheavax",
	}},
	{Name: GroupGlobal, Feeds: []string{
		"https://cointelegraph.com/rss",
		"https://www.coindesk.com/arc/outboundfeeds/rss/?outputType=xml",
	}},
	{Name: GroupExchanges, Feeds: []string{
		"https://blog.kraken.com/feed",
		"https://blog.coinbase.com/feed",
		"https://www.binance.com/en/blog?rss=en",
	}},
	{Name: GroupRegulators, Feeds: []string{
		"https://www.sec.gov/news/pressreleases.rss",
		"https://www.cftc.gov/PressRoom/PressReleases/rss.xml",
	}},
}

// DefaultLevels is the built-in per-asset threshold table.
var DefaultLevels = map[string]LevelConfig{
	"BTC": {
		WarnUp:     []float64{113000, 114000},
		BreakEven:  []float64{118000},
		DangerDown: []float64{116000, 103000},
	},
	"ADA": {
		WarnUp:     []float64{0.95},
		BreakEven:  []float64{0.92},
		DangerDown: []float64{0.83, 0.79},
	},
	"LINK": {
		BuyZone:    []float64{20.00, 20.50},
		DangerDown: []float64{19.50},
		TPZone:     []float64{24.00, 24.50},
	},
	"AVAX": {
		BuyZone:    []float64{23.00, 23.00},
		DangerDown: []float64{22.00, 21.00},
		TPZone:     []float64{26.00, 31.00},
	},
}
