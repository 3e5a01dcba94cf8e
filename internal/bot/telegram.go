package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"crypto-watchtower/internal/domain"
	"crypto-watchtower/internal/service"

	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

// PriceReader serves the cached snapshot for on-demand reads.
type PriceReader interface {
	CachedSnapshot(ctx context.Context) *domain.PriceSnapshot
}

// LevelReader exposes the configured threshold table.
type LevelReader interface {
	Levels() map[string]domain.LevelConfig
}

// NewsReader renders the on-demand headline digest.
type NewsReader interface {
	LatestNews(ctx context.Context, assetFilter string) string
}

// Offsets persists the Telegram update offset across restarts.
type Offsets interface {
	Get() (int, bool)
	Put(offset int) error
}

// Bot is the command side of the Telegram integration: read-only queries
// over the same data the monitor writes. Alerts go out through the notify
// package, which shares the underlying tele.Bot.
type Bot struct {
	bot     *tele.Bot
	tracer  trace.Tracer
	prices  PriceReader
	levels  LevelReader
	news    NewsReader
	offsets Offsets
}

// New creates the Telegram bot with its long poller seeded from the stored
// update offset, so commands handled before a restart are not replayed.
// Handlers are attached later via Register; the notifier borrows the client
// through Telebot in between.
func New(token string, tracer trace.Tracer, offsets Offsets) (*Bot, error) {
	poller := &tele.LongPoller{Timeout: 25 * time.Second}
	if offset, ok := offsets.Get(); ok {
		poller.LastUpdateID = offset - 1
	}

	b, err := tele.NewBot(tele.Settings{
		Token:     token,
		Poller:    poller,
		ParseMode: tele.ModeHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Bot{bot: b, tracer: tracer, offsets: offsets}, nil
}

// Telebot returns the underlying client so the notifier can share it.
func (tb *Bot) Telebot() *tele.Bot {
	return tb.bot
}

// Start runs the long-poll loop. Blocks until Stop is called.
func (tb *Bot) Start() {
	log.Println("Telegram bot started")
	tb.bot.Start()
}

func (tb *Bot) Stop() {
	tb.bot.Stop()
}

// Register wires the command handlers once the read-side services exist.
func (tb *Bot) Register(prices PriceReader, levels LevelReader, news NewsReader) {
	tb.prices = prices
	tb.levels = levels
	tb.news = news

	tb.bot.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			err := next(c)
			bumpOffset(tb.offsets, c.Update().ID)
			return err
		}
	})

	tb.bot.Handle("/start", func(c tele.Context) error {
		return c.Send(greeting())
	})

	tb.bot.Handle("/status", func(c tele.Context) error {
		ctx, span := tb.tracer.Start(context.Background(), "bot.status")
		defer span.End()
		return c.Send(tb.statusText(ctx))
	})

	tb.bot.Handle("/levels", func(c tele.Context) error {
		_, span := tb.tracer.Start(context.Background(), "bot.levels")
		defer span.End()
		return c.Send(tb.levelsText())
	})

	tb.bot.Handle("/news", func(c tele.Context) error {
		ctx, span := tb.tracer.Start(context.Background(), "bot.news")
		defer span.End()

		asset := ""
		if args := c.Args(); len(args) > 0 {
			symbol, ok := validateAsset(args[0])
			if !ok {
				return c.Send(newsUsage())
			}
			asset = symbol
		}
		return c.Send(tb.news.LatestNews(ctx, asset))
	})

	tb.bot.Handle(tele.OnText, func(c tele.Context) error {
		return c.Send(greeting())
	})
}

// bumpOffset records the next update to fetch. A zero id means there is no
// update attached, nothing to record.
func bumpOffset(offsets Offsets, updateID int) {
	if updateID == 0 {
		return
	}
	if err := offsets.Put(updateID + 1); err != nil {
		log.Printf("offset persist error: %v", err)
	}
}

func validateAsset(arg string) (string, bool) {
	symbol := strings.ToUpper(arg)
	for _, s := range domain.SupportedSymbols {
		if s == symbol {
			return symbol, true
		}
	}
	return "", false
}

func greeting() string {
	return "👋 Crypto monitor.\n" +
		"/status — current prices\n" +
		"/levels — configured alert levels\n" +
		"/news [ASSET] — latest headlines"
}

func newsUsage() string {
	return fmt.Sprintf("Usage: /news [ASSET]\nSupported: %s", strings.Join(domain.SupportedSymbols, ", "))
}

func (tb *Bot) statusText(ctx context.Context) string {
	snap := tb.prices.CachedSnapshot(ctx)

	lines := []string{"📊 <b>Prices</b> — " + service.Timestamp(time.Now())}
	for _, symbol := range domain.SupportedSymbols {
		quote, ok := snap.Quote(symbol)
		if !ok || (quote.USD == nil && quote.EUR == nil) {
			lines = append(lines, fmt.Sprintf("• %s: n/a", symbol))
			continue
		}
		switch {
		case quote.EUR != nil && quote.USD != nil:
			lines = append(lines, fmt.Sprintf("• %s: %.2f € / $%.2f", symbol, *quote.EUR, *quote.USD))
		case quote.USD != nil:
			lines = append(lines, fmt.Sprintf("• %s: $%.2f", symbol, *quote.USD))
		default:
			lines = append(lines, fmt.Sprintf("• %s: %.2f €", symbol, *quote.EUR))
		}
	}
	return strings.Join(lines, "\n")
}

func (tb *Bot) levelsText() string {
	levels := tb.levels.Levels()

	lines := []string{"⚙️ <b>Alert levels</b>"}
	for _, symbol := range domain.SupportedSymbols {
		cfg, ok := levels[symbol]
		if !ok {
			continue
		}
		var families []string
		appendFamily := func(name string, vals []float64) {
			if len(vals) == 0 {
				return
			}
			parts := make([]string, len(vals))
			for i, v := range vals {
				parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
			}
			families = append(families, fmt.Sprintf("%s: [%s]", name, strings.Join(parts, ", ")))
		}
		appendFamily("warn_up", cfg.WarnUp)
		appendFamily("break_even", cfg.BreakEven)
		appendFamily("danger_down", cfg.DangerDown)
		appendFamily("buy_zone", cfg.BuyZone)
		appendFamily("tp_zone", cfg.TPZone)
		if len(families) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s: %s", symbol, strings.Join(families, " | ")))
	}
	if len(lines) == 1 {
		lines = append(lines, "No levels configured.")
	}
	return strings.Join(lines, "\n")
}
