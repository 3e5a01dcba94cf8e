package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-watchtower/internal/bot"
	"crypto-watchtower/internal/cache"
	"crypto-watchtower/internal/config"
	"crypto-watchtower/internal/db"
	"crypto-watchtower/internal/domain"
	"crypto-watchtower/internal/handler"
	"crypto-watchtower/internal/job"
	"crypto-watchtower/internal/notify"
	"crypto-watchtower/internal/provider"
	"crypto-watchtower/internal/repository"
	"crypto-watchtower/internal/service"
	"crypto-watchtower/internal/store"
	"crypto-watchtower/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

// telegramBot is the surface main needs from the bot package.
type telegramBot interface {
	Telebot() *tele.Bot
	Register(prices bot.PriceReader, levels bot.LevelReader, news bot.NewsReader)
	Start()
	Stop()
}

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initTracerFunc   = tracing.InitTracer
	initRedisFunc    = cache.InitRedis
	initPostgresFunc = db.InitPostgres
	newBotFunc       = func(token string, tracer trace.Tracer, offsets bot.Offsets) (telegramBot, error) {
		return bot.New(token, tracer, offsets)
	}
	startBotFunc = func(tb telegramBot) { go tb.Start() }
	startJobFunc = func(j *job.MonitorJob, ctx context.Context) { go j.Start(ctx) }

	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()
	if cfg.TelegramBotToken == "" {
		log.Fatalf("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Optional infrastructure: the monitor runs without Redis or Postgres.
	var redisClient service.RedisClient
	if c := initRedisFunc(ctx, cfg.RedisURL); c != nil {
		redisClient = c
	}
	initPostgresFunc(ctx, cfg.DatabaseURL)

	var alertRepo *repository.AlertRepository
	if db.Pool != nil {
		alertRepo = repository.NewAlertRepository(db.Pool, tracer)
		if err := alertRepo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// File-backed state survives restarts; each file has a single owner.
	seen := store.NewSeenStore(cfg.SeenItemsFile)
	targetStates := store.NewTargetStateStore(cfg.SeenTargetsFile)
	offsets := store.NewOffsetStore(cfg.OffsetFile)
	predictions := store.LoadPredictions(cfg.PredictionsFile)

	tb, err := newBotFunc(cfg.TelegramBotToken, tracer, offsets)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	var archiver notify.Archiver
	if alertRepo != nil {
		archiver = alertRepo
	}
	dispatcher := notify.NewDispatcher(tb.Telebot(), cfg.ChatID, archiver)

	coinGecko := provider.NewCoinGeckoProvider(tracer)
	rss := provider.NewRSSProvider(tracer)
	var aggregator service.AggregatorReader
	if cfg.CryptoPanicToken != "" {
		aggregator = provider.NewCryptoPanicProvider(tracer, cfg.CryptoPanicToken)
	}

	priceService := service.NewPriceService(tracer, coinGecko, redisClient)
	levelService := service.NewLevelService(tracer, domain.DefaultLevels, dispatcher)
	targetService := service.NewTargetService(tracer, predictions, targetStates, dispatcher)
	newsService := service.NewNewsService(tracer, rss, aggregator, seen, dispatcher, domain.DefaultSourceGroups)

	tb.Register(priceService, levelService, newsService)

	monitor := job.NewMonitorJob(tracer, priceService, newsService, targetService, levelService,
		dispatcher, []job.Flusher{seen, targetStates}, cfg.PollSeconds)
	startJobFunc(monitor, ctx)
	startBotFunc(tb)

	var alertLister handler.AlertLister
	if alertRepo != nil {
		alertLister = alertRepo
	}
	h := handler.New(tracer, priceService, levelService, targetService, targetStates, alertLister)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-watchtower"))
	h.RegisterRoutes(r, cfg.APIKey)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down...")

	cancel()
	tb.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
