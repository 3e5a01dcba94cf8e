package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	TelegramBotToken string
	ChatID           int64
	CryptoPanicToken string
	PollSeconds      int

	RedisURL    string
	DatabaseURL string
	HTTPAddr    string
	APIKey      string

	StateDir        string
	SeenItemsFile   string
	SeenTargetsFile string
	PredictionsFile string
	OffsetFile      string
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		CryptoPanicToken: strings.TrimSpace(os.Getenv("CRYPTOPANIC_TOKEN")),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.CryptoPanicToken == "" {
		log.Println("CRYPTOPANIC_TOKEN not set, aggregator source disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	if v := strings.TrimSpace(os.Getenv("CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ChatID = n
		} else {
			log.Printf("Warning: invalid CHAT_ID %q, broadcast disabled", v)
		}
	}

	cfg.PollSeconds = 300
	if v := strings.TrimSpace(os.Getenv("POLL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollSeconds = n
		}
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.StateDir = strings.TrimSpace(os.Getenv("STATE_DIR"))
	if cfg.StateDir == "" {
		cfg.StateDir = "."
	}
	cfg.SeenItemsFile = filepath.Join(cfg.StateDir, "seen_items.json")
	cfg.SeenTargetsFile = filepath.Join(cfg.StateDir, "seen_targets.json")
	cfg.PredictionsFile = filepath.Join(cfg.StateDir, "predictions.json")
	cfg.OffsetFile = filepath.Join(cfg.StateDir, "last_update_id.json")

	return cfg
}
