// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Input files
	FeedsPath   string // YAML sector -> feed URLs
	TickersPath string // YAML ticker whitelist

	// Storage
	DatabasePath  string
	RetentionDays int

	// Pipeline
	DedupeWindow time.Duration // temporal duplicate window
	NewsMaxAge   time.Duration // ignore items older than this
	MaxSignals   int           // cap of signals analyzed per run

	// Scraper
	ScrapeConcurrency int
	ScrapeMaxArticles int

	// Analysis providers
	OpenAIKey     string
	OpenAIModel   string
	DeepSeekKey   string
	DeepSeekModel string
	GeminiKey     string
	MaxAnalyses   int // daily per-provider request budget (0 = unlimited)
	CacheTTL      time.Duration

	// Telegram digest
	TelegramToken  string
	TelegramChatID string
	DigestSize     int

	// HTTP API
	HTTPAddr string // empty disables the server

	// Networking
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		FeedsPath:         getEnv("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		TickersPath:       getEnv("TICKERS_CONFIG_PATH", "configs/tickers.yaml"),
		DatabasePath:      getEnv("DATABASE_PATH", "signals.db"),
		RetentionDays:     getEnvInt("RETENTION_DAYS", 30),
		DedupeWindow:      getEnvDuration("DEDUPE_WINDOW", time.Hour),
		NewsMaxAge:        getEnvDuration("NEWS_MAX_AGE", 24*time.Hour),
		MaxSignals:        getEnvInt("MAX_SIGNALS", 40),
		ScrapeConcurrency: getEnvInt("SCRAPE_CONCURRENCY", 8),
		ScrapeMaxArticles: getEnvInt("SCRAPE_MAX_ARTICLES", 10),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		DeepSeekKey:       os.Getenv("DEEPSEEK_API_KEY"),
		DeepSeekModel:     getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		GeminiKey:         os.Getenv("GEMINI_API_KEY"),
		MaxAnalyses:       getEnvInt("MAX_ANALYSES", 50),
		CacheTTL:          getEnvDuration("ANALYSIS_CACHE_TTL", 48*time.Hour),
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:    os.Getenv("TELEGRAM_CHAT_ID"),
		DigestSize:        getEnvInt("DIGEST_SIZE", 5),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RetryAttempts:     getEnvInt("RETRY_ATTEMPTS", 3),
		RetryDelay:        getEnvDuration("RETRY_DELAY", 5*time.Second),
		Debug:             os.Getenv("DEBUG") == "true",
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.FeedsPath == "" {
		return fmt.Errorf("FEEDS_CONFIG_PATH is required")
	}
	if c.TickersPath == "" {
		return fmt.Errorf("TICKERS_CONFIG_PATH is required")
	}
	if c.DedupeWindow < 0 {
		return fmt.Errorf("DEDUPE_WINDOW must not be negative")
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("RETENTION_DAYS must be positive")
	}
	if c.ScrapeConcurrency <= 0 {
		return fmt.Errorf("SCRAPE_CONCURRENCY must be positive")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == "") {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
