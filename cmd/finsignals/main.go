package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"finsignals/internal/analyze"
	"finsignals/internal/app"
	"finsignals/internal/cache"
	"finsignals/internal/config"
	"finsignals/internal/logger"
	"finsignals/internal/metrics"
	"finsignals/internal/pipeline"
	"finsignals/internal/ratelimit"
	"finsignals/internal/retry"
	"finsignals/internal/rss"
	"finsignals/internal/scraper"
	"finsignals/internal/server"
	"finsignals/internal/storage"
	"finsignals/internal/telegram"
	"finsignals/internal/ticker"
)

func main() {
	var (
		sectorsFlag = flag.String("sectors", "", "comma-separated sector list (default: configured defaults)")
		interval    = flag.Duration("interval", 0, "rerun the pipeline on this interval (0 = run once)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Init(false).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.Init(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feeds, err := rss.LoadConfig(cfg.FeedsPath)
	if err != nil {
		log.Error("failed to load feeds config", "path", cfg.FeedsPath, "error", err)
		os.Exit(1)
	}
	tickerCfg, err := ticker.LoadConfig(cfg.TickersPath)
	if err != nil {
		log.Error("failed to load ticker whitelist", "path", cfg.TickersPath, "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	retryCfg := retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}
	normalizer := ticker.New(tickerCfg)
	engine := pipeline.New(normalizer, cfg.DedupeWindow)
	fetcher := rss.NewFetcher(cfg.RequestTimeout, retryCfg)
	sc := scraper.New(cfg.RequestTimeout, cfg.ScrapeConcurrency, cfg.ScrapeMaxArticles)
	m := metrics.New()

	var providers []analyze.Provider
	if cfg.OpenAIKey != "" {
		providers = append(providers, analyze.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel))
	}
	if cfg.DeepSeekKey != "" {
		providers = append(providers, analyze.NewDeepSeek(cfg.DeepSeekKey, cfg.DeepSeekModel))
	}
	if cfg.GeminiKey != "" {
		gp, err := analyze.NewGemini(ctx, cfg.GeminiKey)
		if err != nil {
			log.Error("failed to init Gemini provider", "error", err)
		} else {
			defer gp.Close()
			providers = append(providers, gp)
		}
	}
	analyzer := analyze.New(providers, cache.New(cfg.CacheTTL), ratelimit.New(cfg.MaxAnalyses), normalizer, log)
	if len(providers) == 0 {
		log.Warn("no analysis providers configured, signals will be stored unscored")
	}

	var digest *telegram.Client
	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		digest = telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID, retryCfg, log)
	}

	if cfg.HTTPAddr != "" {
		srv := server.New(store, m)
		go func() {
			log.Info("http server listening", "addr", cfg.HTTPAddr)
			if err := http.ListenAndServe(cfg.HTTPAddr, srv.Router()); err != nil {
				log.Error("http server stopped", "error", err)
			}
		}()
	}

	var sectors []string
	if *sectorsFlag != "" {
		for _, s := range strings.Split(*sectorsFlag, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sectors = append(sectors, strings.ToUpper(s))
			}
		}
	}

	a := app.New(cfg, log, feeds, fetcher, engine, sc, analyzer, store, digest, m)

	if err := a.Run(ctx, sectors); err != nil {
		log.Error("pipeline run failed", "error", err)
		if *interval == 0 {
			os.Exit(1)
		}
	}
	if *interval == 0 {
		return
	}

	t := time.NewTicker(*interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-t.C:
			if err := a.Run(ctx, sectors); err != nil {
				log.Error("pipeline run failed", "error", err)
			}
		}
	}
}
