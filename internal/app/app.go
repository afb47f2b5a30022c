// Package app runs one end-to-end pipeline pass: fetch, normalize,
// dedupe, score, analyze, persist, deliver.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"finsignals/internal/analyze"
	"finsignals/internal/config"
	"finsignals/internal/metrics"
	"finsignals/internal/pipeline"
	"finsignals/internal/rss"
	"finsignals/internal/score"
	"finsignals/internal/scraper"
	"finsignals/internal/signal"
	"finsignals/internal/storage"
	"finsignals/internal/telegram"
)

type App struct {
	cfg      *config.Config
	log      *slog.Logger
	feeds    rss.FeedsConfig
	fetcher  *rss.Fetcher
	engine   *pipeline.Engine
	scraper  *scraper.Scraper
	analyzer *analyze.Analyzer
	store    *storage.Store
	digest   *telegram.Client // nil when telegram is not configured
	metrics  *metrics.Metrics
}

func New(cfg *config.Config, log *slog.Logger, feeds rss.FeedsConfig, fetcher *rss.Fetcher,
	engine *pipeline.Engine, sc *scraper.Scraper, an *analyze.Analyzer,
	store *storage.Store, digest *telegram.Client, m *metrics.Metrics) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		feeds:    feeds,
		fetcher:  fetcher,
		engine:   engine,
		scraper:  sc,
		analyzer: an,
		store:    store,
		digest:   digest,
		metrics:  m,
	}
}

// Run executes one pipeline pass over the given sectors. An empty sector
// list means the configured defaults.
func (a *App) Run(ctx context.Context, sectors []string) error {
	start := time.Now()

	signals, err := a.ingest(ctx, sectors)
	if err != nil {
		a.metrics.RecordError(err)
		return err
	}
	if len(signals) == 0 {
		a.log.Info("no fresh signals this run")
		a.metrics.RecordRun(time.Since(start))
		return nil
	}

	signals = a.analyzeTop(ctx, signals)

	stored := 0
	for _, sig := range signals {
		if err := a.store.SaveSignal(ctx, sig); err != nil {
			a.log.Error("failed to store signal", "id", sig.ID, "error", err)
			continue
		}
		stored++
	}
	a.metrics.AddSignalsStored(stored)

	retention := time.Duration(a.cfg.RetentionDays) * 24 * time.Hour
	if n, err := a.store.Cleanup(ctx, retention); err != nil {
		a.log.Error("retention cleanup failed", "error", err)
	} else if n > 0 {
		a.log.Info("expired old signals", "removed", n)
	}

	a.sendDigest(ctx, signals)

	a.metrics.RecordRun(time.Since(start))
	a.log.Info("pipeline run complete",
		"stored", stored,
		"duration", time.Since(start).Round(time.Millisecond))
	return nil
}

// ingest fetches the feeds and reduces them to fresh, unique, trusted
// signals ordered by relevance.
func (a *App) ingest(ctx context.Context, sectors []string) ([]signal.Signal, error) {
	if len(sectors) == 0 {
		sectors = a.feeds.DefaultSectors
	}

	items := a.fetcher.FetchSectors(ctx, a.feeds, sectors)
	if len(items) == 0 {
		return nil, fmt.Errorf("no items fetched from %d sectors", len(sectors))
	}
	a.metrics.AddIngested(len(items))

	items = rss.FilterFresh(items, a.cfg.NewsMaxAge)
	items = a.engine.Normalize(items)

	recovered := 0
	for _, it := range items {
		if len(it.Tickers) > 0 {
			recovered++
		}
	}
	a.metrics.AddTickersRecovered(recovered)

	res := a.engine.Process(items)
	a.metrics.AddDuplicatesFiltered(res.DuplicatesDropped + res.TemporalCollapsed)

	var kept []signal.Signal
	for _, sig := range res.Signals {
		if score.IsTestSource(sig.SourceDomain) {
			continue
		}
		if score.Relevance(sig) == 0 {
			continue
		}
		sig.TrustScore = score.TrustScore(sig.SourceDomain)
		kept = append(kept, sig)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return score.Relevance(kept[i]) > score.Relevance(kept[j])
	})
	if a.cfg.MaxSignals > 0 && len(kept) > a.cfg.MaxSignals {
		kept = kept[:a.cfg.MaxSignals]
	}
	return kept, nil
}

// analyzeTop scrapes article bodies and runs LLM analysis over the batch.
func (a *App) analyzeTop(ctx context.Context, signals []signal.Signal) []signal.Signal {
	if a.analyzer == nil || !a.analyzer.Enabled() {
		return signals
	}

	urls := make([]string, 0, len(signals))
	for _, sig := range signals {
		if sig.URL != "" {
			urls = append(urls, sig.URL)
		}
	}
	articles := a.scraper.ExtractAll(urls)

	for i := range signals {
		content := ""
		if art, ok := articles[signals[i].URL]; ok && art != nil {
			content = art.Content
		}
		verdict, cached, err := a.analyzer.Analyze(ctx, signals[i], content)
		if err != nil {
			a.metrics.AddAnalysesFailed(1)
			a.log.Error("analysis failed", "id", signals[i].ID, "error", err)
			continue
		}
		if cached {
			a.metrics.AddCacheHits(1)
		} else {
			a.metrics.AddAnalysesCompleted(1)
		}
		analyze.Apply(&signals[i], verdict)
	}
	return signals
}

func (a *App) sendDigest(ctx context.Context, signals []signal.Signal) {
	if a.digest == nil {
		return
	}
	msg := telegram.FormatDigest(signals, a.cfg.DigestSize)
	if msg == "" {
		return
	}
	if err := a.digest.Send(ctx, msg); err != nil {
		a.log.Error("digest delivery failed", "error", err)
		return
	}
	a.metrics.AddDigestsSent(1)
}
