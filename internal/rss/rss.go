// Package rss loads the sector feed registry and fetches feed items.
package rss

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"finsignals/internal/retry"
	"finsignals/internal/signal"
)

// FeedsConfig maps sector names to their RSS feed URLs.
type FeedsConfig struct {
	Sectors        map[string][]string `yaml:"sectors"`
	DefaultSectors []string            `yaml:"default_sectors"`
}

// LoadConfig reads the sector feed registry from a YAML file.
func LoadConfig(path string) (FeedsConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return FeedsConfig{}, err
	}
	defer f.Close()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return FeedsConfig{}, fmt.Errorf("parse feeds config %s: %w", path, err)
	}
	if len(cfg.Sectors) == 0 {
		return FeedsConfig{}, fmt.Errorf("feeds config %s has no sectors", path)
	}
	if len(cfg.DefaultSectors) == 0 {
		for s := range cfg.Sectors {
			cfg.DefaultSectors = append(cfg.DefaultSectors, s)
		}
	}
	return cfg, nil
}

// Fetcher downloads and parses sector feeds.
type Fetcher struct {
	parser  *gofeed.Parser
	timeout time.Duration
	retry   retry.Config
}

func NewFetcher(timeout time.Duration, retryCfg retry.Config) *Fetcher {
	return &Fetcher{
		parser:  gofeed.NewParser(),
		timeout: timeout,
		retry:   retryCfg,
	}
}

// FetchSectors pulls every feed of the requested sectors and converts
// items to signals. A broken feed is logged and skipped; it never fails
// the run.
func (f *Fetcher) FetchSectors(ctx context.Context, cfg FeedsConfig, sectors []string) []signal.Signal {
	var out []signal.Signal
	okFeeds, total := 0, 0

	for _, sector := range sectors {
		urls, ok := cfg.Sectors[sector]
		if !ok {
			slog.Warn("unknown sector requested", "sector", sector)
			continue
		}
		for _, url := range urls {
			total++
			items, err := f.fetchOne(ctx, url)
			if err != nil {
				slog.Error("feed fetch failed", "url", url, "error", err)
				continue
			}
			okFeeds++
			slog.Debug("feed loaded", "url", url, "items", len(items))
			out = append(out, toSignals(items, sector)...)
		}
	}

	slog.Info("feeds fetched", "ok", okFeeds, "total", total, "items", len(out))
	return out
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) ([]*gofeed.Item, error) {
	var feed *gofeed.Feed
	err := retry.Do(ctx, f.retry, func() error {
		fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		var parseErr error
		feed, parseErr = f.parser.ParseURLWithContext(url, fetchCtx)
		return parseErr
	})
	if err != nil {
		return nil, err
	}
	return feed.Items, nil
}

func toSignals(items []*gofeed.Item, sector string) []signal.Signal {
	now := time.Now()
	out := make([]signal.Signal, 0, len(items))
	for _, item := range items {
		if item.Link == "" || item.Title == "" {
			continue
		}

		published := time.Time{}
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else {
			published = signal.ParseTimestamp(item.Published)
		}

		out = append(out, signal.Signal{
			ID:        signal.HashID(item.Link),
			Title:     item.Title,
			Summary:   item.Description,
			URL:       item.Link,
			Published: published,
			Ingested:  now,
			Sector:    sector,
		})
	}
	return out
}

// FilterFresh drops signals older than maxAge. Undated signals pass:
// the dedupe engine treats them as epoch and collapsing them here would
// discard every feed that omits timestamps.
func FilterFresh(items []signal.Signal, maxAge time.Duration) []signal.Signal {
	out := make([]signal.Signal, 0, len(items))
	cutoff := time.Now().Add(-maxAge)
	for _, it := range items {
		if it.Published.IsZero() || it.Published.After(cutoff) {
			out = append(out, it)
		}
	}
	return out
}
