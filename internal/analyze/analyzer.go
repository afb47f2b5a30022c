package analyze

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"finsignals/internal/cache"
	"finsignals/internal/ratelimit"
	"finsignals/internal/signal"
	"finsignals/internal/ticker"
)

// ErrNoVerdict means every provider was skipped or failed.
var ErrNoVerdict = errors.New("no provider produced a verdict")

// Analyzer fans one article out to all configured providers, merges the
// answers and applies the consensus to the signal. Verdicts are cached by
// content so reruns over the same feed window do not burn API budget.
type Analyzer struct {
	providers []Provider
	cache     *cache.Cache
	limiter   *ratelimit.Limiter
	tickers   *ticker.Normalizer
	log       *slog.Logger
}

func New(providers []Provider, c *cache.Cache, l *ratelimit.Limiter, tn *ticker.Normalizer, log *slog.Logger) *Analyzer {
	return &Analyzer{providers: providers, cache: c, limiter: l, tickers: tn, log: log}
}

// Enabled reports whether at least one provider is configured.
func (a *Analyzer) Enabled() bool { return len(a.providers) > 0 }

// Analyze scores one article. The second return value reports a cache hit.
func (a *Analyzer) Analyze(ctx context.Context, sig signal.Signal, content string) (Result, bool, error) {
	key := cache.ContentKey(sig.Title, content)
	if v, ok := a.cache.Get(key); ok {
		if r, ok := v.(Result); ok {
			return r, true, nil
		}
	}

	text := "[" + sig.Sector + "] " + sig.Title
	if content != "" {
		text += "\n" + content
	} else {
		text += "\n" + sig.URL
	}

	var (
		mu      sync.Mutex
		results []Result
		wg      sync.WaitGroup
	)
	for _, p := range a.providers {
		if !a.limiter.Allow(p.Name()) {
			a.log.Warn("analysis budget exhausted", "provider", p.Name(), "used", a.limiter.Used(p.Name()))
			continue
		}
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			r, err := p.Analyze(ctx, text)
			if err != nil {
				a.log.Error("provider analysis failed", "provider", p.Name(), "error", err)
				return
			}
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if len(results) == 0 {
		return Result{}, false, ErrNoVerdict
	}
	c := Consensus(results)
	// Provider ticker lists are free-form; run them through the whitelist.
	if a.tickers != nil {
		c.Tickers = a.tickers.Split(strings.Join(c.Tickers, ", "))
	}
	a.cache.Set(key, c)
	return c, false, nil
}

// Apply copies a consensus verdict onto the signal.
func Apply(sig *signal.Signal, r Result) {
	sig.TitleRU = r.TitleRU
	sig.Summary = r.Summary
	sig.Label = r.Label
	sig.Impact = r.Impact
	sig.Confidence = r.Confidence
	sig.Sentiment = r.Sentiment
	sig.Region = r.Region
	sig.What = r.What
	sig.WhyMatters = r.WhyMatters
	sig.ActionWindow = r.ActionWindow
	sig.Analysis = r.Analysis
	if len(r.Tickers) > 0 {
		sig.Tickers = r.Tickers
	}
}
