// Package pipeline wires the normalizers and the dedupe engine into the
// batch contract the rest of the system consumes: raw signals in,
// canonical annotated signals out.
package pipeline

import (
	"time"

	"finsignals/internal/dedupe"
	"finsignals/internal/signal"
	"finsignals/internal/textnorm"
	"finsignals/internal/ticker"
)

// Engine processes one batch synchronously. It holds only immutable
// configuration (the ticker whitelist and the dedupe window); every call
// is a pure function of its input, so engines are safe to share and to
// instantiate per market segment.
type Engine struct {
	tickers *ticker.Normalizer
	window  time.Duration
}

// New builds an Engine. A zero window disables temporal filtering and
// leaves only exact dedupe.
func New(tickers *ticker.Normalizer, window time.Duration) *Engine {
	return &Engine{tickers: tickers, window: window}
}

// Result carries the canonical batch plus the counts callers feed into
// metrics.
type Result struct {
	Signals           []signal.Signal
	DuplicatesDropped int
	TemporalCollapsed int
}

// Normalize annotates each signal in place on a copy of the batch:
// source domain, detected language, normalized title and recognized
// tickers. Input order is preserved and no signal is dropped.
func (e *Engine) Normalize(items []signal.Signal) []signal.Signal {
	out := make([]signal.Signal, len(items))
	copy(out, items)
	for i := range out {
		s := &out[i]
		if s.SourceDomain == "" {
			s.SourceDomain = textnorm.ExtractDomain(s.URL)
		}
		s.Lang = textnorm.DetectLanguage(s.Title)
		s.NormalizedTitle = textnorm.NormalizeTitle(s.Title)
		s.Tickers = e.tickers.Split(s.RawTickers)
	}
	return out
}

// Process runs the full reduction: annotate, then collapse duplicates.
// Both dedupe modes key on the same normalized-title+domain identity, so
// exact dedupe would starve the temporal filter; when a window is
// configured the window rules alone, otherwise strict one-per-key
// applies. Survivors keep input order.
func (e *Engine) Process(items []signal.Signal) Result {
	annotated := e.Normalize(items)

	if e.window > 0 {
		final := dedupe.FilterTemporal(annotated, e.window)
		return Result{
			Signals:           final,
			TemporalCollapsed: len(annotated) - len(final),
		}
	}

	final := dedupe.Articles(annotated)
	return Result{
		Signals:           final,
		DuplicatesDropped: len(annotated) - len(final),
	}
}
