package storage

import (
	"context"
	"testing"
	"time"

	"finsignals/internal/signal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSignal(id string, published time.Time) signal.Signal {
	return signal.Signal{
		ID:           id,
		Title:        "SEC approves spot bitcoin ETF",
		URL:          "https://www.coindesk.com/policy/etf",
		SourceDomain: "coindesk.com",
		Published:    published,
		Ingested:     time.Now().UTC(),
		Sector:       "CRYPTO",
		Label:        "regulatory",
		Region:       "US",
		Tickers:      []string{"BTC", "COIN"},
		Impact:       80,
		Confidence:   90,
		Sentiment:    1,
		TrustScore:   0.8,
	}
}

func TestSaveAndFetch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.SaveSignal(ctx, testSignal("sig1", now)); err != nil {
		t.Fatalf("SaveSignal: %v", err)
	}

	got, err := s.FetchSignals(ctx, Query{})
	if err != nil {
		t.Fatalf("FetchSignals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1", len(got))
	}
	sig := got[0]
	if sig.ID != "sig1" || sig.Label != "regulatory" || sig.Impact != 80 {
		t.Fatalf("unexpected signal: %+v", sig)
	}
	if !sig.Published.Equal(now) {
		t.Fatalf("published = %v, want %v", sig.Published, now)
	}
	if len(sig.Tickers) != 2 || sig.Tickers[0] != "BTC" {
		t.Fatalf("tickers = %v", sig.Tickers)
	}
}

func TestSaveUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sig := testSignal("sig1", time.Now().UTC())
	if err := s.SaveSignal(ctx, sig); err != nil {
		t.Fatalf("SaveSignal: %v", err)
	}
	sig.Impact = 95
	sig.Label = "policy"
	if err := s.SaveSignal(ctx, sig); err != nil {
		t.Fatalf("SaveSignal update: %v", err)
	}

	got, err := s.FetchSignals(ctx, Query{})
	if err != nil {
		t.Fatalf("FetchSignals: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d signals, want 1 after upsert", len(got))
	}
	if got[0].Impact != 95 || got[0].Label != "policy" {
		t.Fatalf("upsert not applied: %+v", got[0])
	}
}

func TestFetchFilters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := testSignal("a", now)
	b := testSignal("b", now.Add(-time.Hour))
	b.Sector = "SEMIS"
	b.Tickers = []string{"NVDA"}
	b.Impact = 30
	for _, sig := range []signal.Signal{a, b} {
		if err := s.SaveSignal(ctx, sig); err != nil {
			t.Fatalf("SaveSignal: %v", err)
		}
	}

	got, err := s.FetchSignals(ctx, Query{Sector: "crypto"})
	if err != nil {
		t.Fatalf("FetchSignals sector: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("sector filter: %+v", got)
	}

	got, err = s.FetchSignals(ctx, Query{MinImpact: 50})
	if err != nil {
		t.Fatalf("FetchSignals impact: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("impact filter: %+v", got)
	}

	got, err = s.FetchSignals(ctx, Query{Ticker: "nvda"})
	if err != nil {
		t.Fatalf("FetchSignals ticker: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("ticker filter: %+v", got)
	}
}

func TestCleanup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.SaveSignal(ctx, testSignal("fresh", now)); err != nil {
		t.Fatalf("SaveSignal: %v", err)
	}
	if err := s.SaveSignal(ctx, testSignal("stale", now.AddDate(0, 0, -10))); err != nil {
		t.Fatalf("SaveSignal: %v", err)
	}

	n, err := s.Cleanup(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if n != 1 {
		t.Fatalf("cleanup removed %d rows, want 1", n)
	}

	got, err := s.FetchSignals(ctx, Query{})
	if err != nil {
		t.Fatalf("FetchSignals: %v", err)
	}
	if len(got) != 1 || got[0].ID != "fresh" {
		t.Fatalf("remaining: %+v", got)
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := testSignal("a", now)
	b := testSignal("b", now)
	b.Sector = "SEMIS"
	for _, sig := range []signal.Signal{a, b} {
		if err := s.SaveSignal(ctx, sig); err != nil {
			t.Fatalf("SaveSignal: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["total"] != 2 {
		t.Fatalf("total = %v", stats["total"])
	}
	bySector, ok := stats["by_sector"].(map[string]int)
	if !ok || bySector["CRYPTO"] != 1 || bySector["SEMIS"] != 1 {
		t.Fatalf("by_sector = %v", stats["by_sector"])
	}
}
