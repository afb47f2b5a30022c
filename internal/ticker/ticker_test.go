package ticker

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// whitelist order matters for concatenated tokens, keep it explicit
var testWhitelist = []string{
	"BTC", "ETH", "MARA", "RIOT", "SOL", "ADA", "DOGE",
	"COIN", "MSTR", "AAPL", "TSLA", "NVDA", "SPY", "GLD",
}

func newTestNormalizer(t *testing.T, order Order) *Normalizer {
	t.Helper()
	return New(Config{Whitelist: testWhitelist, Order: order})
}

func TestNormalizeConcatenated(t *testing.T) {
	n := newTestNormalizer(t, OrderDeclared)
	// symbols surface in whitelist scan order, not position order
	if got := n.Normalize("MARARIOTBTC"); got != "BTC, MARA, RIOT" {
		t.Errorf("Normalize(MARARIOTBTC) = %q, want %q", got, "BTC, MARA, RIOT")
	}
}

func TestNormalizeFiltersUnknown(t *testing.T) {
	n := newTestNormalizer(t, OrderDeclared)
	if got := n.Normalize("BTC, UNKNOWN, ETH, FAKE"); got != "BTC, ETH" {
		t.Errorf("got %q, want %q", got, "BTC, ETH")
	}
}

func TestNormalizeDedupesFirstSeen(t *testing.T) {
	n := newTestNormalizer(t, OrderDeclared)
	if got := n.Normalize("BTC, ETH, BTC, MARA, ETH"); got != "BTC, ETH, MARA" {
		t.Errorf("got %q, want %q", got, "BTC, ETH, MARA")
	}
}

func TestNormalizeDelimiters(t *testing.T) {
	n := newTestNormalizer(t, OrderDeclared)
	tests := []struct {
		raw  string
		want string
	}{
		{"btc/eth|sol", "BTC, ETH, SOL"},
		{"  btc ,, eth  ", "BTC, ETH"},
		{"BTC\nETH\tSOL", "BTC, ETH, SOL"},
		{"", ""},
		{"   ", ""},
		{"FOO, BARBAZ", ""},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSplitShortTokensKeptVerbatim(t *testing.T) {
	n := newTestNormalizer(t, OrderDeclared)
	// 4 chars or fewer never go through the concatenation scan
	got := n.Split("GLD, XXXX, SPY")
	want := []string{"GLD", "SPY"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestLongestFirstOrdering(t *testing.T) {
	// with declared order, BT eats the start of BTC and BTC is never
	// recovered from the concatenated token
	shadow := New(Config{Whitelist: []string{"BT", "BTC", "MARA"}, Order: OrderDeclared})
	if got := shadow.Normalize("MARABTC"); got != "MARA, BT" {
		t.Errorf("declared order: got %q, want %q", got, "MARA, BT")
	}

	// longest-first consumes BTC before BT can shadow it; the shorter
	// symbol still surfaces as a split artifact afterwards
	fixed := New(Config{Whitelist: []string{"BT", "BTC", "MARA"}, Order: OrderLongestFirst})
	if got := fixed.Normalize("MARABTC"); got != "MARA, BTC, BT" {
		t.Errorf("longest-first: got %q, want %q", got, "MARA, BTC, BT")
	}
}

func TestNewNormalizesWhitelistEntries(t *testing.T) {
	n := New(Config{Whitelist: []string{" btc ", "BTC", "", "eth"}})
	got := n.Split("btc eth")
	want := []string{"BTC", "ETH"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split = %v, want %v", got, want)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tickers.yaml")
	data := "whitelist:\n  - BTC\n  - ETH\norder: longest-first\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Order != OrderLongestFirst {
		t.Errorf("Order = %q, want %q", cfg.Order, OrderLongestFirst)
	}
	if len(cfg.Whitelist) != 2 {
		t.Errorf("Whitelist size = %d, want 2", len(cfg.Whitelist))
	}
}

func TestLoadConfigRejectsBadOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tickers.yaml")
	if err := os.WriteFile(path, []byte("whitelist: [BTC]\norder: random\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for unknown order")
	}
}

func TestLoadConfigRejectsEmptyWhitelist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tickers.yaml")
	if err := os.WriteFile(path, []byte("whitelist: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for empty whitelist")
	}
}
