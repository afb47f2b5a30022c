package rss

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"finsignals/internal/signal"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	data := `sectors:
  CRYPTO:
    - https://cointelegraph.com/rss
    - https://www.coindesk.com/arc/outboundfeeds/rss/
  TREASURY:
    - https://home.treasury.gov/rss/news
default_sectors: [CRYPTO]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Sectors["CRYPTO"]) != 2 {
		t.Errorf("CRYPTO feeds = %d, want 2", len(cfg.Sectors["CRYPTO"]))
	}
	if len(cfg.DefaultSectors) != 1 || cfg.DefaultSectors[0] != "CRYPTO" {
		t.Errorf("DefaultSectors = %v", cfg.DefaultSectors)
	}
}

func TestLoadConfigDefaultsToAllSectors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	data := "sectors:\n  CRYPTO: [https://a.com/rss]\n  SEMIS: [https://b.com/rss]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.DefaultSectors) != 2 {
		t.Errorf("DefaultSectors = %v, want both sectors", cfg.DefaultSectors)
	}
}

func TestLoadConfigEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	if err := os.WriteFile(path, []byte("sectors: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for empty sectors")
	}
}

func TestFilterFresh(t *testing.T) {
	now := time.Now()
	items := []signal.Signal{
		{ID: "fresh", Published: now.Add(-time.Hour)},
		{ID: "stale", Published: now.Add(-48 * time.Hour)},
		{ID: "undated"},
	}
	got := FilterFresh(items, 24*time.Hour)
	if len(got) != 2 || got[0].ID != "fresh" || got[1].ID != "undated" {
		t.Errorf("FilterFresh kept %+v", got)
	}
}
