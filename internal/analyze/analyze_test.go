package analyze

import (
	"strings"
	"testing"
)

func TestExtractJSONPlain(t *testing.T) {
	r := ExtractJSON(`{"summary":"SEC approves spot ETF","label":"regulatory","impact":80,"confidence":90,"sentiment":1,"region":"US","tickers":["BTC"],"action_window":"1-3d"}`)
	if r.Label != "regulatory" {
		t.Fatalf("label = %q, want regulatory", r.Label)
	}
	if r.Impact != 80 || r.Confidence != 90 || r.Sentiment != 1 {
		t.Fatalf("scores = %d/%d/%d", r.Impact, r.Confidence, r.Sentiment)
	}
	if len(r.Tickers) != 1 || r.Tickers[0] != "BTC" {
		t.Fatalf("tickers = %v", r.Tickers)
	}
}

func TestExtractJSONFenced(t *testing.T) {
	reply := "Here is the verdict:\n```json\n{\"summary\":\"x\",\"label\":\"macro\",\"impact\":40,\"confidence\":60}\n```\nDone."
	r := ExtractJSON(reply)
	if r.Label != "macro" || r.Impact != 40 {
		t.Fatalf("got label=%q impact=%d", r.Label, r.Impact)
	}
}

func TestExtractJSONGarbage(t *testing.T) {
	long := strings.Repeat("not json at all ", 30)
	r := ExtractJSON(long)
	if r.Label != "other" || r.Impact != 25 || r.Confidence != 50 {
		t.Fatalf("degraded result = %+v", r)
	}
	if len(r.Summary) != 200 {
		t.Fatalf("summary len = %d, want 200", len(r.Summary))
	}
	if r.ActionWindow != ">1w" {
		t.Fatalf("action_window = %q", r.ActionWindow)
	}
}

func TestExtractJSONClampsAndDefaults(t *testing.T) {
	r := ExtractJSON(`{"label":"EARNINGS","impact":250,"confidence":-5,"sentiment":3,"region":"mars"}`)
	if r.Label != "earnings" {
		t.Fatalf("label = %q", r.Label)
	}
	if r.Impact != 100 || r.Confidence != 0 || r.Sentiment != 1 {
		t.Fatalf("clamped = %d/%d/%d", r.Impact, r.Confidence, r.Sentiment)
	}
	if r.Region != "US" {
		t.Fatalf("region = %q", r.Region)
	}
}

func TestConsensusMedianAndMajority(t *testing.T) {
	c := Consensus([]Result{
		{Label: "regulatory", Impact: 80, Confidence: 90, Sentiment: 1, Region: "US", Tickers: []string{"BTC"}, ActionWindow: "1-3d", Summary: "a"},
		{Label: "regulatory", Impact: 60, Confidence: 70, Sentiment: 1, Region: "US", Tickers: []string{"BTC", "ETH"}, ActionWindow: "1-3d", Summary: "b"},
		{Label: "macro", Impact: 20, Confidence: 50, Sentiment: 0, Region: "EU", Tickers: []string{"MARA"}, ActionWindow: ">1w", Summary: "c"},
	})
	if c.Label != "regulatory" {
		t.Fatalf("label = %q", c.Label)
	}
	if c.Impact != 60 || c.Confidence != 70 {
		t.Fatalf("median scores = %d/%d", c.Impact, c.Confidence)
	}
	if c.Sentiment != 1 || c.Region != "US" || c.ActionWindow != "1-3d" {
		t.Fatalf("votes = %d/%s/%s", c.Sentiment, c.Region, c.ActionWindow)
	}
	want := []string{"BTC", "ETH", "MARA"}
	if len(c.Tickers) != len(want) {
		t.Fatalf("tickers = %v", c.Tickers)
	}
	for i, tk := range want {
		if c.Tickers[i] != tk {
			t.Fatalf("tickers = %v, want %v", c.Tickers, want)
		}
	}
	if c.Summary != "a | b | c" {
		t.Fatalf("summary = %q", c.Summary)
	}
}

func TestConsensusEmpty(t *testing.T) {
	c := Consensus(nil)
	if c.Label != "other" || c.Summary != "no analysis" || c.Region != "US" {
		t.Fatalf("empty consensus = %+v", c)
	}
}

func TestConsensusTickerCap(t *testing.T) {
	c := Consensus([]Result{{Label: "other", Tickers: []string{"A", "B", "C", "D", "E", "F", "G"}}})
	if len(c.Tickers) != 5 {
		t.Fatalf("tickers = %v, want 5 entries", c.Tickers)
	}
}
