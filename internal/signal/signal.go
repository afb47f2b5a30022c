// Package signal defines the news signal record that flows through the
// pipeline, storage and the API.
package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"finsignals/internal/textnorm"
)

// Signal is one ingested news item with market-relevance metadata.
// The raw fields come from the feed; everything after RawTickers is
// derived by the pipeline or filled in by analysis.
type Signal struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	TitleRU      string    `json:"title_ru,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	SummaryRU    string    `json:"summary_ru,omitempty"`
	URL          string    `json:"url"`
	SourceDomain string    `json:"source_domain,omitempty"`
	Published    time.Time `json:"ts_published"`
	Ingested     time.Time `json:"ts_ingested"`
	RawTickers   string    `json:"-"`

	Lang            textnorm.Language `json:"lang,omitempty"`
	NormalizedTitle string            `json:"-"`
	Tickers         []string          `json:"tickers,omitempty"`

	Sector       string  `json:"sector,omitempty"`
	Label        string  `json:"label,omitempty"`
	Region       string  `json:"region,omitempty"`
	Impact       int     `json:"impact"`
	Confidence   int     `json:"confidence"`
	Sentiment    int     `json:"sentiment"`
	TrustScore   float64 `json:"trust_score"`
	What         string  `json:"what,omitempty"`
	WhyMatters   string  `json:"why_matters,omitempty"`
	ActionWindow string  `json:"action_window,omitempty"`
	Analysis     string  `json:"analysis,omitempty"`
}

// timestamp layouts seen across the feeds, most common first
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a feed timestamp. Anything unparsable comes back
// as the zero time; downstream treats that as epoch rather than failing
// the item.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HashID is the stable content id used across runs: first 32 hex chars
// of the sha256.
func HashID(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:32]
}
