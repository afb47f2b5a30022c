// Package score assigns pre-analysis priority to signals: how much the
// source can be trusted and how market-relevant the text looks. LLM
// analysis later overrides impact; these scores decide what is worth
// sending to analysis at all.
package score

import (
	"regexp"
	"strings"

	"finsignals/internal/signal"
)

// Regulators and official sources.
var officialDomains = map[string]struct{}{
	"sec.gov":             {},
	"fda.gov":             {},
	"federalreserve.gov":  {},
	"treasury.gov":        {},
	"ecb.europa.eu":       {},
	"bankofengland.co.uk": {},
}

// Established financial media.
var mediaDomains = map[string]struct{}{
	"reuters.com":       {},
	"bloomberg.com":     {},
	"wsj.com":           {},
	"ft.com":            {},
	"cointelegraph.com": {},
	"coindesk.com":      {},
}

var testDomains = map[string]struct{}{
	"example.com": {},
	"test.com":    {},
	"localhost":   {},
	"127.0.0.1":   {},
}

// TrustScore rates a source domain: 1.0 official, 0.8 major media,
// 0.6 everything else.
func TrustScore(domain string) float64 {
	bd := baseDomain(domain)
	if _, ok := officialDomains[bd]; ok {
		return 1.0
	}
	if _, ok := mediaDomains[bd]; ok {
		return 0.8
	}
	return 0.6
}

// IsTestSource reports whether the domain is a placeholder that must
// never reach subscribers.
func IsTestSource(domain string) bool {
	_, ok := testDomains[baseDomain(domain)]
	return ok
}

func baseDomain(domain string) string {
	d := strings.ToLower(domain)
	if i := strings.IndexByte(d, ':'); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimPrefix(d, "www.")
	return d
}

var regulatoryKeywords = newMatcher(
	"sec", "cftc", "fed", "regulation", "lawsuit", "settlement", "sanction",
	"approval", "ban", "probe", "subpoena",
)

var marketMoveKeywords = newMatcher(
	"surge", "plunge", "rally", "crash", "record high", "all-time high",
	"liquidation", "halving", "etf", "inflow", "outflow",
)

var corporateKeywords = newMatcher(
	"earnings", "acquisition", "merger", "ipo", "bankruptcy", "guidance",
	"partnership", "buyback", "dividend",
)

var noiseKeywords = newMatcher(
	"horoscope", "celebrity", "recipe", "weather", "giveaway", "sponsored",
	"price prediction",
)

// matcher matches phrases and long tokens by substring and short tokens
// by word boundary, so "fed" does not fire inside "federation". The
// boundary patterns compile once at package init, not per signal.
type matcher struct {
	substrings []string
	bounded    []*regexp.Regexp
}

func newMatcher(keywords ...string) matcher {
	var m matcher
	for _, k := range keywords {
		if len(k) <= 4 && !strings.Contains(k, " ") {
			m.bounded = append(m.bounded, regexp.MustCompile(`\b`+regexp.QuoteMeta(k)+`\b`))
			continue
		}
		m.substrings = append(m.substrings, k)
	}
	return m
}

func (m matcher) match(text string) bool {
	for _, k := range m.substrings {
		if strings.Contains(text, k) {
			return true
		}
	}
	for _, re := range m.bounded {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Relevance estimates 0-100 how actionable a signal looks from its text
// alone. Zero means drop it.
func Relevance(s signal.Signal) int {
	text := strings.ToLower(s.Title + " " + s.Summary)

	if noiseKeywords.match(text) {
		return 0
	}

	score := 0
	if regulatoryKeywords.match(text) {
		score += 40
	}
	if marketMoveKeywords.match(text) {
		score += 30
	}
	if corporateKeywords.match(text) {
		score += 30
	}
	if score == 0 {
		// nothing actionable in the text, keep only trusted sources
		if TrustScore(s.SourceDomain) >= 0.8 {
			score = 20
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}
