// Package analyze turns scraped articles into structured market signals
// using one or more LLM providers and merging their answers by consensus.
package analyze

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"
)

// Result is the structured verdict a provider returns for one article.
type Result struct {
	TitleRU      string   `json:"title_ru"`
	Summary      string   `json:"summary"`
	Label        string   `json:"label"`
	Impact       int      `json:"impact"`
	Confidence   int      `json:"confidence"`
	Sentiment    int      `json:"sentiment"`
	Region       string   `json:"region"`
	Tickers      []string `json:"tickers"`
	What         string   `json:"what"`
	WhyMatters   string   `json:"why_matters"`
	ActionWindow string   `json:"action_window"`
	Analysis     string   `json:"analysis"`
}

const (
	labelSet  = "regulatory,litigation,product_launch,earnings,macro,fraud,policy,mna,guidance,ipo,merger,acquisition,partnership,technology,environmental,geopolitical,other"
	regionSet = "US,EU,CN,JP,UK,CA,AU,BR,IN,RU,SA,TR,EM,UA"
)

var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON parses a provider reply. Models wrap JSON in prose or code
// fences often enough that a bare Unmarshal is not enough: fall back to the
// outermost brace block, and if that fails too, return a degraded placeholder
// result so the pipeline keeps moving.
func ExtractJSON(s string) Result {
	var r Result
	if err := json.Unmarshal([]byte(s), &r); err == nil && r.Label != "" {
		return normalizeResult(r)
	}
	if m := jsonBlockRe.FindString(s); m != "" {
		r = Result{}
		if err := json.Unmarshal([]byte(m), &r); err == nil && r.Label != "" {
			return normalizeResult(r)
		}
	}
	summary := s
	if len(summary) > 200 {
		summary = summary[:200]
	}
	return Result{
		Summary:      summary,
		Label:        "other",
		Impact:       25,
		Confidence:   50,
		Region:       "US",
		What:         "event needs further review",
		WhyMatters:   "market impact not determined",
		ActionWindow: ">1w",
	}
}

func normalizeResult(r Result) Result {
	r.Label = strings.ToLower(strings.TrimSpace(r.Label))
	if r.Label == "" || !inSet(labelSet, r.Label) {
		r.Label = "other"
	}
	r.Region = strings.ToUpper(strings.TrimSpace(r.Region))
	if r.Region == "" || !inSet(regionSet, r.Region) {
		r.Region = "US"
	}
	r.Impact = clamp(r.Impact, 0, 100)
	r.Confidence = clamp(r.Confidence, 0, 100)
	r.Sentiment = clamp(r.Sentiment, -1, 1)
	if r.ActionWindow == "" {
		r.ActionWindow = ">1w"
	}
	return r
}

func inSet(set, v string) bool {
	for _, s := range strings.Split(set, ",") {
		if s == v {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Consensus merges several provider results into one: median for the numeric
// scores, majority vote for the categorical fields, union for tickers.
func Consensus(results []Result) Result {
	if len(results) == 0 {
		return Result{Summary: "no analysis", Label: "other", Region: "US", ActionWindow: ">1w"}
	}

	out := Result{
		Impact:       median(func(r Result) int { return r.Impact }, results),
		Confidence:   median(func(r Result) int { return r.Confidence }, results),
		Label:        majority(func(r Result) string { return r.Label }, results, "other"),
		Region:       majority(func(r Result) string { return r.Region }, results, "US"),
		ActionWindow: majority(func(r Result) string { return r.ActionWindow }, results, ">1w"),
	}

	votes := map[int]int{}
	for _, r := range results {
		votes[r.Sentiment]++
	}
	best, bestN := 0, -1
	for s, n := range votes {
		if n > bestN {
			best, bestN = s, n
		}
	}
	out.Sentiment = best

	seen := map[string]struct{}{}
	for _, r := range results {
		for _, t := range r.Tickers {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out.Tickers = append(out.Tickers, t)
		}
	}
	if len(out.Tickers) > 5 {
		out.Tickers = out.Tickers[:5]
	}

	out.What = joinParts(func(r Result) string { return r.What }, results, "event needs further review")
	out.WhyMatters = joinParts(func(r Result) string { return r.WhyMatters }, results, "market impact not determined")

	var summaries []string
	for _, r := range results {
		s := strings.TrimSpace(r.Summary)
		if s == "" {
			continue
		}
		if len(s) > 100 {
			s = s[:100]
		}
		summaries = append(summaries, s)
	}
	out.Summary = strings.Join(summaries, " | ")
	if len(out.Summary) > 300 {
		out.Summary = out.Summary[:300]
	}

	// Carry the first non-empty translated title and long-form analysis.
	for _, r := range results {
		if out.TitleRU == "" && r.TitleRU != "" {
			out.TitleRU = r.TitleRU
		}
		if out.Analysis == "" && r.Analysis != "" {
			out.Analysis = r.Analysis
		}
	}
	return out
}

func median(get func(Result) int, results []Result) int {
	vals := make([]int, 0, len(results))
	for _, r := range results {
		vals = append(vals, get(r))
	}
	sort.Ints(vals)
	return vals[len(vals)/2]
}

func majority(get func(Result) string, results []Result, fallback string) string {
	counts := map[string]int{}
	for _, r := range results {
		if v := get(r); v != "" {
			counts[v]++
		}
	}
	best, bestN := fallback, 0
	for v, n := range counts {
		if n > bestN {
			best, bestN = v, n
		}
	}
	return best
}

func joinParts(get func(Result) string, results []Result, fallback string) string {
	var parts []string
	for _, r := range results {
		if v := strings.TrimSpace(get(r)); v != "" {
			parts = append(parts, v)
		}
		if len(parts) == 2 {
			break
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, " | ")
}
