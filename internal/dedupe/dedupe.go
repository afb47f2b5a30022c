// Package dedupe collapses duplicate and republished signals inside one
// batch. All functions are pure over their input slice and preserve
// input order; the maps they build live only for the call.
package dedupe

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"finsignals/internal/signal"
	"finsignals/internal/textnorm"
)

// Key builds the duplicate identity for a title/URL pair: normalized
// title plus source domain. Case, digits and punctuation do not
// participate.
func Key(title, rawURL string) string {
	return textnorm.NormalizeTitle(title) + "|" + textnorm.ExtractDomain(rawURL)
}

// keyOf is Key over a signal. A precomputed SourceDomain wins over the
// URL-derived hostname.
func keyOf(it signal.Signal) string {
	if it.SourceDomain != "" {
		return textnorm.NormalizeTitle(it.Title) + "|" + it.SourceDomain
	}
	return Key(it.Title, it.URL)
}

// Articles keeps the first signal observed for each dedupe key and
// drops later ones entirely. Stable: survivors keep their input order.
func Articles(items []signal.Signal) []signal.Signal {
	seen := make(map[string]struct{}, len(items))
	out := make([]signal.Signal, 0, len(items))
	for _, it := range items {
		k := keyOf(it)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// FilterTemporal drops signals that share a dedupe key with an earlier
// kept signal inside the window. The window anchors to the last KEPT
// signal for the key, not the last one seen: rejected signals do not
// move the anchor, so a chain of near-duplicates collapses to the first
// as long as each member is within the window of that kept anchor. A
// repeat farther than the window from the anchor is kept even when it
// is close to a rejected predecessor.
//
// Missing timestamps are the zero time, so undated signals sharing a key
// look simultaneous and collapse. Accepted trade-off.
func FilterTemporal(items []signal.Signal, window time.Duration) []signal.Signal {
	lastKept := make(map[string]time.Time, len(items))
	out := make([]signal.Signal, 0, len(items))
	for _, it := range items {
		k := keyOf(it)
		anchor, ok := lastKept[k]
		if ok && it.Published.Sub(anchor) <= window {
			continue
		}
		lastKept[k] = it.Published
		out = append(out, it)
	}
	return out
}

// GroupByTopic buckets signals by a coarse topic key: the first three
// alphabetically sorted words of the normalized title that are longer
// than three characters. Titles with no qualifying words land in
// "other". A clustering aid for display, not a dedupe decision.
func GroupByTopic(items []signal.Signal) map[string][]signal.Signal {
	groups := make(map[string][]signal.Signal)
	for _, it := range items {
		groups[topicKey(it.Title)] = append(groups[topicKey(it.Title)], it)
	}
	return groups
}

func topicKey(title string) string {
	var words []string
	for _, w := range strings.Fields(textnorm.NormalizeTitle(title)) {
		if utf8.RuneCountInString(w) > 3 {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "other"
	}
	sort.Strings(words)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}
