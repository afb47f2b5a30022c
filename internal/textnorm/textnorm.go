// Package textnorm holds the text transforms shared by the dedupe keys
// and the digest formatting: title normalization, word-bounded
// truncation, language detection and domain extraction.
package textnorm

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Language is a detected text language.
type Language string

const (
	LangRU      Language = "ru"
	LangEN      Language = "en"
	LangUnknown Language = "unknown"
)

// TruncateByWords cuts text to at most maxWords words and appends an
// ellipsis. Text at or under the limit is returned unchanged. Words are
// never cut in the middle.
func TruncateByWords(text string, maxWords int) string {
	if text == "" {
		return ""
	}
	if maxWords < 0 {
		maxWords = 0
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "…"
}

// NormalizeTitle lowercases a title, drops digits, currency amounts and
// punctuation, and collapses whitespace. The result is only used to build
// dedupe keys, never shown to a user.
func NormalizeTitle(title string) string {
	s := norm.NFKC.String(title)
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || r == '_' {
			b.WriteRune(r)
		} else {
			// digits, currency marks and punctuation all become word breaks
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// DetectLanguage classifies text as ru, en or unknown. Cyrillic is
// checked before Latin, so mixed-script text classifies as ru. This is a
// fixed tie-break, not a language model.
func DetectLanguage(text string) Language {
	for _, r := range text {
		if unicode.Is(unicode.Cyrillic, r) {
			return LangRU
		}
	}
	for _, r := range text {
		if unicode.Is(unicode.Latin, r) {
			return LangEN
		}
	}
	return LangUnknown
}

// ExtractDomain returns the hostname of rawURL. Anything that does not
// parse as a URL with a host comes back unchanged; a bad link must never
// fail the batch.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

// Localize returns text when it is already in the requested language and
// fallback when text is empty. Translating mismatched text is a future
// extension; for now the original is served as-is.
func Localize(text string, lang Language, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	if DetectLanguage(text) == lang {
		return text
	}
	return text
}
