// Package scraper extracts full article text for the signals that made
// the cut, so analysis works from more than the RSS description.
package scraper

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Article is an extracted article body.
type Article struct {
	Title   string
	Content string
	URL     string
}

// selectors tried per domain before the generic fallback
var siteSelectors = map[string][]string{
	"cointelegraph.com": {".post-content p", "article p"},
	"coindesk.com":      {".at-content-wrapper p", "article p"},
	"reuters.com":       {`[data-testid="paragraph"]`, "article p"},
	"techcrunch.com":    {".article-content p", "article p"},
}

var genericSelectors = []string{
	"article p",
	".article-body p",
	".post-content p",
	"main p",
}

type Scraper struct {
	client      *http.Client
	concurrency int
	maxArticles int
}

func New(timeout time.Duration, concurrency, maxArticles int) *Scraper {
	return &Scraper{
		client:      &http.Client{Timeout: timeout},
		concurrency: concurrency,
		maxArticles: maxArticles,
	}
}

// Extract fetches one URL and pulls out the readable article text.
func (s *Scraper) Extract(url string) (*Article, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; finsignals/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	content := extractContent(doc, url)
	if content == "" {
		return nil, fmt.Errorf("no content found")
	}

	return &Article{
		Title:   strings.TrimSpace(doc.Find("h1").First().Text()),
		Content: content,
		URL:     url,
	}, nil
}

// ExtractAll fetches up to maxArticles URLs with a bounded worker pool
// and returns whatever succeeded, keyed by URL. Failures are logged and
// dropped; the caller falls back to the feed description.
func (s *Scraper) ExtractAll(urls []string) map[string]*Article {
	if len(urls) > s.maxArticles {
		urls = urls[:s.maxArticles]
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]*Article, len(urls))
		sem = make(chan struct{}, s.concurrency)
	)

	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			art, err := s.Extract(url)
			if err != nil {
				slog.Debug("article extraction failed", "url", url, "error", err)
				return
			}
			mu.Lock()
			out[url] = art
			mu.Unlock()
		}(url)
	}
	wg.Wait()

	slog.Info("articles extracted", "ok", len(out), "requested", len(urls))
	return out
}

func extractContent(doc *goquery.Document, url string) string {
	var selectors []string
	for domain, sel := range siteSelectors {
		if strings.Contains(url, domain) {
			selectors = sel
			break
		}
	}
	selectors = append(selectors, genericSelectors...)

	for _, sel := range selectors {
		var parts []string
		doc.Find(sel).Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if len(text) > 40 {
				parts = append(parts, text)
			}
		})
		if content := strings.Join(parts, "\n\n"); len(content) > 200 {
			return content
		}
	}
	return ""
}
