// Package telegram delivers signal digests to a Telegram chat or channel.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finsignals/internal/retry"
	"finsignals/internal/signal"
	"finsignals/internal/textnorm"
)

const defaultBaseURL = "https://api.telegram.org"

type Client struct {
	token   string
	chatID  string
	baseURL string
	http    *http.Client
	retry   retry.Config
	log     *slog.Logger
}

func NewClient(token, chatID string, r retry.Config, log *slog.Logger) *Client {
	return &Client{
		token:   token,
		chatID:  chatID,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   r,
		log:     log,
	}
}

// Send posts one HTML message with retries.
func (c *Client) Send(ctx context.Context, text string) error {
	err := retry.Do(ctx, c.retry, func() error {
		return c.sendOnce(ctx, text)
	})
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	c.log.Info("digest sent to telegram", "chat_id", c.chatID)
	return nil
}

func (c *Client) sendOnce(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)

	payload := map[string]any{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: status %d", resp.StatusCode)
	}
	return nil
}

var sentimentMark = map[int]string{1: "📈", 0: "▪️", -1: "📉"}

// FormatDigest renders the top signals as one HTML digest message.
func FormatDigest(signals []signal.Signal, size int) string {
	if len(signals) == 0 {
		return ""
	}
	if size > 0 && len(signals) > size {
		signals = signals[:size]
	}

	var b strings.Builder
	b.WriteString("<b>Market Signals</b>\n\n")
	for _, sig := range signals {
		title := textnorm.Localize(sig.TitleRU, textnorm.LangRU, sig.Title)
		fmt.Fprintf(&b, "%s <a href=\"%s\">%s</a>\n", sentimentMark[sig.Sentiment], escape(sig.URL), escape(title))
		fmt.Fprintf(&b, "impact %d · confidence %d", sig.Impact, sig.Confidence)
		if len(sig.Tickers) > 0 {
			fmt.Fprintf(&b, " · %s", strings.Join(sig.Tickers, ", "))
		}
		b.WriteString("\n")
		if sig.Summary != "" {
			fmt.Fprintf(&b, "%s\n", escape(textnorm.TruncateByWords(sig.Summary, 40)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
