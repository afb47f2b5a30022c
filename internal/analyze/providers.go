package analyze

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// Provider is one LLM backend able to score an article.
type Provider interface {
	Name() string
	Analyze(ctx context.Context, text string) (Result, error)
}

const promptTmpl = `You are the editor of a financial markets digest. Analyze the news item below and return a strict JSON verdict.

INPUT:
%s

Rules:
- Only confirmed facts, no clickbait.
- If you mention an amount or metric, keep the number and units.
- Facts stay neutral; sentiment is derived from the facts separately.

Return JSON with fields:
title_ru: Russian headline translation (up to 90 chars)
summary: one sentence, 22-28 words, confirmed facts only
label: ` + labelSet + `
impact: 0-100 (event scale + source reliability + concrete numbers + likelihood of consequences)
confidence: 0-100
sentiment: -1/0/+1 (bullish: price growth/adoption, bearish: price drops/liquidations, neutral: protocols/updates)
region: ` + regionSet + `
tickers: [list of tickers]
what: what happened (one sentence)
why_matters: why it matters (1-2 bullets)
action_window: intraday/1-3d/>1w
analysis: market impact assessment covering industry, risks, opportunities (100-150 words)

Only JSON, nothing else.`

const maxPromptChars = 6000

// sanitize collapses whitespace and caps prompt size on a rune boundary,
// preferring to end at a sentence.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxPromptChars {
		return text
	}
	runes := []rune(text)
	trimmed := string(runes[:maxPromptChars])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "\n[TRUNCATED]"
}

// ChatProvider talks to any OpenAI-compatible chat completion API.
// DeepSeek exposes the same wire protocol, so both run through here.
type ChatProvider struct {
	name   string
	model  string
	client *openai.Client
}

// NewOpenAI builds a provider against api.openai.com.
func NewOpenAI(apiKey, model string) *ChatProvider {
	return &ChatProvider{name: "openai", model: model, client: openai.NewClient(apiKey)}
}

// NewDeepSeek builds a provider against the DeepSeek endpoint.
func NewDeepSeek(apiKey, model string) *ChatProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = "https://api.deepseek.com/v1"
	return &ChatProvider{name: "deepseek", model: model, client: openai.NewClientWithConfig(cfg)}
}

func (p *ChatProvider) Name() string { return p.name }

func (p *ChatProvider) Analyze(ctx context.Context, text string) (Result, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "Return only JSON."},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(promptTmpl, sanitize(text))},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("%s request failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("%s returned no choices", p.name)
	}
	return ExtractJSON(resp.Choices[0].Message.Content), nil
}

// GeminiProvider runs the same prompt through Google Gemini.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: "gemini-1.5-flash"}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

func (p *GeminiProvider) Analyze(ctx context.Context, text string) (Result, error) {
	model := p.client.GenerativeModel(p.model)
	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(promptTmpl, sanitize(text))))
	if err != nil {
		return Result{}, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return Result{}, fmt.Errorf("no response from Gemini")
	}
	return ExtractJSON(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}
