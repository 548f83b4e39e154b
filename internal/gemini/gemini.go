// Package gemini wraps the Google generative AI client for post-market
// highlight summarization.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/gigtarget/market-report-bot/internal/news"
)

const (
	defaultModel = "gemini-1.5-flash"
	maxBullets   = 10
	// Prompt budget per item body; liveblog blocks can run to several
	// thousand characters of repeated ticker tables.
	maxBodyRunes = 600
)

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if model == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// SummarizeHighlights turns intraday liveblog blocks into at most ten
// post-market bullet lines.
func (c *Client) SummarizeHighlights(ctx context.Context, items []news.Item) ([]string, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to summarize")
	}

	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(items)))
	if err != nil {
		return nil, fmt.Errorf("generating highlights: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty Gemini response")
	}

	bullets := ParseBullets(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if len(bullets) == 0 {
		return nil, fmt.Errorf("Gemini response contained no bullet lines")
	}
	return bullets, nil
}

func buildPrompt(items []news.Item) string {
	var b strings.Builder
	b.WriteString("You are summarizing Moneycontrol's Stock Market LIVE Updates for India equities.\n")
	b.WriteString("Use the provided intraday blocks (title + body).\n")
	b.WriteString("Produce 6-10 concise bullet 'Post-market Highlights' for the trading session.\n")
	b.WriteString("Rules: focus on equities actions, avoid URLs, avoid repetition, mention tickers if given,\n")
	b.WriteString("one bullet per line, no extra preamble.\n")
	b.WriteString("Items:\n")

	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, item.Title, clampBody(item.Summary))
	}
	return b.String()
}

func clampBody(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(body) <= maxBodyRunes {
		return body
	}
	runes := []rune(body)
	trimmed := string(runes[:maxBodyRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > maxBodyRunes/3 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}

// ParseBullets extracts bullet lines from a model response, stripping
// list markers and dropping blank lines. At most ten bullets survive.
func ParseBullets(text string) []string {
	var bullets []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.Trim(line, "•-* \t")
		if stripped == "" {
			continue
		}
		bullets = append(bullets, stripped)
		if len(bullets) == maxBullets {
			break
		}
	}
	return bullets
}
