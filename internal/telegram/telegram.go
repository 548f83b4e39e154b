// Package telegram delivers the finished report over the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gigtarget/market-report-bot/internal/retry"
)

// maxMessageLen is Telegram's hard sendMessage limit.
const maxMessageLen = 4096

const defaultAPIBase = "https://api.telegram.org"

type Client struct {
	token   string
	chatID  string
	apiBase string
	http    *http.Client
}

func NewClient(token, chatID string) *Client {
	return &Client{
		token:   token,
		chatID:  chatID,
		apiBase: defaultAPIBase,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Send delivers text as one or more HTML-formatted messages to the
// configured chat, splitting on line boundaries when the report
// exceeds Telegram's length limit.
func (c *Client) Send(ctx context.Context, text string) error {
	return c.SendTo(ctx, c.chatID, text)
}

// SendTo delivers text to an arbitrary chat, used for command replies.
func (c *Client) SendTo(ctx context.Context, chatID, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if chunk == "" {
			continue
		}
		if err := c.sendChunk(ctx, chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendChunk(ctx context.Context, chatID, text string) error {
	cfg := retry.Config{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}
	err := retry.WithRetry(ctx, cfg, func() error {
		return c.sendOnce(ctx, chatID, text)
	})
	if err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	slog.Info("report delivered to telegram", "chars", len(text))
	return nil
}

func (c *Client) sendOnce(ctx context.Context, chatID, text string) error {
	payload := map[string]interface{}{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// Update is one entry from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	Text string `json:"text"`
	Chat Chat   `json:"chat"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// GetUpdates long-polls the Bot API for new messages. offset must be
// one past the last update already handled. The poll timeout stays
// under the HTTP client timeout so a quiet chat is not an error.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=25", c.apiBase, c.token, offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("telegram API status %d: %s", resp.StatusCode, detail)
	}

	var parsed struct {
		OK     bool     `json:"ok"`
		Result []Update `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("telegram API replied not ok")
	}
	return parsed.Result, nil
}

// splitMessage cuts text into chunks of at most limit bytes, breaking
// at newlines so HTML tags inside a line stay intact.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current bytes.Buffer
	for _, line := range bytes.Split([]byte(text), []byte("\n")) {
		// A single oversized line gets hard-cut.
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, string(line[:limit]))
			line = line[limit:]
		}
		if current.Len() > 0 && current.Len()+len(line)+1 > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte('\n')
		}
		current.Write(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
