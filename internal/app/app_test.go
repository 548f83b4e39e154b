package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gigtarget/market-report-bot/internal/config"
	"github.com/gigtarget/market-report-bot/internal/feed"
	"github.com/gigtarget/market-report-bot/internal/pipeline"
	"github.com/gigtarget/market-report-bot/internal/ratelimit"
	"github.com/gigtarget/market-report-bot/internal/report"
	"github.com/gigtarget/market-report-bot/internal/telegram"
)

type recordingSender struct {
	sent []string
	err  error
}

func (s *recordingSender) Send(_ context.Context, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, text)
	return nil
}

func newTestApp(sender Sender) *App {
	return &App{
		cfg:      &config.Config{FeedsConfigPath: "no-such-feeds.yaml"},
		pipeline: pipeline.New(nil, nil, nil),
		fetcher:  feed.NewFetcher(),
		cache:    report.NewCache(time.Minute),
		sender:   sender,
	}
}

func TestRunOnceDeliversAfterFailedAttempt(t *testing.T) {
	sender := &recordingSender{err: errors.New("telegram down")}
	a := newTestApp(sender)

	require.Error(t, a.RunOnce(context.Background()))
	require.Empty(t, sender.sent)

	// The rendered report must survive a failed delivery: the retry
	// within the cache window sends it instead of skipping the run.
	sender.err = nil
	require.NoError(t, a.RunOnce(context.Background()))
	require.Len(t, sender.sent, 1)
	require.Contains(t, sender.sent[0], report.Placeholder)
}

func TestRunOnceResendsCachedReport(t *testing.T) {
	sender := &recordingSender{}
	a := newTestApp(sender)
	a.cache.Put("previous report text")

	require.NoError(t, a.RunOnce(context.Background()))
	require.Equal(t, []string{"previous report text"}, sender.sent)
}

func TestReportRenderedAtTracksCache(t *testing.T) {
	a := newTestApp(&recordingSender{})
	require.True(t, a.ReportRenderedAt().IsZero())

	require.NoError(t, a.RunOnce(context.Background()))
	require.False(t, a.ReportRenderedAt().IsZero())
}

func TestSummarizerStopsAtDailyCap(t *testing.T) {
	limiter := ratelimit.New(1)
	require.NoError(t, limiter.Use())

	// A nil client proves the cap check fires before the Gemini call.
	s := &limitedSummarizer{client: nil, limiter: limiter}
	_, err := s.SummarizeHighlights(context.Background(), nil)
	require.Error(t, err)
}

type sentReply struct {
	chatID string
	text   string
}

type fakeBot struct {
	batches [][]telegram.Update
	offsets []int64
	replies []sentReply
	cancel  context.CancelFunc
}

func (b *fakeBot) GetUpdates(_ context.Context, offset int64) ([]telegram.Update, error) {
	b.offsets = append(b.offsets, offset)
	if len(b.batches) == 0 {
		b.cancel()
		return nil, nil
	}
	batch := b.batches[0]
	b.batches = b.batches[1:]
	return batch, nil
}

func (b *fakeBot) SendTo(_ context.Context, chatID, text string) error {
	b.replies = append(b.replies, sentReply{chatID, text})
	return nil
}

func TestHandleUpdateReportCommand(t *testing.T) {
	bot := &fakeBot{}
	a := newTestApp(&recordingSender{})
	a.bot = bot
	a.cache.Put("today's report")

	a.handleUpdate(context.Background(), telegram.Update{
		UpdateID: 1,
		Message:  &telegram.Message{Text: "/report", Chat: telegram.Chat{ID: 42}},
	})

	require.Equal(t, []sentReply{{"42", "today's report"}}, bot.replies)
}

func TestHandleUpdateStartCommand(t *testing.T) {
	bot := &fakeBot{}
	a := newTestApp(&recordingSender{})
	a.bot = bot

	a.handleUpdate(context.Background(), telegram.Update{
		UpdateID: 1,
		Message:  &telegram.Message{Text: "/start", Chat: telegram.Chat{ID: 7}},
	})

	require.Len(t, bot.replies, 1)
	require.Equal(t, "7", bot.replies[0].chatID)
	require.Contains(t, bot.replies[0].text, "/report")
}

func TestHandleUpdateIgnoresChatter(t *testing.T) {
	bot := &fakeBot{}
	a := newTestApp(&recordingSender{})
	a.bot = bot

	a.handleUpdate(context.Background(), telegram.Update{
		UpdateID: 1,
		Message:  &telegram.Message{Text: "what happened today?", Chat: telegram.Chat{ID: 7}},
	})
	a.handleUpdate(context.Background(), telegram.Update{UpdateID: 2})

	require.Empty(t, bot.replies)
}

func TestServeCommandsAdvancesOffset(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := &fakeBot{
		batches: [][]telegram.Update{{
			{UpdateID: 7, Message: &telegram.Message{Text: "/report", Chat: telegram.Chat{ID: 42}}},
		}},
		cancel: cancel,
	}
	a := newTestApp(&recordingSender{})
	a.bot = bot
	a.cache.Put("cached report")

	a.ServeCommands(ctx)

	require.Equal(t, []int64{0, 8}, bot.offsets)
	require.Equal(t, []sentReply{{"42", "cached report"}}, bot.replies)
}

func TestParseCommand(t *testing.T) {
	cases := map[string]string{
		"/report":            "/report",
		"/report@MarketBot":  "/report",
		"  /start extra arg": "/start",
		"hello":              "",
		"":                   "",
	}
	for input, want := range cases {
		require.Equal(t, want, parseCommand(input), "input %q", input)
	}
}
