// Package bot runs the Telegram subscription daemon: chats subscribe via an
// inline menu and receive the watch summary on their chosen period.
package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Summarizer produces the current watch summary for subscribed chats.
type Summarizer interface {
	Summarize(ctx context.Context) (string, error)
}

// Config governs the bot loops.
type Config struct {
	Token            string
	APIBase          string
	PollTimeout      time.Duration
	DefaultPeriodSec int
}

// Periods offered in the inline menu.
var periodChoices = []struct {
	label string
	sec   int
}{
	{"15 min", 15 * 60},
	{"1 hour", 60 * 60},
	{"24 hours", 24 * 60 * 60},
}

const schedulerTick = 10 * time.Second

// Bot couples the long-polling command loop with the periodic push loop.
type Bot struct {
	cfg    Config
	api    *apiClient
	state  *State
	summer Summarizer
	logger *zap.Logger
}

// New builds a Bot around persisted state and a summary source.
func New(cfg Config, state *State, summer Summarizer, logger *zap.Logger) (*Bot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if cfg.DefaultPeriodSec <= 0 {
		cfg.DefaultPeriodSec = 15 * 60
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 50 * time.Second
	}
	return &Bot{
		cfg:    cfg,
		api:    newAPIClient(cfg.Token, cfg.APIBase, cfg.PollTimeout),
		state:  state,
		summer: summer,
		logger: logger,
	}, nil
}

// Run drives both loops until the context is canceled, then persists state.
func (b *Bot) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.pollLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		b.scheduleLoop(ctx)
	}()
	wg.Wait()

	if err := b.state.Save(); err != nil {
		return fmt.Errorf("save state on shutdown: %w", err)
	}
	return nil
}

func (b *Bot) pollLoop(ctx context.Context) {
	for ctx.Err() == nil {
		updates, err := b.api.getUpdates(ctx, b.state.LastUpdateID()+1)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("getUpdates failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for _, upd := range updates {
			b.handleUpdate(ctx, upd)
			b.state.SetLastUpdateID(upd.UpdateID)
		}
		if len(updates) > 0 {
			if err := b.state.Save(); err != nil {
				b.logger.Warn("save state failed", zap.Error(err))
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd update) {
	switch {
	case upd.Message != nil:
		b.handleCommand(ctx, upd.Message.Chat.ID, strings.TrimSpace(upd.Message.Text))
	case upd.Callback != nil && upd.Callback.Message != nil:
		if err := b.api.answerCallback(ctx, upd.Callback.ID); err != nil {
			b.logger.Debug("answerCallback failed", zap.Error(err))
		}
		b.handleCallback(ctx, upd.Callback.Message.Chat.ID, upd.Callback.Data)
	}
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) {
	switch text {
	case "/start", "/menu":
		b.showMainMenu(ctx, chatID)
	case "/stop":
		b.state.Unsubscribe(chatID)
		b.send(ctx, chatID, "Unsubscribed. Send /start to subscribe again.", nil)
	default:
		// Unknown input gets the menu rather than silence.
		b.showMainMenu(ctx, chatID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, chatID int64, data string) {
	switch {
	case data == "subscribe":
		b.state.Subscribe(chatID, b.cfg.DefaultPeriodSec, time.Now().Unix())
		b.send(ctx, chatID, "Subscribed. You will receive the postings summary periodically.", nil)
		b.showPeriodMenu(ctx, chatID)
	case data == "unsubscribe":
		b.state.Unsubscribe(chatID)
		b.send(ctx, chatID, "Unsubscribed.", nil)
	case data == "period":
		b.showPeriodMenu(ctx, chatID)
	case strings.HasPrefix(data, "period:"):
		sec, err := strconv.Atoi(strings.TrimPrefix(data, "period:"))
		if err != nil || sec < 60 {
			b.logger.Warn("ignoring bad period callback", zap.String("data", data))
			return
		}
		b.state.SetPeriod(chatID, sec)
		b.send(ctx, chatID, fmt.Sprintf("Push period set to %s.", (time.Duration(sec)*time.Second).String()), nil)
	default:
		b.logger.Debug("ignoring unknown callback", zap.String("data", data))
	}
}

func (b *Bot) showMainMenu(ctx context.Context, chatID int64) {
	var rows [][]inlineButton
	if b.state.Subscribed(chatID) {
		rows = [][]inlineButton{
			{{Text: "Unsubscribe", CallbackData: "unsubscribe"}},
			{{Text: "Change period", CallbackData: "period"}},
		}
	} else {
		rows = [][]inlineButton{
			{{Text: "Subscribe", CallbackData: "subscribe"}},
		}
	}
	b.send(ctx, chatID, "QA postings watch. What would you like to do?", &inlineKeyboard{InlineKeyboard: rows})
}

func (b *Bot) showPeriodMenu(ctx context.Context, chatID int64) {
	row := make([]inlineButton, 0, len(periodChoices))
	for _, p := range periodChoices {
		row = append(row, inlineButton{Text: p.label, CallbackData: "period:" + strconv.Itoa(p.sec)})
	}
	b.send(ctx, chatID, "How often should the summary arrive?", &inlineKeyboard{InlineKeyboard: [][]inlineButton{row}})
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, markup *inlineKeyboard) {
	if err := b.api.sendMessage(ctx, chatID, text, markup); err != nil {
		b.logger.Warn("sendMessage failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) scheduleLoop(ctx context.Context) {
	ticker := time.NewTicker(schedulerTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.pushDue(ctx, now.Unix())
		}
	}
}

// pushDue runs the pipeline once per tick and fans the summary out to every
// chat whose period elapsed. A failed run skips the tick; the schedule has
// already advanced, so a broken page does not hammer the site.
func (b *Bot) pushDue(ctx context.Context, nowUnix int64) {
	due := b.state.DueChats(nowUnix)
	if len(due) == 0 {
		return
	}
	summary, err := b.summer.Summarize(ctx)
	if err != nil {
		b.logger.Warn("summary run failed, skipping push", zap.Error(err))
		return
	}
	for _, chatID := range due {
		b.send(ctx, chatID, summary, nil)
	}
	if err := b.state.Save(); err != nil {
		b.logger.Warn("save state failed", zap.Error(err))
	}
}
