// Package bot is the Telegram transport adapter: it stages incoming images
// into sessions, reacts to format choices, and delivers the converted
// archive.
package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hazuki-dev/picshift/api/eventhub"
	"github.com/hazuki-dev/picshift/convert"
	"github.com/hazuki-dev/picshift/session"
	"github.com/hazuki-dev/picshift/stats"
	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

// Bot wires the Telegram long-poll loop to the session store and pipeline.
type Bot struct {
	api       *tgbotapi.BotAPI
	cfg       *types.AppConfig
	store     *session.Store
	pipeline  *convert.Pipeline
	agg       *stats.Aggregator
	hub       *eventhub.Hub // optional, nil when the admin API is disabled
	presenter *Presenter

	queueMu sync.Mutex
	queues  map[int64]chan tgbotapi.Update
}

// New connects to the Bot API and builds the adapter.
func New(cfg *types.AppConfig, store *session.Store, pipeline *convert.Pipeline, agg *stats.Aggregator, hub *eventhub.Hub) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	b := &Bot{
		api:      api,
		cfg:      cfg,
		store:    store,
		pipeline: pipeline,
		agg:      agg,
		hub:      hub,
		queues:   make(map[int64]chan tgbotapi.Update),
	}
	b.presenter = NewPresenter(api, store)
	tool.DefaultLogger.Infof("[Bot] Authorized as @%s", api.Self.UserName)
	return b, nil
}

// Run polls for updates until the context is cancelled. Updates for
// different chats are handled concurrently; updates within one chat are
// delivered in order, one at a time.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			chatID, known := updateChatID(update)
			if !known {
				continue
			}
			b.enqueue(ctx, chatID, update)
		}
	}
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

// enqueue hands the update to the chat's worker goroutine, starting one on
// first use. The per-chat queue serializes handling within a chat.
func (b *Bot) enqueue(ctx context.Context, chatID int64, update tgbotapi.Update) {
	b.queueMu.Lock()
	q, ok := b.queues[chatID]
	if !ok {
		q = make(chan tgbotapi.Update, 16)
		b.queues[chatID] = q
		go b.chatWorker(ctx, chatID, q)
	}
	b.queueMu.Unlock()

	select {
	case q <- update:
	default:
		tool.DefaultLogger.Warnf("[Bot] Dropping update for chat %d, queue full", chatID)
	}
}

func (b *Bot) chatWorker(ctx context.Context, chatID int64, q chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-q:
			b.dispatch(ctx, chatID, update)
		}
	}
}

// dispatch routes one update, containing any panic so an unexpected failure
// in the orchestration path cannot poison the chat's next attempt.
func (b *Bot) dispatch(ctx context.Context, chatID int64, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			tool.DefaultLogger.Errorf("[Bot] Panic handling update for chat %d: %v", chatID, r)
			b.store.Clear(chatID)
			b.sendText(chatID, "Sorry, a critical error occurred during conversion. Please try again.")
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(update.Message)
	case update.Message != nil && len(update.Message.Photo) > 0:
		b.handlePhoto(update.Message)
	case update.Message != nil && update.Message.Document != nil:
		b.handleDocument(update.Message)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		tool.DefaultLogger.Errorf("[Bot] Failed to send message to chat %d: %v", chatID, err)
	}
}
