package bot

import (
	"context"
	"sync"

	"beautybot/services/booking"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the Telegram front-end. It owns the long-polling loop and hands
// every update to one handler goroutine. Updates for the same chat are
// serialized through a per-chat lock, so a second tap always observes the
// session state the first tap saved; independent conversations never block
// each other.
type Bot struct {
	api    *tgbotapi.BotAPI
	flow   booking.FlowService
	logger *zap.Logger

	mu        sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

// New connects to the Telegram API with the given token.
func New(token string, flow booking.FlowService, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))
	return &Bot{api: api, flow: flow, logger: logger, chatLocks: make(map[int64]*sync.Mutex)}, nil
}

func (b *Bot) chatLock(chatID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		b.chatLocks[chatID] = lock
	}
	return lock
}

// updateChatID extracts the conversation key of an update; 0 when the update
// carries no chat.
func updateChatID(update tgbotapi.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling update", zap.Any("panic", r))
		}
	}()

	// One update at a time per chat. Without this, a double-tapped confirm
	// runs twice against pre-commit copies of the session and the loser is
	// told their own booking failed.
	if chatID := updateChatID(update); chatID != 0 {
		lock := b.chatLock(chatID)
		lock.Lock()
		defer lock.Unlock()
	}

	switch {
	case update.Message != nil && update.Message.Contact != nil:
		b.handleContact(ctx, update.Message)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Int64("chatId", chatID), zap.Error(err))
	}
}

func (b *Bot) sendWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Int64("chatId", chatID), zap.Error(err))
	}
}

func (b *Bot) ackCallback(id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		b.logger.Warn("failed to ack callback", zap.Error(err))
	}
}
