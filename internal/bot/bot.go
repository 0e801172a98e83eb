package bot

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler is implemented by handlers.Handlers.
type UpdateHandler interface {
	HandleCommand(ctx context.Context, msg *tgbotapi.Message)
	HandleMessage(ctx context.Context, msg *tgbotapi.Message)
	HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery)
}

type Bot struct {
	api      *tgbotapi.BotAPI
	handlers UpdateHandler
}

func New(api *tgbotapi.BotAPI, h UpdateHandler) *Bot {
	return &Bot{
		api:      api,
		handlers: h,
	}
}

// Start long-polls Telegram and handles each update in its own goroutine
// until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			go route(ctx, b.handlers, update)
		}
	}
}

func route(ctx context.Context, h UpdateHandler, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.HandleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message == nil:
	case update.Message.IsCommand():
		h.HandleCommand(ctx, update.Message)
	case update.Message.Text != "":
		h.HandleMessage(ctx, update.Message)
	}
}
