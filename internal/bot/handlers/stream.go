package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/hray3182/nudge/internal/format"
	"github.com/hray3182/nudge/internal/reminders"
)

func (h *Handlers) handleStreams(ctx context.Context, msg *tgbotapi.Message) {
	list, err := h.service.ListStreams(ctx)
	if err != nil {
		log.Printf("Failed to list streams: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to list streams, please try again later.")
		return
	}
	h.sendFormatted(msg.Chat.ID, format.StreamList(list), nil)
}

func (h *Handlers) handleSubscribe(ctx context.Context, msg *tgbotapi.Message) {
	streamID, err := uuid.Parse(strings.TrimSpace(msg.CommandArguments()))
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: /subscribe <stream-id>\nUse /streams to find one.")
		return
	}

	created, err := h.service.ImportStream(ctx, msg.From.ID, streamID)
	if errors.Is(err, reminders.ErrStreamNotFound) {
		h.sendMessage(msg.Chat.ID, "Stream not found. Use /streams to see what's available.")
		return
	}
	if err != nil {
		log.Printf("Failed to import stream %s: %v", streamID, err)
		h.sendMessage(msg.Chat.ID, "Failed to subscribe, please try again later.")
		return
	}
	h.notify()

	settings := h.settings(ctx, msg.From.ID)
	list := format.ReminderList(created, time.Now(), settings.Location())
	h.sendMessage(msg.Chat.ID, "✅ Subscribed. Added these reminders:")
	h.sendFormatted(msg.Chat.ID, list, nil)
}
