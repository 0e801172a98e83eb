package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	calls []string
}

func (r *recorder) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	r.calls = append(r.calls, "command:"+msg.Command())
}

func (r *recorder) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	r.calls = append(r.calls, "message:"+msg.Text)
}

func (r *recorder) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	r.calls = append(r.calls, "callback:"+callback.Data)
}

func TestRoute(t *testing.T) {
	command := &tgbotapi.Message{
		Text:     "/done 3",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}},
	}

	tests := []struct {
		name   string
		update tgbotapi.Update
		want   []string
	}{
		{"command", tgbotapi.Update{Message: command}, []string{"command:done"}},
		{"text", tgbotapi.Update{Message: &tgbotapi.Message{Text: "remind me at 6"}}, []string{"message:remind me at 6"}},
		{"callback", tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{Data: "done:3"}}, []string{"callback:done:3"}},
		{"photo without text", tgbotapi.Update{Message: &tgbotapi.Message{}}, nil},
		{"empty", tgbotapi.Update{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			route(context.Background(), r, tt.update)
			assert.Equal(t, tt.want, r.calls)
		})
	}
}
