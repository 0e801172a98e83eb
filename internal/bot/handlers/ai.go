package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/nudge/internal/ai"
	"github.com/hray3182/nudge/internal/format"
	"github.com/hray3182/nudge/internal/recurrence"
	"github.com/hray3182/nudge/internal/reminders"
)

type pendingDraft struct {
	draft     *ai.Draft
	expiresAt time.Time
}

type pendingQuestion struct {
	text      string
	expiresAt time.Time
}

// draftStore holds AI drafts awaiting confirmation and the text of
// messages that got a follow-up question, per user.
type draftStore struct {
	mu        sync.Mutex
	drafts    map[int64]pendingDraft
	questions map[int64]pendingQuestion
}

func newDraftStore() *draftStore {
	return &draftStore{
		drafts:    make(map[int64]pendingDraft),
		questions: make(map[int64]pendingQuestion),
	}
}

func (s *draftStore) put(userID int64, d *ai.Draft, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	s.drafts[userID] = pendingDraft{draft: d, expiresAt: now.Add(draftTimeout)}
}

// take removes and returns the user's draft unless it has expired.
func (s *draftStore) take(userID int64, now time.Time) (*ai.Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.drafts[userID]
	delete(s.drafts, userID)
	if !ok || now.After(p.expiresAt) {
		return nil, false
	}
	return p.draft, true
}

func (s *draftStore) ask(userID int64, text string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	s.questions[userID] = pendingQuestion{text: text, expiresAt: now.Add(draftTimeout)}
}

// sweep drops expired entries of users who never replied. Callers hold mu.
func (s *draftStore) sweep(now time.Time) {
	for id, p := range s.drafts {
		if now.After(p.expiresAt) {
			delete(s.drafts, id)
		}
	}
	for id, q := range s.questions {
		if now.After(q.expiresAt) {
			delete(s.questions, id)
		}
	}
}

// withContext prefixes text with the message that led to an open
// follow-up question, consuming it.
func (s *draftStore) withContext(userID int64, text string, now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[userID]
	delete(s.questions, userID)
	if !ok || now.After(q.expiresAt) {
		return text
	}
	return q.text + "\n" + text
}

func (h *Handlers) handleAIMessage(ctx context.Context, msg *tgbotapi.Message) {
	if h.ai == nil {
		h.sendMessage(msg.Chat.ID, "Natural-language reminders are not enabled. Use /remind instead, see /help.")
		return
	}

	h.debug("Incoming message", "from", msg.From.FirstName, "username", msg.From.UserName, "text", msg.Text)

	if h.handleConfirmationResponse(ctx, msg) {
		return
	}

	now := time.Now()
	text := h.drafts.withContext(msg.From.ID, msg.Text, now)
	settings := h.settings(ctx, msg.From.ID)

	draft, err := h.ai.ParseReminder(ctx, text, now, settings.Location())
	if err != nil {
		log.Printf("Failed to parse reminder with AI: %v", err)
		h.sendMessage(msg.Chat.ID, "Sorry, I couldn't understand that. Try /remind <when> <title>.")
		return
	}
	h.debug("AI draft", "title", draft.Title, "due", draft.DueAt, "rule", recurrence.Shorthand(draft.Rule))

	if draft.NeedsMoreInfo() {
		h.drafts.ask(msg.From.ID, text, now)
		h.sendMessage(msg.Chat.ID, draft.FollowUp)
		return
	}

	h.drafts.put(msg.From.ID, draft, now)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Create", callbackDraftConfirm),
		tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", callbackDraftCancel),
	))
	h.sendFormatted(msg.Chat.ID, draftPreview(draft, now, settings.Location()), keyboard)
}

// handleConfirmationResponse lets the user answer a draft with yes or no
// instead of the buttons.
func (h *Handlers) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message) bool {
	text := strings.ToLower(strings.TrimSpace(msg.Text))
	isConfirm := text == "yes" || text == "y" || text == "ok"
	isCancel := text == "no" || text == "n" || text == "cancel"
	if !isConfirm && !isCancel {
		return false
	}

	draft, ok := h.drafts.take(msg.From.ID, time.Now())
	if !ok {
		return false
	}
	if isCancel {
		h.sendMessage(msg.Chat.ID, "Cancelled.")
		return true
	}

	m, err := h.createFromDraft(ctx, msg.From.ID, draft)
	if err != nil {
		h.replyError(msg.Chat.ID, "create", err)
		return true
	}
	h.sendFormatted(msg.Chat.ID, m, nil)
	return true
}

func (h *Handlers) handleDraftCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, action string) {
	chatID := callback.Message.Chat.ID
	messageID := callback.Message.MessageID

	draft, ok := h.drafts.take(callback.From.ID, time.Now())
	if !ok {
		h.answerCallback(callback.ID, "")
		h.editFormatted(chatID, messageID, format.Message{Text: "⏰ This draft has expired."})
		return
	}

	if action == callbackDraftCancel {
		h.answerCallback(callback.ID, "Cancelled")
		h.editFormatted(chatID, messageID, format.Message{Text: "❌ Cancelled."})
		return
	}

	m, err := h.createFromDraft(ctx, callback.From.ID, draft)
	if err != nil {
		h.answerCallbackWithAlert(callback.ID, errorText("create", err))
		return
	}
	h.answerCallback(callback.ID, "Created")
	h.editFormatted(chatID, messageID, m)
}

func (h *Handlers) createFromDraft(ctx context.Context, userID int64, draft *ai.Draft) (format.Message, error) {
	reminder, err := h.service.Create(ctx, reminders.NewReminder{
		UserID: userID,
		Title:  draft.Title,
		Notes:  draft.Notes,
		DueAt:  draft.DueAt,
		Rule:   draft.Rule,
	})
	if err != nil {
		return format.Message{}, err
	}
	h.notify()

	var b format.Builder
	b.Text("⏰ Reminder set: ").Bold(reminder.Title).Line()
	b.Code("#" + strconv.Itoa(reminder.ReminderID))
	return b.Message(), nil
}

func draftPreview(d *ai.Draft, now time.Time, loc *time.Location) format.Message {
	var b format.Builder
	b.Text("Create this reminder?").Line().Line()
	b.Bold(d.Title).Line()
	if d.Notes != "" {
		b.Italic(d.Notes).Line()
	}
	b.Text("Due: " + format.DueTime(d.DueAt, now, loc)).Line()
	if recurrence.IsRecurring(d.Rule) {
		b.Text("🔁 " + recurrence.Describe(d.Rule, d.DueAt.In(loc))).Line()
	}
	return b.Message()
}
