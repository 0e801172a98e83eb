package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hray3182/nudge/internal/recurrence"
)

var ErrNoTitle = errors.New("no reminder title in AI response")

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Draft is a reminder parsed from free text, pending user confirmation.
type Draft struct {
	Title    string
	Notes    string
	DueAt    time.Time
	Rule     recurrence.Rule
	FollowUp string // set when the text lacked a title or time
}

// NeedsMoreInfo reports whether the user must be asked a follow-up question.
func (d *Draft) NeedsMoreInfo() bool {
	return d.FollowUp != ""
}

type draftResponse struct {
	Title      string          `json:"title"`
	Notes      string          `json:"notes"`
	DueAt      string          `json:"due_at"`
	Recurrence draftRecurrence `json:"recurrence"`
	NeedMore   bool            `json:"need_more_info"`
	FollowUp   string          `json:"follow_up_prompt"`
}

type draftRecurrence struct {
	Kind       string `json:"kind"`
	Interval   int    `json:"interval"`
	Weekdays   []int  `json:"weekdays"`
	DayOfMonth int    `json:"day_of_month"`
}

const systemPromptTemplate = `You turn a user's message into a reminder.

Current time: %s (timezone %s)

Rules:
1. Resolve relative times ("tomorrow", "next Monday", "in 3 hours") against the current time and
   output due_at as YYYY-MM-DD HH:MM in the user's timezone. Without a time of day use 09:00.
2. recurrence.kind is one of none, daily, weekly, weekdays, monthly, hourly, minutely.
   - interval: repeat every N units, 1 when not stated.
   - weekdays: for weekly rules, ISO numbers 1=Monday .. 7=Sunday; empty repeats on due_at's weekday.
   - day_of_month: for monthly rules, 1-31; 0 repeats on due_at's day.
   "Every weekday" or "Monday to Friday" is kind weekdays.
3. title is short and imperative, without the time words. notes holds any extra detail.
4. If the message has no clear task or no time, set need_more_info = true and ask one short question
   in follow_up_prompt.`

var draftSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"notes": {"type": "string"},
		"due_at": {"type": "string", "description": "YYYY-MM-DD HH:MM in the user's timezone"},
		"recurrence": {
			"type": "object",
			"properties": {
				"kind": {"type": "string", "enum": ["none", "daily", "weekly", "weekdays", "monthly", "hourly", "minutely"]},
				"interval": {"type": "integer", "minimum": 1},
				"weekdays": {"type": "array", "items": {"type": "integer", "minimum": 1, "maximum": 7}},
				"day_of_month": {"type": "integer", "minimum": 0, "maximum": 31}
			},
			"required": ["kind", "interval", "weekdays", "day_of_month"],
			"additionalProperties": false
		},
		"need_more_info": {"type": "boolean"},
		"follow_up_prompt": {"type": "string"}
	},
	"required": ["title", "notes", "due_at", "recurrence", "need_more_info", "follow_up_prompt"],
	"additionalProperties": false
}`)

// ParseReminder asks the model for a reminder draft. now and loc resolve
// relative times.
func (c *Client) ParseReminder(ctx context.Context, userMessage string, now time.Time, loc *time.Location) (*Draft, error) {
	now = now.In(loc)
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday)"), loc.String()),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userMessage,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "reminder",
				Schema: draftSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	return parseDraft(resp.Choices[0].Message.Content, loc)
}

func parseDraft(content string, loc *time.Location) (*Draft, error) {
	var resp draftResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	if resp.NeedMore {
		followUp := strings.TrimSpace(resp.FollowUp)
		if followUp == "" {
			followUp = "What should I remind you about, and when?"
		}
		return &Draft{FollowUp: followUp}, nil
	}

	title := strings.TrimSpace(resp.Title)
	if title == "" {
		return nil, ErrNoTitle
	}

	dueAt, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(resp.DueAt), loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse due time %q: %w", resp.DueAt, err)
	}

	rec := recurrence.Record{
		Kind:     recurrence.Kind(resp.Recurrence.Kind),
		Interval: resp.Recurrence.Interval,
		Weekdays: resp.Recurrence.Weekdays,
	}
	if rec.Kind == recurrence.KindMonthly && resp.Recurrence.DayOfMonth > 0 {
		d := resp.Recurrence.DayOfMonth
		rec.DayOfMonth = &d
	}
	rule, err := rec.Rule()
	if err != nil {
		return nil, fmt.Errorf("invalid recurrence in AI response: %w", err)
	}

	return &Draft{
		Title: title,
		Notes: strings.TrimSpace(resp.Notes),
		DueAt: dueAt,
		Rule:  rule,
	}, nil
}
