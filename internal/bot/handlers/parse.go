package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hray3182/nudge/internal/format"
	"github.com/hray3182/nudge/internal/recurrence"
	"github.com/hray3182/nudge/internal/reminders"
)

var (
	errUsage   = errors.New("usage")
	errBadWhen = errors.New("unrecognized time")
)

const (
	callbackDraftConfirm        = "draft_confirm"
	callbackDraftCancel         = "draft_cancel"
	callbackToggleNotifications = "notifications_toggle"
)

// remindArgs is the parsed form of "/remind <when> [rule] <title>".
type remindArgs struct {
	dueAt time.Time
	rule  recurrence.Rule
	title string
}

func parseRemindArgs(args string, now time.Time, loc *time.Location) (remindArgs, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return remindArgs{}, errUsage
	}

	dueAt, err := parseWhen(fields[0], now, loc)
	if err != nil {
		return remindArgs{}, err
	}

	out := remindArgs{dueAt: dueAt, rule: recurrence.NoRecurrence()}
	rest := fields[1:]
	if len(rest) > 1 {
		if rule, err := recurrence.ParseShorthand(rest[0]); err == nil {
			out.rule = rule
			rest = rest[1:]
		}
	}
	out.title = strings.Join(rest, " ")
	return out, nil
}

// parseWhen accepts "15:04" (today, or tomorrow once passed),
// "2006-01-02T15:04", "2006-01-02" (09:00) and offsets like "+30m", "+2h",
// "+1d".
func parseWhen(s string, now time.Time, loc *time.Location) (time.Time, error) {
	now = now.In(loc)

	if rest, ok := strings.CutPrefix(s, "+"); ok {
		if days, ok := strings.CutSuffix(rest, "d"); ok {
			n, err := strconv.Atoi(days)
			if err != nil || n <= 0 {
				return time.Time{}, fmt.Errorf("%w: %q", errBadWhen, s)
			}
			return now.AddDate(0, 0, n), nil
		}
		d, err := time.ParseDuration(rest)
		if err != nil || d <= 0 {
			return time.Time{}, fmt.Errorf("%w: %q", errBadWhen, s)
		}
		return now.Add(d).Truncate(time.Minute), nil
	}

	if t, err := time.Parse("15:04", s); err == nil {
		result := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		// If time already passed today, set for tomorrow
		if !result.After(now) {
			result = result.AddDate(0, 0, 1)
		}
		return result, nil
	}

	if t, err := time.ParseInLocation("2006-01-02T15:04", s, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 9, 0, 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", errBadWhen, s)
}

type callbackData struct {
	action     string
	reminderID int
	minutes    int
}

// parseCallback decodes "done:<id>", "snooze:<id>:<minutes>",
// and the bare draft and settings actions.
func parseCallback(data string) (callbackData, error) {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case callbackDraftConfirm, callbackDraftCancel, callbackToggleNotifications:
		if len(parts) != 1 {
			break
		}
		return callbackData{action: parts[0]}, nil
	case format.CallbackDone:
		if len(parts) != 2 {
			break
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			return callbackData{}, err
		}
		return callbackData{action: parts[0], reminderID: id}, nil
	case format.CallbackSnooze:
		if len(parts) != 3 {
			break
		}
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			return callbackData{}, err
		}
		mins, err := strconv.Atoi(parts[2])
		if err != nil {
			return callbackData{}, err
		}
		return callbackData{action: parts[0], reminderID: id, minutes: mins}, nil
	}
	return callbackData{}, fmt.Errorf("unknown callback %q", data)
}

// parseID reads a reminder ID such as "12" or "#12".
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid reminder id %q", s)
	}
	return id, nil
}

// parseSnoozePresets reads "10,60,180". At most four positive values.
func parseSnoozePresets(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 || n > reminders.MaxSnoozeMinutes {
			return nil, fmt.Errorf("invalid minutes %q", part)
		}
		out = append(out, n)
	}
	if len(out) == 0 || len(out) > 4 {
		return nil, errors.New("give between one and four presets")
	}
	return out, nil
}
