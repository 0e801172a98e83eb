package recurrence

import (
	"encoding/json"
	"fmt"
)

// Record is the persisted shape of a rule. Fields that do not apply to
// Kind are left empty.
type Record struct {
	Kind       Kind  `json:"kind"`
	Interval   int   `json:"interval,omitempty"`
	Weekdays   []int `json:"weekdays,omitempty"`
	DayOfMonth *int  `json:"dayOfMonth,omitempty"`
}

// ToRecord flattens a rule. A nil rule becomes a none record.
func ToRecord(rule Rule) Record {
	if rule == nil {
		return Record{Kind: KindNone}
	}
	rec := Record{Kind: rule.Kind()}
	switch r := rule.(type) {
	case None, Weekdays:
		return rec
	case Weekly:
		for _, d := range r.Weekdays() {
			rec.Weekdays = append(rec.Weekdays, int(d))
		}
	case Monthly:
		if d, ok := r.dayOfMonth.Get(); ok {
			rec.DayOfMonth = &d
		}
	}
	rec.Interval = rule.Interval()
	return rec
}

// Rule validates the record and builds the matching rule. A missing
// interval means 1.
func (rec Record) Rule() (Rule, error) {
	interval := rec.Interval
	if interval == 0 {
		interval = 1
	}
	switch rec.Kind {
	case KindNone, "":
		return None{}, nil
	case KindDaily:
		return NewDaily(interval)
	case KindWeekly:
		days := make([]Weekday, len(rec.Weekdays))
		for i, d := range rec.Weekdays {
			days[i] = Weekday(d)
		}
		return NewWeekly(interval, days...)
	case KindWeekdays:
		return Weekdays{}, nil
	case KindMonthly:
		if rec.DayOfMonth != nil {
			return NewMonthly(interval, *rec.DayOfMonth)
		}
		return NewMonthlyOnAnchorDay(interval)
	case KindHourly:
		return NewHourly(interval)
	case KindMinutely:
		return NewMinutely(interval)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, rec.Kind)
}

// Marshal encodes a rule as its JSON record.
func Marshal(rule Rule) ([]byte, error) {
	return json.Marshal(ToRecord(rule))
}

// Unmarshal decodes and validates a JSON record. Empty input and JSON
// null decode to None.
func Unmarshal(data []byte) (Rule, error) {
	if len(data) == 0 || string(data) == "null" {
		return None{}, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode recurrence: %w", err)
	}
	return rec.Rule()
}

// Value lets a Rule sit in a JSON-tagged struct field.
type Value struct {
	Rule Rule
}

func (v Value) MarshalJSON() ([]byte, error) {
	return Marshal(v.Rule)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	rule, err := Unmarshal(data)
	if err != nil {
		return err
	}
	v.Rule = rule
	return nil
}

// Get returns the wrapped rule, defaulting to None.
func (v Value) Get() Rule {
	if v.Rule == nil {
		return None{}
	}
	return v.Rule
}
