package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	anchor := at("2024-01-01T08:15:00") // Monday

	tests := []struct {
		rule Rule
		want string
	}{
		{NoRecurrence(), "Once"},
		{mustRule(NewDaily(1)), "Every day at 08:15"},
		{mustRule(NewDaily(3)), "Every 3 days at 08:15"},
		{EveryWeekday(), "Every weekday at 08:15"},
		{mustRule(NewWeekly(1)), "Every week on Mon at 08:15"},
		{mustRule(NewWeekly(2, Wednesday, Friday)), "Every 2 weeks on Wed, Fri at 08:15"},
		{mustRule(NewMonthlyOnAnchorDay(1)), "Every month on day 1 at 08:15"},
		{mustRule(NewMonthly(2, 31)), "Every 2 months on day 31 at 08:15"},
		{mustRule(NewHourly(1)), "Every hour at :15"},
		{mustRule(NewHourly(6)), "Every hour at :15"},
		{mustRule(NewMinutely(1)), "Every minute"},
		{mustRule(NewMinutely(20)), "Every minute"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.rule, anchor))
		})
	}
}
