package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return truncateDay(now).AddDate(0, 0, offset) }

	totals := []DailyTotal{
		{Day: day(-5), Subject: "Maths", Seconds: 600, Sessions: 1},
		{Day: day(-2), Subject: "Maths", Seconds: 1200, Sessions: 1},
		{Day: day(-1), Subject: "History", Seconds: 1800, Sessions: 2},
		{Day: day(-1), Subject: "Maths", Seconds: 300, Sessions: 1},
		{Day: day(0), Subject: "History", Seconds: 0, Sessions: 1},
	}

	stats := ComputeStats(totals, now, 3)
	assert.Equal(t, int64(3900), stats.TotalSeconds)
	assert.Equal(t, 5, stats.SessionCount)
	assert.Equal(t, int64(0), stats.TodaySeconds)
	assert.Equal(t, 2, stats.StreakDays) // nothing today yet, so counted from yesterday
	assert.Equal(t, []SubjectTotal{{"Maths", 2100}, {"History", 1800}}, stats.BySubject)
	assert.Equal(t, []DayTotal{
		{Date: "2024-05-08", Seconds: 1200},
		{Date: "2024-05-09", Seconds: 2100},
		{Date: "2024-05-10", Seconds: 0},
	}, stats.Daily)
}

func TestComputeStats_streak(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 30, 0, 0, time.UTC)
	day := func(offset int) time.Time { return truncateDay(now).AddDate(0, 0, offset) }

	tests := []struct {
		name   string
		days   []int
		streak int
	}{
		{name: "none"},
		{name: "today only", days: []int{0}, streak: 1},
		{name: "broken", days: []int{0, -2, -3}, streak: 1},
		{name: "through today", days: []int{0, -1, -2}, streak: 3},
		{name: "ended before yesterday", days: []int{-2, -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var totals []DailyTotal
			for _, d := range tt.days {
				totals = append(totals, DailyTotal{Day: day(d), Subject: "Maths", Seconds: 60, Sessions: 1})
			}
			stats := ComputeStats(totals, now, 0)
			assert.Equal(t, tt.streak, stats.StreakDays)
			assert.Len(t, stats.Daily, DefaultStatsDays)
			assert.NotNil(t, stats.BySubject)
		})
	}
}
