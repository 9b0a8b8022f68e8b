package study

import (
	"sort"
	"time"
)

const (
	DefaultStatsDays = 7
	MaxStatsDays     = 366

	dateLayout = "2006-01-02"
)

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeStats builds a student's statistics from daily totals, at now, over the last days days.
// Sessions without focused time do not count.
func ComputeStats(totals []DailyTotal, now time.Time, days int) Stats {
	if days <= 0 {
		days = DefaultStatsDays
	}
	today := truncateDay(now)

	stats := Stats{BySubject: []SubjectTotal{}, Daily: make([]DayTotal, days)}
	bySubject := make(map[string]int64)
	byDay := make(map[string]int64)
	for _, t := range totals {
		if t.Seconds <= 0 {
			continue
		}
		stats.TotalSeconds += t.Seconds
		stats.SessionCount += t.Sessions
		bySubject[t.Subject] += t.Seconds
		byDay[truncateDay(t.Day).Format(dateLayout)] += t.Seconds
	}

	for subject, secs := range bySubject {
		stats.BySubject = append(stats.BySubject, SubjectTotal{Subject: subject, Seconds: secs})
	}
	sort.Slice(stats.BySubject, func(i, j int) bool {
		if stats.BySubject[i].Seconds != stats.BySubject[j].Seconds {
			return stats.BySubject[i].Seconds > stats.BySubject[j].Seconds
		}
		return stats.BySubject[i].Subject < stats.BySubject[j].Subject
	})

	// oldest first
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format(dateLayout)
		stats.Daily[i] = DayTotal{Date: date, Seconds: byDay[date]}
	}

	stats.TodaySeconds = byDay[today.Format(dateLayout)]
	stats.StreakDays = streak(byDay, today)
	return stats
}

// streak counts consecutive study days ending today, or yesterday when nothing was logged today yet.
func streak(byDay map[string]int64, today time.Time) int {
	day := today
	if byDay[day.Format(dateLayout)] == 0 {
		day = day.AddDate(0, 0, -1)
	}
	var n int
	for byDay[day.Format(dateLayout)] > 0 {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}
