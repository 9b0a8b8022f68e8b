package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/leaderboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
)

type reportRepository struct {
	db *DB
}

var ( // interface compliance checks
	_ leaderboard.Repository    = (*reportRepository)(nil)
	_ achievement.CounterSource = (*reportRepository)(nil)
	_ study.StatsRepository     = (*reportRepository)(nil)
)

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) QueryActivity(_ context.Context, since time.Time) ([]leaderboard.Activity, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	byStudent := make(map[string]*leaderboard.Activity)
	for _, usr := range repo.db.users {
		if usr.IsActive && usr.IsStudent() {
			byStudent[usr.ID] = &leaderboard.Activity{StudentID: usr.ID, Name: usr.Name, Username: usr.Username}
		}
	}
	for _, s := range repo.db.submissions {
		if a, ok := byStudent[s.StudentID]; ok && !s.SubmittedAt.Before(since) {
			a.CompletedAssignments++
		}
	}
	for _, s := range repo.db.sessions {
		if a, ok := byStudent[s.StudentID]; ok && !s.IsOpen() && !s.StartedAt.Before(since) {
			a.FocusedSeconds += s.DurationSeconds
		}
	}

	activities := make([]leaderboard.Activity, 0, len(byStudent))
	for _, a := range byStudent {
		activities = append(activities, *a)
	}
	sort.Slice(activities, func(i, j int) bool { return activities[i].StudentID < activities[j].StudentID })
	return activities, nil
}

func (repo *reportRepository) Counters(_ context.Context, studentID string) (achievement.Counters, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var c achievement.Counters
	for k := range repo.db.submissions {
		if k[1] == studentID {
			c.AssignmentsCompleted++
		}
	}
	for _, s := range repo.db.sessions {
		if s.StudentID != studentID || s.IsOpen() {
			continue
		}
		c.StudySeconds += s.DurationSeconds
		if s.DurationSeconds > 0 {
			c.StudySessions++
		}
	}
	for _, d := range repo.db.doubts {
		if d.StudentID == studentID {
			c.DoubtsAsked++
		}
	}
	return c, nil
}

func (repo *reportRepository) QueryDailyTotals(_ context.Context, studentID string) ([]study.DailyTotal, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	type key struct {
		day     time.Time
		subject string
	}
	byKey := make(map[key]*study.DailyTotal)
	for _, s := range repo.db.sessions {
		if s.StudentID != studentID || s.IsOpen() || s.DurationSeconds <= 0 {
			continue
		}
		y, m, d := s.StartedAt.UTC().Date()
		k := key{day: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), subject: s.Subject}
		t, ok := byKey[k]
		if !ok {
			t = &study.DailyTotal{Day: k.day, Subject: k.subject}
			byKey[k] = t
		}
		t.Seconds += s.DurationSeconds
		t.Sessions++
	}

	totals := make([]study.DailyTotal, 0, len(byKey))
	for _, t := range byKey {
		totals = append(totals, *t)
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Day.Equal(totals[j].Day) {
			return totals[i].Day.Before(totals[j].Day)
		}
		return totals[i].Subject < totals[j].Subject
	})
	return totals, nil
}
