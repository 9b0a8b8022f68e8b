// Package boiledrepos implements the aggregate reporting queries with sqlboiler raw queries.
package boiledrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/leaderboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

// epoch stands for "all time" in period filters.
var epoch = time.Unix(0, 0).UTC()

type reportRepository struct {
	exec core.DBExecutor
}

var ( // interface compliance checks
	_ leaderboard.Repository    = (*reportRepository)(nil)
	_ achievement.CounterSource = (*reportRepository)(nil)
	_ study.StatsRepository     = (*reportRepository)(nil)
)

func NewReportRepository(exec core.DBExecutor) *reportRepository {
	return &reportRepository{exec: exec}
}

type activityRow struct {
	StudentID            string `boil:"student_id"`
	Name                 string `boil:"name"`
	Username             string `boil:"username"`
	CompletedAssignments int    `boil:"completed_assignments"`
	FocusedSeconds       int64  `boil:"focused_seconds"`
}

func (repo reportRepository) QueryActivity(ctx context.Context, since time.Time) ([]leaderboard.Activity, error) {
	if since.IsZero() {
		since = epoch
	}
	q := `SELECT u.id AS student_id, u.name, COALESCE(u.username, '') AS username,
			(SELECT COUNT(*) FROM submissions s
				WHERE s.student_id = u.id AND s.submitted_at >= $2) AS completed_assignments,
			(SELECT COALESCE(SUM(ss.duration_seconds), 0) FROM study_sessions ss
				WHERE ss.student_id = u.id AND ss.ended_at IS NOT NULL AND ss.started_at >= $2) AS focused_seconds
		FROM users u
		WHERE u.is_active AND EXISTS (SELECT 1 FROM UNNEST(u.roles) user_role WHERE user_role LIKE $1)`

	var rows []activityRow
	if err := queries.Raw(q, user.RoleStudent+"%", since.UTC()).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying leaderboard activity")
	}
	activities := make([]leaderboard.Activity, 0, len(rows))
	for _, r := range rows {
		activities = append(activities, leaderboard.Activity{
			StudentID:            r.StudentID,
			Name:                 r.Name,
			Username:             r.Username,
			CompletedAssignments: r.CompletedAssignments,
			FocusedSeconds:       r.FocusedSeconds,
		})
	}
	return activities, nil
}

type countersRow struct {
	AssignmentsCompleted int   `boil:"assignments_completed"`
	StudySeconds         int64 `boil:"study_seconds"`
	StudySessions        int   `boil:"study_sessions"`
	DoubtsAsked          int   `boil:"doubts_asked"`
}

func (repo reportRepository) Counters(ctx context.Context, studentID string) (achievement.Counters, error) {
	q := `SELECT
			(SELECT COUNT(*) FROM submissions WHERE student_id = $1) AS assignments_completed,
			(SELECT COALESCE(SUM(duration_seconds), 0) FROM study_sessions
				WHERE student_id = $1 AND ended_at IS NOT NULL) AS study_seconds,
			(SELECT COUNT(*) FROM study_sessions
				WHERE student_id = $1 AND ended_at IS NOT NULL AND duration_seconds > 0) AS study_sessions,
			(SELECT COUNT(*) FROM doubts WHERE student_id = $1) AS doubts_asked`

	var r countersRow
	if err := queries.Raw(q, studentID).Bind(ctx, repo.exec, &r); err != nil {
		return achievement.Counters{}, errors.Wrap(err, "computing achievement counters")
	}
	return achievement.Counters(r), nil
}

type dailyTotalRow struct {
	Day      time.Time `boil:"day"`
	Subject  string    `boil:"subject"`
	Seconds  int64     `boil:"seconds"`
	Sessions int       `boil:"sessions"`
}

func (repo reportRepository) QueryDailyTotals(ctx context.Context, studentID string) ([]study.DailyTotal, error) {
	q := `SELECT date_trunc('day', started_at AT TIME ZONE 'UTC') AS day, subject,
			SUM(duration_seconds) AS seconds, COUNT(*) AS sessions
		FROM study_sessions
		WHERE student_id = $1 AND ended_at IS NOT NULL AND duration_seconds > 0
		GROUP BY 1, 2
		ORDER BY 1, 2`

	var rows []dailyTotalRow
	if err := queries.Raw(q, studentID).Bind(ctx, repo.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying study totals")
	}
	totals := make([]study.DailyTotal, 0, len(rows))
	for _, r := range rows {
		totals = append(totals, study.DailyTotal{
			Day:      r.Day.UTC(),
			Subject:  r.Subject,
			Seconds:  r.Seconds,
			Sessions: r.Sessions,
		})
	}
	return totals, nil
}
