// Package dashboard aggregates the home page figures of a student or a teacher in one call.
package dashboard

import (
	"context"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/leaderboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

const (
	MaxPending           = 10
	MaxRecentSubmissions = 10
)

type (
	Assignments interface {
		QueryPending(ctx context.Context, student user.User) ([]assignment.Assignment, error)
		QueryAuthored(ctx context.Context, teacher user.User) ([]assignment.Assignment, error)
	}

	Submissions interface {
		QueryOwn(ctx context.Context, student user.User) ([]submission.Submission, error)
		QueryReceived(ctx context.Context, teacher user.User, limit int) ([]submission.Submission, error)
	}

	Doubts interface {
		QueryOwn(ctx context.Context, student user.User, filter doubt.QueryFilter) ([]doubt.Doubt, error)
		QueryOnAuthored(ctx context.Context, teacher user.User, filter doubt.QueryFilter) ([]doubt.Doubt, error)
	}

	Study interface {
		Stats(ctx context.Context, student user.User, days int) (study.Stats, error)
	}

	Leaderboard interface {
		Board(ctx context.Context, actor user.User, period leaderboard.Period, limit int) (leaderboard.Board, error)
	}

	Achievements interface {
		List(ctx context.Context, student user.User) ([]achievement.Badge, error)
	}
)

type (
	StudentDashboard struct {
		PendingAssignments   []assignment.Assignment `json:"pending_assignments"`
		PendingCount         int                     `json:"pending_count"`
		CompletedAssignments int                     `json:"completed_assignments"`
		TotalFocusedSeconds  int64                   `json:"total_focused_seconds"`
		TodayFocusedSeconds  int64                   `json:"today_focused_seconds"`
		StreakDays           int                     `json:"streak_days"`
		OpenDoubts           int                     `json:"open_doubts"`
		Standing             *leaderboard.Standing   `json:"standing"`
		Achievements         []achievement.Badge     `json:"achievements"` // unlocked only
	}

	TeacherDashboard struct {
		AssignmentsAuthored int                     `json:"assignments_authored"`
		SubmissionsReceived int                     `json:"submissions_received"`
		UnresolvedDoubts    int                     `json:"unresolved_doubts"`
		RecentSubmissions   []submission.Submission `json:"recent_submissions"`
	}

	Dashboard struct {
		Student *StudentDashboard `json:"student,omitempty"`
		Teacher *TeacherDashboard `json:"teacher,omitempty"`
	}

	Service struct {
		assignments  Assignments
		submissions  Submissions
		doubts       Doubts
		study        Study
		leaderboard  Leaderboard
		achievements Achievements
	}
)

func NewService(
	assignments Assignments,
	submissions Submissions,
	doubts Doubts,
	study Study,
	leaderboard Leaderboard,
	achievements Achievements,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(assignments, "assignments"),
		vala.IsNotNil(submissions, "submissions"),
		vala.IsNotNil(doubts, "doubts"),
		vala.IsNotNil(study, "study"),
		vala.IsNotNil(leaderboard, "leaderboard"),
		vala.IsNotNil(achievements, "achievements"),
	).CheckAndPanic()
	return &Service{
		assignments:  assignments,
		submissions:  submissions,
		doubts:       doubts,
		study:        study,
		leaderboard:  leaderboard,
		achievements: achievements,
	}
}

// Get returns the student variant for students and the teacher variant for teachers and admins.
// A user holding both roles gets both.
func (svc *Service) Get(ctx context.Context, actor user.User) (Dashboard, error) {
	var (
		dash Dashboard
		err  error
	)
	if actor.IsStudent() {
		if dash.Student, err = svc.forStudent(ctx, actor); err != nil {
			return Dashboard{}, err
		}
	}
	if actor.CanTeach() {
		if dash.Teacher, err = svc.forTeacher(ctx, actor); err != nil {
			return Dashboard{}, err
		}
	}
	if dash.Student == nil && dash.Teacher == nil {
		return Dashboard{}, core.ErrForbidden
	}
	return dash, nil
}

func (svc *Service) forStudent(ctx context.Context, student user.User) (*StudentDashboard, error) {
	// evaluation first, so that the counters below include what it unlocks
	badges, err := svc.achievements.List(ctx, student)
	if err != nil {
		return nil, errors.Wrap(err, "listing achievements")
	}

	pending, err := svc.assignments.QueryPending(ctx, student)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending assignments")
	}
	subs, err := svc.submissions.QueryOwn(ctx, student)
	if err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	stats, err := svc.study.Stats(ctx, student, study.DefaultStatsDays)
	if err != nil {
		return nil, errors.Wrap(err, "computing study stats")
	}
	unresolved := false
	open, err := svc.doubts.QueryOwn(ctx, student, doubt.QueryFilter{IsResolved: &unresolved})
	if err != nil {
		return nil, errors.Wrap(err, "querying doubts")
	}
	board, err := svc.leaderboard.Board(ctx, student, leaderboard.PeriodAll, 1)
	if err != nil {
		return nil, errors.Wrap(err, "ranking students")
	}

	dash := &StudentDashboard{
		PendingAssignments:   pending,
		PendingCount:         len(pending),
		CompletedAssignments: len(subs),
		TotalFocusedSeconds:  stats.TotalSeconds,
		TodayFocusedSeconds:  stats.TodaySeconds,
		StreakDays:           stats.StreakDays,
		OpenDoubts:           len(open),
		Standing:             board.Me,
		Achievements:         make([]achievement.Badge, 0, len(badges)),
	}
	if len(dash.PendingAssignments) > MaxPending {
		dash.PendingAssignments = dash.PendingAssignments[:MaxPending]
	}
	for _, b := range badges {
		if b.Unlocked {
			dash.Achievements = append(dash.Achievements, b)
		}
	}
	return dash, nil
}

func (svc *Service) forTeacher(ctx context.Context, teacher user.User) (*TeacherDashboard, error) {
	authored, err := svc.assignments.QueryAuthored(ctx, teacher)
	if err != nil {
		return nil, errors.Wrap(err, "querying authored assignments")
	}
	received, err := svc.submissions.QueryReceived(ctx, teacher, 0)
	if err != nil {
		return nil, errors.Wrap(err, "querying received submissions")
	}
	unresolved := false
	open, err := svc.doubts.QueryOnAuthored(ctx, teacher, doubt.QueryFilter{IsResolved: &unresolved})
	if err != nil {
		return nil, errors.Wrap(err, "querying doubts")
	}

	dash := &TeacherDashboard{
		AssignmentsAuthored: len(authored),
		SubmissionsReceived: len(received),
		UnresolvedDoubts:    len(open),
		RecentSubmissions:   received,
	}
	if len(dash.RecentSubmissions) > MaxRecentSubmissions {
		dash.RecentSubmissions = dash.RecentSubmissions[:MaxRecentSubmissions]
	}
	return dash, nil
}
