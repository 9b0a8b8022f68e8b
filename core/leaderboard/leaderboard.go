// Package leaderboard ranks students by points earned from completed assignments and study time.
package leaderboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"

	DefaultLimit = 10
	MaxLimit     = 100
)

var NowFunc = time.Now // mockable

// ParsePeriod returns PeriodAll for an empty string.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodAll, nil
	case PeriodAll, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", core.NewValidationError(nil, core.FieldError{Field: "period", Error: "period must be one of all, week, month"})
}

// Since is the start of the period at now; zero for PeriodAll.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

// Activity is a student's raw figures over a period.
type Activity struct {
	StudentID            string
	Name                 string
	Username             string
	CompletedAssignments int
	FocusedSeconds       int64
}

type Standing struct {
	Rank                 int    `json:"rank"`
	StudentID            string `json:"student_id"`
	Name                 string `json:"name"`
	Username             string `json:"username"`
	Points               int    `json:"points"`
	CompletedAssignments int    `json:"completed_assignments"`
	FocusedSeconds       int64  `json:"focused_seconds"`
}

type Board struct {
	Period    Period     `json:"period"`
	Standings []Standing `json:"standings"`
	// Me is the caller's standing, nil for non-students.
	Me *Standing `json:"me"`
}

type Scoring struct {
	PointsPerAssignment int
	PointsPerStudyHour  int
}

func (s Scoring) Points(a Activity) int {
	return s.PointsPerAssignment*a.CompletedAssignments + s.PointsPerStudyHour*int(a.FocusedSeconds/3600)
}

// Rank orders activities by points desc, focused seconds desc, then name asc.
// Students tied on points and focused seconds share a rank (1, 2, 2, 4).
func Rank(activities []Activity, scoring Scoring) []Standing {
	standings := make([]Standing, 0, len(activities))
	for _, a := range activities {
		standings = append(standings, Standing{
			StudentID:            a.StudentID,
			Name:                 a.Name,
			Username:             a.Username,
			Points:               scoring.Points(a),
			CompletedAssignments: a.CompletedAssignments,
			FocusedSeconds:       a.FocusedSeconds,
		})
	}

	sort.SliceStable(standings, func(i, j int) bool {
		si, sj := standings[i], standings[j]
		if si.Points != sj.Points {
			return si.Points > sj.Points
		}
		if si.FocusedSeconds != sj.FocusedSeconds {
			return si.FocusedSeconds > sj.FocusedSeconds
		}
		if si.Name != sj.Name {
			return si.Name < sj.Name
		}
		return si.StudentID < sj.StudentID
	})

	for i := range standings {
		if i > 0 && standings[i].Points == standings[i-1].Points &&
			standings[i].FocusedSeconds == standings[i-1].FocusedSeconds {
			standings[i].Rank = standings[i-1].Rank
		} else {
			standings[i].Rank = i + 1
		}
	}
	return standings
}

type (
	Repository interface {
		// QueryActivity returns every active student with their completed assignments and
		// focused seconds since the given time (all time when zero).
		QueryActivity(ctx context.Context, since time.Time) ([]Activity, error)
	}

	Service struct {
		repo    Repository
		scoring Scoring
	}
)

func NewService(repo Repository, conf core.LeaderboardConfig) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
	).CheckAndPanic()
	return &Service{
		repo:    repo,
		scoring: Scoring{PointsPerAssignment: conf.PointsPerAssignment, PointsPerStudyHour: conf.PointsPerStudyHour},
	}
}

// Board returns the top limit standings over period plus the caller's own standing.
func (svc *Service) Board(ctx context.Context, actor user.User, period Period, limit int) (Board, error) {
	if limit <= 0 {
		limit = DefaultLimit
	} else if limit > MaxLimit {
		limit = MaxLimit
	}
	if period == "" {
		period = PeriodAll
	}

	activities, err := svc.repo.QueryActivity(ctx, period.Since(NowFunc().UTC()))
	if err != nil {
		return Board{}, errors.Wrap(err, "querying leaderboard activity")
	}
	standings := Rank(activities, svc.scoring)

	board := Board{Period: period, Standings: standings}
	if len(standings) > limit {
		board.Standings = standings[:limit]
	}
	for i := range standings {
		if standings[i].StudentID == actor.ID {
			me := standings[i]
			board.Me = &me
			break
		}
	}
	return board, nil
}
