package study

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

const (
	DefaultSessionsLimit = 50
	MaxSessionsLimit     = 500
)

var (
	ErrTimerNotFound   = core.NewNotFoundError("timer")
	ErrSessionNotFound = core.NewNotFoundError("study session")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		GetTimer(ctx context.Context, studentID string) (Timer, error)
		// SaveTimer upserts the timer and the given sessions in a single transaction.
		SaveTimer(ctx context.Context, t Timer, sessions ...Session) error
		GetSession(ctx context.Context, id string) (Session, error)
		CreateSession(ctx context.Context, s Session) (Session, error)
		// QuerySessions returns sessions most recent first.
		QuerySessions(ctx context.Context, filter SessionFilter) ([]Session, error)
	}

	StatsRepository interface {
		// QueryDailyTotals sums the closed sessions of the student per UTC day and subject.
		QueryDailyTotals(ctx context.Context, studentID string) ([]DailyTotal, error)
	}

	Evaluator interface {
		Evaluate(ctx context.Context, student user.User) ([]achievement.Badge, error)
	}

	Service struct {
		repo      Repository
		stats     StatsRepository
		evaluator Evaluator
		logger    core.Logger
		focus     time.Duration
		brk       time.Duration
	}

	// TimerResult is returned by every timer call.
	TimerResult struct {
		Timer    TimerView           `json:"timer"`
		Unlocked []achievement.Badge `json:"unlocked"`
	}
)

func NewService(
	repo Repository,
	stats StatsRepository,
	evaluator Evaluator,
	logger core.Logger,
	conf core.PomodoroConfig,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(stats, "stats"),
		vala.IsNotNil(evaluator, "evaluator"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	if conf.FocusDuration <= 0 || conf.BreakDuration < 0 {
		panic(fmt.Sprintf("study.NewService: invalid pomodoro durations %v/%v", conf.FocusDuration, conf.BreakDuration))
	}
	return &Service{
		repo:      repo,
		stats:     stats,
		evaluator: evaluator,
		logger:    logger,
		focus:     conf.FocusDuration,
		brk:       conf.BreakDuration,
	}
}

type timerAction func(t *Timer, now time.Time) (done *Completion, opened *Session, err error)

// Timer returns the student's timer, after applying elapsed time.
func (svc *Service) Timer(ctx context.Context, student user.User) (TimerResult, error) {
	return svc.apply(ctx, student, nil)
}

func (svc *Service) Start(ctx context.Context, student user.User, st StartTimer) (TimerResult, error) {
	return svc.apply(ctx, student, func(t *Timer, now time.Time) (*Completion, *Session, error) {
		if t.State == StateIdle {
			t.FocusDuration = svc.focus
			t.BreakDuration = svc.brk
		}
		sess := Session{
			ID:        uuid.NewString(),
			StudentID: student.ID,
			Subject:   st.Subject,
			Source:    SourceTimer,
			StartedAt: now,
		}
		if err := t.Start(st.Subject, sess.ID, now); err != nil {
			return nil, nil, err
		}
		return nil, &sess, nil
	})
}

func (svc *Service) Pause(ctx context.Context, student user.User) (TimerResult, error) {
	return svc.apply(ctx, student, func(t *Timer, now time.Time) (*Completion, *Session, error) {
		return nil, nil, t.Pause(now)
	})
}

func (svc *Service) Resume(ctx context.Context, student user.User) (TimerResult, error) {
	return svc.apply(ctx, student, func(t *Timer, now time.Time) (*Completion, *Session, error) {
		return nil, nil, t.Resume(now)
	})
}

func (svc *Service) Stop(ctx context.Context, student user.User) (TimerResult, error) {
	return svc.apply(ctx, student, func(t *Timer, now time.Time) (*Completion, *Session, error) {
		done, err := t.Stop(now)
		return done, nil, err
	})
}

func (svc *Service) loadTimer(ctx context.Context, studentID string) (Timer, error) {
	t, err := svc.repo.GetTimer(ctx, studentID)
	if core.IsNotFound(err) {
		return NewTimer(studentID, svc.focus, svc.brk), nil
	}
	return t, err
}

func (svc *Service) apply(ctx context.Context, student user.User, action timerAction) (TimerResult, error) {
	if !student.IsStudent() {
		return TimerResult{}, core.ErrForbidden
	}

	t, err := svc.loadTimer(ctx, student.ID)
	if err != nil {
		return TimerResult{}, errors.Wrap(err, "loading timer")
	}

	now := NowFunc().UTC()
	var sessions []Session
	closeSession := func(done *Completion) error {
		if done == nil || done.SessionID == "" {
			return nil
		}
		sess, err := svc.repo.GetSession(ctx, done.SessionID)
		if err != nil {
			return errors.Wrap(err, "closing study session")
		}
		endedAt := done.EndedAt
		sess.EndedAt = &endedAt
		sess.DurationSeconds = int64(done.Focused / time.Second)
		sessions = append(sessions, sess)
		return nil
	}

	if err = closeSession(t.Advance(now)); err != nil {
		return TimerResult{}, err
	}
	if action != nil {
		done, opened, err := action(&t, now)
		if err != nil {
			return TimerResult{}, err
		}
		if err = closeSession(done); err != nil {
			return TimerResult{}, err
		}
		if opened != nil {
			sessions = append(sessions, *opened)
		}
	}

	if err = svc.repo.SaveTimer(ctx, t, sessions...); err != nil {
		return TimerResult{}, errors.Wrap(err, "saving timer")
	}

	res := TimerResult{Timer: t.View(now), Unlocked: []achievement.Badge{}}
	for _, sess := range sessions {
		if !sess.IsOpen() {
			res.Unlocked = svc.evaluate(ctx, student)
			break
		}
	}
	return res, nil
}

func (svc *Service) evaluate(ctx context.Context, student user.User) []achievement.Badge {
	unlocked, err := svc.evaluator.Evaluate(ctx, student)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("study.evaluate: %v", err), err)
		return []achievement.Badge{}
	}
	return unlocked
}

// Log records a manual session.
func (svc *Service) Log(ctx context.Context, student user.User, ns NewSession) (Session, []achievement.Badge, error) {
	if !student.IsStudent() {
		return Session{}, nil, core.ErrForbidden
	}

	endedAt := ns.EndedAt
	sess, err := svc.repo.CreateSession(ctx, Session{
		ID:              uuid.NewString(),
		StudentID:       student.ID,
		Subject:         ns.Subject,
		Source:          SourceManual,
		StartedAt:       ns.StartedAt,
		EndedAt:         &endedAt,
		DurationSeconds: int64(ns.EndedAt.Sub(ns.StartedAt) / time.Second),
	})
	if err != nil {
		return Session{}, nil, errors.Wrap(err, "creating study session")
	}
	return sess, svc.evaluate(ctx, student), nil
}

func (svc *Service) QuerySessions(ctx context.Context, student user.User, filter SessionFilter) ([]Session, error) {
	if !student.IsStudent() {
		return nil, core.ErrForbidden
	}
	filter.StudentID = student.ID
	if filter.Limit <= 0 {
		filter.Limit = DefaultSessionsLimit
	} else if filter.Limit > MaxSessionsLimit {
		filter.Limit = MaxSessionsLimit
	}
	return svc.repo.QuerySessions(ctx, filter)
}

// Stats returns the student's statistics over the last days days.
func (svc *Service) Stats(ctx context.Context, student user.User, days int) (Stats, error) {
	if !student.IsStudent() {
		return Stats{}, core.ErrForbidden
	}
	if days <= 0 {
		days = DefaultStatsDays
	} else if days > MaxStatsDays {
		days = MaxStatsDays
	}
	totals, err := svc.stats.QueryDailyTotals(ctx, student.ID)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying study totals")
	}
	return ComputeStats(totals, NowFunc().UTC(), days), nil
}
