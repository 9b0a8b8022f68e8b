package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
)

const sessionColumns = "id, student_id, subject, source, started_at, ended_at, duration_seconds"

type timerRow struct {
	StudentID   string      `db:"student_id"`
	State       string      `db:"state"`
	Subject     string      `db:"subject"`
	SessionID   null.String `db:"session_id"`
	FocusMs     int64       `db:"focus_ms"`
	BreakMs     int64       `db:"break_ms"`
	RemainingMs int64       `db:"remaining_ms"`
	FocusedMs   int64       `db:"focused_ms"`
	ResumedAt   null.Time   `db:"resumed_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func toTimerRow(t study.Timer) timerRow {
	return timerRow{
		StudentID:   t.StudentID,
		State:       string(t.State),
		Subject:     t.Subject,
		SessionID:   null.NewString(t.SessionID, t.SessionID != ""),
		FocusMs:     t.FocusDuration.Milliseconds(),
		BreakMs:     t.BreakDuration.Milliseconds(),
		RemainingMs: t.Remaining.Milliseconds(),
		FocusedMs:   t.Focused.Milliseconds(),
		ResumedAt:   null.NewTime(t.ResumedAt.UTC(), !t.ResumedAt.IsZero()),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (r timerRow) toTimer() study.Timer {
	t := study.Timer{
		StudentID:     r.StudentID,
		State:         study.State(r.State),
		Subject:       r.Subject,
		SessionID:     r.SessionID.String,
		FocusDuration: time.Duration(r.FocusMs) * time.Millisecond,
		BreakDuration: time.Duration(r.BreakMs) * time.Millisecond,
		Remaining:     time.Duration(r.RemainingMs) * time.Millisecond,
		Focused:       time.Duration(r.FocusedMs) * time.Millisecond,
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.ResumedAt.Valid {
		t.ResumedAt = r.ResumedAt.Time.UTC()
	}
	return t
}

type sessionRow struct {
	ID              string    `db:"id"`
	StudentID       string    `db:"student_id"`
	Subject         string    `db:"subject"`
	Source          string    `db:"source"`
	StartedAt       time.Time `db:"started_at"`
	EndedAt         null.Time `db:"ended_at"`
	DurationSeconds int64     `db:"duration_seconds"`
}

func toSessionRow(s study.Session) sessionRow {
	return sessionRow{
		ID:              s.ID,
		StudentID:       s.StudentID,
		Subject:         s.Subject,
		Source:          s.Source,
		StartedAt:       s.StartedAt.UTC(),
		EndedAt:         null.TimeFromPtr(s.EndedAt),
		DurationSeconds: s.DurationSeconds,
	}
}

func (r sessionRow) toSession() study.Session {
	s := study.Session{
		ID:              r.ID,
		StudentID:       r.StudentID,
		Subject:         r.Subject,
		Source:          r.Source,
		StartedAt:       r.StartedAt.UTC(),
		DurationSeconds: r.DurationSeconds,
	}
	if r.EndedAt.Valid {
		ended := r.EndedAt.Time.UTC()
		s.EndedAt = &ended
	}
	return s
}

type studyRepository struct {
	db *sqlx.DB
}

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(db *sqlx.DB) *studyRepository {
	return &studyRepository{db: db}
}

func (repo studyRepository) GetTimer(ctx context.Context, studentID string) (study.Timer, error) {
	if !isUUID(studentID) {
		return study.Timer{}, study.ErrTimerNotFound
	}
	var r timerRow
	q := `SELECT student_id, state, subject, session_id, focus_ms, break_ms, remaining_ms, focused_ms, resumed_at, updated_at
		FROM study_timers WHERE student_id = $1`
	if err := repo.db.GetContext(ctx, &r, q, studentID); err != nil {
		if err == sql.ErrNoRows {
			return study.Timer{}, study.ErrTimerNotFound
		}
		return study.Timer{}, errors.Wrap(err, "finding timer")
	}
	return r.toTimer(), nil
}

const upsertSession = `INSERT INTO study_sessions (` + sessionColumns + `)
	VALUES (:id, :student_id, :subject, :source, :started_at, :ended_at, :duration_seconds)
	ON CONFLICT (id) DO UPDATE SET subject = EXCLUDED.subject, ended_at = EXCLUDED.ended_at,
		duration_seconds = EXCLUDED.duration_seconds`

// SaveTimer writes the sessions first, the timer references the open one.
func (repo studyRepository) SaveTimer(ctx context.Context, t study.Timer, sessions ...study.Session) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for _, s := range sessions {
			if _, err := tx.NamedExecContext(ctx, upsertSession, toSessionRow(s)); err != nil {
				return errors.Wrap(err, "saving study session")
			}
		}

		q := `INSERT INTO study_timers (student_id, state, subject, session_id, focus_ms, break_ms, remaining_ms, focused_ms, resumed_at, updated_at)
			VALUES (:student_id, :state, :subject, :session_id, :focus_ms, :break_ms, :remaining_ms, :focused_ms, :resumed_at, :updated_at)
			ON CONFLICT (student_id) DO UPDATE SET state = EXCLUDED.state, subject = EXCLUDED.subject,
				session_id = EXCLUDED.session_id, focus_ms = EXCLUDED.focus_ms, break_ms = EXCLUDED.break_ms,
				remaining_ms = EXCLUDED.remaining_ms, focused_ms = EXCLUDED.focused_ms,
				resumed_at = EXCLUDED.resumed_at, updated_at = EXCLUDED.updated_at`
		_, err := tx.NamedExecContext(ctx, q, toTimerRow(t))
		return errors.Wrap(err, "saving timer")
	})
}

func (repo studyRepository) GetSession(ctx context.Context, id string) (study.Session, error) {
	if !isUUID(id) {
		return study.Session{}, study.ErrSessionNotFound
	}
	var r sessionRow
	if err := repo.db.GetContext(ctx, &r, "SELECT "+sessionColumns+" FROM study_sessions WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return study.Session{}, study.ErrSessionNotFound
		}
		return study.Session{}, errors.Wrap(err, "finding study session")
	}
	return r.toSession(), nil
}

func (repo studyRepository) CreateSession(ctx context.Context, s study.Session) (study.Session, error) {
	if _, err := repo.db.NamedExecContext(ctx, upsertSession, toSessionRow(s)); err != nil {
		return study.Session{}, errors.Wrap(err, "inserting study session")
	}
	return s, nil
}

func (repo studyRepository) QuerySessions(ctx context.Context, filter study.SessionFilter) ([]study.Session, error) {
	var w where
	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []study.Session{}, nil
		}
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.Subject != "" {
		w.add("LOWER(subject) = LOWER(?)", filter.Subject)
	}
	if !filter.StartedFrom.IsZero() {
		w.add("started_at >= ?", filter.StartedFrom.UTC())
	}
	if !filter.StartedTo.IsZero() {
		w.add("started_at <= ?", filter.StartedTo.UTC())
	}

	q := "SELECT " + sessionColumns + " FROM study_sessions" + w.String() + " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(filter.Limit)
	}

	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying study sessions")
	}
	sessions := make([]study.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.toSession())
	}
	return sessions, nil
}
