package study

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
)

const (
	SourceTimer  = "timer"
	SourceManual = "manual"

	MaxManualSession = 12 * time.Hour
)

type Session struct {
	ID              string     `json:"id"`
	StudentID       string     `json:"student_id"`
	Subject         string     `json:"subject"`
	Source          string     `json:"source"`
	StartedAt       time.Time  `json:"started_at"` // UTC
	EndedAt         *time.Time `json:"ended_at"`   // UTC, nil while the timer runs
	DurationSeconds int64      `json:"duration_seconds"`
}

func (s Session) IsOpen() bool {
	return s.EndedAt == nil
}

// NewSession is a manually logged study session.
type NewSession struct {
	Subject   string    `json:"subject" validate:"required,notblank,max=100"`
	StartedAt time.Time `json:"started_at" validate:"required"`
	EndedAt   time.Time `json:"ended_at" validate:"required"`
}

func (ns *NewSession) Validate(validate *validator.Validate, now time.Time) error {
	ns.Subject = core.CleanString(ns.Subject)
	ns.StartedAt = ns.StartedAt.UTC()
	ns.EndedAt = ns.EndedAt.UTC()
	if err := validate.Struct(ns); err != nil {
		return err
	}

	var fields []core.FieldError
	switch {
	case !ns.EndedAt.After(ns.StartedAt):
		fields = append(fields, core.FieldError{Field: "ended_at", Error: "ended_at must be after started_at"})
	case ns.EndedAt.Sub(ns.StartedAt) > MaxManualSession:
		fields = append(fields, core.FieldError{Field: "ended_at", Error: "a session cannot last more than 12 hours"})
	case ns.EndedAt.After(now.Add(time.Minute)):
		fields = append(fields, core.FieldError{Field: "ended_at", Error: "ended_at cannot be in the future"})
	}
	if len(fields) > 0 {
		return core.NewValidationError(nil, fields...)
	}
	return nil
}

type StartTimer struct {
	Subject string `json:"subject" validate:"required,notblank,max=100"`
}

func (st *StartTimer) Validate(validate *validator.Validate) error {
	st.Subject = core.CleanString(st.Subject)
	return validate.Struct(st)
}

type SessionFilter struct {
	StudentID   string    `query:"-"`
	Subject     string    `query:"subject"`
	StartedFrom time.Time `query:"started_from"`
	StartedTo   time.Time `query:"started_to"`
	Limit       int       `query:"limit"`
}

// DailyTotal aggregates the closed sessions of one subject on one UTC day.
type DailyTotal struct {
	Day      time.Time // UTC midnight
	Subject  string
	Seconds  int64
	Sessions int
}

type SubjectTotal struct {
	Subject string `json:"subject"`
	Seconds int64  `json:"seconds"`
}

type DayTotal struct {
	Date    string `json:"date"` // YYYY-MM-DD
	Seconds int64  `json:"seconds"`
}

type Stats struct {
	TotalSeconds int64          `json:"total_seconds"`
	SessionCount int            `json:"session_count"`
	TodaySeconds int64          `json:"today_seconds"`
	StreakDays   int            `json:"streak_days"`
	BySubject    []SubjectTotal `json:"by_subject"`
	Daily        []DayTotal     `json:"daily"`
}
