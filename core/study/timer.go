package study

import (
	"time"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
)

type State string

const (
	StateIdle   State = "idle"
	StateFocus  State = "focus"
	StatePaused State = "paused"
	StateBreak  State = "break"
)

// ErrInvalidTransition is returned for timer actions not allowed in the current state.
var ErrInvalidTransition = core.NewConflictError("timer action not allowed in the current state")

// Timer is a student's Pomodoro timer.
// While running (focus or break), Remaining is measured from ResumedAt.
// Focused is the focus time accumulated before ResumedAt.
type Timer struct {
	StudentID     string
	State         State
	Subject       string
	SessionID     string // open session, while focus or paused
	FocusDuration time.Duration
	BreakDuration time.Duration
	Remaining     time.Duration
	Focused       time.Duration
	ResumedAt     time.Time // UTC, zero unless running
	UpdatedAt     time.Time // UTC
}

// Completion describes a focus phase that ended; its session must be closed.
type Completion struct {
	SessionID string
	Focused   time.Duration
	EndedAt   time.Time
}

func NewTimer(studentID string, focus, brk time.Duration) Timer {
	return Timer{StudentID: studentID, State: StateIdle, FocusDuration: focus, BreakDuration: brk}
}

func (t *Timer) running() bool {
	return t.State == StateFocus || t.State == StateBreak
}

// RemainingAt is the time left in the current phase at now.
func (t *Timer) RemainingAt(now time.Time) time.Duration {
	switch {
	case t.running():
		if rem := t.Remaining - now.Sub(t.ResumedAt); rem > 0 {
			return rem
		}
		return 0
	case t.State == StatePaused:
		return t.Remaining
	}
	return 0
}

// FocusedAt is the focus time of the current session at now.
func (t *Timer) FocusedAt(now time.Time) time.Duration {
	if t.State == StateFocus {
		elapsed := now.Sub(t.ResumedAt)
		if elapsed > t.Remaining {
			elapsed = t.Remaining
		}
		if elapsed < 0 {
			elapsed = 0
		}
		return t.Focused + elapsed
	}
	return t.Focused
}

// Advance applies the transitions due to time passing: focus -> break when the focus
// countdown ends, break -> idle when the break ends.
func (t *Timer) Advance(now time.Time) *Completion {
	var done *Completion
	for t.running() && now.Sub(t.ResumedAt) >= t.Remaining {
		endedAt := t.ResumedAt.Add(t.Remaining)
		if t.State == StateFocus {
			done = &Completion{SessionID: t.SessionID, Focused: t.Focused + t.Remaining, EndedAt: endedAt}
			t.State = StateBreak
			t.SessionID = ""
			t.Focused = 0
			t.Remaining = t.BreakDuration
			t.ResumedAt = endedAt
			continue
		}
		t.reset()
	}
	t.UpdatedAt = now
	return done
}

// Start opens a focus phase on subject.
func (t *Timer) Start(subject, sessionID string, now time.Time) error {
	if t.State != StateIdle {
		return ErrInvalidTransition
	}
	t.State = StateFocus
	t.Subject = subject
	t.SessionID = sessionID
	t.Remaining = t.FocusDuration
	t.Focused = 0
	t.ResumedAt = now
	t.UpdatedAt = now
	return nil
}

// Pause freezes the focus countdown.
func (t *Timer) Pause(now time.Time) error {
	if t.State != StateFocus {
		return ErrInvalidTransition
	}
	elapsed := now.Sub(t.ResumedAt)
	t.Focused += elapsed
	t.Remaining -= elapsed
	t.ResumedAt = time.Time{}
	t.State = StatePaused
	t.UpdatedAt = now
	return nil
}

func (t *Timer) Resume(now time.Time) error {
	if t.State != StatePaused {
		return ErrInvalidTransition
	}
	t.State = StateFocus
	t.ResumedAt = now
	t.UpdatedAt = now
	return nil
}

// Stop returns to idle. Stopping a focus or paused timer completes its session
// with the focus time so far; stopping a break skips it.
func (t *Timer) Stop(now time.Time) (*Completion, error) {
	var done *Completion
	switch t.State {
	case StateFocus, StatePaused:
		done = &Completion{SessionID: t.SessionID, Focused: t.FocusedAt(now), EndedAt: now}
	case StateBreak:
	default:
		return nil, ErrInvalidTransition
	}
	t.reset()
	t.UpdatedAt = now
	return done, nil
}

func (t *Timer) reset() {
	t.State = StateIdle
	t.Subject = ""
	t.SessionID = ""
	t.Remaining = 0
	t.Focused = 0
	t.ResumedAt = time.Time{}
}

// TimerView is the client representation of a Timer.
type TimerView struct {
	State            State  `json:"state"`
	Subject          string `json:"subject"`
	SessionID        string `json:"session_id,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	FocusedSeconds   int64  `json:"focused_seconds"`
	FocusSeconds     int64  `json:"focus_seconds"`
	BreakSeconds     int64  `json:"break_seconds"`
}

func (t *Timer) View(now time.Time) TimerView {
	return TimerView{
		State:            t.State,
		Subject:          t.Subject,
		SessionID:        t.SessionID,
		RemainingSeconds: ceilSeconds(t.RemainingAt(now)),
		FocusedSeconds:   int64(t.FocusedAt(now) / time.Second),
		FocusSeconds:     int64(t.FocusDuration / time.Second),
		BreakSeconds:     int64(t.BreakDuration / time.Second),
	}
}

func ceilSeconds(d time.Duration) int64 {
	return int64((d + time.Second - 1) / time.Second)
}
