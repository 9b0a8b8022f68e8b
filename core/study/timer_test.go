package study

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_transitions(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	at := func(d time.Duration) time.Time { return t0.Add(d) }

	tm := NewTimer("s1", 25*time.Minute, 5*time.Minute)
	assert.Equal(t, ErrInvalidTransition, tm.Pause(t0))
	assert.Equal(t, ErrInvalidTransition, tm.Resume(t0))
	_, err := tm.Stop(t0)
	assert.Equal(t, ErrInvalidTransition, err)

	require.NoError(t, tm.Start("Maths", "sess1", t0))
	assert.Equal(t, ErrInvalidTransition, tm.Start("Maths", "sess2", t0))
	assert.Equal(t, StateFocus, tm.State)
	assert.Equal(t, 25*time.Minute, tm.RemainingAt(t0))

	require.NoError(t, tm.Pause(at(10*time.Minute)))
	assert.Equal(t, 15*time.Minute, tm.RemainingAt(at(time.Hour)))
	assert.Equal(t, 10*time.Minute, tm.FocusedAt(at(time.Hour)))
	assert.Nil(t, tm.Advance(at(time.Hour)))
	assert.Equal(t, StatePaused, tm.State)

	require.NoError(t, tm.Resume(at(time.Hour)))
	assert.Equal(t, 15*time.Minute, tm.FocusedAt(at(time.Hour+5*time.Minute)))

	done := tm.Advance(at(time.Hour + 16*time.Minute))
	require.NotNil(t, done)
	assert.Equal(t, "sess1", done.SessionID)
	assert.Equal(t, 25*time.Minute, done.Focused)
	assert.Equal(t, at(time.Hour+15*time.Minute), done.EndedAt)
	assert.Equal(t, StateBreak, tm.State)
	assert.Equal(t, 4*time.Minute, tm.RemainingAt(at(time.Hour+16*time.Minute)))

	// stopping a break skips it without a completion
	done, err = tm.Stop(at(time.Hour + 17*time.Minute))
	require.NoError(t, err)
	assert.Nil(t, done)
	assert.Equal(t, StateIdle, tm.State)
	assert.Empty(t, tm.Subject)
}

func TestTimer_Advance(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("focus and break both elapsed", func(t *testing.T) {
		tm := NewTimer("s1", 25*time.Minute, 5*time.Minute)
		require.NoError(t, tm.Start("Maths", "sess1", t0))

		done := tm.Advance(t0.Add(2 * time.Hour))
		require.NotNil(t, done)
		assert.Equal(t, 25*time.Minute, done.Focused)
		assert.Equal(t, StateIdle, tm.State)
		assert.Equal(t, time.Duration(0), tm.RemainingAt(t0.Add(2*time.Hour)))
	})

	t.Run("no break", func(t *testing.T) {
		tm := NewTimer("s1", 25*time.Minute, 0)
		require.NoError(t, tm.Start("Maths", "sess1", t0))
		require.NotNil(t, tm.Advance(t0.Add(25*time.Minute)))
		assert.Equal(t, StateIdle, tm.State)
	})

	t.Run("stop during focus", func(t *testing.T) {
		tm := NewTimer("s1", 25*time.Minute, 5*time.Minute)
		require.NoError(t, tm.Start("Maths", "sess1", t0))
		done, err := tm.Stop(t0.Add(7 * time.Minute))
		require.NoError(t, err)
		require.NotNil(t, done)
		assert.Equal(t, 7*time.Minute, done.Focused)
		assert.Equal(t, StateIdle, tm.State)
	})
}

func TestTimer_View(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	tm := NewTimer("s1", 25*time.Minute, 5*time.Minute)
	require.NoError(t, tm.Start("Maths", "sess1", t0))

	v := tm.View(t0.Add(90*time.Second + 500*time.Millisecond))
	assert.Equal(t, StateFocus, v.State)
	assert.Equal(t, int64(25*60-90), v.RemainingSeconds) // rounded up
	assert.Equal(t, int64(90), v.FocusedSeconds)
	assert.Equal(t, int64(25*60), v.FocusSeconds)
	assert.Equal(t, int64(5*60), v.BreakSeconds)
}
