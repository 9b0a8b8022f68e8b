package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthik768990/EduFlow-Learning-Platform/tests"
)

type reminderMock struct {
	calls  int32
	window time.Duration
	err    error
}

func (r *reminderMock) SendDueReminders(ctx context.Context, window time.Duration) (int, error) {
	atomic.AddInt32(&r.calls, 1)
	r.window = window
	if r.err != nil {
		return 0, r.err
	}
	return 2, ctx.Err()
}

func (r *reminderMock) Calls() int {
	return int(atomic.LoadInt32(&r.calls))
}

func TestScheduler_ScheduleReminders(t *testing.T) {
	logger := testutil.NewLogger()
	s, err := New(logger)
	require.NoError(t, err)

	assert.Error(t, s.ScheduleReminders(new(reminderMock), 0, time.Hour))
	assert.Error(t, s.ScheduleReminders(new(reminderMock), time.Hour, -time.Hour))

	r := new(reminderMock)
	require.NoError(t, s.ScheduleReminders(r, 20*time.Millisecond, 24*time.Hour))
	s.Start()
	require.Eventually(t, func() bool { return r.Calls() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())

	calls := r.Calls()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, r.Calls(), "no run after Stop")
	assert.Contains(t, logger.Messages("info"), "scheduler.sendReminders: 2 reminder(s) sent")
}

func TestScheduler_logsErrors(t *testing.T) {
	logger := testutil.NewLogger()
	s, err := New(logger)
	require.NoError(t, err)

	r := &reminderMock{err: errors.New("db down")}
	require.NoError(t, s.ScheduleReminders(r, 20*time.Millisecond, time.Hour))
	s.Start()
	require.Eventually(t, func() bool { return len(logger.Messages("error")) > 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Contains(t, logger.Messages("error")[0], "db down")
	assert.Empty(t, logger.Messages("info"))
}
