// Package scheduler runs the periodic background jobs of EduFlow.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
)

// Reminder sends due date reminders for assignments due within window.
type Reminder interface {
	SendDueReminders(ctx context.Context, window time.Duration) (int, error)
}

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    core.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(logger core.Logger) (*Scheduler, error) {
	vala.BeginValidation().Validate(
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.Wrap(err, "creating gocron scheduler")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{scheduler: s, logger: logger, ctx: ctx, cancel: cancel}, nil
}

// ScheduleReminders runs r every interval; each run looks window ahead.
func (s *Scheduler) ScheduleReminders(r Reminder, interval, window time.Duration) error {
	if interval <= 0 || window <= 0 {
		return errors.Errorf("invalid reminder schedule: interval=%s window=%s", interval, window)
	}
	_, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.sendReminders, r, window),
		gocron.WithName("assignment-due-reminders"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	return errors.Wrap(err, "creating reminder job")
}

func (s *Scheduler) sendReminders(r Reminder, window time.Duration) {
	sent, err := r.SendDueReminders(s.ctx, window)
	if err != nil {
		s.logger.Error(fmt.Sprintf("scheduler.sendReminders: %v", err), err)
		return
	}
	if sent > 0 {
		s.logger.Info(fmt.Sprintf("scheduler.sendReminders: %d reminder(s) sent", sent))
	}
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.cancel()
	return s.scheduler.Shutdown()
}
