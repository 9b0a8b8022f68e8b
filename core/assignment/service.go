package assignment

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

const DueDateLayout = "Mon, 02 Jan 2006 15:04 MST"

var (
	ErrNotFound = core.NewNotFoundError("assignment")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// QueryAssignments applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Assignment.Title or Assignment.Description.
		QueryAssignments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		// DeleteAssignment also deletes the assignment's submissions and doubts.
		DeleteAssignment(ctx context.Context, id string) error

		// QueryDueReminders returns active students who neither submitted nor were reminded of
		// assignments due in [from, to].
		QueryDueReminders(ctx context.Context, from, to time.Time) ([]Reminder, error)
		MarkReminded(ctx context.Context, assignmentID, studentID string, at time.Time) error
	}

	StudentLister interface {
		QueryActiveStudents(ctx context.Context) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		students StudentLister
		notifier notification.Notifier
		logger   core.Logger
	}
)

func NewService(repo Repository, students StudentLister, notifier notification.Notifier, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(students, "students"),
		vala.IsNotNil(notifier, "notifier"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Service{repo: repo, students: students, notifier: notifier, logger: logger}
}

// CanManage reports whether actor may modify a.
func CanManage(actor user.User, a Assignment) bool {
	return actor.IsAdmin() || (actor.IsTeacher() && a.CreatedBy == actor.ID)
}

func (svc *Service) Create(ctx context.Context, actor user.User, na NewAssignment) (Assignment, error) {
	if !actor.CanTeach() {
		return Assignment{}, core.ErrForbidden
	}

	now := NowFunc().UTC()
	a, err := svc.repo.CreateAssignment(ctx, Assignment{
		ID:          uuid.NewString(),
		Title:       na.Title,
		Description: na.Description,
		Subject:     na.Subject,
		DueDate:     na.DueDate,
		CreatedBy:   actor.ID,
		AuthorName:  actor.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return Assignment{}, errors.Wrap(err, "creating assignment")
	}

	svc.notifyCreated(ctx, actor, a)
	return a, nil
}

func (svc *Service) notifyCreated(ctx context.Context, author user.User, a Assignment) {
	students, err := svc.students.QueryActiveStudents(ctx)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("assignment.notifyCreated: %v", err), err)
		return
	}

	n := notification.Notification{Kind: notification.KindAssignmentCreated, Data: map[string]interface{}{
		"assignment_id": a.ID,
		"title":         a.Title,
		"subject":       a.Subject,
		"description":   a.Description,
		"due_date":      formatDueDate(a.DueDate),
		"author":        author.Name,
	}}
	for _, s := range students {
		if s.ID == author.ID {
			continue
		}
		n.Recipients = append(n.Recipients, notification.Recipient(s.Name, s.Email))
	}
	if len(n.Recipients) == 0 {
		return
	}
	if err = svc.notifier.Notify(ctx, n); err != nil {
		svc.logger.Error(fmt.Sprintf("assignment.notifyCreated: %v", err), err)
	}
}

// Query lists assignments; students also get their submitted flag.
func (svc *Service) Query(ctx context.Context, actor user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Assignment, error) {
	if filter == nil {
		filter = &QueryFilter{}
	}
	if actor.IsStudent() {
		filter.StudentID = actor.ID
	} else {
		filter.StudentID = ""
		filter.Submitted = nil
	}
	return svc.repo.QueryAssignments(ctx, filter, ordering)
}

// QueryPending returns the assignments the student has not submitted yet, due soonest first.
func (svc *Service) QueryPending(ctx context.Context, student user.User) ([]Assignment, error) {
	submitted := false
	return svc.repo.QueryAssignments(
		ctx,
		&QueryFilter{StudentID: student.ID, Submitted: &submitted},
		[]core.DBOrdering{{Field: "due_date", Ascending: true}, {Field: "created_at", Ascending: false}},
	)
}

// QueryAuthored returns the assignments created by the teacher, most recent first.
func (svc *Service) QueryAuthored(ctx context.Context, teacher user.User) ([]Assignment, error) {
	return svc.repo.QueryAssignments(
		ctx,
		&QueryFilter{CreatedBy: teacher.ID},
		[]core.DBOrdering{{Field: "created_at", Ascending: false}},
	)
}

func (svc *Service) Get(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignment(ctx, id)
}

func (svc *Service) Update(ctx context.Context, actor user.User, id string, ua UpdateAssignment) (Assignment, error) {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if !CanManage(actor, a) {
		return Assignment{}, core.ErrForbidden
	}

	if ua.Title != nil {
		a.Title = *ua.Title
	}
	if ua.Description != nil {
		a.Description = *ua.Description
	}
	if ua.Subject != nil {
		a.Subject = *ua.Subject
	}
	if ua.ClearDueDate {
		a.DueDate = nil
	} else if ua.DueDate != nil {
		a.DueDate = ua.DueDate
	}
	a.UpdatedAt = NowFunc().UTC()

	a, err = svc.repo.UpdateAssignment(ctx, a)
	return a, errors.Wrap(err, "updating assignment")
}

func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	a, err := svc.repo.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	if !CanManage(actor, a) {
		return core.ErrForbidden
	}
	return svc.repo.DeleteAssignment(ctx, id)
}

// SendDueReminders notifies students about unsubmitted assignments due within window.
// Each (assignment, student) pair is reminded once. It returns the number of reminders sent.
func (svc *Service) SendDueReminders(ctx context.Context, window time.Duration) (int, error) {
	now := NowFunc().UTC()
	reminders, err := svc.repo.QueryDueReminders(ctx, now, now.Add(window))
	if err != nil {
		return 0, errors.Wrap(err, "querying due reminders")
	}

	var sent int
	for _, r := range reminders {
		if err = ctx.Err(); err != nil {
			return sent, err
		}
		err = svc.notifier.Notify(ctx, notification.Notification{
			Kind:       notification.KindAssignmentDue,
			Recipients: []mail.Address{notification.Recipient(r.StudentName, r.StudentEmail)},
			Data: map[string]interface{}{
				"assignment_id": r.Assignment.ID,
				"title":         r.Assignment.Title,
				"due_date":      formatDueDate(r.Assignment.DueDate),
			},
		})
		if err != nil {
			svc.logger.Error(fmt.Sprintf("assignment.SendDueReminders: %v", err), err)
			continue
		}
		if err = svc.repo.MarkReminded(ctx, r.Assignment.ID, r.StudentID, now); err != nil {
			return sent, errors.Wrap(err, "marking reminder")
		}
		sent++
	}
	return sent, nil
}

func formatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.UTC().Format(DueDateLayout)
}
