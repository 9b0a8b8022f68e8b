package doubt

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("doubt")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		CreateDoubt(ctx context.Context, d Doubt) (Doubt, error)
		// QueryDoubts returns doubts most recent first, with joined fields set but no replies.
		QueryDoubts(ctx context.Context, filter QueryFilter) ([]Doubt, error)
		// GetDoubt returns the doubt with joined fields set but no replies.
		GetDoubt(ctx context.Context, id string) (Doubt, error)
		SetResolved(ctx context.Context, id string, resolved bool, at time.Time) error
		DeleteDoubt(ctx context.Context, id string) error
		CreateReply(ctx context.Context, r Reply) (Reply, error)
		// QueryReplies returns the replies of a doubt oldest first.
		QueryReplies(ctx context.Context, doubtID string) ([]Reply, error)
	}

	AssignmentGetter interface {
		Get(ctx context.Context, id string) (assignment.Assignment, error)
	}

	UserGetter interface {
		GetByID(ctx context.Context, id string) (user.User, error)
	}

	Service struct {
		repo        Repository
		assignments AssignmentGetter
		users       UserGetter
		notifier    notification.Notifier
		logger      core.Logger
	}
)

func NewService(
	repo Repository,
	assignments AssignmentGetter,
	users UserGetter,
	notifier notification.Notifier,
	logger core.Logger,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(assignments, "assignments"),
		vala.IsNotNil(users, "users"),
		vala.IsNotNil(notifier, "notifier"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Service{repo: repo, assignments: assignments, users: users, notifier: notifier, logger: logger}
}

// canAccess: the doubt owner, the assignment author and admins.
func canAccess(actor user.User, d Doubt) bool {
	return actor.IsAdmin() || d.StudentID == actor.ID || d.AssignmentAuthorID == actor.ID
}

// Ask opens a doubt on an assignment and notifies its author.
func (svc *Service) Ask(ctx context.Context, student user.User, nd NewDoubt) (Doubt, error) {
	if !student.IsStudent() {
		return Doubt{}, core.ErrForbidden
	}
	a, err := svc.assignments.Get(ctx, nd.AssignmentID)
	if err != nil {
		return Doubt{}, err
	}

	now := NowFunc().UTC()
	d, err := svc.repo.CreateDoubt(ctx, Doubt{
		ID:           uuid.NewString(),
		AssignmentID: a.ID,
		StudentID:    student.ID,
		Question:     nd.Question,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Doubt{}, errors.Wrap(err, "creating doubt")
	}
	d.AssignmentTitle = a.Title
	d.AssignmentAuthorID = a.CreatedBy
	d.StudentName = student.Name

	svc.notify(ctx, a.CreatedBy, notification.KindDoubtAsked, map[string]interface{}{
		"doubt_id": d.ID,
		"title":    a.Title,
		"student":  student.Name,
		"question": d.Question,
	})
	return d, nil
}

// Query lists the doubts visible to actor: all for admins, those on their assignments for
// teachers, their own for students, and both for users holding the two roles.
func (svc *Service) Query(ctx context.Context, actor user.User, filter QueryFilter) ([]Doubt, error) {
	filter.StudentID, filter.AuthorID, filter.ParticipantID = "", "", ""
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher() && actor.IsStudent():
		filter.ParticipantID = actor.ID
	case actor.IsTeacher():
		filter.AuthorID = actor.ID
	default:
		filter.StudentID = actor.ID
	}
	return svc.repo.QueryDoubts(ctx, filter)
}

// QueryOwn lists the doubts asked by student, whatever their other roles.
func (svc *Service) QueryOwn(ctx context.Context, student user.User, filter QueryFilter) ([]Doubt, error) {
	filter.StudentID, filter.AuthorID, filter.ParticipantID = student.ID, "", ""
	return svc.repo.QueryDoubts(ctx, filter)
}

// QueryOnAuthored lists the doubts on assignments authored by teacher, admins included.
func (svc *Service) QueryOnAuthored(ctx context.Context, teacher user.User, filter QueryFilter) ([]Doubt, error) {
	filter.StudentID, filter.AuthorID, filter.ParticipantID = "", teacher.ID, ""
	return svc.repo.QueryDoubts(ctx, filter)
}

// Get returns the doubt with its replies.
func (svc *Service) Get(ctx context.Context, actor user.User, id string) (Doubt, error) {
	d, err := svc.repo.GetDoubt(ctx, id)
	if err != nil {
		return Doubt{}, err
	}
	if !canAccess(actor, d) {
		// do not leak the existence of other students' doubts
		return Doubt{}, ErrNotFound
	}
	if d.Replies, err = svc.repo.QueryReplies(ctx, d.ID); err != nil {
		return Doubt{}, errors.Wrap(err, "querying replies")
	}
	d.ReplyCount = len(d.Replies)
	return d, nil
}

// Reply adds a reply; a reply by the doubt owner notifies the assignment author,
// any other reply notifies the owner.
func (svc *Service) Reply(ctx context.Context, actor user.User, id string, nr NewReply) (Reply, error) {
	d, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Reply{}, err
	}

	r, err := svc.repo.CreateReply(ctx, Reply{
		ID:         uuid.NewString(),
		DoubtID:    d.ID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Body:       nr.Body,
		CreatedAt:  NowFunc().UTC(),
	})
	if err != nil {
		return Reply{}, errors.Wrap(err, "creating reply")
	}

	recipientID := d.StudentID
	if actor.ID == d.StudentID {
		recipientID = d.AssignmentAuthorID
	}
	if recipientID != actor.ID {
		svc.notify(ctx, recipientID, notification.KindDoubtReplied, map[string]interface{}{
			"doubt_id": d.ID,
			"title":    d.AssignmentTitle,
			"author":   actor.Name,
			"body":     r.Body,
		})
	}
	return r, nil
}

// SetResolved resolves or reopens a doubt.
func (svc *Service) SetResolved(ctx context.Context, actor user.User, id string, resolved bool) (Doubt, error) {
	d, err := svc.Get(ctx, actor, id)
	if err != nil {
		return Doubt{}, err
	}
	if d.IsResolved == resolved {
		return d, nil
	}

	now := NowFunc().UTC()
	if err = svc.repo.SetResolved(ctx, d.ID, resolved, now); err != nil {
		return Doubt{}, errors.Wrap(err, "updating doubt")
	}
	d.IsResolved = resolved
	d.UpdatedAt = now
	return d, nil
}

// Delete removes a doubt; only its owner or an admin may.
func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	d, err := svc.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if !(actor.IsAdmin() || d.StudentID == actor.ID) {
		return core.ErrForbidden
	}
	return svc.repo.DeleteDoubt(ctx, d.ID)
}

func (svc *Service) notify(ctx context.Context, userID string, kind notification.Kind, data map[string]interface{}) {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("doubt.notify(%s): %v", kind, err), err)
		return
	}
	if !usr.IsActive || usr.Email == "" {
		return
	}
	err = svc.notifier.Notify(ctx, notification.Notification{
		Kind:       kind,
		Recipients: []mail.Address{notification.Recipient(usr.Name, usr.Email)},
		Data:       data,
	})
	if err != nil {
		svc.logger.Error(fmt.Sprintf("doubt.notify(%s): %v", kind, err), err)
	}
}
