package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("submission")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// UpsertSubmission creates the submission, or replaces the reflection of the existing
		// (assignment, student) one, keeping its ID.
		UpsertSubmission(ctx context.Context, s Submission) (Submission, error)
		// QuerySubmissions returns submissions most recent first, with joined fields set.
		QuerySubmissions(ctx context.Context, filter QueryFilter) ([]Submission, error)
		GetSubmission(ctx context.Context, assignmentID, studentID string) (Submission, error)
		DeleteSubmission(ctx context.Context, assignmentID, studentID string) error
	}

	AssignmentGetter interface {
		Get(ctx context.Context, id string) (assignment.Assignment, error)
	}

	Evaluator interface {
		Evaluate(ctx context.Context, student user.User) ([]achievement.Badge, error)
	}

	Service struct {
		repo        Repository
		assignments AssignmentGetter
		evaluator   Evaluator
		logger      core.Logger
	}
)

func NewService(repo Repository, assignments AssignmentGetter, evaluator Evaluator, logger core.Logger) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(assignments, "assignments"),
		vala.IsNotNil(evaluator, "evaluator"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Service{repo: repo, assignments: assignments, evaluator: evaluator, logger: logger}
}

// Submit records the student's submission and returns the achievements it unlocked.
func (svc *Service) Submit(ctx context.Context, student user.User, assignmentID string, ns NewSubmission) (Submission, []achievement.Badge, error) {
	if !student.IsStudent() {
		return Submission{}, nil, core.ErrForbidden
	}
	a, err := svc.assignments.Get(ctx, assignmentID)
	if err != nil {
		return Submission{}, nil, err
	}

	now := NowFunc().UTC()
	sub, err := svc.repo.UpsertSubmission(ctx, Submission{
		ID:           uuid.NewString(),
		AssignmentID: a.ID,
		StudentID:    student.ID,
		Reflection:   ns.Reflection,
		SubmittedAt:  now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Submission{}, nil, errors.Wrap(err, "saving submission")
	}
	sub.AssignmentTitle = a.Title
	sub.DueDate = a.DueDate
	sub.SetLate()

	unlocked, err := svc.evaluator.Evaluate(ctx, student)
	if err != nil {
		// the submission is saved, evaluation runs again on the next dashboard load
		svc.logger.Error(fmt.Sprintf("submission.Submit: %v", err), err)
	}
	return sub, unlocked, nil
}

// Withdraw deletes the student's own submission.
func (svc *Service) Withdraw(ctx context.Context, student user.User, assignmentID string) error {
	if !student.IsStudent() {
		return core.ErrForbidden
	}
	if _, err := svc.repo.GetSubmission(ctx, assignmentID, student.ID); err != nil {
		return err
	}
	return svc.repo.DeleteSubmission(ctx, assignmentID, student.ID)
}

// GetOwn returns the student's submission on an assignment.
func (svc *Service) GetOwn(ctx context.Context, student user.User, assignmentID string) (Submission, error) {
	sub, err := svc.repo.GetSubmission(ctx, assignmentID, student.ID)
	if err != nil {
		return Submission{}, err
	}
	sub.SetLate()
	return sub, nil
}

// QueryOwn lists the student's submissions.
func (svc *Service) QueryOwn(ctx context.Context, student user.User) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, QueryFilter{StudentID: student.ID})
}

// QueryByAssignment lists the submissions of an assignment; only its author or an admin may.
func (svc *Service) QueryByAssignment(ctx context.Context, actor user.User, assignmentID string) ([]Submission, error) {
	a, err := svc.assignments.Get(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if !assignment.CanManage(actor, a) {
		return nil, core.ErrForbidden
	}
	return svc.repo.QuerySubmissions(ctx, QueryFilter{AssignmentID: a.ID})
}

// QueryReceived lists the most recent submissions on the teacher's assignments.
func (svc *Service) QueryReceived(ctx context.Context, teacher user.User, limit int) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, QueryFilter{AuthorID: teacher.ID, Limit: limit})
}
