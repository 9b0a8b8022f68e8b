package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func assignmentField(a assignment.Assignment, field string) interface{} {
	switch field {
	case "title":
		return a.Title
	case "subject":
		return a.Subject
	case "due_date":
		return a.DueDate
	case "created_at":
		return a.CreatedAt
	case "updated_at":
		return a.UpdatedAt
	}
	return nil
}

// withAuthor sets the joined fields; db.mu must be held.
func (repo *assignmentRepository) withAuthor(a assignment.Assignment) assignment.Assignment {
	a.AuthorName = repo.db.users[a.CreatedBy].Name
	return a
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a.Submitted = nil
	repo.db.assignments[a.ID] = a
	return repo.withAuthor(a), nil
}

func (repo *assignmentRepository) QueryAssignments(
	_ context.Context,
	filter *assignment.QueryFilter,
	ordering []core.DBOrdering,
) ([]assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter == nil {
		filter = &assignment.QueryFilter{}
	}

	assignments := make([]assignment.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if filter.Search != "" && !(containsFold(a.Title, filter.Search) || containsFold(a.Description, filter.Search)) {
			continue
		}
		if filter.Subject != "" && !strings.EqualFold(a.Subject, filter.Subject) {
			continue
		}
		if filter.CreatedBy != "" && a.CreatedBy != filter.CreatedBy {
			continue
		}
		if !filter.DueFrom.IsZero() && (a.DueDate == nil || a.DueDate.Before(filter.DueFrom)) {
			continue
		}
		if !filter.DueTo.IsZero() && (a.DueDate == nil || a.DueDate.After(filter.DueTo)) {
			continue
		}
		if filter.StudentID != "" {
			_, submitted := repo.db.submissions[pairKey{a.ID, filter.StudentID}]
			if filter.Submitted != nil && *filter.Submitted != submitted {
				continue
			}
			a.Submitted = &submitted
		}
		assignments = append(assignments, repo.withAuthor(a))
	}

	def := core.DBOrdering{Field: "created_at"}
	if len(ordering) > 0 {
		def = core.DBOrdering{Field: "title", Ascending: true}
	}
	sort.Stable(sortByOrdering(
		len(assignments),
		func(i, j int) { assignments[i], assignments[j] = assignments[j], assignments[i] },
		func(i int, field string) interface{} { return assignmentField(assignments[i], field) },
		ordering,
		def,
	))
	return assignments, nil
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id string) (assignment.Assignment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	a, ok := repo.db.assignments[id]
	if !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return repo.withAuthor(a), nil
}

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.assignments[a.ID]; !ok {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	a.Submitted = nil
	repo.db.assignments[a.ID] = a
	return repo.withAuthor(a), nil
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.deleteAssignment(id)
	return nil
}

func (repo *assignmentRepository) QueryDueReminders(_ context.Context, from, to time.Time) ([]assignment.Reminder, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var reminders []assignment.Reminder
	for _, a := range repo.db.assignments {
		if a.DueDate == nil || a.DueDate.Before(from) || a.DueDate.After(to) {
			continue
		}
		for _, usr := range repo.db.users {
			if !usr.IsActive || usr.Email == "" || !usr.IsStudent() {
				continue
			}
			key := pairKey{a.ID, usr.ID}
			if _, ok := repo.db.submissions[key]; ok {
				continue
			}
			if _, ok := repo.db.reminders[key]; ok {
				continue
			}
			reminders = append(reminders, assignment.Reminder{
				Assignment:   repo.withAuthor(a),
				StudentID:    usr.ID,
				StudentName:  usr.Name,
				StudentEmail: usr.Email,
			})
		}
	}

	sort.Slice(reminders, func(i, j int) bool {
		di, dj := *reminders[i].Assignment.DueDate, *reminders[j].Assignment.DueDate
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return reminders[i].StudentName < reminders[j].StudentName
	})
	return reminders, nil
}

func (repo *assignmentRepository) MarkReminded(_ context.Context, assignmentID, studentID string, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := pairKey{assignmentID, studentID}
	if _, ok := repo.db.reminders[key]; !ok {
		repo.db.reminders[key] = at
	}
	return nil
}
