package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

const assignmentColumns = "a.id, a.title, a.description, a.subject, a.due_date, a.created_by, a.created_at, a.updated_at"

type assignmentRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Subject     string    `db:"subject"`
	DueDate     null.Time `db:"due_date"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	AuthorName  string    `db:"author_name"`
	Submitted   null.Bool `db:"submitted"`
}

func toAssignmentRow(a assignment.Assignment) assignmentRow {
	return assignmentRow{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Subject:     a.Subject,
		DueDate:     null.TimeFromPtr(a.DueDate),
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}

func (r assignmentRow) toAssignment() assignment.Assignment {
	a := assignment.Assignment{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Subject:     r.Subject,
		CreatedBy:   r.CreatedBy,
		AuthorName:  r.AuthorName,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		Submitted:   r.Submitted.Ptr(),
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		a.DueDate = &due
	}
	return a
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := `INSERT INTO assignments (id, title, description, subject, due_date, created_by, created_at, updated_at)
		VALUES (:id, :title, :description, :subject, :due_date, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toAssignmentRow(a)); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return a, nil
}

func (repo assignmentRepository) QueryAssignments(
	ctx context.Context,
	filter *assignment.QueryFilter,
	ordering []core.DBOrdering,
) ([]assignment.Assignment, error) {
	if filter == nil {
		filter = &assignment.QueryFilter{}
	}

	var (
		w        where
		selArgs  []interface{}
		selExtra string
	)
	if filter.StudentID != "" {
		selExtra = ", EXISTS (SELECT 1 FROM submissions s WHERE s.assignment_id = a.id AND s.student_id = ?) AS submitted"
		selArgs = append(selArgs, filter.StudentID)
	}

	if filter.Search != "" {
		val := likePattern(filter.Search)
		w.add("a.title ILIKE ? OR a.description ILIKE ?", val, val)
	}
	if filter.Subject != "" {
		w.add("LOWER(a.subject) = LOWER(?)", filter.Subject)
	}
	if filter.CreatedBy != "" {
		if !isUUID(filter.CreatedBy) {
			return []assignment.Assignment{}, nil
		}
		w.add("a.created_by = ?", filter.CreatedBy)
	}
	if !filter.DueFrom.IsZero() {
		w.add("a.due_date >= ?", filter.DueFrom.UTC())
	}
	if !filter.DueTo.IsZero() {
		w.add("a.due_date <= ?", filter.DueTo.UTC())
	}
	if filter.StudentID != "" && filter.Submitted != nil {
		cond := "EXISTS (SELECT 1 FROM submissions s WHERE s.assignment_id = a.id AND s.student_id = ?)"
		if !*filter.Submitted {
			cond = "NOT " + cond
		}
		w.add(cond, filter.StudentID)
	}

	q := "SELECT " + assignmentColumns + ", u.name AS author_name" + selExtra +
		" FROM assignments a JOIN users u ON u.id = a.created_by" + w.String() +
		orderBy(ordering, "a", "a.created_at DESC")

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), append(selArgs, w.args...)...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	assignments := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		assignments = append(assignments, r.toAssignment())
	}
	return assignments, nil
}

func (repo assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	if !isUUID(id) {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	var r assignmentRow
	q := "SELECT " + assignmentColumns + ", u.name AS author_name FROM assignments a JOIN users u ON u.id = a.created_by WHERE a.id = $1"
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		if err == sql.ErrNoRows {
			return assignment.Assignment{}, assignment.ErrNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "finding assignment")
	}
	return r.toAssignment(), nil
}

func (repo assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := `UPDATE assignments SET title = :title, description = :description, subject = :subject,
		due_date = :due_date, updated_at = :updated_at WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toAssignmentRow(a))
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return a, nil
}

func (repo assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	if !isUUID(id) {
		return assignment.ErrNotFound
	}
	// submissions, doubts and reminders cascade
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1", id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}

type reminderRow struct {
	assignmentRow
	StudentID    string `db:"student_id"`
	StudentName  string `db:"student_name"`
	StudentEmail string `db:"student_email"`
}

func (repo assignmentRepository) QueryDueReminders(ctx context.Context, from, to time.Time) ([]assignment.Reminder, error) {
	q := `SELECT ` + assignmentColumns + `, u.id AS student_id, u.name AS student_name, u.email AS student_email
		FROM assignments a CROSS JOIN users u
		WHERE a.due_date BETWEEN $1 AND $2
			AND u.is_active AND u.email IS NOT NULL
			AND EXISTS (SELECT 1 FROM UNNEST(u.roles) user_role WHERE user_role LIKE $3)
			AND NOT EXISTS (SELECT 1 FROM submissions s WHERE s.assignment_id = a.id AND s.student_id = u.id)
			AND NOT EXISTS (SELECT 1 FROM assignment_reminders r WHERE r.assignment_id = a.id AND r.student_id = u.id)
		ORDER BY a.due_date, u.name`

	var rows []reminderRow
	if err := repo.db.SelectContext(ctx, &rows, q, from.UTC(), to.UTC(), user.RoleStudent+"%"); err != nil {
		return nil, errors.Wrap(err, "querying due reminders")
	}
	reminders := make([]assignment.Reminder, 0, len(rows))
	for _, r := range rows {
		reminders = append(reminders, assignment.Reminder{
			Assignment:   r.toAssignment(),
			StudentID:    r.StudentID,
			StudentName:  r.StudentName,
			StudentEmail: r.StudentEmail,
		})
	}
	return reminders, nil
}

func (repo assignmentRepository) MarkReminded(ctx context.Context, assignmentID, studentID string, at time.Time) error {
	q := `INSERT INTO assignment_reminders (assignment_id, student_id, sent_at) VALUES ($1, $2, $3)
		ON CONFLICT (assignment_id, student_id) DO NOTHING`
	_, err := repo.db.ExecContext(ctx, q, assignmentID, studentID, at.UTC())
	return errors.Wrap(err, "marking reminder")
}
