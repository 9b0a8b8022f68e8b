package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
)

const submissionSelect = `SELECT s.id, s.assignment_id, s.student_id, s.reflection, s.submitted_at, s.updated_at,
		a.title AS assignment_title, a.due_date, u.name AS student_name
	FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		JOIN users u ON u.id = s.student_id`

type submissionRow struct {
	ID              string    `db:"id"`
	AssignmentID    string    `db:"assignment_id"`
	StudentID       string    `db:"student_id"`
	Reflection      string    `db:"reflection"`
	SubmittedAt     time.Time `db:"submitted_at"`
	UpdatedAt       time.Time `db:"updated_at"`
	AssignmentTitle string    `db:"assignment_title"`
	DueDate         null.Time `db:"due_date"`
	StudentName     string    `db:"student_name"`
}

func (r submissionRow) toSubmission() submission.Submission {
	s := submission.Submission{
		ID:              r.ID,
		AssignmentID:    r.AssignmentID,
		StudentID:       r.StudentID,
		Reflection:      r.Reflection,
		SubmittedAt:     r.SubmittedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
		AssignmentTitle: r.AssignmentTitle,
		StudentName:     r.StudentName,
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time.UTC()
		s.DueDate = &due
	}
	s.SetLate()
	return s
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

// UpsertSubmission keeps the first submitted_at of a resubmitted assignment.
func (repo submissionRepository) UpsertSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	q := `INSERT INTO submissions (id, assignment_id, student_id, reflection, submitted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (assignment_id, student_id)
			DO UPDATE SET reflection = EXCLUDED.reflection, updated_at = EXCLUDED.updated_at
		RETURNING id, assignment_id, student_id, reflection, submitted_at, updated_at`

	var r submissionRow
	err := repo.db.QueryRowxContext(ctx, q, s.ID, s.AssignmentID, s.StudentID, s.Reflection, s.SubmittedAt.UTC(), s.UpdatedAt.UTC()).
		StructScan(&r)
	if err != nil {
		return submission.Submission{}, errors.Wrap(err, "upserting submission")
	}
	return r.toSubmission(), nil
}

func (repo submissionRepository) QuerySubmissions(ctx context.Context, filter submission.QueryFilter) ([]submission.Submission, error) {
	var w where
	for _, cond := range []struct{ col, val string }{
		{"s.assignment_id", filter.AssignmentID},
		{"s.student_id", filter.StudentID},
		{"a.created_by", filter.AuthorID},
	} {
		if cond.val == "" {
			continue
		}
		if !isUUID(cond.val) {
			return []submission.Submission{}, nil
		}
		w.add(cond.col+" = ?", cond.val)
	}

	q := submissionSelect + w.String() + " ORDER BY s.submitted_at DESC"
	if filter.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(filter.Limit)
	}

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]submission.Submission, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.toSubmission())
	}
	return subs, nil
}

func (repo submissionRepository) GetSubmission(ctx context.Context, assignmentID, studentID string) (submission.Submission, error) {
	if !isUUID(assignmentID) || !isUUID(studentID) {
		return submission.Submission{}, submission.ErrNotFound
	}
	var r submissionRow
	q := submissionSelect + " WHERE s.assignment_id = $1 AND s.student_id = $2"
	if err := repo.db.GetContext(ctx, &r, q, assignmentID, studentID); err != nil {
		if err == sql.ErrNoRows {
			return submission.Submission{}, submission.ErrNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "finding submission")
	}
	return r.toSubmission(), nil
}

func (repo submissionRepository) DeleteSubmission(ctx context.Context, assignmentID, studentID string) error {
	_, err := repo.db.ExecContext(ctx, "DELETE FROM submissions WHERE assignment_id = $1 AND student_id = $2", assignmentID, studentID)
	return errors.Wrap(err, "deleting submission")
}
