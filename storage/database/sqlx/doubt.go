package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
)

const doubtSelect = `SELECT d.id, d.assignment_id, d.student_id, d.question, d.is_resolved, d.created_at, d.updated_at,
		a.title AS assignment_title, a.created_by AS assignment_author_id, u.name AS student_name,
		(SELECT COUNT(*) FROM doubt_replies r WHERE r.doubt_id = d.id) AS reply_count
	FROM doubts d
		JOIN assignments a ON a.id = d.assignment_id
		JOIN users u ON u.id = d.student_id`

type doubtRow struct {
	ID                 string    `db:"id"`
	AssignmentID       string    `db:"assignment_id"`
	StudentID          string    `db:"student_id"`
	Question           string    `db:"question"`
	IsResolved         bool      `db:"is_resolved"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
	AssignmentTitle    string    `db:"assignment_title"`
	AssignmentAuthorID string    `db:"assignment_author_id"`
	StudentName        string    `db:"student_name"`
	ReplyCount         int       `db:"reply_count"`
}

func (r doubtRow) toDoubt() doubt.Doubt {
	return doubt.Doubt{
		ID:                 r.ID,
		AssignmentID:       r.AssignmentID,
		StudentID:          r.StudentID,
		Question:           r.Question,
		IsResolved:         r.IsResolved,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
		AssignmentTitle:    r.AssignmentTitle,
		AssignmentAuthorID: r.AssignmentAuthorID,
		StudentName:        r.StudentName,
		ReplyCount:         r.ReplyCount,
	}
}

type replyRow struct {
	ID         string    `db:"id"`
	DoubtID    string    `db:"doubt_id"`
	AuthorID   string    `db:"author_id"`
	AuthorName string    `db:"author_name"`
	Body       string    `db:"body"`
	CreatedAt  time.Time `db:"created_at"`
}

type doubtRepository struct {
	db *sqlx.DB
}

var _ doubt.Repository = (*doubtRepository)(nil) // interface compliance check

func NewDoubtRepository(db *sqlx.DB) *doubtRepository {
	return &doubtRepository{db: db}
}

func (repo doubtRepository) CreateDoubt(ctx context.Context, d doubt.Doubt) (doubt.Doubt, error) {
	q := `INSERT INTO doubts (id, assignment_id, student_id, question, is_resolved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q, d.ID, d.AssignmentID, d.StudentID, d.Question, d.IsResolved, d.CreatedAt.UTC(), d.UpdatedAt.UTC())
	if err != nil {
		return doubt.Doubt{}, errors.Wrap(err, "inserting doubt")
	}
	return d, nil
}

func (repo doubtRepository) QueryDoubts(ctx context.Context, filter doubt.QueryFilter) ([]doubt.Doubt, error) {
	var w where
	for _, cond := range []struct{ col, val string }{
		{"d.assignment_id", filter.AssignmentID},
		{"d.student_id", filter.StudentID},
		{"a.created_by", filter.AuthorID},
	} {
		if cond.val == "" {
			continue
		}
		if !isUUID(cond.val) {
			return []doubt.Doubt{}, nil
		}
		w.add(cond.col+" = ?", cond.val)
	}
	if filter.ParticipantID != "" {
		if !isUUID(filter.ParticipantID) {
			return []doubt.Doubt{}, nil
		}
		w.add("d.student_id = ? OR a.created_by = ?", filter.ParticipantID, filter.ParticipantID)
	}
	if filter.IsResolved != nil {
		w.add("d.is_resolved = ?", *filter.IsResolved)
	}

	var rows []doubtRow
	q := repo.db.Rebind(doubtSelect + w.String() + " ORDER BY d.created_at DESC")
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying doubts")
	}
	doubts := make([]doubt.Doubt, 0, len(rows))
	for _, r := range rows {
		doubts = append(doubts, r.toDoubt())
	}
	return doubts, nil
}

func (repo doubtRepository) GetDoubt(ctx context.Context, id string) (doubt.Doubt, error) {
	if !isUUID(id) {
		return doubt.Doubt{}, doubt.ErrNotFound
	}
	var r doubtRow
	if err := repo.db.GetContext(ctx, &r, doubtSelect+" WHERE d.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return doubt.Doubt{}, doubt.ErrNotFound
		}
		return doubt.Doubt{}, errors.Wrap(err, "finding doubt")
	}
	return r.toDoubt(), nil
}

func (repo doubtRepository) SetResolved(ctx context.Context, id string, resolved bool, at time.Time) error {
	_, err := repo.db.ExecContext(ctx, "UPDATE doubts SET is_resolved = $1, updated_at = $2 WHERE id = $3", resolved, at.UTC(), id)
	return errors.Wrap(err, "updating doubt")
}

func (repo doubtRepository) DeleteDoubt(ctx context.Context, id string) error {
	// replies cascade
	_, err := repo.db.ExecContext(ctx, "DELETE FROM doubts WHERE id = $1", id)
	return errors.Wrap(err, "deleting doubt")
}

func (repo doubtRepository) CreateReply(ctx context.Context, r doubt.Reply) (doubt.Reply, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		q := "INSERT INTO doubt_replies (id, doubt_id, author_id, body, created_at) VALUES ($1, $2, $3, $4, $5)"
		if _, err := tx.ExecContext(ctx, q, r.ID, r.DoubtID, r.AuthorID, r.Body, r.CreatedAt.UTC()); err != nil {
			return errors.Wrap(err, "inserting reply")
		}
		_, err := tx.ExecContext(ctx, "UPDATE doubts SET updated_at = $1 WHERE id = $2", r.CreatedAt.UTC(), r.DoubtID)
		return errors.Wrap(err, "touching doubt")
	})
	if err != nil {
		return doubt.Reply{}, err
	}
	return r, nil
}

func (repo doubtRepository) QueryReplies(ctx context.Context, doubtID string) ([]doubt.Reply, error) {
	q := `SELECT r.id, r.doubt_id, r.author_id, u.name AS author_name, r.body, r.created_at
		FROM doubt_replies r JOIN users u ON u.id = r.author_id
		WHERE r.doubt_id = $1
		ORDER BY r.created_at, r.id`

	var rows []replyRow
	if err := repo.db.SelectContext(ctx, &rows, q, doubtID); err != nil {
		return nil, errors.Wrap(err, "querying replies")
	}
	replies := make([]doubt.Reply, 0, len(rows))
	for _, r := range rows {
		replies = append(replies, doubt.Reply{
			ID:         r.ID,
			DoubtID:    r.DoubtID,
			AuthorID:   r.AuthorID,
			AuthorName: r.AuthorName,
			Body:       r.Body,
			CreatedAt:  r.CreatedAt.UTC(),
		})
	}
	return replies, nil
}
