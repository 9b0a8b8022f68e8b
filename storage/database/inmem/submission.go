package inmemdb

import (
	"context"
	"sort"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
)

type submissionRepository struct {
	db *DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db}
}

// joined sets the joined fields; db.mu must be held.
func (repo *submissionRepository) joined(s submission.Submission) submission.Submission {
	a := repo.db.assignments[s.AssignmentID]
	s.AssignmentTitle = a.Title
	s.DueDate = a.DueDate
	s.StudentName = repo.db.users[s.StudentID].Name
	s.SetLate()
	return s
}

func (repo *submissionRepository) UpsertSubmission(_ context.Context, s submission.Submission) (submission.Submission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := pairKey{s.AssignmentID, s.StudentID}
	if existing, ok := repo.db.submissions[key]; ok {
		existing.Reflection = s.Reflection
		existing.UpdatedAt = s.UpdatedAt
		s = existing
	}
	repo.db.submissions[key] = s
	return repo.joined(s), nil
}

func (repo *submissionRepository) QuerySubmissions(_ context.Context, filter submission.QueryFilter) ([]submission.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, s := range repo.db.submissions {
		if filter.AssignmentID != "" && s.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && s.StudentID != filter.StudentID {
			continue
		}
		if filter.AuthorID != "" && repo.db.assignments[s.AssignmentID].CreatedBy != filter.AuthorID {
			continue
		}
		subs = append(subs, repo.joined(s))
	}

	sort.Slice(subs, func(i, j int) bool {
		if !subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].SubmittedAt.After(subs[j].SubmittedAt)
		}
		return subs[i].ID < subs[j].ID
	})
	if filter.Limit > 0 && len(subs) > filter.Limit {
		subs = subs[:filter.Limit]
	}
	return subs, nil
}

func (repo *submissionRepository) GetSubmission(_ context.Context, assignmentID, studentID string) (submission.Submission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	s, ok := repo.db.submissions[pairKey{assignmentID, studentID}]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	return repo.joined(s), nil
}

func (repo *submissionRepository) DeleteSubmission(_ context.Context, assignmentID, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	delete(repo.db.submissions, pairKey{assignmentID, studentID})
	return nil
}
