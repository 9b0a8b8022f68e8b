package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
)

type doubtRepository struct {
	db *DB
}

var _ doubt.Repository = (*doubtRepository)(nil) // interface compliance check

func NewDoubtRepository(db *DB) *doubtRepository {
	return &doubtRepository{db: db}
}

// joined sets the joined fields; db.mu must be held.
func (repo *doubtRepository) joined(d doubt.Doubt) doubt.Doubt {
	a := repo.db.assignments[d.AssignmentID]
	d.AssignmentTitle = a.Title
	d.AssignmentAuthorID = a.CreatedBy
	d.StudentName = repo.db.users[d.StudentID].Name
	d.ReplyCount = 0
	for _, r := range repo.db.replies {
		if r.DoubtID == d.ID {
			d.ReplyCount++
		}
	}
	d.Replies = nil
	return d
}

func (repo *doubtRepository) CreateDoubt(_ context.Context, d doubt.Doubt) (doubt.Doubt, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.doubts[d.ID] = d
	return repo.joined(d), nil
}

func (repo *doubtRepository) QueryDoubts(_ context.Context, filter doubt.QueryFilter) ([]doubt.Doubt, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	doubts := make([]doubt.Doubt, 0)
	for _, d := range repo.db.doubts {
		d = repo.joined(d)
		if filter.AssignmentID != "" && d.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && d.StudentID != filter.StudentID {
			continue
		}
		if filter.AuthorID != "" && d.AssignmentAuthorID != filter.AuthorID {
			continue
		}
		if filter.ParticipantID != "" && d.StudentID != filter.ParticipantID && d.AssignmentAuthorID != filter.ParticipantID {
			continue
		}
		if filter.IsResolved != nil && d.IsResolved != *filter.IsResolved {
			continue
		}
		doubts = append(doubts, d)
	}

	sort.Slice(doubts, func(i, j int) bool {
		if !doubts[i].CreatedAt.Equal(doubts[j].CreatedAt) {
			return doubts[i].CreatedAt.After(doubts[j].CreatedAt)
		}
		return doubts[i].ID < doubts[j].ID
	})
	return doubts, nil
}

func (repo *doubtRepository) GetDoubt(_ context.Context, id string) (doubt.Doubt, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	d, ok := repo.db.doubts[id]
	if !ok {
		return doubt.Doubt{}, doubt.ErrNotFound
	}
	return repo.joined(d), nil
}

func (repo *doubtRepository) SetResolved(_ context.Context, id string, resolved bool, at time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if d, ok := repo.db.doubts[id]; ok {
		d.IsResolved = resolved
		d.UpdatedAt = at
		repo.db.doubts[id] = d
	}
	return nil
}

func (repo *doubtRepository) DeleteDoubt(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.deleteDoubt(id)
	return nil
}

func (repo *doubtRepository) CreateReply(_ context.Context, r doubt.Reply) (doubt.Reply, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	d, ok := repo.db.doubts[r.DoubtID]
	if !ok {
		return doubt.Reply{}, doubt.ErrNotFound
	}
	d.UpdatedAt = r.CreatedAt
	repo.db.doubts[d.ID] = d
	repo.db.replies[r.ID] = r
	return r, nil
}

func (repo *doubtRepository) QueryReplies(_ context.Context, doubtID string) ([]doubt.Reply, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	replies := make([]doubt.Reply, 0)
	for _, r := range repo.db.replies {
		if r.DoubtID == doubtID {
			r.AuthorName = repo.db.users[r.AuthorID].Name
			replies = append(replies, r)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	return replies, nil
}
