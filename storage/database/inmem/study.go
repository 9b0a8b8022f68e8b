package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
)

type studyRepository struct {
	db *DB
}

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(db *DB) *studyRepository {
	return &studyRepository{db: db}
}

func (repo *studyRepository) GetTimer(_ context.Context, studentID string) (study.Timer, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	t, ok := repo.db.timers[studentID]
	if !ok {
		return study.Timer{}, study.ErrTimerNotFound
	}
	return t, nil
}

func (repo *studyRepository) SaveTimer(_ context.Context, t study.Timer, sessions ...study.Session) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, s := range sessions {
		repo.db.sessions[s.ID] = s
	}
	repo.db.timers[t.StudentID] = t
	return nil
}

func (repo *studyRepository) GetSession(_ context.Context, id string) (study.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	s, ok := repo.db.sessions[id]
	if !ok {
		return study.Session{}, study.ErrSessionNotFound
	}
	return s, nil
}

func (repo *studyRepository) CreateSession(_ context.Context, s study.Session) (study.Session, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.sessions[s.ID] = s
	return s, nil
}

func (repo *studyRepository) QuerySessions(_ context.Context, filter study.SessionFilter) ([]study.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	sessions := make([]study.Session, 0)
	for _, s := range repo.db.sessions {
		if filter.StudentID != "" && s.StudentID != filter.StudentID {
			continue
		}
		if filter.Subject != "" && !strings.EqualFold(s.Subject, filter.Subject) {
			continue
		}
		if !filter.StartedFrom.IsZero() && s.StartedAt.Before(filter.StartedFrom) {
			continue
		}
		if !filter.StartedTo.IsZero() && s.StartedAt.After(filter.StartedTo) {
			continue
		}
		sessions = append(sessions, s)
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].StartedAt.After(sessions[j].StartedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	if filter.Limit > 0 && len(sessions) > filter.Limit {
		sessions = sessions[:filter.Limit]
	}
	return sessions, nil
}
