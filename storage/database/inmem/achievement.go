package inmemdb

import (
	"context"
	"sort"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
)

type achievementRepository struct {
	db *DB
}

var _ achievement.Repository = (*achievementRepository)(nil) // interface compliance check

func NewAchievementRepository(db *DB) *achievementRepository {
	return &achievementRepository{db: db}
}

func (repo *achievementRepository) QueryUnlocks(_ context.Context, studentID string) ([]achievement.Unlock, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	unlocks := make([]achievement.Unlock, 0)
	for k, u := range repo.db.unlocks {
		if k[0] == studentID {
			unlocks = append(unlocks, u)
		}
	}
	sort.Slice(unlocks, func(i, j int) bool {
		if !unlocks[i].UnlockedAt.Equal(unlocks[j].UnlockedAt) {
			return unlocks[i].UnlockedAt.Before(unlocks[j].UnlockedAt)
		}
		return unlocks[i].Code < unlocks[j].Code
	})
	return unlocks, nil
}

func (repo *achievementRepository) Unlock(_ context.Context, u achievement.Unlock) (bool, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := pairKey{u.StudentID, u.Code}
	if _, ok := repo.db.unlocks[key]; ok {
		return false, nil
	}
	repo.db.unlocks[key] = u
	return true, nil
}
