package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
)

type unlockRow struct {
	StudentID  string    `db:"student_id"`
	Code       string    `db:"code"`
	UnlockedAt time.Time `db:"unlocked_at"`
}

type achievementRepository struct {
	db *sqlx.DB
}

var _ achievement.Repository = (*achievementRepository)(nil) // interface compliance check

func NewAchievementRepository(db *sqlx.DB) *achievementRepository {
	return &achievementRepository{db: db}
}

func (repo achievementRepository) QueryUnlocks(ctx context.Context, studentID string) ([]achievement.Unlock, error) {
	if !isUUID(studentID) {
		return []achievement.Unlock{}, nil
	}
	var rows []unlockRow
	q := "SELECT student_id, code, unlocked_at FROM user_achievements WHERE student_id = $1 ORDER BY unlocked_at, code"
	if err := repo.db.SelectContext(ctx, &rows, q, studentID); err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}
	unlocks := make([]achievement.Unlock, 0, len(rows))
	for _, r := range rows {
		unlocks = append(unlocks, achievement.Unlock{StudentID: r.StudentID, Code: r.Code, UnlockedAt: r.UnlockedAt.UTC()})
	}
	return unlocks, nil
}

func (repo achievementRepository) Unlock(ctx context.Context, u achievement.Unlock) (bool, error) {
	q := `INSERT INTO user_achievements (student_id, code, unlocked_at) VALUES ($1, $2, $3)
		ON CONFLICT (student_id, code) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, q, u.StudentID, u.Code, u.UnlockedAt.UTC())
	if err != nil {
		return false, errors.Wrap(err, "unlocking achievement")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "unlocking achievement")
	}
	return n > 0, nil
}
