package achievement

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

var NowFunc = time.Now // mockable

type (
	Repository interface {
		QueryUnlocks(ctx context.Context, studentID string) ([]Unlock, error)
		// Unlock inserts the unlock unless the student already has that code.
		// It reports whether a row was inserted.
		Unlock(ctx context.Context, u Unlock) (bool, error)
	}

	// CounterSource computes a student's counters from submissions, sessions and doubts.
	CounterSource interface {
		Counters(ctx context.Context, studentID string) (Counters, error)
	}

	Service struct {
		catalog  Catalog
		repo     Repository
		counters CounterSource
	}
)

func NewService(catalog Catalog, repo Repository, counters CounterSource) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(counters, "counters"),
	).CheckAndPanic()
	return &Service{catalog: catalog, repo: repo, counters: counters}
}

func (svc *Service) Catalog() Catalog {
	return svc.catalog
}

// Evaluate unlocks every achievement the student has reached and returns the newly unlocked ones.
func (svc *Service) Evaluate(ctx context.Context, student user.User) ([]Badge, error) {
	badges, err := svc.evaluate(ctx, student)
	if err != nil {
		return nil, err
	}
	newly := make([]Badge, 0)
	for _, b := range badges {
		if b.New {
			newly = append(newly, b)
		}
	}
	return newly, nil
}

// List evaluates the student's achievements and returns the whole catalog with their state.
func (svc *Service) List(ctx context.Context, student user.User) ([]Badge, error) {
	return svc.evaluate(ctx, student)
}

func (svc *Service) evaluate(ctx context.Context, student user.User) ([]Badge, error) {
	if !student.IsStudent() {
		return nil, core.ErrForbidden
	}

	counters, err := svc.counters.Counters(ctx, student.ID)
	if err != nil {
		return nil, errors.Wrap(err, "computing achievement counters")
	}
	unlocks, err := svc.repo.QueryUnlocks(ctx, student.ID)
	if err != nil {
		return nil, errors.Wrap(err, "querying unlocked achievements")
	}

	unlockedAt := make(map[string]time.Time, len(unlocks))
	unlocked := make(map[string]bool, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.Code] = u.UnlockedAt
		unlocked[u.Code] = true
	}

	now := NowFunc().UTC()
	newly := make(map[string]bool)
	for _, def := range svc.catalog.Due(counters, unlocked) {
		inserted, err := svc.repo.Unlock(ctx, Unlock{StudentID: student.ID, Code: def.Code, UnlockedAt: now})
		if err != nil {
			return nil, errors.Wrapf(err, "unlocking achievement %q", def.Code)
		}
		if inserted {
			// a concurrent evaluation may have won the insert; it then reports the badge as new
			newly[def.Code] = true
			unlockedAt[def.Code] = now
		}
		unlocked[def.Code] = true
	}

	badges := make([]Badge, 0, len(svc.catalog))
	for _, def := range svc.catalog {
		b := Badge{Definition: def, Unlocked: unlocked[def.Code], New: newly[def.Code]}
		if at, ok := unlockedAt[def.Code]; ok {
			at := at
			b.UnlockedAt = &at
		}
		b.Progress = counters.Value(def.Metric) / def.Threshold
		if b.Progress > 1 || b.Unlocked {
			b.Progress = 1
		}
		badges = append(badges, b)
	}
	return badges, nil
}
