// Package inmemdb implements the core repositories in memory, for tests and local experiments.
package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

type pairKey [2]string

// DB holds every table; all repositories built on the same DB share its data.
type DB struct {
	mu          sync.RWMutex
	users       map[string]user.User
	assignments map[string]assignment.Assignment
	submissions map[pairKey]submission.Submission // {assignment, student}
	reminders   map[pairKey]time.Time             // {assignment, student}
	doubts      map[string]doubt.Doubt
	replies     map[string]doubt.Reply
	timers      map[string]study.Timer
	sessions    map[string]study.Session
	unlocks     map[pairKey]achievement.Unlock // {student, code}
}

func NewDB() *DB {
	return &DB{
		users:       make(map[string]user.User),
		assignments: make(map[string]assignment.Assignment),
		submissions: make(map[pairKey]submission.Submission),
		reminders:   make(map[pairKey]time.Time),
		doubts:      make(map[string]doubt.Doubt),
		replies:     make(map[string]doubt.Reply),
		timers:      make(map[string]study.Timer),
		sessions:    make(map[string]study.Session),
		unlocks:     make(map[pairKey]achievement.Unlock),
	}
}

// deleteAssignment removes an assignment and its dependents; db.mu must be held.
func (db *DB) deleteAssignment(id string) {
	delete(db.assignments, id)
	for k := range db.submissions {
		if k[0] == id {
			delete(db.submissions, k)
		}
	}
	for k := range db.reminders {
		if k[0] == id {
			delete(db.reminders, k)
		}
	}
	for did, d := range db.doubts {
		if d.AssignmentID == id {
			db.deleteDoubt(did)
		}
	}
}

// deleteDoubt removes a doubt and its replies; db.mu must be held.
func (db *DB) deleteDoubt(id string) {
	delete(db.doubts, id)
	for rid, r := range db.replies {
		if r.DoubtID == id {
			delete(db.replies, rid)
		}
	}
}

// deleteUser removes a user and everything referencing it; db.mu must be held.
func (db *DB) deleteUser(id string) {
	delete(db.users, id)
	delete(db.timers, id)
	for aid, a := range db.assignments {
		if a.CreatedBy == id {
			db.deleteAssignment(aid)
		}
	}
	for k := range db.submissions {
		if k[1] == id {
			delete(db.submissions, k)
		}
	}
	for k := range db.reminders {
		if k[1] == id {
			delete(db.reminders, k)
		}
	}
	for did, d := range db.doubts {
		if d.StudentID == id {
			db.deleteDoubt(did)
		}
	}
	for rid, r := range db.replies {
		if r.AuthorID == id {
			delete(db.replies, rid)
		}
	}
	for sid, s := range db.sessions {
		if s.StudentID == id {
			delete(db.sessions, sid)
		}
	}
	for k := range db.unlocks {
		if k[0] == id {
			delete(db.unlocks, k)
		}
	}
}

// compare orders values like PostgreSQL does: nil sorts after everything.
func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	case *time.Time:
		bv := b.(*time.Time)
		switch {
		case av == nil && bv == nil:
			return 0
		case av == nil:
			return 1
		case bv == nil:
			return -1
		}
		return compare(*av, *bv)
	}
	return 0
}

// sortByOrdering sorts items by the ordering fields, then by the def ordering.
func sortByOrdering(n int, swap func(i, j int), value func(i int, field string) interface{}, ordering []core.DBOrdering, def ...core.DBOrdering) sort.Interface {
	return &orderedSlice{n: n, swap: swap, value: value, ordering: append(append([]core.DBOrdering{}, ordering...), def...)}
}

type orderedSlice struct {
	n        int
	swap     func(i, j int)
	value    func(i int, field string) interface{}
	ordering []core.DBOrdering
}

func (s *orderedSlice) Len() int      { return s.n }
func (s *orderedSlice) Swap(i, j int) { s.swap(i, j) }
func (s *orderedSlice) Less(i, j int) bool {
	for _, ord := range s.ordering {
		c := compare(s.value(i, ord.Field), s.value(j, ord.Field))
		if c == 0 {
			continue
		}
		if ord.Ascending {
			return c < 0
		}
		return c > 0
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
