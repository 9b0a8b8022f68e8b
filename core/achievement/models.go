package achievement

import "time"

// Counters are a student's aggregate progress figures.
type Counters struct {
	AssignmentsCompleted int   `json:"assignments_completed"`
	StudySeconds         int64 `json:"study_seconds"`
	StudySessions        int   `json:"study_sessions"`
	DoubtsAsked          int   `json:"doubts_asked"`
}

func (c Counters) Value(m Metric) float64 {
	switch m {
	case MetricAssignmentsCompleted:
		return float64(c.AssignmentsCompleted)
	case MetricStudyHours:
		return float64(c.StudySeconds) / 3600
	case MetricStudySessions:
		return float64(c.StudySessions)
	case MetricDoubtsAsked:
		return float64(c.DoubtsAsked)
	}
	return 0
}

type Unlock struct {
	StudentID  string
	Code       string
	UnlockedAt time.Time // UTC
}

// Badge is a catalog entry with the student's state.
type Badge struct {
	Definition
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at"`
	// Progress is the metric value over the threshold, capped to 1.
	Progress float64 `json:"progress"`
	// New is set on badges unlocked by the current evaluation.
	New bool `json:"new"`
}
