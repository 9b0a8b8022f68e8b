package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		s       string
		want    Period
		wantErr bool
	}{
		{s: "", want: PeriodAll},
		{s: "all", want: PeriodAll},
		{s: " Week ", want: PeriodWeek},
		{s: "MONTH", want: PeriodMonth},
		{s: "year", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			got, err := ParsePeriod(tt.s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPeriod_Since(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	assert.True(t, PeriodAll.Since(now).IsZero())
	assert.Equal(t, time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC), PeriodWeek.Since(now))
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), PeriodMonth.Since(now))
}

func TestRank(t *testing.T) {
	scoring := Scoring{PointsPerAssignment: 10, PointsPerStudyHour: 5}
	activities := []Activity{
		{StudentID: "1", Name: "Zoe", CompletedAssignments: 1},
		{StudentID: "2", Name: "Ann", CompletedAssignments: 2},
		{StudentID: "3", Name: "Bob", CompletedAssignments: 1, FocusedSeconds: 2*3600 + 59},
		{StudentID: "4", Name: "Cid", CompletedAssignments: 1},
		{StudentID: "5", Name: "Dan"},
	}

	standings := Rank(activities, scoring)
	require.Len(t, standings, 5)

	want := []struct {
		id     string
		rank   int
		points int
	}{
		{"3", 1, 20}, // partial hours do not count but break ties
		{"2", 2, 20},
		{"4", 3, 10},
		{"1", 3, 10},
		{"5", 5, 0},
	}
	for i, w := range want {
		assert.Equal(t, w.id, standings[i].StudentID, "position %d", i)
		assert.Equal(t, w.rank, standings[i].Rank, "position %d", i)
		assert.Equal(t, w.points, standings[i].Points, "position %d", i)
	}

	assert.Empty(t, Rank(nil, scoring))
}
