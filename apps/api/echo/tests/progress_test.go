package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/dashboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/leaderboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
	"github.com/karthik768990/EduFlow-Learning-Platform/tests"
)

func logSession(t *testing.T, app *testApp, token, subject string, from, to time.Time) {
	t.Helper()
	rec := app.do(t, http.MethodPost, "/api/study/sessions", token, study.NewSession{Subject: subject, StartedAt: from, EndedAt: to})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func getBoard(t *testing.T, app *testApp, path, token string) leaderboard.Board {
	t.Helper()
	rec := app.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var board leaderboard.Board
	decode(t, rec, &board)
	return board
}

func Test_progressApi_leaderboard(t *testing.T) {
	app := setup(t)

	teacher := app.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	ann := app.createUser(t, "Ann", "ann", user.RoleStudent)
	bob := app.createUser(t, "Bob", "bob", user.RoleStudent)
	cid := app.createUser(t, "Cid", "cid", user.RoleStudent)
	app.createUser(t, "Dan", "dan", user.RoleStudent)
	testutil.CreateUser(t, app.usrRepo, "Eve", "eve", "eve@test.cd", strongPwd, []string{user.RoleStudent}, false)
	teacherToken := getToken(t, app, teacher)
	annToken := getToken(t, app, ann)
	bobToken := getToken(t, app, bob)

	a1 := createAssignment(t, app, teacherToken, assignment.NewAssignment{Title: "One"})
	a2 := createAssignment(t, app, teacherToken, assignment.NewAssignment{Title: "Two"})
	submit(t, app, annToken, a1.ID, "done")
	submit(t, app, annToken, a2.ID, "done")
	submit(t, app, bobToken, a1.ID, "done")
	now := time.Now().UTC()
	logSession(t, app, bobToken, "Maths", now.Add(-3*time.Hour), now.Add(-time.Hour))

	tests := []httpTest{
		{
			name:     "unknown period",
			method:   http.MethodGet,
			path:     "/api/leaderboard?period=year",
			token:    annToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"period": "period must be one of all, week, month"}),
		},
		{
			name:     "bad limit",
			method:   http.MethodGet,
			path:     "/api/leaderboard?limit=ten",
			token:    annToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"limit": "must be an integer"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("all time", func(t *testing.T) {
		board := getBoard(t, app, "/api/leaderboard", annToken)
		assert.Equal(t, leaderboard.PeriodAll, board.Period)
		require.Len(t, board.Standings, 4) // inactive students are not ranked

		want := []struct {
			name   string
			rank   int
			points int
		}{
			{"Bob", 1, 20}, // 10 for the assignment, 10 for two hours of study
			{"Ann", 2, 20},
			{"Cid", 3, 0},
			{"Dan", 3, 0},
		}
		for i, w := range want {
			assert.Equal(t, w.name, board.Standings[i].Name)
			assert.Equal(t, w.rank, board.Standings[i].Rank)
			assert.Equal(t, w.points, board.Standings[i].Points)
		}
		require.NotNil(t, board.Me)
		assert.Equal(t, ann.ID, board.Me.StudentID)
		assert.Equal(t, 2, board.Me.Rank)
	})

	t.Run("limit keeps own standing", func(t *testing.T) {
		board := getBoard(t, app, "/api/leaderboard?period=week&limit=1", getToken(t, app, cid))
		assert.Equal(t, leaderboard.PeriodWeek, board.Period)
		require.Len(t, board.Standings, 1)
		assert.Equal(t, bob.ID, board.Standings[0].StudentID)
		require.NotNil(t, board.Me)
		assert.Equal(t, 3, board.Me.Rank)
	})

	t.Run("teachers are not ranked", func(t *testing.T) {
		board := getBoard(t, app, "/api/leaderboard?period=month", teacherToken)
		assert.Len(t, board.Standings, 4)
		assert.Nil(t, board.Me)
	})
}

func Test_progressApi_leaderboardPeriods(t *testing.T) {
	app := setup(t)
	t.Cleanup(func() { submission.NowFunc = time.Now })

	teacher := app.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	fay := app.createUser(t, "Fay", "fay", user.RoleStudent)
	gus := app.createUser(t, "Gus", "gus", user.RoleStudent)
	teacherToken := getToken(t, app, teacher)
	fayToken := getToken(t, app, fay)
	gusToken := getToken(t, app, gus)

	a1 := createAssignment(t, app, teacherToken, assignment.NewAssignment{Title: "One"})
	a2 := createAssignment(t, app, teacherToken, assignment.NewAssignment{Title: "Two"})
	now := time.Now().UTC()
	tenDaysAgo := now.AddDate(0, 0, -10)
	fortyDaysAgo := now.AddDate(0, 0, -40)

	// Fay: a submission and three hours of study, ten days ago
	submission.NowFunc = func() time.Time { return tenDaysAgo }
	submit(t, app, fayToken, a1.ID, "done")
	submission.NowFunc = time.Now
	logSession(t, app, fayToken, "Maths", tenDaysAgo.Add(-3*time.Hour), tenDaysAgo)

	// Gus: a submission today and two hours of study forty days ago
	submit(t, app, gusToken, a2.ID, "done")
	logSession(t, app, gusToken, "Physics", fortyDaysAgo.Add(-2*time.Hour), fortyDaysAgo)

	tests := []struct {
		period string
		want   []struct {
			name   string
			points int
		}
	}{
		{"all", []struct {
			name   string
			points int
		}{{"Fay", 25}, {"Gus", 20}}},
		{"month", []struct {
			name   string
			points int
		}{{"Fay", 25}, {"Gus", 10}}},
		{"week", []struct {
			name   string
			points int
		}{{"Gus", 10}, {"Fay", 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			board := getBoard(t, app, "/api/leaderboard?period="+tt.period, teacherToken)
			require.Len(t, board.Standings, len(tt.want))
			for i, w := range tt.want {
				assert.Equal(t, w.name, board.Standings[i].Name)
				assert.Equal(t, i+1, board.Standings[i].Rank)
				assert.Equal(t, w.points, board.Standings[i].Points)
			}
		})
	}
}

func Test_progressApi_achievements(t *testing.T) {
	app := setup(t)

	teacher := app.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	student := app.createUser(t, "Student", "student", user.RoleStudent)
	teacherToken := getToken(t, app, teacher)
	studentToken := getToken(t, app, student)

	listBadges := func(token string) []achievement.Badge {
		rec := app.do(t, http.MethodGet, "/api/achievements", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var badges []achievement.Badge
		decode(t, rec, &badges)
		return badges
	}
	badgeByCode := func(badges []achievement.Badge, code string) achievement.Badge {
		for _, b := range badges {
			if b.Code == code {
				return b
			}
		}
		t.Fatalf("badge %q not found", code)
		return achievement.Badge{}
	}

	t.Run("catalog for teachers", func(t *testing.T) {
		badges := listBadges(teacherToken)
		require.NotEmpty(t, badges)
		for _, b := range badges {
			assert.False(t, b.Unlocked, b.Code)
			assert.NotEmpty(t, b.Name, b.Code)
		}

		rec := app.do(t, http.MethodPost, "/api/achievements/evaluate", teacherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("student progress", func(t *testing.T) {
		badges := listBadges(studentToken)
		assert.False(t, badgeByCode(badges, "first_submission").Unlocked)

		a := createAssignment(t, app, teacherToken, assignment.NewAssignment{Title: "Essay"})
		submit(t, app, studentToken, a.ID, "done")

		badges = listBadges(studentToken)
		first := badgeByCode(badges, "first_submission")
		assert.True(t, first.Unlocked)
		assert.NotNil(t, first.UnlockedAt)
		assert.Equal(t, 1.0, first.Progress)
		assert.False(t, first.New)
		five := badgeByCode(badges, "five_submissions")
		assert.False(t, five.Unlocked)
		assert.InDelta(t, 0.2, five.Progress, 1e-9)

		// already unlocked when submitting
		rec := app.do(t, http.MethodPost, "/api/achievements/evaluate", studentToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func Test_progressApi_dashboard(t *testing.T) {
	app := setup(t)

	teacher := app.createUser(t, "Teacher", "teacher", user.RoleTeacher)
	student := app.createUser(t, "Student", "student", user.RoleStudent)
	teacherToken := getToken(t, app, teacher)
	studentToken := getToken(t, app, student)

	later := time.Now().Add(72 * time.Hour).UTC()
	sooner := time.Now().Add(24 * time.Hour).UTC()
	essay := createAssignment(t, app, teacherToken, assignment.NewAssignment{Title: "Essay", DueDate: &later})
	quiz := createAssignment(t, app, teacherToken, assignment.NewAssignment{Title: "Quiz", DueDate: &sooner})
	lab := createAssignment(t, app, teacherToken, assignment.NewAssignment{Title: "Lab"})
	submit(t, app, studentToken, essay.ID, "done")
	askDoubt(t, app, studentToken, quiz.ID, "Is it timed?")
	now := time.Now().UTC()
	logSession(t, app, studentToken, "Maths", now.Add(-40*time.Minute), now.Add(-10*time.Minute))

	getDash := func(token string) dashboard.Dashboard {
		rec := app.do(t, http.MethodGet, "/api/dashboard", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var dash dashboard.Dashboard
		decode(t, rec, &dash)
		return dash
	}

	t.Run("student", func(t *testing.T) {
		dash := getDash(studentToken)
		assert.Nil(t, dash.Teacher)
		require.NotNil(t, dash.Student)

		s := dash.Student
		require.Len(t, s.PendingAssignments, 2)
		assert.Equal(t, quiz.ID, s.PendingAssignments[0].ID) // due soonest first
		assert.Equal(t, lab.ID, s.PendingAssignments[1].ID)
		assert.Equal(t, 2, s.PendingCount)
		assert.Equal(t, 1, s.CompletedAssignments)
		assert.Equal(t, int64(30*60), s.TotalFocusedSeconds)
		assert.Equal(t, 1, s.OpenDoubts)
		require.NotNil(t, s.Standing)
		assert.Equal(t, 1, s.Standing.Rank)

		codes := make([]string, 0, len(s.Achievements))
		for _, b := range s.Achievements {
			assert.True(t, b.Unlocked)
			codes = append(codes, b.Code)
		}
		assert.ElementsMatch(t, []string{"first_submission", "first_session", "first_doubt"}, codes)
	})

	t.Run("teacher", func(t *testing.T) {
		dash := getDash(teacherToken)
		assert.Nil(t, dash.Student)
		require.NotNil(t, dash.Teacher)

		tch := dash.Teacher
		assert.Equal(t, 3, tch.AssignmentsAuthored)
		assert.Equal(t, 1, tch.SubmissionsReceived)
		assert.Equal(t, 1, tch.UnresolvedDoubts)
		require.Len(t, tch.RecentSubmissions, 1)
		assert.Equal(t, essay.ID, tch.RecentSubmissions[0].AssignmentID)
	})
}

func Test_progressApi_dashboardScopes(t *testing.T) {
	app := setup(t)

	tutor := app.createUser(t, "Tutor", "tutor", user.RoleTeacher)
	dual := app.createUser(t, "Dual", "dual", user.RoleStudent, user.RoleTeacher)
	ann := app.createUser(t, "Ann", "ann", user.RoleStudent)
	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin)
	tutorToken := getToken(t, app, tutor)
	dualToken := getToken(t, app, dual)
	annToken := getToken(t, app, ann)

	taught := createAssignment(t, app, tutorToken, assignment.NewAssignment{Title: "Taught"})
	authored := createAssignment(t, app, dualToken, assignment.NewAssignment{Title: "Authored"})
	askDoubt(t, app, dualToken, taught.ID, "Which chapter?")
	askDoubt(t, app, annToken, authored.ID, "Any hints?")
	askDoubt(t, app, annToken, taught.ID, "Is it graded?")

	getDash := func(token string) dashboard.Dashboard {
		rec := app.do(t, http.MethodGet, "/api/dashboard", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var dash dashboard.Dashboard
		decode(t, rec, &dash)
		return dash
	}

	t.Run("student and teacher", func(t *testing.T) {
		dash := getDash(dualToken)
		require.NotNil(t, dash.Student)
		require.NotNil(t, dash.Teacher)
		assert.Equal(t, 1, dash.Student.OpenDoubts)
		assert.Equal(t, 1, dash.Teacher.AssignmentsAuthored)
		assert.Equal(t, 1, dash.Teacher.UnresolvedDoubts)
	})

	t.Run("admin counts own assignments only", func(t *testing.T) {
		dash := getDash(getToken(t, app, admin))
		assert.Nil(t, dash.Student)
		require.NotNil(t, dash.Teacher)
		assert.Equal(t, 0, dash.Teacher.AssignmentsAuthored)
		assert.Equal(t, 0, dash.Teacher.SubmissionsReceived)
		assert.Equal(t, 0, dash.Teacher.UnresolvedDoubts)
	})

	t.Run("teacher", func(t *testing.T) {
		dash := getDash(tutorToken)
		require.NotNil(t, dash.Teacher)
		assert.Equal(t, 2, dash.Teacher.UnresolvedDoubts)
	})
}
