package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

func askDoubt(t *testing.T, app *testApp, token, assignmentID, question string) doubt.Doubt {
	t.Helper()
	rec := app.do(t, http.MethodPost, "/api/doubts", token, doubt.NewDoubt{AssignmentID: assignmentID, Question: question})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var d doubt.Doubt
	decode(t, rec, &d)
	return d
}

func Test_doubtApi(t *testing.T) {
	app := setup(t)

	author := app.createUser(t, "Author", "author", user.RoleTeacher)
	other := app.createUser(t, "Other", "other", user.RoleTeacher)
	ann := app.createUser(t, "Ann", "ann", user.RoleStudent)
	bob := app.createUser(t, "Bob", "bob", user.RoleStudent)
	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin)
	authorToken := getToken(t, app, author)
	otherToken := getToken(t, app, other)
	annToken := getToken(t, app, ann)
	bobToken := getToken(t, app, bob)

	a := createAssignment(t, app, authorToken, assignment.NewAssignment{Title: "Essay"})

	tests := []httpTest{
		{
			name:     "teacher cannot ask",
			method:   http.MethodPost,
			path:     "/api/doubts",
			body:     marchallObj(t, doubt.NewDoubt{AssignmentID: a.ID, Question: "?"}),
			token:    authorToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "blank question",
			method:   http.MethodPost,
			path:     "/api/doubts",
			body:     marchallObj(t, doubt.NewDoubt{AssignmentID: a.ID, Question: " "}),
			token:    annToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"question": "this field is required"}),
		},
		{
			name:     "unknown assignment",
			method:   http.MethodPost,
			path:     "/api/doubts",
			body:     marchallObj(t, doubt.NewDoubt{AssignmentID: "1b4e28ba-2fa1-11d2-883f-0016d3cca427", Question: "Where?"}),
			token:    annToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "assignment not found"}),
		},
	}
	runHTTPTests(t, app, tests)

	app.mailSvc.Reset()
	d := askDoubt(t, app, annToken, a.ID, "How long should it be?")
	assert.Equal(t, ann.ID, d.StudentID)
	assert.Equal(t, "Essay", d.AssignmentTitle)
	assert.Equal(t, author.ID, d.AssignmentAuthorID)
	assert.False(t, d.IsResolved)

	t.Run("author notified", func(t *testing.T) {
		sent := app.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, string(notification.KindDoubtAsked), sent[0].TemplateName)
		assert.Equal(t, "author@test.cd", sent[0].To[0].Address)
		assert.Contains(t, sent[0].TextContent, "How long should it be?")
	})

	t.Run("visibility", func(t *testing.T) {
		for _, tc := range []struct {
			name  string
			token string
			want  int
		}{
			{"owner", annToken, 1},
			{"author", authorToken, 1},
			{"admin", getToken(t, app, admin), 1},
			{"other student", bobToken, 0},
			{"other teacher", otherToken, 0},
		} {
			rec := app.do(t, http.MethodGet, "/api/doubts", tc.token, nil)
			require.Equal(t, http.StatusOK, rec.Code, tc.name)
			var doubts []doubt.Doubt
			decode(t, rec, &doubts)
			assert.Len(t, doubts, tc.want, tc.name)
		}

		rec := app.do(t, http.MethodGet, "/api/doubts/"+d.ID, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = app.do(t, http.MethodPost, "/api/doubts/"+d.ID+"/replies", otherToken, doubt.NewReply{Body: "Hi"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("thread", func(t *testing.T) {
		app.mailSvc.Reset()
		rec := app.do(t, http.MethodPost, "/api/doubts/"+d.ID+"/replies", authorToken, doubt.NewReply{Body: "Two pages."})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		rec = app.do(t, http.MethodPost, "/api/doubts/"+d.ID+"/replies", annToken, doubt.NewReply{Body: "Thanks!"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		sent := app.mailSvc.SentMessages()
		require.Len(t, sent, 2)
		assert.Equal(t, "ann@test.cd", sent[0].To[0].Address)
		assert.Equal(t, "author@test.cd", sent[1].To[0].Address)
		for _, msg := range sent {
			assert.Equal(t, string(notification.KindDoubtReplied), msg.TemplateName)
		}

		rec = app.do(t, http.MethodGet, "/api/doubts/"+d.ID, annToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var got doubt.Doubt
		decode(t, rec, &got)
		require.Len(t, got.Replies, 2)
		assert.Equal(t, 2, got.ReplyCount)
		assert.Equal(t, "Two pages.", got.Replies[0].Body)
		assert.Equal(t, "Author", got.Replies[0].AuthorName)
		assert.Equal(t, "Thanks!", got.Replies[1].Body)
	})

	t.Run("resolve and reopen", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, "/api/doubts/"+d.ID+"/resolve", authorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got doubt.Doubt
		decode(t, rec, &got)
		assert.True(t, got.IsResolved)

		rec = app.do(t, http.MethodGet, "/api/doubts?is_resolved=false", annToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())

		rec = app.do(t, http.MethodDelete, "/api/doubts/"+d.ID+"/resolve", annToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &got)
		assert.False(t, got.IsResolved)
	})

	t.Run("delete", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, "/api/doubts/"+d.ID, authorToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodDelete, "/api/doubts/"+d.ID, annToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		rec = app.do(t, http.MethodGet, "/api/doubts/"+d.ID, annToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_doubtApi_studentAndTeacher(t *testing.T) {
	app := setup(t)

	tutor := app.createUser(t, "Tutor", "tutor", user.RoleTeacher)
	dual := app.createUser(t, "Dual", "dual", user.RoleStudent, user.RoleTeacher)
	ann := app.createUser(t, "Ann", "ann", user.RoleStudent)
	tutorToken := getToken(t, app, tutor)
	dualToken := getToken(t, app, dual)
	annToken := getToken(t, app, ann)

	taught := createAssignment(t, app, tutorToken, assignment.NewAssignment{Title: "Taught"})
	authored := createAssignment(t, app, dualToken, assignment.NewAssignment{Title: "Authored"})
	asked := askDoubt(t, app, dualToken, taught.ID, "Which chapter?")
	received := askDoubt(t, app, annToken, authored.ID, "Any hints?")
	askDoubt(t, app, annToken, taught.ID, "Is it graded?")

	listIDs := func(token string) []string {
		rec := app.do(t, http.MethodGet, "/api/doubts", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var doubts []doubt.Doubt
		decode(t, rec, &doubts)
		ids := make([]string, 0, len(doubts))
		for _, d := range doubts {
			ids = append(ids, d.ID)
		}
		return ids
	}

	// own doubts and doubts on authored assignments
	assert.ElementsMatch(t, []string{asked.ID, received.ID}, listIDs(dualToken))
	assert.Len(t, listIDs(tutorToken), 2)
	assert.Len(t, listIDs(annToken), 2)

	rec := app.do(t, http.MethodGet, "/api/doubts/"+asked.ID, dualToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = app.do(t, http.MethodGet, "/api/doubts/"+received.ID, dualToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
