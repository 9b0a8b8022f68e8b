package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/karthik768990/EduFlow-Learning-Platform/apps/api/echo"
	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/achievement"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/assignment"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/dashboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/doubt"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/leaderboard"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/notification"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/study"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/submission"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
	appfs "github.com/karthik768990/EduFlow-Learning-Platform/fs"
	emailsvc "github.com/karthik768990/EduFlow-Learning-Platform/services/email"
	inmemdb "github.com/karthik768990/EduFlow-Learning-Platform/storage/database/inmem"
	"github.com/karthik768990/EduFlow-Learning-Platform/tests"
)

const strongPwd = "Gr8!Quokka#Run"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	*echoapi.Server
	conf          *core.Config
	db            *inmemdb.DB
	usrRepo       user.Repository
	mailSvc       *emailsvc.ConsoleServiceMock
	logger        *testutil.Logger
	assignmentSvc *assignment.Service
}

func setup(t *testing.T) *testApp {
	t.Helper()

	conf := core.NewTestConfig()
	logger := testutil.NewLogger()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, logger, true /* strict */)
	user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, logger)

	// set up DB & repos
	db := inmemdb.NewDB()
	usrRepo := inmemdb.NewUserRepository(db)
	reports := inmemdb.NewReportRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	notifier := notification.NewMailNotifier(mailSvc)
	catalog, err := achievement.LoadCatalog(appfs.FS, appfs.AchievementCatalog)
	require.NoError(t, err)

	usrSvc := user.NewService(usrRepo)
	achievementSvc := achievement.NewService(catalog, inmemdb.NewAchievementRepository(db), reports)
	assignmentSvc := assignment.NewService(inmemdb.NewAssignmentRepository(db), usrSvc, notifier, logger)
	submissionSvc := submission.NewService(inmemdb.NewSubmissionRepository(db), assignmentSvc, achievementSvc, logger)
	doubtSvc := doubt.NewService(inmemdb.NewDoubtRepository(db), assignmentSvc, usrSvc, notifier, logger)
	studySvc := study.NewService(inmemdb.NewStudyRepository(db), reports, achievementSvc, logger, conf.Pomodoro)
	leaderboardSvc := leaderboard.NewService(reports, conf.Leaderboard)
	dashboardSvc := dashboard.NewService(assignmentSvc, submissionSvc, doubtSvc, studySvc, leaderboardSvc, achievementSvc)

	// set up server
	server := echoapi.NewServer(&echoapi.Options{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		UserSvc:        usrSvc,
		AssignmentSvc:  assignmentSvc,
		SubmissionSvc:  submissionSvc,
		DoubtSvc:       doubtSvc,
		StudySvc:       studySvc,
		LeaderboardSvc: leaderboardSvc,
		AchievementSvc: achievementSvc,
		DashboardSvc:   dashboardSvc,
	})

	return &testApp{
		Server:        server,
		conf:          conf,
		db:            db,
		usrRepo:       usrRepo,
		mailSvc:       mailSvc,
		logger:        logger,
		assignmentSvc: assignmentSvc,
	}
}

func (app *testApp) createUser(t *testing.T, name, uname string, roles ...string) user.User {
	return testutil.CreateUser(t, app.usrRepo, name, uname, uname+"@test.cd", strongPwd, roles, true)
}

// do serves a JSON request; body may be nil, raw []byte or any value to marshal.
func (app *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var data []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		data = b
	default:
		data = marchallObj(t, b)
	}
	req, rec := newAuthRequest(method, path, token, data)
	app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoErrorf(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, app *testApp, usr user.User) string {
	t.Helper()
	auth := app.Authenticator()
	token, err := auth.GenerateToken(auth.UserClaims(usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	if _, ok := j2.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
