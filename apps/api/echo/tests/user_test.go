package tests

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/karthik768990/EduFlow-Learning-Platform/apps/api/echo"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
	"github.com/karthik768990/EduFlow-Learning-Platform/tests"
)

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	student := app.createUser(t, "Student", "student", user.RoleStudent)
	inactive := testutil.CreateUser(t, app.usrRepo, "Gone", "gone", "gone@test.cd", strongPwd, []string{user.RoleStudent}, false)

	tests := []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/users/login",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/api/users/login",
			body:     marchallObj(t, echoapi.LoginRequest{Username: student.Username, Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "unknown user",
			method:   http.MethodPost,
			path:     "/api/users/login",
			body:     marchallObj(t, echoapi.LoginRequest{Username: "nobody", Password: strongPwd}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "inactive user",
			method:   http.MethodPost,
			path:     "/api/users/login",
			body:     marchallObj(t, echoapi.LoginRequest{Username: inactive.Username, Password: strongPwd}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("success with username or email", func(t *testing.T) {
		for _, uname := range []string{"Student", student.Email} {
			rec := app.do(t, http.MethodPost, "/api/users/login", "", echoapi.LoginRequest{Username: uname, Password: strongPwd})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp echoapi.LoginResponse
			decode(t, rec, &resp)
			require.NotEmpty(t, resp.Token)

			me := app.do(t, http.MethodGet, "/api/users/me", resp.Token, nil)
			require.Equal(t, http.StatusOK, me.Code)
			var usr user.User
			decode(t, me, &usr)
			assert.Equal(t, student.ID, usr.ID)
			assert.False(t, usr.LastLogin.IsZero())
		}
	})
}

func Test_userApi_auth(t *testing.T) {
	app := setup(t)

	student := app.createUser(t, "Student", "student", user.RoleStudent)
	token := getToken(t, app, student)

	tests := []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/api/users/me",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "bad token",
			method:   http.MethodGet,
			path:     "/api/users/me",
			token:    "not-a-jwt",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "refresh",
			method:   http.MethodPost,
			path:     "/api/users/token-refresh",
			token:    token,
			wantCode: http.StatusOK,
		},
		{
			name:     "non admin cannot list users",
			method:   http.MethodGet,
			path:     "/api/users",
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("deactivated after login", func(t *testing.T) {
		student.IsActive = false
		_, err := app.usrRepo.UpdateUser(context.Background(), student)
		require.NoError(t, err)

		rec := app.do(t, http.MethodGet, "/api/users/me", token, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin)
	adminToken := getToken(t, app, admin)
	app.createUser(t, "Taken", "taken", user.RoleStudent)

	newUser := func(uname string, roles ...string) user.NewUser {
		return user.NewUser{
			Name:            "New " + uname,
			Username:        uname,
			Email:           uname + "@test.cd",
			Password:        strongPwd,
			PasswordConfirm: strongPwd,
			Roles:           roles,
		}
	}

	tests := []httpTest{
		{
			name:     "username taken",
			method:   http.MethodPost,
			path:     "/api/users/register",
			body:     marchallObj(t, newUser("taken", user.RoleStudent)),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name:     "weak password",
			method:   http.MethodPost,
			path:     "/api/users/register",
			body:     []byte(`{"name":"Weak","username":"weak","password":"12345678","password_confirm":"12345678"}`),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password cannot be entirely numeric"}),
		},
		{
			name:     "role above own",
			method:   http.MethodPost,
			path:     "/api/users/register",
			body:     marchallObj(t, newUser("owner", user.RoleAdminOwner)),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("success", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/users/register", adminToken, newUser("teacher", user.RoleTeacher))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var usr user.User
		decode(t, rec, &usr)
		assert.NotEmpty(t, usr.ID)
		assert.True(t, usr.IsActive)
		assert.True(t, usr.IsTeacher())

		login := app.do(t, http.MethodPost, "/api/users/login", "", echoapi.LoginRequest{Username: "teacher", Password: strongPwd})
		assert.Equal(t, http.StatusOK, login.Code)
	})
}

func Test_userApi_detail(t *testing.T) {
	app := setup(t)

	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin)
	student := app.createUser(t, "Student", "student", user.RoleStudent)
	other := app.createUser(t, "Other", "other", user.RoleStudent)
	adminToken := getToken(t, app, admin)
	studentToken := getToken(t, app, student)

	tests := []httpTest{
		{
			name:     "self",
			method:   http.MethodGet,
			path:     "/api/users/" + student.ID,
			token:    studentToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, student),
		},
		{
			name:     "other as student",
			method:   http.MethodGet,
			path:     "/api/users/" + other.ID,
			token:    studentToken,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "other as admin",
			method:   http.MethodGet,
			path:     "/api/users/" + other.ID,
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, other),
		},
		{
			name:     "student cannot change own roles",
			method:   http.MethodPut,
			path:     "/api/users/" + student.ID,
			body:     []byte(`{"roles":["admin:"]}`),
			token:    studentToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "student cannot delete",
			method:   http.MethodDelete,
			path:     "/api/users/" + student.ID,
			token:    studentToken,
			wantCode: http.StatusForbidden,
		},
		{
			name:     "admin cannot delete self",
			method:   http.MethodDelete,
			path:     "/api/users/" + admin.ID,
			token:    adminToken,
			wantCode: http.StatusForbidden,
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("update own name", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, "/api/users/"+student.ID, studentToken, []byte(`{"name":"Renamed"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var usr user.User
		decode(t, rec, &usr)
		assert.Equal(t, "Renamed", usr.Name)
		assert.Equal(t, student.Username, usr.Username)
	})

	t.Run("admin deletes", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, "/api/users/"+other.ID, adminToken, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
		_, err := app.usrRepo.GetUser(context.Background(), user.GetFilter{ID: other.ID})
		assert.Error(t, err)
	})
}

func Test_userApi_query(t *testing.T) {
	app := setup(t)

	admin := app.createUser(t, "Admin", "admin", user.RoleAdmin)
	ann := app.createUser(t, "Ann", "ann", user.RoleStudent)
	bob := app.createUser(t, "Bob", "bob", user.RoleTeacher)
	adminToken := getToken(t, app, admin)

	path := func(v url.Values) string { return "/api/users?" + v.Encode() }

	tests := []httpTest{
		{
			name:     "role filter",
			method:   http.MethodGet,
			path:     path(url.Values{"role": {user.RoleStudent}}),
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, ann),
		},
		{
			name:     "search",
			method:   http.MethodGet,
			path:     path(url.Values{"search": {"BO"}}),
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t, bob),
		},
		{
			name:     "no match",
			method:   http.MethodGet,
			path:     path(url.Values{"search": {"zed"}}),
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "roles",
			method:   http.MethodGet,
			path:     "/api/users/roles",
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, user.Roles),
		},
	}
	runHTTPTests(t, app, tests)

	t.Run("ordering", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, path(url.Values{"ordering": {"-name"}}), adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var users []user.User
		decode(t, rec, &users)
		require.Len(t, users, 3)
		assert.Equal(t, []string{"Bob", "Ann", "Admin"}, []string{users[0].Name, users[1].Name, users[2].Name})
	})
}
