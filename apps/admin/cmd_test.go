package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
	appfs "github.com/karthik768990/EduFlow-Learning-Platform/fs"
	inmemdb "github.com/karthik768990/EduFlow-Learning-Platform/storage/database/inmem"
	"github.com/karthik768990/EduFlow-Learning-Platform/tests"
)

const strongPwd = "Gr8!Quokka#Run"

func setup(t *testing.T) *commandLine {
	t.Helper()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(appfs.FS, appfs.CommonPasswords, testutil.NewLogger())

	return &commandLine{
		usrRepo:  inmemdb.NewUserRepository(inmemdb.NewDB()),
		validate: validate,
	}
}

// mockPasswords makes readPasswordFunc return pwds in turn.
func mockPasswords(pwds ...string) {
	var i int
	readPasswordFunc = func(int) ([]byte, error) {
		if i >= len(pwds) {
			return nil, nil
		}
		i++
		return []byte(pwds[i-1]), nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	pwds       []string
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPasswords(tt.pwds...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case err == nil:
				if tt.wantErr != nil || tt.wantErrStr != "" {
					t.Fatalf("cli.run() succeeded, want an error")
				}
				if check != nil {
					check(t, tt)
				}
			case tt.wantErr != nil:
				if errors.Cause(err) != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
				}
			default:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	origMigrate := migrateFunc
	defer func() { migrateFunc = origMigrate }()
	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "badges", "sql"}},
	}
	runCLITests(t, cli, tests, nil)
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateUser(t, cli.usrRepo, "Old", "old", "old@test.cd", strongPwd, user.StudentRoles, false)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-username", "kim"}, wantErr: errHelp},
		{
			name:    "password mismatch",
			args:    []string{"adduser", "-name", "Kim", "-username", "kim"},
			pwds:    []string{strongPwd, "other"},
			wantErr: errPasswordMismatch,
		},
		{
			name:       "unknown role",
			args:       []string{"adduser", "-name", "Kim", "-username", "kim", "-role", "dean"},
			pwds:       []string{strongPwd, strongPwd},
			wantErrStr: `unknown role "dean"`,
		},
	}
	runCLITests(t, cli, tests, nil)

	t.Run("weak password", func(t *testing.T) {
		mockPasswords("password", "password")
		if err := cli.run([]string{"admin", "adduser", "-name", "Kim", "-username", "kim"}); err == nil {
			t.Error("cli.run() succeeded with a weak password")
		}
	})

	created := cliTest{
		name: "new teacher",
		args: []string{"adduser", "-name", "Kim", "-username", "Kim", "-email", "kim@test.cd", "-role", "teacher"},
		pwds: []string{strongPwd, strongPwd},
	}
	runCLITests(t, cli, []cliTest{created}, func(t *testing.T, _ cliTest) {
		usr, err := cli.usrRepo.GetUser(context.Background(), user.GetFilter{Username: "kim"})
		if err != nil {
			t.Fatalf("GetUser() failed, %v", err)
		}
		if usr.Name != "Kim" || usr.Email != "kim@test.cd" || !usr.IsActive || !usr.IsTeacher() {
			t.Errorf("unexpected user %+v", usr)
		}
		if err = usr.CheckPassword(strongPwd); err != nil {
			t.Errorf("CheckPassword() failed, %v", err)
		}
	})

	updated := cliTest{
		name: "existing user",
		args: []string{"adduser", "-email", "old@test.cd", "-role", "admin"},
		pwds: []string{"N3w!Quokka#Run", "N3w!Quokka#Run"},
	}
	runCLITests(t, cli, []cliTest{updated}, func(t *testing.T, _ cliTest) {
		usr, err := cli.usrRepo.GetUser(context.Background(), user.GetFilter{ID: existing.ID})
		if err != nil {
			t.Fatalf("GetUser() failed, %v", err)
		}
		if usr.Name != "Old" || !usr.IsActive || !usr.IsAdmin() || usr.IsStudent() {
			t.Errorf("unexpected user %+v", usr)
		}
		if err = usr.CheckPassword("N3w!Quokka#Run"); err != nil {
			t.Errorf("CheckPassword() failed, %v", err)
		}
	})
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, cli.usrRepo, "User", "awe", "awe@test.cd", strongPwd, user.StudentRoles, true)

	tests := []cliTest{
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwds: []string{strongPwd}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, pwds: []string{"R3set!Quokka#1"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", "AWE@test.cd"}, pwds: []string{"R3set!Quokka#2"}},
	}
	runCLITests(t, cli, tests, func(t *testing.T, tt cliTest) {
		refreshedUsr, err := cli.usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		if err != nil {
			t.Fatalf("GetUser() failed, %v", err)
		}
		if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
			t.Error("failed to update new password")
		}
		if err = refreshedUsr.CheckPassword(tt.pwds[0]); err != nil {
			t.Errorf("CheckPassword() failed, %v", err)
		}
	})
}
