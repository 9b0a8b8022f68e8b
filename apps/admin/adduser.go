package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core"
	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

var roleValues = map[string][]string{
	"student": user.StudentRoles,
	"teacher": user.TeacherRoles,
	"admin":   {user.RoleAdmin},
}

// addUser creates a user, or updates the role and password of the user holding uname or email.
// Updated users are (re)activated.
func (cli *commandLine) addUser(name, uname, email, role, pwd string) (user.User, error) {
	roles, ok := roleValues[core.CleanString(role, true /* lower */)]
	if !ok {
		return user.User{}, fmt.Errorf("unknown role %q", role)
	}

	ctx := context.Background()
	svc := user.NewService(cli.usrRepo)
	nu := user.NewUser{
		Name:            core.CleanString(name),
		Username:        core.CleanString(uname, true /* lower */),
		Email:           core.CleanString(email, true /* lower */),
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{nu.Username, nu.Email}})
	if err != nil {
		if !core.IsNotFound(err) {
			return user.User{}, err
		}
		if err = nu.Validate(cli.validate, svc); err != nil {
			return user.User{}, err
		}
		return svc.Create(ctx, nu)
	}

	if nu.Name == "" {
		nu.Name = usr.Name
	}
	if err = cli.validate.Struct(&nu); err != nil {
		return user.User{}, err
	}
	usr.Roles = roles
	usr.IsActive = true
	if err = usr.SetPassword(pwd); err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = user.NowFunc().UTC()
	return cli.usrRepo.UpdateUser(ctx, usr)
}
