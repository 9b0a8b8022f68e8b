package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/karthik768990/EduFlow-Learning-Platform/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := user.NewService(cli.usrRepo).GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}

	// the password policy is applied through UpdateUser
	uu := user.UpdateUser{
		Name:            usr.Name,
		Username:        usr.Username,
		Email:           usr.Email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err = cli.validate.Struct(&uu); err != nil {
		return err
	}

	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = user.NowFunc().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
