package main

import (
	"context"

	"github.com/trezcool/lmsadmin/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email, pwd, role string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		nu := user.NewUser{Name: name, Email: email, Password: pwd, Role: role}
		if err = nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, nu)
		return err
	}

	uu := user.UpdateUser{Name: name, Email: usr.Email, Password: pwd, Role: role}
	if err = uu.Validate(ctx, usr, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	_, err = cli.usrSvc.Update(ctx, usr.ID, uu)
	return err
}
