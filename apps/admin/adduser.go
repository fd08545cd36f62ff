package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/user"
)

// addUser validates nu then creates the user.User, or updates it if the username is taken.
func (cli *commandLine) addUser(nu user.NewUser) error {
	if err := nu.Validate(cli.validate); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			return errors.New(cli.describe(vErrs))
		}
		return err
	}

	usr, err := cli.usrSvc.AddOrUpdate(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("user %q (%s) saved\n", usr.Username, usr.Role)
	return nil
}

// describe joins translated validation errors into one line, eg. "password: ...; role: ...".
func (cli *commandLine) describe(vErrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(vErrs))
	for _, fe := range vErrs {
		msgs = append(msgs, fe.Field()+": "+fe.Translate(cli.translator))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
