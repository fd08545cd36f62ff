package main

import (
	"context"

	"github.com/trezcool/darasa/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(context.Background(), cli.db, cli.engine, args[0], args[1:]...)
}
