package main

import (
	"github.com/pressly/goose/v3"

	"github.com/trezcool/lmsadmin/storage/database"
)

var gooseRunFunc = goose.Run // mockable

// migrate runs goose over the migrations embedded in the database package.
func (cli *commandLine) migrate(args []string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db, database.MigrationsDir, args[1:]...)
}
