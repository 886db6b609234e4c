package main

import (
	"log"
	"os"

	"github.com/trezcool/lmsadmin/apps/shared"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/storage/database"
	sqlxrepos "github.com/trezcool/lmsadmin/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)

	// start CLI
	validate, _ := shared.NewValidator()
	cli := commandLine{
		db:       db.DB,
		usrSvc:   user.NewService(sqlxrepos.NewUserRepository(db), nil /* no welcome mails */),
		validate: validate,
	}
	err = cli.run(os.Args)
	db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
