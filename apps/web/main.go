package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/lmsadmin/apps/shared"
	echoweb "github.com/trezcool/lmsadmin/apps/web/echo"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/assignment"
	"github.com/trezcool/lmsadmin/core/catalog"
	"github.com/trezcool/lmsadmin/core/category"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/dashboard"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
	emailsvc "github.com/trezcool/lmsadmin/services/email"
	logsvc "github.com/trezcool/lmsadmin/services/logger"
	"github.com/trezcool/lmsadmin/storage/database"
	sqlxrepos "github.com/trezcool/lmsadmin/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	opts := &echoweb.Options{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       user.NewService(sqlxrepos.NewUserRepository(db), mailSvc),
		CategorySvc:   category.NewService(sqlxrepos.NewCategoryRepository(db)),
		CourseSvc:     course.NewService(sqlxrepos.NewCourseRepository(db)),
		EnrollmentSvc: enrollment.NewService(sqlxrepos.NewEnrollmentRepository(db), mailSvc),
		AssignmentSvc: assignment.NewService(sqlxrepos.NewAssignmentRepository(db)),
		SubmissionSvc: submission.NewService(sqlxrepos.NewSubmissionRepository(db)),
		ReviewSvc:     review.NewService(sqlxrepos.NewReviewRepository(db)),
		DashboardSvc:  dashboard.NewService(sqlxrepos.NewDashboardRepository(db)),
		CatalogSvc:    catalog.NewService(sqlxrepos.NewCatalogRepository(db)),
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	opts.Validate, opts.Translator = shared.NewValidator()

	if err = core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Web Console

	server := echoweb.NewServer(opts)

	go func() {
		logger.Info(fmt.Sprintf("Console listening on %s", conf.Server.Address))
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
