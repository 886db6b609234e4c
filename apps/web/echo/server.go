package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
)

type (
	Options struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc       *user.Service
		CategorySvc   *category.Service
		CourseSvc     *course.Service
		EnrollmentSvc *enrollment.Service
		AssignmentSvc *assignment.Service
		SubmissionSvc *submission.Service
		ReviewSvc     *review.Service
		DashboardSvc  *dashboard.Service
		CatalogSvc    *catalog.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Renderer = mustNewRenderer(conf.AppName)
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:" + csrfFormField,
		ContextKey:     csrfContextKey,
		CookieName:     csrfFormField,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	s.app.Use(sessionMiddleware(conf, s.opts.UserSvc))
	s.app.Use(sqlTraceMiddleware) // the admin lookup is not traced

	s.app.StaticFS("/static", echo.MustSubFS(webFS, "static"))

	registerAuthPages(s.app, s.opts)

	ag := s.app.Group("", adminMiddleware)
	ag.GET("/", newDashboardPage(s.opts).show)
	ag.GET("/sql", newCatalogPage(s.opts).show)

	registerUserPages(ag, s.opts)
	registerCategoryPages(ag, s.opts)
	registerCoursePages(ag, s.opts)
	registerEnrollmentPages(ag, s.opts)
	registerAssignmentPages(ag, s.opts)
	registerSubmissionPages(ag, s.opts)
	registerReviewPages(ag, s.opts)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
