package echoweb_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	. "github.com/trezcool/lmsadmin/apps/web/echo"
	"github.com/trezcool/lmsadmin/apps/shared"
	"github.com/trezcool/lmsadmin/core/assignment"
	"github.com/trezcool/lmsadmin/core/catalog"
	"github.com/trezcool/lmsadmin/core/category"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/dashboard"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/services/email"
	"github.com/trezcool/lmsadmin/storage/database/inmem"
	"github.com/trezcool/lmsadmin/tests"
)

const csrfToken = "test-csrf-token"

type testApp struct {
	app   Server
	repos testutil.Repos
	admin user.User
	token string
}

// newTestApp serves the console over a fresh in-memory database, with a signed-in admin.
func newTestApp(t *testing.T) *testApp {
	conf := testutil.Config()
	logger := testutil.Logger()
	repos := testutil.NewRepos()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	validate, translator := shared.NewValidator()

	app := NewServer(&Options{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       user.NewService(repos.Users, mailSvc),
		CategorySvc:   category.NewService(repos.Categories),
		CourseSvc:     course.NewService(repos.Courses),
		EnrollmentSvc: enrollment.NewService(repos.Enrollments, mailSvc),
		AssignmentSvc: assignment.NewService(repos.Assignments),
		SubmissionSvc: submission.NewService(repos.Submissions),
		ReviewSvc:     review.NewService(repos.Reviews),
		DashboardSvc:  dashboard.NewService(inmemdb.NewDashboardRepository(repos.DB)),
		CatalogSvc:    catalog.NewService(inmemdb.NewCatalogRepository(repos.DB)),
	})

	admin := testutil.CreateUser(t, repos.Users, "Admin", "admin@test.cd", "admin-pwd", user.RoleAdmin)
	token, err := GenerateToken(GetUserClaims(admin, conf), conf.SecretKey)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}
	return &testApp{app: app, repos: repos, admin: admin, token: token}
}

func (ta *testApp) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, path string, form url.Values, token string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: csrfToken})
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	return req
}

// get requests path as the signed-in admin.
func (ta *testApp) get(path string) *httptest.ResponseRecorder {
	return ta.serve(newRequest(http.MethodGet, path, nil, ta.token))
}

// post submits form as the signed-in admin, with a valid CSRF token.
func (ta *testApp) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = make(url.Values)
	}
	form.Set("_csrf", csrfToken)
	return ta.serve(newRequest(http.MethodPost, path, form, ta.token))
}

func location(t *testing.T, rec *httptest.ResponseRecorder) *url.URL {
	t.Helper()
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("url.Parse(): %v", err)
	}
	return loc
}
