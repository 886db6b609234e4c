package echoweb_test

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	. "github.com/trezcool/lmsadmin/apps/web/echo"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/tests"
)

func TestAuthPages(t *testing.T) {
	ta := newTestApp(t)
	testutil.CreateUser(t, ta.repos.Users, "Stu", "stu@test.cd", "stu-pwd", user.RoleStudent)

	login := func(email, pwd, next string) url.Values {
		return url.Values{"email": {email}, "password": {pwd}, "next": {next}, "_csrf": {csrfToken}}
	}

	tests := []struct {
		name         string
		req          *http.Request
		wantCode     int
		wantLocation string
		wantBody     string
		wantSession  bool
	}{
		{
			name:         "sign in required",
			req:          newRequest(http.MethodGet, "/courses", nil, ""),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/login?next=%2Fcourses",
		},
		{
			name:         "sign in required (dashboard)",
			req:          newRequest(http.MethodGet, "/", nil, ""),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/login",
		},
		{
			name:     "login page",
			req:      newRequest(http.MethodGet, "/login?next=/courses", nil, ""),
			wantCode: http.StatusOK,
			wantBody: `name="next" value="/courses"`,
		},
		{
			name:         "already signed in",
			req:          newRequest(http.MethodGet, "/login", nil, ta.token),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/",
		},
		{
			name:     "wrong password",
			req:      newRequest(http.MethodPost, "/login", login("admin@test.cd", "nope", ""), ""),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: user.ErrInvalidCredentials.Error(),
		},
		{
			name:     "unknown email",
			req:      newRequest(http.MethodPost, "/login", login("ghost@test.cd", "admin-pwd", ""), ""),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: user.ErrInvalidCredentials.Error(),
		},
		{
			name:     "not an admin",
			req:      newRequest(http.MethodPost, "/login", login("stu@test.cd", "stu-pwd", ""), ""),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: user.ErrNotAdmin.Error(),
		},
		{
			name:     "missing fields",
			req:      newRequest(http.MethodPost, "/login", login("", "", ""), ""),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: "invalid-feedback",
		},
		{
			name:         "signed in",
			req:          newRequest(http.MethodPost, "/login", login("admin@test.cd", "admin-pwd", "/courses"), ""),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/courses",
			wantSession:  true,
		},
		{
			name:         "signed in (unsafe next)",
			req:          newRequest(http.MethodPost, "/login", login("admin@test.cd", "admin-pwd", "//evil.test"), ""),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/",
			wantSession:  true,
		},
		{
			name:         "invalid session",
			req:          newRequest(http.MethodGet, "/users", nil, "not-a-jwt"),
			wantCode:     http.StatusSeeOther,
			wantLocation: "/login?next=%2Fusers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ta.serve(tt.req)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			if tt.wantSession {
				var found bool
				for _, c := range rec.Result().Cookies() {
					if c.Name == SessionCookieName && c.Value != "" {
						found = true
					}
				}
				assert.True(t, found, "session cookie not set")
			}
		})
	}

	t.Run("logout", func(t *testing.T) {
		rec := ta.post("/logout", nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		loc := location(t, rec)
		assert.Equal(t, "/login", loc.Path)
		assert.Equal(t, "You have been signed out.", loc.Query().Get("message"))
	})
}

func TestCSRF(t *testing.T) {
	ta := newTestApp(t)

	form := url.Values{"name": {"Science"}, "_csrf": {"forged"}}
	rec := ta.serve(newRequest(http.MethodPost, "/categories", form, ta.token))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ta.get("/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Science")
}

func TestNotFound(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/courses/9999", "/courses/abc", "/users/0", "/reviews/42/delete", "/nowhere", "/sql?section=nope"} {
		t.Run(path, func(t *testing.T) {
			rec := ta.get(path)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "The page you are looking for does not exist.")
		})
	}
}

func TestCoursePages(t *testing.T) {
	ta := newTestApp(t)
	cat := testutil.CreateCategory(t, ta.repos.Categories, "Programming")
	ian := testutil.CreateUser(t, ta.repos.Users, "Ian", "ian@test.cd", "", user.RoleInstructor)

	newCourse := func(title, price string) url.Values {
		return url.Values{
			"title":         {title},
			"description":   {"An introduction"},
			"price":         {price},
			"category_id":   {strconv.Itoa(cat.ID)},
			"instructor_id": {strconv.Itoa(ian.ID)},
		}
	}

	t.Run("create", func(t *testing.T) {
		rec := ta.post("/courses", newCourse("Go 101", "150.00"))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "Course created successfully.", location(t, rec).Query().Get("message"))

		rec = ta.get("/courses")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Go 101")
		assert.Contains(t, rec.Body.String(), "$150.00")
	})

	t.Run("invalid price", func(t *testing.T) {
		rec := ta.post("/courses", newCourse("Rust 101", "abc"))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid-feedback")
		assert.Contains(t, rec.Body.String(), `value="Rust 101"`)
	})

	t.Run("filter by category", func(t *testing.T) {
		other := testutil.CreateCategory(t, ta.repos.Categories, "Design")
		testutil.CreateCourse(t, ta.repos.Courses, "Figma Basics", 20, other.ID, ian.ID)

		rec := ta.get("/courses?category=" + strconv.Itoa(other.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Figma Basics")
		assert.NotContains(t, rec.Body.String(), "Go 101")

		rec = ta.get("/courses?category=lol")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Go 101")
	})

	t.Run("delete", func(t *testing.T) {
		c := testutil.CreateCourse(t, ta.repos.Courses, "Doomed", 10, cat.ID, ian.ID)
		path := "/courses/" + strconv.Itoa(c.ID) + "/delete"

		rec := ta.get(path)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `name="confirm" value="yes"`)

		// not confirmed
		rec = ta.post(path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, path, rec.Header().Get("Location"))

		rec = ta.post(path, url.Values{"confirm": {"yes"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/courses", location(t, rec).Path)

		rec = ta.get("/courses")
		assert.NotContains(t, rec.Body.String(), "Doomed")
	})

	t.Run("delete refused", func(t *testing.T) {
		c := testutil.CreateCourse(t, ta.repos.Courses, "Popular", 10, cat.ID, ian.ID)
		stu := testutil.CreateUser(t, ta.repos.Users, "Stu", "stu@test.cd", "", user.RoleStudent)
		testutil.Enroll(t, ta.repos.Enrollments, stu.ID, c.ID, 0)

		rec := ta.post("/courses/"+strconv.Itoa(c.ID)+"/delete", url.Values{"confirm": {"yes"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.NotEmpty(t, location(t, rec).Query().Get("error"))

		rec = ta.get("/courses/" + strconv.Itoa(c.ID))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUserPages(t *testing.T) {
	ta := newTestApp(t)
	stu := testutil.CreateUser(t, ta.repos.Users, "Stu", "stu@test.cd", "", user.RoleStudent)
	ian := testutil.CreateUser(t, ta.repos.Users, "Ian", "ian@test.cd", "", user.RoleInstructor)
	cat := testutil.CreateCategory(t, ta.repos.Categories, "Science")
	c := testutil.CreateCourse(t, ta.repos.Courses, "Physics", 49.99, cat.ID, ian.ID)
	testutil.Enroll(t, ta.repos.Enrollments, stu.ID, c.ID, 40)

	t.Run("list", func(t *testing.T) {
		rec := ta.get("/users?role=" + user.RoleInstructor)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "ian@test.cd")
		assert.NotContains(t, rec.Body.String(), "stu@test.cd")
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := ta.post("/users", url.Values{
			"name":     {"Other"},
			"email":    {"STU@test.cd"},
			"password": {"secret-pwd"},
			"role":     {user.RoleStudent},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), user.ErrEmailExists.Error())
	})

	t.Run("create", func(t *testing.T) {
		rec := ta.post("/users", url.Values{
			"name":     {"Nina"},
			"email":    {"nina@test.cd"},
			"password": {"secret-pwd"},
			"role":     {user.RoleStudent},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "User created successfully.", location(t, rec).Query().Get("message"))
	})

	t.Run("detail", func(t *testing.T) {
		rec := ta.get("/users/" + strconv.Itoa(stu.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Physics")
		assert.Contains(t, rec.Body.String(), "40%")
	})

	t.Run("delete refused", func(t *testing.T) {
		rec := ta.post("/users/"+strconv.Itoa(stu.ID)+"/delete", url.Values{"confirm": {"yes"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		loc := location(t, rec)
		assert.Equal(t, "/users/"+strconv.Itoa(stu.ID), loc.Path)
		assert.Equal(t, "Cannot delete user with existing courses, enrollments, or submissions. Please remove those first.", loc.Query().Get("error"))

		rec = ta.get("/users/" + strconv.Itoa(stu.ID))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("delete self", func(t *testing.T) {
		rec := ta.post("/users/"+strconv.Itoa(ta.admin.ID)+"/delete", url.Values{"confirm": {"yes"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "You cannot delete your own account.", location(t, rec).Query().Get("error"))
	})
}

func TestEnrollmentPages(t *testing.T) {
	ta := newTestApp(t)
	stu := testutil.CreateUser(t, ta.repos.Users, "Stu", "stu@test.cd", "", user.RoleStudent)
	ian := testutil.CreateUser(t, ta.repos.Users, "Ian", "ian@test.cd", "", user.RoleInstructor)
	cat := testutil.CreateCategory(t, ta.repos.Categories, "Science")
	c := testutil.CreateCourse(t, ta.repos.Courses, "Physics", 49.99, cat.ID, ian.ID)

	enroll := url.Values{"student_id": {strconv.Itoa(stu.ID)}, "course_id": {strconv.Itoa(c.ID)}, "progress": {"0"}}

	rec := ta.post("/enrollments", enroll)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	enrollmentPath := location(t, rec).Path

	t.Run("duplicate", func(t *testing.T) {
		rec := ta.post("/enrollments", enroll)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Student is already enrolled in this course")
	})

	t.Run("instructor cannot enroll", func(t *testing.T) {
		rec := ta.post("/enrollments", url.Values{"student_id": {strconv.Itoa(ian.ID)}, "course_id": {strconv.Itoa(c.ID)}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("update progress", func(t *testing.T) {
		rec := ta.post(enrollmentPath, url.Values{"progress": {"150"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = ta.post(enrollmentPath, url.Values{"progress": {"75"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		rec = ta.get(enrollmentPath)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "75%")
	})
}

func TestSubmissionPages(t *testing.T) {
	ta := newTestApp(t)
	stu := testutil.CreateUser(t, ta.repos.Users, "Stu", "stu@test.cd", "", user.RoleStudent)
	ian := testutil.CreateUser(t, ta.repos.Users, "Ian", "ian@test.cd", "", user.RoleInstructor)
	cat := testutil.CreateCategory(t, ta.repos.Categories, "Science")
	c := testutil.CreateCourse(t, ta.repos.Courses, "Physics", 49.99, cat.ID, ian.ID)
	testutil.Enroll(t, ta.repos.Enrollments, stu.ID, c.ID, 10)
	a := testutil.CreateAssignment(t, ta.repos.Assignments, c.ID, "Lab report", time.Now().AddDate(0, 0, 7))
	sub := testutil.CreateSubmission(t, ta.repos.Submissions, a.ID, stu.ID, null.Float64{})
	path := "/submissions/" + strconv.Itoa(sub.ID)

	t.Run("pending", func(t *testing.T) {
		rec := ta.get("/submissions?status=pending")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Lab report")

		rec = ta.get("/submissions?status=graded")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No results found.")
	})

	t.Run("grade out of range", func(t *testing.T) {
		rec := ta.post(path, url.Values{"grade": {"101"}})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("grade", func(t *testing.T) {
		rec := ta.post(path, url.Values{"grade": {"95"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		rec = ta.get(path)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "95.00 (A)")
	})

	t.Run("assignment delete refused", func(t *testing.T) {
		rec := ta.post("/assignments/"+strconv.Itoa(a.ID)+"/delete", url.Values{"confirm": {"yes"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "Cannot delete assignment with existing submissions.", location(t, rec).Query().Get("error"))
	})
}

func TestReviewPages(t *testing.T) {
	ta := newTestApp(t)
	stu := testutil.CreateUser(t, ta.repos.Users, "Stu", "stu@test.cd", "", user.RoleStudent)
	ian := testutil.CreateUser(t, ta.repos.Users, "Ian", "ian@test.cd", "", user.RoleInstructor)
	cat := testutil.CreateCategory(t, ta.repos.Categories, "Science")
	c := testutil.CreateCourse(t, ta.repos.Courses, "Physics", 49.99, cat.ID, ian.ID)
	testutil.Enroll(t, ta.repos.Enrollments, stu.ID, c.ID, 100)

	newReview := func(rating string) url.Values {
		return url.Values{
			"course_id":  {strconv.Itoa(c.ID)},
			"student_id": {strconv.Itoa(stu.ID)},
			"rating":     {rating},
			"comment":    {"Great course"},
		}
	}

	rec := ta.post("/reviews", newReview("6"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = ta.post("/reviews", newReview("4"))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = ta.post("/reviews", newReview("5"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Student has already reviewed this course")

	rec = ta.get("/reviews?rating=4")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Great course")
	assert.Contains(t, rec.Body.String(), "★★★★☆")
}

func TestDashboardAndCatalog(t *testing.T) {
	ta := newTestApp(t)
	ian := testutil.CreateUser(t, ta.repos.Users, "Ian", "ian@test.cd", "", user.RoleInstructor)
	cat := testutil.CreateCategory(t, ta.repos.Categories, "Science")
	testutil.CreateCourse(t, ta.repos.Courses, "Physics", 49.99, cat.ID, ian.ID)

	rec := ta.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard")
	assert.Contains(t, rec.Body.String(), "ian@test.cd")
	assert.Contains(t, rec.Body.String(), "Science")

	rec = ta.get("/sql")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span class="sql-keyword">SELECT</span>`)
}
