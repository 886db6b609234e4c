package enrollment_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/apps/shared"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/services/email"
	"github.com/trezcool/lmsadmin/tests"
)

type fixture struct {
	repos   testutil.Repos
	student user.User
	courseA int
	courseB int
}

func setUp(t *testing.T) fixture {
	repos := testutil.NewRepos()
	ian := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	stu := testutil.CreateUser(t, repos.Users, "Stu", "stu@test.test", "", user.RoleStudent)
	cat := testutil.CreateCategory(t, repos.Categories, "Science")
	a := testutil.CreateCourse(t, repos.Courses, "Physics", 10, cat.ID, ian.ID)
	b := testutil.CreateCourse(t, repos.Courses, "Chemistry", 20, cat.ID, ian.ID)
	return fixture{repos: repos, student: stu, courseA: a.ID, courseB: b.ID}
}

func TestNewEnrollment_Validate(t *testing.T) {
	f := setUp(t)
	svc := enrollment.NewService(f.repos.Enrollments, nil)
	validate, _ := shared.NewValidator()
	testutil.Enroll(t, f.repos.Enrollments, f.student.ID, f.courseB, 0)
	ian, _ := f.repos.Users.GetUserByEmail(context.Background(), "ian@test.test")

	tests := []struct {
		name      string
		ne        enrollment.NewEnrollment
		wantErr   bool
		wantField string
	}{
		{name: "valid", ne: enrollment.NewEnrollment{StudentID: strconv.Itoa(f.student.ID), CourseID: strconv.Itoa(f.courseA)}},
		{name: "with progress", ne: enrollment.NewEnrollment{StudentID: strconv.Itoa(f.student.ID), CourseID: strconv.Itoa(f.courseA), Progress: "100"}},
		{name: "progress out of range", ne: enrollment.NewEnrollment{StudentID: strconv.Itoa(f.student.ID), CourseID: strconv.Itoa(f.courseA), Progress: "101"}, wantErr: true},
		{name: "missing course", ne: enrollment.NewEnrollment{StudentID: strconv.Itoa(f.student.ID)}, wantErr: true},
		{name: "instructor as student", ne: enrollment.NewEnrollment{StudentID: strconv.Itoa(ian.ID), CourseID: strconv.Itoa(f.courseA)}, wantErr: true, wantField: "student_id"},
		{name: "unknown course", ne: enrollment.NewEnrollment{StudentID: strconv.Itoa(f.student.ID), CourseID: "999"}, wantErr: true, wantField: "course_id"},
		{name: "already enrolled", ne: enrollment.NewEnrollment{StudentID: strconv.Itoa(f.student.ID), CourseID: strconv.Itoa(f.courseB)}, wantErr: true, wantField: "course_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ne := tt.ne
			err := ne.Validate(context.Background(), validate, svc)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantField != "" {
				var verr *core.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	f := setUp(t)
	mailSvc := emailsvc.NewConsoleServiceMock(testutil.Config(), testutil.Logger())
	svc := enrollment.NewService(f.repos.Enrollments, mailSvc)
	ctx := context.Background()
	ne := enrollment.NewEnrollment{StudentID: strconv.Itoa(f.student.ID), CourseID: strconv.Itoa(f.courseA)}

	e, err := svc.Create(ctx, ne)
	require.NoError(t, err)
	assert.Zero(t, e.Progress)

	sent := mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "Enrollment confirmed: Physics", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, `enrolled in "Physics" taught by Ian`)

	// the repository refuses duplicates that got past validation
	_, err = svc.Create(ctx, ne)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, enrollment.ErrAlreadyEnrolled, verr.Err)
}

func TestService_UpdateProgress(t *testing.T) {
	f := setUp(t)
	svc := enrollment.NewService(f.repos.Enrollments, nil)
	validate, _ := shared.NewValidator()
	ctx := context.Background()
	e := testutil.Enroll(t, f.repos.Enrollments, f.student.ID, f.courseA, 10)

	ue := enrollment.UpdateEnrollment{Progress: "-5"}
	assert.Error(t, ue.Validate(validate))

	ue = enrollment.UpdateEnrollment{Progress: " 75 "}
	require.NoError(t, ue.Validate(validate))
	require.NoError(t, svc.UpdateProgress(ctx, e.ID, ue))

	row, err := svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, row.Progress)
	assert.Equal(t, enrollment.ErrNotFound, svc.UpdateProgress(ctx, 999, ue))
}

func TestService_Detail(t *testing.T) {
	f := setUp(t)
	svc := enrollment.NewService(f.repos.Enrollments, nil)
	ctx := context.Background()
	e := testutil.Enroll(t, f.repos.Enrollments, f.student.ID, f.courseA, 50)
	due := time.Date(2030, 1, 10, 0, 0, 0, 0, time.UTC)
	first := testutil.CreateAssignment(t, f.repos.Assignments, f.courseA, "Lab 1", due)
	testutil.CreateAssignment(t, f.repos.Assignments, f.courseA, "Lab 2", due.AddDate(0, 0, 7))
	testutil.CreateAssignment(t, f.repos.Assignments, f.courseB, "Other", due)
	testutil.CreateSubmission(t, f.repos.Submissions, first.ID, f.student.ID, null.Float64From(88))

	row, err := svc.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stu", row.StudentName)
	assert.Equal(t, "Ian", row.InstructorName)
	assert.Equal(t, "Science", row.CategoryName)

	d, err := svc.Detail(ctx, row)
	require.NoError(t, err)
	require.Len(t, d.Assignments, 2)
	assert.Equal(t, "Lab 1", d.Assignments[0].Title)
	assert.True(t, d.Assignments[0].Submitted())
	assert.Equal(t, 88.0, d.Assignments[0].Grade.Float64)
	assert.False(t, d.Assignments[1].Submitted())
	assert.Nil(t, d.Review)

	testutil.CreateReview(t, f.repos.Reviews, f.courseA, f.student.ID, 5)
	d, err = svc.Detail(ctx, row)
	require.NoError(t, err)
	require.NotNil(t, d.Review)
	assert.Equal(t, 5, d.Review.Rating)
}

func TestService_Query(t *testing.T) {
	f := setUp(t)
	svc := enrollment.NewService(f.repos.Enrollments, nil)
	ctx := context.Background()
	other := testutil.CreateUser(t, f.repos.Users, "Zed", "zed@test.test", "", user.RoleStudent)
	testutil.Enroll(t, f.repos.Enrollments, f.student.ID, f.courseA, 0)
	testutil.Enroll(t, f.repos.Enrollments, other.ID, f.courseA, 0)
	testutil.Enroll(t, f.repos.Enrollments, other.ID, f.courseB, 0)

	tests := []struct {
		name   string
		filter enrollment.QueryFilter
		want   int
	}{
		{name: "all", want: 3},
		{name: "search student", filter: enrollment.QueryFilter{Search: "zed"}, want: 2},
		{name: "search course", filter: enrollment.QueryFilter{Search: "chem"}, want: 1},
		{name: "course", filter: enrollment.QueryFilter{CourseID: f.courseA}, want: 2},
		{name: "student and course", filter: enrollment.QueryFilter{StudentID: f.student.ID, CourseID: f.courseB}, want: 0},
		{name: "negative ids are ignored", filter: enrollment.QueryFilter{StudentID: -1}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}
}
