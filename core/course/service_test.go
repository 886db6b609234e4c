package course_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/apps/shared"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/tests"
)

func TestNewCourse_Validate(t *testing.T) {
	repos := testutil.NewRepos()
	svc := course.NewService(repos.Courses)
	validate, _ := shared.NewValidator()

	ian := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	stu := testutil.CreateUser(t, repos.Users, "Stu", "stu@test.test", "", user.RoleStudent)
	cat := testutil.CreateCategory(t, repos.Categories, "Science")

	valid := course.NewCourse{
		Title:        "Physics",
		Description:  "Forces and motion",
		Price:        "49.99",
		CategoryID:   strconv.Itoa(cat.ID),
		InstructorID: strconv.Itoa(ian.ID),
	}
	with := func(f func(nc *course.NewCourse)) course.NewCourse {
		nc := valid
		f(&nc)
		return nc
	}

	tests := []struct {
		name      string
		nc        course.NewCourse
		wantErr   bool
		wantField string
	}{
		{name: "valid", nc: valid},
		{name: "free", nc: with(func(nc *course.NewCourse) { nc.Price = "0" })},
		{name: "negative price", nc: with(func(nc *course.NewCourse) { nc.Price = "-1" }), wantErr: true},
		{name: "price too high", nc: with(func(nc *course.NewCourse) { nc.Price = "10000" }), wantErr: true},
		{name: "comma as decimal mark", nc: with(func(nc *course.NewCourse) { nc.Price = "1,50" }), wantErr: true},
		{name: "thousands separator", nc: with(func(nc *course.NewCourse) { nc.Price = "1,500.00" })},
		{name: "description required", nc: with(func(nc *course.NewCourse) { nc.Description = " " }), wantErr: true},
		{name: "unknown category", nc: with(func(nc *course.NewCourse) { nc.CategoryID = "999" }), wantErr: true, wantField: "category_id"},
		{name: "student as instructor", nc: with(func(nc *course.NewCourse) { nc.InstructorID = strconv.Itoa(stu.ID) }), wantErr: true, wantField: "instructor_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc := tt.nc
			err := nc.Validate(context.Background(), validate, svc)
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

func TestService_Delete(t *testing.T) {
	repos := testutil.NewRepos()
	svc := course.NewService(repos.Courses)
	ctx := context.Background()

	ian := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	stu := testutil.CreateUser(t, repos.Users, "Stu", "stu@test.test", "", user.RoleStudent)
	cat := testutil.CreateCategory(t, repos.Categories, "Science")
	busy := testutil.CreateCourse(t, repos.Courses, "Physics", 10, cat.ID, ian.ID)
	idle := testutil.CreateCourse(t, repos.Courses, "Chemistry", 10, cat.ID, ian.ID)
	testutil.Enroll(t, repos.Enrollments, stu.ID, busy.ID, 10)

	deps, err := svc.Dependencies(ctx, busy.ID)
	require.NoError(t, err)
	assert.Equal(t, course.Dependencies{Enrollments: 1}, deps)

	err = svc.Delete(ctx, busy.ID)
	assert.True(t, core.IsIntegrity(err))

	require.NoError(t, svc.Delete(ctx, idle.ID))
	_, err = svc.GetByID(ctx, idle.ID)
	assert.Equal(t, course.ErrNotFound, err)
}

func TestService_Query(t *testing.T) {
	repos := testutil.NewRepos()
	svc := course.NewService(repos.Courses)
	ctx := context.Background()

	ian := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	joy := testutil.CreateUser(t, repos.Users, "Joy", "joy@test.test", "", user.RoleInstructor)
	science := testutil.CreateCategory(t, repos.Categories, "Science")
	arts := testutil.CreateCategory(t, repos.Categories, "Arts")
	physics := testutil.CreateCourse(t, repos.Courses, "Physics", 10, science.ID, ian.ID)
	painting := testutil.CreateCourse(t, repos.Courses, "Painting", 20, arts.ID, joy.ID)
	chemistry := testutil.CreateCourse(t, repos.Courses, "Chemistry", 30, science.ID, joy.ID)

	ids := func(rows []course.Row) []int {
		out := make([]int, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter course.QueryFilter
		want   []int
	}{
		{name: "all, newest first", want: []int{chemistry.ID, painting.ID, physics.ID}},
		{name: "search", filter: course.QueryFilter{Search: " PHYS "}, want: []int{physics.ID}},
		{name: "category", filter: course.QueryFilter{CategoryID: science.ID}, want: []int{chemistry.ID, physics.ID}},
		{name: "instructor", filter: course.QueryFilter{InstructorID: joy.ID}, want: []int{chemistry.ID, painting.ID}},
		{name: "combined", filter: course.QueryFilter{CategoryID: arts.ID, InstructorID: ian.ID}, want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := svc.Query(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}

	stats, err := svc.ListStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCourses)
	assert.Equal(t, 60.0, stats.TotalValue.Float64)
	assert.Equal(t, 20.0, stats.AvgPrice.Float64)
}

func TestRatingStats_Histogram(t *testing.T) {
	stats := course.RatingStats{TotalReviews: 4, FiveStars: 2, FourStars: 1, OneStar: 1}
	assert.Equal(t, []course.RatingBucket{
		{Stars: 5, Count: 2, Percent: 50},
		{Stars: 4, Count: 1, Percent: 25},
		{Stars: 3},
		{Stars: 2},
		{Stars: 1, Count: 1, Percent: 25},
	}, stats.Histogram())

	for _, b := range (course.RatingStats{}).Histogram() {
		assert.Zero(t, b.Percent)
	}
}

func TestService_CreateUpdate_references(t *testing.T) {
	repos := testutil.NewRepos()
	svc := course.NewService(repos.Courses)
	ctx := context.Background()

	ian := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	cat := testutil.CreateCategory(t, repos.Categories, "Science")
	physics := testutil.CreateCourse(t, repos.Courses, "Physics", 10, cat.ID, ian.ID)

	nc := func(categoryID, instructorID int) course.NewCourse {
		return course.NewCourse{
			Title:        "Optics",
			Description:  "Light",
			Price:        "15",
			CategoryID:   strconv.Itoa(categoryID),
			InstructorID: strconv.Itoa(instructorID),
		}
	}
	fieldOf := func(t *testing.T, err error) string {
		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 1)
		return verr.Fields[0].Field
	}

	tests := []struct {
		name      string
		run       func() error
		wantField string
	}{
		{name: "create: category gone", run: func() error {
			_, err := svc.Create(ctx, nc(999, ian.ID))
			return err
		}, wantField: "category_id"},
		{name: "create: instructor gone", run: func() error {
			_, err := svc.Create(ctx, nc(cat.ID, 999))
			return err
		}, wantField: "instructor_id"},
		{name: "update: category gone", run: func() error {
			_, err := svc.Update(ctx, physics.ID, nc(999, ian.ID))
			return err
		}, wantField: "category_id"},
		{name: "update: instructor gone", run: func() error {
			_, err := svc.Update(ctx, physics.ID, nc(cat.ID, 999))
			return err
		}, wantField: "instructor_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantField, fieldOf(t, tt.run()))
		})
	}

	_, err := svc.Update(ctx, 999, nc(cat.ID, ian.ID))
	assert.Equal(t, course.ErrNotFound, err)

	row, err := svc.GetByID(ctx, physics.ID)
	require.NoError(t, err)
	assert.Equal(t, "Physics", row.Title)
}
