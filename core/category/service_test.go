package category_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/apps/shared"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/category"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/tests"
)

func TestNewCategory_Validate(t *testing.T) {
	repos := testutil.NewRepos()
	svc := category.NewService(repos.Categories)
	validate, _ := shared.NewValidator()
	ctx := context.Background()
	science := testutil.CreateCategory(t, repos.Categories, "Science")

	nc := category.NewCategory{Name: "  Arts  "}
	require.NoError(t, nc.Validate(ctx, validate, svc))
	assert.Equal(t, "Arts", nc.Name)

	nc = category.NewCategory{Name: ""}
	assert.Error(t, nc.Validate(ctx, validate, svc))

	nc = category.NewCategory{Name: "Science"}
	var verr *core.ValidationError
	require.ErrorAs(t, nc.Validate(ctx, validate, svc), &verr)
	assert.Equal(t, "name", verr.Fields[0].Field)
	assert.Equal(t, "Category name already exists", verr.Fields[0].Error)

	assert.NoError(t, nc.Validate(ctx, validate, svc, science.ID), "renaming a category to its own name")
}

func TestService_Delete(t *testing.T) {
	repos := testutil.NewRepos()
	svc := category.NewService(repos.Categories)
	ctx := context.Background()

	instructor := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	used := testutil.CreateCategory(t, repos.Categories, "Science")
	empty := testutil.CreateCategory(t, repos.Categories, "Arts")
	testutil.CreateCourse(t, repos.Courses, "Physics", 10, used.ID, instructor.ID)

	err := svc.Delete(ctx, used.ID)
	assert.True(t, core.IsIntegrity(err))
	assert.EqualError(t, err, "Cannot delete category with existing courses. Move or remove those courses first.")

	require.NoError(t, svc.Delete(ctx, empty.ID))
	_, err = svc.GetByID(ctx, empty.ID)
	assert.Equal(t, category.ErrNotFound, err)
}

func TestService_Detail(t *testing.T) {
	repos := testutil.NewRepos()
	svc := category.NewService(repos.Categories)
	ctx := context.Background()

	ian := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	joy := testutil.CreateUser(t, repos.Users, "Joy", "joy@test.test", "", user.RoleInstructor)
	stu := testutil.CreateUser(t, repos.Users, "Stu", "stu@test.test", "", user.RoleStudent)
	cat := testutil.CreateCategory(t, repos.Categories, "Science")
	physics := testutil.CreateCourse(t, repos.Courses, "Physics", 10, cat.ID, ian.ID)
	testutil.CreateCourse(t, repos.Courses, "Biology", 30, cat.ID, joy.ID)
	testutil.Enroll(t, repos.Enrollments, stu.ID, physics.ID, 0)
	testutil.CreateReview(t, repos.Reviews, physics.ID, stu.ID, 4)

	d, err := svc.Detail(ctx, cat)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats.TotalCourses)
	assert.Equal(t, 1, d.Stats.TotalEnrollments)
	assert.Equal(t, 2, d.Stats.TotalInstructors)
	assert.Equal(t, 20.0, d.Stats.AvgPrice.Float64)
	assert.Equal(t, 40.0, d.Stats.TotalValue.Float64)
	assert.Equal(t, 4.0, d.Stats.AvgRating.Float64)
	assert.Len(t, d.Courses, 2)
	assert.NotEmpty(t, d.Instructors)
}
