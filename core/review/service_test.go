package review_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/apps/shared"
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/user"
	"github.com/trezcool/lmsadmin/tests"
)

func TestService(t *testing.T) {
	repos := testutil.NewRepos()
	svc := review.NewService(repos.Reviews)
	validate, _ := shared.NewValidator()
	ctx := context.Background()

	ian := testutil.CreateUser(t, repos.Users, "Ian", "ian@test.test", "", user.RoleInstructor)
	stu := testutil.CreateUser(t, repos.Users, "Stu", "stu@test.test", "", user.RoleStudent)
	outsider := testutil.CreateUser(t, repos.Users, "Out", "out@test.test", "", user.RoleStudent)
	cat := testutil.CreateCategory(t, repos.Categories, "Science")
	c := testutil.CreateCourse(t, repos.Courses, "Physics", 10, cat.ID, ian.ID)
	testutil.Enroll(t, repos.Enrollments, stu.ID, c.ID, 0)
	cID := strconv.Itoa(c.ID)

	t.Run("validate", func(t *testing.T) {
		tests := []struct {
			name      string
			nr        review.NewReview
			wantErr   error
			wantField string
		}{
			{name: "valid", nr: review.NewReview{CourseID: cID, StudentID: strconv.Itoa(stu.ID), Rating: "5", Comment: "Great"}},
			{name: "unknown course", nr: review.NewReview{CourseID: "999", StudentID: strconv.Itoa(stu.ID), Rating: "5"}, wantErr: review.ErrCourseNotFound, wantField: "course_id"},
			{name: "instructor", nr: review.NewReview{CourseID: cID, StudentID: strconv.Itoa(ian.ID), Rating: "5"}, wantErr: review.ErrStudentNotFound, wantField: "student_id"},
			{name: "not enrolled", nr: review.NewReview{CourseID: cID, StudentID: strconv.Itoa(outsider.ID), Rating: "5"}, wantErr: review.ErrNotEnrolled, wantField: "student_id"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				nr := tt.nr
				err := nr.Validate(ctx, validate, svc)
				if tt.wantErr == nil {
					assert.NoError(t, err)
					return
				}
				var verr *core.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.wantErr, verr.Err)
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			})
		}

		for _, rating := range []string{"0", "6", "4.5", ""} {
			nr := review.NewReview{CourseID: cID, StudentID: strconv.Itoa(stu.ID), Rating: rating}
			assert.Error(t, nr.Validate(ctx, validate, svc), "rating %q", rating)
		}
	})

	t.Run("create once per course", func(t *testing.T) {
		nr := review.NewReview{CourseID: cID, StudentID: strconv.Itoa(stu.ID), Rating: "4"}
		r, err := svc.Create(ctx, nr)
		require.NoError(t, err)
		assert.False(t, r.Comment.Valid)

		var verr *core.ValidationError
		require.ErrorAs(t, nr.Validate(ctx, validate, svc), &verr)
		assert.Equal(t, review.ErrAlreadyReviewed, verr.Err)

		_, err = svc.Create(ctx, nr)
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, review.ErrAlreadyReviewed, verr.Err)

		_, err = svc.Create(ctx, review.NewReview{CourseID: cID, StudentID: strconv.Itoa(outsider.ID), Rating: "1"})
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, review.ErrNotEnrolled, verr.Err)

		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalReviews)
		assert.Equal(t, 4.0, stats.AvgRating.Float64)
		assert.Equal(t, []review.StarCount{{Stars: 5}, {Stars: 4, Count: 1}, {Stars: 3}, {Stars: 2}, {Stars: 1}}, stats.Counts())

		rows, err := svc.Query(ctx, review.QueryFilter{Rating: 4})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Ian", rows[0].InstructorName)

		rows, err = svc.Query(ctx, review.QueryFilter{Rating: 9})
		require.NoError(t, err)
		assert.Len(t, rows, 1, "out of range ratings are ignored")

		require.NoError(t, svc.Delete(ctx, r.ID))
		_, err = svc.GetByID(ctx, r.ID)
		assert.Equal(t, review.ErrNotFound, err)
	})
}
