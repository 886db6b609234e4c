package sqlxrepos

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core/assignment"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/review"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
)

func toSQL(t *testing.T, b sq.Sqlizer) (string, []interface{}) {
	t.Helper()
	query, args, err := b.ToSql()
	require.NoError(t, err)
	return query, args
}

func TestBuildUsersQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   user.QueryFilter
		contains []string
		absent   []string
		args     []interface{}
	}{
		{
			name:   "no filter",
			absent: []string{"WHERE"},
		},
		{
			name:     "search",
			filter:   user.QueryFilter{Search: "ann"},
			contains: []string{"WHERE (name ILIKE $1 OR email ILIKE $2)"},
			args:     []interface{}{"%ann%", "%ann%"},
		},
		{
			name:     "search and role",
			filter:   user.QueryFilter{Search: "ann", Role: user.RoleStudent},
			contains: []string{"(name ILIKE $1 OR email ILIKE $2) AND role = $3"},
			args:     []interface{}{"%ann%", "%ann%", "student"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := toSQL(t, buildUsersQuery(tt.filter))
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, query, s)
			}
			assert.Contains(t, query, "ORDER BY created_at DESC")
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestBuildCoursesQuery(t *testing.T) {
	query, args := toSQL(t, buildCoursesQuery(course.QueryFilter{}))
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
	assert.Contains(t, query, "JOIN course_categories cc ON c.category_id = cc.category_id")
	assert.Contains(t, query, "LEFT JOIN enrollments e ON c.course_id = e.course_id")
	assert.Contains(t, query, "COUNT(DISTINCT e.enrollment_id) AS enrolled_count")

	query, args = toSQL(t, buildCoursesQuery(course.QueryFilter{Search: "sql", CategoryID: 3, InstructorID: 7}))
	assert.Contains(t, query, "WHERE (c.title ILIKE $1 OR c.description ILIKE $2) AND c.category_id = $3 AND c.instructor_id = $4")
	assert.Contains(t, query, "GROUP BY c.course_id")
	assert.Contains(t, query, "ORDER BY c.created_at DESC")
	assert.Equal(t, []interface{}{"%sql%", "%sql%", 3, 7}, args)
}

func TestBuildEnrollmentsQuery(t *testing.T) {
	query, args := toSQL(t, buildEnrollmentsQuery(enrollment.QueryFilter{CourseID: 2}))
	assert.Contains(t, query, "WHERE e.course_id = $1")
	assert.Contains(t, query, "ORDER BY e.enrolled_at DESC")
	assert.Equal(t, []interface{}{2}, args)

	query, args = toSQL(t, buildEnrollmentsQuery(enrollment.QueryFilter{Search: "web", StudentID: 5}))
	assert.Contains(t, query, "WHERE (s.name ILIKE $1 OR c.title ILIKE $2) AND e.student_id = $3")
	assert.Equal(t, []interface{}{"%web%", "%web%", 5}, args)
}

func TestBuildAssignmentsQuery(t *testing.T) {
	query, args := toSQL(t, buildAssignmentsQuery(assignment.QueryFilter{Search: "lab", CourseID: 1}))
	assert.Contains(t, query, "WHERE (a.title ILIKE $1 OR a.description ILIKE $2) AND a.course_id = $3")
	assert.Contains(t, query, "ORDER BY a.due_date ASC")
	assert.Equal(t, []interface{}{"%lab%", "%lab%", 1}, args)
}

func TestBuildSubmissionsQuery(t *testing.T) {
	tests := []struct {
		name   string
		filter submission.QueryFilter
		where  string
		args   []interface{}
	}{
		{"graded", submission.QueryFilter{Status: submission.StatusGraded}, "WHERE s.grade IS NOT NULL", nil},
		{"pending", submission.QueryFilter{Status: submission.StatusPending}, "WHERE s.grade IS NULL", nil},
		{"assignment and student", submission.QueryFilter{AssignmentID: 4, StudentID: 9}, "WHERE s.assignment_id = $1 AND s.student_id = $2", []interface{}{4, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := toSQL(t, buildSubmissionsQuery(tt.filter))
			assert.Contains(t, query, tt.where)
			if tt.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}

func TestBuildReviewsQuery(t *testing.T) {
	query, args := toSQL(t, buildReviewsQuery(review.QueryFilter{CourseID: 1, Rating: 5}))
	assert.Contains(t, query, "WHERE r.course_id = $1 AND r.rating = $2")
	assert.Contains(t, query, "ORDER BY r.created_at DESC")
	assert.Equal(t, []interface{}{1, 5}, args)
}

func TestExistsQuery(t *testing.T) {
	inner := psql.Select("1").From("users").Where(sq.Eq{"email": "a@b.c"}).Where(sq.NotEq{"user_id": []int{1, 2}})
	query, args := toSQL(t, psql.Select().Column(sq.Expr("EXISTS (?)", inner.PlaceholderFormat(sq.Question))))
	assert.Equal(t, "SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND user_id NOT IN ($2,$3))", query)
	assert.Equal(t, []interface{}{"a@b.c", 1, 2}, args)
}

func Test_trapCourseRefErr(t *testing.T) {
	fkErr := func(constraint string) error {
		return errors.Wrap(&pq.Error{Code: foreignKeyViolation, Constraint: constraint}, "Create course")
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "category", err: fkErr(courseCategoryFK), want: course.ErrCategoryNotFound},
		{name: "instructor", err: fkErr(courseInstructorFK), want: course.ErrInstructorNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trapCourseRefErr(tt.err, "inserting course"))
		})
	}

	t.Run("other errors are wrapped", func(t *testing.T) {
		for _, err := range []error{fkErr("other_fkey"), &pq.Error{Code: checkViolation}, errors.New("boom")} {
			got := trapCourseRefErr(err, "inserting course")
			assert.NotEqual(t, course.ErrCategoryNotFound, got)
			assert.NotEqual(t, course.ErrInstructorNotFound, got)
			assert.Equal(t, errors.Cause(err), errors.Cause(got))
		}
	})
}
