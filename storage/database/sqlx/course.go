package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/course"
	"github.com/trezcool/lmsadmin/core/user"
)

var courseColumns = []string{"course_id", "title", "description", "price", "category_id", "instructor_id", "created_at"}

type courseRepository struct {
	exec core.DBExecutor
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{exec: exec}
}

func courseRowsQuery() sq.SelectBuilder {
	return psql.Select(
		"c.course_id", "c.title", "c.description", "c.price", "c.category_id", "c.instructor_id", "c.created_at",
		"cc.name AS category_name",
		"u.name AS instructor_name",
		"COUNT(DISTINCT e.enrollment_id) AS enrolled_count",
		"AVG(r.rating) AS avg_rating",
		"COUNT(DISTINCT r.review_id) AS review_count",
	).
		From("courses c").
		Join("course_categories cc ON c.category_id = cc.category_id").
		Join("users u ON c.instructor_id = u.user_id").
		LeftJoin("enrollments e ON c.course_id = e.course_id").
		LeftJoin("reviews r ON c.course_id = r.course_id").
		GroupBy("c.course_id", "cc.category_id", "u.user_id")
}

// buildCoursesQuery lists courses matching every present filter, newest first.
func buildCoursesQuery(filter course.QueryFilter) sq.SelectBuilder {
	q := courseRowsQuery()
	if filter.Search != "" {
		val := like(filter.Search)
		q = q.Where(sq.Or{sq.ILike{"c.title": val}, sq.ILike{"c.description": val}})
	}
	if filter.CategoryID > 0 {
		q = q.Where(sq.Eq{"c.category_id": filter.CategoryID})
	}
	if filter.InstructorID > 0 {
		q = q.Where(sq.Eq{"c.instructor_id": filter.InstructorID})
	}
	return q.OrderBy("c.created_at DESC", "c.course_id DESC")
}

func (repo courseRepository) CheckReferences(ctx context.Context, categoryID, instructorID int) error {
	found, err := exists(ctx, repo.exec, "Check category",
		psql.Select("1").From("course_categories").Where(sq.Eq{"category_id": categoryID}))
	if err != nil {
		return errors.Wrap(err, "checking category")
	}
	if !found {
		return course.ErrCategoryNotFound
	}

	found, err = exists(ctx, repo.exec, "Check instructor",
		psql.Select("1").From("users").Where(sq.Eq{"user_id": instructorID, "role": user.RoleInstructor}))
	if err != nil {
		return errors.Wrap(err, "checking instructor")
	}
	if !found {
		return course.ErrInstructorNotFound
	}
	return nil
}

// postgres names of the courses foreign keys
const (
	courseCategoryFK   = "courses_category_id_fkey"
	courseInstructorFK = "courses_instructor_id_fkey"
)

// trapCourseRefErr maps a foreign-key violation to the reference that failed.
func trapCourseRefErr(err error, msg string) error {
	if pqErrCode(err) == foreignKeyViolation {
		switch pqConstraint(err) {
		case courseCategoryFK:
			return course.ErrCategoryNotFound
		case courseInstructorFK:
			return course.ErrInstructorNotFound
		}
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := psql.Insert("courses").
		Columns("title", "description", "price", "category_id", "instructor_id", "created_at").
		Values(c.Title, c.Description, c.Price, c.CategoryID, c.InstructorID, c.CreatedAt).
		Suffix(returning(courseColumns))

	var created course.Course
	if err := get(ctx, repo.exec, "Create course", &created, q); err != nil {
		return course.Course{}, trapCourseRefErr(err, "inserting course")
	}
	return created, nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id int) (course.Row, error) {
	var row course.Row
	q := courseRowsQuery().Where(sq.Eq{"c.course_id": id})
	if err := get(ctx, repo.exec, "Course", &row, q); err != nil {
		return course.Row{}, trapNoRowsErr(err, course.ErrNotFound, "getting course by ID")
	}
	return row, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter) ([]course.Row, error) {
	rows := make([]course.Row, 0)
	if err := selectAll(ctx, repo.exec, "Courses", &rows, buildCoursesQuery(filter)); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return rows, nil
}

func (repo courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	q := psql.Select(courseColumns...).From("courses").OrderBy("title")
	if err := selectAll(ctx, repo.exec, "Course options", &courses, q); err != nil {
		return nil, errors.Wrap(err, "querying course options")
	}
	return courses, nil
}

func (repo courseRepository) GetListStats(ctx context.Context) (course.ListStats, error) {
	var stats course.ListStats
	q := psql.Select("COUNT(*) AS total_courses", "SUM(price) AS total_value", "AVG(price) AS avg_price").From("courses")
	if err := get(ctx, repo.exec, "Course statistics", &stats, q); err != nil {
		return course.ListStats{}, errors.Wrap(err, "getting course stats")
	}
	return stats, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := psql.Update("courses").
		Set("title", c.Title).
		Set("description", c.Description).
		Set("price", c.Price).
		Set("category_id", c.CategoryID).
		Set("instructor_id", c.InstructorID).
		Where(sq.Eq{"course_id": c.ID}).
		Suffix(returning(courseColumns))

	var updated course.Course
	if err := get(ctx, repo.exec, "Update course", &updated, q); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, trapCourseRefErr(err, "updating course")
	}
	return updated, nil
}

func (repo courseRepository) CountDependencies(ctx context.Context, id int) (course.Dependencies, error) {
	var deps course.Dependencies
	q := psql.Select().
		Column(sq.Expr("(SELECT COUNT(*) FROM enrollments WHERE course_id = ?) AS enrollments", id)).
		Column(sq.Expr("(SELECT COUNT(*) FROM assignments WHERE course_id = ?) AS assignments", id)).
		Column(sq.Expr("(SELECT COUNT(*) FROM reviews WHERE course_id = ?) AS reviews", id))
	if err := get(ctx, repo.exec, "Course dependencies", &deps, q); err != nil {
		return course.Dependencies{}, errors.Wrap(err, "counting course dependencies")
	}
	return deps, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, id int) error {
	n, err := execute(ctx, repo.exec, "Delete course", psql.Delete("courses").Where(sq.Eq{"course_id": id}))
	if err != nil {
		return trapDeleteErr(err, "deleting course")
	}
	if n == 0 {
		return course.ErrNotFound
	}
	return nil
}

func (repo courseRepository) GetEnrollmentStats(ctx context.Context, id int) (course.EnrollmentStats, error) {
	var stats course.EnrollmentStats
	q := psql.Select("COUNT(*) AS total_enrollments", "AVG(progress) AS avg_progress").
		From("enrollments").
		Where(sq.Eq{"course_id": id})
	if err := get(ctx, repo.exec, "Enrollment statistics", &stats, q); err != nil {
		return course.EnrollmentStats{}, errors.Wrap(err, "getting enrollment stats")
	}
	return stats, nil
}

func (repo courseRepository) QueryRecentStudents(ctx context.Context, id, limit int) ([]course.Student, error) {
	rows := make([]course.Student, 0)
	q := psql.Select("e.enrollment_id", "e.enrolled_at", "e.progress", "u.user_id", "u.name", "u.email").
		From("enrollments e").
		Join("users u ON e.student_id = u.user_id").
		Where(sq.Eq{"e.course_id": id}).
		OrderBy("e.enrolled_at DESC").
		Limit(uint64(limit))
	if err := selectAll(ctx, repo.exec, "Recent students", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying recent students")
	}
	return rows, nil
}

func (repo courseRepository) QueryCourseReviews(ctx context.Context, id int) ([]course.Review, error) {
	rows := make([]course.Review, 0)
	q := psql.Select("r.review_id", "r.rating", "r.comment", "r.created_at", "u.user_id AS student_id", "u.name AS student_name").
		From("reviews r").
		Join("users u ON r.student_id = u.user_id").
		Where(sq.Eq{"r.course_id": id}).
		OrderBy("r.created_at DESC")
	if err := selectAll(ctx, repo.exec, "Course reviews", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying course reviews")
	}
	return rows, nil
}

func (repo courseRepository) GetRatingStats(ctx context.Context, id int) (course.RatingStats, error) {
	var stats course.RatingStats
	q := psql.Select(
		"AVG(rating) AS avg_rating",
		"COUNT(*) AS total_reviews",
		"COUNT(*) FILTER (WHERE rating = 5) AS five_stars",
		"COUNT(*) FILTER (WHERE rating = 4) AS four_stars",
		"COUNT(*) FILTER (WHERE rating = 3) AS three_stars",
		"COUNT(*) FILTER (WHERE rating = 2) AS two_stars",
		"COUNT(*) FILTER (WHERE rating = 1) AS one_star",
	).
		From("reviews").
		Where(sq.Eq{"course_id": id})
	if err := get(ctx, repo.exec, "Rating distribution", &stats, q); err != nil {
		return course.RatingStats{}, errors.Wrap(err, "getting rating stats")
	}
	return stats, nil
}

func (repo courseRepository) QueryCourseAssignments(ctx context.Context, id int) ([]course.Assignment, error) {
	rows := make([]course.Assignment, 0)
	q := psql.Select(
		"a.assignment_id", "a.title", "a.description", "a.due_date",
		"COUNT(s.submission_id) AS submission_count",
	).
		From("assignments a").
		LeftJoin("submissions s ON a.assignment_id = s.assignment_id").
		Where(sq.Eq{"a.course_id": id}).
		GroupBy("a.assignment_id").
		OrderBy("a.due_date ASC")
	if err := selectAll(ctx, repo.exec, "Course assignments", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying course assignments")
	}
	return rows, nil
}
