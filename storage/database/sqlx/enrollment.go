package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/enrollment"
	"github.com/trezcool/lmsadmin/core/user"
)

var enrollmentColumns = []string{"enrollment_id", "student_id", "course_id", "progress", "enrolled_at"}

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

func enrollmentRowsQuery() sq.SelectBuilder {
	return psql.Select(
		"e.enrollment_id", "e.student_id", "e.course_id", "e.progress", "e.enrolled_at",
		"s.name AS student_name", "s.email AS student_email",
		"c.title AS course_title", "c.price",
		"i.user_id AS instructor_id", "i.name AS instructor_name",
		"cc.name AS category_name",
	).
		From("enrollments e").
		Join("users s ON e.student_id = s.user_id").
		Join("courses c ON e.course_id = c.course_id").
		Join("users i ON c.instructor_id = i.user_id").
		Join("course_categories cc ON c.category_id = cc.category_id")
}

// buildEnrollmentsQuery lists enrollments matching every present filter, newest first.
func buildEnrollmentsQuery(filter enrollment.QueryFilter) sq.SelectBuilder {
	q := enrollmentRowsQuery()
	if filter.Search != "" {
		val := like(filter.Search)
		q = q.Where(sq.Or{sq.ILike{"s.name": val}, sq.ILike{"c.title": val}})
	}
	if filter.CourseID > 0 {
		q = q.Where(sq.Eq{"e.course_id": filter.CourseID})
	}
	if filter.StudentID > 0 {
		q = q.Where(sq.Eq{"e.student_id": filter.StudentID})
	}
	return q.OrderBy("e.enrolled_at DESC", "e.enrollment_id DESC")
}

func (repo enrollmentRepository) CheckReferences(ctx context.Context, studentID, courseID int) error {
	found, err := exists(ctx, repo.exec, "Check student",
		psql.Select("1").From("users").Where(sq.Eq{"user_id": studentID, "role": user.RoleStudent}))
	if err != nil {
		return errors.Wrap(err, "checking student")
	}
	if !found {
		return enrollment.ErrStudentNotFound
	}

	found, err = exists(ctx, repo.exec, "Check course",
		psql.Select("1").From("courses").Where(sq.Eq{"course_id": courseID}))
	if err != nil {
		return errors.Wrap(err, "checking course")
	}
	if !found {
		return enrollment.ErrCourseNotFound
	}
	return nil
}

func (repo enrollmentRepository) CheckNotEnrolled(ctx context.Context, studentID, courseID int) error {
	found, err := exists(ctx, repo.exec, "Check existing enrollment",
		psql.Select("1").From("enrollments").Where(sq.Eq{"student_id": studentID, "course_id": courseID}))
	if err != nil {
		return errors.Wrap(err, "checking existing enrollment")
	}
	if found {
		return enrollment.ErrAlreadyEnrolled
	}
	return nil
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	q := psql.Insert("enrollments").
		Columns("student_id", "course_id", "progress", "enrolled_at").
		Values(e.StudentID, e.CourseID, e.Progress, e.EnrolledAt).
		Suffix(returning(enrollmentColumns))

	var created enrollment.Enrollment
	if err := get(ctx, repo.exec, "Create enrollment", &created, q); err != nil {
		if pqErrCode(err) == uniqueViolation {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return created, nil
}

func (repo enrollmentRepository) GetEnrollmentByID(ctx context.Context, id int) (enrollment.Row, error) {
	var row enrollment.Row
	q := enrollmentRowsQuery().Where(sq.Eq{"e.enrollment_id": id})
	if err := get(ctx, repo.exec, "Enrollment", &row, q); err != nil {
		return enrollment.Row{}, trapNoRowsErr(err, enrollment.ErrNotFound, "getting enrollment by ID")
	}
	return row, nil
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Row, error) {
	rows := make([]enrollment.Row, 0)
	if err := selectAll(ctx, repo.exec, "Enrollments", &rows, buildEnrollmentsQuery(filter)); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return rows, nil
}

func (repo enrollmentRepository) UpdateProgress(ctx context.Context, id, progress int) error {
	q := psql.Update("enrollments").Set("progress", progress).Where(sq.Eq{"enrollment_id": id})
	n, err := execute(ctx, repo.exec, "Update progress", q)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	if n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo enrollmentRepository) DeleteEnrollment(ctx context.Context, id int) error {
	n, err := execute(ctx, repo.exec, "Delete enrollment", psql.Delete("enrollments").Where(sq.Eq{"enrollment_id": id}))
	if err != nil {
		return trapDeleteErr(err, "deleting enrollment")
	}
	if n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

func (repo enrollmentRepository) QueryAssignmentProgress(ctx context.Context, studentID, courseID int) ([]enrollment.AssignmentProgress, error) {
	rows := make([]enrollment.AssignmentProgress, 0)
	q := psql.Select(
		"a.assignment_id", "a.title", "a.due_date",
		"s.submission_id", "s.submitted_at", "s.grade",
	).
		From("assignments a").
		LeftJoin("submissions s ON a.assignment_id = s.assignment_id AND s.student_id = ?", studentID).
		Where(sq.Eq{"a.course_id": courseID}).
		OrderBy("a.due_date ASC")
	if err := selectAll(ctx, repo.exec, "Assignment progress", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying assignment progress")
	}
	return rows, nil
}

func (repo enrollmentRepository) GetStudentReview(ctx context.Context, studentID, courseID int) (*enrollment.Review, error) {
	var r enrollment.Review
	q := psql.Select("review_id", "rating", "comment", "created_at").
		From("reviews").
		Where(sq.Eq{"student_id": studentID, "course_id": courseID})
	if err := get(ctx, repo.exec, "Student review", &r, q); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting student review")
	}
	return &r, nil
}
