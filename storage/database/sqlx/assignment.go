package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/assignment"
)

var assignmentColumns = []string{"assignment_id", "course_id", "title", "description", "due_date"}

type assignmentRepository struct {
	exec core.DBExecutor
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(exec core.DBExecutor) *assignmentRepository {
	return &assignmentRepository{exec: exec}
}

func assignmentRowsQuery() sq.SelectBuilder {
	return psql.Select(
		"a.assignment_id", "a.course_id", "a.title", "a.description", "a.due_date",
		"c.title AS course_title",
		"u.user_id AS instructor_id", "u.name AS instructor_name",
		"COUNT(s.submission_id) AS submission_count",
		"AVG(s.grade) AS avg_grade",
	).
		From("assignments a").
		Join("courses c ON a.course_id = c.course_id").
		Join("users u ON c.instructor_id = u.user_id").
		LeftJoin("submissions s ON a.assignment_id = s.assignment_id").
		GroupBy("a.assignment_id", "c.course_id", "u.user_id")
}

// buildAssignmentsQuery lists assignments matching every present filter, by due date.
func buildAssignmentsQuery(filter assignment.QueryFilter) sq.SelectBuilder {
	q := assignmentRowsQuery()
	if filter.Search != "" {
		val := like(filter.Search)
		q = q.Where(sq.Or{sq.ILike{"a.title": val}, sq.ILike{"a.description": val}})
	}
	if filter.CourseID > 0 {
		q = q.Where(sq.Eq{"a.course_id": filter.CourseID})
	}
	return q.OrderBy("a.due_date ASC", "a.assignment_id ASC")
}

func (repo assignmentRepository) CheckCourse(ctx context.Context, courseID int) error {
	found, err := exists(ctx, repo.exec, "Check course",
		psql.Select("1").From("courses").Where(sq.Eq{"course_id": courseID}))
	if err != nil {
		return errors.Wrap(err, "checking course")
	}
	if !found {
		return assignment.ErrCourseNotFound
	}
	return nil
}

func (repo assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := psql.Insert("assignments").
		Columns("course_id", "title", "description", "due_date").
		Values(a.CourseID, a.Title, a.Description, a.DueDate).
		Suffix(returning(assignmentColumns))

	var created assignment.Assignment
	if err := get(ctx, repo.exec, "Create assignment", &created, q); err != nil {
		if pqErrCode(err) == foreignKeyViolation {
			return assignment.Assignment{}, assignment.ErrCourseNotFound
		}
		return assignment.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return created, nil
}

func (repo assignmentRepository) GetAssignmentByID(ctx context.Context, id int) (assignment.Row, error) {
	var row assignment.Row
	q := assignmentRowsQuery().Where(sq.Eq{"a.assignment_id": id})
	if err := get(ctx, repo.exec, "Assignment", &row, q); err != nil {
		return assignment.Row{}, trapNoRowsErr(err, assignment.ErrNotFound, "getting assignment by ID")
	}
	return row, nil
}

func (repo assignmentRepository) QueryAssignments(ctx context.Context, filter assignment.QueryFilter) ([]assignment.Row, error) {
	rows := make([]assignment.Row, 0)
	if err := selectAll(ctx, repo.exec, "Assignments", &rows, buildAssignmentsQuery(filter)); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	return rows, nil
}

func (repo assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	q := psql.Update("assignments").
		Set("course_id", a.CourseID).
		Set("title", a.Title).
		Set("description", a.Description).
		Set("due_date", a.DueDate).
		Where(sq.Eq{"assignment_id": a.ID}).
		Suffix(returning(assignmentColumns))

	var updated assignment.Assignment
	if err := get(ctx, repo.exec, "Update assignment", &updated, q); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "updating assignment")
	}
	return updated, nil
}

func (repo assignmentRepository) CountSubmissions(ctx context.Context, id int) (int, error) {
	var n int
	q := psql.Select("COUNT(*)").From("submissions").Where(sq.Eq{"assignment_id": id})
	if err := get(ctx, repo.exec, "Assignment submissions count", &n, q); err != nil {
		return 0, errors.Wrap(err, "counting assignment submissions")
	}
	return n, nil
}

func (repo assignmentRepository) DeleteAssignment(ctx context.Context, id int) error {
	n, err := execute(ctx, repo.exec, "Delete assignment", psql.Delete("assignments").Where(sq.Eq{"assignment_id": id}))
	if err != nil {
		return trapDeleteErr(err, "deleting assignment")
	}
	if n == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (repo assignmentRepository) GetSubmissionStats(ctx context.Context, id int) (assignment.Stats, error) {
	var stats assignment.Stats
	q := psql.Select(
		"COUNT(*) AS total_submissions",
		"AVG(grade) AS avg_grade",
		"MAX(grade) AS max_grade",
		"MIN(grade) AS min_grade",
		"COUNT(*) FILTER (WHERE grade IS NULL) AS pending_count",
		"COUNT(*) FILTER (WHERE grade >= 90) AS a_grade",
		"COUNT(*) FILTER (WHERE grade >= 80 AND grade < 90) AS b_grade",
		"COUNT(*) FILTER (WHERE grade >= 70 AND grade < 80) AS c_grade",
		"COUNT(*) FILTER (WHERE grade < 70) AS below_c",
	).
		From("submissions").
		Where(sq.Eq{"assignment_id": id})
	if err := get(ctx, repo.exec, "Submission statistics", &stats, q); err != nil {
		return assignment.Stats{}, errors.Wrap(err, "getting submission stats")
	}
	return stats, nil
}

func (repo assignmentRepository) QueryAssignmentSubmissions(ctx context.Context, id int) ([]assignment.Submission, error) {
	rows := make([]assignment.Submission, 0)
	q := psql.Select(
		"s.submission_id", "s.submitted_at", "s.grade",
		"u.user_id", "u.name AS student_name", "u.email AS student_email",
	).
		From("submissions s").
		Join("users u ON s.student_id = u.user_id").
		Where(sq.Eq{"s.assignment_id": id}).
		OrderBy("s.submitted_at DESC")
	if err := selectAll(ctx, repo.exec, "Assignment submissions", &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying assignment submissions")
	}
	return rows, nil
}
