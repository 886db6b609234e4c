package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/submission"
	"github.com/trezcool/lmsadmin/core/user"
)

var submissionColumns = []string{"submission_id", "assignment_id", "student_id", "submitted_at", "grade"}

type submissionRepository struct {
	exec core.DBExecutor
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(exec core.DBExecutor) *submissionRepository {
	return &submissionRepository{exec: exec}
}

func submissionRowsQuery() sq.SelectBuilder {
	return psql.Select(
		"s.submission_id", "s.assignment_id", "s.student_id", "s.submitted_at", "s.grade",
		"a.title AS assignment_title", "a.due_date",
		"c.course_id", "c.title AS course_title",
		"u.name AS student_name",
	).
		From("submissions s").
		Join("assignments a ON s.assignment_id = a.assignment_id").
		Join("courses c ON a.course_id = c.course_id").
		Join("users u ON s.student_id = u.user_id")
}

// buildSubmissionsQuery lists submissions matching every present filter, newest first.
func buildSubmissionsQuery(filter submission.QueryFilter) sq.SelectBuilder {
	q := submissionRowsQuery()
	if filter.AssignmentID > 0 {
		q = q.Where(sq.Eq{"s.assignment_id": filter.AssignmentID})
	}
	if filter.StudentID > 0 {
		q = q.Where(sq.Eq{"s.student_id": filter.StudentID})
	}
	switch filter.Status {
	case submission.StatusGraded:
		q = q.Where(sq.NotEq{"s.grade": nil})
	case submission.StatusPending:
		q = q.Where(sq.Eq{"s.grade": nil})
	}
	return q.OrderBy("s.submitted_at DESC", "s.submission_id DESC")
}

func (repo submissionRepository) CheckReferences(ctx context.Context, assignmentID, studentID int) error {
	var courseID int
	q := psql.Select("course_id").From("assignments").Where(sq.Eq{"assignment_id": assignmentID})
	if err := get(ctx, repo.exec, "Check assignment", &courseID, q); err != nil {
		return trapNoRowsErr(err, submission.ErrAssignmentNotFound, "checking assignment")
	}

	found, err := exists(ctx, repo.exec, "Check student",
		psql.Select("1").From("users").Where(sq.Eq{"user_id": studentID, "role": user.RoleStudent}))
	if err != nil {
		return errors.Wrap(err, "checking student")
	}
	if !found {
		return submission.ErrStudentNotFound
	}

	found, err = exists(ctx, repo.exec, "Check enrollment",
		psql.Select("1").From("enrollments").Where(sq.Eq{"student_id": studentID, "course_id": courseID}))
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	if !found {
		return submission.ErrNotEnrolled
	}
	return nil
}

func (repo submissionRepository) CreateSubmission(ctx context.Context, s submission.Submission) (submission.Submission, error) {
	q := psql.Insert("submissions").
		Columns("assignment_id", "student_id", "submitted_at", "grade").
		Values(s.AssignmentID, s.StudentID, s.SubmittedAt, s.Grade).
		Suffix(returning(submissionColumns))

	var created submission.Submission
	if err := get(ctx, repo.exec, "Create submission", &created, q); err != nil {
		if pqErrCode(err) == foreignKeyViolation {
			return submission.Submission{}, submission.ErrAssignmentNotFound
		}
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return created, nil
}

func (repo submissionRepository) GetSubmissionByID(ctx context.Context, id int) (submission.Row, error) {
	var row submission.Row
	q := submissionRowsQuery().Where(sq.Eq{"s.submission_id": id})
	if err := get(ctx, repo.exec, "Submission", &row, q); err != nil {
		return submission.Row{}, trapNoRowsErr(err, submission.ErrNotFound, "getting submission by ID")
	}
	return row, nil
}

func (repo submissionRepository) QuerySubmissions(ctx context.Context, filter submission.QueryFilter) ([]submission.Row, error) {
	rows := make([]submission.Row, 0)
	if err := selectAll(ctx, repo.exec, "Submissions", &rows, buildSubmissionsQuery(filter)); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return rows, nil
}

func (repo submissionRepository) UpdateGrade(ctx context.Context, id int, grade null.Float64) error {
	q := psql.Update("submissions").Set("grade", grade).Where(sq.Eq{"submission_id": id})
	n, err := execute(ctx, repo.exec, "Update grade", q)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	if n == 0 {
		return submission.ErrNotFound
	}
	return nil
}

func (repo submissionRepository) DeleteSubmission(ctx context.Context, id int) error {
	n, err := execute(ctx, repo.exec, "Delete submission", psql.Delete("submissions").Where(sq.Eq{"submission_id": id}))
	if err != nil {
		return trapDeleteErr(err, "deleting submission")
	}
	if n == 0 {
		return submission.ErrNotFound
	}
	return nil
}
